package eligibility

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// affordableShare of monthly income sustained over ceilingYears bounds the principal.
	affordableShare = 0.5
	ceilingYears    = 20
)

var amountPrinter = message.NewPrinter(language.English)

// MaxLoan is the income-derived loan ceiling before flooring.
func MaxLoan(monthlyIncome float64) float64 {
	return monthlyIncome * affordableShare * monthsPerYear * ceilingYears
}

// FormatAmount renders a whole amount with thousands separators, e.g. 7,200,000.
func FormatAmount(amount int64) string {
	return amountPrinter.Sprintf("%d", amount)
}

func ExceedsMaxReason(maxLoan int64) string {
	return "Exceeds max ₹" + FormatAmount(maxLoan)
}

// Size adds the loan ceiling and the displayed installment. A request above
// the ceiling is one more violation, recorded after the scored rules.
func Size(a *Assessment) {
	ceiling := MaxLoan(a.Applicant.MonthlyIncome)
	a.MaxLoan = wholeRupees(ceiling)
	a.EMI = wholeRupees(a.EstimatedEMI)

	if a.Applicant.LoanAmount > ceiling {
		a.record(RuleResult{Rule: RuleLoanCeiling, Reason: ExceedsMaxReason(a.MaxLoan)})
		return
	}
	a.record(RuleResult{Rule: RuleLoanCeiling, Passed: true, Note: "Requested amount within ceiling"})
}

// wholeRupees floors an amount into the int64 range. Validated applicants never
// reach the upper clamp.
func wholeRupees(amount float64) int64 {
	switch {
	case math.IsNaN(amount) || amount <= 0:
		return 0
	case amount >= math.MaxInt64:
		return math.MaxInt64
	default:
		return int64(math.Floor(amount))
	}
}
