package eligibility

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	nextStepsSentence   = "Next steps: Submit documents, verification within 24 to 48 hours, final approval, then funds disbursed."
	remediationSentence = "You can try lowering requested amount, improving credit score, or reducing existing monthly loans and reapply."
	defaultApplicant    = "Applicant"
)

var approvalReasons = []string{"All criteria met", "Good credit", "Stable income", "Employment verified"}

// Result is the outcome of one evaluation.
type Result struct {
	Eligible bool
	// Score is 0 unless Eligible.
	Score   int
	Reasons []string
	MaxLoan int64
	EMI     int64
	// Ratio is the debt ratio as a percentage with one fractional digit.
	// It is null when income is zero and obligations are positive.
	Ratio   decimal.NullDecimal
	Summary string
}

// ApprovalReasons returns the fixed reasons reported for an eligible applicant.
func ApprovalReasons() []string {
	return append([]string(nil), approvalReasons...)
}

// Explain turns a sized assessment into a Result.
func Explain(a *Assessment) Result {
	r := Result{
		Eligible: a.Eligible(),
		MaxLoan:  a.MaxLoan,
		EMI:      a.EMI,
		Ratio:    ratioPercent(a.DebtRatio, a.RatioDefined),
	}

	if r.Eligible {
		r.Score = a.Points
		r.Reasons = ApprovalReasons()
	} else {
		r.Reasons = append([]string(nil), a.Reasons...)
	}

	r.Summary = Summarize(a.Applicant.Name, r)
	return r
}

func ratioPercent(ratio float64, defined bool) decimal.NullDecimal {
	percent := ratio * 100
	if !defined || math.IsInf(percent, 0) || math.IsNaN(percent) {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.NewFromFloat(percent).Round(1))
}

// FormatRatio renders the ratio with exactly one fractional digit, or "n/a".
func FormatRatio(ratio decimal.NullDecimal) string {
	if !ratio.Valid {
		return "n/a"
	}
	return ratio.Decimal.StringFixed(1)
}

// Summarize builds the plain-text narration of a result.
func Summarize(name string, r Result) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultApplicant
	}

	parts := []string{fmt.Sprintf("%s, here are your loan eligibility details.", name)}
	if r.Eligible {
		parts = append(parts,
			"Eligibility: Approved.",
			fmt.Sprintf("Score: %d out of 100.", r.Score),
			fmt.Sprintf("Maximum eligible loan amount is rupees %s.", FormatAmount(r.MaxLoan)),
			fmt.Sprintf("Estimated monthly EMI (approx) is rupees %s.", FormatAmount(r.EMI)),
			fmt.Sprintf("Debt ratio is %s percent.", FormatRatio(r.Ratio)),
			nextStepsSentence,
		)
		return strings.Join(parts, " ")
	}

	parts = append(parts, "Eligibility: Not eligible.", "Reasons for ineligibility:")
	for i, reason := range r.Reasons {
		parts = append(parts, fmt.Sprintf("%d. %s.", i+1, reason))
	}
	parts = append(parts, remediationSentence)
	return strings.Join(parts, " ")
}
