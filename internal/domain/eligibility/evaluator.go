package eligibility

import "math"

type Rule string

const (
	RuleAge         Rule = "age"
	RuleCreditScore Rule = "credit_score"
	RuleIncome      Rule = "income"
	RuleDebtRatio   Rule = "debt_ratio"
	RuleEmployment  Rule = "employment"
	RuleLoanCeiling Rule = "loan_ceiling"
)

const (
	MinAge = 21
	MaxAge = 65

	MinCreditScore   = 650
	PrimeCreditScore = 750

	MinMonthlyIncome = 25000.0

	MaxDebtRatio = 0.5

	MinEmploymentYears      = 1.0
	SeasonedEmploymentYears = 3.0

	// EMIRate is the flat annual rate of the installment estimate. It is not amortized.
	EMIRate       = 0.01
	monthsPerYear = 12
)

const (
	ReasonAge         = "Age must be between 21 and 65 years"
	ReasonCreditScore = "Credit score below 650"
	ReasonIncome      = "Income below ₹25,000"
	ReasonDebtRatio   = "Debt ratio exceeds 50%"
	ReasonEmployment  = "Need 1+ year employment"
)

// RuleResult is the outcome of one rule. Note carries the pass annotation,
// which is kept for logging and never shown to the applicant.
type RuleResult struct {
	Rule   Rule
	Passed bool
	Points int
	Reason string
	Note   string
}

// Assessment accumulates the evaluation of one applicant as it moves
// through Assess and Size.
type Assessment struct {
	Applicant    Applicant
	Rules        []RuleResult
	Points       int
	Reasons      []string
	EstimatedEMI float64
	DebtRatio    float64
	// RatioDefined is false when obligations are positive and income is zero.
	RatioDefined bool
	MaxLoan      int64
	EMI          int64
}

func (a *Assessment) Eligible() bool {
	return len(a.Reasons) == 0
}

// FailedRules returns the rules that produced a reason, in evaluation order.
func (a *Assessment) FailedRules() []Rule {
	var failed []Rule
	for _, r := range a.Rules {
		if !r.Passed {
			failed = append(failed, r.Rule)
		}
	}
	return failed
}

func (a *Assessment) record(r RuleResult) {
	a.Rules = append(a.Rules, r)
	if r.Passed {
		a.Points += r.Points
		return
	}
	a.Reasons = append(a.Reasons, r.Reason)
}

// EstimateEMI is the flat monthly installment for a principal.
func EstimateEMI(principal float64) float64 {
	return principal * EMIRate / monthsPerYear
}

// DebtRatio returns monthly obligations over monthly income. With zero income
// the ratio is 0 when there is nothing owed and undefined otherwise. A quotient
// too large for a float64 is undefined as well.
func DebtRatio(existingLoans, emi, monthlyIncome float64) (float64, bool) {
	obligations := existingLoans + emi
	if monthlyIncome == 0 {
		if obligations == 0 {
			return 0, true
		}
		return math.Inf(1), false
	}
	ratio := obligations / monthlyIncome
	if math.IsInf(ratio, 0) || math.IsNaN(ratio) {
		return math.Inf(1), false
	}
	return ratio, true
}

// Assess applies the five scored rules. Every rule runs so that all
// violations are reported.
func Assess(applicant Applicant) Assessment {
	a := Assessment{Applicant: applicant}
	a.EstimatedEMI = EstimateEMI(applicant.LoanAmount)
	a.DebtRatio, a.RatioDefined = DebtRatio(applicant.ExistingLoans, a.EstimatedEMI, applicant.MonthlyIncome)

	a.record(checkAge(applicant.Age))
	a.record(checkCreditScore(applicant.CreditScore))
	a.record(checkIncome(applicant.MonthlyIncome))
	a.record(checkDebtRatio(a.DebtRatio))
	a.record(checkEmployment(applicant.EmploymentYears))

	return a
}

func checkAge(age int) RuleResult {
	if age < MinAge || age > MaxAge {
		return RuleResult{Rule: RuleAge, Reason: ReasonAge}
	}
	return RuleResult{Rule: RuleAge, Passed: true, Points: 15, Note: "Age within 21 to 65"}
}

func checkCreditScore(score int) RuleResult {
	switch {
	case score < MinCreditScore:
		return RuleResult{Rule: RuleCreditScore, Reason: ReasonCreditScore}
	case score >= PrimeCreditScore:
		return RuleResult{Rule: RuleCreditScore, Passed: true, Points: 30, Note: "Excellent credit score"}
	default:
		return RuleResult{Rule: RuleCreditScore, Passed: true, Points: 20, Note: "Good credit score"}
	}
}

func checkIncome(income float64) RuleResult {
	if income < MinMonthlyIncome {
		return RuleResult{Rule: RuleIncome, Reason: ReasonIncome}
	}
	return RuleResult{Rule: RuleIncome, Passed: true, Points: 20, Note: "Income meets minimum"}
}

func checkDebtRatio(ratio float64) RuleResult {
	if ratio > MaxDebtRatio {
		return RuleResult{Rule: RuleDebtRatio, Reason: ReasonDebtRatio}
	}
	return RuleResult{Rule: RuleDebtRatio, Passed: true, Points: 20, Note: "Debt ratio within 50%"}
}

func checkEmployment(years float64) RuleResult {
	switch {
	case years < MinEmploymentYears:
		return RuleResult{Rule: RuleEmployment, Reason: ReasonEmployment}
	case years >= SeasonedEmploymentYears:
		return RuleResult{Rule: RuleEmployment, Passed: true, Points: 15, Note: "Stable employment"}
	default:
		return RuleResult{Rule: RuleEmployment, Passed: true, Points: 10, Note: "Employment over one year"}
	}
}
