package eligibility

import "fmt"

// Evaluate validates a raw application and decides it. A validation error
// means no result; ineligibility is a normal result.
func Evaluate(raw RawApplication) (*Result, error) {
	applicant, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	result := Decide(*applicant)
	return &result, nil
}

// Decide runs the rule chain on an already validated applicant.
func Decide(applicant Applicant) Result {
	assessment := Assess(applicant)
	Size(&assessment)
	return Explain(&assessment)
}

type Criterion struct {
	Rule         Rule   `json:"rule"`
	Requirement  string `json:"requirement"`
	Contribution string `json:"contribution"`
}

type Requirements struct {
	Fields   []string    `json:"fields"`
	Criteria []Criterion `json:"criteria"`
}

// ListRequirements describes what an applicant has to supply and how each
// rule scores it.
func ListRequirements() Requirements {
	return Requirements{
		Fields: append([]string(nil), RequiredFields...),
		Criteria: []Criterion{
			{Rule: RuleAge, Requirement: fmt.Sprintf("age between %d and %d", MinAge, MaxAge), Contribution: "+15"},
			{Rule: RuleCreditScore, Requirement: fmt.Sprintf("credit score of at least %d", MinCreditScore), Contribution: fmt.Sprintf("+30 from %d, +20 below", PrimeCreditScore)},
			{Rule: RuleIncome, Requirement: "monthly income of at least ₹" + FormatAmount(int64(MinMonthlyIncome)), Contribution: "+20"},
			{Rule: RuleDebtRatio, Requirement: "existing loans plus estimated EMI at most 50% of income", Contribution: "+20"},
			{Rule: RuleEmployment, Requirement: "at least 1 year of employment", Contribution: "+15 from 3 years, +10 below"},
			{Rule: RuleLoanCeiling, Requirement: "requested amount within 120 times monthly income", Contribution: "none"},
		},
	}
}
