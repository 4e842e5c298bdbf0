package dto

import (
	"time"

	"loan-eligibility/internal/domain/eligibility"
)

// EligibilityRequest documents the evaluate body. Numeric fields may be sent
// as JSON numbers or as numeric strings.
type EligibilityRequest struct {
	Name            string `json:"name" example:"Asha Rao"`
	Age             string `json:"age" example:"30"`
	Phone           string `json:"phone" example:"9876543210"`
	Email           string `json:"email" example:"asha@example.com"`
	MonthlyIncome   string `json:"monthlyIncome" example:"60000"`
	CreditScore     string `json:"creditScore" example:"780"`
	EmploymentYears string `json:"employmentYears" example:"5"`
	ExistingLoans   string `json:"existingLoans" example:"5000"`
	LoanAmount      string `json:"loanAmount" example:"500000"`
}

type EligibilityResponse struct {
	EvaluationID string    `json:"evaluationId"`
	Eligible     bool      `json:"eligible"`
	Score        int       `json:"score"`
	Reasons      []string  `json:"reasons"`
	MaxLoan      int64     `json:"maxLoan"`
	EMI          int64     `json:"emi"`
	Ratio        *string   `json:"ratio" example:"9.0"`
	Summary      string    `json:"summary"`
	EvaluatedAt  time.Time `json:"evaluatedAt"`
}

func NewEligibilityResponse(d *eligibility.Decision) EligibilityResponse {
	var ratio *string
	if d.Result.Ratio.Valid {
		s := d.Result.Ratio.Decimal.StringFixed(1)
		ratio = &s
	}

	reasons := d.Result.Reasons
	if reasons == nil {
		reasons = []string{}
	}

	return EligibilityResponse{
		EvaluationID: d.ID.String(),
		Eligible:     d.Result.Eligible,
		Score:        d.Result.Score,
		Reasons:      reasons,
		MaxLoan:      d.Result.MaxLoan,
		EMI:          d.Result.EMI,
		Ratio:        ratio,
		Summary:      d.Result.Summary,
		EvaluatedAt:  d.EvaluatedAt,
	}
}

type CriterionResponse struct {
	Rule         string `json:"rule"`
	Requirement  string `json:"requirement"`
	Contribution string `json:"contribution"`
}

type RequirementsResponse struct {
	Fields   []string            `json:"fields"`
	Criteria []CriterionResponse `json:"criteria"`
}

func NewRequirementsResponse(req eligibility.Requirements) RequirementsResponse {
	resp := RequirementsResponse{
		Fields:   req.Fields,
		Criteria: make([]CriterionResponse, len(req.Criteria)),
	}
	for i, c := range req.Criteria {
		resp.Criteria[i] = CriterionResponse{
			Rule:         string(c.Rule),
			Requirement:  c.Requirement,
			Contribution: c.Contribution,
		}
	}
	return resp
}

type ErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type TokenRequest struct {
	Username string `json:"username"`
}

type TokenResponse struct {
	Token string `json:"token"`
}
