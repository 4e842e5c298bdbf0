// Package eligibility decides whether an applicant qualifies for a loan.
//
// The engine is a chain of pure steps: Validate turns a raw field map into an
// Applicant, Assess applies the scored rules, Size adds the loan ceiling and
// installment, and Explain assembles the Result with its narrated summary.
// Evaluate runs the whole chain. None of the steps keep state between calls.
package eligibility

const (
	FieldName            = "name"
	FieldAge             = "age"
	FieldPhone           = "phone"
	FieldEmail           = "email"
	FieldMonthlyIncome   = "monthlyIncome"
	FieldCreditScore     = "creditScore"
	FieldEmploymentYears = "employmentYears"
	FieldExistingLoans   = "existingLoans"
	FieldLoanAmount      = "loanAmount"
)

// RequiredFields lists every applicant field in the order they are validated.
var RequiredFields = []string{
	FieldName,
	FieldAge,
	FieldPhone,
	FieldEmail,
	FieldMonthlyIncome,
	FieldCreditScore,
	FieldEmploymentYears,
	FieldExistingLoans,
	FieldLoanAmount,
}

// RawApplication is the field-keyed record supplied by an input surface.
// Values are strings or numbers.
type RawApplication map[string]any

type Applicant struct {
	Name            string
	Age             int
	Phone           string
	Email           string
	MonthlyIncome   float64
	CreditScore     int
	EmploymentYears float64
	ExistingLoans   float64
	LoanAmount      float64
}
