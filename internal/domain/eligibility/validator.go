package eligibility

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"loan-eligibility/internal/pkg/apperrors"
)

const (
	// MaxAmount bounds every rupee amount and the employment years so that the
	// loan ceiling and installment stay well inside int64.
	MaxAmount = 1e12
	// maxWholeNumber bounds age and credit score.
	maxWholeNumber = 1 << 31
)

var errNotFinite = errors.New("value is not finite")

// Validate checks that every required field is present and that numeric fields
// parse, then returns the typed applicant. The first defect found, in
// RequiredFields order, is returned as an *apperrors.ValidationError.
func Validate(raw RawApplication) (*Applicant, error) {
	var (
		applicant Applicant
		err       error
	)

	if applicant.Name, err = textField(raw, FieldName); err != nil {
		return nil, err
	}
	if applicant.Age, err = integerField(raw, FieldAge); err != nil {
		return nil, err
	}
	if applicant.Phone, err = textField(raw, FieldPhone); err != nil {
		return nil, err
	}
	if applicant.Email, err = textField(raw, FieldEmail); err != nil {
		return nil, err
	}
	if applicant.MonthlyIncome, err = amountField(raw, FieldMonthlyIncome); err != nil {
		return nil, err
	}
	if applicant.CreditScore, err = integerField(raw, FieldCreditScore); err != nil {
		return nil, err
	}
	if applicant.EmploymentYears, err = amountField(raw, FieldEmploymentYears); err != nil {
		return nil, err
	}
	if applicant.ExistingLoans, err = amountField(raw, FieldExistingLoans); err != nil {
		return nil, err
	}
	if applicant.LoanAmount, err = amountField(raw, FieldLoanAmount); err != nil {
		return nil, err
	}

	return &applicant, nil
}

func textField(raw RawApplication, field string) (string, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return "", apperrors.NewMissingFieldError(field)
	}

	var text string
	switch v := value.(type) {
	case string:
		text = strings.TrimSpace(v)
	case json.Number:
		text = v.String()
	case float64:
		text = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		text = strconv.Itoa(v)
	case int64:
		text = strconv.FormatInt(v, 10)
	default:
		text = strings.TrimSpace(fmt.Sprint(v))
	}

	if text == "" {
		return "", apperrors.NewMissingFieldError(field)
	}
	return text, nil
}

func numberField(raw RawApplication, field string) (float64, error) {
	value, ok := raw[field]
	if !ok || value == nil {
		return 0, apperrors.NewMissingFieldError(field)
	}

	var (
		number float64
		err    error
	)
	switch v := value.(type) {
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return 0, apperrors.NewMissingFieldError(field)
		}
		number, err = strconv.ParseFloat(text, 64)
	case json.Number:
		number, err = v.Float64()
	case float64:
		number = v
	case float32:
		number = float64(v)
	case int:
		number = float64(v)
	case int32:
		number = float64(v)
	case int64:
		number = float64(v)
	default:
		err = fmt.Errorf("unsupported type %T", value)
	}
	if err != nil {
		return 0, apperrors.NewMalformedFieldError(field, err)
	}
	if math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, apperrors.NewMalformedFieldError(field, errNotFinite)
	}
	return number, nil
}

// integerField keeps the whole part of the number, so "30.7" reads as 30.
func integerField(raw RawApplication, field string) (int, error) {
	number, err := numberField(raw, field)
	if err != nil {
		return 0, err
	}
	whole := math.Trunc(number)
	if whole >= maxWholeNumber || whole <= -maxWholeNumber {
		return 0, apperrors.NewValidationError(field, "is out of range")
	}
	return int(whole), nil
}

func amountField(raw RawApplication, field string) (float64, error) {
	number, err := numberField(raw, field)
	if err != nil {
		return 0, err
	}
	if number < 0 {
		return 0, apperrors.NewValidationError(field, "must not be negative")
	}
	if number > MaxAmount {
		return 0, apperrors.NewValidationError(field, "must not exceed "+FormatAmount(MaxAmount))
	}
	return number, nil
}
