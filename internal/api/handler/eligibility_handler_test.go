package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loan-eligibility/internal/api/handler/dto"
	"loan-eligibility/internal/domain/eligibility"
	"loan-eligibility/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEligibilityService struct {
	mock.Mock
}

func (m *MockEligibilityService) Evaluate(ctx context.Context, raw eligibility.RawApplication) (*eligibility.Decision, error) {
	args := m.Called(ctx, raw)
	if d, ok := args.Get(0).(*eligibility.Decision); ok {
		return d, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEligibilityService) Requirements() eligibility.Requirements {
	args := m.Called()
	return args.Get(0).(eligibility.Requirements)
}

const applicationBody = `{
	"name": "Asha Rao",
	"age": 30,
	"phone": "9876543210",
	"email": "asha@example.com",
	"monthlyIncome": "60000",
	"creditScore": 780,
	"employmentYears": 5,
	"existingLoans": 5000,
	"loanAmount": 500000
}`

func decideForTest(raw eligibility.RawApplication) (*eligibility.Decision, error) {
	result, err := eligibility.Evaluate(raw)
	if err != nil {
		return nil, err
	}
	return &eligibility.Decision{
		ID:          uuid.MustParse("9a3e0f5c-1111-4222-8333-444455556666"),
		Result:      *result,
		EvaluatedAt: time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC),
	}, nil
}

func TestEligibilityHandlerEvaluate(t *testing.T) {
	t.Run("returns the evaluation", func(t *testing.T) {
		mockService := new(MockEligibilityService)
		handler := NewEligibilityHandler(mockService, logger)

		var raw eligibility.RawApplication
		require.NoError(t, json.Unmarshal([]byte(applicationBody), &raw))
		d, err := decideForTest(raw)
		require.NoError(t, err)
		mockService.On("Evaluate", mock.Anything, mock.MatchedBy(func(raw eligibility.RawApplication) bool {
			return raw["age"] == json.Number("30") && raw["monthlyIncome"] == "60000"
		})).Return(d, nil)

		req := httptest.NewRequest(http.MethodPost, "/eligibility/evaluate", strings.NewReader(applicationBody))
		w := httptest.NewRecorder()

		handler.EvaluateEligibility(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var resp dto.EligibilityResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.True(t, resp.Eligible)
		assert.Equal(t, 100, resp.Score)
		assert.Equal(t, int64(7200000), resp.MaxLoan)
		assert.Equal(t, int64(416), resp.EMI)
		require.NotNil(t, resp.Ratio)
		assert.Equal(t, "9.0", *resp.Ratio)
		assert.Equal(t, []string{"All criteria met", "Good credit", "Stable income", "Employment verified"}, resp.Reasons)
		assert.Equal(t, "9a3e0f5c-1111-4222-8333-444455556666", resp.EvaluationID)
		mockService.AssertExpectations(t)
	})

	t.Run("ineligible applicant is still a 200", func(t *testing.T) {
		mockService := new(MockEligibilityService)
		handler := NewEligibilityHandler(mockService, logger)

		raw := eligibility.RawApplication{
			"name": "Ravi", "age": "19", "phone": "1", "email": "r@x.com",
			"monthlyIncome": "20000", "creditScore": "600", "employmentYears": "0.5",
			"existingLoans": "15000", "loanAmount": "4000000",
		}
		d, err := decideForTest(raw)
		require.NoError(t, err)
		mockService.On("Evaluate", mock.Anything, mock.Anything).Return(d, nil)

		body, _ := json.Marshal(raw)
		req := httptest.NewRequest(http.MethodPost, "/eligibility/evaluate", strings.NewReader(string(body)))
		w := httptest.NewRecorder()

		handler.EvaluateEligibility(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.EligibilityResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.False(t, resp.Eligible)
		assert.Equal(t, 0, resp.Score)
		assert.Equal(t, "Exceeds max ₹2,400,000", resp.Reasons[len(resp.Reasons)-1])
		require.NotNil(t, resp.Ratio)
		assert.Equal(t, "91.7", *resp.Ratio)
	})

	t.Run("validation error names the field", func(t *testing.T) {
		mockService := new(MockEligibilityService)
		handler := NewEligibilityHandler(mockService, logger)
		mockService.On("Evaluate", mock.Anything, mock.Anything).Return(nil, apperrors.NewMissingFieldError("phone"))

		req := httptest.NewRequest(http.MethodPost, "/eligibility/evaluate", strings.NewReader(`{"name":"Asha"}`))
		w := httptest.NewRecorder()

		handler.EvaluateEligibility(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp dto.ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "phone", resp.Error.Field)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	})

	t.Run("non-object body is rejected before evaluation", func(t *testing.T) {
		for _, body := range []string{`[1,2]`, `"text"`, `{"name":`} {
			mockService := new(MockEligibilityService)
			handler := NewEligibilityHandler(mockService, logger)

			req := httptest.NewRequest(http.MethodPost, "/eligibility/evaluate", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.EvaluateEligibility(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			mockService.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
		}
	})

	t.Run("trailing content after the object is rejected", func(t *testing.T) {
		for _, body := range []string{applicationBody + "garbage", applicationBody + `{"name":"Ravi"}`, applicationBody + "]"} {
			mockService := new(MockEligibilityService)
			handler := NewEligibilityHandler(mockService, logger)

			req := httptest.NewRequest(http.MethodPost, "/eligibility/evaluate", strings.NewReader(body))
			w := httptest.NewRecorder()

			handler.EvaluateEligibility(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			mockService.AssertNotCalled(t, "Evaluate", mock.Anything, mock.Anything)
		}
	})

	t.Run("trailing whitespace is accepted", func(t *testing.T) {
		mockService := new(MockEligibilityService)
		handler := NewEligibilityHandler(mockService, logger)
		mockService.On("Evaluate", mock.Anything, mock.Anything).Return(nil, apperrors.NewMissingFieldError("phone"))

		req := httptest.NewRequest(http.MethodPost, "/eligibility/evaluate", strings.NewReader(`{"name":"Asha"}`+" \n\t"))
		w := httptest.NewRecorder()

		handler.EvaluateEligibility(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("null body evaluates an empty application", func(t *testing.T) {
		mockService := new(MockEligibilityService)
		handler := NewEligibilityHandler(mockService, logger)
		mockService.On("Evaluate", mock.Anything, eligibility.RawApplication{}).Return(nil, apperrors.NewMissingFieldError("name"))

		req := httptest.NewRequest(http.MethodPost, "/eligibility/evaluate", strings.NewReader(`null`))
		w := httptest.NewRecorder()

		handler.EvaluateEligibility(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("unexpected error is a 500", func(t *testing.T) {
		mockService := new(MockEligibilityService)
		handler := NewEligibilityHandler(mockService, logger)
		mockService.On("Evaluate", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		req := httptest.NewRequest(http.MethodPost, "/eligibility/evaluate", strings.NewReader(applicationBody))
		w := httptest.NewRecorder()

		handler.EvaluateEligibility(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestEligibilityHandlerGetRequirements(t *testing.T) {
	mockService := new(MockEligibilityService)
	handler := NewEligibilityHandler(mockService, logger)
	mockService.On("Requirements").Return(eligibility.ListRequirements())

	req := httptest.NewRequest(http.MethodGet, "/eligibility/requirements", nil)
	w := httptest.NewRecorder()

	handler.GetRequirements(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.RequirementsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, eligibility.RequiredFields, resp.Fields)
	assert.Len(t, resp.Criteria, 6)
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantField  string
	}{
		{"malformed field", apperrors.NewMalformedFieldError("age", errors.New("bad")), http.StatusBadRequest, "age"},
		{"invalid argument", apperrors.ErrInvalidArgument, http.StatusBadRequest, ""},
		{"unauthorized", apperrors.ErrUnauthorized, http.StatusUnauthorized, ""},
		{"publish error", apperrors.WrapPublishError(errors.New("down"), "failed"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			respondError(w, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantField, resp.Error.Field)
			assert.NotEmpty(t, resp.Error.Message)
		})
	}
}
