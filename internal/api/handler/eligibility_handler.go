package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"loan-eligibility/internal/api/handler/dto"
	"loan-eligibility/internal/domain/eligibility"
	"loan-eligibility/internal/pkg/apperrors"
)

const maxApplicationBytes = 64 << 10

type EligibilityHandler struct {
	service eligibility.EligibilityService
	logger  *slog.Logger
}

func NewEligibilityHandler(s eligibility.EligibilityService, l *slog.Logger) *EligibilityHandler {
	return &EligibilityHandler{
		service: s,
		logger:  l.With("component", "EligibilityHandler"),
	}
}

// decodeApplication reads a JSON object into a RawApplication, keeping
// numbers as json.Number so the validator sees the caller's exact digits.
func decodeApplication(w http.ResponseWriter, r *http.Request) (eligibility.RawApplication, error) {
	if r.Body == nil {
		return nil, fmt.Errorf("%w: no request body", apperrors.ErrInvalidArgument)
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxApplicationBytes))
	decoder.UseNumber()

	var raw eligibility.RawApplication
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: request body must be a JSON object: %v", apperrors.ErrInvalidArgument, err)
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: request body must contain a single JSON object", apperrors.ErrInvalidArgument)
	}
	if raw == nil {
		raw = eligibility.RawApplication{}
	}
	return raw, nil
}

// EvaluateEligibility handles a loan eligibility check.
//
// @Summary Evaluate loan eligibility
// @Description Validates the nine applicant fields and returns the verdict, score, loan ceiling, EMI, debt ratio and a narrated summary. Ineligibility is a normal 200 response; only missing or malformed fields are rejected.
// @Tags Eligibility
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param application body dto.EligibilityRequest true "Applicant details"
// @Success 200 {object} dto.EligibilityResponse "Evaluation result"
// @Failure 400 {object} dto.ErrorResponse "Missing or malformed field"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /eligibility/evaluate [post]
func (h *EligibilityHandler) EvaluateEligibility(w http.ResponseWriter, r *http.Request) {
	raw, err := decodeApplication(w, r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode application", slog.Any("error", err))
		respondError(w, err)
		return
	}

	decision, err := h.service.Evaluate(r.Context(), raw)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewEligibilityResponse(decision))
}

// GetRequirements lists the required fields and the scoring rules.
//
// @Summary List eligibility requirements
// @Description Returns the fields an application must carry and how each rule is scored.
// @Tags Eligibility
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.RequirementsResponse "Requirements"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /eligibility/requirements [get]
func (h *EligibilityHandler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, dto.NewRequirementsResponse(h.service.Requirements()))
}
