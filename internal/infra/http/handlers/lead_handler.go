package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/usecase"
)

const (
	maxIntakeBody = 64 << 10

	codePayloadTooLarge = "payload_too_large"
)

type LeadHandler struct {
	Intake *usecase.IntakeLeadUseCase
	Log    *zap.Logger
}

func NewLeadHandler(intake *usecase.IntakeLeadUseCase, log *zap.Logger) *LeadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadHandler{Intake: intake, Log: log}
}

type captureLeadResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// CaptureLead handles POST /api/consult.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIntakeBody)

	var input usecase.IntakeLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorResponse(w, http.StatusRequestEntityTooLarge, codePayloadTooLarge)
			return
		}
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeInvalidInput, decodeErrorField(err))
		return
	}

	out, err := h.Intake.Execute(r.Context(), input)
	if err != nil {
		var de *usecase.DomainError
		if errors.As(err, &de) {
			writeErrorResponse(w, http.StatusBadRequest, de.Code, de.Fields...)
			return
		}
		h.Log.Error("❌ failed to save lead", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeFailedToSave)
		return
	}

	writeJSON(w, http.StatusOK, captureLeadResponse{OK: true, ID: out.ID})
}

// decodeErrorField names the offending field when the JSON was well formed
// but carried a wrong type (e.g. "agree":"true").
func decodeErrorField(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field
	}
	return "body"
}
