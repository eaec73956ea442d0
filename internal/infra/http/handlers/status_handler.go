package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/usecase"
)

type StatusHandler struct {
	Update *usecase.UpdateStatusUseCase
	Log    *zap.Logger
}

func NewStatusHandler(update *usecase.UpdateStatusUseCase, log *zap.Logger) *StatusHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusHandler{Update: update, Log: log}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// Handle serves PATCH /api/consults/{id}/status. Access is checked by the
// router before this runs.
func (h *StatusHandler) Handle(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4<<10)

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBareError(w, http.StatusBadRequest, usecase.CodeBadRequest)
		return
	}

	err := h.Update.Execute(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		var de *usecase.DomainError
		if errors.As(err, &de) {
			status := http.StatusBadRequest
			if de.Code == usecase.CodeNotFound {
				status = http.StatusNotFound
			}
			writeBareError(w, status, de.Code)
			return
		}
		h.Log.Error("❌ status update failed", zap.String("lead_id", chi.URLParam(r, "id")), zap.Error(err))
		writeBareError(w, http.StatusInternalServerError, usecase.CodeUpdateFailed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
