package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/bunnystock/leaddesk/internal/usecase"
)

type LeadQueryHandler struct {
	List *usecase.ListLeadsUseCase
	Log  *zap.Logger
}

func NewLeadQueryHandler(list *usecase.ListLeadsUseCase, log *zap.Logger) *LeadQueryHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadQueryHandler{List: list, Log: log}
}

type publicListResponse struct {
	OK    bool                     `json:"ok"`
	Items []usecase.PublicLeadItem `json:"items"`
}

type adminListResponse struct {
	OK bool `json:"ok"`
	*usecase.AdminListOutput
}

// Public handles GET /api/consults: masked names only, never cached.
func (h *LeadQueryHandler) Public(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, max-age=0")

	items, err := h.List.Public(r.Context(), queryInt(r, "limit"))
	if err != nil {
		h.Log.Error("❌ public lead list failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeFailedToFetch)
		return
	}
	writeJSON(w, http.StatusOK, publicListResponse{OK: true, Items: items})
}

// Admin handles GET /api/admin/consults.
func (h *LeadQueryHandler) Admin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	out, err := h.List.Admin(r.Context(), usecase.AdminListInput{
		Limit:     queryInt(r, "limit"),
		Status:    q.Get("status"),
		Query:     q.Get("q"),
		Start:     q.Get("start"),
		End:       q.Get("end"),
		PageToken: q.Get("pageToken"),
	})
	if err != nil {
		var de *usecase.DomainError
		if errors.As(err, &de) {
			writeErrorResponse(w, http.StatusBadRequest, de.Code)
			return
		}
		h.Log.Error("❌ admin lead list failed", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, usecase.CodeFailedToFetch)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, adminListResponse{OK: true, AdminListOutput: out})
}

// queryInt returns 0 (the default limit) for a missing or non-numeric value.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
