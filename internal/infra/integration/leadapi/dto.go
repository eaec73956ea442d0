package leadapi

import (
	"fmt"

	"github.com/bunnystock/leaddesk/internal/usecase"
)

type ListParams struct {
	Limit     int
	Status    string
	Query     string
	Start     string
	End       string
	PageToken string
}

type ListResponse struct {
	OK            bool                    `json:"ok"`
	Items         []usecase.AdminLeadItem `json:"items"`
	NextPageToken string                  `json:"nextPageToken"`
	Degraded      bool                    `json:"degraded"`
	Error         string                  `json:"error"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type errorBody struct {
	Error string `json:"error"`
}

// APIError is a non-2xx answer from the lead API.
type APIError struct {
	StatusCode int
	Code       string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("lead api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("lead api: %s (status %d)", e.Code, e.StatusCode)
}
