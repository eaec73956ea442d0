package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bunnystock/leaddesk/internal/entity"
	"github.com/bunnystock/leaddesk/internal/infra/integration/leadapi"
	"github.com/bunnystock/leaddesk/internal/usecase"
)

// LeadAPI is satisfied by *leadapi.Client.
type LeadAPI interface {
	ListAll(ctx context.Context, p leadapi.ListParams) (*leadapi.ListResponse, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type leadsLoadedMsg struct {
	items    []usecase.AdminLeadItem
	degraded bool
	err      error
}

type statusSettledMsg struct {
	id  string
	err error
}

func loadLeads(api LeadAPI, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		out, err := api.ListAll(ctx, leadapi.ListParams{Limit: usecase.AdminMaxLimit})
		if err != nil {
			return leadsLoadedMsg{err: err}
		}
		return leadsLoadedMsg{items: out.Items, degraded: out.Degraded}
	}
}

func updateStatus(api LeadAPI, timeout time.Duration, id string, s entity.Status) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return statusSettledMsg{id: id, err: api.UpdateStatus(ctx, id, string(s))}
	}
}
