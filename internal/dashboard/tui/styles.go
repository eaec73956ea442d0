package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bunnystock/leaddesk/internal/entity"
)

var (
	colorPrimary = lipgloss.Color("#2F6FED")
	colorMuted   = lipgloss.Color("#8A93A3")
	colorBorder  = lipgloss.Color("#D0D4DA")
	colorDanger  = lipgloss.Color("#E53935")
	colorWarning = lipgloss.Color("#FFC107")

	statusColors = map[entity.Status]lipgloss.Color{
		entity.StatusNew:        lipgloss.Color("#2F6FED"),
		entity.StatusInProgress: lipgloss.Color("#E68A00"),
		entity.StatusDone:       lipgloss.Color("#2E7D32"),
	}
)

type Styles struct {
	Title   lipgloss.Style
	Muted   lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Search  lipgloss.Style
	Focused lipgloss.Style
	Tab     lipgloss.Style
	TabOn   lipgloss.Style
	Modal   lipgloss.Style
	Menu    lipgloss.Style
	Cursor  lipgloss.Style
}

func DefaultStyles() Styles {
	search := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1)

	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Error:   lipgloss.NewStyle().Foreground(colorDanger),
		Warning: lipgloss.NewStyle().Foreground(colorWarning),
		Search:  search,
		Focused: search.BorderForeground(colorPrimary),
		Tab:     lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted),
		TabOn:   lipgloss.NewStyle().Padding(0, 1).Bold(true).Underline(true).Foreground(colorPrimary),
		Modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(colorPrimary).
			Padding(1, 2).
			Width(64),
		Menu: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1),
		Cursor: lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
	}
}

// Badge renders a status label in its status color.
func Badge(s entity.Status, label string) string {
	c, ok := statusColors[s]
	if !ok {
		c = colorMuted
	}
	return lipgloss.NewStyle().Bold(true).Foreground(c).Render("● " + label)
}
