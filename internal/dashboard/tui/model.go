// Package tui is the terminal admin dashboard: the lead board with search,
// status filter, detail view and the per-row status menu.
package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bunnystock/leaddesk/internal/dashboard"
	"github.com/bunnystock/leaddesk/internal/entity"
	"github.com/bunnystock/leaddesk/internal/usecase"
)

type Options struct {
	// Timeout bounds every API call.
	Timeout  time.Duration
	Location *time.Location
}

type Model struct {
	api     LeadAPI
	timeout time.Duration
	loc     *time.Location
	styles  Styles

	board   *dashboard.Board
	visible []usecase.AdminLeadItem
	table   table.Model
	search  textinput.Model
	spinner spinner.Model

	searchFocused bool
	loading       bool
	degraded      bool
	loadErr       error
	notice        string

	// menuID is the row whose status menu has focus.
	menuID     string
	menuCursor int
	pending    map[string]bool

	width  int
	height int
}

func New(api LeadAPI, opts Options) Model {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "접수일시", Width: 16},
			{Title: "이름", Width: 10},
			{Title: "연락처", Width: 13},
			{Title: "이메일", Width: 24},
			{Title: "유입", Width: 10},
			{Title: "상태", Width: 8},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	si := textinput.New()
	si.Placeholder = "이름, 연락처, 이메일, 유입경로, 내용 검색"
	si.CharLimit = 100
	si.Width = 48

	return Model{
		api:     api,
		timeout: opts.Timeout,
		loc:     opts.Location,
		styles:  DefaultStyles(),
		board:   dashboard.NewBoard(nil),
		table:   t,
		search:  si,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
		pending: make(map[string]bool),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(loadLeads(m.api, m.timeout), m.spinner.Tick)
}

func (m Model) busy() bool {
	return m.loading || len(m.pending) > 0
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(5, msg.Height-14))
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case leadsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil
		}
		m.loadErr = nil
		m.degraded = msg.degraded
		m.menuID = ""
		m.board.Load(msg.items)
		m.refresh()
		return m, nil

	case statusSettledMsg:
		return m.settle(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) settle(msg statusSettledMsg) Model {
	delete(m.pending, msg.id)
	s, err := m.board.Settle(msg.id, msg.err)
	switch {
	case errors.Is(err, dashboard.ErrUnknownLead):
	case err != nil:
		m.notice = fmt.Sprintf("상태 변경 실패: %v", err)
		// The menu reopened with the previous status.
		m.menuID = msg.id
		m.menuCursor = statusIndex(s)
	default:
		m.notice = fmt.Sprintf("상태가 '%s'(으)로 변경되었습니다.", dashboard.StatusLabel(s))
		if m.menuID == msg.id {
			m.menuID = ""
		}
	}
	m.refresh()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	if m.searchFocused {
		switch key {
		case "esc", "enter":
			m.searchFocused = false
			m.search.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		m.board.Query = m.search.Value()
		m.refresh()
		return m, cmd
	}

	if menu := m.focusedMenu(); menu != nil {
		if handled, cmd := m.menuKey(menu, key); handled {
			return m, cmd
		}
		// Any other key is a click outside the menu.
		menu.ClickOutside()
		m.menuID = ""
	}

	switch key {
	case "q":
		return m, tea.Quit
	case "/":
		m.searchFocused = true
		return m, m.search.Focus()
	case "tab":
		m.board.CycleStatusFilter()
		m.refresh()
		return m, nil
	case "r":
		if len(m.pending) > 0 {
			m.notice = "변경 요청이 끝난 뒤 다시 불러올 수 있습니다."
			return m, nil
		}
		m.loading = true
		m.notice = ""
		return m, tea.Batch(loadLeads(m.api, m.timeout), m.spinner.Tick)
	case "s", " ":
		id := m.targetID()
		if id == "" {
			return m, nil
		}
		menu, ok := m.board.Menu(id)
		if !ok {
			return m, nil
		}
		menu.Toggle()
		if menu.State() == dashboard.MenuOpen {
			m.menuID = id
			m.menuCursor = statusIndex(menu.Current())
		}
		return m, nil
	case "esc":
		m.board.CloseDetail()
		return m, nil
	case "enter":
		if _, open := m.board.Detail(); !open {
			m.board.Select(m.selectedID())
		}
		return m, nil
	}

	if _, open := m.board.Detail(); open {
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// menuKey handles keys aimed at the focused menu. While the menu is pending
// its options are disabled and these keys do nothing.
func (m *Model) menuKey(menu *dashboard.StatusMenu, key string) (bool, tea.Cmd) {
	if menu.State() == dashboard.MenuPending {
		switch key {
		case "enter", "esc", "s", " ":
			return true, nil
		}
		return false, nil
	}

	switch key {
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
		return true, nil
	case "down", "j":
		if m.menuCursor < len(entity.Statuses)-1 {
			m.menuCursor++
		}
		return true, nil
	case "enter":
		target := entity.Statuses[m.menuCursor]
		if menu.Select(target) {
			m.pending[m.menuID] = true
			m.notice = ""
			return true, tea.Batch(updateStatus(m.api, m.timeout, m.menuID, target), m.spinner.Tick)
		}
		if menu.State() == dashboard.MenuClosed {
			m.menuID = ""
		}
		return true, nil
	case "esc":
		menu.Escape()
	case "s", " ":
		menu.Toggle()
	default:
		return false, nil
	}
	if menu.State() == dashboard.MenuClosed {
		m.menuID = ""
	}
	return true, nil
}

func (m Model) focusedMenu() *dashboard.StatusMenu {
	if m.menuID == "" {
		return nil
	}
	menu, ok := m.board.Menu(m.menuID)
	if !ok || menu.State() == dashboard.MenuClosed {
		return nil
	}
	return menu
}

// targetID is the lead the status key acts on: the detail view's lead when
// it is open, the highlighted row otherwise.
func (m Model) targetID() string {
	if it, open := m.board.Detail(); open {
		return it.ID
	}
	return m.selectedID()
}

func (m Model) selectedID() string {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.visible) {
		return ""
	}
	return m.visible[i].ID
}

func (m *Model) refresh() {
	m.visible = m.board.Visible()
	rows := make([]table.Row, 0, len(m.visible))
	for _, it := range m.visible {
		label := dashboard.StatusLabel(entity.Status(it.Status))
		if m.pending[it.ID] {
			label += " …"
		}
		rows = append(rows, table.Row{
			m.formatTime(it.CreatedAt),
			it.Name,
			it.Phone,
			it.Email,
			it.Channel,
			label,
		})
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

func (m Model) formatTime(millis int64) string {
	return time.UnixMilli(millis).In(m.loc).Format("2006-01-02 15:04")
}

func statusIndex(s entity.Status) int {
	for i, st := range entity.Statuses {
		if st == s {
			return i
		}
	}
	return 0
}

func (m Model) View() string {
	var sb strings.Builder

	title := m.styles.Title.Render("상담 신청 관리")
	if m.busy() {
		title += " " + m.spinner.View()
	}
	sb.WriteString(title + "\n")

	s := m.board.Summary()
	sb.WriteString(m.styles.Muted.Render(fmt.Sprintf("전체 %d · 신규 %d · 진행중 %d · 완료 %d", s.Total, s.New, s.InProgress, s.Done)))
	sb.WriteString("\n\n")

	searchStyle := m.styles.Search
	if m.searchFocused {
		searchStyle = m.styles.Focused
	}
	sb.WriteString(searchStyle.Render(m.search.View()))
	sb.WriteString("  " + m.renderTabs() + "\n")

	if m.degraded {
		sb.WriteString(m.styles.Warning.Render("정렬 인덱스를 사용할 수 없어 ID 순으로 표시합니다.") + "\n")
	}
	if m.loadErr != nil {
		sb.WriteString(m.styles.Error.Render(fmt.Sprintf("목록을 불러오지 못했습니다: %v", m.loadErr)) + "\n")
	}

	if it, open := m.board.Detail(); open {
		sb.WriteString(m.renderDetail(it))
	} else {
		sb.WriteString(m.table.View())
		if n := len(m.visible); n != m.board.Len() {
			sb.WriteString("\n" + m.styles.Muted.Render(fmt.Sprintf("%d / %d건 표시", n, m.board.Len())))
		}
	}

	if menu := m.focusedMenu(); menu != nil {
		sb.WriteString("\n" + m.renderMenu(menu))
	}
	if m.notice != "" {
		sb.WriteString("\n" + m.notice)
	}

	sb.WriteString("\n" + m.styles.Muted.Render("/ 검색 · tab 상태 필터 · enter 상세 · s 상태 변경 · r 새로고침 · esc 닫기 · q 종료"))
	return sb.String()
}

func (m Model) renderTabs() string {
	tabs := []entity.Status{""}
	tabs = append(tabs, entity.Statuses...)

	parts := make([]string, 0, len(tabs))
	for _, s := range tabs {
		label := "전체"
		if s != "" {
			label = dashboard.StatusLabel(s)
		}
		if s == m.board.Status {
			parts = append(parts, m.styles.TabOn.Render(label))
		} else {
			parts = append(parts, m.styles.Tab.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderMenu(menu *dashboard.StatusMenu) string {
	var sb strings.Builder
	target, pending := menu.Target()
	for i, s := range entity.Statuses {
		cursor := "  "
		if i == m.menuCursor {
			cursor = m.styles.Cursor.Render("› ")
		}
		line := cursor + Badge(s, dashboard.StatusLabel(s))
		if s == menu.Current() {
			line += " ✓"
		}
		if pending && s == target {
			line += " " + m.spinner.View() + " 변경 중"
		}
		if pending {
			line = m.styles.Muted.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	if err := menu.Err(); err != nil {
		sb.WriteString(m.styles.Error.Render("변경 실패: " + err.Error()))
	}
	return m.styles.Menu.Render(strings.TrimRight(sb.String(), "\n"))
}

func (m Model) renderDetail(it usecase.AdminLeadItem) string {
	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render(it.Name) + "  " + Badge(entity.Status(it.Status), dashboard.StatusLabel(entity.Status(it.Status))) + "\n\n")
	fmt.Fprintf(&sb, "연락처   %s\n", it.Phone)
	fmt.Fprintf(&sb, "이메일   %s\n", it.Email)
	if it.Channel != "" {
		fmt.Fprintf(&sb, "유입경로 %s\n", it.Channel)
	}
	fmt.Fprintf(&sb, "접수일시 %s\n", m.formatTime(it.CreatedAt))
	if it.UpdatedAt != nil {
		fmt.Fprintf(&sb, "변경일시 %s\n", m.formatTime(*it.UpdatedAt))
	}
	sb.WriteString("\n" + it.Message)
	return m.styles.Modal.Render(sb.String())
}
