package dashboard

import (
	"errors"
	"time"

	"github.com/bunnystock/leaddesk/internal/entity"
	"github.com/bunnystock/leaddesk/internal/usecase"
)

var ErrUnknownLead = errors.New("lead is not on the board")

var statusLabels = map[entity.Status]string{
	entity.StatusNew:        "신규",
	entity.StatusInProgress: "진행중",
	entity.StatusDone:       "완료",
}

func StatusLabel(s entity.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

type Summary struct {
	Total      int
	New        int
	InProgress int
	Done       int
}

// Board is the in-memory lead list fetched once per load and refined
// locally by text query and status filter.
type Board struct {
	items  []usecase.AdminLeadItem
	menus  map[string]*StatusMenu
	detail string

	Query  string
	Status entity.Status // empty shows every status
}

func NewBoard(items []usecase.AdminLeadItem) *Board {
	b := &Board{}
	b.Load(items)
	return b
}

// Load replaces the rows and resets per-row menus.
func (b *Board) Load(items []usecase.AdminLeadItem) {
	b.items = append([]usecase.AdminLeadItem(nil), items...)
	b.menus = make(map[string]*StatusMenu, len(items))
	if _, ok := b.index(b.detail); !ok {
		b.detail = ""
	}
}

func (b *Board) Len() int { return len(b.items) }

// Visible returns the rows passing both the status filter and the text query.
func (b *Board) Visible() []usecase.AdminLeadItem {
	out := make([]usecase.AdminLeadItem, 0, len(b.items))
	for _, it := range b.items {
		if b.Status != "" && entity.Status(it.Status) != b.Status {
			continue
		}
		if !ItemMatches(it, b.Query) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// ItemMatches applies the lead text search to a list item.
func ItemMatches(it usecase.AdminLeadItem, q string) bool {
	l := entity.Lead{Name: it.Name, Phone: it.Phone, Email: it.Email, Channel: it.Channel, Message: it.Message}
	return l.MatchesQuery(q)
}

// Summary counts every loaded row regardless of filters.
func (b *Board) Summary() Summary {
	s := Summary{Total: len(b.items)}
	for _, it := range b.items {
		switch entity.Status(it.Status) {
		case entity.StatusNew:
			s.New++
		case entity.StatusInProgress:
			s.InProgress++
		case entity.StatusDone:
			s.Done++
		}
	}
	return s
}

// CycleStatusFilter steps through all → new → in_progress → done → all.
func (b *Board) CycleStatusFilter() entity.Status {
	switch b.Status {
	case "":
		b.Status = entity.Statuses[0]
	default:
		next := entity.Status("")
		for i, s := range entity.Statuses {
			if s == b.Status && i+1 < len(entity.Statuses) {
				next = entity.Statuses[i+1]
			}
		}
		b.Status = next
	}
	return b.Status
}

// Menu returns the status menu of a row, synced with the row's status.
func (b *Board) Menu(id string) (*StatusMenu, bool) {
	i, ok := b.index(id)
	if !ok {
		return nil, false
	}
	m, ok := b.menus[id]
	if !ok {
		m = NewStatusMenu(entity.Status(b.items[i].Status))
		b.menus[id] = m
	}
	m.Sync(entity.Status(b.items[i].Status))
	return m, true
}

// Settle finishes a pending status change for a row. Only a confirmed change
// reaches the row.
func (b *Board) Settle(id string, err error) (entity.Status, error) {
	m, ok := b.Menu(id)
	if !ok {
		return "", ErrUnknownLead
	}
	s, committed := m.Settle(err)
	if committed {
		b.ApplyStatus(id, s)
	}
	return s, err
}

// ApplyStatus records a status the server already confirmed.
func (b *Board) ApplyStatus(id string, s entity.Status) bool {
	i, ok := b.index(id)
	if !ok || !s.Valid() {
		return false
	}
	b.items[i].Status = string(s)
	now := time.Now().UnixMilli()
	b.items[i].UpdatedAt = &now
	if m, ok := b.menus[id]; ok {
		m.Sync(s)
	}
	return true
}

// Select opens the detail view of a row.
func (b *Board) Select(id string) bool {
	if _, ok := b.index(id); !ok {
		return false
	}
	b.detail = id
	return true
}

func (b *Board) CloseDetail() { b.detail = "" }

// Detail returns the row shown in the detail view.
func (b *Board) Detail() (usecase.AdminLeadItem, bool) {
	i, ok := b.index(b.detail)
	if !ok {
		return usecase.AdminLeadItem{}, false
	}
	return b.items[i], true
}

func (b *Board) index(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i := range b.items {
		if b.items[i].ID == id {
			return i, true
		}
	}
	return 0, false
}
