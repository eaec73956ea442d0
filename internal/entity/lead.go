package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrInvalidStatus = errors.New("invalid lead status")
)

type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists the workflow stages in display order.
var Statuses = []Status{StatusNew, StatusInProgress, StatusDone}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNew, StatusInProgress, StatusDone:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	Message   string     `json:"message"`
	Agree     bool       `json:"agree"`
	Channel   string     `json:"channel,omitempty"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// MaskName keeps the first and last rune and stars the rest.
// Two-rune names keep only the first rune; empty names become "고객".
func MaskName(name string) string {
	r := []rune(strings.TrimSpace(name))
	switch len(r) {
	case 0:
		return "고객"
	case 1:
		return string(r)
	case 2:
		return string(r[0]) + "*"
	}
	return string(r[0]) + strings.Repeat("*", len(r)-2) + string(r[len(r)-1])
}

// Cursor points at the last row of a page in (created_at DESC, id DESC) order.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

type LeadFilter struct {
	Status *Status
	Start  *time.Time // inclusive
	End    *time.Time // exclusive
	After  *Cursor
	Limit  int
}

type LeadPage struct {
	Leads []*Lead
	// Next is nil when there are no more rows.
	Next *Cursor
	// Degraded is set when the store had to fall back to id ordering.
	Degraded bool
}

type LeadRepositoryInterface interface {
	Create(ctx context.Context, lead *Lead) error
	List(ctx context.Context, filter LeadFilter) (*LeadPage, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	CountByStatus(ctx context.Context) (map[Status]int, error)
	OldestWithStatus(ctx context.Context, status Status) (*time.Time, error)
}

// MatchesQuery reports whether q occurs, case-insensitively, in any of the
// searchable text fields. An empty query matches everything.
func (l *Lead) MatchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for _, field := range []string{l.Name, l.Phone, l.Email, l.Channel, l.Message} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
