// Package dashboard holds the admin dashboard state: the lead board with its
// client-side filters and the per-row status menu. Rendering lives elsewhere
// (the TUI and the server-rendered admin pages).
package dashboard

import (
	"github.com/bunnystock/leaddesk/internal/entity"
)

type MenuState int

const (
	MenuClosed MenuState = iota
	MenuOpen
	MenuPending
)

func (s MenuState) String() string {
	switch s {
	case MenuOpen:
		return "open"
	case MenuPending:
		return "pending"
	}
	return "closed"
}

// StatusMenu is the per-row status control. The displayed status changes
// only through Settle(nil) after the server confirmed the update.
type StatusMenu struct {
	state   MenuState
	current entity.Status
	target  entity.Status
	err     error
}

func NewStatusMenu(current entity.Status) *StatusMenu {
	return &StatusMenu{current: current}
}

func (m *StatusMenu) State() MenuState       { return m.state }
func (m *StatusMenu) Current() entity.Status { return m.current }
func (m *StatusMenu) Err() error             { return m.err }

// Target is the status being requested while pending.
func (m *StatusMenu) Target() (entity.Status, bool) {
	return m.target, m.state == MenuPending
}

// Toggle is a click on the badge.
func (m *StatusMenu) Toggle() {
	switch m.state {
	case MenuClosed:
		m.state = MenuOpen
	case MenuOpen:
		m.state = MenuClosed
	}
}

// Select picks an option. It returns true when a status update must be sent;
// picking the current status just closes the menu.
func (m *StatusMenu) Select(s entity.Status) bool {
	if m.state != MenuOpen || !s.Valid() {
		return false
	}
	if s == m.current {
		m.state = MenuClosed
		return false
	}
	m.state = MenuPending
	m.target = s
	m.err = nil
	return true
}

// Settle reports the outcome of the update started by Select. On success the
// new status is committed and returned; on failure the menu reopens with the
// previous status and keeps the error.
func (m *StatusMenu) Settle(err error) (entity.Status, bool) {
	if m.state != MenuPending {
		return m.current, false
	}
	target := m.target
	m.target = ""
	if err != nil {
		m.err = err
		m.state = MenuOpen
		return m.current, false
	}
	m.current = target
	m.err = nil
	m.state = MenuClosed
	return target, true
}

func (m *StatusMenu) ClickOutside() { m.close() }
func (m *StatusMenu) Escape()       { m.close() }

func (m *StatusMenu) close() {
	if m.state == MenuOpen {
		m.state = MenuClosed
	}
}

// Sync takes the row's status as the menu's current value. Ignored while a
// request is in flight.
func (m *StatusMenu) Sync(s entity.Status) {
	if m.state == MenuPending {
		return
	}
	m.current = s
}
