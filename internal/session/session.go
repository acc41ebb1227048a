// Package session holds the state shared by every flow of one operator
// session: the calendar handle, the record being viewed, the raw task cache
// and the password gate.
package session

import (
	"slices"
	"sync"

	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/gate"
)

// Calendar is the part of the calendar the flows depend on.
type Calendar interface {
	Date() date.Date
	Refetch()
}

// Session is safe for concurrent use.
type Session struct {
	cal  Calendar
	gate *gate.Gate

	mu      sync.RWMutex
	current *event.Event
	raw     []*event.Event
}

// New creates a Session bound to a calendar and a gate.
func New(cal Calendar, g *gate.Gate) *Session {
	if g == nil {
		g = gate.New()
	}
	return &Session{cal: cal, gate: g}
}

// Calendar returns the calendar handle.
func (s *Session) Calendar() Calendar { return s.cal }

// Gate returns the session's password gate.
func (s *Session) Gate() *gate.Gate { return s.gate }

// SetCurrent records the event shown in the detail modal. Nil clears it.
func (s *Session) SetCurrent(ev *event.Event) {
	s.mu.Lock()
	s.current = ev
	s.mu.Unlock()
}

// Current returns the event last shown in the detail modal.
func (s *Session) Current() *event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Resolve returns explicit when given, else the current event. The cached
// current event may be stale, so callers that have the record pass it.
func (s *Session) Resolve(explicit *event.Event) *event.Event {
	if explicit != nil {
		return explicit
	}
	return s.Current()
}

// SetRaw replaces the raw task cache.
func (s *Session) SetRaw(events []*event.Event) {
	s.mu.Lock()
	s.raw = slices.Clone(events)
	s.mu.Unlock()
}

// Raw returns a copy of the raw task cache.
func (s *Session) Raw() []*event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.raw)
}

// FindRaw looks an event up in the raw cache.
func (s *Session) FindRaw(id event.ID) *event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return event.Find(s.raw, id)
}

// Refetch asks the calendar to reload all sources.
func (s *Session) Refetch() {
	if s.cal != nil {
		s.cal.Refetch()
	}
}

// VisibleYear is the year of the calendar's visible date.
func (s *Session) VisibleYear() int {
	if s.cal == nil {
		return date.Today().Year()
	}
	return s.cal.Date().Year()
}
