// Package calendar models the month view: the visible date, the events on
// display, optimistic moves and refetch requests.
package calendar

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
)

// DefaultYearRange is how many years around the current one the picker
// offers.
const DefaultYearRange = 5

var (
	// ErrUnknownEvent is returned when moving an event not on display.
	ErrUnknownEvent = errors.New("evento no encontrado en el calendario")
	// ErrNotMovable is returned when moving a background band.
	ErrNotMovable = errors.New("el evento no se puede mover")
)

// Model is the calendar state. It is safe for concurrent use.
type Model struct {
	mu        sync.Mutex
	visible   date.Date
	today     func() date.Date
	yearRange int
	events    []*event.Event
	refetch   bool
}

// Option customizes a Model.
type Option func(*Model)

// WithToday overrides the clock.
func WithToday(fn func() date.Date) Option {
	return func(m *Model) { m.today = fn }
}

// WithYearRange sets the picker range. Values below 1 are ignored.
func WithYearRange(n int) Option {
	return func(m *Model) {
		if n >= 1 {
			m.yearRange = n
		}
	}
}

// New creates a Model showing today.
func New(opts ...Option) *Model {
	m := &Model{today: date.Today, yearRange: DefaultYearRange}
	for _, opt := range opts {
		opt(m)
	}
	m.visible = m.today()
	return m
}

// Date returns the visible date.
func (m *Model) Date() date.Date {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible
}

// Years returns the years the picker offers, ascending.
func (m *Model) Years() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.yearsLocked()
}

func (m *Model) yearsLocked() []int {
	cur := m.today().Year()
	out := make([]int, 0, 2*m.yearRange+1)
	for y := cur - m.yearRange; y <= cur+m.yearRange; y++ {
		out = append(out, y)
	}
	return out
}

// GotoDate shows d, clamped to the picker range.
func (m *Model) GotoDate(d date.Date) {
	m.mu.Lock()
	defer m.mu.Unlock()
	years := m.yearsLocked()
	lo, hi := years[0], years[len(years)-1]
	switch {
	case d.Year() < lo:
		d = date.New(lo, time.January, 1)
	case d.Year() > hi:
		d = date.New(hi, time.December, 1)
	}
	m.visible = d
}

// NextMonth advances one month.
func (m *Model) NextMonth() { m.GotoDate(m.Date().FirstOfMonth().AddMonths(1)) }

// PrevMonth goes back one month.
func (m *Model) PrevMonth() { m.GotoDate(m.Date().FirstOfMonth().AddMonths(-1)) }

// NextYear advances one year.
func (m *Model) NextYear() { m.GotoDate(m.Date().AddMonths(12)) } //nolint:mnd // months per year

// PrevYear goes back one year.
func (m *Model) PrevYear() { m.GotoDate(m.Date().AddMonths(-12)) } //nolint:mnd // months per year

// Today shows the current date.
func (m *Model) Today() { m.GotoDate(m.today()) }

// SetEvents replaces the events on display.
func (m *Model) SetEvents(events []*event.Event) {
	m.mu.Lock()
	m.events = append([]*event.Event(nil), events...)
	m.mu.Unlock()
}

// Events returns the events on display.
func (m *Model) Events() []*event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*event.Event(nil), m.events...)
}

// EventsOn returns the events of an ISO day ordered by display order, then
// title.
func (m *Model) EventsOn(day string) []*event.Event {
	m.mu.Lock()
	var out []*event.Event
	for _, e := range m.events {
		if e.Day() == day {
			out = append(out, e)
		}
	}
	m.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// Event returns the displayed event with the given id.
func (m *Model) Event(id event.ID) *event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return event.Find(m.events, id)
}

// Move is an optimistic date change on display.
type Move struct {
	Event *event.Event // the event as it was before the move
	From  string
	To    date.Date
}

// Moved returns the event as displayed after the move.
func (mv Move) Moved() *event.Event {
	c := mv.Event.Clone()
	c.Start = mv.To.String()
	return c
}

// Move shows the event with the given id on day to. Holiday bands cannot
// move; absences can, and are rejected by the reschedule flow.
func (m *Model) Move(id event.ID, to date.Date) (Move, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.events {
		if e.ID != id || id == "" {
			continue
		}
		if e.KindOf() == event.KindHoliday {
			return Move{}, ErrNotMovable
		}
		mv := Move{Event: e, From: e.Start, To: to}
		m.events[i] = mv.Moved()
		return mv, nil
	}
	return Move{}, fmt.Errorf("%w: %s", ErrUnknownEvent, id)
}

// Revert puts a moved event back on its original day. It is a no-op when
// the event has since been replaced by a refetch.
func (m *Model) Revert(mv Move) {
	if mv.Event == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.events {
		if e.ID == mv.Event.ID && e.Start == mv.To.String() {
			m.events[i] = mv.Event
			return
		}
	}
}

// Refetch requests a reload of every source.
func (m *Model) Refetch() {
	m.mu.Lock()
	m.refetch = true
	m.mu.Unlock()
}

// TakeRefetch reports and clears a pending refetch request.
func (m *Model) TakeRefetch() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.refetch
	m.refetch = false
	return r
}

// FindFirst returns the earliest task whose UT or ajuste contains query,
// ignoring case.
func (m *Model) FindFirst(query string) *event.Event {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var best *event.Event
	for _, e := range m.Events() {
		if e.KindOf() != event.KindTask {
			continue
		}
		if !strings.Contains(strings.ToLower(e.Props.UT.String()), q) &&
			!strings.Contains(strings.ToLower(e.Props.Ajuste.String()), q) {
			continue
		}
		if best == nil || e.Day() < best.Day() {
			best = e
		}
	}
	return best
}

// SearchGoto shows the day of the first match of query and returns it.
func (m *Model) SearchGoto(query string) (*event.Event, bool) {
	e := m.FindFirst(query)
	if e == nil {
		return nil, false
	}
	d, err := e.Date()
	if err != nil {
		return e, false
	}
	m.GotoDate(d)
	return e, true
}

// MonthGrid returns the weeks of the visible month, Monday first, padded
// with days of the adjacent months.
func (m *Model) MonthGrid() [][]date.Date {
	first := m.Date().FirstOfMonth()
	offset := (int(first.Weekday()) + 6) % 7 //nolint:mnd // Monday-based weekday
	start := first.AddDays(-offset)
	last := first.AddMonths(1).AddDays(-1)

	var weeks [][]date.Date
	for day := start; !day.After(last.Time); {
		week := make([]date.Date, 7) //nolint:mnd // days per week
		for i := range week {
			week[i] = day
			day = day.AddDays(1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// InMonth reports whether d is in the visible month.
func (m *Model) InMonth(d date.Date) bool {
	v := m.Date()
	return d.Year() == v.Year() && d.Month() == v.Month()
}
