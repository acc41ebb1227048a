// Package source loads the three event collections for the calendar and
// reconciles them with the session cache and the type and search filters.
package source

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/session"
)

// Alert messages for failed collections.
const (
	AlertTasks    = "Error al cargar tareas"
	AlertAbsences = "Error al cargar ausencias"
	AlertHolidays = "Error al cargar feriados"
)

// Fetcher is the backend the adapter reads from.
type Fetcher interface {
	Tasks(ctx context.Context) ([]*event.Event, error)
	Absences(ctx context.Context) ([]*event.Event, error)
	Holidays(ctx context.Context) ([]*event.Event, error)
}

// Saver persists a fetched collection.
type Saver interface {
	Save(ctx context.Context, kind event.Kind, events []*event.Event, fetchedAt time.Time) error
}

// Alert is a collection that failed to load.
type Alert struct {
	Kind    event.Kind
	Message string
	Err     error
}

// Snapshot is the result of one load.
type Snapshot struct {
	Tasks     []*event.Event
	Absences  []*event.Event
	Holidays  []*event.Event
	Alerts    []Alert
	FetchedAt time.Time
}

// All returns holidays, absences and tasks in one slice.
func (s Snapshot) All() []*event.Event {
	out := make([]*event.Event, 0, len(s.Tasks)+len(s.Absences)+len(s.Holidays))
	out = append(out, s.Holidays...)
	out = append(out, s.Absences...)
	return append(out, s.Tasks...)
}

// Err returns the first alert's error, or nil.
func (s Snapshot) Err() error {
	if len(s.Alerts) == 0 {
		return nil
	}
	return s.Alerts[0].Err
}

// Adapter is the calendar's event source.
type Adapter struct {
	fetch Fetcher
	sess  *session.Session
	save  Saver
	now   func() time.Time
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithSaver persists every successful fetch.
func WithSaver(s Saver) Option {
	return func(a *Adapter) { a.save = s }
}

// New creates an Adapter writing the raw task cache into sess.
func New(f Fetcher, sess *session.Session, opts ...Option) *Adapter {
	a := &Adapter{fetch: f, sess: sess, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load fetches the three collections concurrently. A failed collection is
// reported as an alert and does not block the others. On task success the
// session cache is replaced with the unfiltered list before filtering.
func (a *Adapter) Load(ctx context.Context, opts board.FilterOptions) Snapshot {
	var (
		snap                    Snapshot
		taskErr, absErr, holErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snap.Tasks, taskErr = a.fetch.Tasks(gctx)
		return nil
	})
	g.Go(func() error {
		snap.Absences, absErr = a.fetch.Absences(gctx)
		return nil
	})
	g.Go(func() error {
		snap.Holidays, holErr = a.fetch.Holidays(gctx)
		return nil
	})
	_ = g.Wait()
	snap.FetchedAt = a.now()

	if taskErr != nil {
		snap.Tasks = nil
		snap.Alerts = append(snap.Alerts, Alert{Kind: event.KindTask, Message: AlertTasks, Err: taskErr})
	} else {
		a.sess.SetRaw(snap.Tasks)
		a.persist(ctx, event.KindTask, snap.Tasks, snap.FetchedAt)
		snap.Tasks = board.Filter(snap.Tasks, opts)
	}
	if absErr != nil {
		snap.Absences = nil
		snap.Alerts = append(snap.Alerts, Alert{Kind: event.KindAbsence, Message: AlertAbsences, Err: absErr})
	} else {
		a.persist(ctx, event.KindAbsence, snap.Absences, snap.FetchedAt)
	}
	if holErr != nil {
		snap.Holidays = nil
		snap.Alerts = append(snap.Alerts, Alert{Kind: event.KindHoliday, Message: AlertHolidays, Err: holErr})
	} else {
		a.persist(ctx, event.KindHoliday, snap.Holidays, snap.FetchedAt)
	}
	return snap
}

func (a *Adapter) persist(ctx context.Context, kind event.Kind, events []*event.Event, at time.Time) {
	if a.save == nil {
		return
	}
	// Snapshot write errors are ignored.
	_ = a.save.Save(ctx, kind, events, at)
}
