// Package reschedule implements moving a task to another day: the
// optimistic move is confirmed with a password and reverted on any
// failure.
package reschedule

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/telecontrol-mt/calendario/internal/api"
	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/calendar"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/session"
)

// Operator messages.
const (
	MsgAbsence   = "⚠️ No se puede mover una ausencia."
	MsgFallback  = "Error al actualizar la fecha."
	MsgTransport = "Error de conexión con el servidor."
)

// Updater submits date changes.
type Updater interface {
	UpdateDate(ctx context.Context, u api.DateUpdate) (api.Result, error)
}

// Display is the calendar side of a move.
type Display interface {
	Revert(mv calendar.Move)
}

// Flow runs reschedules for one session.
type Flow struct {
	sess    *session.Session
	api     Updater
	display Display
	log     *board.Logger
	refetch atomic.Bool
}

// Option customizes a Flow.
type Option func(*Flow)

// WithRefetch sets whether a successful move reloads every source.
func WithRefetch(on bool) Option {
	return func(f *Flow) { f.refetch.Store(on) }
}

// WithLogger records outcomes in the activity log.
func WithLogger(l *board.Logger) Option {
	return func(f *Flow) { f.log = l }
}

// New creates a Flow. A successful move refetches unless disabled.
func New(sess *session.Session, u Updater, d Display, opts ...Option) *Flow {
	f := &Flow{sess: sess, api: u, display: d}
	f.refetch.Store(true)
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetRefetch changes whether later successful moves reload every source.
func (f *Flow) SetRefetch(on bool) { f.refetch.Store(on) }

// Prompt is the password prompt for a move to the given day.
func Prompt(mv calendar.Move) string {
	return fmt.Sprintf("Ingrese la contraseña para mover la tarea al %s:", mv.To.Dotted())
}

// Drop confirms an optimistic move. Every error return has already
// reverted the move; absences and cancellations never reach the backend.
func (f *Flow) Drop(ctx context.Context, mv calendar.Move) error {
	err := f.drop(ctx, mv)
	if err != nil {
		f.display.Revert(mv)
	}
	if mv.Event != nil {
		f.log.Mutation(board.ActionReschedule, mv.Event.ID, board.OutcomeOf(err), mv.To.String())
	}
	return err
}

func (f *Flow) drop(ctx context.Context, mv calendar.Move) error {
	if mv.Event == nil {
		return clierr.New(clierr.Validation, "No se encontró el evento.")
	}
	if mv.Event.IsAbsence() {
		return clierr.New(clierr.Validation, MsgAbsence)
	}

	password, err := f.sess.Gate().Ask(ctx, Prompt(mv))
	if gate.Aborted(password, err) {
		return gate.AbortError(err)
	}

	res, err := f.api.UpdateDate(ctx, api.DateUpdate{ID: mv.Event.ID, Fecha: mv.To.String(), Clave: password})
	if clierr.Is(err, clierr.Unauthenticated) {
		return err
	}
	if err != nil {
		return clierr.Wrap(clierr.Transport, MsgTransport, err)
	}
	if err := res.Err(MsgFallback); err != nil {
		return err
	}
	if f.refetch.Load() {
		f.sess.Refetch()
	}
	return nil
}
