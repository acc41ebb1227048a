package reschedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecontrol-mt/calendario/internal/api"
	"github.com/telecontrol-mt/calendario/internal/calendar"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/session"
)

type fakeUpdater struct {
	calls []api.DateUpdate
	res   api.Result
	err   error
}

func (f *fakeUpdater) UpdateDate(_ context.Context, u api.DateUpdate) (api.Result, error) {
	f.calls = append(f.calls, u)
	return f.res, f.err
}

// harness wires a calendar showing one event and a gate that answers
// every prompt with answer (or cancels when cancel is set).
type harness struct {
	cal     *calendar.Model
	sess    *session.Session
	api     *fakeUpdater
	flow    *Flow
	prompts []string
}

func newHarness(t *testing.T, ev *event.Event, answer string, cancel bool) *harness {
	t.Helper()
	h := &harness{api: &fakeUpdater{res: api.Result{Success: true}}}
	h.cal = calendar.New(calendar.WithToday(func() date.Date { return date.New(2024, time.March, 1) }))
	h.cal.SetEvents([]*event.Event{ev})

	var g *gate.Gate
	g = gate.New(gate.WithNotify(func(p gate.Prompt) {
		h.prompts = append(h.prompts, p.Message)
		go func() {
			if cancel {
				g.Cancel()
				return
			}
			g.Confirm(answer)
		}()
	}))
	h.sess = session.New(h.cal, g)
	h.flow = New(h.sess, h.api, h.cal)
	return h
}

func (h *harness) move(t *testing.T, id event.ID) calendar.Move {
	t.Helper()
	mv, err := h.cal.Move(id, date.New(2024, time.April, 2))
	require.NoError(t, err)
	return mv
}

func TestAbsenceRevertsWithoutNetwork(t *testing.T) {
	abs := &event.Event{ID: "a1", Title: "Ausente: Ana", Start: "2024-03-01", ClassNames: []string{event.ClassAbsence}}
	h := newHarness(t, abs, "x", false)

	err := h.flow.Drop(context.Background(), h.move(t, "a1"))
	require.Error(t, err)
	assert.True(t, clierr.Is(err, clierr.Validation))
	assert.Equal(t, MsgAbsence, err.Error())
	assert.Empty(t, h.api.calls)
	assert.Empty(t, h.prompts)
	assert.Equal(t, "2024-03-01", h.cal.Event("a1").Start)
}

func TestCancelRevertsWithoutNetwork(t *testing.T) {
	h := newHarness(t, &event.Event{ID: "5", Title: "ENSAYO", Start: "2024-03-01"}, "", true)

	err := h.flow.Drop(context.Background(), h.move(t, "5"))
	assert.True(t, clierr.Is(err, clierr.Canceled))
	assert.Empty(t, h.api.calls)
	assert.Equal(t, "2024-03-01", h.cal.Event("5").Start)
	assert.Equal(t, []string{"Ingrese la contraseña para mover la tarea al 02.04.2024:"}, h.prompts)
}

func TestEmptyPasswordAborts(t *testing.T) {
	h := newHarness(t, &event.Event{ID: "5", Title: "ENSAYO", Start: "2024-03-01"}, "", false)
	err := h.flow.Drop(context.Background(), h.move(t, "5"))
	assert.True(t, clierr.Is(err, clierr.Canceled))
	assert.Empty(t, h.api.calls)
}

func TestRejectedRevertsWithServerMessage(t *testing.T) {
	h := newHarness(t, &event.Event{ID: "5", Title: "ENSAYO", Start: "2024-03-01"}, "mal", false)
	h.api.res = api.Result{Success: false, Message: "Contraseña incorrecta."}

	err := h.flow.Drop(context.Background(), h.move(t, "5"))
	assert.True(t, clierr.Is(err, clierr.ServerRejected))
	assert.Equal(t, "❌ Contraseña incorrecta.", clierr.Notice(err))
	require.Len(t, h.api.calls, 1)
	assert.Equal(t, api.DateUpdate{ID: "5", Fecha: "2024-04-02", Clave: "mal"}, h.api.calls[0])
	assert.Equal(t, "2024-03-01", h.cal.Event("5").Start)

	h.api.res = api.Result{}
	err = h.flow.Drop(context.Background(), h.move(t, "5"))
	assert.Equal(t, MsgFallback, err.Error())
}

func TestTransportRevertsWithGenericMessage(t *testing.T) {
	h := newHarness(t, &event.Event{ID: "5", Title: "ENSAYO", Start: "2024-03-01"}, "ok", false)
	h.api.err = errors.New("connection refused")

	err := h.flow.Drop(context.Background(), h.move(t, "5"))
	assert.True(t, clierr.Is(err, clierr.Transport))
	assert.Equal(t, "❌ Error de conexión con el servidor.", clierr.Notice(err))
	assert.Equal(t, "2024-03-01", h.cal.Event("5").Start)
}

func TestSuccessKeepsMoveAndRefetches(t *testing.T) {
	h := newHarness(t, &event.Event{ID: "5", Title: "ENSAYO", Start: "2024-03-01"}, "ok", false)

	require.NoError(t, h.flow.Drop(context.Background(), h.move(t, "5")))
	assert.Equal(t, "2024-04-02", h.cal.Event("5").Start)
	assert.True(t, h.cal.TakeRefetch())
}

func TestSuccessWithoutRefetch(t *testing.T) {
	h := newHarness(t, &event.Event{ID: "5", Title: "ENSAYO", Start: "2024-03-01"}, "ok", false)
	h.flow = New(h.sess, h.api, h.cal, WithRefetch(false))

	require.NoError(t, h.flow.Drop(context.Background(), h.move(t, "5")))
	assert.False(t, h.cal.TakeRefetch())
}

func TestSetRefetchTurnsReloadOff(t *testing.T) {
	h := newHarness(t, &event.Event{ID: "5", Title: "ENSAYO", Start: "2024-03-01"}, "ok", false)
	h.flow.SetRefetch(false)

	require.NoError(t, h.flow.Drop(context.Background(), h.move(t, "5")))
	assert.False(t, h.cal.TakeRefetch())
}
