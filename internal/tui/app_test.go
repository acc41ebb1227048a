package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecontrol-mt/calendario/internal/api"
	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/calendar"
	"github.com/telecontrol-mt/calendario/internal/clip"
	"github.com/telecontrol-mt/calendario/internal/config"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/modal"
	"github.com/telecontrol-mt/calendario/internal/output"
	"github.com/telecontrol-mt/calendario/internal/reschedule"
	"github.com/telecontrol-mt/calendario/internal/session"
	"github.com/telecontrol-mt/calendario/internal/source"
)

func TestMain(m *testing.M) {
	output.DisableColor()
	m.Run()
}

type fakeFetcher struct {
	tasks, absences, holidays []*event.Event
}

func (f *fakeFetcher) Tasks(context.Context) ([]*event.Event, error)    { return cloneAll(f.tasks), nil }
func (f *fakeFetcher) Absences(context.Context) ([]*event.Event, error) { return cloneAll(f.absences), nil }
func (f *fakeFetcher) Holidays(context.Context) ([]*event.Event, error) { return cloneAll(f.holidays), nil }

func cloneAll(in []*event.Event) []*event.Event {
	out := make([]*event.Event, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

type fakeBackend struct {
	mu     sync.Mutex
	edited []event.Payload
	moves  []api.DateUpdate
	cromo  []api.CromoItem
}

func (f *fakeBackend) CreateTask(context.Context, event.Payload) (api.Result, error) {
	return api.Result{Success: true}, nil
}

func (f *fakeBackend) EditTask(_ context.Context, p event.Payload) (api.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, p)
	return api.Result{Success: true}, nil
}

func (f *fakeBackend) LookupLocation(context.Context, string, string) (*api.Location, error) {
	return &api.Location{AreaEmpresa: "NORTE", Poblacion: "PILAR", Distrito: "PILAR"}, nil
}

func (f *fakeBackend) Cromo(context.Context, string) ([]api.CromoItem, error) {
	return f.cromo, nil
}

func (f *fakeBackend) UpdateDate(_ context.Context, u api.DateUpdate) (api.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moves = append(f.moves, u)
	return api.Result{Success: true}, nil
}

func (f *fakeBackend) editedPayloads() []event.Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]event.Payload(nil), f.edited...)
}

func (f *fakeBackend) dateUpdates() []api.DateUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.DateUpdate(nil), f.moves...)
}

type fakeClip struct{ copied []string }

func (c *fakeClip) Copy(text string) (clip.Method, error) {
	c.copied = append(c.copied, text)
	return clip.System, nil
}

type fixture struct {
	app     *App
	cfg     *config.Config
	cal     *calendar.Model
	backend *fakeBackend
	clip    *fakeClip
}

func sampleFetcher() *fakeFetcher {
	return &fakeFetcher{
		tasks: []*event.Event{
			{ID: "1", Title: "ENSAYO", Start: "2024-03-05", Kind: event.KindTask, Props: event.Props{
				Tipo: "INTERRUPTOR", UT: "U100", Lado: "L-7", Ajuste: "I>=200A", Estado: "EJECUTADO",
				Horario: "08:00-12:00",
			}},
			{ID: "2", Title: "ENSAYO", Start: "2024-03-12", Kind: event.KindTask, Props: event.Props{
				Tipo: "RECONECTADOR", UT: "U200", Estado: "PROGRAMADO",
			}},
			{ID: "3", Title: "AJUSTE", Start: "2024-03-05", Kind: event.KindTask, Props: event.Props{
				UT: "A300", Estado: "PROGRAMADO",
			}},
		},
		absences: []*event.Event{
			{Title: "Ausente: Ana", Start: "2024-03-04", Kind: event.KindAbsence},
		},
		holidays: []*event.Event{
			{Title: "Viernes Santo", Start: "2024-03-29", Kind: event.KindHoliday},
		},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	today := func() date.Date { return date.New(2024, time.March, 1) }
	f := &fixture{backend: &fakeBackend{}, clip: &fakeClip{}}

	f.cfg = config.NewDefault("")
	f.cfg.SetDir(t.TempDir())
	require.NoError(t, f.cfg.Save())

	f.cal = calendar.New(calendar.WithToday(today))
	sess := session.New(f.cal, gate.New())
	f.app = New(context.Background(), Deps{
		Config:    f.cfg,
		Session:   sess,
		Calendar:  f.cal,
		Source:    source.New(sampleFetcher(), sess),
		Modal:     modal.New(sess, f.backend, modal.WithToday(today)),
		Cromo:     f.backend,
		Mover:     reschedule.New(sess, f.backend, f.cal),
		Clipboard: f.clip,
	})
	f.app.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	drain(t, f.app, f.app.loadCmd())
	return f
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter  = tea.KeyMsg{Type: tea.KeyEnter}
	keyEscape = tea.KeyMsg{Type: tea.KeyEsc}
	keyRight  = tea.KeyMsg{Type: tea.KeyRight}
	keyDown   = tea.KeyMsg{Type: tea.KeyDown}
	keyTab    = tea.KeyMsg{Type: tea.KeyTab}
	keyCtrlS  = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCtrlU  = tea.KeyMsg{Type: tea.KeyCtrlU}
)

// press sends keys in order and returns the command of the last one.
func press(a *App, keys ...tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = a.Update(k)
	}
	return cmd
}

// drain runs cmd and feeds the App's own follow-up messages back in.
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case loadedMsg, savedMsg, droppedMsg, zoneMsg, cromoMsg:
		default:
			return
		}
		_, cmd = a.Update(msg)
	}
}

// async runs a command that blocks on the password gate.
func async(cmd tea.Cmd) <-chan tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	return ch
}

// answerPrompt waits for the gate to open, shows the overlay and types pw.
func answerPrompt(t *testing.T, a *App, pw string) {
	t.Helper()
	g := a.sess.Gate()
	require.Eventually(t, func() bool {
		_, ok := g.Pending()
		return ok
	}, time.Second, 5*time.Millisecond)
	p, _ := g.Pending()
	a.Update(PromptMsg{Prompt: p})
	require.NotNil(t, a.prompt)
	assert.Contains(t, a.View(), p.Message)
	if pw != "" {
		press(a, keyRunes(pw))
	}
}

func receive(t *testing.T, ch <-chan tea.Msg) tea.Msg {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("flow did not finish")
		return nil
	}
}

// gotoDay moves the cursor from March 1st to the given March day.
func gotoDay(a *App, day int) {
	for range day - 1 {
		press(a, keyRight)
	}
}

func TestCalendarShowsMonthCounterAndHoliday(t *testing.T) {
	f := newFixture(t)
	out := f.app.View()

	assert.Contains(t, out, "Marzo 2024")
	assert.Contains(t, out, "📊 Interruptores en 2024: 1")
	assert.Contains(t, out, "Viernes Santo")
	assert.Contains(t, out, "Ausente: Ana")
	assert.Contains(t, out, "actualizado recién")
}

func TestNavigationKeys(t *testing.T) {
	f := newFixture(t)

	press(f.app, keyRunes("]"))
	assert.Equal(t, "2024-04-01", f.cal.Date().String())
	assert.Equal(t, "2024-04-01", f.app.cursor.String())

	press(f.app, keyRunes("}"))
	assert.Equal(t, 2025, f.cal.Date().Year())

	press(f.app, keyRunes("t"))
	assert.Equal(t, "2024-03-01", f.app.cursor.String())

	press(f.app, keyRunes("["))
	assert.Equal(t, time.February, f.cal.Date().Month())
}

func TestCursorLeavingMonthFollowsCalendar(t *testing.T) {
	f := newFixture(t)
	press(f.app, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, "2024-02-29", f.app.cursor.String())
	assert.Equal(t, time.February, f.cal.Date().Month())
}

func TestFilterToggleReloadsWithoutThatType(t *testing.T) {
	f := newFixture(t)
	cmd := press(f.app, keyRunes("1"))
	require.NotNil(t, cmd)
	assert.False(t, f.app.filters[0].Checked)
	drain(t, f.app, cmd)

	for _, e := range f.cal.Events() {
		assert.NotEqual(t, "ENSAYO", e.Title)
	}
	assert.NotNil(t, f.cal.Event("3"))
	assert.Contains(t, f.app.View(), "Interruptores en 2024: 1", "counter reads the raw cache")
}

func TestSearchGoesToFirstMatch(t *testing.T) {
	f := newFixture(t)
	press(f.app, keyRunes("/"))
	require.Equal(t, viewSearch, f.app.view)
	press(f.app, keyRunes("u200"))
	drain(t, f.app, press(f.app, keyEnter))

	assert.Equal(t, viewCalendar, f.app.view)
	assert.Equal(t, "u200", f.app.query)
	assert.Equal(t, "2024-03-12", f.app.cursor.String())
	require.NotNil(t, f.app.selectedEvent())
	assert.Equal(t, event.ID("2"), f.app.selectedEvent().ID)

	drain(t, f.app, press(f.app, tea.KeyMsg{Type: tea.KeyBackspace}))
	assert.Empty(t, f.app.query)
	assert.Len(t, f.cal.Events(), 5)
}

func TestSearchWithoutMatchReports(t *testing.T) {
	f := newFixture(t)
	press(f.app, keyRunes("/"), keyRunes("zzz"))
	drain(t, f.app, press(f.app, keyEnter))
	assert.Contains(t, f.app.status, "Sin resultados")
	assert.Equal(t, "2024-03-01", f.app.cursor.String())
}

func TestDetailsOpenWithZoneLookup(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	press(f.app, keyTab)
	require.Equal(t, event.ID("1"), f.app.selectedEvent().ID)

	cmd := press(f.app, keyEnter)
	require.Equal(t, viewModal, f.app.view)
	require.NotNil(t, cmd, "lookup types resolve the zone")
	assert.Contains(t, f.app.View(), "...")

	drain(t, f.app, cmd)
	out := f.app.View()
	assert.Contains(t, out, "Detalles")
	assert.Contains(t, out, "U100")
	assert.Contains(t, out, "NORTE - PILAR")

	press(f.app, keyEscape)
	assert.Equal(t, viewCalendar, f.app.view)
	assert.Equal(t, modal.Closed, f.app.modal.Mode())
}

func TestCopyUTFromDetails(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	press(f.app, keyTab, keyEnter, keyRunes("u"), keyRunes("a"))
	assert.Equal(t, []string{"U100", "I>=200A"}, f.clip.copied)
	assert.Equal(t, clip.Label(clip.System), f.app.status)
}

func TestEditSaveThroughPasswordPrompt(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	press(f.app, keyTab, keyEnter, keyRunes("e"))
	require.Equal(t, modal.Edit, f.app.modal.Mode())

	press(f.app, keyDown, keyEnter)
	require.Equal(t, modal.KeyUT, f.app.editing)
	press(f.app, keyCtrlU, keyRunes("U999"), keyEnter)
	assert.Empty(t, f.app.editing)

	cmd := press(f.app, keyCtrlS)
	require.NotNil(t, cmd)
	ch := async(cmd)
	answerPrompt(t, f.app, "secreto")
	press(f.app, keyEnter)
	assert.Nil(t, f.app.prompt)

	_, refetch := f.app.Update(receive(t, ch))
	assert.NotNil(t, refetch, "a successful save reloads the sources")
	assert.Equal(t, viewCalendar, f.app.view)
	assert.Equal(t, "✅ Guardado.", f.app.status)

	edited := f.backend.editedPayloads()
	require.Len(t, edited, 1)
	assert.Equal(t, "U999", edited[0].UT)
	assert.Equal(t, "secreto", edited[0].Clave)
	assert.Equal(t, event.ID("1"), edited[0].IDTarea)
}

func TestPasswordEscapeCancelsWithoutRequest(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	press(f.app, keyTab, keyEnter, keyRunes("e"))

	ch := async(press(f.app, keyCtrlS))
	answerPrompt(t, f.app, "")
	press(f.app, keyEscape)
	f.app.Update(receive(t, ch))

	assert.Empty(t, f.backend.editedPayloads())
	assert.Equal(t, modal.Edit, f.app.modal.Mode())
	assert.Empty(t, f.app.modal.Notice())
	assert.Equal(t, viewModal, f.app.view)
}

func TestSelectCycleInEditForm(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	press(f.app, keyTab, keyEnter, keyRunes("e"))

	fieldIndex := func(k string) int {
		for i, fl := range f.app.modal.View().Fields {
			if fl.Key == k {
				return i
			}
		}
		return -1
	}
	for f.app.fieldIdx != fieldIndex(modal.KeyEstado) {
		press(f.app, keyDown)
	}
	press(f.app, keyRight)
	for _, fl := range f.app.modal.View().Fields {
		if fl.Key == modal.KeyEstado {
			assert.Equal(t, "REPROGRAMADO", fl.Value)
		}
	}

	press(f.app, keyEscape)
	assert.Equal(t, modal.Read, f.app.modal.Mode(), "escape leaves edit for the stored record")
}

func TestDuplicateFromDetails(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	press(f.app, keyTab, keyEnter, keyRunes("d"))
	require.Equal(t, modal.Duplicate, f.app.modal.Mode())
	assert.Contains(t, f.app.View(), "Duplicar tarea")

	press(f.app, keyEscape)
	assert.Equal(t, viewCalendar, f.app.view)
}

func TestNewTaskOnCursorDay(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 7)
	press(f.app, keyRunes("n"))
	require.Equal(t, modal.Edit, f.app.modal.Mode())
	assert.Equal(t, "2024-03-07", f.app.modal.Event().Day())
}

func TestDragAbsenceRevertsWithoutNetwork(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 4)
	press(f.app, keyRunes("m"))
	require.NotNil(t, f.app.grab)

	drain(t, f.app, press(f.app, keyRight, keyEnter))

	assert.Nil(t, f.app.grab)
	day := f.cal.EventsOn("2024-03-04")
	require.Len(t, day, 1)
	assert.True(t, day[0].IsAbsence())
	for _, ev := range f.cal.EventsOn("2024-03-05") {
		assert.False(t, ev.IsAbsence())
	}
	require.Error(t, f.app.err)
	assert.Equal(t, reschedule.MsgAbsence, f.app.err.Error())
	assert.Empty(t, f.backend.dateUpdates())
	_, pending := f.app.sess.Gate().Pending()
	assert.False(t, pending)
}

func TestDragTaskConfirmsWithPassword(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	press(f.app, keyTab, keyRunes("m"), keyRight)
	assert.Contains(t, f.app.View(), "Moviendo")

	cmd := press(f.app, keyEnter)
	require.NotNil(t, cmd)
	assert.Equal(t, "2024-03-06", f.cal.Event("1").Day(), "moved optimistically")

	ch := async(cmd)
	answerPrompt(t, f.app, "clave")
	press(f.app, keyEnter)
	_, refetch := f.app.Update(receive(t, ch))

	assert.NotNil(t, refetch)
	assert.Equal(t, []api.DateUpdate{{ID: "1", Fecha: "2024-03-06", Clave: "clave"}}, f.backend.dateUpdates())
	assert.Equal(t, "✅ Fecha actualizada.", f.app.status)
}

func TestDragEscapeAborts(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	cmd := press(f.app, keyRunes("m"), keyRight, keyEscape)
	assert.Nil(t, cmd)
	assert.Nil(t, f.app.grab)
	assert.Equal(t, "2024-03-05", f.cal.Event("3").Day())
}

func TestDropOnSameDayIsNoop(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	cmd := press(f.app, keyRunes("m"), keyEnter)
	assert.Nil(t, cmd)
	assert.Empty(t, f.backend.dateUpdates())
}

func TestListingFiltersCopyAndDetail(t *testing.T) {
	f := newFixture(t)
	press(f.app, keyRunes("c"))
	require.Equal(t, viewListing, f.app.view)
	assert.Contains(t, f.app.View(), board.ListingTitle(2024, 1))

	press(f.app, keyRunes("y"))
	require.Len(t, f.clip.copied, 1)
	assert.True(t, strings.HasPrefix(f.clip.copied[0], "Fecha\tUT\tLado"))

	press(f.app, keyRunes("t"))
	assert.Contains(t, f.app.View(), board.ListingTitle(2024, 2))

	press(f.app, keyRunes("s"))
	assert.Contains(t, f.app.View(), board.EmptyListing(2024, board.ListSuspendido))

	press(f.app, keyRunes("t"), keyDown)
	press(f.app, keyEnter)
	require.Equal(t, viewModal, f.app.view)
	assert.Equal(t, event.ID("2"), f.app.modal.Event().ID)

	press(f.app, keyEscape)
	assert.Equal(t, viewListing, f.app.view)
	press(f.app, keyEscape)
	assert.Equal(t, viewCalendar, f.app.view)
}

func TestCromoOverlay(t *testing.T) {
	f := newFixture(t)
	f.backend.cromo = []api.CromoItem{{UT: "U100", Lado: "L-7", Clase: "A", Carpeta: `\\srv\cromo\L7`}}
	gotoDay(f.app, 5)
	press(f.app, keyTab, keyEnter)

	drain(t, f.app, press(f.app, keyRunes("x")))
	require.True(t, f.app.overlay.Visible())
	out := f.app.View()
	assert.Contains(t, out, "Información CROMO")
	assert.Contains(t, out, "L-7")

	press(f.app, keyRunes("y"))
	require.Len(t, f.clip.copied, 1)
	assert.True(t, strings.HasPrefix(f.clip.copied[0], "file:"))

	press(f.app, keyEscape)
	assert.False(t, f.app.overlay.Visible())
	assert.Equal(t, modal.Read, f.app.modal.Mode(), "the overlay is independent of the dialog")
}

func TestCromoWithoutLado(t *testing.T) {
	f := newFixture(t)
	gotoDay(f.app, 5)
	press(f.app, keyEnter)
	require.Equal(t, event.ID("3"), f.app.modal.Event().ID)

	cmd := press(f.app, keyRunes("x"))
	assert.Nil(t, cmd)
	require.Error(t, f.app.err)
	assert.Equal(t, modal.MsgCromoNoLado, f.app.err.Error())
}

func TestReloadAppliesConfigFilters(t *testing.T) {
	f := newFixture(t)
	cfg, err := config.Load(f.cfg.Dir())
	require.NoError(t, err)
	cfg.Filters[1].Checked = false
	require.NoError(t, cfg.Save())

	_, cmd := f.app.Update(ReloadMsg{})
	require.NotNil(t, cmd)
	assert.False(t, f.app.filters[1].Checked)
	drain(t, f.app, cmd)
	assert.Nil(t, f.cal.Event("3"), "AJUSTE is filtered out")
}

func TestReloadAppliesGateAndRefetchSettings(t *testing.T) {
	f := newFixture(t)
	cfg, err := config.Load(f.cfg.Dir())
	require.NoError(t, err)
	cfg.Gate.Policy = "replace"
	cfg.SetRefetchAfterMove(false)
	require.NoError(t, cfg.Save())

	_, cmd := f.app.Update(ReloadMsg{})
	drain(t, f.app, cmd)
	assert.Equal(t, gate.Replace, f.app.sess.Gate().Policy())

	gotoDay(f.app, 5)
	press(f.app, keyTab, keyRunes("m"), keyRight)
	ch := async(press(f.app, keyEnter))
	answerPrompt(t, f.app, "clave")
	press(f.app, keyEnter)
	_, refetch := f.app.Update(receive(t, ch))

	assert.Nil(t, refetch, "no reload after the move")
	assert.Equal(t, "✅ Fecha actualizada.", f.app.status)
}

func TestRefreshDue(t *testing.T) {
	f := newFixture(t)
	f.app.cfg.TUI.RefreshInterval = "5m"
	assert.False(t, f.app.refreshDue())

	f.app.SetNow(func() time.Time { return f.app.fetchedAt.Add(6 * time.Minute) })
	assert.True(t, f.app.refreshDue())
	assert.Contains(t, f.app.View(), "hace 6 min")
}

func TestStalePromptIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.app.Update(PromptMsg{Prompt: gate.Prompt{ID: 99, Message: "x"}})
	assert.Nil(t, f.app.prompt)
}
