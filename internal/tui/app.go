// Package tui implements the terminal calendar: the month grid, the detail
// dialog, the password prompt, the CROMO overlay and the ENSAYO listing.
package tui

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/calendar"
	"github.com/telecontrol-mt/calendario/internal/clip"
	"github.com/telecontrol-mt/calendario/internal/config"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/modal"
	"github.com/telecontrol-mt/calendario/internal/session"
	"github.com/telecontrol-mt/calendario/internal/source"
)

// view represents the current screen state.
type view int

const (
	viewCalendar view = iota
	viewSearch
	viewModal
	viewListing
)

// Key and layout constants.
const (
	keyEsc = "esc"

	calendarChrome = 4                // month title, weekday header and two status lines
	minCellLines   = 2                // day number plus one event
	tickInterval   = 30 * time.Second // how often the fetch age refreshes
)

// Loader loads the calendar sources.
type Loader interface {
	Load(ctx context.Context, opts board.FilterOptions) source.Snapshot
}

// Mover confirms an optimistic reschedule.
type Mover interface {
	Drop(ctx context.Context, mv calendar.Move) error
	SetRefetch(on bool)
}

// Copier puts text on the clipboard.
type Copier interface {
	Copy(text string) (clip.Method, error)
}

// Deps are the collaborators of an App.
type Deps struct {
	Config    *config.Config
	Session   *session.Session
	Calendar  *calendar.Model
	Source    Loader
	Modal     *modal.Modal
	Cromo     modal.CromoFetcher
	Mover     Mover
	Clipboard Copier
}

// grab is a task picked up for a keyboard drag.
type grab struct {
	id      event.ID
	title   string
	from    date.Date
	absence bool
}

// App is the top-level bubbletea model.
type App struct {
	ctx     context.Context
	cfg     *config.Config
	sess    *session.Session
	cal     *calendar.Model
	src     Loader
	modal   *modal.Modal
	cromo   modal.CromoFetcher
	overlay modal.Overlay
	mover   Mover
	clip    Copier
	now     func() time.Time

	view     view
	returnTo view
	width    int
	height   int
	err      error
	status   string

	filters   []board.TypeFilter
	query     string
	gotoMatch bool
	loading   bool
	fetchedAt time.Time
	alerts    []source.Alert

	cursor date.Date
	selIdx int
	grab   *grab
	search textinput.Model

	fieldIdx int
	editing  string
	input    textinput.Model
	area     textarea.Model

	prompt   *gate.Prompt
	password textinput.Model

	listFilter board.ListFilter
	listRow    int
	cromoRow   int
}

// New creates an App. ctx bounds every request the App starts.
func New(ctx context.Context, d Deps) *App {
	a := &App{
		ctx:        ctx,
		cfg:        d.Config,
		sess:       d.Session,
		cal:        d.Calendar,
		src:        d.Source,
		modal:      d.Modal,
		cromo:      d.Cromo,
		mover:      d.Mover,
		clip:       d.Clipboard,
		now:        time.Now,
		filters:    slices.Clone(d.Config.Filters),
		listFilter: board.ListEjecutado,
	}
	a.cursor = a.cal.Date()

	a.search = textinput.New()
	a.search.Prompt = "🔍 "
	a.search.Placeholder = "UT o ajuste"

	a.input = textinput.New()
	a.input.Prompt = "› "

	a.area = textarea.New()
	a.area.ShowLineNumbers = false

	a.password = textinput.New()
	a.password.Prompt = "🔑 "
	a.password.EchoMode = textinput.EchoPassword
	a.password.EchoCharacter = '•'
	return a
}

// SetNow overrides the clock used for the fetch age (for testing).
func (a *App) SetNow(fn func() time.Time) {
	a.now = fn
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadCmd(), tickCmd())
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.area.SetWidth(max(a.dialogWidth()-8, 20)) //nolint:mnd // dialog chrome
		return a, nil
	case ReloadMsg:
		return a, a.reloadConfig()
	case TickMsg:
		if a.refreshDue() {
			return a, tea.Batch(a.loadCmd(), tickCmd())
		}
		return a, tickCmd()
	case loadedMsg:
		a.applySnapshot(msg.snap)
		return a, nil
	case PromptMsg:
		a.openPrompt(msg.Prompt)
		return a, nil
	case savedMsg:
		return a.finishSubmit(msg.out)
	case droppedMsg:
		return a.finishDrop(msg.err)
	case zoneMsg:
		a.modal.ApplyZone(msg.res)
		return a, nil
	case cromoMsg:
		a.overlay.Show(msg.view, msg.err)
		a.cromoRow = 0
		return a, nil
	case errMsg:
		a.err = msg.err
		return a, nil
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if a.width == 0 {
		return "Cargando..."
	}
	switch {
	case a.prompt != nil:
		return a.viewPassword()
	case a.overlay.Visible():
		return a.viewCromo()
	}
	switch a.view {
	case viewModal:
		return a.viewModal()
	case viewListing:
		return a.viewListing()
	default:
		return a.viewCalendar()
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys.
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		if a.prompt != nil {
			a.sess.Gate().Cancel()
		}
		return a, tea.Quit
	}

	switch {
	case a.prompt != nil:
		return a.handlePasswordKey(msg)
	case a.overlay.Visible():
		return a.handleCromoKey(msg)
	}

	switch a.view {
	case viewCalendar:
		return a.handleCalendarKey(msg)
	case viewSearch:
		return a.handleSearchKey(msg)
	case viewModal:
		return a.handleModalKey(msg)
	case viewListing:
		return a.handleListingKey(msg)
	}
	return a, nil
}

// filterOptions is the current type toggles and search text.
func (a *App) filterOptions() board.FilterOptions {
	return board.FilterOptions{Types: slices.Clone(a.filters), Query: a.query}
}

func (a *App) loadCmd() tea.Cmd {
	a.loading = true
	opts := a.filterOptions()
	ctx, src := a.ctx, a.src
	return func() tea.Msg {
		return loadedMsg{snap: src.Load(ctx, opts)}
	}
}

func (a *App) applySnapshot(snap source.Snapshot) {
	a.loading = false
	a.cal.SetEvents(snap.All())
	a.fetchedAt = snap.FetchedAt
	a.alerts = snap.Alerts

	if a.gotoMatch {
		a.gotoMatch = false
		if ev, ok := a.cal.SearchGoto(a.query); ok {
			if d, err := ev.Date(); err == nil {
				a.cursor = d
				a.selIdx = max(slices.Index(a.dayEvents(d), ev), 0)
			}
		} else if a.query != "" {
			a.status = fmt.Sprintf("Sin resultados para %q", a.query)
		}
	}
	a.clampSelection()
}

func (a *App) refreshDue() bool {
	d := a.cfg.RefreshDuration()
	return d > 0 && !a.loading && !a.fetchedAt.IsZero() && a.now().Sub(a.fetchedAt) >= d
}

// reloadConfig re-reads the config file, applies its gate and reschedule
// settings and reloads with its filters.
func (a *App) reloadConfig() tea.Cmd {
	cfg, err := config.Load(a.cfg.Dir())
	if err != nil {
		a.err = fmt.Errorf("recargando configuración: %w", err)
		return nil
	}
	a.cfg = cfg
	a.filters = slices.Clone(cfg.Filters)
	a.sess.Gate().SetPolicy(cfg.GatePolicy())
	a.mover.SetRefetch(cfg.RefetchAfterMove())
	return a.loadCmd()
}

// refetchCmd consumes a pending refetch request of the calendar.
func (a *App) refetchCmd() tea.Cmd {
	if a.cal.TakeRefetch() {
		return a.loadCmd()
	}
	return nil
}

func (a *App) copy(text string) {
	m, err := a.clip.Copy(text)
	if err != nil {
		a.err = err
		return
	}
	a.err = nil
	a.status = clip.Label(m)
}

// --- Messages ---

// ReloadMsg signals that the config file changed.
type ReloadMsg struct{}

// TickMsg triggers a periodic refresh of the fetch age.
type TickMsg struct{}

// PromptMsg announces an open password prompt.
type PromptMsg struct{ Prompt gate.Prompt }

type loadedMsg struct{ snap source.Snapshot }

type savedMsg struct{ out modal.Outcome }

type droppedMsg struct{ err error }

type zoneMsg struct{ res modal.ZoneResult }

type cromoMsg struct {
	view modal.CromoView
	err  error
}

type errMsg struct{ err error }

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}
