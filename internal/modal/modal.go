// Package modal implements the detail/edit dialog of a task, its duplicate
// form and the CROMO overlay, as UI-agnostic state with a render tree.
package modal

import (
	"context"
	"strings"
	"sync"

	"github.com/telecontrol-mt/calendario/internal/api"
	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/session"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// Mode is the dialog state.
type Mode int

// Modes.
const (
	Closed Mode = iota
	Read
	Edit
	Duplicate
)

func (m Mode) String() string {
	switch m {
	case Read:
		return "read"
	case Edit:
		return "edit"
	case Duplicate:
		return "duplicate"
	default:
		return "closed"
	}
}

// Action identifiers offered by the header and footer.
const (
	ActionEdit      = "edit"
	ActionDuplicate = "duplicate"
	ActionClose     = "close"
	ActionCancel    = "cancel"
	ActionSave      = "save"
	ActionCreate    = "create_copy"
	ActionCromo     = "cromo"
	ActionCopy      = "copy"
)

// Placeholders of the zone lookup.
const (
	lookupPending = "..."
	noValue       = "-"
)

// Operator notices.
const (
	MsgNoEvent      = "⚠️ No hay evento seleccionado."
	MsgNoDuplicate  = "⚠️ No hay evento para duplicar."
	MsgNotFound     = "No se encontró el evento."
	MsgPickDate     = "Elegí la nueva fecha."
	MsgSaveFallback = "No se pudo guardar."
	MsgSaveNetwork  = "Error de red al guardar."
	MsgDupFallback  = "No se pudo crear la copia."
	MsgDupNetwork   = "Error de red al duplicar."
	MsgSaving       = "guardado en curso"
	duplicateNote   = "Se copiarán todos los demás campos desde la tarea original " +
		"(UT, tipo, marca, modelo, lugar, ajustes, horario, comentario y flags)."
)

// Backend is what the dialog needs from the server.
type Backend interface {
	CreateTask(ctx context.Context, p event.Payload) (api.Result, error)
	EditTask(ctx context.Context, p event.Payload) (api.Result, error)
	LookupLocation(ctx context.Context, ut, tipo string) (*api.Location, error)
}

// Field is one row of the render tree.
type Field struct {
	Label    string
	Key      string
	Kind     FieldKind
	Value    string
	Options  []string
	Disabled bool
	Hidden   bool
	Copyable bool
	Mono     bool
	Editable bool
	Action   string // extra action shown next to the value
}

// BadgeView is a header badge.
type BadgeView struct {
	Text string
	Kind event.Badge
}

// ActionView is a header or footer button.
type ActionView struct {
	ID    string
	Label string
}

// View is the render tree of the dialog.
type View struct {
	Mode    Mode
	Title   string
	Badges  []BadgeView
	Fields  []Field
	Actions []ActionView
	Note    string
	Notice  string
	Busy    bool
}

// Modal is the single detail dialog of a session. It is safe for
// concurrent use: network phases run outside the lock.
type Modal struct {
	sess    *session.Session
	backend Backend
	log     *board.Logger
	today   func() date.Date

	mu       sync.Mutex
	mode     Mode
	ev       *event.Event
	gen      uint64
	form     *form
	dup      dupForm
	zone     string
	locality string
	notice   string
	saving   bool
}

// Option customizes a Modal.
type Option func(*Modal)

// WithLogger records save and duplicate outcomes.
func WithLogger(l *board.Logger) Option {
	return func(m *Modal) { m.log = l }
}

// WithToday overrides the clock used for default dates.
func WithToday(fn func() date.Date) Option {
	return func(m *Modal) { m.today = fn }
}

// New creates a closed Modal.
func New(sess *session.Session, b Backend, opts ...Option) *Modal {
	m := &Modal{sess: sess, backend: b, today: date.Today}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mode returns the current mode.
func (m *Modal) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Event returns the record on display, or nil.
func (m *Modal) Event() *event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ev
}

// Notice returns the last operator notice of the dialog.
func (m *Modal) Notice() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notice
}

// open replaces the dialog content. Callers hold the lock.
func (m *Modal) open(ev *event.Event, mode Mode) {
	m.gen++
	m.mode = mode
	m.ev = ev
	m.notice = ""
	m.saving = false
	m.form = nil
	m.zone, m.locality = "", ""
	m.sess.SetCurrent(ev)

	switch mode {
	case Read:
		if isLookupCandidate(ev) {
			m.zone, m.locality = lookupPending, lookupPending
		} else {
			m.zone = textfmt.Dash(ev.Props.Zona.String())
			m.locality = textfmt.Dash(ev.Props.Partido.String())
		}
	case Edit:
		m.form = newForm(ev)
	case Duplicate:
		m.dup = newDupForm(ev, m.today())
	case Closed:
	}
}

// OpenRead shows ev read-only. Background bands and absences open
// nothing. The returned lookup, when non-nil, resolves zone and locality.
func (m *Modal) OpenRead(ev *event.Event) *Lookup {
	if ev == nil || ev.KindOf() != event.KindTask {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open(ev, Read)
	return m.lookupLocked()
}

// OpenEdit shows ev in edit mode.
func (m *Modal) OpenEdit(ev *event.Event) {
	if ev == nil || ev.KindOf() != event.KindTask {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open(ev, Edit)
}

// OpenNew opens an empty ENSAYO record dated day in edit mode.
func (m *Modal) OpenNew(day date.Date) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open(&event.Event{Title: "ENSAYO", Start: day.String(), Kind: event.KindTask}, Edit)
}

// OpenFromCache reopens a cached record read-only without refetching.
func (m *Modal) OpenFromCache(id event.ID) (*Lookup, error) {
	ev := m.sess.FindRaw(id)
	if ev == nil {
		return nil, clierr.New(clierr.Validation, MsgNotFound)
	}
	return m.OpenRead(ev), nil
}

// Edit switches from read to edit mode on the same record.
func (m *Modal) Edit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Read {
		return nil
	}
	ev := m.sess.Resolve(m.ev)
	if ev == nil {
		return clierr.New(clierr.Validation, MsgNoEvent)
	}
	m.open(ev, Edit)
	return nil
}

// Cancel leaves edit or duplicate mode, reloading the stored record
// read-only. Unsaved edits are dropped.
func (m *Modal) Cancel() *Lookup {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Edit && m.mode != Duplicate {
		return nil
	}
	ev := m.sess.Resolve(m.ev)
	if ev == nil {
		m.closeLocked()
		return nil
	}
	m.open(ev, Read)
	return m.lookupLocked()
}

// Close hides the dialog.
func (m *Modal) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Modal) closeLocked() {
	m.gen++
	m.mode = Closed
	m.form = nil
	m.notice = ""
	m.saving = false
}

// Set assigns a form field in edit or duplicate mode.
func (m *Modal) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.mode {
	case Edit:
		return m.form.set(key, value)
	case Duplicate:
		return m.dup.set(key, value)
	default:
		return clierr.New(clierr.Validation, "el formulario no está en edición")
	}
}

// Cycle steps a select or toggle field by delta.
func (m *Modal) Cycle(key string, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.mode {
	case Edit:
		return m.form.cycle(key, delta)
	case Duplicate:
		return m.dup.cycle(key, delta)
	default:
		return nil
	}
}

// View renders the dialog.
func (m *Modal) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := View{Mode: m.mode, Notice: m.notice, Busy: m.saving}
	switch m.mode {
	case Read:
		v.Title = "Detalles"
		v.Badges = headerBadges(m.ev)
		v.Fields = m.readFields()
		v.Actions = []ActionView{
			{ID: ActionEdit, Label: "✏️ Editar"},
			{ID: ActionDuplicate, Label: "📄 Duplicar"},
			{ID: ActionClose, Label: "❌ Cerrar"},
		}
	case Edit:
		v.Title = "Detalles"
		v.Badges = headerBadges(m.ev)
		v.Fields = m.form.fields()
		v.Actions = []ActionView{
			{ID: ActionCancel, Label: "❌ Cancelar"},
			{ID: ActionSave, Label: "💾 Guardar"},
		}
	case Duplicate:
		v.Title = "📄 Duplicar tarea"
		v.Fields = m.dup.fields()
		v.Note = duplicateNote
		v.Actions = []ActionView{
			{ID: ActionClose, Label: "❌ Cerrar"},
			{ID: ActionCreate, Label: "💾 Crear copia"},
		}
	case Closed:
	}
	return v
}

func headerBadges(ev *event.Event) []BadgeView {
	p := ev.Props
	tarea := strings.ToUpper(strings.TrimSpace(ev.Title))
	if tarea == "" {
		tarea = "TAREA"
	}
	var out []BadgeView
	if tipo := strings.ToUpper(p.Tipo.Trim()); tipo != "" {
		out = append(out, BadgeView{Text: textfmt.Terminal(tipo), Kind: event.BadgeOutline})
	}
	out = append(out, BadgeView{Text: textfmt.Terminal(tarea), Kind: event.TaskBadge(tarea)})
	if estado := strings.ToUpper(p.Estado.Trim()); estado != "" {
		out = append(out, BadgeView{Text: textfmt.Terminal(estado), Kind: event.StatusBadge(estado)})
	}
	return out
}

func readField(label, key, value string) Field {
	return Field{Label: label, Key: key, Kind: FieldText, Value: textfmt.Dash(textfmt.Terminal(value))}
}

func (m *Modal) readFields() []Field {
	ev := m.ev
	p := ev.Props

	ut := readField("UT", KeyUT, p.UT.String())
	ut.Copyable = p.UT.Trim() != ""
	ajuste := readField("Ajuste", KeyAjuste, p.Ajuste.String())
	ajuste.Copyable = p.Ajuste.Trim() != ""
	ajuste.Mono = true
	lado := readField("Lado", KeyLado, p.Lado.String())
	if l := p.Lado.Trim(); l != "" && l != noValue {
		lado.Action = ActionCromo
	}
	comentario := readField("Comentarios", KeyComentario, p.Comentario.String())
	comentario.Kind = FieldMultiline

	return []Field{
		readField("Fecha", KeyFecha, ev.Day()),
		ut,
		readField("Tarea", KeyTarea, ev.Title),
		readField("Tipo", KeyTipo, strings.ToUpper(p.Tipo.Trim())),
		readField("Marca", KeyMarca, p.Marca.String()),
		readField("Modelo", KeyModelo, p.Modelo.String()),
		readField("Horario", KeyHorario, textfmt.ParseSchedule(p.Horario.String()).OrNone()),
		readField("Lugar", KeyLugar, p.Lugar.String()),
		{Label: "Zona", Key: KeyZona, Kind: FieldText, Value: textfmt.Terminal(m.zone)},
		{Label: "Localidad", Key: KeyLocalidad, Kind: FieldText, Value: textfmt.Terminal(m.locality)},
		readField("Pedido", KeyPedido, p.Pedido.String()),
		ajuste,
		lado,
		readField("Cuenta", KeyCuenta, p.Cuenta.String()),
		readField("TX Zona", KeyTxZona, textfmt.YesNo(bool(p.TxZona))),
		readField("RX Zona", KeyRxZona, textfmt.YesNo(bool(p.RxZona))),
		readField("TX Protección", KeyTxProtection, textfmt.YesNo(bool(p.TxProtection))),
		readField("RX Protección", KeyRxProtection, textfmt.YesNo(bool(p.RxProtection))),
		readField("Responsable", KeyResponsable, p.Responsable.String()),
		readField("Estado", KeyEstado, p.Estado.String()),
		comentario,
	}
}

// CopyValue returns the value a copy action puts on the clipboard: the UT
// or ajuste of the record on display.
func (m *Modal) CopyValue(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Read || m.ev == nil {
		return "", false
	}
	var v string
	switch key {
	case KeyUT:
		v = m.ev.Props.UT.Trim()
	case KeyAjuste:
		v = m.ev.Props.Ajuste.Trim()
	}
	return v, v != ""
}

// Lado returns the side identifier of the record on display when the CROMO
// action applies.
func (m *Modal) Lado() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Read || m.ev == nil {
		return "", false
	}
	l := m.ev.Props.Lado.Trim()
	return l, l != "" && l != noValue
}

// isLookupCandidate reports whether the zone lookup applies to ev.
func isLookupCandidate(ev *event.Event) bool {
	return catalog.IsLookupType(ev.Props.Tipo.String()) && ev.Props.UT.Trim() != ""
}
