package modal

import (
	"context"
	"slices"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/board"
	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// Password prompts of the modal flows.
const (
	PromptSave      = "Ingrese la contraseña para guardar cambios:"
	PromptCreate    = "Ingrese la contraseña para crear la tarea:"
	PromptDuplicate = "Ingrese la contraseña para crear la copia:"
)

// Submission is a collected form ready to be authorized and posted.
type Submission struct {
	Gen     uint64
	Action  string
	TaskID  event.ID
	Payload event.Payload
	Prompt  string
	Create  bool

	fallback string
	network  string
}

// Outcome is the result of submitting a Submission.
type Outcome struct {
	Gen    uint64
	Action string
	TaskID event.ID
	Err    error
}

func (m *Modal) beginLocked() error {
	if m.saving {
		return clierr.New(clierr.Validation, MsgSaving)
	}
	m.saving = true
	m.notice = ""
	return nil
}

// BeginSave collects the edit form. An existing record keeps its id and
// stored zona/partido; a new one leaves them blank.
func (m *Modal) BeginSave() (*Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Edit || m.form == nil {
		return nil, clierr.New(clierr.Validation, MsgNoEvent)
	}
	if err := m.beginLocked(); err != nil {
		return nil, err
	}

	p := m.form.payload()
	sub := &Submission{
		Gen:      m.gen,
		Action:   board.ActionCreate,
		Prompt:   PromptCreate,
		Create:   true,
		fallback: MsgSaveFallback,
		network:  MsgSaveNetwork,
	}
	if m.ev.ID != "" {
		p.IDTarea = m.ev.ID
		p.Zona = m.ev.Props.Zona.String()
		p.Partido = m.ev.Props.Partido.String()
		sub.Action = board.ActionEdit
		sub.TaskID = m.ev.ID
		sub.Prompt = PromptSave
		sub.Create = false
	}
	sub.Payload = p
	return sub, nil
}

// Submit asks the password gate and posts sub. An aborted prompt issues no
// request. It runs without the modal lock.
func (m *Modal) Submit(ctx context.Context, sub *Submission) Outcome {
	out := Outcome{Gen: sub.Gen, Action: sub.Action, TaskID: sub.TaskID}

	password, err := m.sess.Gate().Ask(ctx, sub.Prompt)
	if gate.Aborted(password, err) {
		out.Err = gate.AbortError(err)
		return out
	}
	p := sub.Payload
	p.Clave = password

	post := m.backend.EditTask
	if sub.Create {
		post = m.backend.CreateTask
	}
	res, err := post(ctx, p)
	switch {
	case clierr.Is(err, clierr.Unauthenticated):
		out.Err = err
	case err != nil:
		out.Err = clierr.Wrap(clierr.Transport, sub.network, err)
	default:
		out.Err = res.Err(sub.fallback)
	}
	return out
}

// Finish applies an outcome. Success closes the dialog and refetches;
// a failure keeps the form open with the notice. A cancellation is silent.
// Outcomes for a dialog that has since been replaced only get logged.
func (m *Modal) Finish(out Outcome) error {
	m.log.Mutation(out.Action, out.TaskID, board.OutcomeOf(out.Err), "")

	m.mu.Lock()
	if out.Gen != m.gen {
		m.mu.Unlock()
		return out.Err
	}
	m.saving = false
	if out.Err == nil {
		m.closeLocked()
		m.mu.Unlock()
		m.sess.Refetch()
		return nil
	}
	if !clierr.Is(out.Err, clierr.Canceled) {
		m.notice = clierr.Notice(out.Err)
	}
	m.mu.Unlock()
	return out.Err
}

// Save runs BeginSave, Submit and Finish.
func (m *Modal) Save(ctx context.Context) error {
	sub, err := m.BeginSave()
	if err != nil {
		return err
	}
	return m.Finish(m.Submit(ctx, sub))
}

// dupForm is the date and estado form of the duplicate flow.
type dupForm struct {
	fecha  string
	estado string
}

func newDupForm(src *event.Event, today date.Date) dupForm {
	f := dupForm{fecha: today.String(), estado: catalog.EstadoProgramado}
	if d, err := src.Date(); err == nil {
		f.fecha = d.String()
	}
	return f
}

func (f *dupForm) fields() []Field {
	return []Field{
		{Label: "Nueva fecha", Key: KeyDupFecha, Kind: FieldDate, Value: f.fecha, Editable: true},
		{Label: "Estado", Key: KeyDupEstado, Kind: FieldSelect, Value: f.estado, Options: catalog.Estados, Editable: true},
	}
}

func (f *dupForm) set(key, value string) error {
	switch key {
	case KeyDupFecha:
		if strings.TrimSpace(value) == "" {
			f.fecha = ""
			return nil
		}
		d, err := date.Parse(value)
		if err != nil {
			return clierr.Newf(clierr.InvalidDate, "fecha inválida %q", value)
		}
		f.fecha = d.String()
		return nil
	case KeyDupEstado:
		n := textfmt.Normalize(strings.TrimSpace(value))
		i := slices.IndexFunc(catalog.Estados, func(o string) bool { return textfmt.Normalize(o) == n })
		if i < 0 {
			return clierr.Newf(clierr.InvalidInput, "estado %q no válido (opciones: %s)",
				value, strings.Join(catalog.Estados, ", "))
		}
		f.estado = catalog.Estados[i]
		return nil
	default:
		return clierr.Newf(clierr.InvalidInput, "campo desconocido %q", key)
	}
}

func (f *dupForm) cycle(key string, delta int) error {
	if key != KeyDupEstado {
		return clierr.Newf(clierr.InvalidInput, "el campo %s no es una lista", key)
	}
	n := len(catalog.Estados)
	i := slices.Index(catalog.Estados, f.estado)
	f.estado = catalog.Estados[((i+delta)%n+n)%n]
	return nil
}

// OpenDuplicate shows the duplicate form for src, falling back to the
// record last shown in the dialog.
func (m *Modal) OpenDuplicate(src *event.Event) error {
	src = m.sess.Resolve(src)
	if src == nil || src.KindOf() != event.KindTask {
		return clierr.New(clierr.Validation, MsgNoDuplicate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open(src, Duplicate)
	return nil
}

// BeginDuplicate validates the form and copies every stored field of the
// source with the chosen date and estado.
func (m *Modal) BeginDuplicate() (*Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode != Duplicate || m.ev == nil {
		return nil, clierr.New(clierr.Validation, MsgNoDuplicate)
	}
	if m.dup.fecha == "" {
		m.notice = "⚠️ " + MsgPickDate
		return nil, clierr.New(clierr.Validation, MsgPickDate)
	}
	if err := m.beginLocked(); err != nil {
		return nil, err
	}

	p := event.PayloadFromEvent(m.ev)
	p.Fecha = m.dup.fecha
	p.Estado = m.dup.estado
	p.IDTarea = ""
	return &Submission{
		Gen:      m.gen,
		Action:   board.ActionDuplicate,
		TaskID:   m.ev.ID,
		Payload:  p,
		Prompt:   PromptDuplicate,
		Create:   true,
		fallback: MsgDupFallback,
		network:  MsgDupNetwork,
	}, nil
}

// Duplicate runs BeginDuplicate, Submit and Finish.
func (m *Modal) Duplicate(ctx context.Context) error {
	sub, err := m.BeginDuplicate()
	if err != nil {
		return err
	}
	return m.Finish(m.Submit(ctx, sub))
}
