package modal

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/date"
	"github.com/telecontrol-mt/calendario/internal/event"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// FieldKind is the input kind of a form field.
type FieldKind int

// Field kinds.
const (
	FieldText FieldKind = iota
	FieldDate
	FieldTime
	FieldSelect
	FieldBool
	FieldMultiline
)

// Form field keys. The record keys match the wire names.
const (
	KeyFecha        = "fecha"
	KeyUT           = "ut"
	KeyTarea        = "tarea"
	KeyTipo         = "tipo"
	KeyMarca        = "marca"
	KeyModelo       = "modelo"
	KeyHorarioNone  = "horario_none"
	KeyHorarioStart = "horario_start"
	KeyHorarioEnd   = "horario_end"
	KeyObrador      = "lugar_obrador"
	KeyLugar        = "lugar"
	KeyPedido       = "pedido"
	KeyAjuste       = "ajuste"
	KeyLado         = "lado"
	KeyCuenta       = "cuenta"
	KeyTxZona       = "tx_zona"
	KeyRxZona       = "rx_zona"
	KeyTxProtection = "tx_protection"
	KeyRxProtection = "rx_protection"
	KeyResponsable  = "responsable"
	KeyEstado       = "estado"
	KeyComentario   = "comentario"
	KeyZona         = "zona"
	KeyLocalidad    = "localidad"
	KeyHorario      = "horario"

	KeyDupFecha  = "dup_fecha"
	KeyDupEstado = "dup_estado"
)

var yesNo = []string{"Sí", "No"}

var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

type fieldSpec struct {
	key   string
	label string
	kind  FieldKind
	mono  bool
}

var editSpecs = []fieldSpec{
	{key: KeyFecha, label: "Fecha", kind: FieldDate},
	{key: KeyUT, label: "UT", kind: FieldText, mono: true},
	{key: KeyTarea, label: "Tarea", kind: FieldSelect},
	{key: KeyTipo, label: "Tipo", kind: FieldSelect},
	{key: KeyMarca, label: "Marca", kind: FieldSelect},
	{key: KeyModelo, label: "Modelo", kind: FieldSelect},
	{key: KeyHorarioNone, label: "Sin horario", kind: FieldBool},
	{key: KeyHorarioStart, label: "Desde", kind: FieldTime},
	{key: KeyHorarioEnd, label: "Hasta", kind: FieldTime},
	{key: KeyObrador, label: "Obrador", kind: FieldBool},
	{key: KeyLugar, label: "Lugar", kind: FieldText},
	{key: KeyPedido, label: "Pedido", kind: FieldText},
	{key: KeyAjuste, label: "Ajuste", kind: FieldText, mono: true},
	{key: KeyLado, label: "Lado", kind: FieldText},
	{key: KeyCuenta, label: "Cuenta", kind: FieldText},
	{key: KeyTxZona, label: "TX Zona", kind: FieldBool},
	{key: KeyRxZona, label: "RX Zona", kind: FieldBool},
	{key: KeyTxProtection, label: "TX Protección", kind: FieldBool},
	{key: KeyRxProtection, label: "RX Protección", kind: FieldBool},
	{key: KeyResponsable, label: "Responsable", kind: FieldText},
	{key: KeyEstado, label: "Estado", kind: FieldSelect},
	{key: KeyComentario, label: "Comentarios", kind: FieldMultiline},
}

// form is the EDIT-mode state of one record.
type form struct {
	text     map[string]string
	flags    map[string]bool
	lugarSel string
	lugarTxt string
	// stored brand and model win in the cascade when offered
	storedMarca  string
	storedModelo string
}

func newForm(ev *event.Event) *form {
	p := ev.Props
	sched := textfmt.ParseSchedule(p.Horario.String())
	lugar := strings.ToUpper(p.Lugar.Trim())

	f := &form{
		text: map[string]string{
			KeyFecha:        ev.Day(),
			KeyUT:           p.UT.Trim(),
			KeyTarea:        pickFold(catalog.Tareas, ev.Title),
			KeyTipo:         catalog.Pick(catalog.Types, strings.ToUpper(p.Tipo.Trim())),
			KeyPedido:       p.Pedido.Trim(),
			KeyAjuste:       p.Ajuste.Trim(),
			KeyLado:         p.Lado.Trim(),
			KeyCuenta:       p.Cuenta.Trim(),
			KeyResponsable:  p.Responsable.Trim(),
			KeyEstado:       catalog.Pick(catalog.Estados, p.Estado.Trim()),
			KeyComentario:   p.Comentario.String(),
			KeyHorarioStart: sched.Start,
			KeyHorarioEnd:   sched.End,
		},
		flags: map[string]bool{
			KeyTxZona:       bool(p.TxZona),
			KeyRxZona:       bool(p.RxZona),
			KeyTxProtection: bool(p.TxProtection),
			KeyRxProtection: bool(p.RxProtection),
			KeyHorarioNone:  sched.None,
			KeyObrador:      catalog.IsObrador(lugar),
		},
		lugarSel:     catalog.Pick(catalog.Obradores, lugar),
		lugarTxt:     p.Lugar.String(),
		storedMarca:  p.Marca.Trim(),
		storedModelo: p.Modelo.Trim(),
	}
	f.refreshBrandAndModel()
	return f
}

// pickFold returns the option equal to v ignoring case and diacritics, or
// the first option.
func pickFold(options []string, v string) string {
	n := textfmt.Normalize(strings.TrimSpace(v))
	for _, o := range options {
		if textfmt.Normalize(o) == n {
			return o
		}
	}
	return catalog.Pick(options, "")
}

func (f *form) cascade() catalog.Cascade {
	return catalog.Options(f.text[KeyTipo], f.text[KeyMarca])
}

func (f *form) refreshBrandAndModel() {
	f.text[KeyMarca] = catalog.Pick(f.cascade().Brands, f.storedMarca)
	f.refreshModel()
}

func (f *form) refreshModel() {
	f.text[KeyModelo] = catalog.Pick(f.cascade().Models, f.storedModelo)
}

func (f *form) options(key string) []string {
	switch key {
	case KeyTarea:
		return catalog.Tareas
	case KeyTipo:
		return catalog.Types
	case KeyMarca:
		return f.cascade().Brands
	case KeyModelo:
		return f.cascade().Models
	case KeyEstado:
		return catalog.Estados
	case KeyLugar:
		if f.flags[KeyObrador] {
			return catalog.Obradores
		}
	}
	return nil
}

func (f *form) kindOf(s fieldSpec) FieldKind {
	if s.key == KeyLugar && f.flags[KeyObrador] {
		return FieldSelect
	}
	return s.kind
}

func (f *form) value(key string) string {
	switch key {
	case KeyLugar:
		if f.flags[KeyObrador] {
			return f.lugarSel
		}
		return f.lugarTxt
	}
	if v, ok := f.flags[key]; ok {
		return textfmt.YesNo(v)
	}
	return f.text[key]
}

func (f *form) disabled(key string) bool {
	return (key == KeyHorarioStart || key == KeyHorarioEnd) && f.flags[KeyHorarioNone]
}

func (f *form) fields() []Field {
	out := make([]Field, 0, len(editSpecs))
	for _, s := range editSpecs {
		kind := f.kindOf(s)
		fl := Field{
			Label:    s.label,
			Key:      s.key,
			Kind:     kind,
			Value:    f.value(s.key),
			Mono:     s.mono,
			Disabled: f.disabled(s.key),
			Editable: true,
		}
		switch kind {
		case FieldSelect:
			fl.Options = f.options(s.key)
		case FieldBool:
			fl.Options = yesNo
		}
		out = append(out, fl)
	}
	return out
}

func specFor(key string) (fieldSpec, bool) {
	for _, s := range editSpecs {
		if s.key == key {
			return s, true
		}
	}
	return fieldSpec{}, false
}

// set assigns one field, running the type and brand cascades.
func (f *form) set(key, value string) error {
	s, ok := specFor(key)
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "campo desconocido %q", key)
	}
	switch f.kindOf(s) {
	case FieldBool:
		f.flags[key] = textfmt.IsTruthy(strings.TrimSpace(value))
		return nil
	case FieldDate:
		return f.setDate(key, value)
	case FieldTime:
		return f.setTime(key, value)
	case FieldSelect:
		return f.setSelect(key, value)
	case FieldText, FieldMultiline:
	}
	if key == KeyLugar {
		f.lugarTxt = value
		return nil
	}
	f.text[key] = value
	return nil
}

func (f *form) setDate(key, value string) error {
	if strings.TrimSpace(value) == "" {
		f.text[key] = ""
		return nil
	}
	d, err := date.Parse(value)
	if err != nil {
		return clierr.Newf(clierr.InvalidDate, "fecha inválida %q", value)
	}
	f.text[key] = d.String()
	return nil
}

func (f *form) setTime(key, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		f.text[key] = ""
		return nil
	}
	m := timePattern.FindStringSubmatch(value)
	if m == nil {
		return clierr.Newf(clierr.InvalidInput, "hora inválida %q: use HH:MM", value)
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	if h > 23 || mins > 59 { //nolint:mnd // clock bounds
		return clierr.Newf(clierr.InvalidInput, "hora inválida %q: use HH:MM", value)
	}
	f.text[key] = fmt.Sprintf("%02d:%02d", h, mins)
	return nil
}

func (f *form) setSelect(key, value string) error {
	opts := f.options(key)
	n := textfmt.Normalize(strings.TrimSpace(value))
	i := slices.IndexFunc(opts, func(o string) bool { return textfmt.Normalize(o) == n })
	if i < 0 {
		return clierr.Newf(clierr.InvalidInput, "valor %q no válido para %s (opciones: %s)",
			value, key, strings.Join(opts, ", "))
	}
	v := opts[i]
	switch key {
	case KeyLugar:
		f.lugarSel = v
	case KeyTipo:
		f.text[key] = v
		f.refreshBrandAndModel()
	case KeyMarca:
		f.text[key] = v
		f.refreshModel()
	default:
		f.text[key] = v
	}
	return nil
}

// cycle steps a select or toggle by delta, wrapping around.
func (f *form) cycle(key string, delta int) error {
	s, ok := specFor(key)
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "campo desconocido %q", key)
	}
	switch f.kindOf(s) {
	case FieldBool:
		f.flags[key] = !f.flags[key]
		return nil
	case FieldSelect:
		opts := f.options(key)
		if len(opts) == 0 {
			return nil
		}
		i := slices.Index(opts, f.value(key))
		i = ((i+delta)%len(opts) + len(opts)) % len(opts)
		return f.setSelect(key, opts[i])
	default:
		return clierr.Newf(clierr.InvalidInput, "el campo %s no es una lista", key)
	}
}

// payload collects the form into a create or edit body.
func (f *form) payload() event.Payload {
	lugar := strings.TrimSpace(f.lugarTxt)
	if f.flags[KeyObrador] {
		lugar = f.lugarSel
	}
	sched := textfmt.Schedule{
		Start: f.text[KeyHorarioStart],
		End:   f.text[KeyHorarioEnd],
		None:  f.flags[KeyHorarioNone],
	}
	tv := func(k string) string { return strings.TrimSpace(f.text[k]) }
	return event.Payload{
		Fecha:        tv(KeyFecha),
		UT:           tv(KeyUT),
		Tarea:        tv(KeyTarea),
		Tipo:         tv(KeyTipo),
		Ajuste:       tv(KeyAjuste),
		Lugar:        lugar,
		Marca:        tv(KeyMarca),
		Modelo:       tv(KeyModelo),
		Pedido:       tv(KeyPedido),
		Responsable:  tv(KeyResponsable),
		Lado:         tv(KeyLado),
		Cuenta:       tv(KeyCuenta),
		TxZona:       f.flags[KeyTxZona],
		RxZona:       f.flags[KeyRxZona],
		TxProtection: f.flags[KeyTxProtection],
		RxProtection: f.flags[KeyRxProtection],
		Horario:      sched.OrNone(),
		Comentario:   tv(KeyComentario),
		Estado:       f.text[KeyEstado],
	}
}
