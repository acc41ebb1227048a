package event

import (
	"sort"
	"strings"

	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// Payload is the flat body posted to the create and edit endpoints.
type Payload struct {
	Fecha        string `json:"fecha"`
	UT           string `json:"ut"`
	Tarea        string `json:"tarea"`
	Tipo         string `json:"tipo"`
	Ajuste       string `json:"ajuste"`
	Lugar        string `json:"lugar"`
	Marca        string `json:"marca"`
	Modelo       string `json:"modelo"`
	Pedido       string `json:"pedido"`
	Responsable  string `json:"responsable"`
	Lado         string `json:"lado"`
	Cuenta       string `json:"cuenta"`
	TxZona       bool   `json:"tx_zona"`
	RxZona       bool   `json:"rx_zona"`
	TxProtection bool   `json:"tx_protection"`
	RxProtection bool   `json:"rx_protection"`
	Horario      string `json:"horario"`
	Comentario   string `json:"comentario"`
	Estado       string `json:"estado"`
	Zona         string `json:"zona"`
	Partido      string `json:"partido"`
	IDTarea      ID     `json:"id_tarea,omitempty"`
	Clave        string `json:"clave"`
}

// IsEdit reports whether the payload targets an existing record.
func (p *Payload) IsEdit() bool { return p.IDTarea != "" }

// PayloadFromEvent copies every stored field of a task verbatim. The
// schedule defaults to "SIN HORARIO" when absent.
func PayloadFromEvent(e *Event) Payload {
	pr := e.Props
	horario := pr.Horario.Trim()
	if horario == "" {
		horario = textfmt.NoSchedule
	}
	return Payload{
		Fecha:        e.Day(),
		UT:           pr.UT.String(),
		Tarea:        e.TaskLabel(),
		Tipo:         pr.Tipo.String(),
		Ajuste:       pr.Ajuste.String(),
		Lugar:        pr.Lugar.String(),
		Marca:        pr.Marca.String(),
		Modelo:       pr.Modelo.String(),
		Pedido:       pr.Pedido.String(),
		Responsable:  pr.Responsable.String(),
		Lado:         pr.Lado.String(),
		Cuenta:       pr.Cuenta.String(),
		TxZona:       bool(pr.TxZona),
		RxZona:       bool(pr.RxZona),
		TxProtection: bool(pr.TxProtection),
		RxProtection: bool(pr.RxProtection),
		Horario:      horario,
		Comentario:   pr.Comentario.String(),
		Estado:       pr.Estado.String(),
		Zona:         pr.Zona.String(),
		Partido:      pr.Partido.String(),
	}
}

func (p *Payload) textFields() map[string]*string {
	return map[string]*string{
		"fecha":       &p.Fecha,
		"ut":          &p.UT,
		"tarea":       &p.Tarea,
		"tipo":        &p.Tipo,
		"ajuste":      &p.Ajuste,
		"lugar":       &p.Lugar,
		"marca":       &p.Marca,
		"modelo":      &p.Modelo,
		"pedido":      &p.Pedido,
		"responsable": &p.Responsable,
		"lado":        &p.Lado,
		"cuenta":      &p.Cuenta,
		"horario":     &p.Horario,
		"comentario":  &p.Comentario,
		"estado":      &p.Estado,
	}
}

func (p *Payload) flagFields() map[string]*bool {
	return map[string]*bool{
		"tx_zona":       &p.TxZona,
		"rx_zona":       &p.RxZona,
		"tx_protection": &p.TxProtection,
		"rx_protection": &p.RxProtection,
	}
}

// Keys lists the field names accepted by Set, sorted.
func (p *Payload) Keys() []string {
	keys := make([]string, 0, 20) //nolint:mnd // field count
	for k := range p.textFields() {
		keys = append(keys, k)
	}
	for k := range p.flagFields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns a field by its wire name. Flags accept the truthy spellings.
// Zona and partido are looked up by the backend and cannot be set.
func (p *Payload) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if f, ok := p.textFields()[key]; ok {
		*f = strings.TrimSpace(value)
		return nil
	}
	if f, ok := p.flagFields()[key]; ok {
		*f = textfmt.IsTruthy(value)
		return nil
	}
	return clierr.Newf(clierr.InvalidInput, "campo desconocido %q", key).
		WithDetails(map[string]any{"field": key, "allowed": p.Keys()})
}

// ParseAssignment splits "key=value".
func ParseAssignment(s string) (key, value string, err error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return "", "", clierr.Newf(clierr.InvalidInput, "asignación inválida %q (se espera campo=valor)", s)
	}
	return strings.TrimSpace(k), v, nil
}
