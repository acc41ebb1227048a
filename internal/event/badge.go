package event

import (
	"strings"

	"github.com/telecontrol-mt/calendario/internal/catalog"
	"github.com/telecontrol-mt/calendario/internal/textfmt"
)

// Badge is the color family of a header badge.
type Badge string

// Badge kinds.
const (
	BadgeSuccess Badge = "success"
	BadgeInfo    Badge = "info"
	BadgeWarn    Badge = "warn"
	BadgeDanger  Badge = "danger"
	BadgeNeutral Badge = "neutral"
	BadgeOutline Badge = "outline"
)

// TaskBadge picks the badge for a task kind label.
func TaskBadge(label string) Badge {
	l := textfmt.Normalize(label)
	switch {
	case strings.Contains(l, "ENSAYO"):
		return BadgeSuccess
	case strings.Contains(l, "AJUSTE"):
		return BadgeInfo
	case strings.Contains(l, "EVENT"):
		return BadgeWarn
	default:
		return BadgeNeutral
	}
}

// StatusBadge picks the badge for a lifecycle status.
func StatusBadge(estado string) Badge {
	switch textfmt.Normalize(strings.TrimSpace(estado)) {
	case catalog.EstadoEjecutado:
		return BadgeSuccess
	case catalog.EstadoSuspendido:
		return BadgeDanger
	default:
		return BadgeNeutral
	}
}

// StatusIcon is the marker shown before executed or suspended tasks.
func StatusIcon(estado string) string {
	switch textfmt.Normalize(strings.TrimSpace(estado)) {
	case catalog.EstadoEjecutado:
		return "✅"
	case catalog.EstadoSuspendido:
		return "❌"
	default:
		return ""
	}
}

// Class derives the display class of a task from its label, the way the
// backend assigns it.
func Class(label string) string {
	l := textfmt.Normalize(label)
	switch {
	case strings.Contains(l, "ENSAYO"):
		return "evento-ensayo"
	case strings.Contains(l, "AJUSTE"):
		return "evento-ajuste"
	case strings.Contains(l, "EVENTOS"):
		return "evento-evento"
	case strings.Contains(l, "FUNCION"):
		return "evento-funcionalidad"
	case strings.Contains(l, "ACTUALIZAR"):
		return "evento-actualizar"
	default:
		return "evento-default"
	}
}

// Summary renders the lines of a calendar card. Absences and holidays show
// only their title.
func Summary(e *Event) []string {
	if e.KindOf() != KindTask {
		return []string{e.Title}
	}
	pr := e.Props
	head := e.TaskLabel()
	if ut := pr.UT.Trim(); ut != "" {
		head += " - " + ut
	}
	if icon := StatusIcon(pr.Estado.String()); icon != "" {
		head = icon + " " + head
	}
	lines := []string{head}

	equip := make([]string, 0, 2) //nolint:mnd // brand, model
	for _, v := range []string{pr.Marca.Trim(), pr.Modelo.Trim()} {
		if v != "" {
			equip = append(equip, v)
		}
	}
	if len(equip) > 0 {
		lines = append(lines, strings.Join(equip, " - "))
	}
	if !textfmt.IsEmptySchedule(pr.Horario.String()) {
		lines = append(lines, "⏰ "+pr.Horario.Trim())
	}
	return lines
}
