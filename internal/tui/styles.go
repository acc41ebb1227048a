package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/telecontrol-mt/calendario/internal/event"
)

var (
	weekdayHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("236")).
				Padding(0, 1)

	monthTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	dayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	cursorDayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("226"))

	dropTargetStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("214"))

	todayNumberStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226"))
	outsideDayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	holidayStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Background(lipgloss.Color("52"))
	absenceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("175"))
	selectedStyle    = lipgloss.NewStyle().Reverse(true)
	grabbedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	counterStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	monoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	focusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	titleStyle  = lipgloss.NewStyle().Bold(true)

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)

	passwordDialogStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(lipgloss.Color("214")).
				Padding(dialogPadY, dialogPadX)

	// Task card colors follow the backend's class names.
	classColors = map[string]lipgloss.Color{
		"evento-ensayo":        "34",
		"evento-ajuste":        "33",
		"evento-evento":        "214",
		"evento-funcionalidad": "135",
		"evento-actualizar":    "37",
		"evento-default":       "250",
	}

	badgeColors = map[event.Badge]lipgloss.Color{
		event.BadgeSuccess: "28",
		event.BadgeInfo:    "25",
		event.BadgeWarn:    "172",
		event.BadgeDanger:  "124",
		event.BadgeNeutral: "240",
	}
)

func taskStyle(label string) lipgloss.Style {
	c, ok := classColors[event.Class(label)]
	if !ok {
		c = classColors["evento-default"]
	}
	return lipgloss.NewStyle().Foreground(c)
}

func badgeStyle(b event.Badge) lipgloss.Style {
	if b == event.BadgeOutline {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, true)
	}
	c, ok := badgeColors[b]
	if !ok {
		c = badgeColors[event.BadgeNeutral]
	}
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(c).Padding(0, 1)
}

// truncate cuts s to maxLen visible cells, ending in an ellipsis.
func truncate(s string, maxLen int) string {
	if maxLen < 2 { //nolint:mnd // room for the ellipsis
		maxLen = 2
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	target := len(runes)
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-1 {
		target--
	}
	return string(runes[:target]) + "…"
}

// padRight pads s with spaces to width visible cells.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

// fitHeight pads or cuts a rendered block to exactly h lines.
func fitHeight(block string, h int) string {
	if h <= 0 {
		return block
	}
	lines := strings.Split(block, "\n")
	if len(lines) > h {
		lines = lines[:h]
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
