package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/telecontrol-mt/calendario/internal/clierr"
	"github.com/telecontrol-mt/calendario/internal/gate"
	"github.com/telecontrol-mt/calendario/internal/output"
)

// openPrompt shows the password overlay for p. Prompts the gate no longer
// holds are ignored.
func (a *App) openPrompt(p gate.Prompt) {
	cur, ok := a.sess.Gate().Pending()
	if !ok || cur.ID != p.ID {
		return
	}
	a.prompt = &p
	a.password.Reset()
	a.password.Focus()
}

func (a *App) closePrompt() {
	a.prompt = nil
	a.password.Reset()
	a.password.Blur()
}

func (a *App) handlePasswordKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := a.password.Value()
		a.closePrompt()
		a.sess.Gate().Confirm(value)
		return a, nil
	case keyEsc:
		a.closePrompt()
		a.sess.Gate().Cancel()
		return a, nil
	}
	var cmd tea.Cmd
	a.password, cmd = a.password.Update(msg)
	return a, cmd
}

func (a *App) viewPassword() string {
	content := noticeStyle.Render(a.prompt.Message) + "\n\n" +
		a.password.View() + "\n\n" +
		dimStyle.Render("enter:confirmar  esc:cancelar")
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		passwordDialogStyle.Render(content))
}

func (a *App) handleCromoKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v, _ := a.overlay.View()
	switch msg.String() {
	case keyEsc, "q":
		a.overlay.Close()
	case "up", "k":
		if a.cromoRow > 0 {
			a.cromoRow--
		}
	case "down", "j":
		if a.cromoRow < len(v.Rows)-1 {
			a.cromoRow++
		}
	case "y", "enter":
		if a.cromoRow < len(v.Rows) && v.Rows[a.cromoRow].FolderURL != "" {
			a.copy(v.Rows[a.cromoRow].FolderURL)
		}
	}
	return a, nil
}

func (a *App) viewCromo() string {
	v, err := a.overlay.View()
	var b strings.Builder
	b.WriteString(titleStyle.Render("Información CROMO"))
	if v.Lado != "" {
		b.WriteString(" " + dimStyle.Render(v.Lado))
	}
	b.WriteString("\n\n")

	if err != nil {
		b.WriteString(errorStyle.Render(clierr.Notice(err)) + "\n")
	} else {
		const colW = 12
		var head strings.Builder
		for _, c := range output.CromoColumns {
			head.WriteString(padRight(c, colW))
		}
		b.WriteString(labelStyle.Render(strings.TrimRight(head.String(), " ")) + "\n")
		for i, r := range v.Rows {
			var line strings.Builder
			for _, c := range []string{r.UT, r.Cuenta, r.Lado, r.Clase, r.Celda, r.Conexion} {
				if c == "" {
					c = "-"
				}
				line.WriteString(padRight(truncate(c, colW-1), colW))
			}
			row := strings.TrimRight(line.String(), " ")
			if i == a.cromoRow {
				row = selectedStyle.Render(row)
			}
			b.WriteString(row + "\n")
			if r.Carpeta != "" {
				b.WriteString(dimStyle.Render(fmt.Sprintf("  📁 %s", r.Carpeta)) + "\n")
			}
		}
	}

	help := "esc:cerrar"
	if v.HasFolder {
		help = "↑/↓:fila  y:copiar carpeta  " + help
	}
	b.WriteString("\n" + dimStyle.Render(help))
	if a.status != "" {
		b.WriteString("\n" + noticeStyle.Render(a.status))
	}
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		dialogStyle.Render(b.String()))
}
