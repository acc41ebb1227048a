package output

import (
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const minMarkdownWidth = 20

var (
	mdMu        sync.Mutex
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// Markdown renders a task comment for the terminal, wrapped at width.
// The input is returned unchanged when rendering fails.
func Markdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	width = max(width, minMarkdownWidth)

	style := "dark"
	if noColor {
		style = "notty"
	}
	key := style + ":" + strconv.Itoa(width)

	mdMu.Lock()
	defer mdMu.Unlock()
	r := mdRenderers[key]
	if r == nil {
		// WithAutoStyle queries the terminal background and can block.
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
