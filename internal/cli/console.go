package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the terminal color scheme.
type Theme struct {
	Accent lipgloss.Color
	Dim    lipgloss.Color
	Error  lipgloss.Color
}

// DefaultTheme is a calm blue on dark terminals.
var DefaultTheme = Theme{
	Accent: lipgloss.Color("#7aa2f7"),
	Dim:    lipgloss.Color("#6e7681"),
	Error:  lipgloss.Color("#f7768e"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Prompt lipgloss.Style
	Stats  lipgloss.Style
	Error  lipgloss.Style
	Notice lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Prompt: lipgloss.NewStyle().Bold(true).Foreground(t.Accent),
		Stats:  lipgloss.NewStyle().Foreground(t.Dim),
		Error:  lipgloss.NewStyle().Foreground(t.Error),
		Notice: lipgloss.NewStyle().Foreground(t.Dim).Italic(true),
	}
}

var styles = NewStyles(DefaultTheme)

// consoleSink streams batches to the terminal. Updates carry the full
// accumulated text, so only the new suffix is printed; an update that does
// not extend what is on screen means the text was replaced by an error and
// is reprinted whole in the error style.
type consoleSink struct {
	mu      sync.Mutex
	w       io.Writer
	styles  Styles
	printed string
	active  bool
	stats   string
}

func newConsoleSink(w io.Writer, styles Styles) *consoleSink {
	return &consoleSink{w: w, styles: styles}
}

func (c *consoleSink) Update(out, stats string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active {
		// Late flush after teardown; the line is already closed.
		return
	}
	c.stats = stats
	if out == c.printed {
		return
	}
	if strings.HasPrefix(out, c.printed) {
		fmt.Fprint(c.w, out[len(c.printed):])
	} else {
		if c.printed != "" {
			fmt.Fprintln(c.w)
		}
		fmt.Fprint(c.w, c.styles.Error.Render(out))
	}
	c.printed = out
}

func (c *consoleSink) Running(running bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if running == c.active {
		return
	}
	c.active = running
	if running {
		c.printed = ""
		c.stats = ""
		return
	}
	fmt.Fprintln(c.w)
	if c.stats != "" {
		fmt.Fprintln(c.w, c.styles.Stats.Render(c.stats))
	}
}
