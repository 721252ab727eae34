package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

const barWidth = 30 // characters for the progress bar

// loadBar renders single-line progress on a terminal, used for model loads
// and downloads. Safe for concurrent observers.
type loadBar struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	started time.Time
	done    bool
	drawn   bool
}

func newLoadBar(w io.Writer, label string) *loadBar {
	return &loadBar{w: w, label: label, started: time.Now()}
}

// observe accepts a fraction in [0,1] and redraws the bar; reaching 1
// finishes the line.
func (b *loadBar) observe(p float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}
	if p >= 1 {
		b.finishLocked()
		return
	}
	b.drawn = true
	fmt.Fprintf(b.w, "\r\033[K  %s %3.0f%%", renderBar(p), p*100)
}

// finish closes the bar line if it has not reached 1 on its own.
func (b *loadBar) finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.done {
		b.finishLocked()
	}
}

func (b *loadBar) finishLocked() {
	b.done = true
	if b.drawn {
		fmt.Fprint(b.w, "\r\033[K")
	}
	fmt.Fprintf(b.w, "%s in %s\n", b.label, time.Since(b.started).Round(time.Millisecond))
}

// renderBar draws [=====>....] for a fraction in [0,1].
func renderBar(p float64) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(p * barWidth)
	if filled >= barWidth {
		return strings.Repeat("=", barWidth)
	}
	if filled > 0 {
		return strings.Repeat("=", filled-1) + ">" + strings.Repeat(".", barWidth-filled)
	}
	return strings.Repeat(".", barWidth)
}
