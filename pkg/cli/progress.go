package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

const progressBarWidth = 24

// ProbeProgress renders a labelled single-line progress bar for
// sequential operations such as provider probes.
type ProbeProgress struct {
	mu      sync.Mutex
	label   string
	total   int64
	current int64
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress reporter that writes to w under
// the given label. If w is nil, it defaults to os.Stdout.
func NewProgressReporter(w io.Writer, label string) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	if label == "" {
		label = "Progress"
	}
	return &ProbeProgress{
		writer: w,
		label:  label,
	}
}

// Start initializes the progress reporter with the total number of items.
func (p *ProbeProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()

	p.render()
}

// Update updates the current progress.
func (p *ProbeProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish marks the progress as complete and ends the line.
func (p *ProbeProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error abandons the bar and reports the failure on its own line.
func (p *ProbeProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ %s failed: %v\n", p.label, err)
}

func (p *ProbeProgress) render() {
	if p.total == 0 {
		return
	}

	percent := float64(p.current) / float64(p.total) * 100
	filled := int(progressBarWidth * percent / 100)
	bar := strings.Repeat("=", filled) + strings.Repeat(" ", progressBarWidth-filled)

	elapsed := time.Since(p.started).Round(100 * time.Millisecond)

	fmt.Fprintf(p.writer, "\r%s [%s] %d/%d (%.0f%%) %s",
		p.label, bar, p.current, p.total, percent, elapsed)
}
