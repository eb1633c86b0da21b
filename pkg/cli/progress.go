package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for multi-step CLI operations such as
// the origin reachability probes behind `anvil check --probe`.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// ProbeProgress renders a single in-place line sized for a handful of
// upstream origins: a short bar, the origin count, and elapsed time. The
// weather proxy only ever probes a few distinct origins, so no rate is shown.
type ProbeProgress struct {
	mu      sync.Mutex
	total   int64
	current int64
	started time.Time
	writer  io.Writer
}

// NewProgressReporter creates a progress reporter that writes to w.
// If w is nil, it defaults to os.Stdout.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	return &ProbeProgress{
		writer: w,
	}
}

// Start initializes the reporter with the number of origins to probe.
func (p *ProbeProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()

	p.render()
}

// Update records that current probes have completed.
func (p *ProbeProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish marks all probes as complete and terminates the line.
func (p *ProbeProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports a probe failure on its own line.
func (p *ProbeProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ probe failed: %v\n", err)
}

func (p *ProbeProgress) render() {
	if p.total == 0 {
		return
	}

	barWidth := 16
	filled := int(float64(barWidth) * float64(p.current) / float64(p.total))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	elapsed := time.Since(p.started).Round(100 * time.Millisecond)

	fmt.Fprintf(p.writer, "\rProbing origins [%s] %d/%d (%s)",
		bar, p.current, p.total, elapsed)
}
