package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints a one-line status of a rebuild every
// reportInterval candidates. The line is rewritten in place with \r.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	reportInterval int
	now            func() time.Time

	mu           sync.Mutex
	started      bool
	startTime    time.Time
	done         int
	embedded     int
	skipped      int
	lastReported int
}

// NewProgressTracker creates a tracker for total candidates. A nil writer
// discards output.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: max(1, reportInterval),
		now:            time.Now,
	}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = true
	p.startTime = p.now()
	p.done, p.embedded, p.skipped, p.lastReported = 0, 0, 0, 0
}

// Add accounts for one processed batch.
func (p *ProgressTracker) Add(res BatchResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.embedded += res.Embedded
	p.skipped += res.Skipped
	p.done = min(p.total, p.done+res.Embedded+res.Skipped)

	if p.done-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = p.done
	}
}

// Finish prints the final line. Candidates that disappeared during the run
// are counted as done.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.done = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time since Start, or 0 before it.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return p.now().Sub(p.startTime)
}

// report must be called with mu held.
func (p *ProgressTracker) report() {
	elapsed := p.now().Sub(p.startTime)

	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}

	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.done) / elapsed.Seconds()
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) embedded %d, skipped %d - %.1f candidates/s",
		p.done, p.total, percentage, p.embedded, p.skipped, rate)
	if eta := p.eta(elapsed); eta > 0 {
		fmt.Fprintf(p.writer, ", eta %s", eta)
	}
}

func (p *ProgressTracker) eta(elapsed time.Duration) time.Duration {
	if p.done == 0 || p.done >= p.total {
		return 0
	}
	perItem := elapsed / time.Duration(p.done)
	return (perItem * time.Duration(p.total-p.done)).Round(time.Second)
}
