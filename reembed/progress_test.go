package reembed

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(step)
		return t
	}
}

func newTestTracker(buf *bytes.Buffer, total, interval int) *ProgressTracker {
	tracker := NewProgressTracker(buf, total, interval)
	tracker.now = steppingClock(time.Second)
	return tracker
}

func TestProgressTracker_ReportsAtInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := newTestTracker(&buf, 100, 30)
	tracker.Start()

	tracker.Add(BatchResult{Embedded: 20})
	assert.Empty(t, buf.String(), "below the interval nothing is printed")

	tracker.Add(BatchResult{Embedded: 8, Skipped: 2})
	output := buf.String()
	assert.Contains(t, output, "Progress: 30/100 (30.0%)")
	assert.Contains(t, output, "embedded 28, skipped 2")
	assert.Contains(t, output, "eta ")
	assert.True(t, strings.HasPrefix(output, "\r"), "progress rewrites the current line")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := newTestTracker(&buf, 10, 100)
	tracker.Start()
	tracker.Add(BatchResult{Embedded: 7})
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "10/10 (100.0%)", "finish counts everything as done")
	assert.Contains(t, output, "embedded 7, skipped 0")
	assert.NotContains(t, output, "eta", "no estimate once complete")
	assert.True(t, strings.HasSuffix(output, "\n"))
}

func TestProgressTracker_CapsAtTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := newTestTracker(&buf, 5, 1)
	tracker.Start()
	tracker.Add(BatchResult{Embedded: 9})

	assert.Contains(t, buf.String(), "5/5")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := newTestTracker(&buf, 0, 10)
	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0 (100.0%)")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := newTestTracker(&buf, 10, 1)

	tracker.Add(BatchResult{Embedded: 5})
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_Elapsed(t *testing.T) {
	tracker := NewProgressTracker(nil, 1, 1)
	tracker.now = steppingClock(2 * time.Second)
	tracker.Start()

	assert.Equal(t, 2*time.Second, tracker.Elapsed())
	tracker.Add(BatchResult{Skipped: 1})
}

func TestProgressTracker_ETA(t *testing.T) {
	tracker := NewProgressTracker(nil, 100, 1)
	tracker.done = 25

	assert.Equal(t, 30*time.Second, tracker.eta(10*time.Second))

	tracker.done = 0
	assert.Zero(t, tracker.eta(10*time.Second))
}
