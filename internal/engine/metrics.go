package engine

import (
	"fmt"
	"sync"
	"time"
)

// Timings tracks per-item evaluation durations for a single run
type Timings struct {
	mu sync.Mutex

	EvaluateTotal time.Duration
	EvaluateCount int64
}

// NewTimings creates a new Timings instance
func NewTimings() *Timings {
	return &Timings{}
}

// ObserveEvaluate records one item evaluation duration
func (t *Timings) ObserveEvaluate(duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.EvaluateTotal += duration
	t.EvaluateCount++
}

// String returns a formatted summary of the recorded timings
func (t *Timings) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.EvaluateCount == 0 {
		return "no timings recorded"
	}

	avg := t.EvaluateTotal / time.Duration(t.EvaluateCount)
	return fmt.Sprintf("evaluate: total=%v count=%d avg=%v", t.EvaluateTotal, t.EvaluateCount, avg)
}
