package engine

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/itemgate/catalog-validator/internal/catalog"
)

// Engine runs the catalog rule set over item batches using a bounded worker
// pool. One Engine is shared by all sessions; each Run spins up its own set
// of workers, sized by the pool limit and the batch length.
type Engine struct {
	workers  int
	evaluate func(catalog.Item) []catalog.Finding
}

// New creates an engine with the given worker-pool size.
// If workers <= 0, it defaults to runtime.NumCPU().
func New(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{
		workers:  workers,
		evaluate: catalog.Evaluate,
	}
}

// Run validates every item of the batch concurrently and delivers the
// resulting findings to sub. It returns immediately. OnCompleted is invoked
// exactly once, strictly after all items have been evaluated and all their
// findings delivered. Findings from different items may interleave.
func (e *Engine) Run(items []catalog.Item, sub catalog.Subscriber) {
	go e.run(items, sub)
}

func (e *Engine) run(items []catalog.Item, sub catalog.Subscriber) {
	start := time.Now()
	timings := NewTimings()

	workers := e.workers
	if workers > len(items) {
		workers = len(items)
	}

	if workers > 0 {
		jobs := make(chan catalog.Item, len(items))
		for _, it := range items {
			jobs <- it
		}
		close(jobs)

		var wg sync.WaitGroup
		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				for it := range jobs {
					itemStart := time.Now()
					e.validateItem(it, sub)
					timings.ObserveEvaluate(time.Since(itemStart))
				}
			}()
		}
		wg.Wait()
	}

	sub.OnCompleted()

	slog.Debug("validation run complete",
		"items", len(items),
		"workers", workers,
		"elapsed", time.Since(start),
		"timings", timings.String(),
	)
}

// validateItem applies the rule set to one item and delivers its findings in
// rule order. A fault while evaluating is contained to this item: it is
// reported as a single error finding on the reserved "internal" field and
// sibling items keep processing. There is no retry.
func (e *Engine) validateItem(it catalog.Item, sub catalog.Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			sub.OnError("internal", fmt.Sprintf("rule evaluation failed: %v", r))
		}
	}()

	for _, f := range e.evaluate(it) {
		switch f.Severity {
		case catalog.SeverityWarning:
			sub.OnWarning(f.Field, f.Message)
		default:
			sub.OnError(f.Field, f.Message)
		}
	}
}
