package scoring

import (
	"context"
	"runtime"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// Engine options

type Option func(*config)

type config struct {
	maxGoroutines int
	expand        KeywordExpander
	now           func() time.Time
}

// WithMaxConcurrency caps the number of item-matcher goroutines.
func WithMaxConcurrency(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxGoroutines = n
		}
	}
}

// WithKeywordExpander installs synonym expansion for keywords and
// sub-criterion labels.
func WithKeywordExpander(f KeywordExpander) Option {
	return func(c *config) { c.expand = f }
}

// WithClock overrides the wall clock used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// Evaluate grades a transcript against a rubric and returns the full
// breakdown. The rubric is validated first; a ConfigError aborts the
// evaluation entirely. Item matching is pure and independent per item,
// so it fans out across a bounded worker pool; aggregation waits for
// the pool and then runs once, sequentially, in rubric order.
//
// Evaluate holds no state across calls. Repeated calls with the same
// inputs yield identical results apart from the EvaluatedAt stamp.
func Evaluate(ctx context.Context, r Rubric, t Transcript, opts ...Option) (EvaluationResult, error) {
	cfg := &config{
		maxGoroutines: runtime.GOMAXPROCS(0),
		now:           time.Now,
	}
	for _, o := range opts {
		o(cfg)
	}

	if err := Validate(r); err != nil {
		return EvaluationResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return EvaluationResult{}, err
	}

	normText := Normalize(t.InterviewerText())

	// Each goroutine writes its own pre-allocated slot, so the barrier
	// below is the only synchronization needed.
	results := make([][]ItemResult, len(r.Categories))
	p := pool.New().WithMaxGoroutines(cfg.maxGoroutines)
	for ci, cat := range r.Categories {
		results[ci] = make([]ItemResult, len(cat.Items))
		for ii, it := range cat.Items {
			p.Go(func() {
				results[ci][ii] = matchItem(it, normText, cfg.expand)
			})
		}
	}
	p.Wait()

	return Aggregate(r, results, cfg.now()), nil
}
