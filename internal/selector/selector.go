// Package selector drives the engine across a range of candidate cluster
// counts, scores every finished partition and picks the count with the
// best validity score.
package selector

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/go-lloyd/lloyd/internal/cluster"
	"github.com/go-lloyd/lloyd/internal/dataset"
	"github.com/go-lloyd/lloyd/internal/logging"
	"github.com/go-lloyd/lloyd/pkg/rworker"
)

var ErrNoValidCandidate = fmt.Errorf("every candidate cluster count collapsed, nothing to select")

// CollapseError reports a final run that returned fewer clusters than the
// count the sweep selected. Unlike collapse during the sweep it is fatal,
// there is no fallback candidate left.
type CollapseError struct {
	Requested int
	Actual    int
}

func (e *CollapseError) Error() string {
	return fmt.Sprintf("final run collapsed: requested %d clusters, got %d", e.Requested, e.Actual)
}

// Result is one scored candidate of the sweep.
type Result struct {
	K     int     `json:"k"`
	Score float64 `json:"score"`
}

// Abstractions for pulling the engine and the scorer, injectable in tests.
type (
	evaluateFn func(ctx context.Context, set *dataset.PointSet, k int, seedIDs []uint64, persist bool) (*cluster.Partition, error)
	scoreFn    func(part *cluster.Partition) (float64, error)
)

type pullDependencies struct {
	evaluate evaluateFn
	score    scoreFn
}

type Options struct {
	kMin              int
	kMax              int
	maxConcurrentRuns int
	deps              pullDependencies
}

type Option func(*Manager)

// WithKRange sets the half-open candidate range [kMin, kMax).
func WithKRange(kMin, kMax int) Option {
	return func(m *Manager) {
		m.opts.kMin = kMin
		m.opts.kMax = kMax
	}
}

func WithMaxConcurrentRuns(n int) Option {
	return func(m *Manager) {
		m.opts.maxConcurrentRuns = n
	}
}

func WithEvaluateFn(fn func(context.Context, *dataset.PointSet, int, []uint64, bool) (*cluster.Partition, error)) Option {
	return func(m *Manager) {
		m.opts.deps.evaluate = fn
	}
}

func WithScoreFn(fn func(*cluster.Partition) (float64, error)) Option {
	return func(m *Manager) {
		m.opts.deps.score = fn
	}
}

// Manager owns the model-selection sweep. Every candidate run shares only
// read-only access to the PointSet, so runs execute concurrently on a
// rate-limited worker pool with no coordination beyond result collection.
type Manager struct {
	opts Options
}

func New(engine *cluster.Engine, opts ...Option) (*Manager, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine instance is not created")
	}

	m := &Manager{
		opts: Options{
			kMin:              2,
			kMax:              15,
			maxConcurrentRuns: runtime.NumCPU(),
			deps: pullDependencies{
				evaluate: engine.Evaluate,
				score:    cluster.DannIndex,
			},
		},
	}
	for _, f := range opts {
		f(m)
	}

	if m.opts.kMin < 2 || m.opts.kMax <= m.opts.kMin {
		return nil, fmt.Errorf("invalid candidate range [%d, %d)", m.opts.kMin, m.opts.kMax)
	}
	if m.opts.maxConcurrentRuns < 1 {
		m.opts.maxConcurrentRuns = 1
	}
	return m, nil
}

// SelectBestK sweeps the candidate range with random seeding and no
// persistence. A run whose partition size differs from the requested k
// collapsed: it is reported and excluded from scoring, never failing the
// sweep. The best k is the strictly maximal score, first seen (lowest k)
// winning ties.
func (m *Manager) SelectBestK(ctx context.Context, set *dataset.PointSet) (int, []Result, error) {
	logger := logging.FromContext(ctx)

	type slot struct {
		score float64
		valid bool
	}

	var wg sync.WaitGroup
	slots := make([]slot, m.opts.kMax-m.opts.kMin)
	rate := make(chan struct{}, m.opts.maxConcurrentRuns)
	errCh := make(chan error, 1)

	for k := m.opts.kMin; k < m.opts.kMax; k++ {
		k := k
		rworker.Job(&wg, func() error {
			part, err := m.opts.deps.evaluate(ctx, set, k, nil, false)
			if err != nil {
				if errors.Is(err, cluster.ErrNonConvergence) {
					logger.Warnf("k=%d did not converge, excluded from selection: %v", k, err)
					return nil
				}
				return fmt.Errorf("evaluate k=%d: %w", k, err)
			}
			if part.Len() != k {
				logger.Warnf("%d num of clusters decreased to %d", k, part.Len())
				return nil
			}

			score, err := m.opts.deps.score(part)
			if err != nil {
				if errors.Is(err, cluster.ErrDegenerateMetric) {
					logger.Warnf("k=%d produced a degenerate partition, excluded from selection", k)
					return nil
				}
				return fmt.Errorf("score k=%d: %w", k, err)
			}

			slots[k-m.opts.kMin] = slot{score: score, valid: true}
			return nil
		}, rate, errCh)
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return 0, nil, err
	default:
	}

	var (
		results = make([]Result, 0, len(slots))
		bestK   int
		best    float64
	)
	for i, s := range slots {
		if !s.valid {
			continue
		}
		k := m.opts.kMin + i
		results = append(results, Result{K: k, Score: s.score})
		if bestK == 0 || s.score > best {
			bestK, best = k, s.score
		}
	}
	if bestK == 0 {
		return 0, nil, ErrNoValidCandidate
	}
	return bestK, results, nil
}

// Run performs the full selection: sweep, then one more run at the
// winning k with persistence enabled to produce the exported output.
func (m *Manager) Run(ctx context.Context, set *dataset.PointSet) (*cluster.Partition, int, []Result, error) {
	logger := logging.FromContext(ctx)

	bestK, results, err := m.SelectBestK(ctx, set)
	if err != nil {
		return nil, 0, nil, err
	}
	logger.Infof("selected k=%d from %d scored candidates", bestK, len(results))

	part, err := m.opts.deps.evaluate(ctx, set, bestK, nil, true)
	if err != nil {
		return nil, 0, nil, fmt.Errorf("final run at k=%d: %w", bestK, err)
	}
	if part.Len() != bestK {
		return nil, 0, nil, &CollapseError{Requested: bestK, Actual: part.Len()}
	}
	return part, bestK, results, nil
}
