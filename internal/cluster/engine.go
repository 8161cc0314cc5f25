package cluster

import (
	"context"
	"fmt"

	"github.com/go-lloyd/lloyd/internal/dataset"
	"github.com/go-lloyd/lloyd/internal/geom"
	"gonum.org/v1/gonum/floats"
)

var ErrNonConvergence = fmt.Errorf("engine exceeded the iteration limit without converging")

// StateExporter persists intermediate engine state. It is invoked once per
// iteration, before the convergence check, and only when the caller asked
// for persistence.
type StateExporter interface {
	// Distances persists the per-point distance table of one iteration.
	Distances(step int, set *dataset.PointSet, dists [][]float64) error
	// Clusters persists the partition produced by one iteration.
	Clusters(step int, part *Partition) error
}

const DefaultMaxIterations = 1000

type Options struct {
	maxIterations int
	exporter      StateExporter
}

type Option func(*Engine)

// WithMaxIterations bounds the assign/update loop. A run that has not
// converged within n iterations fails with ErrNonConvergence. Zero or
// negative disables the guard.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		e.opts.maxIterations = n
	}
}

// WithStateExporter attaches the exporter used for persisted runs.
func WithStateExporter(exp StateExporter) Option {
	return func(e *Engine) {
		e.opts.exporter = exp
	}
}

// Engine owns the iterative Lloyd loop. It is stateless across runs: every
// Evaluate call works on its own snapshots, so one engine may serve
// concurrent runs over the same PointSet.
type Engine struct {
	opts Options
}

func New(opts ...Option) *Engine {
	e := &Engine{opts: Options{maxIterations: DefaultMaxIterations}}
	for _, f := range opts {
		f(e)
	}
	return e
}

// Evaluate partitions the set into at most k clusters. Explicit seedIDs
// select the deterministic initializer; nil selects random seeding. When
// persist is set and an exporter is configured, every iteration's distance
// table and partition are written before the convergence check.
//
// The returned partition's cluster count may be below k: a centroid that
// receives no points is dropped and the run continues with the reduced
// set. A count of one terminates the run immediately.
func (e *Engine) Evaluate(
	ctx context.Context,
	set *dataset.PointSet,
	k int,
	seedIDs []uint64,
	persist bool,
) (*Partition, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k=%d", ErrInvalidSeed, k)
	}

	centroids, err := InitializerFor(seedIDs).Init(set, k)
	if err != nil {
		return nil, fmt.Errorf("unable to init centroids: %w", err)
	}

	var prev *Partition
	for step := 1; ; step++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if e.opts.maxIterations > 0 && step > e.opts.maxIterations {
			return nil, fmt.Errorf("%w: %d iterations", ErrNonConvergence, e.opts.maxIterations)
		}

		assignments, dists, err := assign(set, centroids)
		if err != nil {
			return nil, fmt.Errorf("assign step failed: %w", err)
		}

		part := makePartition(set, assignments, len(centroids))
		part.Steps = step

		centroids = update(part)

		if persist && e.opts.exporter != nil {
			if err := e.opts.exporter.Distances(step, set, dists); err != nil {
				return nil, fmt.Errorf("unable to export distance table: %w", err)
			}
			if err := e.opts.exporter.Clusters(step, part); err != nil {
				return nil, fmt.Errorf("unable to export clusters: %w", err)
			}
		}

		// Clustering below two groups is meaningless, stop right away.
		if part.Len() <= 1 {
			return part, nil
		}

		// A changed cluster count means the structure moved, membership
		// cannot be compared against the previous snapshot yet.
		if part.membershipEqual(prev) {
			return part, nil
		}

		prev = part
	}
}

// assign computes the Euclidean distance of every point to every centroid
// and picks the nearest one. Ties break to the lowest centroid index since
// the comparison is strict.
func assign(set *dataset.PointSet, centroids []geom.Point) ([]int, [][]float64, error) {
	points := set.Points()
	assignments := make([]int, len(points))
	dists := make([][]float64, len(points))

	for i := range points {
		row := make([]float64, len(centroids))
		minDist, minIdx := -1.0, 0
		for j := range centroids {
			d, err := geom.EuclideanDistance(points[i].Vec, centroids[j])
			if err != nil {
				return nil, nil, err
			}
			row[j] = d
			if minDist < 0 || d < minDist {
				minDist, minIdx = d, j
			}
		}
		assignments[i] = minIdx
		dists[i] = row
	}
	return assignments, dists, nil
}

// makePartition groups points by assigned centroid index. Indexes that
// received no points are dropped entirely, shrinking the active cluster
// count for the rest of the run.
func makePartition(set *dataset.PointSet, assignments []int, k int) *Partition {
	groups := make([][]dataset.Point, k)
	points := set.Points()
	for i := range points {
		groups[assignments[i]] = append(groups[assignments[i]], points[i])
	}

	part := &Partition{Clusters: make([]Cluster, 0, k)}
	for i := range groups {
		if len(groups[i]) == 0 {
			continue
		}
		part.Clusters = append(part.Clusters, Cluster{Points: groups[i]})
	}
	return part
}

// update recomputes each cluster's centroid as the coordinate-wise mean of
// its members and returns the new centroid set for the next assignment.
func update(part *Partition) []geom.Point {
	centroids := make([]geom.Point, len(part.Clusters))
	for i := range part.Clusters {
		members := part.Clusters[i].Points
		acc := make([]float64, members[0].Vec.Dimensions())
		for j := range members {
			floats.Add(acc, members[j].Vec)
		}
		floats.Scale(1/float64(len(members)), acc)
		part.Clusters[i].Centroid = acc
		centroids[i] = acc
	}
	return centroids
}
