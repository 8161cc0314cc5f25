package selector

import (
	"context"
	"errors"
	"testing"

	"github.com/go-lloyd/lloyd/internal/cluster"
	"github.com/go-lloyd/lloyd/internal/dataset"
)

func fakePartition(n int) *cluster.Partition {
	return &cluster.Partition{Clusters: make([]cluster.Cluster, n)}
}

func threeClouds(t *testing.T) *dataset.PointSet {
	t.Helper()
	set, err := dataset.New([]dataset.Point{
		{ID: 0, Vec: []float64{0, 0}},
		{ID: 1, Vec: []float64{0.2, 0}},
		{ID: 2, Vec: []float64{0.1, 0.3}},
		{ID: 3, Vec: []float64{10, 10}},
		{ID: 4, Vec: []float64{10.2, 10}},
		{ID: 5, Vec: []float64{10.1, 10.3}},
		{ID: 6, Vec: []float64{20, 0}},
		{ID: 7, Vec: []float64{20.2, 0}},
		{ID: 8, Vec: []float64{20.1, 0.3}},
	}, nil)
	if err != nil {
		t.Fatalf("unable to build point set: %v", err)
	}
	return set
}

func TestSelectBestK(t *testing.T) {
	tests := []struct {
		name          string
		kMin, kMax    int
		clustersFor   func(k int) int
		scoreFor      map[int]float64
		expectedBestK int
		expectedLen   int
		expectedErr   error
	}{
		{
			name: "positive_highest_score_wins",
			kMin: 2, kMax: 5,
			clustersFor:   func(k int) int { return k },
			scoreFor:      map[int]float64{2: 0.4, 3: 0.9, 4: 0.6},
			expectedBestK: 3,
			expectedLen:   3,
		},
		{
			name: "collapsed_candidate_excluded",
			kMin: 2, kMax: 6,
			clustersFor: func(k int) int {
				if k > 3 {
					return 3 // only three natural clusters exist
				}
				return k
			},
			scoreFor:      map[int]float64{2: 0.4, 3: 0.7},
			expectedBestK: 3,
			expectedLen:   2,
		},
		{
			name: "tie_breaks_to_lowest_k",
			kMin: 2, kMax: 4,
			clustersFor:   func(k int) int { return k },
			scoreFor:      map[int]float64{2: 0.5, 3: 0.5},
			expectedBestK: 2,
			expectedLen:   2,
		},
		{
			name: "all_collapsed_is_fatal",
			kMin: 2, kMax: 5,
			clustersFor: func(k int) int { return 1 },
			scoreFor:    map[int]float64{},
			expectedErr: ErrNoValidCandidate,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			manager, err := New(
				cluster.New(),
				WithKRange(test.kMin, test.kMax),
				WithEvaluateFn(func(
					_ context.Context, _ *dataset.PointSet, k int, seedIDs []uint64, persist bool,
				) (*cluster.Partition, error) {
					if persist {
						t.Errorf("sweep runs must not persist intermediate state")
					}
					if seedIDs != nil {
						t.Errorf("sweep runs must use random seeding")
					}
					return fakePartition(test.clustersFor(k)), nil
				}),
				WithScoreFn(func(part *cluster.Partition) (float64, error) {
					return test.scoreFor[part.Len()], nil
				}),
			)
			if err != nil {
				t.Fatalf("unable to create manager: %v", err)
			}

			bestK, results, err := manager.SelectBestK(context.Background(), nil)
			if test.expectedErr != nil {
				if !errors.Is(err, test.expectedErr) {
					t.Errorf("sweep err got: %v, expected: %v", err, test.expectedErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("the error should not be returned, got %v", err)
			}
			if bestK != test.expectedBestK {
				t.Errorf("best k got: %v, expected: %v", bestK, test.expectedBestK)
			}
			if len(results) != test.expectedLen {
				t.Errorf("scored candidates got: %v, expected: %v", len(results), test.expectedLen)
			}
		})
	}
}

func TestSelectBestKPropagatesEngineErrors(t *testing.T) {
	expectedErr := errors.New("boom")
	manager, err := New(
		cluster.New(),
		WithKRange(2, 4),
		WithEvaluateFn(func(
			_ context.Context, _ *dataset.PointSet, k int, _ []uint64, _ bool,
		) (*cluster.Partition, error) {
			return nil, expectedErr
		}),
	)
	if err != nil {
		t.Fatalf("unable to create manager: %v", err)
	}

	if _, _, err := manager.SelectBestK(context.Background(), nil); !errors.Is(err, expectedErr) {
		t.Errorf("sweep err got: %v, expected: %v", err, expectedErr)
	}
}

func TestRunFinalCollapseIsFatal(t *testing.T) {
	manager, err := New(
		cluster.New(),
		WithKRange(2, 4),
		WithEvaluateFn(func(
			_ context.Context, _ *dataset.PointSet, k int, _ []uint64, persist bool,
		) (*cluster.Partition, error) {
			if persist {
				// the final exporting run loses a cluster
				return fakePartition(k - 1), nil
			}
			return fakePartition(k), nil
		}),
		WithScoreFn(func(part *cluster.Partition) (float64, error) {
			return float64(part.Len()), nil
		}),
	)
	if err != nil {
		t.Fatalf("unable to create manager: %v", err)
	}

	_, _, _, err = manager.Run(context.Background(), nil)
	var collapseErr *CollapseError
	if !errors.As(err, &collapseErr) {
		t.Fatalf("final run err got: %v, expected a CollapseError", err)
	}
	if collapseErr.Requested != 3 || collapseErr.Actual != 2 {
		t.Errorf("collapse got: requested %d actual %d, expected: requested 3 actual 2",
			collapseErr.Requested, collapseErr.Actual)
	}
}

func TestRunOnNaturalClusters(t *testing.T) {
	// deterministic seeding per k, lowest-index rows of each cloud first,
	// so the sweep itself is reproducible while still exercising the
	// real engine and scorer
	seedOrder := []uint64{0, 3, 6, 1, 4, 7, 2, 5, 8}
	engine := cluster.New()
	manager, err := New(
		engine,
		WithKRange(2, 5),
		WithEvaluateFn(func(
			ctx context.Context, set *dataset.PointSet, k int, _ []uint64, persist bool,
		) (*cluster.Partition, error) {
			return engine.Evaluate(ctx, set, k, seedOrder[:k], persist)
		}),
	)
	if err != nil {
		t.Fatalf("unable to create manager: %v", err)
	}

	part, bestK, results, err := manager.Run(context.Background(), threeClouds(t))
	if err != nil {
		t.Fatalf("the error should not be returned, got %v", err)
	}
	if bestK != 3 {
		t.Errorf("best k got: %v, expected: 3", bestK)
	}
	if part.Len() != 3 {
		t.Errorf("final partition size got: %v, expected: 3", part.Len())
	}
	if len(results) == 0 {
		t.Fatalf("at least the winning candidate must be scored")
	}
	for _, r := range results {
		if r.K == bestK {
			continue
		}
		if best := scoreOf(results, bestK); r.Score > best {
			t.Errorf("candidate k=%d outscores the winner: %v > %v", r.K, r.Score, best)
		}
	}
}

func scoreOf(results []Result, k int) float64 {
	for _, r := range results {
		if r.K == k {
			return r.Score
		}
	}
	return 0
}
