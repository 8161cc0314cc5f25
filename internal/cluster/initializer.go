package cluster

import (
	"fmt"

	"github.com/go-lloyd/lloyd/internal/dataset"
	"github.com/go-lloyd/lloyd/internal/geom"
	"github.com/valyala/fastrand"
)

var (
	ErrInvalidSeed        = fmt.Errorf("seed ids are missing or of the wrong count")
	ErrInsufficientPoints = fmt.Errorf("requested cluster count exceeds the point population")
)

// Initializer selects the initial centroid positions for a run.
type Initializer interface {
	Init(set *dataset.PointSet, k int) ([]geom.Point, error)
}

// InitializerFor returns the seeded strategy when explicit ids are given
// and the randomized one otherwise. Both strategies copy centroid features
// from existing points, so the engine loop is identical either way.
func InitializerFor(seedIDs []uint64) Initializer {
	if len(seedIDs) > 0 {
		return seededInitializer{ids: seedIDs}
	}
	return randomInitializer{}
}

// seededInitializer copies centroids from explicitly named rows. It is
// fully deterministic and exists for reproducible runs.
type seededInitializer struct {
	ids []uint64
}

func (s seededInitializer) Init(set *dataset.PointSet, k int) ([]geom.Point, error) {
	if len(s.ids) != k {
		return nil, fmt.Errorf("%w: got %d ids for k=%d", ErrInvalidSeed, len(s.ids), k)
	}

	seen := make(map[uint64]struct{}, k)
	centroids := make([]geom.Point, 0, k)
	for _, id := range s.ids {
		if _, ok := seen[id]; ok {
			return nil, fmt.Errorf("%w: duplicate seed id %d", ErrInvalidSeed, id)
		}
		seen[id] = struct{}{}
		point, ok := set.ByID(id)
		if !ok {
			return nil, fmt.Errorf("%w: seed id %d is not present", ErrInvalidSeed, id)
		}
		centroids = append(centroids, point.Vec.Copy())
	}
	return centroids, nil
}

// randomInitializer draws k distinct rows uniformly without replacement
// using a rejection-sampling loop over the row range.
type randomInitializer struct{}

func (randomInitializer) Init(set *dataset.PointSet, k int) ([]geom.Point, error) {
	height := set.Len()
	if k > height {
		return nil, fmt.Errorf("%w: k=%d, points=%d", ErrInsufficientPoints, k, height)
	}

	picked := make(map[int]struct{}, k)
	for len(picked) < k {
		picked[int(fastrand.Uint32n(uint32(height)))] = struct{}{}
	}

	centroids := make([]geom.Point, 0, k)
	for idx := range picked {
		centroids = append(centroids, set.At(idx).Vec.Copy())
	}
	return centroids, nil
}
