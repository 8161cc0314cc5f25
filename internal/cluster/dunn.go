package cluster

import (
	"fmt"

	"github.com/go-lloyd/lloyd/internal/geom"
)

var ErrDegenerateMetric = fmt.Errorf("degenerate partition: validity score is undefined")

// DannIndex scores a finished partition: the minimum distance between any
// two points of different clusters divided by the maximum distance between
// any two points of the same cluster. Higher means better separated, more
// compact clusters.
//
// The score is undefined for fewer than two clusters and for partitions
// with zero intra-cluster spread (single-point or fully duplicated
// clusters); both fail with ErrDegenerateMetric. The all-pairs comparison
// is O(N²·D) and dominates the pipeline cost.
func DannIndex(part *Partition) (float64, error) {
	if part == nil || part.Len() < 2 {
		return 0, fmt.Errorf("%w: need at least 2 clusters", ErrDegenerateMetric)
	}

	var (
		minInter = -1.0
		maxIntra = 0.0
	)

	for i := range part.Clusters {
		members := part.Clusters[i].Points

		for j := 0; j < len(members); j++ {
			for l := j + 1; l < len(members); l++ {
				d, err := geom.EuclideanDistance(members[j].Vec, members[l].Vec)
				if err != nil {
					return 0, err
				}
				if d > maxIntra {
					maxIntra = d
				}
			}
		}

		for j := i + 1; j < part.Len(); j++ {
			other := part.Clusters[j].Points
			for k := range members {
				for l := range other {
					d, err := geom.EuclideanDistance(members[k].Vec, other[l].Vec)
					if err != nil {
						return 0, err
					}
					if minInter < 0 || d < minInter {
						minInter = d
					}
				}
			}
		}
	}

	if maxIntra == 0 {
		return 0, fmt.Errorf("%w: zero intra-cluster spread", ErrDegenerateMetric)
	}
	return minInter / maxIntra, nil
}
