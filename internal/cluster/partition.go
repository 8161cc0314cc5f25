// Package cluster implements the Lloyd-style k-means engine: centroid
// initialization, the assign/update iteration with convergence detection,
// and the Dann validity index used to rank candidate cluster counts.
package cluster

import (
	"github.com/go-lloyd/lloyd/internal/dataset"
	"github.com/go-lloyd/lloyd/internal/geom"
	"github.com/go-lloyd/lloyd/internal/util"
)

// Cluster is one group of a partition: its member points and the centroid
// recomputed as their coordinate-wise mean.
type Cluster struct {
	Points   []dataset.Point
	Centroid geom.Point
}

// IDs returns the member point ids in grouping order.
func (c Cluster) IDs() []uint64 {
	ids := make([]uint64, len(c.Points))
	for i := range c.Points {
		ids[i] = c.Points[i].ID
	}
	return ids
}

// Partition is the outcome of one completed engine run. It is immutable
// after Evaluate returns.
type Partition struct {
	Clusters []Cluster
	// Steps is the number of assign/update iterations the run took.
	Steps int
}

func (p *Partition) Len() int {
	return len(p.Clusters)
}

// Size returns the total number of points across all clusters.
func (p *Partition) Size() int {
	var n int
	for i := range p.Clusters {
		n += len(p.Clusters[i].Points)
	}
	return n
}

// membershipEqual reports whether two partitions hold the same clusters as
// a set, compared by point membership only. Cluster order and centroid
// positions are ignored.
func (p *Partition) membershipEqual(prev *Partition) bool {
	if prev == nil || p.Len() != prev.Len() {
		return false
	}

	prevSets := make(map[[32]byte]int, prev.Len())
	for i := range prev.Clusters {
		prevSets[util.HashIDSet(prev.Clusters[i].IDs())]++
	}
	for i := range p.Clusters {
		key := util.HashIDSet(p.Clusters[i].IDs())
		if prevSets[key] == 0 {
			return false
		}
		prevSets[key]--
	}
	return true
}
