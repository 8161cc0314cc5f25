// Package dataset holds the immutable typed view of the input table that
// the clustering engine operates on.
package dataset

import (
	"fmt"

	"github.com/go-lloyd/lloyd/internal/geom"
)

var ErrMalformedInput = fmt.Errorf("malformed input table")

// Point is a single input row: a stable id and its feature vector.
type Point struct {
	ID  uint64     `json:"id"`
	Vec geom.Point `json:"vector"`
}

// PointSet is a read-only collection of points of one fixed dimensionality.
// It is never mutated after construction and is safe for concurrent reads.
type PointSet struct {
	points  []Point
	byID    map[uint64]int
	columns []string
	dim     int
}

// New builds a PointSet from rows. Every vector must have the same
// dimensionality and every id must be unique, otherwise ErrMalformedInput
// is returned. The columns name the feature dimensions; when empty they
// default to f0..fD-1.
func New(points []Point, columns []string) (*PointSet, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrMalformedInput)
	}

	dim := points[0].Vec.Dimensions()
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero feature columns", ErrMalformedInput)
	}

	byID := make(map[uint64]int, len(points))
	for i := range points {
		if points[i].Vec.Dimensions() != dim {
			return nil, fmt.Errorf(
				"%w: row %d has %d features, expected %d",
				ErrMalformedInput, i, points[i].Vec.Dimensions(), dim,
			)
		}
		if _, ok := byID[points[i].ID]; ok {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformedInput, points[i].ID)
		}
		byID[points[i].ID] = i
	}

	if len(columns) == 0 {
		columns = make([]string, dim)
		for i := 0; i < dim; i++ {
			columns[i] = fmt.Sprintf("f%d", i)
		}
	}
	if len(columns) != dim {
		return nil, fmt.Errorf(
			"%w: %d column names for %d features", ErrMalformedInput, len(columns), dim,
		)
	}

	return &PointSet{points: points, byID: byID, columns: columns, dim: dim}, nil
}

func (s *PointSet) Len() int {
	return len(s.points)
}

func (s *PointSet) Dimensions() int {
	return s.dim
}

// Columns returns the feature column names from the input header.
func (s *PointSet) Columns() []string {
	return s.columns
}

// At returns the point at positional index idx.
func (s *PointSet) At(idx int) Point {
	return s.points[idx]
}

// ByID returns the point with the given id.
func (s *PointSet) ByID(id uint64) (Point, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return Point{}, false
	}
	return s.points[idx], true
}

// Points returns the backing slice. Callers must treat it as read-only.
func (s *PointSet) Points() []Point {
	return s.points
}
