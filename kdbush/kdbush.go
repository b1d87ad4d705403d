// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kdbush

import (
	"fmt"
	"math"
)

// DefaultNodeSize is a reasonable node size for most point sets. It
// balances tree depth against the length of the linear scans done at
// the leaves.
const DefaultNodeSize = 64

// selectSampleThreshold is the width of a selection range above which
// the Floyd-Rivest selection narrows its working range by recursively
// selecting within a sample first.
const selectSampleThreshold = 600

// Index is a static, flat KD-tree over a set of 2D points.
//
// An Index has no explicit nodes. The ids and coords arrays are laid out
// so that, for any range [left, right] wider than the node size, the
// point at mid = (left+right)/2 splits the range: every point left of
// mid is less than or equal to it on the range's axis, and every point
// right of mid is greater than or equal to it. The axis is X for the
// full range and alternates with each level of depth.
type Index struct {
	// ids holds the original input position of the point stored at each
	// position of the index. It is a permutation of 0..n-1.
	ids []int64
	// coords holds the interleaved X and Y coordinates of the points in
	// the same order as ids, so the point with id ids[i] is at
	// (coords[2*i], coords[2*i+1]).
	coords []float64
	// nodeSize is the largest value of right-left for which a range is
	// scanned linearly instead of being split further.
	nodeSize int
	// bounds is the extent of all indexed points.
	bounds Box
}

func validateNodeSize(nodeSize int) error {
	if nodeSize < 1 {
		return configErr("node size must be at least 1 (got %d)", nodeSize)
	}
	return nil
}

// New builds an Index over a list of points using a given node size.
// The id reported for each point by the search methods is the point's
// position in the input list. The input list is not modified and is
// not retained by the Index.
//
// New returns an error wrapping ErrInvalidConfiguration if nodeSize is
// less than 1. An empty point list produces a valid, empty Index.
//
// NaN and infinite coordinates are accepted. Infinite coordinates sort
// like any other value and NaN sorts after +Inf. Points with a NaN
// coordinate are never matched by a search, but do not prevent other
// points from being found.
func New(points []Point, nodeSize int) (*Index, error) {
	if err := validateNodeSize(nodeSize); err != nil {
		return nil, err
	}

	n := len(points)
	ix := &Index{
		ids:      make([]int64, n),
		coords:   make([]float64, 2*n),
		nodeSize: nodeSize,
		bounds:   EmptyBox,
	}
	for i := range points {
		ix.ids[i] = int64(i)
		ix.coords[2*i+0] = points[i].X
		ix.coords[2*i+1] = points[i].Y
		ix.bounds.ExpandXY(points[i].X, points[i].Y)
	}

	ix.sortKD(0, n-1, 0)

	return ix, nil
}

// sortKD arranges the range [left, right] into a KD-tree whose root
// splits on the given axis.
func (ix *Index) sortKD(left, right, axis int) {
	if right-left <= ix.nodeSize {
		return
	}
	m := (left + right) / 2
	ix.selectKth(m, left, right, axis)
	ix.sortKD(left, m-1, 1-axis)
	ix.sortKD(m+1, right, 1-axis)
}

// selectKth rearranges the range [left, right] so that position k holds
// the value which would be there if the range were sorted on the given
// axis, with no greater value before it and no lesser value after it.
//
// This is Floyd and Rivest's SELECT algorithm. Only position k is
// placed exactly; the rest of the range is only partitioned around it.
func (ix *Index) selectKth(k, left, right, axis int) {
	for right > left {
		if right-left > selectSampleThreshold {
			n := float64(right - left + 1)
			m := float64(k - left + 1)
			z := math.Log(n)
			s := 0.5 * math.Exp(2*z/3)
			sd := 0.5 * math.Sqrt(z*s*(n-s)/n)
			if m-n/2 < 0 {
				sd = -sd
			}
			newLeft := int(math.Floor(float64(k) - m*s/n + sd))
			if newLeft < left {
				newLeft = left
			}
			newRight := int(math.Floor(float64(k) + (n-m)*s/n + sd))
			if newRight > right {
				newRight = right
			}
			ix.selectKth(k, newLeft, newRight, axis)
		}

		t := ix.coords[2*k+axis]
		i := left
		j := right

		ix.swapItem(left, k)
		if before(t, ix.coords[2*right+axis]) {
			ix.swapItem(left, right)
		}

		for i < j {
			ix.swapItem(i, j)
			i++
			j--
			for before(ix.coords[2*i+axis], t) {
				i++
			}
			for before(t, ix.coords[2*j+axis]) {
				j--
			}
		}

		if same(ix.coords[2*left+axis], t) {
			ix.swapItem(left, j)
		} else {
			j++
			ix.swapItem(j, right)
		}

		if j <= k {
			left = j + 1
		}
		if k <= j {
			right = j - 1
		}
	}
}

// before reports whether a sorts before b. NaN sorts after every other
// value, including +Inf, so the order is total and the partitioning
// stays sound for the points that do have ordinary coordinates.
func before(a, b float64) bool {
	return a < b || (!math.IsNaN(a) && math.IsNaN(b))
}

// same reports whether a and b occupy the same place in the order used
// by before.
func same(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// swapItem exchanges the points at positions i and j, keeping ids and
// coords in lockstep.
func (ix *Index) swapItem(i, j int) {
	ix.ids[i], ix.ids[j] = ix.ids[j], ix.ids[i]
	ix.coords[2*i+0], ix.coords[2*j+0] = ix.coords[2*j+0], ix.coords[2*i+0]
	ix.coords[2*i+1], ix.coords[2*j+1] = ix.coords[2*j+1], ix.coords[2*i+1]
}

// NumPoints returns the number of points stored in the index.
func (ix *Index) NumPoints() int {
	return len(ix.ids)
}

// NodeSize returns the node size the index was built with.
func (ix *Index) NodeSize() int {
	return ix.nodeSize
}

// Bounds returns the bounding box around all indexed points. Points
// with a NaN coordinate do not contribute to the bounds, and the bounds
// of an index with no points is EmptyBox.
func (ix *Index) Bounds() Box {
	return ix.bounds
}

// String returns a summary description of the index.
func (ix *Index) String() string {
	return fmt.Sprintf("Index{Bounds:%s,NumPoints:%d,NodeSize:%d}", ix.bounds, len(ix.ids), ix.nodeSize)
}

// Points returns the indexed points in id order, so that the point
// with id i is at position i of the returned slice. The returned slice
// is newly allocated.
func (ix *Index) Points() []Point {
	points := make([]Point, len(ix.ids))
	for i, id := range ix.ids {
		points[id] = Point{X: ix.coords[2*i+0], Y: ix.coords[2*i+1]}
	}
	return points
}
