// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kdbush

// A ticket is a pending work item to be executed during a search: the
// closed position range [left, right] of one subtree, and the axis that
// subtree's root splits on (0 for X, 1 for Y).
type ticket struct {
	left, right int
	axis        int
}

// A ticketBag is the stack of pending work items of a single search.
type ticketBag []ticket

func stackPush(tq *ticketBag, t ticket) {
	*tq = append(*tq, t)
}

func stackPop(tq *ticketBag) ticket {
	old := *tq
	n := len(old)
	x := old[n-1]
	*tq = old[0 : n-1]
	return x
}

// A query is the geometric predicate driving a search.
type query interface {
	// matches reports whether the point (x, y) satisfies the query.
	matches(x, y float64) bool
	// descend reports whether the subtrees to the left and right of a
	// node whose split value on the given axis is v may contain
	// matches.
	descend(v float64, axis int) (left, right bool)
}

type boxQuery struct {
	b Box
}

func (q *boxQuery) matches(x, y float64) bool {
	return q.b.Contains(x, y)
}

// descend is written so that a NaN split value, which sorts after every
// other value, sends the search left only.
func (q *boxQuery) descend(v float64, axis int) (bool, bool) {
	return !(q.b.min(axis) > v), q.b.max(axis) >= v
}

type circleQuery struct {
	x, y float64
	r    float64
	// r2 is r squared, computed once per search.
	r2 float64
}

func newCircleQuery(x, y, r float64) *circleQuery {
	return &circleQuery{x: x, y: y, r: r, r2: r * r}
}

func (q *circleQuery) matches(x, y float64) bool {
	return sqDist(x, y, q.x, q.y) <= q.r2
}

func (q *circleQuery) descend(v float64, axis int) (bool, bool) {
	c := q.x
	if axis == 1 {
		c = q.y
	}
	return !(c-q.r > v), c+q.r >= v
}

func sqDist(ax, ay, bx, by float64) float64 {
	dx := ax - bx
	dy := ay - by
	return dx*dx + dy*dy
}

// Cursor is a lazy, pull-based sequence of search matches. Each call to
// Next does only as much of the tree traversal as is needed to produce
// the next match.
//
// A Cursor belongs to a single goroutine, but any number of cursors may
// be searching the same Index concurrently. A Cursor cannot be rewound:
// to repeat a search, create a new Cursor.
type Cursor struct {
	ix *Index
	q  query
	// bag holds the subtrees not yet visited.
	bag ticketBag
	// pos and end delimit the part of a leaf range still to be scanned.
	// There is no leaf scan in progress when pos == end.
	pos, end int
}

func newCursor(ix *Index, q query) *Cursor {
	c := &Cursor{ix: ix, q: q}
	if len(ix.ids) > 0 {
		stackPush(&c.bag, ticket{left: 0, right: len(ix.ids) - 1, axis: 0})
	}
	return c
}

// RangeCursor returns a Cursor over the ids of all points within the
// query box b, boundary included. The box should satisfy XMin <= XMax
// and YMin <= YMax.
func (ix *Index) RangeCursor(b Box) *Cursor {
	return newCursor(ix, &boxQuery{b: b})
}

// WithinCursor returns a Cursor over the ids of all points whose
// Euclidean distance from (x, y) is at most r. A negative or NaN radius
// matches nothing.
func (ix *Index) WithinCursor(x, y, r float64) *Cursor {
	if !(r >= 0) {
		return &Cursor{ix: ix}
	}
	return newCursor(ix, newCircleQuery(x, y, r))
}

// Next returns the id of the next matching point. The second return
// value is false once the search is exhausted, and stays false on
// subsequent calls.
func (c *Cursor) Next() (int, bool) {
	ix := c.ix
	for {
		// Finish scanning the current leaf range, if any.
		for c.pos < c.end {
			i := c.pos
			c.pos++
			if c.q.matches(ix.coords[2*i+0], ix.coords[2*i+1]) {
				return int(ix.ids[i]), true
			}
		}

		// Stop if there is no remaining work.
		if len(c.bag) == 0 {
			return 0, false
		}

		// Small ranges are leaves and are scanned linearly.
		t := stackPop(&c.bag)
		if t.right-t.left <= ix.nodeSize {
			c.pos, c.end = t.left, t.right+1
			continue
		}

		// Queue the subtrees on either side of the middle point which
		// may hold matches. The left subtree goes on top so that it is
		// searched first.
		m := (t.left + t.right) / 2
		x, y := ix.coords[2*m+0], ix.coords[2*m+1]
		v := x
		if t.axis == 1 {
			v = y
		}
		left, right := c.q.descend(v, t.axis)
		if right {
			stackPush(&c.bag, ticket{left: m + 1, right: t.right, axis: 1 - t.axis})
		}
		if left {
			stackPush(&c.bag, ticket{left: t.left, right: m - 1, axis: 1 - t.axis})
		}

		// Test the middle point itself.
		if c.q.matches(x, y) {
			return int(ix.ids[m]), true
		}
	}
}

// Collect drains the cursor, returning the ids of all remaining
// matches. The returned slice is never nil.
func (c *Cursor) Collect() []int {
	ids := make([]int, 0)
	for id, ok := c.Next(); ok; id, ok = c.Next() {
		ids = append(ids, id)
	}
	return ids
}

// Range calls visit with the id of every point within the query box b,
// boundary included. Each matching id is visited exactly once. The
// visiting order is deterministic for a given Index but is otherwise
// not defined.
func (ix *Index) Range(b Box, visit func(id int)) {
	c := ix.RangeCursor(b)
	for id, ok := c.Next(); ok; id, ok = c.Next() {
		visit(id)
	}
}

// Within calls visit with the id of every point whose Euclidean
// distance from (x, y) is at most r. Each matching id is visited
// exactly once, in a deterministic but otherwise undefined order.
func (ix *Index) Within(x, y, r float64, visit func(id int)) {
	c := ix.WithinCursor(x, y, r)
	for id, ok := c.Next(); ok; id, ok = c.Next() {
		visit(id)
	}
}

// Search returns the ids of all points within the query box b. The
// order of the results is not defined.
func (ix *Index) Search(b Box) []int {
	return ix.RangeCursor(b).Collect()
}

// SearchWithin returns the ids of all points within distance r of
// (x, y). The order of the results is not defined.
func (ix *Index) SearchWithin(x, y, r float64) []int {
	return ix.WithinCursor(x, y, r).Collect()
}
