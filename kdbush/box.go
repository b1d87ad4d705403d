// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kdbush

import (
	"fmt"
	"math"
)

// A Point is a single two-dimensional point to be indexed.
type Point struct {
	X float64
	Y float64
}

// String returns a compact representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%.8g,%.8g)", p.X, p.Y)
}

// A Box is an axis-aligned rectangle. A Box is used both as a range
// search query and to describe the extent of the points in an Index.
//
// Both bounds are inclusive, so a Box with XMin == XMax and YMin ==
// YMax is a legal query matching only points exactly at (XMin, YMin).
type Box struct {
	XMin float64
	YMin float64
	XMax float64
	YMax float64
}

// EmptyBox is a Box which contains nothing. Expanding EmptyBox by any
// Box or point yields that Box or point, which makes EmptyBox the right
// starting value when accumulating an extent.
var EmptyBox = Box{
	XMin: math.Inf(1),
	YMin: math.Inf(1),
	XMax: math.Inf(-1),
	YMax: math.Inf(-1),
}

// String returns the box as [XMin,YMin,XMax,YMax].
func (b Box) String() string {
	return fmt.Sprintf("[%.8g,%.8g,%.8g,%.8g]", b.XMin, b.YMin, b.XMax, b.YMax)
}

// Width returns the extent of the box on the X axis.
func (b *Box) Width() float64 {
	return b.XMax - b.XMin
}

// Height returns the extent of the box on the Y axis.
func (b *Box) Height() float64 {
	return b.YMax - b.YMin
}

// Expand grows the box, if necessary, so that it contains c.
func (b *Box) Expand(c *Box) {
	if c.XMin < b.XMin {
		b.XMin = c.XMin
	}
	if c.YMin < b.YMin {
		b.YMin = c.YMin
	}
	if c.XMax > b.XMax {
		b.XMax = c.XMax
	}
	if c.YMax > b.YMax {
		b.YMax = c.YMax
	}
}

// ExpandXY grows the box, if necessary, so that it contains the point
// (x, y). NaN coordinates leave the box unchanged.
func (b *Box) ExpandXY(x, y float64) {
	if x < b.XMin {
		b.XMin = x
	}
	if y < b.YMin {
		b.YMin = y
	}
	if x > b.XMax {
		b.XMax = x
	}
	if y > b.YMax {
		b.YMax = y
	}
}

// Contains reports whether the point (x, y) lies within the box,
// boundary included. A NaN coordinate is never contained.
func (b *Box) Contains(x, y float64) bool {
	return x >= b.XMin && x <= b.XMax && y >= b.YMin && y <= b.YMax
}

// min returns the box's lower bound on the given axis (0 for X, 1 for
// Y).
func (b *Box) min(axis int) float64 {
	if axis == 0 {
		return b.XMin
	}
	return b.YMin
}

// max returns the box's upper bound on the given axis.
func (b *Box) max(axis int) float64 {
	if axis == 0 {
		return b.XMax
	}
	return b.YMax
}
