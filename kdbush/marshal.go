// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package kdbush

import (
	"io"
	"math"
	"unsafe"
)

// numPointBytes is the serialized size of one point: an int64 id plus
// two float64 coordinates.
const numPointBytes = 8 + 2*8

// unmarshalChunk is the number of values Unmarshal reads per step.
const unmarshalChunk = 1 << 16

// Size returns the size in bytes of the serialized form of an index
// holding a given number of points. Returns an error if numPoints is
// negative or if the size overflows int64.
func Size(numPoints int) (int64, error) {
	if numPoints < 0 {
		return 0, fmtErr("point count must not be negative (got %d)", numPoints)
	}
	if int64(numPoints) > math.MaxInt64/numPointBytes {
		return 0, textErr("index size overflows int64")
	}
	return int64(numPoints) * numPointBytes, nil
}

func int64Octets(s []int64) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), 8*len(s))
}

func float64Octets(s []float64) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), 8*len(s))
}

// Marshal serializes the index to a writer, returning the number of
// bytes written.
//
// The serialized form is the list of ids, as little-endian 64-bit
// integers, followed by the interleaved coordinates, as little-endian
// IEEE 754 doubles. The point count and node size are not written, and
// must be supplied to Unmarshal by other means.
func (ix *Index) Marshal(w io.Writer) (n int, err error) {
	if w == nil {
		textPanic("nil writer")
	}
	var m int
	m, err = writeLittleEndianOctets(w, int64Octets(ix.ids))
	n += m
	if err != nil {
		err = wrapErr("failed to write ids", err)
		return
	}
	m, err = writeLittleEndianOctets(w, float64Octets(ix.coords))
	n += m
	if err != nil {
		err = wrapErr("failed to write coordinates", err)
	}
	return
}

// Unmarshal deserializes an index from a stream in the format written
// by Marshal, given the point count and node size the index was built
// with.
//
// If this function returns without error, exactly Size(numPoints)
// bytes have been consumed from the reader. Returns an error wrapping
// ErrInvalidConfiguration if nodeSize is less than 1, and an error if
// the ids read are not a permutation of 0..numPoints-1.
func Unmarshal(r io.Reader, numPoints, nodeSize int) (*Index, error) {
	if r == nil {
		textPanic("nil reader")
	}
	if err := validateNodeSize(nodeSize); err != nil {
		return nil, err
	}
	if _, err := Size(numPoints); err != nil {
		return nil, err
	}
	if numPoints > math.MaxInt/2 {
		return nil, textErr("coordinate count overflows int")
	}

	ids, err := readOctets(r, numPoints, int64Octets)
	if err != nil {
		return nil, wrapErr("failed to read index bytes", err)
	}
	coords, err := readOctets(r, 2*numPoints, float64Octets)
	if err != nil {
		return nil, wrapErr("failed to read index bytes", err)
	}

	ix := &Index{
		ids:      ids,
		coords:   coords,
		nodeSize: nodeSize,
		bounds:   EmptyBox,
	}

	if err := ix.checkIDs(); err != nil {
		return nil, err
	}
	for i := 0; i < numPoints; i++ {
		ix.bounds.ExpandXY(ix.coords[2*i+0], ix.coords[2*i+1])
	}

	return ix, nil
}

// readOctets reads n little-endian 8-byte values from a stream.
//
// The values are read at most unmarshalChunk at a time and the slice
// grows only as data actually arrives, so a corrupt count cannot force
// an allocation much larger than the stream itself. The raw octets are
// read directly into the slice and byte-swapped in place on big-endian
// systems.
func readOctets[T int64 | float64](r io.Reader, n int, octets func([]T) []byte) ([]T, error) {
	s := make([]T, 0, minInt(n, unmarshalChunk))
	for len(s) < n {
		k := minInt(n-len(s), unmarshalChunk)
		s = extend(s, k, n)
		b := octets(s[len(s)-k:])
		if _, err := io.ReadFull(r, b); err != nil {
			if err == io.EOF && len(s) > k {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}
		fixLittleEndianOctets(b)
	}
	return s, nil
}

// extend lengthens s by k elements, never growing its capacity beyond
// limit.
func extend[T any](s []T, k, limit int) []T {
	n := len(s) + k
	if n <= cap(s) {
		return s[:n]
	}
	c := 2 * cap(s)
	if c < n {
		c = n
	} else if c > limit {
		c = limit
	}
	t := make([]T, n, c)
	copy(t, s)
	return t
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// checkIDs verifies that ids is a permutation of 0..n-1.
func (ix *Index) checkIDs() error {
	n := len(ix.ids)
	seen := make([]bool, n)
	for i, id := range ix.ids {
		if id < 0 || id >= int64(n) {
			return fmtErr("corrupt index: id %d at position %d out of range [0, %d)", id, i, n)
		} else if seen[id] {
			return fmtErr("corrupt index: duplicate id %d at position %d", id, i)
		}
		seen[id] = true
	}
	return nil
}
