// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatkd

import (
	"math"

	"github.com/gogama/flatkd/flat"
	"github.com/gogama/flatkd/kdbush"
	flatbuffers "github.com/google/flatbuffers/go"
)

// HeaderParams contains the values used by BuildHeader to build a
// flatkd file header.
type HeaderParams struct {
	// NumPoints is the number of points in the file's index.
	NumPoints int
	// NodeSize is the index node size. Zero means the file has no
	// index section.
	NodeSize int
	// Envelope, if not nil, is recorded in the header as the bounding
	// box of the indexed points.
	Envelope *kdbush.Box
	// Title is an optional human-readable title.
	Title string
	// Description is an optional human-readable description.
	Description string
}

// HeaderParamsOf returns header parameters describing an existing
// index, with the envelope set to the index bounds when the index is
// not empty.
func HeaderParamsOf(ix *kdbush.Index) HeaderParams {
	p := HeaderParams{
		NumPoints: ix.NumPoints(),
		NodeSize:  ix.NodeSize(),
	}
	if p.NumPoints > 0 {
		b := ix.Bounds()
		p.Envelope = &b
	}
	return p
}

// BuildHeader builds a flatkd file header from the given parameters.
// The returned header is a size-prefixed root table at offset zero of
// its buffer, which is the form FileWriter.Header requires.
func BuildHeader(p HeaderParams) (*flat.Header, error) {
	if p.NumPoints < 0 {
		return nil, fmtErr("point count must not be negative (got %d)", p.NumPoints)
	}
	if p.NodeSize < 0 || uint64(p.NodeSize) > math.MaxUint32 {
		return nil, fmtErr("node size out of range [0, %d] (got %d)", uint32(math.MaxUint32), p.NodeSize)
	}

	b := flatbuffers.NewBuilder(128)
	var title, desc, env flatbuffers.UOffsetT
	if p.Title != "" {
		title = b.CreateString(p.Title)
	}
	if p.Description != "" {
		desc = b.CreateString(p.Description)
	}
	if p.Envelope != nil {
		flat.HeaderStartEnvelopeVector(b, 4)
		b.PrependFloat64(p.Envelope.YMax)
		b.PrependFloat64(p.Envelope.XMax)
		b.PrependFloat64(p.Envelope.YMin)
		b.PrependFloat64(p.Envelope.XMin)
		env = b.EndVector(4)
	}

	flat.HeaderStart(b)
	flat.HeaderAddNumPoints(b, uint64(p.NumPoints))
	flat.HeaderAddIndexNodeSize(b, uint32(p.NodeSize))
	if env != 0 {
		flat.HeaderAddEnvelope(b, env)
	}
	if title != 0 {
		flat.HeaderAddTitle(b, title)
	}
	if desc != 0 {
		flat.HeaderAddDescription(b, desc)
	}
	b.FinishSizePrefixed(flat.HeaderEnd(b))

	return flat.GetSizePrefixedRootAsHeader(b.FinishedBytes(), 0), nil
}

// ReadHeaderParams returns the parameters recorded in a header. Unlike
// the raw flat.Header accessors, which panic on a corrupt table, it
// reports any field it cannot read as an error.
//
// The envelope must have either zero or four values.
func ReadHeaderParams(h *flat.Header) (p HeaderParams, err error) {
	if h == nil {
		textPanic("nil header")
	}
	if p.NumPoints, p.NodeSize, err = headerCounts(h); err != nil {
		return
	}

	var n int
	var title, desc []byte
	err = safeFlatBuffersInteraction(func() error {
		n = h.EnvelopeLength()
		title = h.Title()
		desc = h.Description()
		return nil
	})
	if err != nil {
		err = wrapErr("failed to get header fields", err)
		return
	}
	if n != 0 && n != 4 {
		err = fmtErr("header envelope must have 0 or 4 values (got %d)", n)
		return
	}
	if n == 4 {
		var env kdbush.Box
		err = safeFlatBuffersInteraction(func() error {
			env = kdbush.Box{XMin: h.Envelope(0), YMin: h.Envelope(1), XMax: h.Envelope(2), YMax: h.Envelope(3)}
			return nil
		})
		if err != nil {
			err = wrapErr("failed to get header envelope", err)
			return
		}
		p.Envelope = &env
	}
	p.Title = string(title)
	p.Description = string(desc)
	return
}

// headerCounts extracts the point count and index node size from a
// header, checking that both fit in an int.
func headerCounts(h *flat.Header) (numPoints, nodeSize int, err error) {
	var n uint64
	var s uint32
	err = safeFlatBuffersInteraction(func() error {
		n = h.NumPoints()
		s = h.IndexNodeSize()
		return nil
	})
	if err != nil {
		err = wrapErr("failed to get header counts", err)
		return
	}
	if n > math.MaxInt {
		err = fmtErr("header point count overflows int (%d)", n)
		return
	}
	if uint64(s) > math.MaxInt {
		err = fmtErr("header node size overflows int (%d)", s)
		return
	}
	numPoints, nodeSize = int(n), int(s)
	return
}
