// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatkd

import (
	"io"

	"github.com/gogama/flatkd/flat"
	"github.com/gogama/flatkd/kdbush"
)

// FileWriter writes a flatkd file to an underlying stream.
//
// Call Header first, then, if the header indicates an index, exactly
// one of Index or IndexPoints. Finish with Close.
type FileWriter struct {
	stateful
	// w is the stream to write to.
	w io.Writer
	// numPoints is the number of points recorded in the header.
	numPoints int
	// nodeSize is the index node size recorded in the header.
	nodeSize int
}

// NewFileWriter creates a new flatkd file writer which writes to the
// given stream. The writer takes ownership of the stream: if it
// implements io.Closer, Close closes it.
func NewFileWriter(w io.Writer) *FileWriter {
	if w == nil {
		textPanic("nil writer")
	}
	return &FileWriter{w: w}
}

// Header writes the magic number and the header table. It must be the
// first method called.
//
// The header must be a size-prefixed root table existing at offset 0
// in its buffer, as produced by BuildHeader or returned by
// FileReader.Header, because FlatBuffers offers no general way to know
// the size of an arbitrary table or to be sure it is contiguous.
func (w *FileWriter) Header(h *flat.Header) (n int, err error) {
	// Minimally validate incoming pointer.
	if h == nil {
		textPanic("nil header")
	}

	// Check the header is readable, caching point count and node size.
	var params HeaderParams
	if params, err = ReadHeaderParams(h); err != nil {
		return
	}

	// Transition into state for writing magic number.
	if err = w.toState(uninitialized, beforeMagic); err == errUnexpectedState {
		err = textErr(errHeaderAlreadyCalled)
		return
	} else if err != nil {
		return
	}

	// Write the magic number.
	m, err := w.w.Write(magic[:])
	n += m
	if err != nil {
		err = w.toErr(wrapErr("failed to write magic number", err))
		return
	}

	// Transition into state for writing header.
	if err = w.toState(beforeMagic, beforeHeader); err != nil {
		return
	}

	// Write the header table.
	m, err = writeSizePrefixedTable(w.w, h.Table())
	n += m
	if err != nil {
		err = w.toErr(wrapErr("failed to write header", err))
		return
	}

	// Save cached point count and index node size.
	w.numPoints = params.NumPoints
	w.nodeSize = params.NodeSize

	// Transition into the state for writing index.
	err = w.toState(beforeHeader, afterHeader)

	// Successfully wrote header.
	return
}

// Index writes an already built index. Its point count and node size
// must agree with the header.
func (w *FileWriter) Index(ix *kdbush.Index) (n int, err error) {
	if ix == nil {
		textPanic("nil index")
	}
	if err = w.canWriteIndex(); err != nil {
		return
	}
	return w.index(ix)
}

// IndexPoints builds an index over the given points using the node
// size recorded in the header, then writes it. The number of points
// must agree with the header.
func (w *FileWriter) IndexPoints(points []kdbush.Point) (n int, err error) {
	if err = w.canWriteIndex(); err != nil {
		return
	}
	if len(points) != w.numPoints {
		err = fmtErr("point count mismatch (header=%d, points=%d)", w.numPoints, len(points))
		return
	}
	var ix *kdbush.Index
	if ix, err = kdbush.New(points, w.nodeSize); err != nil {
		err = wrapErr("failed to build index", err)
		return
	}
	return w.index(ix)
}

func (w *FileWriter) index(ix *kdbush.Index) (n int, err error) {
	// Transition into state for writing index.
	w.state = beforeIndex

	// Ensure index parameters agree with header parameters.
	if w.numPoints != ix.NumPoints() {
		err = fmtErr("point count mismatch (header=%d, index=%d)", w.numPoints, ix.NumPoints())
		w.state = afterHeader // Go back to header state.
		return
	} else if w.nodeSize != ix.NodeSize() {
		err = fmtErr("node size mismatch (header=%d, index=%d)", w.nodeSize, ix.NodeSize())
		w.state = afterHeader // Go back to header state.
		return
	}

	// Write the index.
	n, err = ix.Marshal(w.w)
	if err != nil {
		err = w.toErr(wrapErr("failed to write index", err))
		return
	}

	// Transition into the final state.
	err = w.toState(beforeIndex, afterIndex)
	return
}

// Close closes the underlying stream, if it is an io.Closer. It returns
// an error if the header promised an index which was never written.
func (w *FileWriter) Close() error {
	missing := w.err == nil && w.state == afterHeader && w.nodeSize > 0 && w.numPoints > 0
	if err := w.close(w.w); err != nil {
		return err
	} else if missing {
		return textErr("truncated file: " + errIndexNotWritten)
	} else {
		return nil
	}
}

func (w *FileWriter) canWriteIndex() error {
	if w.err != nil {
		return w.err
	}
	switch w.state {
	case uninitialized:
		return textErr(errHeaderNotCalled)
	case afterHeader:
		if w.nodeSize == 0 {
			return textErr(errHeaderNodeSizeZero)
		}
	case afterIndex:
		return textErr(errWritePastIndex)
	default:
		fmtPanic("logic error: unexpected state 0x%x looking to write index", w.state)
	}
	return nil
}
