// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatkd

import (
	"io"

	"github.com/gogama/flatkd/flat"
	"github.com/gogama/flatkd/kdbush"
	"github.com/gogama/flatkd/littleendian"
	flatbuffers "github.com/google/flatbuffers/go"
)

// FileReader reads a flatkd file from an underlying stream.
//
// Call Header first, then optionally Index. Finish with Close.
type FileReader struct {
	stateful
	// r is the stream to read from.
	r io.Reader
	// numPoints is the number of points recorded in the header.
	numPoints int
	// nodeSize is the index node size recorded in the header.
	nodeSize int
}

// NewFileReader creates a new flatkd file reader which reads from the
// given stream. The reader takes ownership of the stream: if it
// implements io.Closer, Close closes it.
func NewFileReader(r io.Reader) *FileReader {
	if r == nil {
		textPanic("nil reader")
	}
	return &FileReader{r: r}
}

// Header reads and validates the magic number, then reads the header
// table. It must be the first method called.
//
// The returned header is a size-prefixed root table at offset zero of
// its own buffer, so it can be passed directly to FileWriter.Header.
func (r *FileReader) Header() (*flat.Header, error) {
	// Transition into state for reading magic number.
	if err := r.toState(uninitialized, beforeMagic); err == errUnexpectedState {
		return nil, textErr(errHeaderAlreadyCalled)
	} else if err != nil {
		return nil, err
	}

	// Read the magic number and check the version.
	version, err := Magic(r.r)
	if err != nil {
		return nil, r.toErr(wrapErr("failed to read magic number", err))
	}
	if version.Major < MinSpecMajorVersion || version.Major > MaxSpecMajorVersion {
		return nil, r.toErr(fmtErr("unsupported version %d.%d (supported major versions: %d..%d)",
			version.Major, version.Patch, MinSpecMajorVersion, MaxSpecMajorVersion))
	}

	// Transition into state for reading header.
	if err = r.toState(beforeMagic, beforeHeader); err != nil {
		return nil, err
	}

	// Read the header length and sanity check it.
	buf := make([]byte, flatbuffers.SizeUint32)
	if _, err = io.ReadFull(r.r, buf); err != nil {
		return nil, r.toErr(wrapErr("failed to read header length", err))
	}
	headerLen := littleendian.Uint32(buf)
	if headerLen < flatbuffers.SizeUint32 {
		return nil, r.toErr(fmtErr("header length %d too small", headerLen))
	} else if headerLen > headerMaxLen {
		return nil, r.toErr(fmtErr("header length %d exceeds limit of %d bytes", headerLen, headerMaxLen))
	}

	// Read the header table, keeping the size prefix in the buffer.
	tbl := make([]byte, flatbuffers.SizeUint32+int(headerLen))
	copy(tbl, buf)
	if _, err = io.ReadFull(r.r, tbl[flatbuffers.SizeUint32:]); err != nil {
		return nil, r.toErr(wrapErr("failed to read header table", err))
	}
	var hdr *flat.Header
	err = safeFlatBuffersInteraction(func() error {
		hdr = flat.GetSizePrefixedRootAsHeader(tbl, 0)
		return nil
	})
	if err != nil {
		return nil, r.toErr(wrapErr("failed to read header table", err))
	}

	// Verify every header field is readable and cache the point count
	// and node size.
	var params HeaderParams
	if params, err = ReadHeaderParams(hdr); err != nil {
		return nil, r.toErr(err)
	}
	r.numPoints = params.NumPoints
	r.nodeSize = params.NodeSize

	// Transition into state for reading index.
	if err = r.toState(beforeHeader, afterHeader); err != nil {
		return nil, err
	}

	// Successfully read header.
	return hdr, nil
}

// Index reads the index section into memory. If the header indicates
// there is no index, Index returns ErrNoIndex.
func (r *FileReader) Index() (*kdbush.Index, error) {
	if err := r.canReadIndex(); err != nil {
		return nil, err
	}

	// Transition into state for reading index.
	r.state = beforeIndex

	// Read the index.
	ix, err := kdbush.Unmarshal(r.r, r.numPoints, r.nodeSize)
	if err != nil {
		return nil, r.toErr(wrapErr("failed to read index", err))
	}

	// Transition into the final state.
	if err = r.toState(beforeIndex, afterIndex); err != nil {
		return nil, err
	}

	// Successfully read index.
	return ix, nil
}

// Close closes the underlying stream, if it is an io.Closer.
func (r *FileReader) Close() error {
	return r.close(r.r)
}

func (r *FileReader) canReadIndex() error {
	if r.err != nil {
		return r.err
	}
	switch r.state {
	case uninitialized:
		return textErr(errHeaderNotCalled)
	case afterHeader:
		if r.nodeSize == 0 {
			return ErrNoIndex
		}
	case afterIndex:
		return textErr(errReadPastIndex)
	default:
		fmtPanic("logic error: unexpected state 0x%x looking to read index", r.state)
	}
	return nil
}
