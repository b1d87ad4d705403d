// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatkd

import (
	"math"
	"testing"

	"github.com/gogama/flatkd/flat"
	"github.com/gogama/flatkd/kdbush"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHeader(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		testCases := []struct {
			name   string
			params HeaderParams
			errMsg string
		}{
			{
				name:   "NegativeNumPoints",
				params: HeaderParams{NumPoints: -1},
				errMsg: "flatkd: point count must not be negative (got -1)",
			},
			{
				name:   "NegativeNodeSize",
				params: HeaderParams{NodeSize: -1},
				errMsg: "flatkd: node size out of range [0, 4294967295] (got -1)",
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				hdr, err := BuildHeader(testCase.params)

				assert.Nil(t, hdr)
				assert.EqualError(t, err, testCase.errMsg)
			})
		}
	})

	t.Run("Minimal", func(t *testing.T) {
		hdr, err := BuildHeader(HeaderParams{})

		require.NoError(t, err)
		assert.Equal(t, uint64(0), hdr.NumPoints())
		assert.Equal(t, uint32(0), hdr.IndexNodeSize())
		assert.Equal(t, 0, hdr.EnvelopeLength())
		assert.Nil(t, hdr.Title())
		assert.Nil(t, hdr.Description())
	})

	t.Run("Full", func(t *testing.T) {
		hdr, err := BuildHeader(HeaderParams{
			NumPoints:   1000,
			NodeSize:    16,
			Envelope:    &kdbush.Box{XMin: -1, YMin: -2, XMax: 3, YMax: 4},
			Title:       "cities",
			Description: "capital cities",
		})

		require.NoError(t, err)
		assert.Equal(t, uint64(1000), hdr.NumPoints())
		assert.Equal(t, uint32(16), hdr.IndexNodeSize())
		require.Equal(t, 4, hdr.EnvelopeLength())
		assert.Equal(t, []float64{-1, -2, 3, 4}, []float64{hdr.Envelope(0), hdr.Envelope(1), hdr.Envelope(2), hdr.Envelope(3)})
		assert.Equal(t, []byte("cities"), hdr.Title())
		assert.Equal(t, []byte("capital cities"), hdr.Description())
	})

	t.Run("SizePrefixedAtOffsetZero", func(t *testing.T) {
		hdr, err := BuildHeader(HeaderParams{NumPoints: 5, NodeSize: 2, Title: "x"})
		require.NoError(t, err)

		size, err := tableSize(hdr.Table())

		require.NoError(t, err)
		assert.Equal(t, len(hdr.Table().Bytes)-4, int(size))
	})
}

func TestHeaderParamsOf(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		ix, err := kdbush.New(nil, 3)
		require.NoError(t, err)

		p := HeaderParamsOf(ix)

		assert.Equal(t, HeaderParams{NodeSize: 3}, p)
	})

	t.Run("NonEmpty", func(t *testing.T) {
		ix, err := kdbush.New([]kdbush.Point{{X: 1, Y: 5}, {X: -2, Y: 0}}, 7)
		require.NoError(t, err)

		p := HeaderParamsOf(ix)

		assert.Equal(t, 2, p.NumPoints)
		assert.Equal(t, 7, p.NodeSize)
		require.NotNil(t, p.Envelope)
		assert.Equal(t, kdbush.Box{XMin: -2, YMin: 0, XMax: 1, YMax: 5}, *p.Envelope)
	})
}

func TestHeaderCounts(t *testing.T) {
	t.Run("OK", func(t *testing.T) {
		hdr, err := BuildHeader(HeaderParams{NumPoints: 10, NodeSize: 4})
		require.NoError(t, err)

		numPoints, nodeSize, err := headerCounts(hdr)

		require.NoError(t, err)
		assert.Equal(t, 10, numPoints)
		assert.Equal(t, 4, nodeSize)
	})

	t.Run("Overflow", func(t *testing.T) {
		hdr := patchNumPoints(t, HeaderParams{NumPoints: 1}, math.MaxUint64)

		_, _, err := headerCounts(hdr)

		assert.EqualError(t, err, "flatkd: header point count overflows int (18446744073709551615)")
	})
}

func TestReadHeaderParams(t *testing.T) {
	t.Run("Nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "flatkd: nil header", func() {
			_, _ = ReadHeaderParams(nil)
		})
	})

	t.Run("RoundTrip", func(t *testing.T) {
		testCases := []struct {
			name   string
			params HeaderParams
		}{
			{name: "Minimal", params: HeaderParams{}},
			{name: "NoIndex", params: HeaderParams{NumPoints: 9, Title: "t"}},
			{
				name: "Full",
				params: HeaderParams{
					NumPoints:   1000,
					NodeSize:    16,
					Envelope:    &kdbush.Box{XMin: -1, YMin: -2, XMax: 3, YMax: 4},
					Title:       "cities",
					Description: "capital cities",
				},
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				p, err := ReadHeaderParams(testHeader(t, testCase.params))

				require.NoError(t, err)
				assert.Equal(t, testCase.params, p)
			})
		}
	})

	t.Run("CorruptTitle", func(t *testing.T) {
		hdr := testHeader(t, HeaderParams{NumPoints: 2, NodeSize: 1, Title: "hello"})
		corruptTitle(t, hdr)

		_, err := ReadHeaderParams(hdr)

		assert.ErrorContains(t, err, "flatkd: failed to get header fields: panic: flatbuffers: ")
	})

	t.Run("EnvelopeLength", func(t *testing.T) {
		b := flatbuffers.NewBuilder(0)
		flat.HeaderStartEnvelopeVector(b, 3)
		b.PrependFloat64(3)
		b.PrependFloat64(2)
		b.PrependFloat64(1)
		env := b.EndVector(3)
		flat.HeaderStart(b)
		flat.HeaderAddEnvelope(b, env)
		b.FinishSizePrefixed(flat.HeaderEnd(b))
		hdr := flat.GetSizePrefixedRootAsHeader(b.FinishedBytes(), 0)

		_, err := ReadHeaderParams(hdr)

		assert.EqualError(t, err, "flatkd: header envelope must have 0 or 4 values (got 3)")
	})
}

// corruptTitle points the title field of a header far outside its
// buffer.
func corruptTitle(t *testing.T, hdr *flat.Header) {
	tab := hdr.Table()
	o := tab.Offset(10)
	require.NotZero(t, o, "title slot must be present")
	flatbuffers.WriteUint32(tab.Bytes[tab.Pos+flatbuffers.UOffsetT(o):], 0x7fffff00)
}

// patchNumPoints builds a header and then overwrites its point count in
// place, allowing tests to create headers BuildHeader refuses to build.
func patchNumPoints(t *testing.T, p HeaderParams, n uint64) *flat.Header {
	hdr, err := BuildHeader(p)
	require.NoError(t, err)
	tab := hdr.Table()
	require.True(t, tab.MutateUint64Slot(4, n), "num_points slot must be present")
	return hdr
}
