// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatkd

import (
	"fmt"
	"strings"

	"github.com/gogama/flatkd/flat"
)

// HeaderString returns a string summarizing the Header fields. The
// returned value is a summary and not meant to be exhaustive.
func HeaderString(hdr *flat.Header) string {
	if hdr == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("Header{")
	if err := safeFlatBuffersInteraction(func() error {
		stringUint64(&b, "NumPoints", hdr.NumPoints())
		nodeSize := hdr.IndexNodeSize()
		if nodeSize > 0 {
			stringUint64(&b, ",NodeSize", uint64(nodeSize))
		} else {
			b.WriteString(",NO INDEX")
		}
		stringEnvelope(&b, hdr)
		stringBytes(&b, ",Title", hdr.Title())
		stringBytes(&b, ",Desc", hdr.Description())
		return nil
	}); err != nil {
		return "error: " + err.Error()
	}
	b.WriteByte('}')
	return b.String()
}

func stringKey(b *strings.Builder, key string) {
	b.WriteString(key)
	b.WriteByte(':')
}

func stringBytes(b *strings.Builder, key string, value []byte) {
	if value != nil {
		stringKey(b, key)
		b.Write(value)
	}
}

func stringUint64(b *strings.Builder, key string, value uint64) {
	stringKey(b, key)
	fmt.Fprintf(b, "%d", value)
}

func stringEnvelope(b *strings.Builder, hdr *flat.Header) {
	n := hdr.EnvelopeLength()
	if n > 0 {
		stringKey(b, ",Envelope")
		b.WriteByte('[')
		fmt.Fprintf(b, "%.8g", hdr.Envelope(0))
		for i := 1; i < n; i++ {
			fmt.Fprintf(b, ",%.8g", hdr.Envelope(i))
		}
		b.WriteByte(']')
	}
}
