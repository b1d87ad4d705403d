// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatkd

import (
	"io"
)

const (
	// magicLen is the length of the flatkd magic number in bytes.
	magicLen = 8
	// MinSpecMajorVersion is the minimum major version of the flatkd
	// file format that this package can read.
	MinSpecMajorVersion = 0x01
	// MaxSpecMajorVersion is the maximum major version of the flatkd
	// file format that this package can read.
	MaxSpecMajorVersion = 0x01
	// headerMaxLen is a limit on the size of a file header this package
	// will read. The purpose of this value is to prevent corrupted or
	// malicious file headers from causing huge and pointless memory
	// allocations.
	headerMaxLen = 1024 * 1024
)

// magic contains the flatkd magic number.
//
// The fourth byte is the format major version of data written by this
// package, and the last byte is the format patch version of data
// written by this package.
var magic = [magicLen]byte{0x66, 0x6b, 0x64, 0x01, 0x66, 0x6b, 0x64, 0x00}

// SpecVersion is a version of the flatkd file format.
type SpecVersion struct {
	// Major is the major version of the file format.
	Major uint8
	// Patch is the patch version of the file format.
	Patch uint8
}

// Magic reads the flatkd magic number from a stream and if it is
// valid, returns the file format version. This function can be used to
// test whether any file seems to be in the flatkd format. However, it
// does not read beyond the magic number.
//
// Calling this function will result in 8 bytes being read from the
// stream reader (unless there were fewer than 8 bytes available, in
// which all available bytes in the stream are consumed).
func Magic(r io.Reader) (SpecVersion, error) {
	m := make([]byte, magicLen)
	_, err := io.ReadFull(r, m)
	if err != nil {
		return SpecVersion{}, err
	}
	if m[0] == magic[0] &&
		m[1] == magic[1] &&
		m[2] == magic[2] &&
		m[4] == magic[4] &&
		m[5] == magic[5] &&
		m[6] == magic[6] {
		return SpecVersion{m[3], m[7]}, nil
	}
	return SpecVersion{}, textErr("invalid magic number")
}
