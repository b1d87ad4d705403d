// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package flatkd reads and writes flatkd files, a compact binary format
// for persisting a static KD-tree point index.
//
// A flatkd file consists of an 8-byte magic number, a size-prefixed
// FlatBuffers header table (see package flat), and an optional index
// section holding a kdbush.Index in the format written by
// kdbush.Index.Marshal. The header records the point count and index
// node size needed to read the index section back.
//
// Use FileWriter to write a file and FileReader to read one. Both are
// forward-only: each section must be written or read in order, once.
package flatkd
