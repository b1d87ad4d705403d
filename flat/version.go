// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package flat contains the FlatBuffers table accessors for the flatkd
// file header.
package flat

import (
	_ "embed"
)

// Schema contains the FlatBuffers schema, in the flatc IDL, which
// defines the tables in package flat.
//
//go:embed "header.fbs"
var Schema string
