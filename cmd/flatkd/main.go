// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command flatkd builds, inspects and searches flatkd point index
// files.
//
// Usage:
//
//	flatkd build [flags] <points.csv> <out.fkd>
//	flatkd info [flags] <file.fkd>
//	flatkd search [flags] <file.fkd>
//
// Points are read from CSV records of the form x,y. The id of a point
// is the zero-based position of its record in the input.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
