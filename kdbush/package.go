// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package kdbush provides a static, flat KD-tree spatial index over a
// fixed set of 2D points, together with rectangle and radius search
// algorithms.
//
// The index is built once with New and never changes afterward. It
// holds no per-node objects: the tree structure is implicit in the
// layout of two flat arrays and is recovered arithmetically during a
// search. Because no search mutates the index, a single Index can be
// shared by any number of concurrent readers without locking.
package kdbush
