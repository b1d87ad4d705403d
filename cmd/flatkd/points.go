// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gogama/flatkd/kdbush"
)

// readPoints reads points from CSV records of the form x,y. Blank lines
// and lines starting with '#' are skipped.
func readPoints(r io.Reader) ([]kdbush.Point, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = 2
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var points []kdbush.Point
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return points, nil
		} else if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		var p kdbush.Point
		if p.X, err = strconv.ParseFloat(rec[0], 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid x: %w", line, err)
		}
		if p.Y, err = strconv.ParseFloat(rec[1], 64); err != nil {
			return nil, fmt.Errorf("line %d: invalid y: %w", line, err)
		}
		points = append(points, p)
	}
}
