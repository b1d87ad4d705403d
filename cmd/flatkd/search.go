// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gogama/flatkd"
	"github.com/gogama/flatkd/kdbush"
	"github.com/spf13/cobra"
)

type searchOptions struct {
	box    []float64
	within []float64
	format string
}

// match is a single search result.
type match struct {
	ID int     `yaml:"id"`
	X  float64 `yaml:"x"`
	Y  float64 `yaml:"y"`
}

func newSearchCmd() *cobra.Command {
	var opts searchOptions
	cmd := &cobra.Command{
		Use:   "search <file.fkd>",
		Short: "Search an index file by box or radius",
		Long: `Search an index file for the points inside a box or within a
radius of a location. Exactly one of --box or --within is required.

Matches are printed in ascending id order.

Examples:
  flatkd search points.fkd --box=0,0,10,10
  flatkd search points.fkd --within=5,5,2.5 --format yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.OutOrStdout(), args[0], &opts)
		},
	}
	cmd.Flags().Float64SliceVarP(&opts.box, "box", "b", nil, "Query box as xmin,ymin,xmax,ymax")
	cmd.Flags().Float64SliceVarP(&opts.within, "within", "w", nil, "Query circle as x,y,radius")
	addFormatFlag(cmd, &opts.format)
	return cmd
}

func runSearch(out io.Writer, path string, opts *searchOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	if (opts.box == nil) == (opts.within == nil) {
		return errors.New("exactly one of --box or --within is required")
	}
	if opts.box != nil && len(opts.box) != 4 {
		return fmt.Errorf("--box requires 4 values (xmin,ymin,xmax,ymax), got %d", len(opts.box))
	}
	if opts.within != nil && len(opts.within) != 3 {
		return fmt.Errorf("--within requires 3 values (x,y,radius), got %d", len(opts.within))
	}

	ix, err := readIndex(path)
	if err != nil {
		return err
	}

	var ids []int
	if opts.box != nil {
		ids = ix.Search(kdbush.Box{XMin: opts.box[0], YMin: opts.box[1], XMax: opts.box[2], YMax: opts.box[3]})
	} else {
		ids = ix.SearchWithin(opts.within[0], opts.within[1], opts.within[2])
	}
	sort.Ints(ids)

	points := ix.Points()
	matches := make([]match, len(ids))
	for i, id := range ids {
		matches[i] = match{ID: id, X: points[id].X, Y: points[id].Y}
	}

	if opts.format == formatYAML {
		return writeYAML(out, matches)
	}
	for _, m := range matches {
		if _, err = fmt.Fprintf(out, "%d\t%.8g\t%.8g\n", m.ID, m.X, m.Y); err != nil {
			return err
		}
	}
	return nil
}

func readIndex(path string) (*kdbush.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := flatkd.NewFileReader(f)
	defer r.Close()
	if _, err = r.Header(); err != nil {
		return nil, err
	}
	ix, err := r.Index()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ix, nil
}
