// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gogama/flatkd"
	"github.com/gogama/flatkd/flat"
	"github.com/gogama/flatkd/kdbush"
	"github.com/spf13/cobra"
)

// createFile opens the output file of the build command.
var createFile = func(name string) (io.WriteCloser, error) {
	return os.Create(name)
}

type buildOptions struct {
	nodeSize    int
	title       string
	description string
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions
	cmd := &cobra.Command{
		Use:   "build <points.csv> <out.fkd>",
		Short: "Build an index file from a CSV of points",
		Long: `Build a flatkd index file from a CSV file of x,y records.

The id of each point is the zero-based position of its record in the
CSV file, not counting comment lines.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.OutOrStdout(), args[0], args[1], &opts)
		},
	}
	cmd.Flags().IntVarP(&opts.nodeSize, "node-size", "n", kdbush.DefaultNodeSize, "Index node size")
	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Title recorded in the file header")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "Description recorded in the file header")
	return cmd
}

func runBuild(out io.Writer, in, path string, opts *buildOptions) error {
	f, err := os.Open(in)
	if err != nil {
		return err
	}
	defer f.Close()
	points, err := readPoints(f)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	ix, err := kdbush.New(points, opts.nodeSize)
	if err != nil {
		return err
	}
	p := flatkd.HeaderParamsOf(ix)
	p.Title = opts.title
	p.Description = opts.description
	hdr, err := flatkd.BuildHeader(p)
	if err != nil {
		return err
	}

	if err = writeIndexFile(path, hdr, ix); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "wrote %d points to %s\n", ix.NumPoints(), path)
	return err
}

// writeIndexFile writes a complete flatkd file to path. On failure the
// partially written file is removed.
func writeIndexFile(path string, hdr *flat.Header, ix *kdbush.Index) (err error) {
	o, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	w := flatkd.NewFileWriter(o)
	if _, err = w.Header(hdr); err != nil {
		_ = w.Close()
		return err
	}
	if _, err = w.Index(ix); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
