// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/gogama/flatkd"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// headerInfo is the structured form of a file header.
type headerInfo struct {
	NumPoints   int       `yaml:"numPoints"`
	NodeSize    int       `yaml:"nodeSize"`
	Envelope    []float64 `yaml:"envelope,flow,omitempty"`
	Title       string    `yaml:"title,omitempty"`
	Description string    `yaml:"description,omitempty"`
}

func newHeaderInfo(p flatkd.HeaderParams) headerInfo {
	info := headerInfo{
		NumPoints:   p.NumPoints,
		NodeSize:    p.NodeSize,
		Title:       p.Title,
		Description: p.Description,
	}
	if p.Envelope != nil {
		info.Envelope = []float64{p.Envelope.XMin, p.Envelope.YMin, p.Envelope.XMax, p.Envelope.YMax}
	}
	return info
}

func newInfoCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "info <file.fkd>",
		Short: "Print the header of an index file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout(), args[0], format)
		},
	}
	addFormatFlag(cmd, &format)
	return cmd
}

func runInfo(out io.Writer, path, format string) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	r := flatkd.NewFileReader(f)
	defer r.Close()
	hdr, err := r.Header()
	if err != nil {
		return err
	}

	if format == formatYAML {
		var p flatkd.HeaderParams
		if p, err = flatkd.ReadHeaderParams(hdr); err != nil {
			return err
		}
		return writeYAML(out, newHeaderInfo(p))
	}
	_, err = fmt.Fprintln(out, flatkd.HeaderString(hdr))
	return err
}

func writeYAML(out io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
