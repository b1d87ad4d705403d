// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "flatkd",
		Short:        "Build, inspect and search flatkd point index files",
		SilenceUsage: true,
	}
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newInfoCmd())
	cmd.AddCommand(newSearchCmd())
	return cmd
}

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "f", formatText, "Output format (text or yaml)")
}

func checkFormat(format string) error {
	switch format {
	case formatText, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatText, formatYAML)
	}
}
