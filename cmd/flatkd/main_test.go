// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogama/flatkd/flat"
	"github.com/gogama/flatkd/kdbush"
	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const testCSV = `# x,y
0,0
1,1
2,2
10,10
-5,3
`

func TestRootCmd(t *testing.T) {
	cmd := newRootCmd()

	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}

	assert.Equal(t, "flatkd", cmd.Use)
	assert.ElementsMatch(t, []string{"build", "info", "search"}, names)
}

func TestBuild(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		dir := t.TempDir()
		in := writeTemp(t, dir, "points.csv", testCSV)
		path := filepath.Join(dir, "points.fkd")

		out, err := execute(t, "build", in, path, "--node-size", "2", "--title", "demo", "-d", "five points")

		require.NoError(t, err)
		assert.Equal(t, "wrote 5 points to "+path+"\n", out)
		out, err = execute(t, "info", path)
		require.NoError(t, err)
		assert.Equal(t, "Header{NumPoints:5,NodeSize:2,Envelope:[-5,0,10,10],Title:demo,Desc:five points}\n", out)
	})

	t.Run("Empty", func(t *testing.T) {
		dir := t.TempDir()
		in := writeTemp(t, dir, "points.csv", "# nothing here\n")
		path := filepath.Join(dir, "points.fkd")

		out, err := execute(t, "build", in, path)

		require.NoError(t, err)
		assert.Equal(t, "wrote 0 points to "+path+"\n", out)
		out, err = execute(t, "search", path, "--box=-1,-1,1,1")
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("Error", func(t *testing.T) {
		testCases := []struct {
			name   string
			csv    string
			args   []string
			errMsg string
		}{
			{
				name:   "InvalidNodeSize",
				csv:    testCSV,
				args:   []string{"--node-size", "0"},
				errMsg: "kdbush: invalid configuration: node size must be at least 1 (got 0)",
			},
			{
				name:   "InvalidX",
				csv:    "0,0\nabc,1\n",
				errMsg: "line 2: invalid x",
			},
			{
				name:   "InvalidY",
				csv:    "0,0\n1,1\n2,?\n",
				errMsg: "line 3: invalid y",
			},
			{
				name:   "WrongFieldCount",
				csv:    "1,2,3\n",
				errMsg: "wrong number of fields",
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				dir := t.TempDir()
				in := writeTemp(t, dir, "points.csv", testCase.csv)
				path := filepath.Join(dir, "points.fkd")

				_, err := execute(t, append([]string{"build", in, path}, testCase.args...)...)

				assert.ErrorContains(t, err, testCase.errMsg)
				assert.NoFileExists(t, path)
			})
		}
	})

	t.Run("InvalidConfigurationIs", func(t *testing.T) {
		dir := t.TempDir()
		in := writeTemp(t, dir, "points.csv", testCSV)

		_, err := execute(t, "build", in, filepath.Join(dir, "points.fkd"), "-n", "-3")

		assert.ErrorIs(t, err, kdbush.ErrInvalidConfiguration)
	})

	t.Run("WriteFailure", func(t *testing.T) {
		orig := createFile
		t.Cleanup(func() { createFile = orig })
		createFile = func(name string) (io.WriteCloser, error) {
			f, err := os.Create(name)
			if err != nil {
				return nil, err
			}
			return &shortFile{File: f, remaining: 20}, nil
		}
		dir := t.TempDir()
		in := writeTemp(t, dir, "points.csv", testCSV)
		path := filepath.Join(dir, "points.fkd")

		out, err := execute(t, "build", in, path)

		assert.EqualError(t, err, "flatkd: failed to write header: disk full")
		assert.Equal(t, "", out)
		assert.NoFileExists(t, path)
	})

	t.Run("MissingInput", func(t *testing.T) {
		dir := t.TempDir()

		_, err := execute(t, "build", filepath.Join(dir, "nope.csv"), filepath.Join(dir, "points.fkd"))

		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("Args", func(t *testing.T) {
		_, err := execute(t, "build", "points.csv")

		assert.EqualError(t, err, "accepts 2 arg(s), received 1")
	})
}

func TestInfo(t *testing.T) {
	t.Run("YAML", func(t *testing.T) {
		path := buildTemp(t, testCSV, "--node-size", "3", "--title", "demo")

		out, err := execute(t, "info", path, "--format", "yaml")

		require.NoError(t, err)
		var info headerInfo
		require.NoError(t, yaml.Unmarshal([]byte(out), &info))
		assert.Equal(t, headerInfo{
			NumPoints: 5,
			NodeSize:  3,
			Envelope:  []float64{-5, 0, 10, 10},
			Title:     "demo",
		}, info)
		assert.Contains(t, out, "envelope: [-5, 0, 10, 10]")
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		path := buildTemp(t, testCSV)

		_, err := execute(t, "info", path, "-f", "json")

		assert.EqualError(t, err, `unknown format "json" (want text or yaml)`)
	})

	t.Run("CorruptTitle", func(t *testing.T) {
		path := buildTemp(t, testCSV, "--title", "hello")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		// The header table follows the 8-byte magic number.
		hdr := flat.GetSizePrefixedRootAsHeader(data[8:], 0)
		tab := hdr.Table()
		o := tab.Offset(10)
		require.NotZero(t, o)
		flatbuffers.WriteUint32(tab.Bytes[tab.Pos+flatbuffers.UOffsetT(o):], 0x7fffff00)
		require.NoError(t, os.WriteFile(path, data, 0o644))

		for _, format := range []string{formatText, formatYAML} {
			t.Run(format, func(t *testing.T) {
				out, err := execute(t, "info", path, "--format", format)

				assert.ErrorContains(t, err, "flatkd: failed to get header fields: panic: flatbuffers: ")
				assert.Equal(t, "", out)
			})
		}
	})

	t.Run("NotFlatKD", func(t *testing.T) {
		path := writeTemp(t, t.TempDir(), "hello.txt", "hello, world")

		_, err := execute(t, "info", path)

		assert.EqualError(t, err, "flatkd: failed to read magic number: flatkd: invalid magic number")
	})
}

func TestSearch(t *testing.T) {
	path := buildTemp(t, testCSV, "--node-size", "1")

	t.Run("Text", func(t *testing.T) {
		testCases := []struct {
			name     string
			args     []string
			expected string
		}{
			{
				name:     "Box",
				args:     []string{"--box=0,0,2,2"},
				expected: "0\t0\t0\n1\t1\t1\n2\t2\t2\n",
			},
			{
				name:     "NegativeBox",
				args:     []string{"--box=-10,-10,0,5"},
				expected: "0\t0\t0\n4\t-5\t3\n",
			},
			{
				name:     "DegenerateBox",
				args:     []string{"-b", "10,10,10,10"},
				expected: "3\t10\t10\n",
			},
			{
				name:     "Within",
				args:     []string{"--within=1,1,1.5"},
				expected: "0\t0\t0\n1\t1\t1\n2\t2\t2\n",
			},
			{
				name:     "ZeroRadius",
				args:     []string{"-w", "10,10,0"},
				expected: "3\t10\t10\n",
			},
			{
				name:     "NegativeRadius",
				args:     []string{"--within=10,10,-1"},
				expected: "",
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				out, err := execute(t, append([]string{"search", path}, testCase.args...)...)

				require.NoError(t, err)
				assert.Equal(t, testCase.expected, out)
			})
		}
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := execute(t, "search", path, "--within=0,0,1.5", "--format", "yaml")

		require.NoError(t, err)
		var matches []match
		require.NoError(t, yaml.Unmarshal([]byte(out), &matches))
		assert.Equal(t, []match{{ID: 0, X: 0, Y: 0}, {ID: 1, X: 1, Y: 1}}, matches)
	})

	t.Run("Error", func(t *testing.T) {
		testCases := []struct {
			name   string
			args   []string
			errMsg string
		}{
			{
				name:   "NoQuery",
				errMsg: "exactly one of --box or --within is required",
			},
			{
				name:   "BothQueries",
				args:   []string{"--box=0,0,1,1", "--within=0,0,1"},
				errMsg: "exactly one of --box or --within is required",
			},
			{
				name:   "ShortBox",
				args:   []string{"--box=0,0,1"},
				errMsg: "--box requires 4 values (xmin,ymin,xmax,ymax), got 3",
			},
			{
				name:   "LongWithin",
				args:   []string{"--within=0,0,1,2"},
				errMsg: "--within requires 3 values (x,y,radius), got 4",
			},
			{
				name:   "UnknownFormat",
				args:   []string{"--box=0,0,1,1", "--format=xml"},
				errMsg: `unknown format "xml" (want text or yaml)`,
			},
		}

		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				_, err := execute(t, append([]string{"search", path}, testCase.args...)...)

				assert.EqualError(t, err, testCase.errMsg)
			})
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		truncated := writeTemp(t, t.TempDir(), "truncated.fkd", string(data[:len(data)-8]))

		_, err = execute(t, "search", truncated, "--box=0,0,1,1")

		assert.ErrorContains(t, err, "truncated.fkd: flatkd: failed to read index: kdbush: failed to read index bytes")
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err != nil {
		assert.True(t, strings.HasPrefix(errOut.String(), "Error: "), errOut.String())
	}
	return out.String(), err
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func buildTemp(t *testing.T, csv string, flags ...string) string {
	t.Helper()
	dir := t.TempDir()
	in := writeTemp(t, dir, "points.csv", csv)
	path := filepath.Join(dir, "points.fkd")
	_, err := execute(t, append([]string{"build", in, path}, flags...)...)
	require.NoError(t, err)
	return path
}

// shortFile is a file which runs out of space after a fixed number of
// bytes.
type shortFile struct {
	*os.File
	remaining int
}

func (f *shortFile) Write(p []byte) (int, error) {
	if len(p) > f.remaining {
		n, _ := f.File.Write(p[:f.remaining])
		f.remaining = 0
		return n, errors.New("disk full")
	}
	f.remaining -= len(p)
	return f.File.Write(p)
}
