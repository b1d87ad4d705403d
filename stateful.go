// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package flatkd

import "io"

type stateful struct {
	state state
	err   error
}

type state int

const (
	uninitialized state = 0x00
	invalid       state = 0x01
	beforeMagic   state = 0x11
	beforeHeader  state = 0x21
	afterHeader   state = 0x22
	beforeIndex   state = 0x31
	afterIndex    state = 0x32
)

func (s *stateful) close(a interface{}) error {
	if s.err == ErrClosed {
		return ErrClosed
	}

	s.err = ErrClosed

	if c, ok := a.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return err
		}
	}

	return nil
}

func (s *stateful) sanityCheckState() {
	switch s.state {
	case uninitialized, beforeMagic, beforeHeader, afterHeader, beforeIndex, afterIndex:
	default:
		fmtPanic("logic error: invalid state 0x%x", s.state)
	}
}

func (s *stateful) toState(expected, to state) (err error) {
	// Always fail if already in the error state.
	if s.err != nil {
		return s.err
	}

	// Happy path to state transition is when in the expected state.
	if s.state == expected {
		s.state = to
		return nil
	}

	// Check for bad internal state.
	s.sanityCheckState()

	// Indicate that the state transition is invalid.
	return errUnexpectedState
}

func (s *stateful) toErr(err error) error {
	if s.err != nil {
		textPanic("logic error: already in error state")
	}

	s.err = err
	return err
}
