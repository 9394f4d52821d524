// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtb

import (
	"fmt"

	"github.com/pkg/errors"
)

// AssertionError reports a failed check of the model state.
//
type AssertionError struct {
	Scenario string // set by the scenario runner
	Tick     uint64
	Msg      string
}

func (e *AssertionError) Error() string {
	if e.Scenario == "" {
		return fmt.Sprintf("tick %d: %s", e.Tick, e.Msg)
	}
	return fmt.Sprintf("%s: tick %d: %s", e.Scenario, e.Tick, e.Msg)
}

// AsAssertion returns the *AssertionError at the root of err, if any.
//
func AsAssertion(err error) (*AssertionError, bool) {
	e, ok := errors.Cause(err).(*AssertionError)
	return e, ok
}

// Assert returns an *AssertionError with the formatted message if cond is
// false, nil otherwise.
//
func (b *Bench) Assert(cond bool, format string, args ...interface{}) error {
	if cond {
		return nil
	}
	return &AssertionError{Tick: b.ticks, Msg: fmt.Sprintf(format, args...)}
}

// AssertPort checks the value of a port.
//
func (b *Bench) AssertPort(port string, want uint64) error {
	got := b.m.Get(port)
	return b.Assert(got == want, "%s = %#x, expected %#x", port, got, want)
}
