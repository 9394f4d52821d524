// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package scenario provides the test scripts run against the device models
// and the runner sequencing them.
//
package scenario

import (
	"time"

	"github.com/pkg/errors"

	"github.com/db47h/hwtb"
)

// A Scenario is a named test script.
//
type Scenario struct {
	Name string
	Run  func(b *hwtb.Bench) error
}

// Runner runs scenarios in order against a single bench.
//
type Runner struct {
	b         *hwtb.Bench
	scenarios []Scenario
}

// NewRunner returns a new runner for the given bench.
//
func NewRunner(b *hwtb.Bench, scenarios ...Scenario) *Runner {
	return &Runner{b: b, scenarios: scenarios}
}

// Add appends scenarios to the run list.
//
func (r *Runner) Add(scenarios ...Scenario) {
	r.scenarios = append(r.scenarios, scenarios...)
}

// Scenarios returns the scenarios names in run order.
//
func (r *Runner) Scenarios() []string {
	names := make([]string, len(r.scenarios))
	for i := range r.scenarios {
		names[i] = r.scenarios[i].Name
	}
	return names
}

// Run resets the bench and runs each scenario in turn. It stops at the first
// failure. Assertion errors are tagged with the scenario name, other errors
// are wrapped with it.
//
func (r *Runner) Run() error {
	b := r.b
	for _, s := range r.scenarios {
		log := b.Log().WithField("scenario", s.Name)
		start, t0 := time.Now(), b.Ticks()
		log.Debugf("[tick %07d] start", t0)
		b.Reset()
		err := s.Run(b)
		if err == nil {
			err = b.Err()
		}
		if err != nil {
			if ae, ok := hwtb.AsAssertion(err); ok {
				ae.Scenario = s.Name
				return err
			}
			return errors.Wrap(err, s.Name)
		}
		log.Infof("[tick %07d] pass: %d ticks in %v", b.Ticks(), b.Ticks()-t0, time.Since(start))
	}
	return nil
}
