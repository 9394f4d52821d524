// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtb

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// DefaultTimeScale is the default number of trace time units per base tick.
//
const DefaultTimeScale = 10

// Context holds the simulation settings shared by the benches of a test run.
//
type Context struct {
	// RunID identifies the test run in logs.
	RunID uuid.UUID
	// Log is the logger used by benches and scenarios.
	Log *logrus.Entry
	// Tracing enables waveform tracing. When false, Bench.AttachTrace fails.
	Tracing bool
	// Args are extra command line arguments passed through to the simulation.
	Args []string
	// TimeScale is the number of trace time units per base tick.
	TimeScale uint64

	closed bool
}

// An Option configures a Context.
//
type Option func(*Context)

// WithLogger sets the logger used by the context.
//
func WithLogger(l *logrus.Logger) Option {
	return func(c *Context) { c.Log = logrus.NewEntry(l) }
}

// WithTracing enables or disables waveform tracing.
//
func WithTracing(on bool) Option {
	return func(c *Context) { c.Tracing = on }
}

// WithArgs sets the passthrough arguments.
//
func WithArgs(args ...string) Option {
	return func(c *Context) { c.Args = append([]string(nil), args...) }
}

// WithTimeScale sets the number of trace time units per tick. Zero is ignored.
//
func WithTimeScale(ts uint64) Option {
	return func(c *Context) {
		if ts > 0 {
			c.TimeScale = ts
		}
	}
}

// NewContext returns a new simulation context with a fresh run id. Tracing is
// enabled by default and logs go to the standard logrus logger.
//
func NewContext(opts ...Option) *Context {
	c := &Context{
		RunID:     uuid.New(),
		Log:       logrus.NewEntry(logrus.StandardLogger()),
		Tracing:   true,
		TimeScale: DefaultTimeScale,
	}
	for _, o := range opts {
		o(c)
	}
	c.Log = c.Log.WithField("run", c.RunID.String())
	if len(c.Args) > 0 {
		c.Log = c.Log.WithField("args", c.Args)
	}
	return c
}

// Close ends the context. Benches can no longer be created from it.
//
func (c *Context) Close() {
	if !c.closed {
		c.closed = true
		c.Log.Debug("simulation context closed")
	}
}
