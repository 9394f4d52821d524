// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtb

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Setup describes how a bench drives a model.
//
type Setup struct {
	// Name of the model, used in logs.
	Name string
	// Inputs lists the non-clock input ports. They are driven to zero when
	// the bench is created and on Reset.
	Inputs []string
	// Reset is the name of the active high reset port. If empty, Reset only
	// zeroes inputs and runs one tick.
	Reset string
	// Clocks lists the clock domains to register.
	Clocks []Clock
}

// An Observer is called after every tick. An error returned by an observer
// is recorded as the bench error.
//
type Observer func(b *Bench) error

// Bench drives a Model one base tick at a time.
//
// A Bench is not safe for concurrent use.
//
type Bench struct {
	ctx    *Context
	log    *logrus.Entry
	m      Model
	setup  Setup
	ticks  uint64
	clocks []*ClockDomain
	trace  Tracer
	obs    []Observer
	err    error
}

// New creates a new bench for model m. The bench takes ownership of the
// model: m is closed by Bench.Close if it implements io.Closer.
//
// All inputs and clocks are driven to zero and the model is evaluated once so
// that its outputs are valid before the first tick.
//
func New(ctx *Context, m Model, setup Setup) (*Bench, error) {
	if ctx == nil {
		return nil, errors.New("nil context")
	}
	if ctx.closed {
		return nil, errors.New("simulation context closed")
	}
	if m == nil {
		return nil, errors.New("nil model")
	}
	if len(setup.Clocks) == 0 {
		return nil, errors.Errorf("%s: no clock", setup.Name)
	}
	b := &Bench{
		ctx:   ctx,
		log:   ctx.Log.WithField("model", setup.Name),
		m:     m,
		setup: setup,
	}
	for _, in := range setup.Inputs {
		if err := b.checkInput(in); err != nil {
			return nil, errors.Wrap(err, setup.Name)
		}
	}
	if setup.Reset != "" {
		if err := b.checkInput(setup.Reset); err != nil {
			return nil, errors.Wrap(err, setup.Name+" reset")
		}
	}
	for _, c := range setup.Clocks {
		if _, err := b.Register(c.Name, c.Period); err != nil {
			return nil, errors.Wrap(err, setup.Name)
		}
	}
	b.zeroInputs()
	b.m.Eval()
	return b, nil
}

// inputChecker is implemented by models that can tell input ports apart.
type inputChecker interface {
	IsInput(port string) bool
}

func (b *Bench) checkInput(port string) error {
	if ic, ok := b.m.(inputChecker); ok && !ic.IsInput(port) {
		return errors.Errorf("%s is not an input port", port)
	}
	return nil
}

func (b *Bench) zeroInputs() {
	for _, in := range b.setup.Inputs {
		b.m.Set(in, 0)
	}
	if b.setup.Reset != "" {
		b.m.Set(b.setup.Reset, 0)
	}
}

// Context returns the bench's simulation context.
//
func (b *Bench) Context() *Context { return b.ctx }

// Log returns the bench's logger.
//
func (b *Bench) Log() *logrus.Entry { return b.log }

// Model returns the model driven by the bench.
//
func (b *Bench) Model() Model { return b.m }

// Ticks returns the tick counter.
//
func (b *Bench) Ticks() uint64 { return b.ticks }

// Set sets the value of an input port. The change is propagated by the next
// Eval or Tick.
//
func (b *Bench) Set(port string, v uint64) { b.m.Set(port, v) }

// Get returns the value of a port.
//
func (b *Bench) Get(port string) uint64 { return b.m.Get(port) }

// High returns true if the lsb of the port value is set.
//
func (b *Bench) High(port string) bool { return b.m.Get(port)&1 != 0 }

// Eval settles the model without advancing time.
//
func (b *Bench) Eval() { b.m.Eval() }

// Tick advances the simulation by one base tick: the tick counter is
// incremented, the model evaluated, every clock whose period divides the new
// tick count toggled and the model evaluated again. If a tracer is attached, a
// sample is then recorded at ticks*TimeScale and flushed. Finally observers
// are called.
//
func (b *Bench) Tick() {
	b.ticks++
	b.m.Eval()
	b.toggleClocks()
	b.m.Eval()
	if b.trace != nil {
		if err := b.dump(); err != nil {
			b.fail(errors.Wrapf(err, "trace at tick %d", b.ticks))
			b.trace = nil
		}
	}
	for _, o := range b.obs {
		if o == nil {
			continue
		}
		if err := o(b); err != nil {
			b.fail(err)
		}
	}
}

func (b *Bench) dump() error {
	if err := b.trace.Dump(b.ticks * b.ctx.TimeScale); err != nil {
		return err
	}
	return b.trace.Flush()
}

// Run ticks n times.
//
func (b *Bench) Run(n uint64) {
	for i := uint64(0); i < n; i++ {
		b.Tick()
	}
}

// Reset drives all inputs to zero, asserts the reset port for ResetTicks
// ticks, then releases it and evaluates the model. Clocks keep running and the
// tick counter is not rewound.
//
// Without a reset port, Reset zeroes the inputs, ticks once and evaluates the
// model.
//
func (b *Bench) Reset() {
	b.zeroInputs()
	if b.setup.Reset == "" {
		b.Tick()
		b.m.Eval()
		return
	}
	n := b.ResetTicks()
	b.log.Debugf("[tick %07d] reset for %d ticks", b.ticks, n)
	b.m.Set(b.setup.Reset, 1)
	b.Run(n)
	b.m.Set(b.setup.Reset, 0)
	b.m.Eval()
}

// AttachTrace attaches a waveform tracer. Samples are recorded after each
// tick. AttachTrace fails if tracing is disabled in the bench's context.
// A previously attached tracer is closed and replaced.
//
func (b *Bench) AttachTrace(t Tracer) error {
	if !b.ctx.Tracing {
		return errors.New("tracing disabled")
	}
	if b.trace != nil {
		b.log.Warn("trace already attached, replacing it")
		if err := closeIfCloser(b.trace); err != nil {
			b.log.WithError(err).Warn("failed to close previous trace")
		}
	}
	b.trace = t
	return nil
}

// Observe registers an observer called after every tick. The returned function
// unregisters it.
//
func (b *Bench) Observe(o Observer) (cancel func()) {
	i := len(b.obs)
	b.obs = append(b.obs, o)
	return func() { b.obs[i] = nil }
}

func (b *Bench) fail(err error) {
	if b.err == nil {
		b.err = err
		b.log.WithError(err).Debugf("[tick %07d] bench error", b.ticks)
	}
}

// Err returns the first error reported by the attached tracer or an observer.
//
func (b *Bench) Err() error { return b.err }

// Close releases the tracer and the model. It returns the bench error if any,
// or the first error encountered while closing.
//
func (b *Bench) Close() error {
	err := b.err
	if b.trace != nil {
		if e := closeIfCloser(b.trace); err == nil && e != nil {
			err = errors.Wrap(e, "close trace")
		}
		b.trace = nil
	}
	if b.m != nil {
		if e := closeIfCloser(b.m); err == nil && e != nil {
			err = errors.Wrap(e, "close model")
		}
	}
	b.log.Debugf("[tick %07d] bench closed", b.ticks)
	return err
}

func closeIfCloser(v interface{}) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
