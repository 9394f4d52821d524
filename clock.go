// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtb

import (
	"github.com/pkg/errors"
)

// Clock declares a clock domain: the clock port Name toggles every Period base
// ticks, so a full clock cycle lasts 2*Period ticks.
//
type Clock struct {
	Name   string
	Period uint64
}

// ClockDomain is a clock registered on a bench.
//
type ClockDomain struct {
	Clock
	edges uint64
}

// ClockHandle refers to a clock domain of a Bench. The zero value is not a
// valid handle; handles are returned by Bench.Register and Bench.Clock.
//
type ClockHandle struct {
	b *Bench
	d *ClockDomain
}

// Name returns the name of the clock port.
//
func (h ClockHandle) Name() string { return h.d.Name }

// Period returns the number of base ticks between two toggles of the clock.
//
func (h ClockHandle) Period() uint64 { return h.d.Period }

// High returns true if the clock is high.
//
func (h ClockHandle) High() bool { return h.b.m.Get(h.d.Name)&1 != 0 }

// Edges returns the number of rising edges of the clock since the bench was
// created.
//
func (h ClockHandle) Edges() uint64 { return h.d.edges }

// Valid returns true if h refers to a clock domain.
//
func (h ClockHandle) Valid() bool { return h.b != nil && h.d != nil }

// Register adds a clock domain driving the given clock port. The clock starts
// low. Domains are independent from each other and only aligned at tick 0.
//
func (b *Bench) Register(port string, period uint64) (ClockHandle, error) {
	if period == 0 {
		return ClockHandle{}, errors.Errorf("clock %s: period must be positive", port)
	}
	if _, ok := b.Clock(port); ok {
		return ClockHandle{}, errors.Errorf("clock %s already registered", port)
	}
	if err := b.checkInput(port); err != nil {
		return ClockHandle{}, errors.Wrap(err, "clock")
	}
	d := &ClockDomain{Clock: Clock{Name: port, Period: period}}
	b.clocks = append(b.clocks, d)
	b.m.Set(port, 0)
	b.log.Debugf("clock %s registered with period %d", port, period)
	return ClockHandle{b, d}, nil
}

// Clock returns a handle to the named clock domain.
//
func (b *Bench) Clock(port string) (ClockHandle, bool) {
	for _, d := range b.clocks {
		if d.Name == port {
			return ClockHandle{b, d}, true
		}
	}
	return ClockHandle{}, false
}

// Clocks returns handles to all clock domains, in registration order.
//
func (b *Bench) Clocks() []ClockHandle {
	hs := make([]ClockHandle, len(b.clocks))
	for i, d := range b.clocks {
		hs[i] = ClockHandle{b, d}
	}
	return hs
}

// ResetTicks returns the number of ticks the reset signal is held for:
// 2*max(period), which guarantees at least one rising edge on every clock.
//
func (b *Bench) ResetTicks() uint64 {
	var p uint64
	for _, d := range b.clocks {
		if d.Period > p {
			p = d.Period
		}
	}
	return 2 * p
}

func (b *Bench) toggleClocks() {
	for _, d := range b.clocks {
		if b.ticks%d.Period != 0 {
			continue
		}
		v := b.m.Get(d.Name)&1 ^ 1
		b.m.Set(d.Name, v)
		if v != 0 {
			d.edges++
		}
	}
}
