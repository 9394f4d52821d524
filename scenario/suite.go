// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/db47h/hwtb"
	"github.com/db47h/hwtb/device"
	"github.com/db47h/hwtb/internal/config"
	"github.com/db47h/hwtb/vcd"
)

// LiteralValues are the values used by the literal queue scenarios.
//
var LiteralValues = []uint64{0x12, 0x34, 0x56}

// Suite is a device along with the scenarios to run against it.
//
type Suite struct {
	Name      string
	Device    *device.Device
	Scenarios []Scenario
}

// SuiteNames returns the names of the available suites, in run order.
//
func SuiteNames() []string {
	return []string{"fifo", "asyncfifo", "sdram"}
}

func queueScenarios(d *device.Device, n int, seed int64) []Scenario {
	q := NewQueue(d)
	rng := rand.New(rand.NewSource(seed))
	return []Scenario{q.Standard(n, rng), q.Full(), q.Empty(), q.Literal(LiteralValues...)}
}

// NewSuite builds the named suite. The caller must either run the suite or
// close its device.
//
func NewSuite(name string, cfg *config.Config) (*Suite, error) {
	var (
		d   *device.Device
		ss  []Scenario
		err error
	)
	switch name {
	case "fifo":
		c := cfg.FIFO
		if d, err = device.NewFIFO(c.DepthBits, c.Period, cfg.Workers); err == nil {
			ss = queueScenarios(d, c.Count, cfg.Seed)
		}
	case "asyncfifo":
		c := cfg.AsyncFIFO
		if d, err = device.NewAsyncFIFO(c.DepthBits, c.EnqPeriod, c.DeqPeriod, cfg.Workers); err == nil {
			ss = queueScenarios(d, c.Count, cfg.Seed)
		}
	case "sdram":
		c := cfg.SDRAM
		if d, err = device.NewSDRAM(c.CPUPeriod, c.RAMPeriod, cfg.Workers); err == nil {
			ss = []Scenario{SDRAM(SDRAMParams{Address: c.Address, Ticks: c.Ticks})}
		}
	default:
		return nil, errors.Errorf("unknown suite %q", name)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "suite %s", name)
	}
	return &Suite{Name: name, Device: d, Scenarios: ss}, nil
}

// Run runs the suite scenarios on a new bench. If tracePath is not empty and
// tracing is enabled in ctx, all device ports are traced to a VCD file.
//
func (s *Suite) Run(ctx *hwtb.Context, tracePath string) (err error) {
	b, err := s.Device.Bench(ctx)
	if err != nil {
		s.Device.Close()
		return errors.Wrapf(err, "suite %s", s.Name)
	}
	defer func() {
		if e := b.Close(); err == nil && e != nil {
			err = errors.Wrapf(e, "suite %s", s.Name)
		}
	}()
	if tracePath != "" && ctx.Tracing {
		w, err := vcd.Create(tracePath, b, s.Name, s.Device.TraceVars()...)
		if err != nil {
			return errors.Wrapf(err, "suite %s", s.Name)
		}
		if err = b.AttachTrace(w); err != nil {
			w.Close()
			return errors.Wrapf(err, "suite %s", s.Name)
		}
		ctx.Log.Infof("suite %s: tracing to %s", s.Name, tracePath)
	}
	return NewRunner(b, s.Scenarios...).Run()
}
