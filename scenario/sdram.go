// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"github.com/pkg/errors"

	"github.com/db47h/hwtb"
	"github.com/db47h/hwtb/hwlib"
)

// SDRAMPattern is the value returned by the simulated SDRAM chip for an
// address that was never written.
//
func SDRAMPattern(addr uint64) uint64 {
	return uint64(uint16(addr) ^ uint16(addr>>8) ^ 0xA5A5)
}

// sdramPins is a snapshot of the controller outputs facing the SDRAM chip.
type sdramPins struct {
	cmd   hwlib.SDRAMCmd
	ba, a uint64
	dqm   bool
	dq    uint64
}

func samplePins(b *hwtb.Bench) sdramPins {
	return sdramPins{
		cmd: hwlib.DecodeSDRAMCmd(b.High("cs_n"), b.High("ras_n"), b.High("cas_n"), b.High("we_n")),
		ba:  b.Get("ba"),
		a:   b.Get("a"),
		dqm: b.High("udqm"),
		dq:  b.Get("data_to_ram"),
	}
}

// SDRAMMonitor plays the SDRAM chip connected to the controller and checks
// the command protocol. Commands are latched on ramclock rising edges.
//
type SDRAMMonitor struct {
	ram    hwtb.ClockHandle
	prev   sdramPins
	wasHi  bool
	edge   uint64
	open   [1 << hwlib.SDRAMBankBits]bool
	row    [1 << hwlib.SDRAMBankBits]uint64
	act    [1 << hwlib.SDRAMBankBits]uint64
	mem    map[uint64]uint64
	loaded bool

	readAt   uint64 // edge at which read data must be valid, 0 if none
	readData uint64

	// Refreshes counts auto refresh commands after initialization.
	Refreshes int
	// Commands counts the commands other than NOP seen by the chip.
	Commands int
}

// NewSDRAMMonitor returns a monitor for the controller driven by b.
//
func NewSDRAMMonitor(b *hwtb.Bench) (*SDRAMMonitor, error) {
	ram, ok := b.Clock("ramclock")
	if !ok {
		return nil, errors.New("no ramclock")
	}
	return &SDRAMMonitor{
		ram:   ram,
		prev:  samplePins(b),
		wasHi: ram.High(),
		mem:   make(map[uint64]uint64),
	}, nil
}

// Observe checks the command latched by the chip if ramclock rose during the
// last tick. It is meant to be registered with Bench.Observe.
//
func (m *SDRAMMonitor) Observe(b *hwtb.Bench) error {
	hi := m.ram.High()
	rising := hi && !m.wasHi
	m.wasHi = hi
	var err error
	if rising {
		m.edge++
		err = m.latch(b, m.prev)
	}
	m.prev = samplePins(b)
	return err
}

func (m *SDRAMMonitor) latch(b *hwtb.Bench, p sdramPins) error {
	e := m.edge
	if m.readAt != 0 {
		switch e {
		case m.readAt - 1:
			b.Set("data_from_ram", m.readData)
		case m.readAt:
			b.Set("data_from_ram", 0)
			m.readAt = 0
		}
	}
	if p.cmd == hwlib.CmdNOP || p.cmd == hwlib.CmdInhibit {
		return nil
	}
	m.Commands++
	b.Log().Debugf("[tick %07d] sdram edge %d: %v ba=%d a=%#x", b.Ticks(), e, p.cmd, p.ba, p.a)
	if p.dqm {
		switch p.cmd {
		case hwlib.CmdPrecharge, hwlib.CmdRefresh, hwlib.CmdLoadMode:
		default:
			return b.Assert(false, "%v while the controller masks data", p.cmd)
		}
	}
	switch p.cmd {
	case hwlib.CmdActive:
		if m.open[p.ba] {
			return b.Assert(false, "ACTIVE to open bank %d", p.ba)
		}
		m.open[p.ba], m.row[p.ba], m.act[p.ba] = true, p.a, e
	case hwlib.CmdRead, hwlib.CmdWrite:
		if !m.open[p.ba] {
			return b.Assert(false, "%v to closed bank %d", p.cmd, p.ba)
		}
		if d := e - m.act[p.ba]; d < hwlib.SDRAMtRCD {
			return b.Assert(false, "%v %d cycles after ACTIVE, expected at least %d", p.cmd, d, hwlib.SDRAMtRCD)
		}
		col := p.a & (1<<hwlib.SDRAMColBits - 1)
		addr := hwlib.SDRAMJoin(p.ba, m.row[p.ba], col)
		if p.cmd == hwlib.CmdWrite {
			m.mem[addr] = p.dq
		} else {
			v, ok := m.mem[addr]
			if !ok {
				v = SDRAMPattern(addr)
			}
			m.readAt, m.readData = e+hwlib.SDRAMCASLatency, v
		}
		if p.a&(1<<10) != 0 {
			m.open[p.ba] = false
		}
	case hwlib.CmdPrecharge:
		if p.a&(1<<10) != 0 {
			for i := range m.open {
				m.open[i] = false
			}
		} else {
			m.open[p.ba] = false
		}
	case hwlib.CmdRefresh, hwlib.CmdLoadMode:
		for i, o := range m.open {
			if o {
				return b.Assert(false, "%v with bank %d open", p.cmd, i)
			}
		}
		if p.cmd == hwlib.CmdLoadMode {
			m.loaded = true
		} else if m.loaded {
			m.Refreshes++
		}
	default:
		return b.Assert(false, "unexpected command %v", p.cmd)
	}
	return nil
}

// SDRAMParams configures the SDRAM scenario.
//
type SDRAMParams struct {
	Address uint64 // address to read
	Ticks   uint64 // ticks to run after the read request
}

// SDRAM returns the no stimulus scenario: wait for the controller to
// initialize, request a single read and let the simulation run for a while
// under the protocol monitor. The read must complete with the expected data
// and at least one auto refresh must have been issued.
//
func SDRAM(p SDRAMParams) Scenario {
	return Scenario{
		Name: "nostim",
		Run: func(b *hwtb.Bench) error {
			pclk, ok := b.Clock("pclock")
			if !ok {
				return errors.New("no pclock")
			}
			mon, err := NewSDRAMMonitor(b)
			if err != nil {
				return err
			}
			cancel := b.Observe(mon.Observe)
			defer cancel()

			b.Tick()
			for b.High("udqm") {
				if err = b.Err(); err != nil {
					return err
				}
				b.Tick()
			}
			b.Log().Debugf("[tick %07d] controller initialized", b.Ticks())

			b.Set("fulladdress", p.Address)
			b.Set("readreq", 1)
			b.AwaitRisingEdge(pclk)
			b.Set("readreq", 0)
			for i := uint64(0); i < p.Ticks; i++ {
				b.Tick()
				if err = b.Err(); err != nil {
					return err
				}
			}

			if err = b.AssertPort("rdvalid", 1); err != nil {
				return err
			}
			if err = b.AssertPort("data_out", SDRAMPattern(p.Address)); err != nil {
				return err
			}
			if err = b.AssertPort("busy", 0); err != nil {
				return err
			}
			b.Log().Debugf("[tick %07d] %d commands, %d refreshes", b.Ticks(), mon.Commands, mon.Refreshes)
			return b.Assert(mon.Refreshes > 0, "no auto refresh in %d ticks", p.Ticks)
		},
	}
}
