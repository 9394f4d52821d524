package scenario_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/hwtb"
	"github.com/db47h/hwtb/hwlib"
	"github.com/db47h/hwtb/scenario"
)

// pinModel is a bare port map standing in for the SDRAM controller.
type pinModel map[string]uint64

func (m pinModel) Set(port string, v uint64) { m[port] = v }
func (m pinModel) Get(port string) uint64    { return m[port] }
func (m pinModel) Eval()                     {}

var cmdPins = map[hwlib.SDRAMCmd][4]uint64{
	hwlib.CmdLoadMode:  {0, 0, 0, 0},
	hwlib.CmdRefresh:   {0, 0, 0, 1},
	hwlib.CmdPrecharge: {0, 0, 1, 0},
	hwlib.CmdActive:    {0, 0, 1, 1},
	hwlib.CmdWrite:     {0, 1, 0, 0},
	hwlib.CmdRead:      {0, 1, 0, 1},
	hwlib.CmdNOP:       {0, 1, 1, 1},
}

type chipBench struct {
	*hwtb.Bench
	mon *scenario.SDRAMMonitor
	ram hwtb.ClockHandle
}

func newChipBench(t *testing.T) *chipBench {
	t.Helper()
	m := pinModel{}
	b, err := hwtb.New(hwtb.NewContext(), m, hwtb.Setup{Name: "chip", Clocks: []hwtb.Clock{{Name: "ramclock", Period: 1}}})
	require.NoError(t, err)
	cb := &chipBench{Bench: b}
	cb.ram, _ = b.Clock("ramclock")
	cb.set(hwlib.CmdNOP, 0, 0)
	cb.mon, err = scenario.NewSDRAMMonitor(b)
	require.NoError(t, err)
	b.Observe(cb.mon.Observe)
	cb.AwaitRisingEdge(cb.ram)
	return cb
}

func (cb *chipBench) set(cmd hwlib.SDRAMCmd, ba, a uint64) {
	p := cmdPins[cmd]
	cb.Set("cs_n", p[0])
	cb.Set("ras_n", p[1])
	cb.Set("cas_n", p[2])
	cb.Set("we_n", p[3])
	cb.Set("ba", ba)
	cb.Set("a", a)
}

// issue drives cmd until the chip latches it on the next rising edge.
func (cb *chipBench) issue(cmd hwlib.SDRAMCmd, ba, a uint64) {
	cb.set(cmd, ba, a)
	cb.AwaitRisingEdge(cb.ram)
}

func (cb *chipBench) nops(n int) {
	for i := 0; i < n; i++ {
		cb.issue(hwlib.CmdNOP, 0, 0)
	}
}

func TestSDRAMMonitor_readWrite(t *testing.T) {
	cb := newChipBench(t)
	cb.issue(hwlib.CmdPrecharge, 0, 1<<10)
	cb.issue(hwlib.CmdRefresh, 0, 0)
	cb.issue(hwlib.CmdLoadMode, 0, hwlib.SDRAMModeRegister)
	cb.issue(hwlib.CmdRefresh, 0, 0)
	assert.Equal(t, 1, cb.mon.Refreshes)

	cb.issue(hwlib.CmdActive, 2, 0x91)
	cb.nops(1)
	cb.Set("data_to_ram", 0xBEEF)
	cb.issue(hwlib.CmdWrite, 2, 0x45)
	cb.issue(hwlib.CmdRead, 2, 0x45|1<<10)
	assert.EqualValues(t, 0, cb.Get("data_from_ram"))
	cb.nops(1)
	assert.EqualValues(t, 0xBEEF, cb.Get("data_from_ram"), "data valid for the edge at CAS latency")
	cb.nops(1)
	assert.EqualValues(t, 0, cb.Get("data_from_ram"))

	// unwritten location
	cb.issue(hwlib.CmdActive, 1, 0)
	cb.nops(1)
	cb.issue(hwlib.CmdRead, 1, 0x10|1<<10)
	cb.nops(1)
	assert.EqualValues(t, scenario.SDRAMPattern(hwlib.SDRAMJoin(1, 0, 0x10)), cb.Get("data_from_ram"))

	require.NoError(t, cb.Err())
	assert.Equal(t, 9, cb.mon.Commands)
}

func TestSDRAMMonitor_violations(t *testing.T) {
	type cmd struct {
		c     hwlib.SDRAMCmd
		ba, a uint64
	}
	td := []struct {
		name string
		dqm  bool
		cmds []cmd
		err  string
	}{
		{"act_open", false, []cmd{{hwlib.CmdActive, 1, 0}, {hwlib.CmdNOP, 0, 0}, {hwlib.CmdActive, 1, 3}}, "ACTIVE to open bank 1"},
		{"read_closed", false, []cmd{{hwlib.CmdRead, 3, 0}}, "READ to closed bank 3"},
		{"write_ap", false, []cmd{{hwlib.CmdActive, 0, 0}, {hwlib.CmdNOP, 0, 0}, {hwlib.CmdWrite, 0, 1 << 10}, {hwlib.CmdWrite, 0, 0}}, "WRITE to closed bank 0"},
		{"trcd", false, []cmd{{hwlib.CmdActive, 0, 0}, {hwlib.CmdRead, 0, 0}}, "READ 1 cycles after ACTIVE, expected at least 2"},
		{"refresh_open", false, []cmd{{hwlib.CmdActive, 2, 0}, {hwlib.CmdRefresh, 0, 0}}, "REFRESH with bank 2 open"},
		{"masked", true, []cmd{{hwlib.CmdActive, 0, 0}}, "ACTIVE while the controller masks data"},
		{"precharge_bank", false, []cmd{{hwlib.CmdActive, 0, 0}, {hwlib.CmdActive, 1, 0}, {hwlib.CmdPrecharge, 0, 0}, {hwlib.CmdRefresh, 0, 0}}, "REFRESH with bank 1 open"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			cb := newChipBench(t)
			if d.dqm {
				cb.Set("udqm", 1)
			}
			for _, c := range d.cmds {
				cb.issue(c.c, c.ba, c.a)
			}
			err := cb.Err()
			require.Error(t, err)
			ae, ok := hwtb.AsAssertion(err)
			require.True(t, ok)
			assert.Equal(t, d.err, ae.Msg)
		})
	}
}
