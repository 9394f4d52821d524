// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package device builds the hardware models under test along with the bench
// setup needed to drive them.
//
package device

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/db47h/hwtb"
	"github.com/db47h/hwtb/hwlib"
	"github.com/db47h/hwtb/hwsim"
	"github.com/db47h/hwtb/vcd"
)

// DataBits is the width of FIFO data ports.
//
const DataBits = 8

// MaxDepthBits is the largest FIFO address size accepted by the constructors.
//
const MaxDepthBits = 16

// A Device is a model ready to be driven by a bench.
//
type Device struct {
	Name  string
	Model *hwsim.Model
	Setup hwtb.Setup

	// Queue devices only.
	EnqClock   string
	DeqClock   string
	Capacity   int
	StrictFull bool   // full is exact, not pessimistic
	Latency    int    // dequeue clock edges for an enqueue to show on empty
	IdleProbe  string // probe that must not move when dequeuing an empty queue
}

// Bench creates a bench for the device model. The bench owns the model.
//
func (d *Device) Bench(ctx *hwtb.Context) (*hwtb.Bench, error) {
	b, err := hwtb.New(ctx, d.Model, d.Setup)
	if err != nil {
		return nil, errors.Wrap(err, "create bench")
	}
	return b, nil
}

// TraceVars returns the VCD variables for all the model ports.
//
func (d *Device) TraceVars() []vcd.Var {
	ps := d.Model.Ports()
	vs := make([]vcd.Var, len(ps))
	for i, p := range ps {
		vs[i] = vcd.Var{Name: p.Name, Width: p.Width}
	}
	return vs
}

// Close closes the device model. It is not needed if a bench was created.
//
func (d *Device) Close() error {
	return d.Model.Close()
}

func ports(in, out, probes string) []hwsim.Port {
	ps := hwsim.Ports(hwsim.DirIn, in)
	ps = append(ps, hwsim.Ports(hwsim.DirOut, out)...)
	return append(ps, hwsim.Ports(hwsim.DirProbe, probes)...)
}

func checkDepth(bits int) error {
	if bits < 2 || bits > MaxDepthBits {
		return errors.Errorf("invalid depth bits %d: must be in [2, %d]", bits, MaxDepthBits)
	}
	return nil
}

func checkPeriod(name string, p uint64) error {
	if p == 0 {
		return errors.Errorf("%s: period must be positive", name)
	}
	return nil
}

// NewFIFO returns a single clock FIFO of 1<<depthBits bytes clocked by clock
// with the given period.
//
//	Inputs: clock, reset, enqueue, dequeue, data_in[8]
//	Outputs: data_out[8], full, empty
//	Probes: enq_addr[depthBits], deq_addr[depthBits], count[depthBits+1]
//
func NewFIFO(depthBits int, period uint64, workers int) (*Device, error) {
	if err := checkDepth(depthBits); err != nil {
		return nil, errors.Wrap(err, "fifo")
	}
	if err := checkPeriod("fifo clock", period); err != nil {
		return nil, err
	}
	ab, db := strconv.Itoa(depthBits), strconv.Itoa(DataBits)
	m, err := hwsim.NewModel("fifo", workers, hwlib.FIFO(depthBits, DataBits), ports(
		"clock, reset, enqueue, dequeue, data_in["+db+"]",
		"data_out["+db+"], full, empty",
		"enq_addr["+ab+"], deq_addr["+ab+"], count["+strconv.Itoa(depthBits+1)+"]")...)
	if err != nil {
		return nil, err
	}
	return &Device{
		Name:  "fifo",
		Model: m,
		Setup: hwtb.Setup{
			Name:   "fifo",
			Inputs: []string{"enqueue", "dequeue", "data_in"},
			Reset:  "reset",
			Clocks: []hwtb.Clock{{Name: "clock", Period: period}},
		},
		EnqClock:   "clock",
		DeqClock:   "clock",
		Capacity:   1 << uint(depthBits),
		StrictFull: true,
		IdleProbe:  "deq_addr",
	}, nil
}

// NewAsyncFIFO returns a dual clock FIFO of 1<<depthBits bytes. The enqueue
// side runs on enq_clock, the dequeue side on deq_clock.
//
//	Inputs: enq_clock, deq_clock, reset, enqueue, dequeue, data_in[8]
//	Outputs: data_out[8], full, empty
//	Probes: enq_ptr[depthBits+1], deq_ptr[depthBits+1]
//
func NewAsyncFIFO(depthBits int, enqPeriod, deqPeriod uint64, workers int) (*Device, error) {
	if err := checkDepth(depthBits); err != nil {
		return nil, errors.Wrap(err, "asyncfifo")
	}
	if err := checkPeriod("asyncfifo enq_clock", enqPeriod); err != nil {
		return nil, err
	}
	if err := checkPeriod("asyncfifo deq_clock", deqPeriod); err != nil {
		return nil, err
	}
	f, err := hwlib.AsyncFIFO(depthBits, DataBits)
	if err != nil {
		return nil, errors.Wrap(err, "asyncfifo")
	}
	pb, db := strconv.Itoa(depthBits+1), strconv.Itoa(DataBits)
	m, err := hwsim.NewModel("asyncfifo", workers, f, ports(
		"enq_clock, deq_clock, reset, enqueue, dequeue, data_in["+db+"]",
		"data_out["+db+"], full, empty",
		"enq_ptr["+pb+"], deq_ptr["+pb+"]")...)
	if err != nil {
		return nil, err
	}
	return &Device{
		Name:  "asyncfifo",
		Model: m,
		Setup: hwtb.Setup{
			Name:   "asyncfifo",
			Inputs: []string{"enqueue", "dequeue", "data_in"},
			Reset:  "reset",
			Clocks: []hwtb.Clock{
				{Name: "enq_clock", Period: enqPeriod},
				{Name: "deq_clock", Period: deqPeriod},
			},
		},
		EnqClock:  "enq_clock",
		DeqClock:  "deq_clock",
		Capacity:  1 << uint(depthBits),
		Latency:   3,
		IdleProbe: "deq_ptr",
	}, nil
}

// NewSDRAM returns an SDRAM controller. The processor side runs on pclock,
// the memory side on ramclock. The model has no reset sequence: the
// controller starts in its power up state.
//
//	Inputs: reset, pclock, ramclock, fulladdress[24], d_in[16], readreq, writereq, read, write, data_from_ram[16]
//	Outputs: data_out[16], rdvalid, busy, cke, cs_n, ras_n, cas_n, we_n, ba[2], a[13], udqm, ldqm, data_to_ram[16], data_oe
//	Probes: state[4]
//
func NewSDRAM(cpuPeriod, ramPeriod uint64, workers int) (*Device, error) {
	if err := checkPeriod("sdram pclock", cpuPeriod); err != nil {
		return nil, err
	}
	if err := checkPeriod("sdram ramclock", ramPeriod); err != nil {
		return nil, err
	}
	m, err := hwsim.NewModel("sdram", workers, hwlib.SDRAM(), ports(
		"reset, pclock, ramclock, fulladdress[24], d_in[16], readreq, writereq, read, write, data_from_ram[16]",
		"data_out[16], rdvalid, busy, cke, cs_n, ras_n, cas_n, we_n, ba[2], a[13], udqm, ldqm, data_to_ram[16], data_oe",
		"state[4]")...)
	if err != nil {
		return nil, err
	}
	return &Device{
		Name:  "sdram",
		Model: m,
		Setup: hwtb.Setup{
			Name:   "sdram",
			Inputs: []string{"reset", "fulladdress", "d_in", "readreq", "writereq", "read", "write", "data_from_ram"},
			Clocks: []hwtb.Clock{
				{Name: "pclock", Period: cpuPeriod},
				{Name: "ramclock", Period: ramPeriod},
			},
		},
	}, nil
}
