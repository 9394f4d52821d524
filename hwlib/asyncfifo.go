// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/hwtb/hwsim"
	"github.com/pkg/errors"
)

// BinToGray converts a binary number to Gray code.
//
func BinToGray(b uint64) uint64 {
	return b ^ b>>1
}

// GrayToBin converts a Gray code to binary.
//
func GrayToBin(g uint64) uint64 {
	for s := uint(1); s < 64; s <<= 1 {
		g ^= g >> s
	}
	return g
}

// pointer is the state shared by the read and write pointers of a dual clock
// FIFO: an abits+1 bits binary counter and its Gray code.
type pointer struct {
	abits     int
	bin, gray uint64
}

func (p *pointer) next(inc bool) (bin, gray uint64) {
	bin = p.bin
	if inc {
		bin = (bin + 1) & (1<<uint(p.abits+1) - 1)
	}
	return bin, BinToGray(bin)
}

func (p *pointer) addr() uint64 { return p.bin & (1<<uint(p.abits) - 1) }

func ptrIO(abits int, sync, flag string) (ins, outs []string) {
	as, ps := strconv.Itoa(abits), strconv.Itoa(abits+1)
	return hwsim.IO("clk, rst, inc, " + sync + "[" + ps + "]"),
		hwsim.IO("addr[" + as + "], gray[" + ps + "], " + flag + ", bin[" + ps + "]")
}

// WritePtr returns the write pointer and full flag logic of a dual clock FIFO
// with 1<<abits words.
//
//	Inputs: clk, rst, inc, rq2[abits+1]
//	Outputs: addr[abits], gray[abits+1], full, bin[abits+1]
//	Function: on clk rising edge:
//		if rst { bin = 0; full = 0 }
//		else { bin += inc; full = gray(bin) == rq2 with its two msbs inverted }
//
// rq2 is the Gray coded read pointer synchronized into the write clock domain.
//
func WritePtr(abits int) hwsim.NewPartFn {
	ins, outs := ptrIO(abits, "rq2", "full")
	return (&hwsim.PartSpec{
		Name:    "WPTR" + strconv.Itoa(abits),
		Inputs:  ins,
		Outputs: outs,
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			clk, rst, inc := s.Pin(pClk), s.Pin(pRst), s.Pin("inc")
			rq2, addr, gray, bin := s.Bus("rq2", abits+1), s.Bus("addr", abits), s.Bus("gray", abits+1), s.Bus("bin", abits+1)
			full := s.Pin("full")
			var (
				edge hwsim.Edge
				p    = pointer{abits: abits}
				f    bool
			)
			msbs := uint64(3) << uint(abits-1)
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					if edge.Rising(c, clk) {
						if c.Get(rst) {
							p.bin, p.gray, f = 0, 0, false
						} else {
							p.bin, p.gray = p.next(c.Get(inc))
							f = p.gray == c.GetBus(rq2)^msbs
						}
					}
					c.SetBus(addr, p.addr())
					c.SetBus(gray, p.gray)
					c.SetBus(bin, p.bin)
					c.Set(full, f)
				}}
		}}).NewPart
}

// ReadPtr returns the read pointer and empty flag logic of a dual clock FIFO
// with 1<<abits words.
//
//	Inputs: clk, rst, inc, wq2[abits+1]
//	Outputs: addr[abits], gray[abits+1], empty, bin[abits+1]
//	Function: on clk rising edge:
//		if rst { bin = 0; empty = 1 }
//		else { bin += inc; empty = gray(bin) == wq2 }
//
// wq2 is the Gray coded write pointer synchronized into the read clock domain.
// empty is high until the first clock edge.
//
func ReadPtr(abits int) hwsim.NewPartFn {
	ins, outs := ptrIO(abits, "wq2", "empty")
	return (&hwsim.PartSpec{
		Name:    "RPTR" + strconv.Itoa(abits),
		Inputs:  ins,
		Outputs: outs,
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			clk, rst, inc := s.Pin(pClk), s.Pin(pRst), s.Pin("inc")
			wq2, addr, gray, bin := s.Bus("wq2", abits+1), s.Bus("addr", abits), s.Bus("gray", abits+1), s.Bus("bin", abits+1)
			empty := s.Pin("empty")
			var (
				edge hwsim.Edge
				p    = pointer{abits: abits}
				e    = true
			)
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					if edge.Rising(c, clk) {
						if c.Get(rst) {
							p.bin, p.gray, e = 0, 0, true
						} else {
							p.bin, p.gray = p.next(c.Get(inc))
							e = p.gray == c.GetBus(wq2)
						}
					}
					c.SetBus(addr, p.addr())
					c.SetBus(gray, p.gray)
					c.SetBus(bin, p.bin)
					c.Set(empty, e)
				}}
		}}).NewPart
}

// DPRAM returns a dual port RAM of 1<<abits words of dbits bits, with one
// write port and one registered read port in separate clock domains.
//
//	Inputs: wclk, we, waddr[abits], wdata[dbits], rclk, rst, re, raddr[abits]
//	Outputs: rdata[dbits]
//	Function:
//		on wclk rising edge: if we { mem[waddr] = wdata }
//		on rclk rising edge: if rst { rdata = 0 } else if re { rdata = mem[raddr] }
//
func DPRAM(abits, dbits int) hwsim.NewPartFn {
	as, ds := strconv.Itoa(abits), strconv.Itoa(dbits)
	return (&hwsim.PartSpec{
		Name:    "DPRAM" + as + "x" + ds,
		Inputs:  hwsim.IO("wclk, we, waddr[" + as + "], wdata[" + ds + "], rclk, rst, re, raddr[" + as + "]"),
		Outputs: hwsim.IO("rdata[" + ds + "]"),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			wclk, we, waddr, wdata := s.Pin("wclk"), s.Pin("we"), s.Bus("waddr", abits), s.Bus("wdata", dbits)
			rclk, rst, re, raddr := s.Pin("rclk"), s.Pin(pRst), s.Pin("re"), s.Bus("raddr", abits)
			rdata := s.Bus("rdata", dbits)
			var (
				wedge, redge hwsim.Edge
				mem          = make([]uint64, 1<<uint(abits))
				q            uint64
			)
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					w, r := wedge.Rising(c, wclk), redge.Rising(c, rclk)
					if r {
						switch {
						case c.Get(rst):
							q = 0
						case c.Get(re):
							q = mem[c.GetBus(raddr)]
						}
					}
					if w && c.Get(we) {
						mem[c.GetBus(waddr)] = c.GetBus(wdata)
					}
					c.SetBus(rdata, q)
				}}
		}}).NewPart
}

// AsyncFIFO returns a dual clock FIFO of 1<<abits words of dbits bits.
//
//	Inputs: enq_clock, deq_clock, reset, enqueue, dequeue, data_in[dbits]
//	Outputs: data_out[dbits], full, empty, enq_ptr[abits+1], deq_ptr[abits+1]
//
// Read and write pointers are exchanged between clock domains as Gray codes
// through two stage synchronizers, so full and empty are pessimistic: full
// may stay high for a few enq_clock cycles after a dequeue, and empty for a
// few deq_clock cycles after an enqueue.
//
// reset must be held long enough for both clocks to see a rising edge.
// enq_ptr and deq_ptr are the binary write and read pointers, meant to be
// used as probes.
//
func AsyncFIFO(abits, dbits int) (hwsim.NewPartFn, error) {
	if abits < 1 || abits > 62 {
		return nil, errors.Errorf("invalid address width %d", abits)
	}
	ps := strconv.Itoa(abits + 1)
	a, p, d := func(n string) string { return span(n, abits) },
		func(n string) string { return span(n, abits+1) },
		func(n string) string { return span(n, dbits) }

	sync := Sync2(abits + 1)
	wptr, rptr, ram := WritePtr(abits), ReadPtr(abits), DPRAM(abits, dbits)

	f, err := hwsim.Chip("ASYNCFIFO"+strconv.Itoa(abits)+"x"+strconv.Itoa(dbits),
		"enq_clock, deq_clock, reset, enqueue, dequeue, data_in["+strconv.Itoa(dbits)+"]",
		"data_out["+strconv.Itoa(dbits)+"], full, empty, enq_ptr["+ps+"], deq_ptr["+ps+"]",
		Not("in=full, out=nfull"),
		And("a=enqueue, b=nfull, out=we"),
		Not("in=empty, out=nempty"),
		And("a=dequeue, b=nempty, out=re"),
		wptr("clk=enq_clock, rst=reset, inc=we, "+p("rq2")+"="+p("rq2")+", "+
			a("addr")+"="+a("waddr")+", "+p("gray")+"="+p("wgray")+", full=full, "+p("bin")+"="+p("enq_ptr")),
		rptr("clk=deq_clock, rst=reset, inc=re, "+p("wq2")+"="+p("wq2")+", "+
			a("addr")+"="+a("raddr")+", "+p("gray")+"="+p("rgray")+", empty=empty, "+p("bin")+"="+p("deq_ptr")),
		sync("clk=deq_clock, rst=reset, "+p("d")+"="+p("wgray")+", "+p("q")+"="+p("wq2")),
		sync("clk=enq_clock, rst=reset, "+p("d")+"="+p("rgray")+", "+p("q")+"="+p("rq2")),
		ram("wclk=enq_clock, we=we, "+a("waddr")+"="+a("waddr")+", "+d("wdata")+"="+d("data_in")+", "+
			"rclk=deq_clock, rst=reset, re=re, "+a("raddr")+"="+a("raddr")+", "+d("rdata")+"="+d("data_out")),
	)
	return f, errors.Wrap(err, "async fifo")
}
