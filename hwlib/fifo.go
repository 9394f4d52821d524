// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/hwtb/hwsim"
)

// FIFO returns a single clock FIFO of 1<<abits words of dbits bits.
//
//	Inputs: clock, reset, enqueue, dequeue, data_in[dbits]
//	Outputs: data_out[dbits], full, empty, enq_addr[abits], deq_addr[abits], count[abits+1]
//	Function: on clock rising edge:
//		if reset { clear pointers, count and data_out }
//		if dequeue && !empty { data_out = mem[deq_addr]; deq_addr++ }
//		if enqueue && !full { mem[enq_addr] = data_in; enq_addr++ }
//	full = count == 1<<abits
//	empty = count == 0
//
// Enqueue requests while full and dequeue requests while empty are ignored.
// enq_addr, deq_addr and count are meant to be used as probes.
//
func FIFO(abits, dbits int) hwsim.NewPartFn {
	depth := uint64(1) << uint(abits)
	amask := depth - 1
	return (&hwsim.PartSpec{
		Name: "FIFO" + strconv.Itoa(abits) + "x" + strconv.Itoa(dbits),
		Inputs: hwsim.IO("clock, reset, enqueue, dequeue, data_in[" +
			strconv.Itoa(dbits) + "]"),
		Outputs: hwsim.IO("data_out[" + strconv.Itoa(dbits) + "], full, empty, enq_addr[" +
			strconv.Itoa(abits) + "], deq_addr[" + strconv.Itoa(abits) + "], count[" + strconv.Itoa(abits+1) + "]"),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			clk, rst := s.Pin("clock"), s.Pin("reset")
			enq, deq := s.Pin("enqueue"), s.Pin("dequeue")
			in, out := s.Bus("data_in", dbits), s.Bus("data_out", dbits)
			full, empty := s.Pin("full"), s.Pin("empty")
			wa, ra, cnt := s.Bus("enq_addr", abits), s.Bus("deq_addr", abits), s.Bus("count", abits+1)
			var (
				edge         hwsim.Edge
				mem          = make([]uint64, depth)
				w, r, n, dat uint64
			)
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					if edge.Rising(c, clk) {
						if c.Get(rst) {
							w, r, n, dat = 0, 0, 0, 0
						} else {
							we := c.Get(enq) && n < depth
							re := c.Get(deq) && n > 0
							if re {
								dat = mem[r]
								r = (r + 1) & amask
								n--
							}
							if we {
								mem[w] = c.GetBus(in)
								w = (w + 1) & amask
								n++
							}
						}
					}
					c.SetBus(out, dat)
					c.Set(full, n == depth)
					c.Set(empty, n == 0)
					c.SetBus(wa, w)
					c.SetBus(ra, r)
					c.SetBus(cnt, n)
				}}
		}}).NewPart
}
