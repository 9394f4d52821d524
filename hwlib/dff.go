// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/hwtb/hwsim"
)

// Reg returns a clocked register of the given bits size with synchronous
// reset and load enable.
//
//	Inputs: clk, rst, en, d[bits]
//	Outputs: q[bits]
//	Function: on clk rising edge: if rst { q = 0 } else if en { q = d }
//
func Reg(bits int) hwsim.NewPartFn {
	return (&hwsim.PartSpec{
		Name:    "REG" + strconv.Itoa(bits),
		Inputs:  append([]string{pClk, pRst, "en"}, bus(bits, "d")...),
		Outputs: bus(bits, "q"),
		Mount: func(s *hwsim.Socket) []hwsim.Component {
			clk, rst, en := s.Pin(pClk), s.Pin(pRst), s.Pin("en")
			d, q := s.Bus("d", bits), s.Bus("q", bits)
			var (
				edge hwsim.Edge
				v    uint64
			)
			return []hwsim.Component{
				func(c *hwsim.Circuit) {
					if edge.Rising(c, clk) {
						switch {
						case c.Get(rst):
							v = 0
						case c.Get(en):
							v = c.GetBus(d)
						}
					}
					c.SetBus(q, v)
				}}
		}}).NewPart
}

// Sync2 returns a two stage synchronizer for a bus of the given bits size,
// built from two registers. It brings a signal from another clock domain into
// the clk domain.
//
//	Inputs: clk, rst, d[bits]
//	Outputs: q[bits]
//	Function: q(t) = d(t-2) // t counts rising edges of clk
//
// Multi-bit buses must only change one bit at a time (Gray code) to be safely
// synchronized.
//
func Sync2(bits int) hwsim.NewPartFn {
	reg := Reg(bits)
	d, meta, q := span("d", bits), span("meta", bits), span("q", bits)
	sync, err := hwsim.Chip("SYNC"+strconv.Itoa(bits),
		"clk, rst, d["+strconv.Itoa(bits)+"]",
		"q["+strconv.Itoa(bits)+"]",
		reg("clk=clk, rst=rst, en=true, "+span("d", bits)+"="+d+", "+span("q", bits)+"="+meta),
		reg("clk=clk, rst=rst, en=true, "+span("d", bits)+"="+meta+", "+span("q", bits)+"="+q),
	)
	if err != nil {
		panic(err)
	}
	return sync
}
