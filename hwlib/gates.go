// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable parts for hwsim, and the
// device parts verified by the test bench: a synchronous FIFO, a dual clock
// FIFO and an SDRAM controller.
//
package hwlib

import (
	"strconv"

	"github.com/db47h/hwtb/hwsim"
)

// common pin names
const (
	pA   = "a"
	pB   = "b"
	pIn  = "in"
	pOut = "out"
	pClk = "clk"
	pRst = "rst"
)

// make a bus name
func bus(bits int, names ...string) []string {
	b := make([]string, 0, len(names)*bits)
	for _, n := range names {
		for j := 0; j < bits; j++ {
			b = append(b, hwsim.BusPinName(n, j))
		}
	}
	return b
}

// span returns the connection string for a whole bus: name[0..bits-1].
func span(name string, bits int) string {
	return name + "[0.." + strconv.Itoa(bits-1) + "]"
}

var notGate = &hwsim.PartSpec{
	Name:    "NOT",
	Inputs:  []string{pIn},
	Outputs: []string{pOut},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		in, out := s.Pin(pIn), s.Pin(pOut)
		return []hwsim.Component{
			func(c *hwsim.Circuit) { c.Set(out, !c.Get(in)) },
		}
	},
}

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
//
func Not(w string) hwsim.Part {
	return notGate.NewPart(w)
}

var andGate = &hwsim.PartSpec{
	Name:    "AND",
	Inputs:  []string{pA, pB},
	Outputs: []string{pOut},
	Mount: func(s *hwsim.Socket) []hwsim.Component {
		a, b, out := s.Pin(pA), s.Pin(pB), s.Pin(pOut)
		return []hwsim.Component{
			func(c *hwsim.Circuit) { c.Set(out, c.Get(a) && c.Get(b)) },
		}
	},
}

// And returns a AND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b
//
func And(w string) hwsim.Part {
	return andGate.NewPart(w)
}
