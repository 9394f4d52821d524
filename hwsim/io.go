// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"strconv"
)

// Input returns a 1 bit input.
//
//	Outputs: out
//	Function: out = f()
//
func Input(f func() bool) NewPartFn {
	p := &PartSpec{
		Name:    "Input",
		Outputs: []string{"out"},
		Mount: func(s *Socket) []Component {
			out := s.Pin("out")
			return []Component{func(c *Circuit) {
				c.Set(out, f())
			}}
		}}
	return p.NewPart
}

// Output returns a 1 bit output or probe. f is called with the pin state on
// every circuit update.
//
//	Inputs: in
//	Function: f(in)
//
func Output(f func(value bool)) NewPartFn {
	p := &PartSpec{
		Name:   "Output",
		Inputs: []string{"in"},
		Mount: func(s *Socket) []Component {
			in := s.Pin("in")
			return []Component{func(c *Circuit) {
				f(c.Get(in))
			}}
		}}
	return p.NewPart
}

// InputN creates an input bus of the given bits size.
//
//	Outputs: out[bits]
//	Function: out = f()
//
func InputN(bits int, f func() uint64) NewPartFn {
	bs := strconv.Itoa(bits)
	return (&PartSpec{
		Name:    "Input" + bs,
		Outputs: IO("out[" + bs + "]"),
		Mount: func(s *Socket) []Component {
			pins := s.Bus("out", bits)
			return []Component{func(c *Circuit) {
				c.SetBus(pins, f())
			}}
		}}).NewPart
}

// OutputN creates an output bus of the given bits size.
//
//	Inputs: in[bits]
//	Function: f(in)
//
func OutputN(bits int, f func(uint64)) NewPartFn {
	bs := strconv.Itoa(bits)
	return (&PartSpec{
		Name:   "Output" + bs,
		Inputs: IO("in[" + bs + "]"),
		Mount: func(s *Socket) []Component {
			pins := s.Bus("in", bits)
			return []Component{func(c *Circuit) {
				f(c.GetBus(pins))
			}}
		}}).NewPart
}
