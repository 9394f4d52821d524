// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"github.com/pkg/errors"
)

type chip struct {
	parts []Part
}

func (c *chip) mount(s *Socket) []Component {
	var updaters []Component

	for _, p := range c.parts {
		// make a sub-socket
		sub := newSocket(s.c)
		for _, k := range p.Inputs {
			if n, ok := p.Conns[k]; ok {
				sub.m[k] = s.PinOrNew(n)
			} else {
				// wire unknown input pins to False.
				sub.m[k] = cstFalse
			}
		}
		for _, k := range p.Outputs {
			if n, ok := p.Conns[k]; ok {
				sub.m[k] = s.PinOrNew(n)
			} else {
				// unused output, give it a private pin.
				sub.m[k] = s.c.allocPin()
			}
		}
		updaters = append(updaters, p.Mount(sub)...)
	}
	return updaters
}

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// An Xor gate could be created like this:
//
//	xor, err := Chip("XOR", "a, b", "out",
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips:
//
//	xnor, err := Chip("XNOR", "a, b", "out",
//		xor("a=a, b=b, out=xorAB"),
//		hwlib.Not("in=xorAB, out=out"),
//	)
//
func Chip(name string, inputs string, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := ParseIO(inputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" inputs")
	}
	outs, err := ParseIO(outputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" outputs")
	}

	wr := newWiring(ins, outs)
	for pnum, p := range parts {
		// check that all keys match one of the part's input or output pins
		for k := range p.Conns {
			if !p.hasPin(k) {
				return nil, errors.New("invalid pin name " + k + " for part " + p.Name)
			}
		}
		for _, k := range p.Inputs {
			if n, ok := p.Conns[k]; ok {
				wr.input(n, pin{pnum, k})
			}
		}
		for _, k := range p.Outputs {
			if n, ok := p.Conns[k]; ok {
				if err := wr.output(pin{pnum, k}, n); err != nil {
					return nil, errors.Wrap(err, p.Name+"."+k+":"+n)
				}
			}
		}
	}
	if err := wr.check(); err != nil {
		return nil, errors.Wrap(err, name)
	}

	c := &chip{parts: append([]Part(nil), parts...)}
	sp := &PartSpec{
		Name:    name,
		Inputs:  ins,
		Outputs: outs,
		Mount:   c.mount,
	}
	return sp.NewPart, nil
}
