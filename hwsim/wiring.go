// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// W is a set of wires, connecting a part's I/O pins (the map key) to pins in
// its container.
//
type W map[string]string

// add expands bus ranges in k and v and adds the resulting wires to w.
//
func (w W) add(k, v string) error {
	ks, err := expandRange(k)
	if err != nil {
		return errors.Wrap(err, "expand key "+k)
	}
	vs, err := expandRange(v)
	if err != nil {
		return errors.Wrap(err, "expand value "+v)
	}
	switch {
	case len(ks) == len(vs):
		// many to many
		for i := range ks {
			if err := w.set(ks[i], vs[i]); err != nil {
				return err
			}
		}
	case len(vs) == 1:
		// many to one
		for _, k := range ks {
			if err := w.set(k, vs[0]); err != nil {
				return err
			}
		}
	default:
		return errors.New("pin count mismatch in pin mapping: " + k + "=" + v)
	}
	return nil
}

func (w W) set(k, v string) error {
	if _, ok := w[k]; ok {
		return errors.New("pin " + k + " connected more than once")
	}
	w[k] = v
	return nil
}

func expandRange(name string) ([]string, error) {
	i := strings.IndexRune(name, '[')
	if i < 0 {
		return []string{name}, nil
	}
	bus := name[:i]
	if bus == "" {
		return nil, errors.New("empty bus name")
	}
	n := name[i+1:]
	i = strings.Index(n, "..")
	if i < 0 {
		return []string{name}, nil
	}
	start, err := strconv.Atoi(n[:i])
	if err != nil {
		return nil, err
	}
	n = n[i+2:]
	i = strings.IndexRune(n, ']')
	if i < 0 {
		return nil, errors.New("no terminating ] in bus range")
	}
	end, err := strconv.Atoi(n[:i])
	if err != nil {
		return nil, err
	}
	if end < start {
		return nil, errors.New("bus range end before start")
	}
	r := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		r = append(r, BusPinName(bus, i))
	}
	return r, nil
}

// a pin is identified by the part it belongs to and its name in that part's interface
type pin struct {
	p    int
	name string
}

// a wire is a chip internal signal, driven by exactly one chip input, part
// output or constant and feeding any number of part inputs.
type wire struct {
	name   string
	in     bool // chip input
	out    bool // chip output
	driver *pin
	sinks  []pin
}

func (w *wire) driven() bool {
	return w.in || w.driver != nil || w.name == True || w.name == False
}

type wiring map[string]*wire

func newWiring(ins, outs []string) wiring {
	wr := make(wiring, len(ins)+len(outs)+2)
	wr[True] = &wire{name: True}
	wr[False] = &wire{name: False}
	for _, in := range ins {
		wr[in] = &wire{name: in, in: true}
	}
	for _, out := range outs {
		wr.get(out).out = true
	}
	return wr
}

func (wr wiring) get(name string) *wire {
	w := wr[name]
	if w == nil {
		w = &wire{name: name}
		wr[name] = w
	}
	return w
}

// input connects a part input pin to the named wire.
func (wr wiring) input(name string, p pin) {
	w := wr.get(name)
	w.sinks = append(w.sinks, p)
}

// output connects a part output pin to the named wire.
func (wr wiring) output(p pin, name string) error {
	switch name {
	case True, False:
		return errors.New("output pin connected to constant " + name + " input")
	}
	w := wr.get(name)
	switch {
	case w.in:
		return errors.New("chip input pin used as output")
	case w.driver != nil:
		return errors.New("output pin already used as output")
	}
	w.driver = &p
	return nil
}

// check reports wires that are read but never driven, and part outputs that
// are driven but never read.
func (wr wiring) check() error {
	names := make([]string, 0, len(wr))
	for n := range wr {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		w := wr[n]
		if len(w.sinks) > 0 && !w.driven() {
			return errors.New("pin " + n + " not connected to any output")
		}
		if w.driver != nil && len(w.sinks) == 0 && !w.out {
			return errors.New("pin " + n + " not connected to any input")
		}
	}
	return nil
}
