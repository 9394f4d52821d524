// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Dir is the direction of a model port.
//
type Dir int

// Port directions.
//
const (
	DirIn    Dir = iota // driven by the model's user
	DirOut              // functional output
	DirProbe            // white-box internal signal
)

func (d Dir) String() string {
	switch d {
	case DirIn:
		return "in"
	case DirOut:
		return "out"
	case DirProbe:
		return "probe"
	}
	return "Dir(" + strconv.Itoa(int(d)) + ")"
}

// Port describes a named port of a Model. Ports of width 1 map to a single
// pin of the same name, wider ports to the bus name[0..Width-1].
//
type Port struct {
	Name  string
	Width int
	Dir   Dir
}

// Ports is a convenience function to declare several ports with the same
// direction from a pin specification string like "clock, data_in[8]".
//
func Ports(dir Dir, spec string) []Port {
	var ps []Port
	for _, item := range splitList(spec) {
		name, size, hasSize, err := splitPin(spec, item)
		if err != nil {
			panic(err)
		}
		w := 1
		if hasSize {
			if w, err = strconv.Atoi(size); err != nil {
				panic(parseError(spec, "invalid bus size "+strconv.Quote(size)))
			}
		}
		ps = append(ps, Port{Name: name, Width: w, Dir: dir})
	}
	return ps
}

func (p Port) ref(name string) string {
	if p.Width == 1 {
		return name
	}
	return name + "[0.." + strconv.Itoa(p.Width-1) + "]"
}

func (p Port) ioRef(name string) string {
	if p.Width == 1 {
		return name + "[0]"
	}
	return p.ref(name)
}

// A Model wraps a part into a runnable circuit with named ports. Inputs are
// set by name, outputs and probes read by name, and Eval settles the circuit
// after inputs have changed.
//
// A Model is not safe for concurrent use.
//
type Model struct {
	name  string
	c     *Circuit
	ports []Port
	index map[string]int
	vals  []uint64
}

// NewModel mounts the part returned by newPart into a new circuit and wires
// each of the given ports to an input or output bus of the same name. Pins of
// the part that are not listed in ports are left unconnected.
//
func NewModel(name string, workers int, newPart NewPartFn, ports ...Port) (*Model, error) {
	m := &Model{
		name:  name,
		ports: append([]Port(nil), ports...),
		index: make(map[string]int, len(ports)),
		vals:  make([]uint64, len(ports)),
	}
	parts := make([]Part, 0, len(ports)+1)
	conns := make([]string, 0, len(ports))
	for i, p := range m.ports {
		if p.Width < 1 || p.Width > 64 {
			return nil, errors.Errorf("%s: invalid width %d for port %s", name, p.Width, p.Name)
		}
		if _, ok := m.index[p.Name]; ok {
			return nil, errors.Errorf("%s: duplicate port %s", name, p.Name)
		}
		m.index[p.Name] = i
		slot := &m.vals[i]
		conns = append(conns, p.ref(p.Name)+"="+p.ref(p.Name))
		if p.Dir == DirIn {
			parts = append(parts, InputN(p.Width, func() uint64 { return *slot })(p.ioRef("out")+"="+p.ref(p.Name)))
		} else {
			parts = append(parts, OutputN(p.Width, func(v uint64) { *slot = v })(p.ioRef("in")+"="+p.ref(p.Name)))
		}
	}

	part, err := buildPart(newPart, strings.Join(conns, ", "))
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	parts = append(parts, part)
	if m.c, err = NewCircuit(workers, parts...); err != nil {
		return nil, errors.Wrap(err, name)
	}
	m.Eval()
	return m, nil
}

// buildPart recovers from NewPart panics on malformed connections.
func buildPart(newPart NewPartFn, conns string) (p Part, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = errors.Errorf("%v", r)
		}
	}()
	return newPart(conns), nil
}

// Name returns the model name.
//
func (m *Model) Name() string { return m.name }

// Ports returns the model's ports in declaration order.
//
func (m *Model) Ports() []Port { return m.ports }

// Port returns the named port.
//
func (m *Model) Port(name string) (Port, bool) {
	i, ok := m.index[name]
	if !ok {
		return Port{}, false
	}
	return m.ports[i], true
}

// IsInput returns true if the model has an input port of the given name.
//
func (m *Model) IsInput(name string) bool {
	p, ok := m.Port(name)
	return ok && p.Dir == DirIn
}

// Circuit returns the underlying circuit.
//
func (m *Model) Circuit() *Circuit { return m.c }

func (m *Model) slot(name string) int {
	i, ok := m.index[name]
	if !ok {
		panic("model " + m.name + " has no port " + name)
	}
	return i
}

// Set sets the value of an input port. The value is truncated to the port
// width. It only becomes visible to the circuit after the next Eval.
//
func (m *Model) Set(name string, v uint64) {
	i := m.slot(name)
	p := m.ports[i]
	if p.Dir != DirIn {
		panic("port " + name + " of model " + m.name + " is not an input")
	}
	if p.Width < 64 {
		v &= 1<<uint(p.Width) - 1
	}
	m.vals[i] = v
}

// Get returns the value of a port. For inputs, this is the last value set.
// For outputs and probes, this is their state as of the last Eval.
//
func (m *Model) Get(name string) uint64 {
	return m.vals[m.slot(name)]
}

// Eval settles the circuit.
//
func (m *Model) Eval() {
	m.c.Settle()
}

// Close releases the resources held by the underlying circuit.
//
func (m *Model) Close() error {
	if m.c != nil {
		m.c.Dispose()
		m.c = nil
	}
	return nil
}
