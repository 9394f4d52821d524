// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// A Component is a component in a circuit that can Get and Set states.
//
type Component func(c *Circuit)

// A MountFn mounts a part into socket s. MountFn's should query
// the socket for assigned pin numbers and return closures around
// these pin numbers.
//
// For example, a Not gate can be defined like this:
//
//	not := &PartSpec{
//		Name: "Not",
//		Inputs: IO("in"),
//		Outputs: IO("out"),
//		Mount: func (s *Socket) []Component {
//			in, out := s.Pin("in"), s.Pin("out")
//			return []Component{
//				func (c *Circuit) { c.Set(out, !c.Get(in)) }
//			}
//		}}
//
type MountFn func(s *Socket) []Component

// A PartSpec wraps a part specification (its blueprint).
//
// Custom parts are implemented by creating a PartSpec and using its NewPart
// method as a NewPartFn:
//
//	var notGate = notSpec.NewPart
//
// Which can then be used when building other chips:
//
//	c, _ := Chip("dummy", "a, b", "c, d",
//		notGate("in=a, out=c"),
//		notGate("in=b, out=d"),
//	)
//
type PartSpec struct {
	// Part name.
	Name string
	// Input pin names. Must be distinct pin names.
	// Use the IO() function to expand an input description like
	// "a, b, bus[2]" to []string{"a", "b", "bus[0]", "bus[1]"}
	Inputs []string
	// Output pin names. Must be distinct pin names.
	Outputs []string

	// Mount function (see MountFn).
	Mount MountFn
}

// NewPart is a NewPartFn that wraps p with the given connections into a Part.
// It panics if the connection string is malformed.
//
func (p *PartSpec) NewPart(connections string) Part {
	w, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{p, w}
}

func (p *PartSpec) hasPin(name string) bool {
	for _, n := range p.Inputs {
		if n == name {
			return true
		}
	}
	for _, n := range p.Outputs {
		if n == name {
			return true
		}
	}
	return false
}

// A NewPartFn is a function that takes a connection configuration and returns a
// new Part. See ParseConnections for the syntax of the connection configuration
// string.
//
type NewPartFn func(c string) Part

// A Part wraps a part specification together with its connections within a host
// chip.
//
type Part struct {
	*PartSpec
	Conns W
}

// SettleLimit is the maximum number of steps Settle will run before giving up
// on a circuit.
//
var SettleLimit = 1024

// Circuit is a runnable circuit simulation.
//
// Wire states are double buffered: during a step, components read the
// previous frame (s0) and write the next one (s1). Clocked components
// therefore all sample the same pre-edge state, whatever the order in which
// they are updated.
//
type Circuit struct {
	s0    []bool // wire states frame #0
	s1    []bool // wire states frame #1
	cs    []Component
	count int // wire count
	steps uint64

	wc []chan struct{}
	wg sync.WaitGroup
}

// NewCircuit builds a new circuit based on the given parts.
//
// workers is the number of goroutines used to update the state of the Circuit
// each step of the simulation. If less or equal to 0, the value of GOMAXPROCS
// will be used.
//
// Callers must make sure to call Dispose() once the circuit is no longer needed
// in order to release allocated resources.
//
func NewCircuit(workers int, parts ...Part) (*Circuit, error) {
	if len(parts) == 0 {
		return nil, errors.New("empty part list")
	}

	// new circuit with room for constant value pins.
	cc := &Circuit{count: cstCount}
	wrap, err := Chip("CIRCUIT", "", "", parts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create chip wrapper")
	}
	ups := wrap("").Mount(newSocket(cc))
	cc.cs = ups
	cc.s0 = make([]bool, cc.count)
	cc.s1 = make([]bool, cc.count)
	// init constant pins
	cc.s0[cstTrue] = true
	cc.s1[cstTrue] = true

	// workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(-1)
	}
	if workers <= 0 {
		workers = 1
	}
	for len(ups) > 0 {
		size := len(ups) / workers
		if size*workers < len(ups) {
			size++
		}
		wc := make(chan struct{}, 1)
		cc.wc = append(cc.wc, wc)
		go worker(cc, ups[:size], wc)
		ups = ups[size:]
	}

	return cc, nil
}

// Dispose releases all resources allocated for a circuit and stops
// worker goroutines.
//
func (c *Circuit) Dispose() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		close(wc)
	}
	c.wg.Wait()
	c.wc = nil
}

func worker(c *Circuit, cs []Component, wc <-chan struct{}) {
	for {
		_, ok := <-wc
		if !ok {
			c.wg.Done()
			return
		}
		for _, f := range cs {
			f(c)
		}
		c.wg.Done()
	}
}

// allocPin allocates a pin and returns its number.
//
func (c *Circuit) allocPin() int {
	cnt := c.count
	c.count++
	return cnt
}

// Steps returns the value of the step counter.
//
func (c *Circuit) Steps() uint64 {
	return c.steps
}

// Get returns the state of pin n. The value of n should be obtained in a
// MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Get(n int) bool {
	return c.s0[n]
}

// Set sets the state s of pin n. The value of n should be obtained in a
// MountFn by a call to one of the Socket methods.
//
func (c *Circuit) Set(n int, s bool) {
	c.s1[n] = s
}

// GetBus returns the state of a bus as an unsigned integer. pins[0] is the lsb.
//
func (c *Circuit) GetBus(pins []int) uint64 {
	var v uint64
	for bit, n := range pins {
		if c.s0[n] {
			v |= 1 << uint(bit)
		}
	}
	return v
}

// SetBus sets the state of a bus to the given value. Bits of v beyond
// len(pins) are ignored.
//
func (c *Circuit) SetBus(pins []int, v uint64) {
	for bit, n := range pins {
		c.s1[n] = v&(1<<uint(bit)) != 0
	}
}

// Step advances the simulation by one step.
//
func (c *Circuit) Step() {
	c.wg.Add(len(c.wc))
	for _, wc := range c.wc {
		wc <- struct{}{}
	}

	c.wg.Wait()
	c.steps++
	c.s0, c.s1 = c.s1, c.s0
}

// Settle runs the simulation until two consecutive frames are identical and
// returns the number of steps taken. It always runs at least one step.
//
// Settle panics if the circuit is still changing after SettleLimit steps,
// which denotes a combinational loop in the circuit.
//
func (c *Circuit) Settle() int {
	for n := 1; n <= SettleLimit; n++ {
		c.Step()
		if c.stable() {
			return n
		}
	}
	panic(errors.Errorf("circuit did not settle after %d steps", SettleLimit))
}

func (c *Circuit) stable() bool {
	for i, s := range c.s0 {
		if c.s1[i] != s {
			return false
		}
	}
	return true
}

// Size returns the component count in the circuit.
//
func (c *Circuit) Size() int { return len(c.cs) }

// Edge detects rising edges on a clock pin. The zero value assumes that the
// clock starts low.
//
type Edge struct {
	prev bool
}

// Rising reports whether the clock pin went from low to high since the last
// call. Clocked components must call it exactly once per update.
//
func (e *Edge) Rising(c *Circuit, clk int) bool {
	v := c.Get(clk)
	r := v && !e.prev
	e.prev = v
	return r
}
