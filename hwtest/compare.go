// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/db47h/hwtb/hwsim"
)

// PartPorts returns the ports of the part built by newPart, grouping bus pins
// back into single ports. Inputs come first, in declaration order.
//
func PartPorts(newPart hwsim.NewPartFn) []hwsim.Port {
	ps := newPart("")
	return append(pinList(ps.Inputs, hwsim.DirIn), pinList(ps.Outputs, hwsim.DirOut)...)
}

func pinList(in []string, dir hwsim.Dir) []hwsim.Port {
	var ports []hwsim.Port
	bus := make(map[string]int)

	for _, n := range in {
		b := strings.IndexRune(n, '[')
		if b < 0 {
			ports = append(ports, hwsim.Port{Name: n, Width: 1, Dir: dir})
			continue
		}
		bn := n[:b]
		idx, err := strconv.Atoi(n[b+1 : strings.IndexRune(n, ']')])
		if err != nil {
			panic(err)
		}
		i, ok := bus[bn]
		if !ok {
			i = len(ports)
			bus[bn] = i
			ports = append(ports, hwsim.Port{Name: bn, Dir: dir})
		}
		if idx+1 > ports[i].Width {
			ports[i].Width = idx + 1
		}
	}
	return ports
}

// NewModel wraps the part built by newPart into a model exposing all its pins.
// It fails the test on error and disposes of the model when the test ends.
//
func NewModel(t testing.TB, newPart hwsim.NewPartFn) *hwsim.Model {
	t.Helper()
	m, err := hwsim.NewModel(t.Name(), 1, newPart, PartPorts(newPart)...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

// Cycle runs n full cycles of the named clock input of m: each cycle settles
// pending input changes, drives the clock high, settles, drives it low and
// settles.
//
func Cycle(m *hwsim.Model, clk string, n int) {
	for i := 0; i < n; i++ {
		m.Eval()
		m.Set(clk, 1)
		m.Eval()
		m.Set(clk, 0)
		m.Eval()
	}
}

// ComparePart takes two parts and compares their outputs given the same random
// input sequence. Both parts must have the same Input/Output interface.
// Sequential parts are compared as well since both see the same clock pattern.
//
func ComparePart(t *testing.T, iter int, part1 hwsim.NewPartFn, part2 hwsim.NewPartFn) {
	t.Helper()

	p1, p2 := PartPorts(part1), PartPorts(part2)

	// compare specs
	if len(p1) != len(p2) {
		t.Fatalf("port count mismatch: %d != %d", len(p1), len(p2))
	}
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("port mismatch: %v != %v", p1[i], p2[i])
		}
	}

	m1, m2 := NewModel(t, part1), NewModel(t, part2)

	rnd := rand.New(rand.NewSource(int64(len(p1))))
	errString := func(out hwsim.Port, ex, got uint64) string {
		var b strings.Builder
		for _, p := range p1 {
			if p.Dir != hwsim.DirIn {
				continue
			}
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%d", p.Name, m1.Get(p.Name))
		}
		return fmt.Sprintf("\nExpected %s => %s=%d\nGot %d", b.String(), out.Name, ex, got)
	}

	for i := 0; i < iter; i++ {
		for _, p := range p1 {
			if p.Dir == hwsim.DirIn {
				v := rnd.Uint64()
				m1.Set(p.Name, v)
				m2.Set(p.Name, v)
			}
		}
		m1.Eval()
		m2.Eval()
		for _, p := range p1 {
			if p.Dir == hwsim.DirIn {
				continue
			}
			if o1, o2 := m1.Get(p.Name), m2.Get(p.Name); o1 != o2 {
				t.Fatal(errString(p, o1, o2))
			}
		}
	}

	c := m1.Circuit()
	t.Logf("%d components. %d steps for %d input patterns", c.Size(), c.Steps(), iter)
}
