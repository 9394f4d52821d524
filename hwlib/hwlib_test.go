package hwlib_test

import (
	"math/bits"
	"strings"
	"testing"
	"testing/quick"

	hw "github.com/db47h/hwtb/hwsim"
	hl "github.com/db47h/hwtb/hwlib"
)

func testGate(t *testing.T, gate func(string) hw.Part, result [][]bool) {
	t.Helper()
	part := gate("").PartSpec // build dummy gate just to get to the partspec
	inputs := make([]bool, len(part.Inputs))
	outputs := make([]bool, len(part.Outputs))
	var w strings.Builder
	parts := make([]hw.Part, 0, len(part.Inputs)+len(part.Outputs)+1)
	for i, n := range part.Inputs {
		w.WriteByte(',')
		w.WriteString(n)
		w.WriteByte('=')
		w.WriteString(n)
		in := &inputs[i]
		parts = append(parts, hw.Input(func() bool { return *in })("out="+n))
	}
	for i, n := range part.Outputs {
		w.WriteByte(',')
		w.WriteString(n)
		w.WriteByte('=')
		w.WriteString(n)
		out := &outputs[i]
		parts = append(parts, hw.Output(func(v bool) { *out = v })("in="+n))
	}
	wr := w.String()
	// trim first ','
	if len(wr) > 0 {
		wr = wr[1:]
	}
	parts = append(parts, gate(wr))
	c, err := hw.NewCircuit(0, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	tot := 1 << uint(len(part.Inputs))
	for i := 0; i < tot; i++ {
		for bit := range inputs {
			inputs[len(inputs)-bit-1] = (i & (1 << uint(bit))) != 0
		}
		c.Settle()
		for o, out := range outputs {
			exp := result[o][i]
			if exp != out {
				t.Errorf("%s %v = %v, got %v", part.Name, inputs, exp, out)
			}
		}
	}
}

func Test_gate_builtin(t *testing.T) {
	td := []struct {
		name   string
		gate   func(string) hw.Part
		result [][]bool // a=0 && b=0, a=0 && b=1, a=1 && b=0, a=1 && b=1
	}{
		{"NOT", hl.Not, [][]bool{{true, false}}},
		{"AND", hl.And, [][]bool{{false, false, false, true}}},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			testGate(t, d.gate, d.result)
		})
	}
}

func TestGray(t *testing.T) {
	roundTrip := func(x uint64) bool {
		return hl.GrayToBin(hl.BinToGray(x)) == x
	}
	if err := quick.Check(roundTrip, nil); err != nil {
		t.Fatal(err)
	}
	// consecutive codes differ by exactly one bit, including on wrap around
	// of a 9 bits pointer.
	const mask = 1<<9 - 1
	for i := uint64(0); i <= mask; i++ {
		g0, g1 := hl.BinToGray(i), hl.BinToGray((i+1)&mask)
		if n := bits.OnesCount64(g0 ^ g1); n != 1 {
			t.Fatalf("gray(%d) = %b, gray(%d) = %b: %d bits changed", i, g0, (i+1)&mask, g1, n)
		}
	}
}
