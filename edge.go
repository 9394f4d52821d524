// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtb

func (b *Bench) checkHandle(h ClockHandle) {
	if !h.Valid() || h.b != b {
		panic("invalid clock handle")
	}
}

// AwaitRisingEdge ticks until the clock h goes from low to high and returns
// the number of ticks spent. If the clock is high when called, it first ticks
// until the clock is low, so that an edge already in progress is not taken
// for a new one.
//
// On return, the simulation sits exactly on the rising edge: results of the
// edge can be sampled and new stimulus applied.
//
func (b *Bench) AwaitRisingEdge(h ClockHandle) uint64 {
	b.checkHandle(h)
	start := b.ticks
	for h.High() {
		b.Tick()
	}
	for !h.High() {
		b.Tick()
	}
	return b.ticks - start
}

// AwaitEitherRisingEdge ticks until x or y goes from low to high and reports
// which one(s) did. Clocks are checked on every tick, without any assumption
// on their phase relationship.
//
func (b *Bench) AwaitEitherRisingEdge(x, y ClockHandle) (rx, ry bool) {
	b.checkHandle(x)
	b.checkHandle(y)
	for !rx && !ry {
		px, py := x.High(), y.High()
		b.Tick()
		rx, ry = !px && x.High(), !py && y.High()
	}
	return rx, ry
}
