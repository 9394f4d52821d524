// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package hwtb is a cycle stepping test bench for clocked hardware models.

A Bench takes exclusive ownership of a Model, a set of named ports that can be
set, read and evaluated, and drives it one base tick at a time. Each clock
domain registered on the bench toggles its clock port every Period ticks, so
that several unrelated clocks can run over the same tick stream:

	b, err := hwtb.New(ctx, model, hwtb.Setup{
		Name:   "asyncfifo",
		Inputs: []string{"enqueue", "dequeue", "data_in"},
		Reset:  "reset",
		Clocks: []hwtb.Clock{{Name: "enq_clock", Period: 2}, {Name: "deq_clock", Period: 3}},
	})
	if err != nil {
		// ...
	}
	defer b.Close()

	b.Reset()
	enq, _ := b.Clock("enq_clock")
	b.Set("data_in", 0x12)
	b.Set("enqueue", 1)
	b.AwaitRisingEdge(enq)

Tick evaluates the model, toggles due clocks, evaluates the model again and
records a waveform sample if a Tracer is attached. AwaitRisingEdge and
AwaitEitherRisingEdge tick until a clock goes from low to high, which is where
stimulus is applied and results sampled.

Checks return an *AssertionError. A test run stops on the first one.
*/
package hwtb
