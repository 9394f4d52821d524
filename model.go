// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtb

// Model is the pin level interface of a simulated hardware module.
//
// Set changes the value of an input port, Get returns the value of any port
// and Eval propagates input changes through the model. Values read after Eval
// are settled.
//
// Models that implement io.Closer are closed with the Bench.
//
type Model interface {
	Set(port string, v uint64)
	Get(port string) uint64
	Eval()
}

// Tracer records waveform samples.
//
// Dump records the state of the model at the given timestamp. Flush writes
// buffered samples out.
//
// Tracers that implement io.Closer are closed with the Bench.
//
type Tracer interface {
	Dump(timestamp uint64) error
	Flush() error
}

// Harness is the set of operations a test bench provides to test scripts.
//
type Harness interface {
	Tick()
	Eval()
	Reset()
	AttachTrace(t Tracer) error
}

var _ Harness = (*Bench)(nil)
