// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package scenario

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/db47h/hwtb"
	"github.com/db47h/hwtb/device"
)

// Queue drives a FIFO device. The sync FIFO uses the same clock for both
// sides.
//
type Queue struct {
	Enq, Deq   string // clock ports
	Capacity   int
	StrictFull bool
	Latency    int
	IdleProbe  string
}

// NewQueue returns a Queue for a FIFO device.
//
func NewQueue(d *device.Device) *Queue {
	return &Queue{
		Enq:        d.EnqClock,
		Deq:        d.DeqClock,
		Capacity:   d.Capacity,
		StrictFull: d.StrictFull,
		Latency:    d.Latency,
		IdleProbe:  d.IdleProbe,
	}
}

func (q *Queue) clocks(b *hwtb.Bench) (enq, deq hwtb.ClockHandle, err error) {
	var ok bool
	if enq, ok = b.Clock(q.Enq); !ok {
		return enq, deq, errors.Errorf("no enqueue clock %s", q.Enq)
	}
	if deq, ok = b.Clock(q.Deq); !ok {
		return enq, deq, errors.Errorf("no dequeue clock %s", q.Deq)
	}
	return enq, deq, nil
}

func enqueue(b *hwtb.Bench, clk hwtb.ClockHandle, v uint64) {
	b.Set("data_in", v)
	b.Set("enqueue", 1)
	b.AwaitRisingEdge(clk)
	b.Set("enqueue", 0)
}

func dequeue(b *hwtb.Bench, clk hwtb.ClockHandle) uint64 {
	b.Set("dequeue", 1)
	b.AwaitRisingEdge(clk)
	b.Set("dequeue", 0)
	return b.Get("data_out")
}

// settle waits for enqueued data to be visible on the dequeue side.
func (q *Queue) settle(b *hwtb.Bench, deq hwtb.ClockHandle) {
	for i := 0; i < q.Latency; i++ {
		b.AwaitRisingEdge(deq)
	}
}

func (q *Queue) checkReset(b *hwtb.Bench) error {
	if err := b.AssertPort("empty", 1); err != nil {
		return err
	}
	return b.AssertPort(q.IdleProbe, 0)
}

// roundTrip enqueues then dequeues all values, checking order and that empty
// is only raised by the last dequeue.
func (q *Queue) roundTrip(b *hwtb.Bench, values []uint64) error {
	enq, deq, err := q.clocks(b)
	if err != nil {
		return err
	}
	if err = q.checkReset(b); err != nil {
		return err
	}
	for i, v := range values {
		if q.StrictFull {
			if err = b.Assert(!b.High("full"), "full before enqueue #%d", i); err != nil {
				return err
			}
		}
		enqueue(b, enq, v)
		b.Log().Debugf("[tick %07d] enqueue %#02x", b.Ticks(), v)
	}
	q.settle(b, deq)
	for i, want := range values {
		got := dequeue(b, deq)
		b.Log().Debugf("[tick %07d] dequeue %#02x", b.Ticks(), got)
		if err = b.Assert(got == want, "dequeue #%d: data_out = %#02x, expected %#02x", i, got, want); err != nil {
			return err
		}
		last := i == len(values)-1
		if err = b.Assert(b.High("empty") == last, "dequeue #%d of %d: empty = %v", i, len(values), b.High("empty")); err != nil {
			return err
		}
		if err = b.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Standard returns a scenario that pushes n random bytes through the queue,
// n being clamped to the queue capacity.
//
func (q *Queue) Standard(n int, rng *rand.Rand) Scenario {
	return Scenario{
		Name: "standard",
		Run: func(b *hwtb.Bench) error {
			m := n
			if m > q.Capacity {
				m = q.Capacity
			}
			values := make([]uint64, m)
			for i := range values {
				values[i] = uint64(rng.Intn(256))
			}
			return q.roundTrip(b, values)
		},
	}
}

// Literal returns a scenario that pushes the given values through the queue.
//
func (q *Queue) Literal(values ...uint64) Scenario {
	return Scenario{
		Name: "literal",
		Run: func(b *hwtb.Bench) error {
			if len(values) > q.Capacity {
				return errors.Errorf("%d values exceed queue capacity %d", len(values), q.Capacity)
			}
			return q.roundTrip(b, values)
		},
	}
}

// fill enqueues values from next until full is raised and returns the number
// of values enqueued.
func (q *Queue) fill(b *hwtb.Bench, enq hwtb.ClockHandle, next func(i int) uint64) (int, error) {
	n := 0
	for !b.High("full") {
		if n > q.Capacity {
			return n, b.Assert(false, "full not raised after %d enqueues", n)
		}
		enqueue(b, enq, next(n))
		n++
	}
	return n, nil
}

// drain dequeues until empty is raised, calling check for each value.
func (q *Queue) drain(b *hwtb.Bench, deq hwtb.ClockHandle, check func(i int, v uint64) error) (int, error) {
	q.settle(b, deq)
	n := 0
	for !b.High("empty") {
		if n > q.Capacity {
			return n, b.Assert(false, "empty not raised after %d dequeues", n)
		}
		if err := check(n, dequeue(b, deq)); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Full returns a scenario that saturates the queue with 0xFF, checks that
// enqueuing into a full queue is ignored and drains it.
//
func (q *Queue) Full() Scenario {
	return Scenario{
		Name: "full",
		Run: func(b *hwtb.Bench) error {
			enq, deq, err := q.clocks(b)
			if err != nil {
				return err
			}
			if err = q.checkReset(b); err != nil {
				return err
			}
			if _, err = q.fill(b, enq, func(int) uint64 { return 0xFF }); err != nil {
				return err
			}
			for i := 0; i < 3; i++ {
				enqueue(b, enq, 0x01)
				if err = b.AssertPort("full", 1); err != nil {
					return err
				}
			}
			n, err := q.drain(b, deq, func(i int, v uint64) error {
				return b.Assert(v == 0xFF, "dequeue #%d: data_out = %#02x, expected 0xff", i, v)
			})
			if err != nil {
				return err
			}
			return b.Assert(n == q.Capacity, "drained %d values, expected %d", n, q.Capacity)
		},
	}
}

// Empty returns a scenario that fills and drains the queue, then checks that
// dequeuing from an empty queue changes neither data_out nor the idle probe.
//
func (q *Queue) Empty() Scenario {
	return Scenario{
		Name: "empty",
		Run: func(b *hwtb.Bench) error {
			enq, deq, err := q.clocks(b)
			if err != nil {
				return err
			}
			if err = q.checkReset(b); err != nil {
				return err
			}
			if _, err = q.fill(b, enq, func(i int) uint64 { return uint64(i & 0xFF) }); err != nil {
				return err
			}
			_, err = q.drain(b, deq, func(i int, v uint64) error {
				return b.Assert(v == uint64(i&0xFF), "dequeue #%d: data_out = %#02x, expected %#02x", i, v, i&0xFF)
			})
			if err != nil {
				return err
			}
			out, idle := b.Get("data_out"), b.Get(q.IdleProbe)
			for i := 0; i < 3; i++ {
				dequeue(b, deq)
				if err = b.AssertPort("data_out", out); err != nil {
					return err
				}
				if err = b.AssertPort(q.IdleProbe, idle); err != nil {
					return err
				}
				if err = b.AssertPort("empty", 1); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
