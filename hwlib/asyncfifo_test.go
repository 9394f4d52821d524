package hwlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hl "github.com/db47h/hwtb/hwlib"
	"github.com/db47h/hwtb/hwtest"
)

func TestAsyncFIFO(t *testing.T) {
	f, err := hl.AsyncFIFO(2, 8)
	require.NoError(t, err)
	m := hwtest.NewModel(t, f)

	m.Set("reset", 1)
	hwtest.Cycle(m, "enq_clock", 1)
	hwtest.Cycle(m, "deq_clock", 1)
	m.Set("reset", 0)
	m.Eval()
	require.EqualValues(t, 1, m.Get("empty"))
	require.EqualValues(t, 0, m.Get("full"))

	m.Set("enqueue", 1)
	for i := 1; i <= 5; i++ {
		m.Set("data_in", uint64(0x10+i))
		hwtest.Cycle(m, "enq_clock", 1)
		n := i
		if n > 4 {
			n = 4
		}
		require.EqualValues(t, n, m.Get("enq_ptr"), "enq_ptr after %d enqueues", i)
	}
	m.Set("enqueue", 0)
	m.Eval()
	// the write pointer stops at 4 words
	require.EqualValues(t, 1, m.Get("full"))
	require.EqualValues(t, 4, m.Get("enq_ptr"))

	// empty is pessimistic: the write pointer needs two deq_clock edges
	// through the synchronizer, one more for the flag.
	require.EqualValues(t, 1, m.Get("empty"))
	hwtest.Cycle(m, "deq_clock", 3)
	require.EqualValues(t, 0, m.Get("empty"))

	m.Set("dequeue", 1)
	for i := 1; i <= 4; i++ {
		hwtest.Cycle(m, "deq_clock", 1)
		require.EqualValues(t, 0x10+i, m.Get("data_out"))
		assert.Equal(t, i == 4, m.Get("empty") == 1, "empty after %d dequeues", i)
	}
	require.EqualValues(t, 4, m.Get("deq_ptr"))

	// dequeue while empty
	hwtest.Cycle(m, "deq_clock", 2)
	require.EqualValues(t, 0x14, m.Get("data_out"))
	require.EqualValues(t, 4, m.Get("deq_ptr"))

	// full clears once the read pointer made it to the write side
	hwtest.Cycle(m, "enq_clock", 3)
	require.EqualValues(t, 0, m.Get("full"))
}

func TestAsyncFIFO_badWidth(t *testing.T) {
	_, err := hl.AsyncFIFO(0, 8)
	require.Error(t, err)
}
