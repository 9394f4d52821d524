package hwlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hl "github.com/db47h/hwtb/hwlib"
	"github.com/db47h/hwtb/hwtest"
)

func TestFIFO(t *testing.T) {
	m := hwtest.NewModel(t, hl.FIFO(2, 8))

	m.Set("reset", 1)
	hwtest.Cycle(m, "clock", 1)
	m.Set("reset", 0)
	m.Eval()
	require.EqualValues(t, 1, m.Get("empty"))
	require.EqualValues(t, 0, m.Get("full"))

	// 5 enqueues on a 4 words FIFO, the last one is dropped.
	m.Set("enqueue", 1)
	for i := 1; i <= 5; i++ {
		m.Set("data_in", uint64(i))
		hwtest.Cycle(m, "clock", 1)
		n := i
		if n > 4 {
			n = 4
		}
		require.EqualValues(t, n, m.Get("count"))
		assert.Equal(t, n == 4, m.Get("full") == 1, "full after %d enqueues", i)
		assert.EqualValues(t, 0, m.Get("empty"))
	}
	require.EqualValues(t, 0, m.Get("enq_addr"))

	m.Set("enqueue", 0)
	m.Set("dequeue", 1)
	for i := 1; i <= 4; i++ {
		hwtest.Cycle(m, "clock", 1)
		require.EqualValues(t, i, m.Get("data_out"))
		assert.Equal(t, i == 4, m.Get("empty") == 1, "empty after %d dequeues", i)
	}

	// dequeue past empty
	for i := 0; i < 3; i++ {
		hwtest.Cycle(m, "clock", 1)
		require.EqualValues(t, 4, m.Get("data_out"))
		require.EqualValues(t, 0, m.Get("deq_addr"))
		require.EqualValues(t, 1, m.Get("empty"))
	}
}

func TestFIFO_simultaneous(t *testing.T) {
	m := hwtest.NewModel(t, hl.FIFO(2, 8))
	m.Set("enqueue", 1)
	m.Set("data_in", 0x42)
	hwtest.Cycle(m, "clock", 1)

	// enqueue and dequeue on the same edge keep the count
	m.Set("dequeue", 1)
	m.Set("data_in", 0x43)
	hwtest.Cycle(m, "clock", 1)
	require.EqualValues(t, 0x42, m.Get("data_out"))
	require.EqualValues(t, 1, m.Get("count"))

	// reset while not empty
	m.Set("enqueue", 0)
	m.Set("dequeue", 0)
	m.Set("reset", 1)
	hwtest.Cycle(m, "clock", 1)
	assert.EqualValues(t, 1, m.Get("empty"))
	assert.EqualValues(t, 0, m.Get("deq_addr"))
	assert.EqualValues(t, 0, m.Get("data_out"))
}
