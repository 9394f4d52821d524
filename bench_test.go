package hwtb_test

import (
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/hwtb"
	"github.com/db47h/hwtb/hwlib"
	"github.com/db47h/hwtb/hwtest"
)

func TestMain(m *testing.M) {
	// Set DEBUG_TESTS=1 to see bench logs: DEBUG_TESTS=1 go test -v
	if os.Getenv("DEBUG_TESTS") == "" {
		logrus.SetLevel(logrus.WarnLevel)
	}
	os.Exit(m.Run())
}

// fakeModel is a bare port map recording the value of a port at every Eval.
type fakeModel struct {
	vals   map[string]uint64
	watch  string
	seen   []uint64
	evals  int
	closed bool
}

func newFakeModel(watch string) *fakeModel {
	return &fakeModel{vals: make(map[string]uint64), watch: watch}
}

func (m *fakeModel) Set(port string, v uint64) { m.vals[port] = v }
func (m *fakeModel) Get(port string) uint64    { return m.vals[port] }
func (m *fakeModel) Eval() {
	m.evals++
	if m.watch != "" {
		m.seen = append(m.seen, m.vals[m.watch])
	}
}
func (m *fakeModel) Close() error { m.closed = true; return nil }

type fakeTracer struct {
	stamps  []uint64
	flushes int
	err     error
	closed  bool
}

func (t *fakeTracer) Dump(ts uint64) error {
	t.stamps = append(t.stamps, ts)
	return t.err
}
func (t *fakeTracer) Flush() error { t.flushes++; return nil }
func (t *fakeTracer) Close() error { t.closed = true; return nil }

func newBench(t *testing.T, m hwtb.Model, setup hwtb.Setup, opts ...hwtb.Option) *hwtb.Bench {
	t.Helper()
	b, err := hwtb.New(hwtb.NewContext(opts...), m, setup)
	require.NoError(t, err)
	return b
}

func TestNew(t *testing.T) {
	m := newFakeModel("")
	m.vals["data"] = 42
	b := newBench(t, m, hwtb.Setup{Name: "fake", Inputs: []string{"data"}, Clocks: []hwtb.Clock{{"clk", 1}}})
	assert.EqualValues(t, 0, b.Get("data"), "inputs are zeroed")
	assert.False(t, b.High("clk"))
	assert.Equal(t, 1, m.evals)
	assert.EqualValues(t, 0, b.Ticks())
	assert.Same(t, m, b.Model())
	require.NoError(t, b.Close())
	assert.True(t, m.closed)
}

func TestNew_errors(t *testing.T) {
	ctx := hwtb.NewContext()
	td := []struct {
		name  string
		setup hwtb.Setup
		err   string
	}{
		{"no_clock", hwtb.Setup{Name: "m"}, "m: no clock"},
		{"zero_period", hwtb.Setup{Name: "m", Clocks: []hwtb.Clock{{"clk", 0}}}, "m: clock clk: period must be positive"},
		{"duplicate", hwtb.Setup{Name: "m", Clocks: []hwtb.Clock{{"clk", 1}, {"clk", 2}}}, "m: clock clk already registered"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			_, err := hwtb.New(ctx, newFakeModel(""), d.setup)
			require.EqualError(t, err, d.err)
		})
	}

	_, err := hwtb.New(ctx, nil, hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 1}}})
	require.Error(t, err)

	// hwsim models know their input ports
	m := hwtest.NewModel(t, hwlib.Reg(4))
	_, err = hwtb.New(ctx, m, hwtb.Setup{Name: "reg", Clocks: []hwtb.Clock{{"q", 1}}})
	require.EqualError(t, err, "reg: clock: q is not an input port")
	_, err = hwtb.New(ctx, m, hwtb.Setup{Name: "reg", Reset: "reset", Clocks: []hwtb.Clock{{"clk", 1}}})
	require.EqualError(t, err, "reg reset: reset is not an input port")
	b, err := hwtb.New(ctx, m, hwtb.Setup{Name: "reg", Inputs: []string{"en", "d"}, Reset: "rst", Clocks: []hwtb.Clock{{"clk", 1}}})
	require.NoError(t, err)
	b.Set("en", 1)
	b.Set("d", 9)
	b.AwaitRisingEdge(b.Clocks()[0])
	assert.EqualValues(t, 9, b.Get("q"))

	ctx.Close()
	_, err = hwtb.New(ctx, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 1}}})
	require.EqualError(t, err, "simulation context closed")
}

func TestTick(t *testing.T) {
	m := newFakeModel("")
	b := newBench(t, m, hwtb.Setup{Clocks: []hwtb.Clock{{"a", 2}, {"b", 3}}})
	a, _ := b.Clock("a")
	c, _ := b.Clock("b")
	var sa, sb []uint64
	for i := 0; i < 12; i++ {
		b.Tick()
		sa = append(sa, b.Get("a"))
		sb = append(sb, b.Get("b"))
	}
	// ticks:                 1  2  3  4  5  6  7  8  9 10 11 12
	assert.Equal(t, []uint64{0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1, 0}, sa)
	assert.Equal(t, []uint64{0, 0, 1, 1, 1, 0, 0, 0, 1, 1, 1, 0}, sb)
	assert.EqualValues(t, 12, b.Ticks())
	assert.Equal(t, 1+2*12, m.evals, "two evals per tick")
	assert.EqualValues(t, 3, a.Edges())
	assert.EqualValues(t, 2, c.Edges())
	assert.EqualValues(t, 3, c.Period())
	assert.Equal(t, "b", c.Name())
}

func TestTick_evalOrder(t *testing.T) {
	// the model sees the pre-toggle clock level on the first eval of a tick,
	// and the toggled level on the second one.
	m := newFakeModel("clk")
	b := newBench(t, m, hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 1}}})
	m.seen = nil
	b.Run(2)
	assert.Equal(t, []uint64{0, 1, 1, 0}, m.seen)
}

func TestAwaitRisingEdge(t *testing.T) {
	b := newBench(t, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 3}}})
	clk, ok := b.Clock("clk")
	require.True(t, ok)

	n := b.AwaitRisingEdge(clk)
	assert.EqualValues(t, 3, n)
	assert.True(t, clk.High())

	// already high: wait for a full cycle
	n = b.AwaitRisingEdge(clk)
	assert.EqualValues(t, 6, n)
	assert.EqualValues(t, 9, b.Ticks())
	assert.EqualValues(t, 2, clk.Edges())

	// from the middle of a low phase
	b.Run(4)
	require.False(t, clk.High())
	n = b.AwaitRisingEdge(clk)
	assert.EqualValues(t, 2, n)
	assert.True(t, clk.High())
}

func TestAwaitRisingEdge_badHandle(t *testing.T) {
	b := newBench(t, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 1}}})
	other := newBench(t, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 1}}})
	h, _ := other.Clock("clk")
	assert.Panics(t, func() { b.AwaitRisingEdge(h) })
	assert.Panics(t, func() { b.AwaitRisingEdge(hwtb.ClockHandle{}) })
}

func TestAwaitEitherRisingEdge(t *testing.T) {
	b := newBench(t, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"a", 2}, {"b", 3}}})
	a, _ := b.Clock("a")
	c, _ := b.Clock("b")
	type edge struct {
		tick   uint64
		ra, rb bool
	}
	var edges []edge
	for len(edges) < 6 {
		ra, rb := b.AwaitEitherRisingEdge(a, c)
		edges = append(edges, edge{b.Ticks(), ra, rb})
	}
	assert.Equal(t, []edge{
		{2, true, false},
		{3, false, true},
		{6, true, false},
		{9, false, true},
		{10, true, false},
		{14, true, false},
	}, edges)

	// simultaneous edges
	b = newBench(t, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"a", 1}, {"b", 3}}})
	a, _ = b.Clock("a")
	c, _ = b.Clock("b")
	ra, rb := b.AwaitEitherRisingEdge(a, c)
	assert.True(t, ra && !rb)
	assert.EqualValues(t, 1, b.Ticks())
	ra, rb = b.AwaitEitherRisingEdge(a, c)
	assert.True(t, ra && rb)
	assert.EqualValues(t, 3, b.Ticks())
}

func TestReset(t *testing.T) {
	m := newFakeModel("reset")
	b := newBench(t, m, hwtb.Setup{
		Inputs: []string{"enqueue"},
		Reset:  "reset",
		Clocks: []hwtb.Clock{{"a", 2}, {"b", 3}},
	})
	require.EqualValues(t, 6, b.ResetTicks())
	a, _ := b.Clock("a")
	c, _ := b.Clock("b")

	b.Run(5) // arbitrary phase
	b.Set("enqueue", 1)
	ea, eb := a.Edges(), c.Edges()
	m.seen = nil
	b.Reset()

	assert.EqualValues(t, 11, b.Ticks(), "reset does not rewind the tick counter")
	assert.EqualValues(t, 0, b.Get("enqueue"))
	assert.EqualValues(t, 0, b.Get("reset"))
	assert.True(t, a.Edges() > ea, "rising edge on a during reset")
	assert.True(t, c.Edges() > eb, "rising edge on b during reset")
	// 6 ticks with reset high, then the final eval with reset low
	require.Len(t, m.seen, 13)
	for i, v := range m.seen[:12] {
		assert.EqualValues(t, 1, v, "eval %d", i)
	}
	assert.EqualValues(t, 0, m.seen[12])
}

func TestReset_noPort(t *testing.T) {
	b := newBench(t, newFakeModel(""), hwtb.Setup{Inputs: []string{"x"}, Clocks: []hwtb.Clock{{"clk", 3}}})
	b.Set("x", 3)
	b.Reset()
	assert.EqualValues(t, 1, b.Ticks())
	assert.EqualValues(t, 0, b.Get("x"))
}

func TestAttachTrace(t *testing.T) {
	b := newBench(t, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 1}}}, hwtb.WithTimeScale(5))
	tr := &fakeTracer{}
	require.NoError(t, b.AttachTrace(tr))
	b.Run(3)
	assert.Equal(t, []uint64{5, 10, 15}, tr.stamps)
	assert.Equal(t, 3, tr.flushes)

	// replacing a tracer closes the previous one
	tr2 := &fakeTracer{err: errors.New("disk full")}
	require.NoError(t, b.AttachTrace(tr2))
	assert.True(t, tr.closed)
	b.Run(2)
	assert.Len(t, tr2.stamps, 1, "tracer detached after the first error")
	require.EqualError(t, b.Err(), "trace at tick 4: disk full")
	require.EqualError(t, b.Close(), "trace at tick 4: disk full")

	b = newBench(t, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 1}}}, hwtb.WithTracing(false))
	require.EqualError(t, b.AttachTrace(&fakeTracer{}), "tracing disabled")
}

func TestObserve(t *testing.T) {
	b := newBench(t, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 1}}})
	var calls []uint64
	cancel := b.Observe(func(b *hwtb.Bench) error {
		calls = append(calls, b.Ticks())
		if b.Ticks() >= 2 {
			return b.Assert(false, "observer failed at %d", b.Ticks())
		}
		return nil
	})
	b.Run(3)
	cancel()
	b.Run(1)
	assert.Equal(t, []uint64{1, 2, 3}, calls)
	err := b.Err()
	require.EqualError(t, err, "tick 2: observer failed at 2")
	ae, ok := hwtb.AsAssertion(errors.Wrap(err, "wrapped"))
	require.True(t, ok)
	assert.EqualValues(t, 2, ae.Tick)
}

func TestAssertPort(t *testing.T) {
	b := newBench(t, newFakeModel(""), hwtb.Setup{Clocks: []hwtb.Clock{{"clk", 1}}})
	b.Set("data", 0x12)
	require.NoError(t, b.AssertPort("data", 0x12))
	err := b.AssertPort("data", 0xff)
	require.EqualError(t, err, "tick 0: data = 0x12, expected 0xff")
	ae, ok := hwtb.AsAssertion(err)
	require.True(t, ok)
	ae.Scenario = "full"
	assert.Equal(t, "full: tick 0: data = 0x12, expected 0xff", ae.Error())
	_, ok = hwtb.AsAssertion(errors.New("other"))
	assert.False(t, ok)
}

func TestContext(t *testing.T) {
	ctx := hwtb.NewContext(hwtb.WithArgs("+trace"), hwtb.WithTimeScale(0), hwtb.WithLogger(logrus.New()))
	assert.Equal(t, []string{"+trace"}, ctx.Args)
	assert.EqualValues(t, hwtb.DefaultTimeScale, ctx.TimeScale)
	assert.True(t, ctx.Tracing)
	assert.Equal(t, ctx.RunID.String(), ctx.Log.Data["run"])
	assert.NotEqual(t, ctx.RunID, hwtb.NewContext().RunID)
}
