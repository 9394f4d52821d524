package vcd_test

import (
	"bytes"
	"io/ioutil"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/db47h/hwtb/vcd"
)

type values map[string]uint64

func (v values) Get(name string) uint64 { return v[name] }

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	src := values{}
	w, err := vcd.New(&buf, src, "fifo", vcd.Var{"clock", 1}, vcd.Var{"data", 8}, vcd.Var{"count", 3})
	require.NoError(t, err)

	steps := []struct {
		ts  uint64
		set values
	}{
		{10, nil},
		{20, values{"clock": 1}},
		{30, values{"data": 0xa5, "count": 1}},
		{40, nil},
		{50, values{"clock": 0, "count": 0}},
	}
	for _, s := range steps {
		for k, v := range s.set {
			src[k] = v
		}
		require.NoError(t, w.Dump(s.ts))
	}
	require.NoError(t, w.Close())

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "fifo", buf.Bytes())
}

func TestNew_errors(t *testing.T) {
	var buf bytes.Buffer
	_, err := vcd.New(&buf, values{}, "m")
	require.EqualError(t, err, "no variable to trace")
	_, err = vcd.New(&buf, values{}, "m", vcd.Var{"x", 65})
	require.EqualError(t, err, "variable x: invalid width 65")
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "sdram.vcd")
	vars := make([]vcd.Var, 100)
	for i := range vars {
		vars[i] = vcd.Var{Name: "v" + string(rune('a'+i%26)) + string(rune('a'+i/26)), Width: 1}
	}
	w, err := vcd.Create(name, values{}, "sdram", vars...)
	require.NoError(t, err)
	require.NoError(t, w.Dump(0))
	require.NoError(t, w.Close())

	data, err := ioutil.ReadFile(name)
	require.NoError(t, err)
	s := string(data)
	assert.True(t, strings.HasPrefix(s, "$version hwtb $end\n"))
	assert.Contains(t, s, "$var wire 1 ~ vpd $end\n")
	assert.Contains(t, s, "$var wire 1 !! vqd $end\n")
	assert.Contains(t, s, "$var wire 1 \"! vrd $end\n")

	_, err = vcd.Create(filepath.Join(dir, "nodir", "x.vcd"), values{}, "m", vcd.Var{"x", 1})
	require.Error(t, err)
}
