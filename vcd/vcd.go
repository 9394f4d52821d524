// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package vcd writes Value Change Dump waveform files.
//
// A Writer samples a set of variables from a Source each time Dump is called
// and only records values that changed since the previous sample. It
// implements hwtb.Tracer.
//
package vcd

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Var is a traced variable.
//
type Var struct {
	Name  string
	Width int
}

// Source provides variable values.
//
type Source interface {
	Get(name string) uint64
}

// Writer is a VCD writer.
//
type Writer struct {
	w     *bufio.Writer
	c     io.Closer
	src   Source
	vars  []Var
	ids   []string
	last  []uint64
	dumps int
	err   error
}

// New writes the VCD header for the given variables, in a scope named after
// module, and returns a Writer sampling them from src.
//
func New(w io.Writer, src Source, module string, vars ...Var) (*Writer, error) {
	if len(vars) == 0 {
		return nil, errors.New("no variable to trace")
	}
	vw := &Writer{
		w:    bufio.NewWriter(w),
		src:  src,
		vars: append([]Var(nil), vars...),
		ids:  make([]string, len(vars)),
		last: make([]uint64, len(vars)),
	}
	vw.write("$version hwtb $end\n$timescale 1ns $end\n$scope module " + module + " $end\n")
	for i, v := range vw.vars {
		if v.Width < 1 || v.Width > 64 {
			return nil, errors.Errorf("variable %s: invalid width %d", v.Name, v.Width)
		}
		vw.ids[i] = ident(i)
		ref := v.Name
		if v.Width > 1 {
			ref += " [" + strconv.Itoa(v.Width-1) + ":0]"
		}
		vw.write("$var wire " + strconv.Itoa(v.Width) + " " + vw.ids[i] + " " + ref + " $end\n")
	}
	vw.write("$upscope $end\n$enddefinitions $end\n")
	if vw.err != nil {
		return nil, vw.err
	}
	return vw, nil
}

// Create creates the named file and returns a Writer to it. The file is
// closed by Writer.Close.
//
func Create(path string, src Source, module string, vars ...Var) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "create trace file")
	}
	w, err := New(f, src, module, vars...)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, path)
	}
	w.c = f
	return w, nil
}

// ident returns the short identifier code of the i-th variable, using the
// printable ASCII characters '!' to '~'.
func ident(i int) string {
	var b []byte
	for {
		b = append(b, byte('!'+i%94))
		i /= 94
		if i == 0 {
			break
		}
		i--
	}
	return string(b)
}

func (w *Writer) write(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.WriteString(s)
}

func (w *Writer) value(i int, v uint64) {
	if w.vars[i].Width == 1 {
		w.write(strconv.FormatUint(v&1, 10) + w.ids[i] + "\n")
		return
	}
	w.write("b" + strconv.FormatUint(v, 2) + " " + w.ids[i] + "\n")
}

// Dump samples all variables at time ts. The first call writes all values in a
// $dumpvars section, subsequent calls only write values that changed. Nothing
// is written for a sample without any change.
//
func (w *Writer) Dump(ts uint64) error {
	if w.err != nil {
		return w.err
	}
	stamp := "#" + strconv.FormatUint(ts, 10) + "\n"
	if w.dumps == 0 {
		w.write(stamp + "$dumpvars\n")
		for i, v := range w.vars {
			w.last[i] = w.src.Get(v.Name)
			w.value(i, w.last[i])
		}
		w.write("$end\n")
	} else {
		first := true
		for i, v := range w.vars {
			n := w.src.Get(v.Name)
			if n == w.last[i] {
				continue
			}
			if first {
				w.write(stamp)
				first = false
			}
			w.last[i] = n
			w.value(i, n)
		}
	}
	w.dumps++
	return w.err
}

// Flush writes any buffered data to the underlying writer.
//
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

// Close flushes the writer and closes the underlying file if it was opened by
// Create.
//
func (w *Writer) Close() error {
	err := w.Flush()
	if w.c != nil {
		if e := w.c.Close(); err == nil {
			err = e
		}
		w.c = nil
	}
	return err
}
