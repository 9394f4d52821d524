// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// IO parses the pin specification string and returns individual pin
// names in a slice, also expanding bus declarations to individual pin names.
// For example:
//
//	IO("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
// IO panics if spec is malformed. Use ParseIO to get an error instead.
//
func IO(spec string) []string {
	out, err := ParseIO(spec)
	if err != nil {
		panic(err)
	}
	return out
}

// ParseIO is like IO but returns an error if spec is malformed.
//
func ParseIO(spec string) ([]string, error) {
	var out []string
	for _, item := range splitList(spec) {
		name, size, hasSize, err := splitPin(spec, item)
		if err != nil {
			return nil, err
		}
		if !hasSize {
			out = append(out, name)
			continue
		}
		n, err := strconv.Atoi(size)
		if err != nil || n <= 0 {
			return nil, parseError(spec, "invalid bus size "+strconv.Quote(size))
		}
		for i := 0; i < n; i++ {
			out = append(out, BusPinName(name, i))
		}
	}
	return out, nil
}

// ParseConnections parses a connection configuration string and returns the
// corresponding set of wires. The syntax is a comma separated list of
// part_pin=chip_pin assignments where either side can be a single pin, an
// indexed bus pin or a bus range:
//
//	"a=x, b[0..3]=bus[4..7], c[2]=y, d[0..7]=false"
//
// Ranges are expanded so that the returned W maps individual part pins to
// individual chip pins.
//
func ParseConnections(conns string) (W, error) {
	w := make(W)
	for _, item := range splitList(conns) {
		i := strings.IndexRune(item, '=')
		if i < 0 {
			return nil, parseError(conns, "expected '=' in "+strconv.Quote(item))
		}
		lhs, rhs := strings.TrimSpace(item[:i]), strings.TrimSpace(item[i+1:])
		if err := checkPinRef(conns, lhs); err != nil {
			return nil, err
		}
		if err := checkPinRef(conns, rhs); err != nil {
			return nil, err
		}
		if err := w.add(lhs, rhs); err != nil {
			return nil, errors.Wrap(err, "in "+strconv.Quote(conns))
		}
	}
	return w, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// splitPin splits "name[size]" into its components.
func splitPin(in, item string) (name, size string, hasSize bool, err error) {
	name = item
	if i := strings.IndexRune(item, '['); i >= 0 {
		if !strings.HasSuffix(item, "]") {
			return "", "", false, parseError(in, "missing close bracket in "+strconv.Quote(item))
		}
		name, size, hasSize = item[:i], item[i+1:len(item)-1], true
	}
	if !isIdent(name) {
		return "", "", false, parseError(in, "expected pin name, got "+strconv.Quote(item))
	}
	return name, size, hasSize, nil
}

func checkPinRef(in, ref string) error {
	_, idx, hasIdx, err := splitPin(in, ref)
	if err != nil || !hasIdx {
		return err
	}
	parts := strings.Split(idx, "..")
	if len(parts) > 2 {
		return parseError(in, "invalid range in "+strconv.Quote(ref))
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			return parseError(in, "integer value expected in "+strconv.Quote(ref))
		}
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

func parseError(in string, msg string) error {
	return errors.Errorf("in %q: %s", in, msg)
}
