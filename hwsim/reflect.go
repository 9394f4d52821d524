// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Updater is the interface that custom components built using reflection must implement.
// See MakePart.
//
type Updater interface {
	Update(*Circuit)
}

// MakePart wraps an Updater into a custom component.
// Input/output pins are identified by field tags.
//
// The field tag must be `hw:"in"` or `hw:"out"` to identify input and output
// pins. By default, the pin name is the field name in lowercase. A specific
// pin name can be forced by adding it in the tag: `hw:"in,pin_name"`.
//
// Pins must be of type int and buses arrays of int. Untagged fields are left
// alone and can hold the component's internal state: each mounted instance
// gets its own zero value of the struct.
//
func MakePart(t Updater) *PartSpec {
	typ := reflect.TypeOf(t)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if k := typ.Kind(); k != reflect.Struct {
		panic(errors.Errorf("unsupported type %q for %q", k, typ.Name()))
	}

	sp := &PartSpec{
		Name: typ.Name(),
	}

	for _, f := range pinFields(typ) {
		names := []string{f.pin}
		if f.bus > 0 {
			names = make([]string, f.bus)
			for i := range names {
				names[i] = BusPinName(f.pin, i)
			}
		}
		if f.input {
			sp.Inputs = append(sp.Inputs, names...)
		} else {
			sp.Outputs = append(sp.Outputs, names...)
		}
	}
	sp.Mount = mountPart(typ)
	return sp
}

type pinField struct {
	index int
	pin   string
	input bool
	bus   int // bus width, 0 for single pins
}

func pinFields(typ reflect.Type) []pinField {
	var fs []pinField
	n := typ.NumField()
	for i := 0; i < n; i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		pf := pinField{index: i, pin: strings.ToLower(f.Name)}
		tv := strings.Split(tag, ",")
		if len(tv) > 1 && tv[1] != "" {
			pf.pin = tv[1]
		}
		switch tv[0] {
		case "in":
			pf.input = true
		case "out":
		default:
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}

		ft := f.Type
		switch k := ft.Kind(); {
		case k == reflect.Array && ft.Elem().Kind() == reflect.Int:
			pf.bus = ft.Len()
		case k == reflect.Int:
		default:
			panic(errors.Errorf("unsupported type %q for field %q in %q", k, f.Name, typ.Name()))
		}
		fs = append(fs, pf)
	}
	return fs
}

func mountPart(typ reflect.Type) MountFn {
	fs := pinFields(typ)
	return func(s *Socket) []Component {
		v := reflect.New(typ)
		e := v.Elem()
		for _, f := range fs {
			fv := e.Field(f.index)
			if f.bus > 0 {
				for i := 0; i < f.bus; i++ {
					fv.Index(i).SetInt(int64(s.Pin(f.pin + "[" + strconv.Itoa(i) + "]")))
				}
				continue
			}
			fv.SetInt(int64(s.Pin(f.pin)))
		}

		comp := v.Interface().(Updater)
		return []Component{comp.Update}
	}
}
