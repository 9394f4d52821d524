// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package hwsim provides a naive cycle based hardware simulator, using Go as a
hardware description language.

Parts are described by a PartSpec whose Mount function returns closures
(Components) updating output pins from input pins. Parts are composed into
chips with Chip, and chips are mounted into a runnable Circuit.

Wire states are double buffered: each Step computes the next frame from the
previous one. Settle steps the circuit until it stops changing, which is what
a test bench expects from an "eval" operation. Clocks are plain input pins:
clocked parts track them with an Edge and update their state on rising edges.

Model wraps a part into a circuit with named input, output and probe ports,
which is the interface used by test benches.
*/
package hwsim
