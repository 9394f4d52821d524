// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command hwtb runs the hardware model test suites.
//
//	hwtb run fifo
//	hwtb run all --trace out.vcd -- +verbose
//	hwtb list
//
package main

func main() {
	Execute()
}
