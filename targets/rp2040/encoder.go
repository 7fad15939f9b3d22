//go:build rp2040

package main

import (
	"machine"

	"ttcontrol/input"
)

// newMainEncoder wires the primary rotary encoder (CLK/DT = GPIO 10,11
// per the pin map) to the PIO quadrature decoder, falling back to a
// panic if the state machine can't be claimed — there is no degraded
// mode for a turntable with no speed control.
func newMainEncoder() input.QuadratureCounter {
	enc := input.NewPIOQuadrature(0, 0, machine.Pin(10), machine.Pin(11))
	if err := enc.Init(); err != nil {
		panic("main encoder PIO init: " + err.Error())
	}
	return enc
}
