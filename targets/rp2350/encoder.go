//go:build rp2350

package main

import (
	"machine"

	"ttcontrol/input"
)

func newMainEncoder() input.QuadratureCounter {
	enc := input.NewPIOQuadrature(0, 0, machine.Pin(10), machine.Pin(11))
	if err := enc.Init(); err != nil {
		panic("main encoder PIO init: " + err.Error())
	}
	return enc
}
