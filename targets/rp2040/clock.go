//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2040 Timer peripheral: a free-running 1MHz microsecond counter that
// survives across Core 0/Core 1 with no synchronisation needed, the
// same register the pico-sdk's time_us_32() reads.
const (
	timerBase    = 0x40054000
	timerRawLReg = timerBase + 0x28
)

var timerRawL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerRawLReg)))

// hardwareMillis is the Clock the whole App tree (motor, decoder,
// settings runtime accounting) is built against; everything downstream
// only ever sees milliseconds, never the underlying microsecond ticks.
func hardwareMillis() uint32 {
	return timerRawL.Get() / 1000
}
