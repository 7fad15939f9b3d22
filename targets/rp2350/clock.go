//go:build rp2350

package main

import (
	"runtime/volatile"
	"unsafe"
)

// RP2350's TIMER0 sits at a different base address than RP2040's single
// TIMER block; everything else about the 1MHz free-running microsecond
// counter is the same.
const (
	timerBase    = 0x400B0000
	timerRawLReg = timerBase + 0x28
)

var timerRawL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerRawLReg)))

func hardwareMillis() uint32 {
	return timerRawL.Get() / 1000
}
