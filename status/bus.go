// Package status exposes the small set of scalars the UI and CLI need to
// read from either core without ever blocking the core that owns them.
package status

import (
	"math"
	"sync/atomic"
)

// Bus is a set of independently-updated atomics, not a single snapshot —
// readers may observe motor state and frequency from slightly different
// instants, which is acceptable for a status display but would not be for
// the DDS parameter exchange (that's waveform.Exchange's job instead).
type Bus struct {
	motorState         atomic.Uint32
	currentFrequency   atomic.Uint64 // float64 bits
	currentPitchPct    atomic.Uint64 // float64 bits
	systemInitialised  atomic.Bool
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) SetMotorState(s uint32) { b.motorState.Store(s) }
func (b *Bus) MotorState() uint32     { return b.motorState.Load() }

func (b *Bus) SetFrequency(hz float64) { b.currentFrequency.Store(math.Float64bits(hz)) }
func (b *Bus) Frequency() float64      { return math.Float64frombits(b.currentFrequency.Load()) }

func (b *Bus) SetPitchPercent(p float64) { b.currentPitchPct.Store(math.Float64bits(p)) }
func (b *Bus) PitchPercent() float64     { return math.Float64frombits(b.currentPitchPct.Load()) }

func (b *Bus) SetSystemInitialised(v bool) { b.systemInitialised.Store(v) }
func (b *Bus) SystemInitialised() bool     { return b.systemInitialised.Load() }
