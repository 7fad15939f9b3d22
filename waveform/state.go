package waveform

import (
	"math"
	"sync/atomic"
)

// phaseIncPerHz is 2^32 / PWMFreqHz, the DDS scale factor converting a
// target frequency in Hz into a 32-bit phase increment per PWM tick.
const phaseIncPerHz = 4294967296.0 / PWMFreqHz

// DDSState is one complete snapshot of everything the synthesis loop needs
// to generate the next sample: target frequency (as a phase increment),
// per-channel phase offsets, amplitude, active channel count and the
// smoothing filter configuration. It is the unit exchanged between the
// control core and the refill task.
type DDSState struct {
	Frequency      float64    // Hz, signed (negative = reversed direction for braking)
	PhaseIncrement uint32     // signed frequency folded into unsigned wraparound
	PhaseOffset    [4]uint32  // per-channel offset in 32-bit turns
	Amplitude      float64    // 0.0-1.0
	PhaseMode      uint8      // number of active channels, 1-4
	FilterKind     FilterKind
	IIRAlpha       float64
	FIRProfile     FIRProfile
}

// SetFrequencyHz derives the phase increment for a (possibly negative,
// for reversed-direction braking) target frequency in Hz.
func (s *DDSState) SetFrequencyHz(hz float64) {
	s.Frequency = hz
	inc := math.Round(hz * phaseIncPerHz)
	s.PhaseIncrement = uint32(int64(inc))
}

// SetPhaseOffsetDegrees stores a channel's phase offset given in degrees,
// converting into the 32-bit turn representation used by the accumulator.
func (s *DDSState) SetPhaseOffsetDegrees(channel int, degrees float64) {
	turns := degrees / 360.0
	s.PhaseOffset[channel] = uint32(int64(turns * 4294967296.0))
}

// Exchange is the lock-free double-buffered parameter handoff between the
// control core (writer of "pending") and the DDS refill task (owner of
// "active", and the only party allowed to swap the two).
//
// Protocol: the control core always fetches the current pending pointer
// fresh via Pending(), writes whichever fields changed, then calls
// Publish(). At the start of its next buffer refill the DDS side checks
// PublishRequested(); if set, it swaps active and pending, copies the
// (now-active) new values forward into the freed pending slot so that a
// subsequent partial write from the control core never resurrects stale
// fields, then clears the flag.
type Exchange struct {
	blocks         [2]DDSState
	active         atomic.Pointer[DDSState]
	pending        atomic.Pointer[DDSState]
	publishPending atomic.Bool
}

// NewExchange returns an Exchange with both blocks initialized to the same
// starting state.
func NewExchange(initial DDSState) *Exchange {
	e := &Exchange{}
	e.blocks[0] = initial
	e.blocks[1] = initial
	e.active.Store(&e.blocks[0])
	e.pending.Store(&e.blocks[1])
	return e
}

// Pending returns the block the control core should write into. Must be
// re-fetched after every Publish — the pointer may change on the next
// swap.
func (e *Exchange) Pending() *DDSState {
	return e.pending.Load()
}

// Publish signals that the pending block holds a complete update and
// should be adopted at the next buffer boundary.
func (e *Exchange) Publish() {
	e.publishPending.Store(true)
}

// Active returns the block the synthesis loop should read from.
func (e *Exchange) Active() *DDSState {
	return e.active.Load()
}

// MaybeSwap is called by the refill task at the start of each buffer fill.
// If a publish is pending it performs the swap-then-copy-forward and
// reports true.
func (e *Exchange) MaybeSwap() bool {
	if !e.publishPending.Load() {
		return false
	}
	oldActive := e.active.Load()
	newActive := e.pending.Load()
	e.active.Store(newActive)
	e.pending.Store(oldActive)
	*oldActive = *newActive
	e.publishPending.Store(false)
	return true
}
