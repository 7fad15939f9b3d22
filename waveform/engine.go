package waveform

import "ttcontrol/core"

// PWM/DMA geometry: 50 kHz carrier, two slices of two channels each,
// 256 32-bit words per buffer half, one word per PWM tick packing two
// 10-bit-plus-offset compare values.
const (
	PWMFreqHz   = 50000
	BufferWords = 256
	PWMMax      = 1023
	PWMCenter   = 512
	NumChannels = 4
)

// Driver is the target-specific half of the synthesis loop: PWM slice
// configuration and the DMA ping-pong buffers that the refill task writes
// into. Implementations live under targets/ — Engine itself never touches
// hardware registers.
type Driver interface {
	// WaitBufferFree blocks until a buffer half is safe to overwrite and
	// returns its index (0 or 1).
	WaitBufferFree() int
	// BufferWords returns the writable word slices for PWM slice A
	// (channels 0,1) and slice B (channels 2,3) of the given half.
	// Each slice must have length BufferWords.
	BufferWords(half int) (sliceA, sliceB []uint32)
	// Commit marks half as filled and arms it for DMA consumption.
	Commit(half int)
}

// Engine is the DDS refill task: it owns the master phase accumulator,
// the LUT, and the per-channel filter histories, and is the only party
// permitted to call Exchange.MaybeSwap.
type Engine struct {
	lut      *LUT
	exchange *Exchange
	filters  [NumChannels]ChannelFilter
	phaseAcc uint32
	enabled  bool
}

func NewEngine(lut *LUT, exchange *Exchange) *Engine {
	return &Engine{lut: lut, exchange: exchange}
}

// SetEnabled gates sample generation; while disabled every tick is
// written as the centered (silent) PWM value.
func (e *Engine) SetEnabled(v bool) { e.enabled = v }

func (e *Engine) Enabled() bool { return e.enabled }

// RefillOnce services one buffer-free signal from the driver: it swaps in
// any pending parameter update, synthesises 256 ticks for the active
// channel count, and commits the half back to the driver. The active
// state is fetched once at the start of the fill and held for the whole
// half, so a publish mid-fill never tears a buffer: frequency and other
// parameter steps are quantised to buffer boundaries.
func (e *Engine) RefillOnce(d Driver) {
	half := d.WaitBufferFree()
	if e.exchange.MaybeSwap() {
		// Never block the refill task for this; a dropped trace line is
		// fine, a missed buffer deadline is not.
		core.DebugAsync("[waveform] parameter swap applied at buffer boundary")
	}

	sliceA, sliceB := d.BufferWords(half)
	state := e.exchange.Active()

	if !e.enabled {
		silence := packWord(0, 0)
		for i := 0; i < BufferWords; i++ {
			sliceA[i] = silence
			sliceB[i] = silence
		}
		d.Commit(half)
		return
	}

	var samples [NumChannels]int32
	for i := 0; i < BufferWords; i++ {
		for ch := 0; ch < NumChannels; ch++ {
			if ch >= int(state.PhaseMode) {
				samples[ch] = 0
				continue
			}
			raw := e.lut.Interpolate(e.phaseAcc + state.PhaseOffset[ch])
			scaled := int32(float64(raw) * state.Amplitude)
			samples[ch] = e.filters[ch].Apply(scaled, state.FilterKind, state.IIRAlpha, state.FIRProfile)
		}
		e.phaseAcc += state.PhaseIncrement

		sliceA[i] = packWord(samples[0], samples[1])
		sliceB[i] = packWord(samples[2], samples[3])
	}

	d.Commit(half)
}

// packWord centers two signed samples at PWMCenter, clamps to the PWM
// compare range, and packs them into one 32-bit DMA word (low, high).
func packWord(low, high int32) uint32 {
	return uint32(clampPWM(low)) | uint32(clampPWM(high))<<16
}

func clampPWM(sample int32) int32 {
	v := sample + PWMCenter
	if v < 0 {
		return 0
	}
	if v > PWMMax {
		return PWMMax
	}
	return v
}
