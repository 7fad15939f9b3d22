package waveform

import (
	"math"
	"math/bits"
)

// LUT is a precomputed one-period sine table. The phase accumulator is
// treated as a 32-bit fractional turn: the high log2(size) bits index the
// table, the next 10 bits form a linear-interpolation fraction between the
// indexed sample and its successor (wrapping at the table end).
//
// The amplitude is applied after interpolation, by the caller — the LUT
// itself stays amplitude-free so one table serves every amplitude level
// without recomputation.
type LUT struct {
	table []int32 // signed ±511 range
	shift uint32  // 32 - log2(len(table))
	size  uint32
}

// Supported build-time table sizes.
const (
	LUTSize1024  = 1024
	LUTSize2048  = 2048
	LUTSize4096  = 4096
	LUTSize8192  = 8192
	LUTSize16384 = 16384
)

// NewLUT generates a table of the given power-of-two size from sin(2*pi*i/N)
// scaled to +/-511. Panics if size is not a power of two — this is a build-
// time configuration error, not a runtime condition.
func NewLUT(size int) *LUT {
	if size <= 0 || size&(size-1) != 0 {
		panic("waveform: LUT size must be a power of two")
	}
	table := make([]int32, size)
	for i := 0; i < size; i++ {
		angle := 2 * math.Pi * float64(i) / float64(size)
		table[i] = int32(math.Round(math.Sin(angle) * 511.0))
	}
	log2Size := bits.Len32(uint32(size)) - 1
	return &LUT{
		table: table,
		shift: uint32(32 - log2Size),
		size:  uint32(size),
	}
}

// Interpolate returns the sine sample for a 32-bit fractional-turn phase,
// linearly interpolated between the two nearest table entries.
func (l *LUT) Interpolate(phase uint32) int32 {
	index := phase >> l.shift
	frac := (phase >> (l.shift - 10)) & 0x3FF

	nextIndex := index + 1
	if nextIndex >= l.size {
		nextIndex = 0
	}

	s1 := l.table[index]
	s2 := l.table[nextIndex]
	return s1 + ((s2-s1)*int32(frac))>>10
}

// Size returns the number of entries in the table.
func (l *LUT) Size() int { return int(l.size) }
