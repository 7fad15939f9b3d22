package waveform

import "testing"

func TestLUTZeroCrossings(t *testing.T) {
	lut := NewLUT(1024)
	if v := lut.Interpolate(0); v != 0 {
		t.Errorf("phase 0: got %d, want 0", v)
	}
	quarterTurn := uint32(1) << 30
	v := lut.Interpolate(quarterTurn)
	if v < 500 || v > 511 {
		t.Errorf("phase 2^30 (quarter turn): got %d, want ~511", v)
	}
}

func TestLUTSymmetry(t *testing.T) {
	lut := NewLUT(2048)
	halfTurn := uint32(1) << 31
	peak := lut.Interpolate(uint32(1) << 30)
	trough := lut.Interpolate(halfTurn + (uint32(1) << 30))
	if peak+trough > 2 || peak+trough < -2 {
		t.Errorf("peak %d and trough %d should be near-opposite", peak, trough)
	}
}

func TestLUTRejectsNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-power-of-two size")
		}
	}()
	NewLUT(1000)
}

func TestLUTSizes(t *testing.T) {
	for _, size := range []int{LUTSize1024, LUTSize2048, LUTSize4096, LUTSize8192, LUTSize16384} {
		lut := NewLUT(size)
		if lut.Size() != size {
			t.Errorf("size %d: Size() = %d", size, lut.Size())
		}
	}
}
