package waveform

import "testing"

func newTestState(freqHz, amplitude float64, phaseMode uint8) DDSState {
	var s DDSState
	s.SetFrequencyHz(freqHz)
	s.Amplitude = amplitude
	s.PhaseMode = phaseMode
	s.FilterKind = FilterNone
	return s
}

func TestEngineDisabledProducesSilence(t *testing.T) {
	lut := NewLUT(1024)
	ex := NewExchange(newTestState(50, 1.0, 4))
	eng := NewEngine(lut, ex)
	eng.SetEnabled(false)

	d := NewMemDriver()
	eng.RefillOnce(d)

	sliceA, sliceB := d.BufferWords(0)
	wantLow := uint32(PWMCenter)
	wantWord := wantLow | wantLow<<16
	for i, w := range sliceA {
		if w != wantWord {
			t.Fatalf("sliceA[%d] = %#x, want %#x (centered/silent)", i, w, wantWord)
		}
	}
	for i, w := range sliceB {
		if w != wantWord {
			t.Fatalf("sliceB[%d] = %#x, want %#x (centered/silent)", i, w, wantWord)
		}
	}
}

func TestEnginePhaseModeGatesChannels(t *testing.T) {
	lut := NewLUT(1024)
	ex := NewExchange(newTestState(1000, 1.0, 2))
	eng := NewEngine(lut, ex)
	eng.SetEnabled(true)

	d := NewMemDriver()
	eng.RefillOnce(d)

	_, sliceB := d.BufferWords(0)
	for i, w := range sliceB {
		low := int32(w&0xFFFF) - PWMCenter
		high := int32(w>>16) - PWMCenter
		if low != 0 || high != 0 {
			t.Fatalf("tick %d: channels 2,3 should be silent under phase mode 2, got low=%d high=%d", i, low, high)
		}
	}
}

func TestEngineClampsToPWMRange(t *testing.T) {
	lut := NewLUT(1024)
	ex := NewExchange(newTestState(5000, 1.0, 4))
	eng := NewEngine(lut, ex)
	eng.SetEnabled(true)

	d := NewMemDriver()
	eng.RefillOnce(d)

	sliceA, sliceB := d.BufferWords(0)
	check := func(words []uint32) {
		for _, w := range words {
			low := w & 0xFFFF
			high := w >> 16
			if low > PWMMax || high > PWMMax {
				t.Fatalf("word %#x has a channel outside [0,%d]", w, PWMMax)
			}
		}
	}
	check(sliceA)
	check(sliceB)
}

func TestEngineAdvancesPhaseAccumulator(t *testing.T) {
	lut := NewLUT(1024)
	ex := NewExchange(newTestState(50, 1.0, 4))
	eng := NewEngine(lut, ex)
	eng.SetEnabled(true)

	d := NewMemDriver()
	before := eng.phaseAcc
	eng.RefillOnce(d)
	after := eng.phaseAcc

	state := ex.Active()
	want := before + state.PhaseIncrement*BufferWords
	if after != want {
		t.Errorf("phase accumulator = %d, want %d", after, want)
	}
}

func TestEngineCommitsAlternatingHalves(t *testing.T) {
	lut := NewLUT(1024)
	ex := NewExchange(newTestState(50, 0.5, 4))
	eng := NewEngine(lut, ex)
	eng.SetEnabled(true)

	d := NewMemDriver()
	eng.RefillOnce(d)
	eng.RefillOnce(d)

	if d.Commits(0) != 1 || d.Commits(1) != 1 {
		t.Errorf("expected one commit per half, got %d/%d", d.Commits(0), d.Commits(1))
	}
}

func TestEnginePublishAppliesAtBufferBoundary(t *testing.T) {
	lut := NewLUT(1024)
	ex := NewExchange(newTestState(50, 0.0, 4))
	eng := NewEngine(lut, ex)
	eng.SetEnabled(true)

	d := NewMemDriver()
	eng.RefillOnce(d) // active amplitude still 0

	pending := ex.Pending()
	pending.Amplitude = 1.0
	ex.Publish()

	eng.RefillOnce(d)
	if ex.Active().Amplitude != 1.0 {
		t.Errorf("active amplitude after second refill = %v, want 1.0", ex.Active().Amplitude)
	}
}
