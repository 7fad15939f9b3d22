package waveform

import "testing"

func TestPortSetFrequencyIsReadableImmediately(t *testing.T) {
	ex := NewExchange(DDSState{})
	eng := NewEngine(NewLUT(1024), ex)
	p := NewPort(ex, eng)

	p.SetFrequencyHz(67.5)
	if got := p.Frequency(); got != 67.5 {
		t.Errorf("got %v, want 67.5", got)
	}
}

func TestPortUpdateSettingsPublishesAllFieldsTogether(t *testing.T) {
	ex := NewExchange(DDSState{})
	eng := NewEngine(NewLUT(1024), ex)
	p := NewPort(ex, eng)

	p.UpdateSettings(113.5, [4]float64{0, 90, 120, 240}, 4, FilterIIR, 0.5, FIRMedium)

	if got := p.Frequency(); got != 113.5 {
		t.Errorf("Frequency = %v, want 113.5", got)
	}

	d := NewMemDriver()
	eng.SetEnabled(true)
	eng.RefillOnce(d)
	active := ex.Active()
	if active.PhaseMode != 4 {
		t.Errorf("PhaseMode = %v, want 4", active.PhaseMode)
	}
	if active.FilterKind != FilterIIR {
		t.Errorf("FilterKind = %v, want FilterIIR", active.FilterKind)
	}
}

func TestPortSetEnabled(t *testing.T) {
	ex := NewExchange(DDSState{})
	eng := NewEngine(NewLUT(1024), ex)
	p := NewPort(ex, eng)

	if p.Enabled() {
		t.Error("expected disabled by default")
	}
	p.SetEnabled(true)
	if !p.Enabled() {
		t.Error("expected enabled after SetEnabled(true)")
	}
}
