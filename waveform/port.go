package waveform

// Port is the control core's narrow view onto a synthesis pipeline: every
// setter writes into the current pending block and immediately publishes
// it — each SetFrequencyHz/SetAmplitude/UpdateSettings call marks its own
// pending state ready rather than batching several fields behind one
// publish.
type Port struct {
	exchange *Exchange
	engine   *Engine
}

func NewPort(exchange *Exchange, engine *Engine) *Port {
	return &Port{exchange: exchange, engine: engine}
}

func (p *Port) SetFrequencyHz(hz float64) {
	s := p.exchange.Pending()
	s.SetFrequencyHz(hz)
	p.exchange.Publish()
}

func (p *Port) SetAmplitude(amp float64) {
	s := p.exchange.Pending()
	s.Amplitude = amp
	p.exchange.Publish()
}

// UpdateSettings applies a full profile switch in one publish: frequency,
// phase offsets, channel count and filter configuration together.
func (p *Port) UpdateSettings(freqHz float64, phaseOffsetsDeg [4]float64, phaseMode uint8, filterKind FilterKind, iirAlpha float64, firProfile FIRProfile) {
	s := p.exchange.Pending()
	s.SetFrequencyHz(freqHz)
	for i, deg := range phaseOffsetsDeg {
		s.SetPhaseOffsetDegrees(i, deg)
	}
	s.PhaseMode = phaseMode
	s.FilterKind = filterKind
	s.IIRAlpha = iirAlpha
	s.FIRProfile = firProfile
	p.exchange.Publish()
}

func (p *Port) SetEnabled(v bool) { p.engine.SetEnabled(v) }
func (p *Port) Enabled() bool     { return p.engine.Enabled() }

// Frequency returns the most recently set target frequency. It reads the
// pending block rather than active: every setter publishes immediately,
// so pending always mirrors the latest value the control core asked for,
// which is what ramp calculations need on the very next tick, before the
// refill task has had a chance to swap.
func (p *Port) Frequency() float64 { return p.exchange.Pending().Frequency }
