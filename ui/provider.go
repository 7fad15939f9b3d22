// Package ui is deliberately thin: there is no menu tree here (drawing,
// navigation stack, field editors) — this package only consumes the
// status bus and turns input events into the handful of controller
// calls a turntable actually needs day to day.
package ui

import (
	"ttcontrol/input"
	"ttcontrol/motor"
	"ttcontrol/status"
)

// StatusDisplay is the minimal panel surface Provider drives: four
// proportional bars, one per shared-status scalar, rather than a font
// renderer and a menu stack.
type StatusDisplay interface {
	Clear()
	DrawBar(row int, label string, frac float64)
	Show() error
}

// Provider wires a Decoder's discrete events onto the small set of
// controller actions the external-contract UI surface names: start/stop,
// cycle_speed, toggle_standby, set_pitch.
type Provider struct {
	bus     *status.Bus
	ctrl    *motor.Controller
	decoder *input.Decoder
	display StatusDisplay

	pitchStepHz float64
}

func NewProvider(bus *status.Bus, ctrl *motor.Controller, decoder *input.Decoder, display StatusDisplay, pitchStepHz float64) *Provider {
	return &Provider{bus: bus, ctrl: ctrl, decoder: decoder, display: display, pitchStepHz: pitchStepHz}
}

// Update consumes one input poll's worth of decoder state and refreshes
// the status panel. Call it once per control-core tick, after the
// decoder and controller have both been updated.
func (p *Provider) Update() {
	switch p.decoder.GetEvent() {
	case input.EventSelect:
		p.ctrl.ToggleStartStop()
	case input.EventDoubleClick:
		p.ctrl.CycleSpeed()
	case input.EventBack:
		p.ctrl.ToggleStandby()
	case input.EventExit:
		p.ctrl.ResetPitch()
	}

	// A bare rotate of the main encoder steps through speeds.
	if delta := p.decoder.GetEncoderDelta(); delta != 0 {
		p.ctrl.AdjustSpeed(delta)
	}

	// The optional dedicated pitch encoder fine-tunes pitch directly,
	// independent of the main encoder.
	if pitchDelta := p.decoder.GetPitchDelta(); pitchDelta != 0 {
		p.ctrl.AdjustPitchFreq(float64(pitchDelta) * p.pitchStepHz)
	}

	switch p.decoder.GetPitchEvent() {
	case input.EventPitchToggleRange:
		p.ctrl.TogglePitchRange()
	case input.EventPitchReset:
		p.ctrl.ResetPitch()
	}

	// Panel buttons work everywhere, the same as the main encoder's
	// button-gated events above.
	if p.decoder.IsSpeedButtonPressed() {
		p.ctrl.CycleSpeed()
	}
	if p.decoder.IsStartStopPressed() {
		if p.ctrl.State() == motor.Standby {
			p.ctrl.ToggleStandby()
		} else {
			p.ctrl.ToggleStartStop()
		}
	}
	if p.decoder.IsStandbyPressed() {
		p.ctrl.ToggleStandby()
	}

	p.render()
}

func (p *Provider) render() {
	if p.display == nil {
		return
	}
	p.display.Clear()
	p.display.DrawBar(0, "state", float64(p.bus.MotorState())/float64(motor.Stopping))
	p.display.DrawBar(1, "freq", normalizeFrequency(p.bus.Frequency()))
	p.display.DrawBar(2, "pitch", normalizePitch(p.bus.PitchPercent()))
	if p.bus.SystemInitialised() {
		p.display.DrawBar(3, "ready", 1.0)
	} else {
		p.display.DrawBar(3, "ready", 0.0)
	}
	_ = p.display.Show()
}

// normalizeFrequency maps a plausible turntable drive frequency range
// onto 0..1 for the bar display; values outside the range clamp rather
// than wrap.
func normalizeFrequency(hz float64) float64 {
	const maxHz = 150.0
	v := hz / maxHz
	return clamp01(v)
}

// normalizePitch maps +/-50% pitch onto 0..1 with 0% centered at 0.5.
func normalizePitch(pct float64) float64 {
	v := (pct/50.0 + 1.0) / 2.0
	return clamp01(v)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
