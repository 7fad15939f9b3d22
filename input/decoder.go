package input

import "ttcontrol/core"

// Debounce/timing constants for the encoder and panel buttons.
const (
	debounceMs        = 20
	doubleClickGapMs  = 400
	backPressMs       = 3000
	exitPressMs       = 5000
	fastStepMs        = 50
	pitchFastStepMs   = 30
	globalBtnCooldown = 200
	pitchResetPressMs = 2000
)

// PinMap names every pin the decoder reads directly. The main encoder's
// quadrature signal is not here — that comes in through a
// QuadratureCounter, which on real hardware is backed by the PIO state
// machine in pio_quadrature.go.
type PinMap struct {
	MainSW core.GPIOPin

	PitchEnabled bool
	PitchCLK     core.GPIOPin
	PitchDT      core.GPIOPin
	PitchSW      core.GPIOPin

	SpeedButtonEnabled bool
	SpeedButton        core.GPIOPin

	StartStopButtonEnabled bool
	StartStopButton        core.GPIOPin

	StandbyButtonEnabled bool
	StandbyButton        core.GPIOPin
}

// Decoder is the software half of input handling: debouncing, click
// classification, acceleration, and pitch-encoder polling, all driven by
// an injected clock so it is deterministic under test. Encoder position
// arrives through QuadratureCounter, which on real hardware is backed by
// a PIO state machine sampling the pins; its FIFO is drained and decoded
// in software on each Position call, with no interrupt involved.
type Decoder struct {
	gpio    core.GPIODriver
	pins    PinMap
	counter QuadratureCounter
	clock   func() uint32

	lastEncoderPosition int32
	encDelta            int
	lastEncTime         uint32
	encAccel            int

	pitchLastClk bool
	pitchDelta   int
	lastPitchTime uint32
	pitchAccel    int

	pitchBtnState    bool
	pitchBtnDownTime uint32
	pendingPitchEvent Event

	btnPressed            bool
	btnPressTime          uint32
	waitingForDoubleClick bool
	doubleClickTimer      uint32
	clickCount            int
	lastBtnState          bool
	lastBtnChange         uint32

	speedBtnState     bool
	speedBtnTime      uint32
	startStopBtnState bool
	startStopBtnTime  uint32
	standbyBtnState   bool
	standbyBtnTime    uint32

	pendingEvent Event

	injectedDelta int
	injectedBtn   bool
}

func NewDecoder(gpio core.GPIODriver, pins PinMap, counter QuadratureCounter, clock func() uint32) *Decoder {
	return &Decoder{
		gpio:    gpio,
		pins:    pins,
		counter: counter,
		clock:   clock,

		pitchLastClk: true, // idle pull-up state

		speedBtnState:     true,
		startStopBtnState: true,
		standbyBtnState:   true,
	}
}

func (d *Decoder) Begin() {
	_ = d.gpio.ConfigureInputPullUp(d.pins.MainSW)
	if d.pins.PitchEnabled {
		_ = d.gpio.ConfigureInputPullUp(d.pins.PitchCLK)
		_ = d.gpio.ConfigureInputPullUp(d.pins.PitchDT)
		d.pitchLastClk = d.gpio.ReadPin(d.pins.PitchCLK)
		_ = d.gpio.ConfigureInputPullUp(d.pins.PitchSW)
	}
	if d.pins.SpeedButtonEnabled {
		_ = d.gpio.ConfigureInputPullUp(d.pins.SpeedButton)
	}
	if d.pins.StartStopButtonEnabled {
		_ = d.gpio.ConfigureInputPullUp(d.pins.StartStopButton)
	}
	if d.pins.StandbyButtonEnabled {
		_ = d.gpio.ConfigureInputPullUp(d.pins.StandbyButton)
	}
}

// Update polls every input source once. Call it from the control core's
// main loop.
func (d *Decoder) Update() {
	now := d.clock()

	d.updateMainEncoder(now)
	if d.pins.PitchEnabled {
		d.updatePitchEncoder(now)
		d.updatePitchButton(now)
	}
	d.updateMainButton(now)
}

func (d *Decoder) updateMainEncoder(now uint32) {
	pos := d.counter.Position()
	delta := int(pos - d.lastEncoderPosition)
	d.lastEncoderPosition = pos

	if d.injectedDelta != 0 {
		delta += d.injectedDelta
		d.injectedDelta = 0
	}

	if delta == 0 {
		return
	}

	if now-d.lastEncTime < fastStepMs {
		d.encAccel++
		if d.encAccel > 5 {
			delta *= 5
		} else if d.encAccel > 2 {
			delta *= 2
		}
	} else {
		d.encAccel = 0
	}
	d.lastEncTime = now

	d.encDelta += delta

	if delta > 0 {
		d.pendingEvent = EventNavUp
	} else {
		d.pendingEvent = EventNavDown
	}
}

func (d *Decoder) updatePitchEncoder(now uint32) {
	delta := d.readPitchEncoder()
	if delta == 0 {
		return
	}

	if now-d.lastPitchTime < pitchFastStepMs {
		d.pitchAccel++
		if d.pitchAccel > 5 {
			delta *= 2
		}
	} else {
		d.pitchAccel = 0
	}
	d.lastPitchTime = now
	d.pitchDelta += delta
}

func (d *Decoder) readPitchEncoder() int {
	clk := d.gpio.ReadPin(d.pins.PitchCLK)
	delta := 0
	if clk != d.pitchLastClk {
		if d.gpio.ReadPin(d.pins.PitchDT) != clk {
			delta = 1
		} else {
			delta = -1
		}
	}
	d.pitchLastClk = clk
	return delta
}

// updatePitchButton classifies the dedicated pitch-encoder button: a
// short press toggles the pitch range, a press held past
// pitchResetPressMs resets pitch to zero instead.
func (d *Decoder) updatePitchButton(now uint32) {
	pressed := !d.gpio.ReadPin(d.pins.PitchSW)

	if pressed && !d.pitchBtnState {
		d.pitchBtnDownTime = now
	} else if !pressed && d.pitchBtnState {
		duration := now - d.pitchBtnDownTime
		if duration >= pitchResetPressMs {
			d.pendingPitchEvent = EventPitchReset
		} else {
			d.pendingPitchEvent = EventPitchToggleRange
		}
	}
	d.pitchBtnState = pressed
}

func (d *Decoder) updateMainButton(now uint32) {
	btnState := !d.gpio.ReadPin(d.pins.MainSW) || d.injectedBtn
	if d.injectedBtn {
		d.injectedBtn = false
	}

	if btnState != d.lastBtnState {
		d.lastBtnChange = now
		d.lastBtnState = btnState
	}

	if now-d.lastBtnChange > debounceMs {
		if btnState && !d.btnPressed {
			d.btnPressed = true
			d.btnPressTime = now
		} else if !btnState && d.btnPressed {
			d.btnPressed = false
			duration := now - d.btnPressTime

			switch {
			case duration >= exitPressMs:
				d.pendingEvent = EventExit
			case duration >= backPressMs:
				d.pendingEvent = EventBack
			default:
				if d.waitingForDoubleClick {
					d.clickCount++
				} else {
					d.waitingForDoubleClick = true
					d.doubleClickTimer = now
					d.clickCount = 1
				}
			}
		}
	}

	if d.waitingForDoubleClick && now-d.doubleClickTimer > doubleClickGapMs {
		d.waitingForDoubleClick = false
		if d.clickCount == 2 {
			d.pendingEvent = EventDoubleClick
		} else {
			d.pendingEvent = EventSelect
		}
	}
}

// GetEvent returns and consumes the pending high-level event.
func (d *Decoder) GetEvent() Event {
	e := d.pendingEvent
	d.pendingEvent = EventNone
	return e
}

// GetPitchEvent returns and consumes the pending pitch-button event,
// kept separate from GetEvent since the pitch button is independent
// hardware from the main encoder's button.
func (d *Decoder) GetPitchEvent() Event {
	e := d.pendingPitchEvent
	d.pendingPitchEvent = EventNone
	return e
}

// GetEncoderDelta returns and consumes the accumulated raw delta, for
// smooth value editing where individual NavUp/NavDown events are too
// coarse.
func (d *Decoder) GetEncoderDelta() int {
	v := d.encDelta
	d.encDelta = 0
	return v
}

func (d *Decoder) GetPitchDelta() int {
	v := d.pitchDelta
	d.pitchDelta = 0
	return v
}

func (d *Decoder) IsButtonDown() bool { return d.btnPressed }

// InjectDelta and InjectButton feed synthetic input into the next Update,
// so the decoder can be driven without physical hardware.
func (d *Decoder) InjectDelta(delta int) { d.injectedDelta += delta }
func (d *Decoder) InjectButton(pressed bool) {
	if pressed {
		d.injectedBtn = true
	}
}

func (d *Decoder) IsSpeedButtonPressed() bool {
	return d.pollGlobalButton(d.pins.SpeedButtonEnabled, d.pins.SpeedButton, &d.speedBtnState, &d.speedBtnTime)
}

func (d *Decoder) IsStartStopPressed() bool {
	return d.pollGlobalButton(d.pins.StartStopButtonEnabled, d.pins.StartStopButton, &d.startStopBtnState, &d.startStopBtnTime)
}

func (d *Decoder) IsStandbyPressed() bool {
	return d.pollGlobalButton(d.pins.StandbyButtonEnabled, d.pins.StandbyButton, &d.standbyBtnState, &d.standbyBtnTime)
}

// pollGlobalButton implements the idle-high-to-pressed edge, 200ms-cooldown
// pattern shared by the three optional panel buttons.
func (d *Decoder) pollGlobalButton(enabled bool, pin core.GPIOPin, state *bool, lastTime *uint32) bool {
	if !enabled {
		return false
	}
	reading := d.gpio.ReadPin(pin)
	now := d.clock()
	if !reading && *state && now-*lastTime > globalBtnCooldown {
		*lastTime = now
		*state = false
		return true
	}
	if reading {
		*state = true
	}
	return false
}
