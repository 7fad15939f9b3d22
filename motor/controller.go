package motor

import (
	"math"

	"ttcontrol/core"
	"ttcontrol/settings"
	"ttcontrol/status"
	"ttcontrol/waveform"
)

// PinMap names the GPIO pins the controller drives directly — the four
// per-phase mute relays and the standby relay. PWM/DDS output pins belong
// to the waveform driver, not here.
type PinMap struct {
	StandbyRelay core.GPIOPin
	MutePhaseA   core.GPIOPin
	MutePhaseB   core.GPIOPin
	MutePhaseC   core.GPIOPin
	MutePhaseD   core.GPIOPin
}

// Controller is the turntable's state machine: it owns no hardware
// directly except the mute/standby relay pins, reading time through an
// injected clock and publishing frequency/amplitude through a single
// waveform.Port instance.
type Controller struct {
	cfg   *settings.Manager
	wave  *waveform.Port
	bus   *status.Bus
	gpio  core.GPIODriver
	pins  PinMap
	clock func() uint32

	state          State
	stateStartTime uint32

	currentSpeedMode settings.SpeedMode
	currentFreq      float64
	targetFreq       float64
	currentAmp       float64
	targetAmp        float64

	pitchPercent float64
	pitchRange   float64

	isReducedAmp         bool
	ampReductionStartTime uint32

	isKicking   bool
	kickEndTime uint32

	isKickRamping     bool
	kickRampStartTime uint32
	kickRampDuration  float64
	kickRampStartFreq float64

	isSpeedRamping  bool
	rampStartTime   uint32
	rampDuration    float64
	rampStartFreq   float64
	rampTargetFreq  float64

	brakePulseState      bool
	brakePulseLastToggle uint32

	relaysActive   bool
	relayStage     int
	relayStageTime uint32

	powerOnDelayActive bool
	powerOnTime        uint32

	settingsDirty      bool
	lastSettingsChange uint32
}

func NewController(cfg *settings.Manager, wave *waveform.Port, bus *status.Bus, gpio core.GPIODriver, pins PinMap, clock func() uint32) *Controller {
	c := &Controller{
		cfg:                cfg,
		wave:               wave,
		bus:                bus,
		gpio:               gpio,
		pins:               pins,
		clock:              clock,
		state:              Standby,
		pitchRange:         10,
		powerOnDelayActive: true,
		powerOnTime:        clock(),
	}

	conf := cfg.Config()
	if conf.AutoBoot {
		c.state = Stopped
		if conf.AutoStart {
			c.start()
		}
	}
	return c
}

// Begin configures relay pins and loads the boot speed.
func (c *Controller) Begin() {
	_ = c.gpio.ConfigureOutput(c.pins.StandbyRelay)
	_ = c.gpio.ConfigureOutput(c.pins.MutePhaseA)
	_ = c.gpio.ConfigureOutput(c.pins.MutePhaseB)
	_ = c.gpio.ConfigureOutput(c.pins.MutePhaseC)
	_ = c.gpio.ConfigureOutput(c.pins.MutePhaseD)

	c.relaysActive = false
	c.relayStage = 0
	c.setRelays(false)

	conf := c.cfg.Config()
	if conf.BootSpeed <= settings.BootSpeed78 {
		c.currentSpeedMode = settings.SpeedMode(conf.BootSpeed)
	} else {
		c.currentSpeedMode = conf.CurrentSpeed
	}
	c.applySettings()

	if conf.AutoStart {
		c.start()
	}
}

func (c *Controller) State() State { return c.state }

func (c *Controller) IsRunning() bool {
	return c.state == Running || c.state == Starting
}

// Update advances the state machine by one tick. Call it from the
// control-core poll loop as fast as it can spin.
func (c *Controller) Update() {
	now := c.clock()

	switch c.state {
	case Standby, Stopped:
		// waiting for user input
	case Starting:
		c.updateStarting(now)
	case Running:
		c.updateRunning(now)
	case Stopping:
		c.handleBraking(now)
	}

	if c.bus != nil {
		c.bus.SetMotorState(uint32(c.state))
		c.bus.SetFrequency(c.currentFreq)
		c.bus.SetPitchPercent(c.pitchPercent)
	}

	c.updateRelayStagger(now)
	c.updateDeferredSave(now)
}

func (c *Controller) updateStarting(now uint32) {
	speed := c.cfg.Config().CurrentSpeedSettings()

	if c.isKicking {
		if now >= c.kickEndTime {
			c.isKicking = false
			if speed.StartupKickRampDuration > 0 {
				c.kickRampDuration = speed.StartupKickRampDuration * 1000.0
				c.kickRampStartTime = now
				c.kickRampStartFreq = c.wave.Frequency()
				c.isKickRamping = true
			} else {
				c.wave.SetFrequencyHz(c.targetFreq)
			}
		}
	}

	if c.isKickRamping {
		elapsed := float64(now - c.kickRampStartTime)
		if elapsed >= c.kickRampDuration {
			c.isKickRamping = false
			c.wave.SetFrequencyHz(c.targetFreq)
		} else {
			t := elapsed / c.kickRampDuration
			currentF := c.kickRampStartFreq - (c.kickRampStartFreq-c.targetFreq)*t
			c.wave.SetFrequencyHz(currentF)
		}
	} else if !c.isKicking {
		if c.wave.Frequency() != c.targetFreq {
			c.wave.SetFrequencyHz(c.targetFreq)
		}
	}

	duration := speed.SoftStartDuration * 1000.0
	elapsed := float64(now - c.stateStartTime)

	if elapsed >= duration {
		c.state = Running
		c.currentAmp = c.targetAmp
		c.ampReductionStartTime = now
	} else {
		c.currentAmp = c.calculateSoftStartAmp(elapsed, duration)
	}

	conf := c.cfg.Config()
	if conf.FreqDependentAmplitude > 0 {
		fdaRatio := float64(conf.FreqDependentAmplitude) / 100.0
		freqRatio := 0.0
		if c.targetFreq > 0.1 {
			freqRatio = c.wave.Frequency() / c.targetFreq
			freqRatio = clamp01(freqRatio)
		}
		scaleFactor := fdaRatio + (1.0-fdaRatio)*freqRatio
		c.currentAmp = c.currentAmp * scaleFactor
	}

	c.wave.SetAmplitude(c.currentAmp)
}

func (c *Controller) updateRunning(now uint32) {
	speed := c.cfg.Config().CurrentSpeedSettings()
	baseFreq := speed.Frequency
	c.targetFreq = baseFreq * (1.0 + c.pitchPercent/100.0)

	if c.currentFreq != c.targetFreq {
		c.currentFreq = c.targetFreq
		c.wave.SetFrequencyHz(c.currentFreq)
	}

	if !c.isReducedAmp {
		delayMs := uint32(speed.AmplitudeDelay) * 1000
		if now-c.ampReductionStartTime >= delayMs {
			c.isReducedAmp = true
			reducePercent := float64(speed.ReducedAmplitude) / 100.0
			c.currentAmp = c.targetAmp * reducePercent
			c.wave.SetAmplitude(c.currentAmp)
		}
	}

	if c.isSpeedRamping {
		elapsed := float64(now - c.rampStartTime)
		if elapsed >= c.rampDuration {
			c.isSpeedRamping = false
			c.currentFreq = c.rampTargetFreq
			c.wave.SetFrequencyHz(c.currentFreq)
		} else {
			t := elapsed / c.rampDuration
			currentF := c.rampStartFreq + (c.rampTargetFreq-c.rampStartFreq)*t
			c.wave.SetFrequencyHz(currentF)
			c.currentFreq = currentF
		}
	}

	c.cfg.UpdateRuntime(now)
}

func (c *Controller) calculateSoftStartAmp(elapsed, duration float64) float64 {
	t := elapsed / duration
	if t > 1.0 {
		t = 1.0
	}
	if c.cfg.Config().RampType == settings.RampSCurve {
		return c.targetAmp * (0.5 * (1.0 - math.Cos(math.Pi*t)))
	}
	return c.targetAmp * t
}

func (c *Controller) start() {
	if c.state == Running || c.state == Starting {
		return
	}
	c.state = Starting
	c.stateStartTime = c.clock()

	c.applySettings()
	conf := c.cfg.Config()
	c.targetAmp = float64(conf.MaxAmplitude) / 100.0
	c.currentAmp = 0.0
	c.isReducedAmp = false

	speed := conf.CurrentSpeedSettings()
	if speed.StartupKick > 1 {
		c.isKicking = true
		c.kickEndTime = c.clock() + uint32(speed.StartupKickDuration)*1000
		c.wave.SetFrequencyHz(c.targetFreq * float64(speed.StartupKick))
	} else {
		c.isKicking = false
		c.wave.SetFrequencyHz(c.targetFreq)
	}

	if conf.MuteRelayLinkStartStop {
		c.setRelays(true)
	}

	c.wave.SetEnabled(true)
	c.wave.SetAmplitude(0.0)
}

// Start is the public entry point for a user/CLI-initiated start.
func (c *Controller) Start() { c.start() }

func (c *Controller) stop() {
	if c.state == Stopped || c.state == Standby {
		return
	}
	c.state = Stopping
	c.stateStartTime = c.clock()

	conf := c.cfg.Config()
	switch conf.BrakeMode {
	case settings.BrakePulse:
		c.brakePulseState = true
		c.brakePulseLastToggle = c.clock()
		c.wave.SetFrequencyHz(-c.targetFreq)
		c.wave.SetAmplitude(c.targetAmp)
	case settings.BrakeRamp:
		c.wave.SetFrequencyHz(conf.BrakeStartFreq)
	}

	if conf.PitchResetOnStop {
		c.resetPitch()
	}
}

func (c *Controller) Stop() { c.stop() }

func (c *Controller) handleBraking(now uint32) {
	conf := c.cfg.Config()
	duration := conf.BrakeDuration * 1000.0
	elapsed := float64(now - c.stateStartTime)

	if elapsed >= duration {
		c.state = Stopped
		c.currentAmp = 0.0
		c.wave.SetEnabled(false)

		if conf.MuteRelayLinkStartStop {
			c.setRelays(false)
		}
		c.wave.SetFrequencyHz(math.Abs(c.targetFreq))
		return
	}

	switch conf.BrakeMode {
	case settings.BrakeRamp:
		startF := conf.BrakeStartFreq
		stopF := conf.BrakeStopFreq
		currentF := startF - (startF-stopF)*(elapsed/duration)
		c.wave.SetFrequencyHz(currentF)

		c.currentAmp = c.targetAmp * (1.0 - elapsed/duration)
		c.wave.SetAmplitude(c.currentAmp)
	case settings.BrakePulse:
		gap := conf.BrakePulseGap * 1000.0
		if float64(now-c.brakePulseLastToggle) >= gap {
			c.brakePulseLastToggle = now
			c.brakePulseState = !c.brakePulseState
			if c.brakePulseState {
				c.wave.SetAmplitude(c.targetAmp)
			} else {
				c.wave.SetAmplitude(0.0)
			}
		}
	default: // BrakeOff
		c.currentAmp = c.targetAmp * (1.0 - elapsed/duration)
		c.wave.SetAmplitude(c.currentAmp)
	}
}

func (c *Controller) ToggleStartStop() {
	if c.IsRunning() {
		c.stop()
	} else {
		c.start()
	}
}

func (c *Controller) ToggleStandby() {
	conf := c.cfg.Config()
	if c.state == Standby {
		c.state = Stopped
		if conf.MuteRelayLinkStandby && !conf.MuteRelayLinkStartStop {
			c.setRelays(true)
		} else {
			c.setRelays(false)
		}
	} else {
		c.stop()
		c.state = Standby
		if conf.MuteRelayLinkStandby {
			c.setRelays(false)
		}
		c.cfg.ResetSessionRuntime()
		_ = c.cfg.Save()
	}
}

func (c *Controller) CycleSpeed() {
	s := int(c.currentSpeedMode) + 1
	if s > int(settings.Speed78) {
		s = int(settings.Speed33)
	}
	if s == int(settings.Speed78) && !c.cfg.Config().Enable78RPM {
		s = int(settings.Speed33)
	}
	c.setSpeed(settings.SpeedMode(s))
}

func (c *Controller) AdjustSpeed(delta int) {
	s := int(c.currentSpeedMode) + delta
	if s < int(settings.Speed33) {
		s = int(settings.Speed33)
	}
	if s > int(settings.Speed78) {
		s = int(settings.Speed78)
	}
	if s == int(settings.Speed78) && !c.cfg.Config().Enable78RPM {
		s = int(settings.Speed45)
	}
	c.setSpeed(settings.SpeedMode(s))
}

func (c *Controller) setSpeed(mode settings.SpeedMode) {
	if c.currentSpeedMode == mode {
		return
	}
	c.currentSpeedMode = mode
	c.applySettings()

	conf := c.cfg.Config()
	baseFreq := conf.CurrentSpeedSettings().Frequency
	newTarget := baseFreq * (1.0 + c.pitchPercent/100.0)

	if c.state == Running {
		if conf.SmoothSwitching {
			c.isSpeedRamping = true
			c.rampStartFreq = c.wave.Frequency()
			c.rampTargetFreq = newTarget
			c.rampStartTime = c.clock()
			c.rampDuration = float64(conf.SwitchRampDuration) * 1000.0
		} else {
			c.targetFreq = newTarget
			c.currentFreq = c.targetFreq
			c.wave.SetFrequencyHz(c.currentFreq)
		}
	} else {
		c.targetFreq = newTarget
	}

	conf.CurrentSpeed = mode
	c.settingsDirty = true
	c.lastSettingsChange = c.clock()
}

func (c *Controller) SetSpeed(mode settings.SpeedMode) { c.setSpeed(mode) }

func (c *Controller) SetPitch(percent float64) { c.pitchPercent = percent }

func (c *Controller) PitchPercent() float64 { return c.pitchPercent }

func (c *Controller) ApplySettings() { c.applySettings() }

func (c *Controller) resetPitch() { c.pitchPercent = 0.0 }

func (c *Controller) ResetPitch() { c.resetPitch() }

func (c *Controller) TogglePitchRange() {
	c.pitchRange += 10
	if c.pitchRange > 50 {
		c.pitchRange = 10
	}
}

func (c *Controller) AdjustPitchFreq(deltaHz float64) {
	baseFreq := c.cfg.Config().CurrentSpeedSettings().Frequency
	currentPitchHz := baseFreq * (c.pitchPercent / 100.0)
	newPitchHz := currentPitchHz + deltaHz

	maxPitchHz := baseFreq * (c.pitchRange / 100.0)
	if newPitchHz > maxPitchHz {
		newPitchHz = maxPitchHz
	}
	if newPitchHz < -maxPitchHz {
		newPitchHz = -maxPitchHz
	}
	c.pitchPercent = (newPitchHz / baseFreq) * 100.0
}

func (c *Controller) applySettings() {
	speed := c.cfg.Config().CurrentSpeedSettings()
	c.targetFreq = speed.Frequency
	c.currentFreq = c.targetFreq

	c.wave.UpdateSettings(
		c.currentFreq,
		speed.PhaseOffset,
		uint8(c.cfg.Config().PhaseMode),
		waveform.FilterKind(speed.FilterType),
		speed.IIRAlpha,
		waveform.FIRProfile(speed.FIRProfile),
	)
}

func (c *Controller) setRelays(active bool) {
	conf := c.cfg.Config()
	activeHigh := conf.RelayActiveHigh

	if c.powerOnDelayActive {
		delayMs := uint32(conf.PowerOnRelayDelay) * 1000
		if c.clock()-c.powerOnTime < delayMs {
			active = false
		} else {
			c.powerOnDelayActive = false
		}
	}

	if active {
		c.relaysActive = true
		c.relayStage = 0
		c.relayStageTime = c.clock()
	} else {
		c.relaysActive = false
		c.relayStage = 0
		c.writeMute(c.pins.MutePhaseA, !activeHigh)
		c.writeMute(c.pins.MutePhaseB, !activeHigh)
		c.writeMute(c.pins.MutePhaseC, !activeHigh)
		c.writeMute(c.pins.MutePhaseD, !activeHigh)
	}

	if conf.MuteRelayLinkStandby && active {
		c.writeMute(c.pins.StandbyRelay, activeHigh)
	}
}

// ForceMuteAll implements errs.RelayForcer: an immediate, unconditional
// mute of every output relay, used for critical error handling.
func (c *Controller) ForceMuteAll() {
	activeHigh := c.cfg.Config().RelayActiveHigh
	c.relaysActive = false
	c.relayStage = 0
	c.writeMute(c.pins.MutePhaseA, !activeHigh)
	c.writeMute(c.pins.MutePhaseB, !activeHigh)
	c.writeMute(c.pins.MutePhaseC, !activeHigh)
	c.writeMute(c.pins.MutePhaseD, !activeHigh)
	c.writeMute(c.pins.StandbyRelay, !activeHigh)
}

func (c *Controller) writeMute(pin core.GPIOPin, value bool) {
	if c.gpio != nil {
		_ = c.gpio.SetPin(pin, value)
	}
}

func (c *Controller) updateRelayStagger(now uint32) {
	if !c.relaysActive || c.relayStage >= 4 {
		return
	}
	if now-c.relayStageTime <= 100 {
		return
	}
	c.relayStageTime = now
	c.relayStage++
	activeHigh := c.cfg.Config().RelayActiveHigh

	var pin core.GPIOPin
	switch c.relayStage {
	case 1:
		pin = c.pins.MutePhaseA
	case 2:
		pin = c.pins.MutePhaseB
	case 3:
		pin = c.pins.MutePhaseC
	case 4:
		pin = c.pins.MutePhaseD
	}
	c.writeMute(pin, activeHigh)
}

func (c *Controller) updateDeferredSave(now uint32) {
	if c.settingsDirty && now-c.lastSettingsChange > 2000 {
		_ = c.cfg.Save()
		c.settingsDirty = false
	}
}

func clamp01(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	if v < 0.0 {
		return 0.0
	}
	return v
}
