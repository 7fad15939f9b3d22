package settings

import "fmt"

const (
	DefaultPhaseMode  = Phase4
	DefaultSpeedIndex = Speed33
)

// Defaults returns a fresh GlobalConfig with every field at its factory
// value.
func Defaults() GlobalConfig {
	var c GlobalConfig
	c.SchemaVersion = SchemaVersion

	for i := 0; i < MaxPresetSlots; i++ {
		c.PresetNames[i] = presetDefaultName(i)
	}

	c.PhaseMode = DefaultPhaseMode
	c.MaxAmplitude = 100
	c.SoftStartCurve = SoftStartLinear
	c.SmoothSwitching = true
	c.SwitchRampDuration = 2

	c.BrakeMode = BrakeRamp
	c.BrakeDuration = 2.0
	c.BrakePulseGap = 0.5
	c.BrakeStartFreq = 50.0
	c.BrakeStopFreq = 0.0

	c.RelayActiveHigh = true
	c.MuteRelayLinkStandby = true
	c.MuteRelayLinkStartStop = true
	c.PowerOnRelayDelay = 2

	c.AutoStandbyDelay = 0
	c.AutoDimDelay = 0
	c.AutoStart = false
	c.AutoBoot = false
	c.DisplaySleepDelay = 0
	c.ScreensaverEnabled = true

	c.ErrorDisplayEnabled = true
	c.ErrorDisplayDuration = 10

	c.ShowRuntime = true
	c.PitchResetOnStop = true
	c.CurrentSpeed = DefaultSpeedIndex

	c.Speeds[Speed33] = SpeedProfile{
		Frequency: 50.0, MinFrequency: 40.0, MaxFrequency: 60.0,
		SoftStartDuration: 1.0, ReducedAmplitude: 80, AmplitudeDelay: 5,
		StartupKick: 1, StartupKickDuration: 1, StartupKickRampDuration: 1.0,
		FilterType: 0, IIRAlpha: 0.5, FIRProfile: 1, // FIRMedium
		PhaseOffset: [4]float64{0.0, 90.0, 120.0, 240.0},
	}
	c.Speeds[Speed45] = SpeedProfile{
		Frequency: 67.5, MinFrequency: 57.5, MaxFrequency: 77.5,
		SoftStartDuration: 1.0, ReducedAmplitude: 80, AmplitudeDelay: 5,
		StartupKick: 1, StartupKickDuration: 1, StartupKickRampDuration: 1.0,
		FilterType: 0, IIRAlpha: 0.5, FIRProfile: 1,
		PhaseOffset: [4]float64{0.0, 90.0, 120.0, 240.0},
	}
	c.Speeds[Speed78] = SpeedProfile{
		Frequency: 113.5, MinFrequency: 100.0, MaxFrequency: 130.0,
		SoftStartDuration: 1.5, ReducedAmplitude: 90, AmplitudeDelay: 5,
		StartupKick: 1, StartupKickDuration: 1, StartupKickRampDuration: 1.0,
		FilterType: 0, IIRAlpha: 0.5, FIRProfile: 1,
		PhaseOffset: [4]float64{0.0, 90.0, 120.0, 240.0},
	}

	c.Enable78RPM = true
	c.TotalRuntime = 0

	c.DisplayBrightness = 255
	c.ReverseEncoder = false
	c.PitchStepSize = 0.1
	c.RampType = RampSCurve
	c.ScreensaverMode = SaverBounce
	c.FreqDependentAmplitude = 0
	c.BootSpeed = BootSpeedLastUsed

	return c
}

func presetDefaultName(slot int) string {
	return fmt.Sprintf("Preset %d", slot+1)
}
