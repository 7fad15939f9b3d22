package settings

// legacyCommon holds the fields shared by every schema version up to
// and including the point where currentSpeed was last written — i.e.
// everything up to (but not including) the now-removed trailing fields
// that differ between v2, v3 and v4.
type legacyCommon struct {
	PhaseMode              PhaseMode
	MaxAmplitude           uint8
	SoftStartCurve         SoftStartCurve
	SmoothSwitching        bool
	SwitchRampDuration     uint8
	BrakeMode              BrakeMode
	BrakeDuration          float64
	BrakePulseGap          float64
	BrakeStartFreq         float64
	BrakeStopFreq          float64
	RelayActiveHigh        bool
	MuteRelayLinkStandby   bool
	MuteRelayLinkStartStop bool
	PowerOnRelayDelay      uint8
	DisplayBrightness      uint8
	DisplaySleepDelay       uint8
	ScreensaverEnabled      bool
	AutoDimDelay            uint8
	ShowRuntime             bool
	ErrorDisplayEnabled     bool
	ErrorDisplayDuration    uint8
	AutoStandbyDelay        uint8
	AutoStart               bool
	AutoBoot                bool
	PitchResetOnStop        bool
	Speeds                  [3]SpeedProfile
	PresetNames             [MaxPresetSlots]string
	TotalRuntime            uint32
	ReverseEncoder          bool
	PitchStepSize           float64
	RampType                RampType
	ScreensaverMode         ScreensaverMode
	Enable78RPM             bool
}

func (d *decoder) legacyCommon() legacyCommon {
	var l legacyCommon
	l.PhaseMode = PhaseMode(d.u8())
	l.MaxAmplitude = d.u8()
	l.SoftStartCurve = SoftStartCurve(d.u8())
	l.SmoothSwitching = d.boolean()
	l.SwitchRampDuration = d.u8()
	l.BrakeMode = BrakeMode(d.u8())
	l.BrakeDuration = d.f64()
	l.BrakePulseGap = d.f64()
	l.BrakeStartFreq = d.f64()
	l.BrakeStopFreq = d.f64()
	l.RelayActiveHigh = d.boolean()
	l.MuteRelayLinkStandby = d.boolean()
	l.MuteRelayLinkStartStop = d.boolean()
	l.PowerOnRelayDelay = d.u8()
	l.DisplayBrightness = d.u8()
	l.DisplaySleepDelay = d.u8()
	l.ScreensaverEnabled = d.boolean()
	l.AutoDimDelay = d.u8()
	l.ShowRuntime = d.boolean()
	l.ErrorDisplayEnabled = d.boolean()
	l.ErrorDisplayDuration = d.u8()
	l.AutoStandbyDelay = d.u8()
	l.AutoStart = d.boolean()
	l.AutoBoot = d.boolean()
	l.PitchResetOnStop = d.boolean()
	for i := range l.Speeds {
		l.Speeds[i] = d.speedProfile()
	}
	for i := range l.PresetNames {
		l.PresetNames[i] = d.str(presetNameBytes)
	}
	l.TotalRuntime = d.u32()
	l.ReverseEncoder = d.boolean()
	l.PitchStepSize = d.f64()
	l.RampType = RampType(d.u8())
	l.ScreensaverMode = ScreensaverMode(d.u8())
	l.Enable78RPM = d.boolean()
	return l
}

func (l legacyCommon) applyTo(c *GlobalConfig) {
	c.PhaseMode = l.PhaseMode
	c.MaxAmplitude = l.MaxAmplitude
	c.SoftStartCurve = l.SoftStartCurve
	c.SmoothSwitching = l.SmoothSwitching
	c.SwitchRampDuration = l.SwitchRampDuration
	c.BrakeMode = l.BrakeMode
	c.BrakeDuration = l.BrakeDuration
	c.BrakePulseGap = l.BrakePulseGap
	c.BrakeStartFreq = l.BrakeStartFreq
	c.BrakeStopFreq = l.BrakeStopFreq
	c.RelayActiveHigh = l.RelayActiveHigh
	c.MuteRelayLinkStandby = l.MuteRelayLinkStandby
	c.MuteRelayLinkStartStop = l.MuteRelayLinkStartStop
	c.PowerOnRelayDelay = l.PowerOnRelayDelay
	c.DisplayBrightness = l.DisplayBrightness
	c.DisplaySleepDelay = l.DisplaySleepDelay
	c.ScreensaverEnabled = l.ScreensaverEnabled
	c.AutoDimDelay = l.AutoDimDelay
	c.ShowRuntime = l.ShowRuntime
	c.ErrorDisplayEnabled = l.ErrorDisplayEnabled
	c.ErrorDisplayDuration = l.ErrorDisplayDuration
	c.AutoStandbyDelay = l.AutoStandbyDelay
	c.AutoStart = l.AutoStart
	c.AutoBoot = l.AutoBoot
	c.PitchResetOnStop = l.PitchResetOnStop
	c.Speeds = l.Speeds
	c.PresetNames = l.PresetNames
	c.TotalRuntime = l.TotalRuntime
	c.ReverseEncoder = l.ReverseEncoder
	c.PitchStepSize = l.PitchStepSize
	c.RampType = l.RampType
	c.ScreensaverMode = l.ScreensaverMode
	c.Enable78RPM = l.Enable78RPM
}

// MigrateV2 reads a schema-v2 payload (no freqDependentAmplitude, no
// bootSpeed) and produces a current GlobalConfig with the new fields left
// at their Defaults() values.
func MigrateV2(data []byte) (GlobalConfig, error) {
	c := Defaults()
	d := newDecoder(data)
	_ = d.u32() // schemaVersion, already known to be 2
	common := d.legacyCommon()
	common.applyTo(&c)
	c.CurrentSpeed = SpeedMode(d.u8())
	return c, d.err()
}

// MigrateV3 reads a schema-v3 payload (has freqDependentAmplitude, no
// bootSpeed yet) and produces a current GlobalConfig with bootSpeed left
// at its Defaults() value.
func MigrateV3(data []byte) (GlobalConfig, error) {
	c := Defaults()
	d := newDecoder(data)
	_ = d.u32() // schemaVersion, already known to be 3
	common := d.legacyCommon()
	common.applyTo(&c)
	c.FreqDependentAmplitude = d.u8()
	c.CurrentSpeed = SpeedMode(d.u8())
	return c, d.err()
}

// Migrate dispatches to the matching migrator for oldVersion, or reports
// that no migration path exists (callers then fall back to Defaults()).
func Migrate(oldVersion uint32, data []byte) (GlobalConfig, bool) {
	switch oldVersion {
	case 2:
		c, err := MigrateV2(data)
		return c, err == nil
	case 3:
		c, err := MigrateV3(data)
		return c, err == nil
	default:
		return GlobalConfig{}, false
	}
}
