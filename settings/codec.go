package settings

import (
	"encoding/binary"
	"fmt"
	"math"
)

// encoder/decoder are small hand-rolled byte-buffer helpers: GlobalConfig
// mixes fixed-size numerics, bools and fixed-length strings, which
// encoding/binary's reflection-based Read/Write can't marshal directly
// (it rejects bool and string struct fields), so the struct is walked by
// hand in a fixed field order instead.
type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8)   { e.buf = append(e.buf, v) }
func (e *encoder) boolean(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}
func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	e.buf = append(e.buf, b[:]...)
}
func (e *encoder) f64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	e.buf = append(e.buf, b[:]...)
}
func (e *encoder) str(v string, n int) {
	b := make([]byte, n)
	copy(b, v)
	e.buf = append(e.buf, b...)
}

func (e *encoder) speedProfile(s *SpeedProfile) {
	e.f64(s.Frequency)
	e.f64(s.MinFrequency)
	e.f64(s.MaxFrequency)
	for _, o := range s.PhaseOffset {
		e.f64(o)
	}
	e.f64(s.SoftStartDuration)
	e.u8(s.ReducedAmplitude)
	e.u8(s.AmplitudeDelay)
	e.u8(s.StartupKick)
	e.u8(s.StartupKickDuration)
	e.f64(s.StartupKickRampDuration)
	e.u8(s.FilterType)
	e.f64(s.IIRAlpha)
	e.u8(s.FIRProfile)
}

type decoder struct {
	buf []byte
	pos int
}

func newDecoder(b []byte) *decoder { return &decoder{buf: b} }

func (d *decoder) err() error {
	if d.pos > len(d.buf) {
		return fmt.Errorf("settings: short buffer, need %d bytes, have %d", d.pos, len(d.buf))
	}
	return nil
}

func (d *decoder) u8() uint8 {
	if d.pos >= len(d.buf) {
		d.pos++
		return 0
	}
	v := d.buf[d.pos]
	d.pos++
	return v
}
func (d *decoder) boolean() bool { return d.u8() != 0 }
func (d *decoder) u32() uint32 {
	if d.pos+4 > len(d.buf) {
		d.pos += 4
		return 0
	}
	v := binary.LittleEndian.Uint32(d.buf[d.pos : d.pos+4])
	d.pos += 4
	return v
}
func (d *decoder) f64() float64 {
	if d.pos+8 > len(d.buf) {
		d.pos += 8
		return 0
	}
	v := math.Float64frombits(binary.LittleEndian.Uint64(d.buf[d.pos : d.pos+8]))
	d.pos += 8
	return v
}
func (d *decoder) str(n int) string {
	if d.pos+n > len(d.buf) {
		d.pos += n
		return ""
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	end := 0
	for end < len(b) && b[end] != 0 {
		end++
	}
	return string(b[:end])
}

func (d *decoder) speedProfile() SpeedProfile {
	var s SpeedProfile
	s.Frequency = d.f64()
	s.MinFrequency = d.f64()
	s.MaxFrequency = d.f64()
	for i := range s.PhaseOffset {
		s.PhaseOffset[i] = d.f64()
	}
	s.SoftStartDuration = d.f64()
	s.ReducedAmplitude = d.u8()
	s.AmplitudeDelay = d.u8()
	s.StartupKick = d.u8()
	s.StartupKickDuration = d.u8()
	s.StartupKickRampDuration = d.f64()
	s.FilterType = d.u8()
	s.IIRAlpha = d.f64()
	s.FIRProfile = d.u8()
	return s
}

// Encode serializes a GlobalConfig to its current (schema v4) byte layout.
func Encode(c *GlobalConfig) []byte {
	e := &encoder{}
	e.u32(c.SchemaVersion)
	e.u8(uint8(c.PhaseMode))
	e.u8(c.MaxAmplitude)
	e.u8(uint8(c.SoftStartCurve))
	e.boolean(c.SmoothSwitching)
	e.u8(c.SwitchRampDuration)
	e.u8(uint8(c.BrakeMode))
	e.f64(c.BrakeDuration)
	e.f64(c.BrakePulseGap)
	e.f64(c.BrakeStartFreq)
	e.f64(c.BrakeStopFreq)
	e.boolean(c.RelayActiveHigh)
	e.boolean(c.MuteRelayLinkStandby)
	e.boolean(c.MuteRelayLinkStartStop)
	e.u8(c.PowerOnRelayDelay)
	e.u8(c.DisplayBrightness)
	e.u8(c.DisplaySleepDelay)
	e.boolean(c.ScreensaverEnabled)
	e.u8(c.AutoDimDelay)
	e.boolean(c.ShowRuntime)
	e.boolean(c.ErrorDisplayEnabled)
	e.u8(c.ErrorDisplayDuration)
	e.u8(c.AutoStandbyDelay)
	e.boolean(c.AutoStart)
	e.boolean(c.AutoBoot)
	e.boolean(c.PitchResetOnStop)
	for i := range c.Speeds {
		e.speedProfile(&c.Speeds[i])
	}
	for _, n := range c.PresetNames {
		e.str(n, presetNameBytes)
	}
	e.u32(c.TotalRuntime)
	e.boolean(c.ReverseEncoder)
	e.f64(c.PitchStepSize)
	e.u8(uint8(c.RampType))
	e.u8(uint8(c.ScreensaverMode))
	e.boolean(c.Enable78RPM)
	e.u8(c.FreqDependentAmplitude)
	e.u8(uint8(c.BootSpeed))
	e.u8(uint8(c.CurrentSpeed))
	return e.buf
}

// Decode parses a schema-v4 byte layout. Callers must check the schema
// version prefix and route to a migrator before calling this for older
// payloads.
func Decode(data []byte) (GlobalConfig, error) {
	d := newDecoder(data)
	var c GlobalConfig
	c.SchemaVersion = d.u32()
	c.PhaseMode = PhaseMode(d.u8())
	c.MaxAmplitude = d.u8()
	c.SoftStartCurve = SoftStartCurve(d.u8())
	c.SmoothSwitching = d.boolean()
	c.SwitchRampDuration = d.u8()
	c.BrakeMode = BrakeMode(d.u8())
	c.BrakeDuration = d.f64()
	c.BrakePulseGap = d.f64()
	c.BrakeStartFreq = d.f64()
	c.BrakeStopFreq = d.f64()
	c.RelayActiveHigh = d.boolean()
	c.MuteRelayLinkStandby = d.boolean()
	c.MuteRelayLinkStartStop = d.boolean()
	c.PowerOnRelayDelay = d.u8()
	c.DisplayBrightness = d.u8()
	c.DisplaySleepDelay = d.u8()
	c.ScreensaverEnabled = d.boolean()
	c.AutoDimDelay = d.u8()
	c.ShowRuntime = d.boolean()
	c.ErrorDisplayEnabled = d.boolean()
	c.ErrorDisplayDuration = d.u8()
	c.AutoStandbyDelay = d.u8()
	c.AutoStart = d.boolean()
	c.AutoBoot = d.boolean()
	c.PitchResetOnStop = d.boolean()
	for i := range c.Speeds {
		c.Speeds[i] = d.speedProfile()
	}
	for i := range c.PresetNames {
		c.PresetNames[i] = d.str(presetNameBytes)
	}
	c.TotalRuntime = d.u32()
	c.ReverseEncoder = d.boolean()
	c.PitchStepSize = d.f64()
	c.RampType = RampType(d.u8())
	c.ScreensaverMode = ScreensaverMode(d.u8())
	c.Enable78RPM = d.boolean()
	c.FreqDependentAmplitude = d.u8()
	c.BootSpeed = BootSpeed(d.u8())
	c.CurrentSpeed = SpeedMode(d.u8())
	return c, d.err()
}

// PeekSchemaVersion reads just the version prefix, letting the caller
// decide migrate vs. load before committing to a full decode.
func PeekSchemaVersion(data []byte) (uint32, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("settings: buffer too short for schema header")
	}
	return binary.LittleEndian.Uint32(data[:4]), nil
}
