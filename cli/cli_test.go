package cli

import (
	"bytes"
	"strings"
	"testing"

	"ttcontrol/core"
	"ttcontrol/errs"
	"ttcontrol/motor"
	"ttcontrol/settings"
	"ttcontrol/status"
	"ttcontrol/waveform"
)

type fakeGPIO struct{ high map[core.GPIOPin]bool }

func newFakeGPIO() *fakeGPIO { return &fakeGPIO{high: map[core.GPIOPin]bool{}} }

func (f *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error        { return nil }
func (f *fakeGPIO) ConfigureInputPullUp(pin core.GPIOPin) error   { return nil }
func (f *fakeGPIO) ConfigureInputPullDown(pin core.GPIOPin) error { return nil }
func (f *fakeGPIO) SetPin(pin core.GPIOPin, value bool) error     { f.high[pin] = value; return nil }
func (f *fakeGPIO) GetPin(pin core.GPIOPin) (bool, error)         { return f.high[pin], nil }
func (f *fakeGPIO) ReadPin(pin core.GPIOPin) bool                 { return f.high[pin] }

type fakeMemFS struct{ files map[string][]byte }

func newFakeMemFS() *fakeMemFS { return &fakeMemFS{files: map[string][]byte{}} }
func (m *fakeMemFS) ReadFile(name string) ([]byte, error) {
	d, ok := m.files[name]
	if !ok {
		return nil, errNotFound{}
	}
	return d, nil
}
func (m *fakeMemFS) WriteFile(name string, data []byte) error {
	m.files[name] = append([]byte(nil), data...)
	return nil
}
func (m *fakeMemFS) Remove(name string) error { delete(m.files, name); return nil }
func (m *fakeMemFS) Exists(name string) bool  { _, ok := m.files[name]; return ok }

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

func newTestDispatcher(t *testing.T) (*Dispatcher, *bytes.Buffer, *motor.Controller) {
	t.Helper()
	mgr := settings.NewManager(settings.NewFileStore(newFakeMemFS()))
	if err := mgr.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	ex := waveform.NewExchange(waveform.DDSState{})
	eng := waveform.NewEngine(waveform.NewLUT(1024), ex)
	port := waveform.NewPort(ex, eng)
	bus := status.NewBus()
	gpio := newFakeGPIO()

	var t0 uint32
	ctrl := motor.NewController(mgr, port, bus, gpio, motor.PinMap{
		StandbyRelay: 16, MutePhaseA: 17, MutePhaseB: 18, MutePhaseC: 19, MutePhaseD: 20,
	}, func() uint32 { return t0 })
	ctrl.Begin()

	sink := &memSink{}
	errHandler := errs.NewHandler(sink, nil, ctrl, 10)

	var out bytes.Buffer
	d := NewDispatcher(ctrl, mgr, bus, errHandler, &out)
	return d, &out, ctrl
}

type memSink struct{ reports []errs.Report }

func (s *memSink) Append(r errs.Report) error { s.reports = append(s.reports, r); return nil }
func (s *memSink) Dump() ([]errs.Report, error) { return s.reports, nil }
func (s *memSink) Clear() error                 { s.reports = nil; return nil }

func TestDispatcherStartStop(t *testing.T) {
	d, out, ctrl := newTestDispatcher(t)

	d.HandleLine("start")
	if ctrl.State() != motor.Starting {
		t.Fatalf("State = %v, want Starting", ctrl.State())
	}
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK response, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("stop")
	if ctrl.State() != motor.Stopping {
		t.Fatalf("State = %v, want Stopping", ctrl.State())
	}
}

func TestDispatcherSpeedSetsMode(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("speed 1")
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("status")
	if !strings.Contains(out.String(), "speed=1") {
		t.Errorf("expected status to report speed=1, got %q", out.String())
	}
}

func TestDispatcherSpeedRejectsOutOfRange(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("speed 7")
	if !strings.Contains(out.String(), "Invalid speed index") {
		t.Errorf("expected invalid speed index message, got %q", out.String())
	}
}

func TestDispatcherUnknownCommand(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("frobnicate")
	if !strings.Contains(out.String(), "Unknown command") {
		t.Errorf("expected unknown command message, got %q", out.String())
	}
}

func TestDispatcherStatusReportsState(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("status")
	if !strings.Contains(out.String(), "state=") {
		t.Errorf("expected status line, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("i")
	if !strings.Contains(out.String(), "state=") {
		t.Errorf("expected status line from i alias, got %q", out.String())
	}
}

func TestDispatcherListCoversRegisteredKeys(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("list")
	for _, key := range []string{"brightness", "ramp", "pitch_step", "rev_enc", "saver_mode", "freq", "phase1", "phase2", "phase3", "phase4", "soft_start", "kick", "kick_dur", "pitch", "err_dur"} {
		if !strings.Contains(out.String(), key+" = ") {
			t.Errorf("expected list output to contain %q, got %q", key, out.String())
		}
	}
}

func TestDispatcherGetUnknownKey(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("get nonexistent")
	if !strings.Contains(out.String(), "Unknown setting key") {
		t.Errorf("expected unknown setting key message, got %q", out.String())
	}
}

func TestDispatcherSetGetRoundTrip(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("set brightness 128")
	if !strings.Contains(out.String(), "OK") {
		t.Fatalf("expected OK from set, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("get brightness")
	if !strings.Contains(out.String(), "brightness = 128") {
		t.Errorf("expected brightness = 128, got %q", out.String())
	}
}

func TestDispatcherSetFreqReappliesToWaveform(t *testing.T) {
	d, out, ctrl := newTestDispatcher(t)

	d.HandleLine("set freq 55.5")
	if !strings.Contains(out.String(), "OK") {
		t.Fatalf("expected OK, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("get freq")
	if !strings.Contains(out.String(), "55.5") {
		t.Errorf("expected freq = 55.5, got %q", out.String())
	}

	ctrl.Update()
	if got := d.bus.Frequency(); got != 55.5 {
		t.Errorf("published frequency = %v, want 55.5", got)
	}
}

func TestDispatcherSetUsageErrors(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("set brightness")
	if !strings.Contains(out.String(), "Usage: set <key> <value>") {
		t.Errorf("expected usage message, got %q", out.String())
	}
}

func TestDispatcherSetRevEncParsesBoolish(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("set rev_enc true")
	out.Reset()
	d.HandleLine("get rev_enc")
	if !strings.Contains(out.String(), "rev_enc = 1") {
		t.Errorf("expected rev_enc = 1, got %q", out.String())
	}
}

func TestDispatcherPitchGetSetRoundTrip(t *testing.T) {
	d, out, ctrl := newTestDispatcher(t)

	d.HandleLine("set pitch 3.5")
	if ctrl.PitchPercent() != 3.5 {
		t.Fatalf("PitchPercent = %v, want 3.5", ctrl.PitchPercent())
	}

	out.Reset()
	d.HandleLine("get pitch")
	if !strings.Contains(out.String(), "pitch = 3.50") {
		t.Errorf("expected pitch = 3.50, got %q", out.String())
	}
}

func TestDispatcherSetErrDurRoundTrip(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("set err_dur 12")
	if !strings.Contains(out.String(), "OK") {
		t.Fatalf("expected OK, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("get err_dur")
	if !strings.Contains(out.String(), "err_dur = 12") {
		t.Errorf("expected err_dur = 12, got %q", out.String())
	}
}

func TestDispatcherErrorDumpAndClear(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("error dump")
	if !strings.Contains(out.String(), "Error log empty") {
		t.Errorf("expected empty log message, got %q", out.String())
	}

	out.Reset()
	d.errs.Report(errs.Report{Kind: errs.I2CFailure, Message: "nack", AtMillis: 42})

	out.Reset()
	d.HandleLine("error dump")
	if !strings.Contains(out.String(), "i2c_failure") || !strings.Contains(out.String(), "nack") {
		t.Errorf("expected dump to contain the reported error, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("error clear")
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK from clear, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("error dump")
	if !strings.Contains(out.String(), "Error log empty") {
		t.Errorf("expected empty log after clear, got %q", out.String())
	}
}

func TestDispatcherFactoryReset(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("set brightness 10")
	out.Reset()
	d.HandleLine("f")
	if !strings.Contains(out.String(), "Factory reset complete") {
		t.Errorf("expected factory reset confirmation, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("get brightness")
	if !strings.Contains(out.String(), "brightness = 255") {
		t.Errorf("expected brightness restored to default 255, got %q", out.String())
	}
}

func TestDispatcherPresetSaveLoadRoundTrip(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("set brightness 77")
	out.Reset()
	d.HandleLine("preset save 0")
	if !strings.Contains(out.String(), "OK") {
		t.Fatalf("expected OK from preset save, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("set brightness 10")
	out.Reset()
	d.HandleLine("preset load 0")
	if !strings.Contains(out.String(), "OK") {
		t.Fatalf("expected OK from preset load, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("get brightness")
	if !strings.Contains(out.String(), "brightness = 77") {
		t.Errorf("expected brightness restored from preset, got %q", out.String())
	}
}

func TestDispatcherPresetRename(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("preset rename 1 MyRecord")
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK from preset rename, got %q", out.String())
	}
}

func TestDispatcherPresetResetRestoresDefaultName(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("preset rename 2 Temp")
	out.Reset()
	d.HandleLine("preset reset 2")
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK from preset reset, got %q", out.String())
	}
	if got := d.mgr.Config().PresetNames[2]; got != "Preset 3" {
		t.Errorf("PresetNames[2] = %q, want %q", got, "Preset 3")
	}
}

func TestDispatcherPresetUsageErrors(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("preset save")
	if !strings.Contains(out.String(), "Usage: preset") {
		t.Errorf("expected usage message, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("preset save x")
	if !strings.Contains(out.String(), "Invalid slot") {
		t.Errorf("expected invalid slot message, got %q", out.String())
	}
}

func TestDispatcherRuntimeReportsAndResets(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.mgr.Config().TotalRuntime = 99
	d.HandleLine("runtime")
	if !strings.Contains(out.String(), "total=99s") {
		t.Errorf("expected total=99s, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("runtime reset")
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK from runtime reset, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("runtime")
	if !strings.Contains(out.String(), "total=0s") {
		t.Errorf("expected total=0s after reset, got %q", out.String())
	}
}

func TestDispatcherDebugToggleAndRing(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("debug on")
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK from debug on, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("debug dump")
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK from debug dump, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("debug clear")
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK from debug clear, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("debug off")
	if !strings.Contains(out.String(), "OK") {
		t.Errorf("expected OK from debug off, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("debug status")
	if !strings.Contains(out.String(), "debug=false") {
		t.Errorf("expected debug=false after debug off, got %q", out.String())
	}

	out.Reset()
	d.HandleLine("debug on")
	out.Reset()
	d.HandleLine("debug status")
	if !strings.Contains(out.String(), "debug=true") {
		t.Errorf("expected debug=true after debug on, got %q", out.String())
	}
	d.HandleLine("debug off") // leave global debug state as found for other tests
}

func TestDispatcherDebugUsageError(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("debug")
	if !strings.Contains(out.String(), "Usage: debug") {
		t.Errorf("expected usage message, got %q", out.String())
	}
}

func TestDispatcherHelpListsCommands(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("help")
	if !strings.Contains(out.String(), "start") || !strings.Contains(out.String(), "set <key> <value>") {
		t.Errorf("expected help text to list commands, got %q", out.String())
	}
}

func TestDispatcherEmptyLineIsNoOp(t *testing.T) {
	d, out, _ := newTestDispatcher(t)

	d.HandleLine("   ")
	if out.Len() != 0 {
		t.Errorf("expected no output for a blank line, got %q", out.String())
	}
}
