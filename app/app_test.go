package app

import (
	"bytes"
	"strings"
	"testing"

	"ttcontrol/core"
	"ttcontrol/errs"
	"ttcontrol/input"
	"ttcontrol/motor"
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

type fakeCounter struct{ pos int32 }

func (c *fakeCounter) Position() int32 { return c.pos }

type memSink struct{ reports []errs.Report }

func (s *memSink) Append(r errs.Report) error   { s.reports = append(s.reports, r); return nil }
func (s *memSink) Dump() ([]errs.Report, error) { return s.reports, nil }
func (s *memSink) Clear() error                 { s.reports = nil; return nil }

func newTestApp(t *testing.T) (*App, *bytes.Buffer, *clockBox) {
	t.Helper()
	clk := &clockBox{}
	var out bytes.Buffer

	a := New(Config{
		GPIO:    newFakeGPIO(),
		FS:      newFakeMemFS(),
		Pins: PinMap{
			Motor: motor.PinMap{StandbyRelay: 16, MutePhaseA: 17, MutePhaseB: 18, MutePhaseC: 19, MutePhaseD: 20},
			Input: input.PinMap{MainSW: 12},
		},
		Encoder:   &fakeCounter{},
		Display:   nil,
		ErrorSink: &memSink{},
		CLIOut:    &out,
		Clock:     clk.Now,
	})
	if err := a.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	return a, &out, clk
}

type clockBox struct{ t uint32 }

func (c *clockBox) Now() uint32       { return c.t }
func (c *clockBox) Advance(ms uint32) { c.t += ms }

func TestAppBeginMarksSystemInitialised(t *testing.T) {
	a, _, _ := newTestApp(t)
	if !a.Bus.SystemInitialised() {
		t.Error("expected SystemInitialised after Begin")
	}
}

func TestAppTickAdvancesMotorOnStart(t *testing.T) {
	a, _, clk := newTestApp(t)

	a.Motor.Start()
	if a.Motor.State() != motor.Starting {
		t.Fatalf("State = %v, want Starting", a.Motor.State())
	}

	clk.Advance(50)
	a.Tick(clk.Now())

	if a.Bus.MotorState() != uint32(motor.Starting) {
		t.Errorf("bus MotorState = %v, want Starting", a.Bus.MotorState())
	}
}

func TestAppFeedSerialDispatchesCompleteLines(t *testing.T) {
	a, out, _ := newTestApp(t)

	for _, b := range []byte("status\n") {
		a.FeedSerial(b)
	}

	if !strings.Contains(out.String(), "state=") {
		t.Errorf("expected status output after a full line, got %q", out.String())
	}
}

func TestAppFeedSerialBuffersPartialLine(t *testing.T) {
	a, out, _ := newTestApp(t)

	for _, b := range []byte("stat") {
		a.FeedSerial(b)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output before the line terminator, got %q", out.String())
	}
}

func TestAppForceMuteAllDoesNotPanic(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.ForceMuteAll()
}

func TestAppBeginRecoversFromCorruptSettings(t *testing.T) {
	fs := newFakeMemFS()
	fs.files["settings.bin"] = []byte{0xff, 0xff, 0xff, 0xff, 0x00}

	clk := &clockBox{}
	var out bytes.Buffer
	a := New(Config{
		GPIO: newFakeGPIO(),
		FS:   fs,
		Pins: PinMap{
			Motor: motor.PinMap{StandbyRelay: 16, MutePhaseA: 17, MutePhaseB: 18, MutePhaseC: 19, MutePhaseD: 20},
			Input: input.PinMap{MainSW: 12},
		},
		Encoder:   &fakeCounter{},
		ErrorSink: &memSink{},
		CLIOut:    &out,
		Clock:     clk.Now,
	})
	if err := a.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if a.Settings.Config().MaxAmplitude != 100 {
		t.Errorf("expected defaults to load after a corrupt settings file, got MaxAmplitude=%d", a.Settings.Config().MaxAmplitude)
	}

	reports, err := a.Errors.Dump()
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if len(reports) != 1 || reports[0].Kind != errs.SettingsCorrupt {
		t.Errorf("expected one settings_corrupt report, got %+v", reports)
	}
}
