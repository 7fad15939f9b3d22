package motor

import (
	"testing"

	"ttcontrol/core"
	"ttcontrol/settings"
	"ttcontrol/status"
	"ttcontrol/waveform"
)

type fakeGPIO struct {
	outputs map[core.GPIOPin]bool
}

func newFakeGPIO() *fakeGPIO { return &fakeGPIO{outputs: map[core.GPIOPin]bool{}} }

func (f *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error         { return nil }
func (f *fakeGPIO) ConfigureInputPullUp(pin core.GPIOPin) error    { return nil }
func (f *fakeGPIO) ConfigureInputPullDown(pin core.GPIOPin) error  { return nil }
func (f *fakeGPIO) SetPin(pin core.GPIOPin, value bool) error {
	f.outputs[pin] = value
	return nil
}
func (f *fakeGPIO) GetPin(pin core.GPIOPin) (bool, error) { return f.outputs[pin], nil }
func (f *fakeGPIO) ReadPin(pin core.GPIOPin) bool         { return f.outputs[pin] }

type memFS struct {
	files map[string][]byte
}

func newMemFS() *memFS { return &memFS{files: map[string][]byte{}} }
func (m *memFS) ReadFile(name string) ([]byte, error) {
	d, ok := m.files[name]
	if !ok {
		return nil, errNotFound
	}
	return d, nil
}
func (m *memFS) WriteFile(name string, data []byte) error {
	m.files[name] = append([]byte(nil), data...)
	return nil
}
func (m *memFS) Remove(name string) error { delete(m.files, name); return nil }
func (m *memFS) Exists(name string) bool  { _, ok := m.files[name]; return ok }

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }

var errNotFound = notFoundErr{}

func testPins() PinMap {
	return PinMap{
		StandbyRelay: 16,
		MutePhaseA:   17,
		MutePhaseB:   18,
		MutePhaseC:   19,
		MutePhaseD:   20,
	}
}

func newTestController(t *testing.T) (*Controller, *fakeClock, *fakeGPIO) {
	t.Helper()
	mgr := settings.NewManager(settings.NewFileStore(newMemFS()))
	if err := mgr.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	ex := waveform.NewExchange(waveform.DDSState{})
	eng := waveform.NewEngine(waveform.NewLUT(1024), ex)
	port := waveform.NewPort(ex, eng)

	bus := status.NewBus()
	gpio := newFakeGPIO()
	clk := &fakeClock{t: 0}

	ctrl := NewController(mgr, port, bus, gpio, testPins(), clk.Now)
	ctrl.Begin()
	// Clear the power-on relay delay so tests don't need to simulate it.
	ctrl.powerOnDelayActive = false
	return ctrl, clk, gpio
}

type fakeClock struct{ t uint32 }

func (c *fakeClock) Now() uint32 { return c.t }
func (c *fakeClock) Advance(ms uint32) { c.t += ms }

func TestControllerStartTransitionsToStarting(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.Start()
	if ctrl.State() != Starting {
		t.Errorf("State = %v, want Starting", ctrl.State())
	}
}

func TestControllerStartIsNoOpWhenAlreadyRunning(t *testing.T) {
	ctrl, clk, _ := newTestController(t)
	ctrl.Start()
	for i := 0; i < 20; i++ {
		clk.Advance(200)
		ctrl.Update()
	}
	if ctrl.State() != Running {
		t.Fatalf("expected Running after soft start, got %v", ctrl.State())
	}
	startTimeBefore := ctrl.stateStartTime
	ctrl.Start()
	if ctrl.stateStartTime != startTimeBefore {
		t.Error("Start() while already running should be a no-op")
	}
}

func TestControllerSoftStartReachesRunningAndFullAmplitude(t *testing.T) {
	ctrl, clk, _ := newTestController(t)
	ctrl.Start()
	for i := 0; i < 20; i++ {
		clk.Advance(200) // 4s total > 1s softStartDuration for 33RPM
		ctrl.Update()
	}
	if ctrl.State() != Running {
		t.Fatalf("State = %v, want Running", ctrl.State())
	}
	if ctrl.currentAmp != ctrl.targetAmp {
		t.Errorf("currentAmp = %v, want targetAmp %v", ctrl.currentAmp, ctrl.targetAmp)
	}
}

func TestControllerReducedAmplitudeLatchesAfterDelay(t *testing.T) {
	ctrl, clk, _ := newTestController(t)
	ctrl.Start()
	for i := 0; i < 10; i++ {
		clk.Advance(200)
		ctrl.Update()
	}
	if ctrl.State() != Running {
		t.Fatalf("expected Running, got %v", ctrl.State())
	}
	// 33RPM amplitudeDelay default is 5s.
	for i := 0; i < 30; i++ {
		clk.Advance(200)
		ctrl.Update()
	}
	if !ctrl.isReducedAmp {
		t.Error("expected reduced amplitude to have latched")
	}
	wantAmp := ctrl.targetAmp * 0.80 // 33RPM default reducedAmplitude=80%
	if diff := ctrl.currentAmp - wantAmp; diff > 0.001 || diff < -0.001 {
		t.Errorf("currentAmp = %v, want %v", ctrl.currentAmp, wantAmp)
	}
}

func TestControllerStopEntersStoppingAndEventuallyStopped(t *testing.T) {
	ctrl, clk, _ := newTestController(t)
	ctrl.Start()
	for i := 0; i < 10; i++ {
		clk.Advance(200)
		ctrl.Update()
	}
	ctrl.Stop()
	if ctrl.State() != Stopping {
		t.Fatalf("State = %v, want Stopping", ctrl.State())
	}
	// brakeDuration default is 2s.
	for i := 0; i < 15; i++ {
		clk.Advance(200)
		ctrl.Update()
	}
	if ctrl.State() != Stopped {
		t.Errorf("State = %v, want Stopped", ctrl.State())
	}
	if ctrl.wave.Enabled() {
		t.Error("expected waveform disabled after braking completes")
	}
}

func TestControllerToggleStandbyFromStopped(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	// AutoBoot defaults to false, so Begin() leaves the controller in
	// Standby rather than advancing it to Stopped.
	if ctrl.State() != Standby {
		t.Fatalf("expected Standby after Begin, got %v", ctrl.State())
	}
	ctrl.ToggleStandby()
	if ctrl.State() != Stopped {
		t.Errorf("State = %v, want Stopped", ctrl.State())
	}
	ctrl.ToggleStandby()
	if ctrl.State() != Standby {
		t.Errorf("State = %v, want Standby", ctrl.State())
	}
}

func TestControllerCycleSpeedSkips78WhenDisabled(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.cfg.Config().Enable78RPM = false
	ctrl.currentSpeedMode = settings.Speed45
	ctrl.CycleSpeed()
	if ctrl.currentSpeedMode != settings.Speed33 {
		t.Errorf("currentSpeedMode = %v, want Speed33 (78 skipped)", ctrl.currentSpeedMode)
	}
}

func TestControllerAdjustPitchFreqClampsToRange(t *testing.T) {
	ctrl, _, _ := newTestController(t)
	ctrl.pitchRange = 10 // +/-10%
	baseFreq := ctrl.cfg.Config().CurrentSpeedSettings().Frequency

	ctrl.AdjustPitchFreq(baseFreq) // try to push pitch far beyond the range
	maxPct := ctrl.pitchPercent
	if maxPct > 10.001 {
		t.Errorf("pitchPercent = %v, want clamped to <=10", maxPct)
	}
}

func TestControllerFDAKeepsAmplitudeNonNegativeDuringStart(t *testing.T) {
	ctrl, clk, _ := newTestController(t)
	ctrl.cfg.Config().FreqDependentAmplitude = 50 // 50% floor
	ctrl.Start()
	clk.Advance(10) // still early in soft-start ramp, low currentAmp
	ctrl.Update()
	if ctrl.currentAmp < 0 {
		t.Error("currentAmp should never go negative under FDA scaling")
	}
}
