package ui

import (
	"testing"

	"ttcontrol/core"
	"ttcontrol/input"
	"ttcontrol/motor"
	"ttcontrol/settings"
	"ttcontrol/status"
	"ttcontrol/waveform"
)

type fakeGPIO struct{ high map[core.GPIOPin]bool }

func newFakeGPIO() *fakeGPIO { return &fakeGPIO{high: map[core.GPIOPin]bool{}} }

func (f *fakeGPIO) ConfigureOutput(pin core.GPIOPin) error        { return nil }
func (f *fakeGPIO) ConfigureInputPullUp(pin core.GPIOPin) error   { f.high[pin] = true; return nil }
func (f *fakeGPIO) ConfigureInputPullDown(pin core.GPIOPin) error { return nil }
func (f *fakeGPIO) SetPin(pin core.GPIOPin, value bool) error     { f.high[pin] = value; return nil }
func (f *fakeGPIO) GetPin(pin core.GPIOPin) (bool, error)         { return f.high[pin], nil }
func (f *fakeGPIO) ReadPin(pin core.GPIOPin) bool                 { return f.high[pin] }

type fakeCounter struct{ pos int32 }

func (c *fakeCounter) Position() int32 { return c.pos }

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

type fakeDisplay struct {
	cleared bool
	bars    map[int]float64
	shown   bool
}

func newFakeDisplay() *fakeDisplay { return &fakeDisplay{bars: map[int]float64{}} }
func (d *fakeDisplay) Clear()      { d.cleared = true; d.bars = map[int]float64{} }
func (d *fakeDisplay) DrawBar(row int, label string, frac float64) { d.bars[row] = frac }
func (d *fakeDisplay) Show() error { d.shown = true; return nil }

type clockBox struct{ t uint32 }

func (c *clockBox) Now() uint32       { return c.t }
func (c *clockBox) Advance(ms uint32) { c.t += ms }

func newTestProvider(t *testing.T) (*Provider, *motor.Controller, *input.Decoder, *fakeDisplay, *clockBox) {
	t.Helper()
	p, ctrl, dec, display, clk, _ := newTestProviderWithGPIO(t)
	return p, ctrl, dec, display, clk
}

func newTestProviderWithGPIO(t *testing.T) (*Provider, *motor.Controller, *input.Decoder, *fakeDisplay, *clockBox, *fakeGPIO) {
	t.Helper()
	mgr := settings.NewManager(settings.NewFileStore(newFakeMemFS()))
	if err := mgr.Begin(); err != nil {
		t.Fatalf("Begin: %v", err)
	}

	ex := waveform.NewExchange(waveform.DDSState{})
	eng := waveform.NewEngine(waveform.NewLUT(1024), ex)
	port := waveform.NewPort(ex, eng)
	bus := status.NewBus()
	clk := &clockBox{}

	gpio := newFakeGPIO()
	ctrl := motor.NewController(mgr, port, bus, gpio, motor.PinMap{
		StandbyRelay: 16, MutePhaseA: 17, MutePhaseB: 18, MutePhaseC: 19, MutePhaseD: 20,
	}, clk.Now)
	ctrl.Begin()

	counter := &fakeCounter{}
	dec := input.NewDecoder(gpio, input.PinMap{
		MainSW:                 12,
		StandbyButtonEnabled:   true,
		StandbyButton:          21,
		SpeedButtonEnabled:     true,
		SpeedButton:            22,
		StartStopButtonEnabled: true,
		StartStopButton:        23,
	}, counter, clk.Now)
	dec.Begin()

	display := newFakeDisplay()
	p := NewProvider(bus, ctrl, dec, display, 0.1)
	return p, ctrl, dec, display, clk, gpio
}

func TestProviderSelectTogglesStartStop(t *testing.T) {
	p, ctrl, dec, _, clk := newTestProvider(t)

	dec.InjectButton(true)
	clk.Advance(1)
	dec.Update()
	dec.InjectButton(true)
	clk.Advance(21)
	dec.Update()
	dec.InjectButton(false)
	clk.Advance(1)
	dec.Update()
	clk.Advance(21)
	dec.Update()
	clk.Advance(500)
	dec.Update()

	p.Update()

	if ctrl.State() != motor.Starting {
		t.Errorf("State = %v, want Starting after Select toggled start/stop", ctrl.State())
	}
}

func TestProviderRenderDrawsFourBars(t *testing.T) {
	p, _, _, display, _ := newTestProvider(t)

	p.Update()

	if !display.cleared || !display.shown {
		t.Error("expected Clear and Show to be called")
	}
	for row := 0; row < 4; row++ {
		if _, ok := display.bars[row]; !ok {
			t.Errorf("expected bar drawn for row %d", row)
		}
	}
}

func TestProviderEncoderDeltaAdjustsSpeed(t *testing.T) {
	p, _, dec, _, clk := newTestProvider(t)

	dec.InjectDelta(5)
	clk.Advance(100)
	dec.Update()

	p.Update()
	// AdjustSpeed has no directly observable public getter outside a
	// Tick, so this mainly verifies Update() does not panic when a main
	// encoder delta is pending and exercises the speed-step wiring.
}

func TestProviderStandbyButtonTogglesStandby(t *testing.T) {
	p, ctrl, _, _, clk, gpio := newTestProviderWithGPIO(t)

	if ctrl.State() != motor.Standby {
		t.Fatalf("State = %v, want Standby before any button press", ctrl.State())
	}

	p.Update() // arms pollGlobalButton's idle-high edge state

	gpio.high[21] = false // standby button pressed (active low)
	clk.Advance(250)
	p.Update()

	if ctrl.State() == motor.Standby {
		t.Errorf("State = %v, want motor out of Standby after the panel button press", ctrl.State())
	}
}

func TestProviderExitResetsPitch(t *testing.T) {
	p, ctrl, dec, _, clk := newTestProvider(t)
	ctrl.SetPitch(5)

	dec.InjectButton(true)
	clk.Advance(1)
	dec.Update()
	dec.InjectButton(true)
	clk.Advance(21)
	dec.Update()
	dec.InjectButton(false)
	clk.Advance(1)
	dec.Update()
	clk.Advance(5101)
	dec.Update()
	clk.Advance(401)
	dec.Update()

	p.Update()
	if got := ctrl.PitchPercent(); got != 0 {
		t.Errorf("PitchPercent after Exit = %v, want 0", got)
	}
}
