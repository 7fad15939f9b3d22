// Package app wires every subsystem together into one owned value:
// settings, motor, waveform, ui, and the error handler all live as
// fields of a single top-level object constructed once at startup
// rather than package-level state reached into from everywhere.
package app

import (
	"io"

	"ttcontrol/cli"
	"ttcontrol/core"
	"ttcontrol/errs"
	"ttcontrol/input"
	"ttcontrol/motor"
	"ttcontrol/settings"
	"ttcontrol/status"
	"ttcontrol/ui"
	"ttcontrol/waveform"
)

// Config bundles the target-specific pieces App needs to construct its
// subsystems: GPIO access, persistent storage, the status panel, the
// error-log sink, the CLI's output sink and the main encoder's position
// source. Everything else (motor, settings schema, waveform synthesis)
// is built internally.
type Config struct {
	GPIO  core.GPIODriver
	FS    settings.FileSystem
	Pins  PinMap
	Encoder input.QuadratureCounter

	Display   ui.StatusDisplay
	ErrorSink errs.Sink
	CLIOut    io.Writer

	PitchStepHz float64
	LUTSize     int

	Clock func() uint32
}

// PinMap groups the motor-relay and input pins App hands down to the
// subsystems it constructs: relays and mute lines to motor.PinMap,
// encoder and button lines to input.PinMap.
type PinMap struct {
	Motor motor.PinMap
	Input input.PinMap
}

// App owns every Core 0 subsystem: configuration, the motor state
// machine, the shared status bus, input decoding, the minimal UI
// dispatcher and the serial CLI. The DDS engine itself is Core 1's
// concern and is only reached here through the narrow waveform.Port
// the motor controller publishes through.
type App struct {
	Settings *settings.Manager
	Bus      *status.Bus
	Errors   *errs.Handler
	Motor    *motor.Controller
	Decoder  *input.Decoder
	UI       *ui.Provider
	CLI      *cli.Dispatcher

	exchange *waveform.Exchange
	engine   *waveform.Engine
	port     *waveform.Port

	inputBuffer    []byte
	lastMotorState uint32
}

// New constructs every subsystem. Settings are loaded here rather than
// in Begin because motor.NewController reads boot-time config (AutoBoot,
// AutoStart) at construction, so the config must already be loaded by
// then; a settingsErr loaded before the error handler exists is
// reported as soon as one is built.
func New(cfg Config) *App {
	if cfg.LUTSize == 0 {
		cfg.LUTSize = 1024
	}

	mgr := settings.NewManager(settings.NewFileStore(cfg.FS))
	settingsErr := mgr.Begin()

	exchange := waveform.NewExchange(waveform.DDSState{})
	engine := waveform.NewEngine(waveform.NewLUT(cfg.LUTSize), exchange)
	port := waveform.NewPort(exchange, engine)

	bus := status.NewBus()

	ctrl := motor.NewController(mgr, port, bus, cfg.GPIO, cfg.Pins.Motor, cfg.Clock)

	decoder := input.NewDecoder(cfg.GPIO, cfg.Pins.Input, cfg.Encoder, cfg.Clock)

	pitchStepHz := cfg.PitchStepHz
	if pitchStepHz == 0 {
		pitchStepHz = 0.1
	}
	provider := ui.NewProvider(bus, ctrl, decoder, cfg.Display, pitchStepHz)

	errHandler := errs.NewHandler(cfg.ErrorSink, nil, ctrl, uint32(mgr.Config().ErrorDisplayDuration))
	if settingsErr != nil {
		kind := errs.Of(settingsErr)
		if kind == "" {
			kind = errs.SettingsCorrupt
		}
		errHandler.Report(errs.Report{
			Kind:    kind,
			Message: settingsErr.Error(),
		})
	}

	dispatcher := cli.NewDispatcher(ctrl, mgr, bus, errHandler, cfg.CLIOut)

	return &App{
		Settings:    mgr,
		Bus:         bus,
		Errors:      errHandler,
		Motor:       ctrl,
		Decoder:     decoder,
		UI:          provider,
		CLI:         dispatcher,
		exchange:    exchange,
		engine:      engine,
		port:        port,
		inputBuffer: make([]byte, 0, 128),
	}
}

// Engine returns the DDS refill task for the target's Core 1 loop to
// drive against its PWM/DMA driver. Core 0 never calls RefillOnce.
func (a *App) Engine() *waveform.Engine { return a.engine }

// Begin configures the relay GPIOs and the encoder pins and marks the
// system initialised, once settings are already in memory.
func (a *App) Begin() error {
	a.Motor.Begin()
	a.Decoder.Begin()
	a.lastMotorState = a.Bus.MotorState()
	a.Bus.SetSystemInitialised(true)
	return nil
}

// Tick advances every Core 0 subsystem by one poll: input decode, the
// motor state machine and the UI dispatcher. Runtime accounting is the
// motor controller's own concern while Running; Tick doesn't duplicate
// it. Call this once per control-loop iteration; nowMillis must be
// monotonic.
func (a *App) Tick(nowMillis uint32) {
	a.Decoder.Update()
	a.Motor.Update()
	a.UI.Update()

	if s := a.Bus.MotorState(); s != a.lastMotorState {
		core.RecordTiming(core.EvtStateTransition, 0, nowMillis, a.lastMotorState, s)
		a.lastMotorState = s
	}
}

// FeedSerial streams one byte of CLI input: bytes accumulate until a
// line terminator, at which point the line is dispatched and the buffer
// is cleared for the next one.
func (a *App) FeedSerial(b byte) {
	if b == '\n' || b == '\r' {
		if len(a.inputBuffer) > 0 {
			a.CLI.HandleLine(string(a.inputBuffer))
			a.inputBuffer = a.inputBuffer[:0]
		}
		return
	}
	a.inputBuffer = append(a.inputBuffer, b)
}

// ForceMuteAll immediately silences every phase, bypassing the state
// machine; targets call this directly from a watchdog-timeout or
// panic-recovery path where there may be no time left to run a normal
// Tick.
func (a *App) ForceMuteAll() { a.Motor.ForceMuteAll() }
