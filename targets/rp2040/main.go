//go:build rp2040

package main

import (
	"machine"
	"sync/atomic"
	"time"

	"ttcontrol/app"
	"ttcontrol/core"
	"ttcontrol/input"
	"ttcontrol/motor"
	"ttcontrol/ui"
	"ttcontrol/waveform"
)

var core1Ready atomic.Bool

// mainApp is constructed on Core 0 before Core 1 starts and is only
// reached from Core 1 through its Engine() accessor, the one field the
// synthesis loop is allowed to touch.
var mainApp *app.App

func main() {
	// Clear any watchdog state left over from a previous reset before
	// arming the real 2s timeout the control loop must keep feeding.
	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0}); err != nil {
		return
	}

	machine.UART0.Configure(machine.UARTConfig{BaudRate: 115200})

	core.SetDebugWriter(func(s string) {
		uartWriter{}.Write([]byte(s + "\r\n"))
	})
	core.InitAsyncDebug()

	gpio := NewRPGPIODriver()
	core.SetGPIODriver(gpio)
	i2c := NewRPI2CDriver()
	if err := i2c.ConfigureBus(0, 400_000); err != nil {
		panic("i2c0 configure: " + err.Error())
	}

	var display ui.StatusDisplay
	if bus, err := i2c.GetMachineBus(0); err == nil {
		display = ui.NewSSD1306Display(bus.(*machine.I2C))
	} else {
		display = ui.NoopDisplay{}
	}

	flashFS := NewFlashFileSystem()
	sink := newFlashErrorSink(flashFS)

	mainApp = app.New(app.Config{
		GPIO: gpio,
		FS:   flashFS,
		Pins: app.PinMap{
			Motor: motor.PinMap{
				StandbyRelay: 16,
				MutePhaseA:   17,
				MutePhaseB:   18,
				MutePhaseC:   19,
				MutePhaseD:   20,
			},
			Input: input.PinMap{
				MainSW:                 12,
				PitchEnabled:           true,
				PitchCLK:               13,
				PitchDT:                14,
				PitchSW:                15,
				StandbyButtonEnabled:   true,
				StandbyButton:          21,
				SpeedButtonEnabled:     true,
				SpeedButton:            22,
				StartStopButtonEnabled: true,
				StartStopButton:        23,
			},
		},
		Encoder:     newMainEncoder(),
		Display:     display,
		ErrorSink:   sink,
		CLIOut:      uartWriter{},
		PitchStepHz: 0.1,
		LUTSize:     4096,
		Clock:       hardwareMillis,
	})

	if err := mainApp.Begin(); err != nil {
		panic("app begin: " + err.Error())
	}

	machine.Core1.Start(core1Main)
	for !core1Ready.Load() {
		time.Sleep(time.Millisecond)
	}

	if err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 2000}); err != nil {
		panic("watchdog configure: " + err.Error())
	}
	if err := machine.Watchdog.Start(); err != nil {
		panic("watchdog start: " + err.Error())
	}

	for {
		func() {
			defer func() {
				if r := recover(); r != nil {
					mainApp.ForceMuteAll()
				}
			}()

			mainApp.Tick(hardwareMillis())

			for machine.UART0.Buffered() > 0 {
				b, err := machine.UART0.ReadByte()
				if err != nil {
					break
				}
				mainApp.FeedSerial(b)
			}
		}()

		machine.Watchdog.Update()
		time.Sleep(time.Millisecond)
	}
}

// core1Main owns the DDS refill loop exclusively: Engine, LUT and the PWM
// DMA driver never cross back to Core 0 once this starts.
func core1Main() {
	driver := NewPWMDMADriver()
	driver.Start()
	waveform.SetDriver(driver)

	engine := mainApp.Engine()
	engine.SetEnabled(true)

	core1Ready.Store(true)

	for {
		engine.RefillOnce(waveform.MustDriver())
	}
}

type uartWriter struct{}

func (uartWriter) Write(p []byte) (int, error) {
	return machine.UART0.Write(p)
}

var _ waveform.Driver = (*PWMDMADriver)(nil)
