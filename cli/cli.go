// Package cli implements the turntable's line-oriented serial command
// surface: start/stop/speed control, status reporting, error-log
// inspection and a small settings registry of name/get/set closures.
// There is no on-device menu here, so there are no menu-poking commands
// either.
package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"ttcontrol/core"
	"ttcontrol/errs"
	"ttcontrol/motor"
	"ttcontrol/settings"
	"ttcontrol/status"
)

// SettingItem is one entry in the registry `list`/`get`/`set` walk.
// Get/Set are closures over whatever backing field they read and write.
type SettingItem struct {
	Name string
	Get  func() string
	Set  func(string) error
}

// Dispatcher parses and executes one line at a time, writing human
// readable responses to Out. It holds no line-editing or history state;
// that belongs to whatever terminal sits on the other end of the wire.
type Dispatcher struct {
	ctrl *motor.Controller
	mgr  *settings.Manager
	bus  *status.Bus
	errs *errs.Handler
	out  io.Writer

	registry []SettingItem
}

func NewDispatcher(ctrl *motor.Controller, mgr *settings.Manager, bus *status.Bus, errHandler *errs.Handler, out io.Writer) *Dispatcher {
	d := &Dispatcher{ctrl: ctrl, mgr: mgr, bus: bus, errs: errHandler, out: out}
	d.registerSettings()
	return d
}

// registerSettings builds the name/get/set table: a handful of global
// config fields, a handful of current-speed-profile fields that need
// applySettings re-run after a write, and one live-motor-state entry.
func (d *Dispatcher) registerSettings() {
	conf := func() *settings.GlobalConfig { return d.mgr.Config() }

	d.registry = []SettingItem{
		{
			Name: "brightness",
			Get:  func() string { return strconv.Itoa(int(conf().DisplayBrightness)) },
			Set: func(v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid brightness: %w", err)
				}
				conf().DisplayBrightness = uint8(n)
				return nil
			},
		},
		{
			Name: "ramp",
			Get:  func() string { return strconv.Itoa(int(conf().RampType)) },
			Set: func(v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid ramp: %w", err)
				}
				conf().RampType = settings.RampType(n)
				return nil
			},
		},
		{
			Name: "pitch_step",
			Get:  func() string { return strconv.FormatFloat(conf().PitchStepSize, 'f', 3, 64) },
			Set: func(v string) error {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return fmt.Errorf("invalid pitch_step: %w", err)
				}
				conf().PitchStepSize = f
				return nil
			},
		},
		{
			Name: "rev_enc",
			Get: func() string {
				if conf().ReverseEncoder {
					return "1"
				}
				return "0"
			},
			Set: func(v string) error {
				conf().ReverseEncoder = v == "1" || strings.EqualFold(v, "true")
				return nil
			},
		},
		{
			Name: "saver_mode",
			Get:  func() string { return strconv.Itoa(int(conf().ScreensaverMode)) },
			Set: func(v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid saver_mode: %w", err)
				}
				conf().ScreensaverMode = settings.ScreensaverMode(n)
				return nil
			},
		},
		{
			Name: "freq",
			Get:  func() string { return strconv.FormatFloat(conf().CurrentSpeedSettings().Frequency, 'f', 3, 64) },
			Set: func(v string) error {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return fmt.Errorf("invalid freq: %w", err)
				}
				conf().CurrentSpeedSettings().Frequency = f
				d.ctrl.ApplySettings()
				return nil
			},
		},
		{
			Name: "phase1",
			Get:  func() string { return strconv.FormatFloat(conf().CurrentSpeedSettings().PhaseOffset[0], 'f', 2, 64) },
			Set:  d.setPhase(0),
		},
		{
			Name: "phase2",
			Get:  func() string { return strconv.FormatFloat(conf().CurrentSpeedSettings().PhaseOffset[1], 'f', 2, 64) },
			Set:  d.setPhase(1),
		},
		{
			Name: "phase3",
			Get:  func() string { return strconv.FormatFloat(conf().CurrentSpeedSettings().PhaseOffset[2], 'f', 2, 64) },
			Set:  d.setPhase(2),
		},
		{
			Name: "phase4",
			Get:  func() string { return strconv.FormatFloat(conf().CurrentSpeedSettings().PhaseOffset[3], 'f', 2, 64) },
			Set:  d.setPhase(3),
		},
		{
			Name: "soft_start",
			Get:  func() string { return strconv.FormatFloat(conf().CurrentSpeedSettings().SoftStartDuration, 'f', 2, 64) },
			Set: func(v string) error {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return fmt.Errorf("invalid soft_start: %w", err)
				}
				conf().CurrentSpeedSettings().SoftStartDuration = f
				return nil
			},
		},
		{
			Name: "kick",
			Get:  func() string { return strconv.Itoa(int(conf().CurrentSpeedSettings().StartupKick)) },
			Set: func(v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid kick: %w", err)
				}
				conf().CurrentSpeedSettings().StartupKick = uint8(n)
				return nil
			},
		},
		{
			Name: "kick_dur",
			Get:  func() string { return strconv.Itoa(int(conf().CurrentSpeedSettings().StartupKickDuration)) },
			Set: func(v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid kick_dur: %w", err)
				}
				conf().CurrentSpeedSettings().StartupKickDuration = uint8(n)
				return nil
			},
		},
		{
			Name: "pitch",
			Get:  func() string { return strconv.FormatFloat(d.ctrl.PitchPercent(), 'f', 2, 64) },
			Set: func(v string) error {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return fmt.Errorf("invalid pitch: %w", err)
				}
				d.ctrl.SetPitch(f)
				return nil
			},
		},
		{
			Name: "err_dur",
			Get:  func() string { return strconv.Itoa(int(conf().ErrorDisplayDuration)) },
			Set: func(v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid err_dur: %w", err)
				}
				conf().ErrorDisplayDuration = uint8(n)
				d.errs.SetDisplayDuration(uint32(n))
				return nil
			},
		},
	}
}

func (d *Dispatcher) setPhase(index int) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid phase%d: %w", index+1, err)
		}
		d.mgr.Config().CurrentSpeedSettings().PhaseOffset[index] = f
		d.ctrl.ApplySettings()
		return nil
	}
}

func (d *Dispatcher) find(name string) *SettingItem {
	for i := range d.registry {
		if d.registry[i].Name == name {
			return &d.registry[i]
		}
	}
	return nil
}

func (d *Dispatcher) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

// HandleLine parses and executes a single command line. It never
// returns an error; failures are written to Out the same way the
// original printed straight to the serial port.
func (d *Dispatcher) HandleLine(line string) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return
	}
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "start":
		d.ctrl.Start()
		d.printf("OK\n")
	case "stop":
		d.ctrl.Stop()
		d.printf("OK\n")
	case "speed":
		d.handleSpeed(args)
	case "s":
		d.ctrl.CycleSpeed()
		d.printf("OK\n")
	case "status", "i":
		d.printStatus()
	case "t":
		d.ctrl.ToggleStandby()
		d.printf("OK\n")
	case "p":
		d.ctrl.ResetPitch()
		d.printf("OK\n")
	case "f":
		if err := d.mgr.FactoryReset(); err != nil {
			d.printf("Factory reset failed: %v\n", err)
			return
		}
		d.printf("Factory reset complete\n")
	case "list":
		d.printList()
	case "get":
		d.handleGet(args)
	case "set":
		d.handleSet(args)
	case "error":
		d.handleError(args)
	case "preset":
		d.handlePreset(args)
	case "debug":
		d.handleDebug(args)
	case "runtime":
		d.handleRuntime(args)
	case "help":
		d.printHelp()
	default:
		d.printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
	}
}

func (d *Dispatcher) handleSpeed(args []string) {
	if len(args) != 1 {
		d.printf("Usage: speed <0|1|2>\n")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n > 2 {
		d.printf("Invalid speed index: %s (expected 0-2)\n", args[0])
		return
	}
	d.ctrl.SetSpeed(settings.SpeedMode(n))
	d.printf("OK\n")
}

func (d *Dispatcher) handleGet(args []string) {
	if len(args) != 1 {
		d.printf("Usage: get <key>\n")
		return
	}
	item := d.find(args[0])
	if item == nil {
		d.printf("Unknown setting key: %s\n", args[0])
		return
	}
	d.printf("%s = %s\n", item.Name, item.Get())
}

func (d *Dispatcher) handleSet(args []string) {
	if len(args) != 2 {
		d.printf("Usage: set <key> <value>\n")
		return
	}
	item := d.find(args[0])
	if item == nil {
		d.printf("Unknown setting key: %s\n", args[0])
		return
	}
	if err := item.Set(args[1]); err != nil {
		d.printf("%v\n", err)
		return
	}
	if err := d.mgr.Save(); err != nil {
		d.printf("Set OK but save failed: %v\n", err)
		return
	}
	d.printf("OK\n")
}

func (d *Dispatcher) handleError(args []string) {
	if len(args) != 1 {
		d.printf("Usage: error <dump|clear>\n")
		return
	}
	switch args[0] {
	case "dump":
		reports, err := d.errs.Dump()
		if err != nil {
			d.printf("Error dump failed: %v\n", err)
			return
		}
		if len(reports) == 0 {
			d.printf("Error log empty\n")
			return
		}
		for _, r := range reports {
			d.printf("%d,%s,%s\n", r.AtMillis, r.Kind, r.Message)
		}
	case "clear":
		if err := d.errs.ClearLog(); err != nil {
			d.printf("Error clear failed: %v\n", err)
			return
		}
		d.errs.ClearCriticalFlag()
		d.printf("OK\n")
	default:
		d.printf("Usage: error <dump|clear>\n")
	}
}

func (d *Dispatcher) handlePreset(args []string) {
	usage := "Usage: preset <save|load|reset|rename|dup> <slot> [value]"
	if len(args) < 2 {
		d.printf("%s\n", usage)
		return
	}
	slot, err := strconv.Atoi(args[1])
	if err != nil {
		d.printf("Invalid slot: %s\n", args[1])
		return
	}
	switch args[0] {
	case "save":
		if err := d.mgr.SavePreset(slot); err != nil {
			d.printf("Preset save failed: %v\n", err)
			return
		}
		d.printf("OK\n")
	case "load":
		if err := d.mgr.LoadPreset(slot); err != nil {
			d.printf("Preset load failed: %v\n", err)
			return
		}
		d.ctrl.ApplySettings()
		d.printf("OK\n")
	case "reset":
		if err := d.mgr.ResetPreset(slot); err != nil {
			d.printf("Preset reset failed: %v\n", err)
			return
		}
		d.printf("OK\n")
	case "rename":
		if len(args) != 3 {
			d.printf("Usage: preset rename <slot> <name>\n")
			return
		}
		if err := d.mgr.RenamePreset(slot, args[2]); err != nil {
			d.printf("Preset rename failed: %v\n", err)
			return
		}
		d.printf("OK\n")
	case "dup":
		if len(args) != 3 {
			d.printf("Usage: preset dup <src> <dest>\n")
			return
		}
		dest, err := strconv.Atoi(args[2])
		if err != nil {
			d.printf("Invalid dest slot: %s\n", args[2])
			return
		}
		if err := d.mgr.DuplicatePreset(slot, dest); err != nil {
			d.printf("Preset dup failed: %v\n", err)
			return
		}
		d.printf("OK\n")
	default:
		d.printf("%s\n", usage)
	}
}

// handleDebug toggles verbose DebugPrintln output and inspects the
// post-mortem timing ring buffer core.RecordTiming keeps, both
// registered globally by target-specific code rather than threaded
// through the dispatcher.
func (d *Dispatcher) handleDebug(args []string) {
	if len(args) != 1 {
		d.printf("Usage: debug <on|off|status|dump|clear>\n")
		return
	}
	switch args[0] {
	case "on":
		core.SetDebugEnabled(true)
		d.printf("OK\n")
	case "off":
		core.SetDebugEnabled(false)
		d.printf("OK\n")
	case "status":
		d.printf("debug=%v\n", core.IsDebugEnabled())
	case "dump":
		core.DumpTimingRing()
		d.printf("OK\n")
	case "clear":
		core.ClearTimingRing()
		d.printf("OK\n")
	default:
		d.printf("Usage: debug <on|off|status|dump|clear>\n")
	}
}

// handleRuntime prints the session/total runtime counters an "about"
// screen would show, and resets the persisted total the way the menu
// tree's reset-runtime entry did — the only surface left for it now
// that the menu itself is out of scope.
func (d *Dispatcher) handleRuntime(args []string) {
	if len(args) == 0 {
		d.printf("session=%ds total=%ds\n", d.mgr.SessionRuntime(), d.mgr.Config().TotalRuntime)
		return
	}
	if len(args) != 1 || args[0] != "reset" {
		d.printf("Usage: runtime [reset]\n")
		return
	}
	if err := d.mgr.ResetTotalRuntime(); err != nil {
		d.printf("Reset failed: %v\n", err)
		return
	}
	d.printf("OK\n")
}

func (d *Dispatcher) printStatus() {
	conf := d.mgr.Config()
	d.printf("state=%s speed=%d freq=%.2f pitch=%.2f%% critical=%v\n",
		motor.State(d.bus.MotorState()),
		conf.CurrentSpeed,
		d.bus.Frequency(),
		d.bus.PitchPercent(),
		d.errs.HasCriticalError(),
	)
}

func (d *Dispatcher) printList() {
	for _, item := range d.registry {
		d.printf("%s = %s\n", item.Name, item.Get())
	}
}

func (d *Dispatcher) printHelp() {
	d.printf("Commands:\n")
	d.printf("  start              start the motor\n")
	d.printf("  stop               stop the motor\n")
	d.printf("  speed <0|1|2>      select 33/45/78 RPM directly\n")
	d.printf("  s                  cycle to the next enabled speed\n")
	d.printf("  status | i         print state, speed, frequency and pitch\n")
	d.printf("  t                  toggle standby\n")
	d.printf("  p                  reset pitch to 0%%\n")
	d.printf("  f                  factory reset all settings\n")
	d.printf("  list               list every setting key and value\n")
	d.printf("  get <key>          read one setting\n")
	d.printf("  set <key> <value>  write one setting and persist it\n")
	d.printf("  error dump         print the error log\n")
	d.printf("  error clear        clear the error log and critical flag\n")
	d.printf("  preset save <n>    save the live config to preset slot n\n")
	d.printf("  preset load <n>    load preset slot n and apply it\n")
	d.printf("  preset reset <n>   erase preset slot n and restore its default name\n")
	d.printf("  preset rename <n> <name>   rename preset slot n\n")
	d.printf("  preset dup <src> <dest>    copy preset src onto dest\n")
	d.printf("  debug on|off       toggle verbose debug output\n")
	d.printf("  debug status       print whether debug output is enabled\n")
	d.printf("  debug dump         print the post-mortem timing ring buffer\n")
	d.printf("  debug clear        clear the timing ring buffer\n")
	d.printf("  runtime            print session and total runtime in seconds\n")
	d.printf("  runtime reset      zero the persisted total runtime counter\n")
	d.printf("  help               show this message\n")
}
