// Package errs implements the error-kind taxonomy and reporting policy
// for the turntable firmware: local recovery for soft failures, a sticky
// critical flag and forced relay mute for fatal ones.
package errs

import (
	"fmt"

	"ttcontrol/core"
)

// Kind is a comparable error category, grounded on the same small
// string-newtype-implements-error shape used elsewhere in the retrieval
// pack for driver-level error codes.
type Kind string

const (
	SystemFreeze    Kind = "system_freeze"
	MotorStall      Kind = "motor_stall"
	SettingsCorrupt Kind = "settings_corrupt"
	I2CFailure      Kind = "i2c_failure"
	OutOfMemory     Kind = "out_of_memory"
)

func (k Kind) Error() string { return string(k) }

// Report carries a single error occurrence through the handling pipeline.
type Report struct {
	Kind     Kind
	Message  string
	Critical bool
	AtMillis uint32
}

func (r Report) String() string {
	return fmt.Sprintf("%s: %s (critical=%v)", r.Kind, r.Message, r.Critical)
}

// Of extracts a Kind from an error chain, returning "" if none is present.
func Of(err error) Kind {
	if err == nil {
		return ""
	}
	if k, ok := err.(Kind); ok {
		return k
	}
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok {
		return Of(u.Unwrap())
	}
	return ""
}

// RelayForcer is invoked as soon as a critical report arrives, right
// after the debug trace and before the report is logged or displayed — it drives every mute relay to the inactive
// state regardless of the motor state machine's current position.
type RelayForcer interface {
	ForceMuteAll()
}

// Display shows a modal message for at least the given duration.
type Display interface {
	ShowError(message string, minDurationMillis uint32)
}

// Sink persists reports for later retrieval (error dump / clear).
type Sink interface {
	Append(r Report) error
	Dump() ([]Report, error)
	Clear() error
}

// Handler implements local recovery for soft kinds, a modal surfaced to
// the UI for every kind, and immediate relay forcing plus a sticky flag
// for critical reports.
type Handler struct {
	sink    Sink
	display Display
	relays  RelayForcer

	errorDisplayDuration uint32 // seconds, from GlobalConfig
	hasCriticalError     bool
}

func NewHandler(sink Sink, display Display, relays RelayForcer, displayDurationSeconds uint32) *Handler {
	return &Handler{
		sink:                 sink,
		display:              display,
		relays:               relays,
		errorDisplayDuration: displayDurationSeconds,
	}
}

// SetDisplayDuration updates the configured modal duration (seconds),
// e.g. after a `set err_dur` config change.
func (h *Handler) SetDisplayDuration(seconds uint32) {
	h.errorDisplayDuration = seconds
}

func (h *Handler) HasCriticalError() bool { return h.hasCriticalError }

// Dump returns every report the sink has retained, oldest first.
func (h *Handler) Dump() ([]Report, error) {
	if h.sink == nil {
		return nil, nil
	}
	return h.sink.Dump()
}

// ClearLog empties the sink without touching the sticky critical flag;
// pair with ClearCriticalFlag to also clear the sticky critical flag.
func (h *Handler) ClearLog() error {
	if h.sink == nil {
		return nil
	}
	return h.sink.Clear()
}

// ClearCriticalFlag is the user-initiated recovery step; the state
// machine itself is never forced out of its current state by Report.
func (h *Handler) ClearCriticalFlag() { h.hasCriticalError = false }

// Report runs the full policy pipeline for one error occurrence.
func (h *Handler) Report(r Report) {
	core.DebugPrintln("[error] " + r.String())

	if r.Critical {
		h.hasCriticalError = true
		if h.relays != nil {
			h.relays.ForceMuteAll()
		}
	}

	switch r.Kind {
	case SettingsCorrupt:
		// Local recovery: caller resets to defaults and continues booting;
		// this handler only logs and displays, it does not own settings.
	case I2CFailure:
		// Transient: caller retries next frame; nothing else to do here.
	}

	if h.sink != nil {
		_ = h.sink.Append(r)
	}

	if h.display != nil {
		durationMillis := h.errorDisplayDuration * 1000
		if r.Critical && durationMillis < 10000 {
			durationMillis = 10000
		}
		h.display.ShowError(r.Message, durationMillis)
	}
}
