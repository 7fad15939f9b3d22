// Package input turns raw encoder/button hardware into the small set of
// discrete events the UI and CLI actually care about: navigation,
// selection, and the long/very-long/double-press variants of a single
// button, plus a signed delta for value editing.
package input

// Event is a discrete, consumed-once input event.
type Event uint8

const (
	EventNone Event = iota
	EventNavUp
	EventNavDown
	EventSelect
	EventBack
	EventExit
	EventDoubleClick
	EventPitchToggleRange
	EventPitchReset
)

func (e Event) String() string {
	switch e {
	case EventNavUp:
		return "NavUp"
	case EventNavDown:
		return "NavDown"
	case EventSelect:
		return "Select"
	case EventBack:
		return "Back"
	case EventExit:
		return "Exit"
	case EventDoubleClick:
		return "DoubleClick"
	case EventPitchToggleRange:
		return "PitchToggleRange"
	case EventPitchReset:
		return "PitchReset"
	default:
		return "None"
	}
}

// QuadratureCounter is the hardware (or fake) source of the main
// encoder's accumulated position. The implementation keeps the
// direction decode to itself, so Decoder only ever needs the running
// count.
type QuadratureCounter interface {
	Position() int32
}
