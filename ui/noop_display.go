package ui

// NoopDisplay satisfies StatusDisplay when there is no OLED panel to
// drive: host builds and tests, and any target board built without one
// wired up.
type NoopDisplay struct{}

func (NoopDisplay) Clear()                                {}
func (NoopDisplay) DrawBar(row int, label string, frac float64) {}
func (NoopDisplay) Show() error                            { return nil }
