//go:build tinygo

package ui

import (
	"machine"

	"tinygo.org/x/drivers/ssd1306"
)

const (
	panelWidth  = 128
	panelHeight = 64
	panelAddr   = 0x3C
	rowHeight   = panelHeight / 4
	barMaxWidth = panelWidth - 8
)

// SSD1306Display drives the panel over I2C, filling one horizontal bar
// per row rather than rendering text — there is no font renderer in
// this build, and the status panel only ever needs to show four
// proportional scalars.
type SSD1306Display struct {
	dev ssd1306.Device
}

func NewSSD1306Display(bus *machine.I2C) *SSD1306Display {
	dev := ssd1306.New(bus)
	dev.Configure(ssd1306.Config{
		Width:   panelWidth,
		Height:  panelHeight,
		Address: panelAddr,
	})
	return &SSD1306Display{dev: dev}
}

func (d *SSD1306Display) Clear() {
	d.dev.ClearBuffer()
}

func (d *SSD1306Display) DrawBar(row int, label string, frac float64) {
	if row < 0 || row >= 4 {
		return
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	y := row*rowHeight + rowHeight/2
	width := int(frac * float64(barMaxWidth))
	for x := 0; x < width; x++ {
		d.dev.SetPixel(int16(x+4), int16(y), 1)
	}
}

func (d *SSD1306Display) Show() error {
	return d.dev.Display()
}
