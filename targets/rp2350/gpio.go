//go:build rp2350

package main

import (
	"machine"

	"ttcontrol/core"
)

// RPGPIODriver is the RP2350 twin of the rp2040 package's driver of the
// same name; RP2350 exposes the identical machine.Pin surface up to
// GPIO47, but this firmware only ever touches pins 0-23 of the board's
// panel/motor pin map.
type RPGPIODriver struct {
	configured map[core.GPIOPin]machine.Pin
}

func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{configured: make(map[core.GPIOPin]machine.Pin)}
}

func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	if _, ok := d.configured[pin]; ok {
		return nil
	}
	p := d.machinePin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configured[pin] = p
	return nil
}

func (d *RPGPIODriver) ConfigureInputPullUp(pin core.GPIOPin) error {
	if _, ok := d.configured[pin]; ok {
		return nil
	}
	p := d.machinePin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	d.configured[pin] = p
	return nil
}

func (d *RPGPIODriver) ConfigureInputPullDown(pin core.GPIOPin) error {
	if _, ok := d.configured[pin]; ok {
		return nil
	}
	p := d.machinePin(pin)
	p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	d.configured[pin] = p
	return nil
}

func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	p, ok := d.configured[pin]
	if !ok {
		if err := d.ConfigureOutput(pin); err != nil {
			return err
		}
		p = d.configured[pin]
	}
	p.Set(value)
	return nil
}

func (d *RPGPIODriver) GetPin(pin core.GPIOPin) (bool, error) {
	p, ok := d.configured[pin]
	if !ok {
		return false, nil
	}
	return p.Get(), nil
}

func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	v, _ := d.GetPin(pin)
	return v
}

func (d *RPGPIODriver) machinePin(pin core.GPIOPin) machine.Pin {
	return machine.Pin(pin)
}
