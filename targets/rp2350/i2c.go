//go:build rp2350

package main

import (
	"errors"
	"machine"
	"sync"

	"ttcontrol/core"
)

// RPI2CDriver is identical in shape to the rp2040 package's driver;
// RP2350's I2C0/I2C1 blocks are register-compatible, so machine.I2C0/1
// are used the same way.
type RPI2CDriver struct {
	mu         sync.Mutex
	buses      map[core.I2CBusID]*machine.I2C
	configured map[core.I2CBusID]bool
}

func NewRPI2CDriver() *RPI2CDriver {
	return &RPI2CDriver{
		buses:      make(map[core.I2CBusID]*machine.I2C),
		configured: make(map[core.I2CBusID]bool),
	}
}

func (d *RPI2CDriver) ConfigureBus(bus core.I2CBusID, frequencyHz uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.configured[bus] {
		i2c, ok := d.buses[bus]
		if !ok {
			return errors.New("i2c bus internal state error")
		}
		return i2c.SetBaudRate(frequencyHz)
	}

	var i2c *machine.I2C
	switch bus {
	case 0:
		i2c = machine.I2C0
	case 1:
		i2c = machine.I2C1
	default:
		return errors.New("unsupported i2c bus id")
	}

	if err := i2c.Configure(machine.I2CConfig{Frequency: frequencyHz}); err != nil {
		return err
	}

	d.buses[bus] = i2c
	d.configured[bus] = true
	return nil
}

func (d *RPI2CDriver) Write(bus core.I2CBusID, addr core.I2CAddress, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	i2c, ok := d.buses[bus]
	if !ok {
		return errors.New("i2c bus not configured")
	}
	return i2c.Tx(uint16(addr), data, nil)
}

func (d *RPI2CDriver) Read(bus core.I2CBusID, addr core.I2CAddress, regData []byte, readLen uint8) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i2c, ok := d.buses[bus]
	if !ok {
		return nil, errors.New("i2c bus not configured")
	}

	readBuf := make([]byte, readLen)
	if len(regData) > 0 {
		if err := i2c.Tx(uint16(addr), regData, readBuf); err != nil {
			return nil, err
		}
	} else {
		if err := i2c.Tx(uint16(addr), nil, readBuf); err != nil {
			return nil, err
		}
	}
	return readBuf, nil
}

func (d *RPI2CDriver) GetMachineBus(bus core.I2CBusID) (interface{}, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	i2c, ok := d.buses[bus]
	if !ok {
		return nil, errors.New("i2c bus not configured")
	}
	return i2c, nil
}
