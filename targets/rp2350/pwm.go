//go:build rp2350

package main

import (
	"device/rp2350"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"sync/atomic"
	"unsafe"

	"ttcontrol/waveform"
)

// DMA pacing request numbers for the PWM wrap event; unchanged from
// RP2040's DREQ table (RP2350's PWM/DMA blocks are register-compatible).
const (
	dreqPWMWrap0 = 24
	dreqPWMWrap1 = 25
)

const dmaDataSize32 = 2

// PWMDMADriver is the RP2350 twin of the rp2040 package's driver of the
// same name: identical slice/DMA topology, addressed through
// device/rp2350 instead of device/rp2040.
type PWMDMADriver struct {
	bufA [2][waveform.BufferWords]uint32
	bufB [2][waveform.BufferWords]uint32

	sliceA, sliceB uint8
	chA0, chA1     uint8
	chB0, chB1     uint8

	freeHalf atomic.Int32
}

func NewPWMDMADriver() *PWMDMADriver {
	return &PWMDMADriver{}
}

func (d *PWMDMADriver) Start() {
	d.configurePWMPins()
	d.configurePWMSlices()

	d.chA0, d.chA1 = 0, 1
	d.chB0, d.chB1 = 2, 3

	for i := range d.bufA[0] {
		d.bufA[0][i] = packWordCentered()
		d.bufA[1][i] = packWordCentered()
		d.bufB[0][i] = packWordCentered()
		d.bufB[1][i] = packWordCentered()
	}

	d.configureDMAChannel(d.chA0, d.sliceA, dreqPWMWrap0, &d.bufA[0][0], d.chA1)
	d.configureDMAChannel(d.chA1, d.sliceA, dreqPWMWrap0, &d.bufA[1][0], d.chA0)
	d.configureDMAChannel(d.chB0, d.sliceB, dreqPWMWrap1, &d.bufB[0][0], d.chB1)
	d.configureDMAChannel(d.chB1, d.sliceB, dreqPWMWrap1, &d.bufB[1][0], d.chB0)

	rp2350.DMA.INTE0.Set((1 << d.chA0) | (1 << d.chA1))
	interrupt.New(rp2350.IRQ_DMA_IRQ0, d.handleIRQ).Enable()

	d.startChannel(d.chA0)
	d.startChannel(d.chB0)
	d.freeHalf.Store(1)
}

func packWordCentered() uint32 {
	return uint32(waveform.PWMCenter) | uint32(waveform.PWMCenter)<<16
}

func (d *PWMDMADriver) configurePWMPins() {
	for _, pin := range []machine.Pin{0, 1, 2, 3} {
		pin.Configure(machine.PinConfig{Mode: machine.PinPWM})
	}
	d.sliceA = 0
	d.sliceB = 1
}

func (d *PWMDMADriver) configurePWMSlices() {
	setSlice := func(csr, div, top, cc *volatile.Register32) {
		csr.Set(0)
		div.Set(2<<4 | 0x7)
		top.Set(waveform.PWMMax)
		cc.Set(packWordCentered())
		csr.SetBits(1 << 0)
	}
	setSlice(&rp2350.PWM.CH0.CSR, &rp2350.PWM.CH0.DIV, &rp2350.PWM.CH0.TOP, &rp2350.PWM.CH0.CC)
	setSlice(&rp2350.PWM.CH1.CSR, &rp2350.PWM.CH1.DIV, &rp2350.PWM.CH1.TOP, &rp2350.PWM.CH1.CC)
}

func (d *PWMDMADriver) ccAddr(slice uint8) uintptr {
	if slice == d.sliceA {
		return uintptr(unsafe.Pointer(&rp2350.PWM.CH0.CC))
	}
	return uintptr(unsafe.Pointer(&rp2350.PWM.CH1.CC))
}

func (d *PWMDMADriver) dmaChannel(ch uint8) *rp2350.DMA_CH_Type {
	switch ch {
	case 0:
		return &rp2350.DMA.CH0
	case 1:
		return &rp2350.DMA.CH1
	case 2:
		return &rp2350.DMA.CH2
	default:
		return &rp2350.DMA.CH3
	}
}

func (d *PWMDMADriver) configureDMAChannel(ch, slice uint8, dreq uint32, readBase *uint32, chainTo uint8) {
	c := d.dmaChannel(ch)
	c.READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(readBase))))
	c.WRITE_ADDR.Set(uint32(d.ccAddr(slice)))
	c.TRANS_COUNT.Set(waveform.BufferWords)

	ctrl := uint32(dmaDataSize32)<<2 |
		1<<4 |
		0<<5 |
		uint32(chainTo)<<11 |
		dreq<<15 |
		1<<0
	c.CTRL_TRIG.Set(ctrl)
}

func (d *PWMDMADriver) startChannel(ch uint8) {
	rp2350.DMA.MULTI_CHAN_TRIGGER.Set(1 << ch)
}

func (d *PWMDMADriver) handleIRQ(intr interrupt.Interrupt) {
	status := rp2350.DMA.INTS0.Get()
	if status&(1<<d.chA0) != 0 {
		rp2350.DMA.INTS0.Set(1 << d.chA0)
		d.dmaChannel(d.chA0).READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&d.bufA[0][0]))))
		d.dmaChannel(d.chB0).READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&d.bufB[0][0]))))
		d.freeHalf.Store(0)
	}
	if status&(1<<d.chA1) != 0 {
		rp2350.DMA.INTS0.Set(1 << d.chA1)
		d.dmaChannel(d.chA1).READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&d.bufA[1][0]))))
		d.dmaChannel(d.chB1).READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&d.bufB[1][0]))))
		d.freeHalf.Store(1)
	}
}

func (d *PWMDMADriver) WaitBufferFree() int {
	for {
		if h := d.freeHalf.Swap(-1); h >= 0 {
			return int(h)
		}
	}
}

func (d *PWMDMADriver) BufferWords(half int) (sliceA, sliceB []uint32) {
	return d.bufA[half][:], d.bufB[half][:]
}

func (d *PWMDMADriver) Commit(half int) {}
