//go:build rp2040

package main

import (
	"device/rp2040"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"sync/atomic"
	"unsafe"

	"ttcontrol/waveform"
)

// DMA pacing request numbers for the PWM wrap event, from the RP2040
// datasheet's DREQ table (section 2.5.3). TinyGo's device/rp2040 package
// does not name these itself.
const (
	dreqPWMWrap0 = 24
	dreqPWMWrap1 = 25
)

// dmaDataSize32 selects 32-bit DMA transfers (one word per PWM tick,
// packing both of a slice's channel compares).
const dmaDataSize32 = 2

// PWMDMADriver drives phases A/B off PWM slice 0 and phases C/D off PWM
// slice 1, fed by two ping-pong pairs of DMA channels that chain to one
// another so the hardware never stalls waiting on software. It implements
// waveform.Driver; Engine.RefillOnce is the only caller.
//
// Two PWM slices run at wrap=1023/clkdiv~2.44 for a 50kHz carrier, four
// DMA channels in two chained ping-pong pairs paced by each slice's wrap
// DREQ, writing straight into the slice's CC register so the CPU never
// touches the audio path once a half is committed.
type PWMDMADriver struct {
	bufA [2][waveform.BufferWords]uint32
	bufB [2][waveform.BufferWords]uint32

	sliceA, sliceB     uint8
	chA0, chA1         uint8
	chB0, chB1         uint8

	freeHalf atomic.Int32
}

func NewPWMDMADriver() *PWMDMADriver {
	return &PWMDMADriver{}
}

// Start configures the PWM slices, claims and chains the DMA channels,
// installs the completion handler and starts the first pair running.
// Call it once, after the silence buffers have been pre-filled.
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

	rp2040.DMA.INTE0.Set((1 << d.chA0) | (1 << d.chA1))
	interrupt.New(rp2040.IRQ_DMA_IRQ0, d.handleIRQ).Enable()

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

// configurePWMSlices sets wrap=1023 and a clock divider of ~2.44 on both
// slices, giving a ~50kHz carrier at a 125MHz system clock, and leaves
// the compare registers at center since DMA owns them from here on.
func (d *PWMDMADriver) configurePWMSlices() {
	setSlice := func(csr, div, top, cc *volatile.Register32) {
		csr.Set(0)
		div.Set(2<<4 | 0x7) // INT=2, FRAC~7/16 -> ~2.44
		top.Set(waveform.PWMMax)
		cc.Set(packWordCentered())
		csr.SetBits(1 << 0) // EN
	}
	setSlice(&rp2040.PWM.CH0.CSR, &rp2040.PWM.CH0.DIV, &rp2040.PWM.CH0.TOP, &rp2040.PWM.CH0.CC)
	setSlice(&rp2040.PWM.CH1.CSR, &rp2040.PWM.CH1.DIV, &rp2040.PWM.CH1.TOP, &rp2040.PWM.CH1.CC)
}

func (d *PWMDMADriver) ccAddr(slice uint8) uintptr {
	if slice == d.sliceA {
		return uintptr(unsafe.Pointer(&rp2040.PWM.CH0.CC))
	}
	return uintptr(unsafe.Pointer(&rp2040.PWM.CH1.CC))
}

func (d *PWMDMADriver) dmaChannel(ch uint8) *rp2040.DMA_CH_Type {
	switch ch {
	case 0:
		return &rp2040.DMA.CH0
	case 1:
		return &rp2040.DMA.CH1
	case 2:
		return &rp2040.DMA.CH2
	default:
		return &rp2040.DMA.CH3
	}
}

func (d *PWMDMADriver) configureDMAChannel(ch, slice uint8, dreq uint32, readBase *uint32, chainTo uint8) {
	c := d.dmaChannel(ch)
	c.READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(readBase))))
	c.WRITE_ADDR.Set(uint32(d.ccAddr(slice)))
	c.TRANS_COUNT.Set(waveform.BufferWords)

	ctrl := uint32(dmaDataSize32)<<2 | // DATA_SIZE
		1<<4 | // INCR_READ
		0<<5 | // INCR_WRITE
		uint32(chainTo)<<11 |
		dreq<<15 |
		1<<0 // EN
	c.CTRL_TRIG.Set(ctrl)
}

func (d *PWMDMADriver) startChannel(ch uint8) {
	rp2040.DMA.MULTI_CHAN_TRIGGER.Set(1 << ch)
}

// handleIRQ runs at DMA_IRQ0 priority whenever one of slice A's channels
// finishes its half. It resets that channel's read address back to the
// start of its buffer (so the next chain-to restarts it cleanly) and
// publishes the now-idle half for the refill task to claim.
func (d *PWMDMADriver) handleIRQ(intr interrupt.Interrupt) {
	status := rp2040.DMA.INTS0.Get()
	if status&(1<<d.chA0) != 0 {
		rp2040.DMA.INTS0.Set(1 << d.chA0)
		d.dmaChannel(d.chA0).READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&d.bufA[0][0]))))
		d.dmaChannel(d.chB0).READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&d.bufB[0][0]))))
		d.freeHalf.Store(0)
	}
	if status&(1<<d.chA1) != 0 {
		rp2040.DMA.INTS0.Set(1 << d.chA1)
		d.dmaChannel(d.chA1).READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&d.bufA[1][0]))))
		d.dmaChannel(d.chB1).READ_ADDR.Set(uint32(uintptr(unsafe.Pointer(&d.bufB[1][0]))))
		d.freeHalf.Store(1)
	}
}

// WaitBufferFree spins on the flag the IRQ handler publishes; the refill
// task runs in a tight Core 1 loop so there is no scheduler to yield to.
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

// Commit is a no-op: the DMA channels already read from this half's fixed
// address, so writing new samples into it is all "arming" it takes. It
// exists to satisfy waveform.Driver and to keep the call site symmetrical
// with WaitBufferFree.
func (d *PWMDMADriver) Commit(half int) {}
