//go:build rp2040 || rp2350

package input

import (
	"sync/atomic"

	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// quadratureTransition maps consecutive 2-bit {CLK,DT} samples to a step
// delta. Index = (previous<<2)|current. Invalid (both-bits-changed)
// transitions — contact bounce or a missed sample — contribute zero
// rather than guess a direction.
var quadratureTransition = [16]int32{
	0x0: 0, 0x1: -1, 0x2: 1, 0x3: 0,
	0x4: 1, 0x5: 0, 0x6: 0, 0x7: -1,
	0x8: -1, 0x9: 0, 0xA: 0, 0xB: 1,
	0xC: 0, 0xD: 1, 0xE: -1, 0xF: 0,
}

// buildQuadratureProgram continuously samples the CLK/DT pin pair and
// pushes each 2-bit sample to the RX FIFO. Decoding the gray-code
// transition into a signed step happens in software in drainSamples —
// keeping the PIO program itself to the one thing hardware does better
// than software: sampling both pins at exactly the same instant,
// eliminating the skew a polled software read would have between them.
func buildQuadratureProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.In(rp2pio.InSourcePins, 2).Encode(), // 0: in pins, 2
		asm.Push(false, true).Encode(),          // 1: push block
		// .wrap
	}
}

const quadratureProgramOrigin = 0 // the only PIO program this firmware loads

// PIOQuadrature decodes a mechanical encoder's CLK/DT pair into a
// running position using one PIO state machine. A combined dual-edge
// GPIO interrupt across two pins would lose samples under load, so the
// sampling moves into PIO instead.
type PIOQuadrature struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	clkPin machine.Pin
	dtPin  machine.Pin

	position atomic.Int32
	lastBits uint32
}

// NewPIOQuadrature configures state machine smNum on the given PIO block
// to decode clkPin/dtPin, which must be consecutive GPIO numbers
// (clkPin, clkPin+1).
func NewPIOQuadrature(pioNum, smNum uint8, clkPin, dtPin machine.Pin) *PIOQuadrature {
	var pioHW *rp2pio.PIO
	if pioNum == 0 {
		pioHW = rp2pio.PIO0
	} else {
		pioHW = rp2pio.PIO1
	}
	return &PIOQuadrature{
		pio:    pioHW,
		sm:     pioHW.StateMachine(smNum),
		clkPin: clkPin,
		dtPin:  dtPin,
	}
}

func (q *PIOQuadrature) Init() error {
	q.sm.TryClaim()

	program := buildQuadratureProgram()
	offset, err := q.pio.AddProgram(program, quadratureProgramOrigin)
	if err != nil {
		return err
	}

	q.clkPin.Configure(machine.PinConfig{Mode: q.pio.PinMode()})
	q.dtPin.Configure(machine.PinConfig{Mode: q.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetInPins(q.clkPin)
	cfg.SetInShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(62500, 0) // ~2kHz SM clock, two instructions per sample -> ~1kHz sample rate, plenty for a panel encoder

	q.sm.Init(offset, cfg)
	q.sm.SetPindirsConsecutive(q.clkPin, 2, false) // CLK, DT = inputs
	q.sm.SetEnabled(true)

	return nil
}

// Position returns the running, decoded count. Call it from the control
// core's poll loop; it drains whatever samples have queued since the
// last call.
func (q *PIOQuadrature) Position() int32 {
	q.drainSamples()
	return q.position.Load()
}

func (q *PIOQuadrature) drainSamples() {
	for !q.sm.IsRxFIFOEmpty() {
		word := q.sm.RxGet()
		bits := word & 0x3
		idx := (q.lastBits << 2) | bits
		q.position.Add(quadratureTransition[idx&0xF])
		q.lastBits = bits
	}
}
