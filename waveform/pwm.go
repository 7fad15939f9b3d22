package waveform

// Global singleton used by the refill task, registered by target-specific
// code the same way core.SetGPIODriver/MustGPIO wires in hardware GPIO.
var driver Driver

// SetDriver is called by target-specific code to register its PWM/DMA
// driver before the refill loop starts.
func SetDriver(d Driver) {
	driver = d
}

// MustDriver returns the configured driver or panics if missing.
func MustDriver() Driver {
	if driver == nil {
		panic("waveform: PWM/DMA driver not configured")
	}
	return driver
}

// MemDriver is a software-only Driver for host-side tests and the bench
// CLI: two buffer halves held in plain slices, with Commit/WaitBufferFree
// alternating halves instead of waiting on a DMA-completion interrupt.
type MemDriver struct {
	sliceA  [2][]uint32
	sliceB  [2][]uint32
	next    int
	commits [2]int
}

func NewMemDriver() *MemDriver {
	d := &MemDriver{}
	for h := 0; h < 2; h++ {
		d.sliceA[h] = make([]uint32, BufferWords)
		d.sliceB[h] = make([]uint32, BufferWords)
	}
	return d
}

func (d *MemDriver) WaitBufferFree() int {
	half := d.next
	d.next = 1 - d.next
	return half
}

func (d *MemDriver) BufferWords(half int) (sliceA, sliceB []uint32) {
	return d.sliceA[half], d.sliceB[half]
}

func (d *MemDriver) Commit(half int) {
	d.commits[half]++
}

// Commits reports how many times a half has been committed, for test
// assertions on refill cadence.
func (d *MemDriver) Commits(half int) int {
	return d.commits[half]
}
