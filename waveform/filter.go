package waveform

// FilterKind selects the per-channel smoothing applied after amplitude
// scaling, to round off the LUT's staircase at low table resolutions or
// soften kick/brake transitions.
type FilterKind uint8

const (
	FilterNone FilterKind = iota
	FilterIIR
	FilterFIR
)

// FIRProfile names one of three fixed 8-tap coefficient sets, tuned to
// three fixed levels of output smoothing.
type FIRProfile uint8

const (
	FIRGentle FIRProfile = iota
	FIRMedium
	FIRAggressive
)

var firCoefficients = [...][8]float64{
	FIRGentle:     {0.0, 0.0, 0.1, 0.4, 0.4, 0.1, 0.0, 0.0},
	FIRMedium:     {0.05, 0.05, 0.1, 0.3, 0.3, 0.1, 0.05, 0.05},
	FIRAggressive: {0.1, 0.1, 0.1, 0.2, 0.2, 0.1, 0.1, 0.1},
}

// ChannelFilter holds one channel's filter history. A channel switching
// filter kind (e.g. None -> FIR when a speed with a different filterType
// becomes active) resets its history rather than carrying over samples
// from an unrelated filter's state space.
type ChannelFilter struct {
	lastKind FilterKind
	iirPrev  float64
	firBuf   [8]float64
}

// Apply filters one sample in place of the channel's running history.
func (f *ChannelFilter) Apply(sample int32, kind FilterKind, iirAlpha float64, firProfile FIRProfile) int32 {
	if kind != f.lastKind {
		f.iirPrev = 0
		f.firBuf = [8]float64{}
		f.lastKind = kind
	}

	switch kind {
	case FilterIIR:
		out := iirAlpha*float64(sample) + (1-iirAlpha)*f.iirPrev
		f.iirPrev = out
		return int32(out)
	case FilterFIR:
		for i := len(f.firBuf) - 1; i > 0; i-- {
			f.firBuf[i] = f.firBuf[i-1]
		}
		f.firBuf[0] = float64(sample)
		coeffs := firCoefficients[firProfile]
		sum := 0.0
		for i, c := range coeffs {
			sum += f.firBuf[i] * c
		}
		return int32(sum)
	default:
		return sample
	}
}
