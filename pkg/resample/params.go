package resample

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrConfig reports a contract violation in the resampling parameters, such
// as requesting joint event rescaling without supplying an event matrix. It
// is raised before any filtering work begins.
var ErrConfig = errors.New("invalid resampling configuration")

// Padding is the amount of edge padding applied per side before filtering.
// It is a tagged value: either an explicit sample count or automatic, where
// the resampler picks padding that reaches an efficient FFT length.
type Padding struct {
	auto   bool
	amount int
}

// PadAuto lets the resampler choose the padding amount.
var PadAuto = Padding{auto: true}

// PadSamples pads with an explicit number of samples per side.
func PadSamples(n int) Padding { return Padding{amount: n} }

// IsAuto reports whether the resampler chooses the amount.
func (p Padding) IsAuto() bool { return p.auto }

// Amount returns the explicit per-side sample count. Only meaningful when
// IsAuto is false.
func (p Padding) Amount() int { return p.amount }

func (p Padding) String() string {
	if p.auto {
		return "auto"
	}
	return fmt.Sprintf("%d", p.amount)
}

// Jobs is the data-parallel fan-out degree. It is a tagged value: a worker
// count, or a request for GPU execution. GPU execution is not available in
// this runtime; the resampler degrades it to full CPU fan-out and reports a
// warning diagnostic rather than failing or staying silent.
type Jobs struct {
	gpu bool
	n   int
}

// CPUJobs runs the channel fan-out on n workers.
func CPUJobs(n int) Jobs { return Jobs{n: n} }

// GPUJobs requests GPU-accelerated execution.
var GPUJobs = Jobs{gpu: true}

// IsGPU reports whether GPU execution was requested.
func (j Jobs) IsGPU() bool { return j.gpu }

// Workers returns the effective CPU worker count.
func (j Jobs) Workers() int {
	if j.gpu {
		return runtime.NumCPU()
	}
	return j.n
}

func (j Jobs) String() string {
	if j.gpu {
		return "cuda"
	}
	return fmt.Sprintf("%d", j.n)
}

// PadMode selects how edge padding samples are synthesized. All modes of the
// usual array-padding vocabulary are supported, plus ReflectLimited: odd
// reflection about the edge value, zero-filled once the signal is exhausted.
type PadMode string

const (
	PadZero           PadMode = "zero"
	PadConstant       PadMode = "constant" // alias of zero
	PadEdge           PadMode = "edge"
	PadReflect        PadMode = "reflect"
	PadSymmetric      PadMode = "symmetric"
	PadWrap           PadMode = "wrap"
	PadMean           PadMode = "mean"
	PadMedian         PadMode = "median"
	PadReflectLimited PadMode = "reflect_limited"
)

// DefaultRawPad is the padding mode used for continuous data when none is
// configured.
const DefaultRawPad = PadReflectLimited

// DefaultEpochPad is the padding mode used for epoched data when none is
// configured.
const DefaultEpochPad = PadEdge

// DefaultWindow is the frequency-domain window used when none is configured.
const DefaultWindow = "boxcar"

func validPadMode(m PadMode) bool {
	switch m {
	case PadZero, PadConstant, PadEdge, PadReflect, PadSymmetric, PadWrap, PadMean, PadMedian, PadReflectLimited:
		return true
	}
	return false
}

// Params is the pre-validated parameter set for one resampling invocation.
// Type coercion from external string configuration happens upstream; the
// fields here are already in their final representation.
type Params struct {
	// SFreq is the target sampling rate in Hz.
	SFreq float64
	// NPad is the per-side edge padding amount.
	NPad Padding
	// Window names the frequency-domain anti-aliasing window.
	Window string
	// StimPicks are channel indices carrying discrete trigger pulses.
	// They are resampled by nearest-sample selection instead of the
	// band-limited path so pulse edges are not smeared. Continuous only.
	StimPicks []int
	// Jobs is the channel fan-out degree.
	Jobs Jobs
	// RawPad is the edge-padding mode for continuous data.
	RawPad PadMode
	// EpochPad is the edge-padding mode for epoched data.
	EpochPad PadMode
	// WithEvents requests the event matrix be rescaled jointly with the
	// signal.
	WithEvents bool
}

// withDefaults fills unset window and pad mode fields.
func (p Params) withDefaults() Params {
	if p.Window == "" {
		p.Window = DefaultWindow
	}
	if p.RawPad == "" {
		p.RawPad = DefaultRawPad
	}
	if p.EpochPad == "" {
		p.EpochPad = DefaultEpochPad
	}
	if !p.Jobs.gpu && p.Jobs.n == 0 {
		p.Jobs = CPUJobs(1)
	}
	return p
}

func (p Params) validate() error {
	if p.SFreq <= 0 {
		return fmt.Errorf("%w: target frequency must be positive, got %g", ErrConfig, p.SFreq)
	}
	if !p.NPad.IsAuto() && p.NPad.Amount() < 0 {
		return fmt.Errorf("%w: npad must be non-negative, got %d", ErrConfig, p.NPad.Amount())
	}
	if _, err := windowValues(p.Window, 2); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if !validPadMode(p.RawPad) {
		return fmt.Errorf("%w: unknown raw pad mode %q", ErrConfig, p.RawPad)
	}
	if !validPadMode(p.EpochPad) {
		return fmt.Errorf("%w: unknown epoch pad mode %q", ErrConfig, p.EpochPad)
	}
	if !p.Jobs.IsGPU() && p.Jobs.Workers() < 1 {
		return fmt.Errorf("%w: job count must be positive, got %d", ErrConfig, p.Jobs.Workers())
	}
	return nil
}
