// Package resample applies band-limited resampling to continuous or epoched
// signal buffers and, on request, rescales an event triplet matrix in
// lock-step so that event sample indices stay aligned with the resampled
// grid. The signal path pads each channel, low-passes it to the smaller
// Nyquist rate by spectrum truncation in the Fourier domain, shapes the
// transition with a configurable frequency-domain window, and trims the
// padding after interpolation. Designated stimulus channels bypass the
// band-limited path and are resampled by nearest-sample selection so trigger
// pulses are not smeared.
package resample

import (
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/meglab/resample/pkg/events"
	"github.com/meglab/resample/pkg/report"
	"github.com/meglab/resample/pkg/signal"
)

// Resampler converts signal buffers to a new sampling rate.
type Resampler struct {
	p Params
}

// New validates the parameter set and returns a Resampler. Parameter
// problems are reported as ErrConfig before any data is touched.
func New(p Params) (*Resampler, error) {
	p = p.withDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &Resampler{p: p}, nil
}

// Continuous resamples a continuous buffer in place and returns it at the
// target rate. When joint event rescaling is configured, the supplied matrix
// is rescaled with the identical time mapping as the sample grid and
// returned; otherwise the matrix passes through untouched. The returned
// diagnostics are for the caller to render; the resampler never writes
// output itself.
func (r *Resampler) Continuous(buf *signal.Continuous, ev events.Matrix) (*signal.Continuous, events.Matrix, []report.Diagnostic, error) {
	// Contract checks come before any filtering work.
	if r.p.WithEvents && ev == nil {
		return nil, nil, nil, fmt.Errorf("%w: joint event resampling requested but no event matrix supplied", ErrConfig)
	}
	n := buf.NSamples()
	if n == 0 {
		return nil, nil, nil, fmt.Errorf("%w: cannot resample an empty recording", ErrConfig)
	}
	for _, pick := range r.p.StimPicks {
		if pick < 0 || pick >= buf.NChannels() {
			return nil, nil, nil, fmt.Errorf("%w: stim pick %d out of range for %d channels", ErrConfig, pick, buf.NChannels())
		}
	}

	ratio := r.p.SFreq / buf.SFreq
	nOut := int(math.Round(float64(n) * ratio))
	if nOut < 1 {
		return nil, nil, nil, fmt.Errorf("%w: target rate %g Hz yields no samples for a %d-sample recording", ErrConfig, r.p.SFreq, n)
	}

	var diags []report.Diagnostic
	if r.p.Jobs.IsGPU() {
		diags = append(diags, report.Warning("GPU execution requested but not available; running on CPU."))
	}
	diags = append(diags, report.Info(fmt.Sprintf(
		"Data was resampled at %gHz. Please bear in mind that it is generally "+
			"recommended not to epoch downsampled data, but instead epoch and then downsample.", r.p.SFreq)))

	stim := make(map[int]bool, len(r.p.StimPicks))
	for _, pick := range r.p.StimPicks {
		stim[pick] = true
	}

	eng, err := newEngine(r.p, r.p.RawPad, n, ratio)
	if err != nil {
		return nil, nil, nil, err
	}

	out := make([][]float64, buf.NChannels())
	g := new(errgroup.Group)
	g.SetLimit(r.p.Jobs.Workers())
	for ci := range buf.Data {
		g.Go(func() error {
			if stim[ci] {
				out[ci] = resampleNearest(buf.Data[ci], nOut)
			} else {
				out[ci] = eng.resample(buf.Data[ci])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}

	oldFirst := buf.FirstSample
	newFirst := int64(math.Round(float64(oldFirst) * ratio))
	buf.Data = out
	buf.SFreq = r.p.SFreq
	buf.FirstSample = newFirst

	if !r.p.WithEvents {
		return buf, ev, diags, nil
	}
	rescaled := rescaleEvents(ev, oldFirst, newFirst, nOut, ratio)
	diags = append(diags, report.Info("Events were resampled jointly with the data."))
	return buf, rescaled, diags, nil
}

// Epochs resamples every epoch with the same filter and padding parameters.
// Epoch-local event information is out of scope for this transform, so a
// joint-event configuration is a contract violation here.
func (r *Resampler) Epochs(buf *signal.Epochs) (*signal.Epochs, []report.Diagnostic, error) {
	if r.p.WithEvents {
		return nil, nil, fmt.Errorf("%w: joint event resampling is not supported for epoched data", ErrConfig)
	}
	if len(r.p.StimPicks) > 0 {
		return nil, nil, fmt.Errorf("%w: stim picks are not supported for epoched data", ErrConfig)
	}
	n := buf.EpochLen()
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: cannot resample empty epochs", ErrConfig)
	}

	ratio := r.p.SFreq / buf.SFreq
	if int(math.Round(float64(n)*ratio)) < 1 {
		return nil, nil, fmt.Errorf("%w: target rate %g Hz yields no samples for %d-sample epochs", ErrConfig, r.p.SFreq, n)
	}

	var diags []report.Diagnostic
	if r.p.Jobs.IsGPU() {
		diags = append(diags, report.Warning("GPU execution requested but not available; running on CPU."))
	}

	eng, err := newEngine(r.p, r.p.EpochPad, n, ratio)
	if err != nil {
		return nil, nil, err
	}

	out := make([][][]float64, buf.NEpochs())
	for ei := range out {
		out[ei] = make([][]float64, buf.NChannels())
	}
	g := new(errgroup.Group)
	g.SetLimit(r.p.Jobs.Workers())
	for ei := range buf.Data {
		for ci := range buf.Data[ei] {
			g.Go(func() error {
				out[ei][ci] = eng.resample(buf.Data[ei][ci])
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	buf.Data = out
	buf.SFreq = r.p.SFreq
	return buf, diags, nil
}

// engine holds the per-invocation resampling geometry: pad sizes, padded and
// interpolated lengths, and the frequency-domain window sampled at the
// padded length. One engine serves every channel of a buffer; the FFT plans
// themselves are built per call because they carry scratch state.
type engine struct {
	mode      PadMode
	pre, post int
	mPadded   int // interpolated length of the padded buffer
	outPre    int // output-domain samples to trim before the signal
	nOut      int
	window    []float64 // shifted half-spectrum window, nil for boxcar
}

func newEngine(p Params, mode PadMode, n int, ratio float64) (*engine, error) {
	pre, post := padAmounts(p.NPad, n)
	nPadded := pre + n + post

	w, err := windowValues(p.Window, nPadded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	var half []float64
	if w != nil {
		half = shiftedWindowHalf(w)
	}

	// The interpolated length is derived from the trimmed pieces so the
	// final signal length is exactly round(n * ratio) with no off-by-one
	// from cumulative rounding.
	outPre, outN, outPost := trimCounts(pre, n, post, ratio)

	return &engine{
		mode:    mode,
		pre:     pre,
		post:    post,
		mPadded: outPre + outN + outPost,
		outPre:  outPre,
		nOut:    outN,
		window:  half,
	}, nil
}

// resample runs one channel through pad, FFT interpolation, and trim.
func (e *engine) resample(x []float64) []float64 {
	padded := padChannel(x, e.pre, e.post, e.mode)
	y := resampleFFT(padded, e.mPadded, e.window)
	out := make([]float64, e.nOut)
	copy(out, y[e.outPre:e.outPre+e.nOut])
	return out
}

// resampleFFT interpolates x to length m through the Fourier domain. The
// spectrum is truncated (downsampling, band-limiting to the new Nyquist) or
// zero-extended (upsampling), optionally shaped by a window sampled over the
// input spectrum, and inverted at the new length. The inverse transform is
// unnormalized, so a single division by the input length both normalizes it
// and applies the amplitude correction for the length change.
func resampleFFT(x []float64, m int, win []float64) []float64 {
	n := len(x)
	if m == n && win == nil {
		return append([]float64(nil), x...)
	}

	fwd := fourier.NewFFT(n)
	coef := fwd.Coefficients(nil, x)
	if win != nil {
		for k := range coef {
			coef[k] *= complex(win[k], 0)
		}
	}

	nc := m/2 + 1
	out := make([]complex128, nc)
	copy(out, coef[:minInt(len(coef), nc)])
	if m < n {
		if m%2 == 0 {
			// The new Nyquist bin must be real for a real sequence.
			out[nc-1] = complex(real(out[nc-1]), 0)
		}
	} else if m > n && n%2 == 0 {
		// The old Nyquist bin's energy splits between the positive and
		// negative frequency it now resolves into.
		out[n/2] *= 0.5
	}

	inv := fourier.NewFFT(m)
	y := inv.Sequence(nil, out)
	scale := 1 / float64(n)
	for i := range y {
		y[i] *= scale
	}
	return y
}

// resampleNearest resamples by nearest-sample selection, used for stimulus
// channels so discrete trigger pulses keep their exact values and edges.
func resampleNearest(x []float64, m int) []float64 {
	n := len(x)
	out := make([]float64, m)
	step := float64(n) / float64(m)
	for i := range out {
		src := int((float64(i) + 0.5) * step)
		if src >= n {
			src = n - 1
		}
		out[i] = x[src]
	}
	return out
}

// rescaleEvents maps event sample indices onto the resampled grid with the
// same scaling applied to the signal's sample positions. The count is
// preserved exactly and the mapping is monotone, so ordering by sample index
// survives. Indices are clamped to the resampled signal's valid range.
func rescaleEvents(ev events.Matrix, oldFirst, newFirst int64, nOut int, ratio float64) events.Matrix {
	out := make(events.Matrix, len(ev))
	for i, tr := range ev {
		rel := int64(math.Round(float64(tr.Sample-oldFirst) * ratio))
		if rel < 0 {
			rel = 0
		}
		if rel > int64(nOut-1) {
			rel = int64(nOut - 1)
		}
		out[i] = events.Triplet{Sample: newFirst + rel, Prior: tr.Prior, Value: tr.Value}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
