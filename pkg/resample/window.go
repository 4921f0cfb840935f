package resample

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// windowFuncs maps configuration names onto gonum's window functions. Each
// function scales a slice in place.
var windowFuncs = map[string]func([]float64) []float64{
	"hann":            window.Hann,
	"hanning":         window.Hann,
	"hamming":         window.Hamming,
	"blackman":        window.Blackman,
	"blackmanharris":  window.BlackmanHarris,
	"nuttall":         window.Nuttall,
	"blackmannuttall": window.BlackmanNuttall,
	"flattop":         window.FlatTop,
	"lanczos":         window.Lanczos,
	"sine":            window.Sine,
	"bartlett":        window.Triangular,
	"triangular":      window.Triangular,
	"bartletthann":    window.BartlettHann,
}

// windowValues samples the named frequency-domain window at n points. The
// boxcar window is the identity and returns nil so callers can skip the
// spectrum multiply entirely.
func windowValues(name string, n int) ([]float64, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", ""))
	key = strings.ReplaceAll(key, "-", "")
	if key == "" || key == "boxcar" || key == "rectangular" {
		return nil, nil
	}
	fn, ok := windowFuncs[key]
	if !ok {
		return nil, fmt.Errorf("unknown window %q", name)
	}
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return fn(w), nil
}

// shiftedWindowHalf returns the window's non-negative frequency half after
// rotating its center onto bin zero, matching how a frequency-domain window
// is applied to an unshifted spectrum. The returned slice has n/2+1 entries.
func shiftedWindowHalf(w []float64) []float64 {
	n := len(w)
	half := make([]float64, n/2+1)
	for k := range half {
		half[k] = w[(k+n/2)%n]
	}
	return half
}
