package resample

import (
	"math"
	"testing"
)

func TestPadChannelModes(t *testing.T) {
	x := []float64{1, 2, 3, 4}

	tests := []struct {
		mode PadMode
		want []float64 // pre=2, post=2
	}{
		{PadZero, []float64{0, 0, 1, 2, 3, 4, 0, 0}},
		{PadConstant, []float64{0, 0, 1, 2, 3, 4, 0, 0}},
		{PadEdge, []float64{1, 1, 1, 2, 3, 4, 4, 4}},
		{PadReflect, []float64{3, 2, 1, 2, 3, 4, 3, 2}},
		{PadSymmetric, []float64{2, 1, 1, 2, 3, 4, 4, 3}},
		{PadWrap, []float64{3, 4, 1, 2, 3, 4, 1, 2}},
		{PadMean, []float64{2.5, 2.5, 1, 2, 3, 4, 2.5, 2.5}},
		{PadMedian, []float64{2.5, 2.5, 1, 2, 3, 4, 2.5, 2.5}},
		{PadReflectLimited, []float64{2*1 - 3, 2*1 - 2, 1, 2, 3, 4, 2*4 - 3, 2*4 - 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			got := padChannel(x, 2, 2, tt.mode)
			if len(got) != len(tt.want) {
				t.Fatalf("length %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sample %d: got %g, want %g (full: %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}

func TestPadChannelReflectLimitedLongPad(t *testing.T) {
	// With padding longer than the signal, the odd reflection runs out and
	// the remainder stays zero.
	got := padChannel([]float64{5, 7}, 4, 4, PadReflectLimited)
	want := []float64{0, 0, 0, 2*5 - 7, 5, 7, 2*7 - 5, 0, 0, 0}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("sample %d: got %g, want %g (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestPadChannelDoesNotMutateInput(t *testing.T) {
	x := []float64{9, 8, 7}
	_ = padChannel(x, 3, 3, PadReflect)
	if x[0] != 9 || x[1] != 8 || x[2] != 7 {
		t.Errorf("input mutated: %v", x)
	}
}

func TestPadAmountsAuto(t *testing.T) {
	pre, post := padAmounts(PadAuto, 1000)
	total := pre + post + 1000
	if total&(total-1) != 0 {
		t.Errorf("auto padding should reach a power of two, got %d", total)
	}
	if pre+post < 30 {
		t.Errorf("auto padding too small: pre=%d post=%d", pre, post)
	}
	if d := pre - post; d < -1 || d > 1 {
		t.Errorf("auto padding should split evenly: pre=%d post=%d", pre, post)
	}
}

func TestPadAmountsExplicit(t *testing.T) {
	pre, post := padAmounts(PadSamples(42), 1000)
	if pre != 42 || post != 42 {
		t.Errorf("explicit padding not honored: pre=%d post=%d", pre, post)
	}
	pre, post = padAmounts(PadSamples(0), 1000)
	if pre != 0 || post != 0 {
		t.Errorf("zero padding not honored: pre=%d post=%d", pre, post)
	}
}

func TestWindowValues(t *testing.T) {
	w, err := windowValues("boxcar", 16)
	if err != nil || w != nil {
		t.Errorf("boxcar should be the identity, got %v, %v", w, err)
	}

	w, err = windowValues("hann", 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(w) != 16 {
		t.Fatalf("expected 16 window values, got %d", len(w))
	}
	// Hann tapers to zero at the edges and peaks mid-window.
	if w[0] > 0.01 || w[15] > 0.01 {
		t.Errorf("hann edges should be near zero: %g, %g", w[0], w[15])
	}
	peak := 0.0
	for _, v := range w {
		peak = math.Max(peak, v)
	}
	if peak < 0.9 {
		t.Errorf("hann peak too low: %g", peak)
	}

	if _, err := windowValues("not-a-window", 16); err == nil {
		t.Errorf("unknown window should be rejected")
	}
}

func TestShiftedWindowHalf(t *testing.T) {
	w := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	half := shiftedWindowHalf(w)
	want := []float64{4, 5, 6, 7, 0}
	if len(half) != len(want) {
		t.Fatalf("length %d, want %d", len(half), len(want))
	}
	for i := range half {
		if half[i] != want[i] {
			t.Errorf("bin %d: got %g, want %g", i, half[i], want[i])
		}
	}
}
