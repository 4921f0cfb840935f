package resample

import (
	"math"
	"sort"
)

// padAmounts resolves the padding parameter to per-side sample counts for a
// signal of length n. Automatic padding grows the buffer to the next power
// of two, which both suppresses edge ringing and keeps the FFT fast.
func padAmounts(npad Padding, n int) (pre, post int) {
	if !npad.IsAuto() {
		return npad.Amount(), npad.Amount()
	}
	const minAuto = 15
	target := 1
	for target < n+2*minAuto {
		target <<= 1
	}
	total := target - n
	pre = total / 2
	post = total - pre
	return pre, post
}

// padChannel returns x extended by pre samples before and post samples after,
// synthesized per the padding mode. x itself is not modified.
func padChannel(x []float64, pre, post int, mode PadMode) []float64 {
	n := len(x)
	out := make([]float64, pre+n+post)
	copy(out[pre:], x)
	if n == 0 || (pre == 0 && post == 0) {
		return out
	}

	switch mode {
	case PadZero, PadConstant:
		// Already zero-valued.
	case PadEdge:
		fillConst(out[:pre], x[0])
		fillConst(out[pre+n:], x[n-1])
	case PadMean:
		m := mean(x)
		fillConst(out[:pre], m)
		fillConst(out[pre+n:], m)
	case PadMedian:
		m := median(x)
		fillConst(out[:pre], m)
		fillConst(out[pre+n:], m)
	case PadWrap:
		for i := 0; i < pre; i++ {
			out[pre-1-i] = x[mod(n-1-i, n)]
		}
		for i := 0; i < post; i++ {
			out[pre+n+i] = x[mod(i, n)]
		}
	case PadReflect:
		for i := 1; i <= pre; i++ {
			out[pre-i] = x[reflectIndex(i, n)]
		}
		for i := 1; i <= post; i++ {
			out[pre+n-1+i] = x[reflectIndex(n-1+i, n)]
		}
	case PadSymmetric:
		for i := 1; i <= pre; i++ {
			out[pre-i] = x[symmetricIndex(-i, n)]
		}
		for i := 0; i < post; i++ {
			out[pre+n+i] = x[symmetricIndex(n+i, n)]
		}
	case PadReflectLimited:
		// Odd reflection about the edge value; zero once the signal is
		// exhausted.
		for i := 1; i <= pre && i < n; i++ {
			out[pre-i] = 2*x[0] - x[i]
		}
		for i := 1; i <= post && i < n; i++ {
			out[pre+n-1+i] = 2*x[n-1] - x[n-1-i]
		}
	}
	return out
}

func fillConst(dst []float64, v float64) {
	for i := range dst {
		dst[i] = v
	}
}

func mean(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}
	return s / float64(len(x))
}

func median(x []float64) float64 {
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func mod(i, n int) int {
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

// reflectIndex maps a virtual index onto [0, n) by mirroring about the end
// samples without repeating them: for x=[a b c d], the left extension reads
// b c d c b a b ...
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i = mod(i, period)
	if i >= n {
		i = period - i
	}
	return i
}

// symmetricIndex maps a virtual index onto [0, n) by mirroring about the
// edges with edge repetition: for x=[a b c d], the left extension reads
// a b c d d c b a ...
func symmetricIndex(i, n int) int {
	period := 2 * n
	i = mod(i, period)
	if i >= n {
		i = period - 1 - i
	}
	return i
}

// trimCounts converts the input-domain pad sizes to the output domain.
func trimCounts(pre, n, post int, ratio float64) (outPre, outN, outPost int) {
	outPre = int(math.Round(float64(pre) * ratio))
	outN = int(math.Round(float64(n) * ratio))
	outPost = int(math.Round(float64(post) * ratio))
	return outPre, outN, outPost
}
