// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Peak returns the largest absolute sample value in samples.
func Peak(samples []float32) float32 {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	return peak
}

// Scale multiplies every sample in place by factor.
func Scale(samples []float32, factor float32) {
	if factor == 1 {
		return
	}
	for i := range samples {
		samples[i] *= factor
	}
}

// ScaleInto writes src*factor into dst and returns the number of samples written.
// Samples of dst past len(src) are zeroed.
func ScaleInto(dst, src []float32, factor float32) int {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = src[i] * factor
	}
	clear(dst[n:])
	return n
}

// Clamp01 limits x to the range [0, 1]. NaN becomes 0.
func Clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return 0
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
