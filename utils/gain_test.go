// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestPeak(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		samples []float32
		want    float32
	}{
		{name: "empty", samples: nil, want: 0},
		{name: "silence", samples: []float32{0, 0, 0}, want: 0},
		{name: "positive peak", samples: []float32{0.1, 0.7, -0.2}, want: 0.7},
		{name: "negative peak", samples: []float32{0.1, -0.9, 0.5}, want: 0.9},
		{name: "above unity", samples: []float32{1.5, -0.2}, want: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Peak(tt.samples); got != tt.want {
				t.Errorf("Peak() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScale(t *testing.T) {
	t.Parallel()

	samples := []float32{0.5, -0.25, 1}
	Scale(samples, 0.5)

	want := []float32{0.25, -0.125, 0.5}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("samples[%d] = %v, want %v", i, samples[i], want[i])
		}
	}
}

func TestScaleInto_PadsAndTruncates(t *testing.T) {
	t.Parallel()

	dst := []float32{9, 9, 9, 9}
	n := ScaleInto(dst, []float32{1, 2}, 0.5)
	if n != 2 {
		t.Fatalf("ScaleInto() n = %d, want 2", n)
	}
	want := []float32{0.5, 1, 0, 0}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}

	short := make([]float32, 2)
	n = ScaleInto(short, []float32{1, 1, 1, 1}, 1)
	if n != 2 {
		t.Errorf("ScaleInto() truncated n = %d, want 2", n)
	}
}

func TestClamp01(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.3, 0.3},
		{1, 1},
		{7, 1},
		{math.NaN(), 0},
		{math.Inf(1), 1},
	}

	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestPeak_ZeroAllocs verifies the limiter hot path does not allocate
func TestPeak_ZeroAllocs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping allocation test in short mode")
	}

	buf := make([]float32, 512)
	for i := range buf {
		buf[i] = float32(math.Sin(float64(i) * 0.05))
	}

	allocs := testing.AllocsPerRun(1000, func() {
		Scale(buf, 0.99)
		_ = Peak(buf)
	})

	if allocs > 0 {
		t.Errorf("Peak/Scale allocated %v times, want 0", allocs)
	}
}

func BenchmarkPeak(b *testing.B) {
	buf := make([]float32, 512)
	for i := range buf {
		buf[i] = float32(math.Sin(float64(i) * 0.05))
	}

	b.ResetTimer()
	b.ReportAllocs()

	var p float32
	for range b.N {
		p = Peak(buf)
	}
	_ = p
}
