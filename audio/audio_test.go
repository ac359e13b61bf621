// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/ik5/voxswitch/internal/audiotest"
)

// mockDecoder is a test decoder implementation
type mockDecoder struct {
	name string
}

func (d *mockDecoder) Decode(io.Reader) (Source, error) {
	return audiotest.NewSilentSource(44100, 2, 100), nil
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}
	registry.Register(decoder, "wav")

	got, ok := registry.Get("wav")
	if !ok {
		t.Fatal("Registry.Get() failed to retrieve registered decoder")
	}
	if got != decoder {
		t.Error("Registry.Get() returned different decoder instance")
	}
}

func TestRegistry_NormalizesExtensions(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "aiff"}
	registry.Register(decoder, ".AIF", "aiff")

	for _, ext := range []string{"aif", ".aif", "AIF", "Aiff", ".aiff"} {
		if got, ok := registry.Get(ext); !ok || got != decoder {
			t.Errorf("Get(%q) = (%v, %v), want registered decoder", ext, got, ok)
		}
	}

	exts := registry.Extensions()
	slices.Sort(exts)
	if !slices.Equal(exts, []string{"aif", "aiff"}) {
		t.Errorf("Extensions() = %v, want [aif aiff]", exts)
	}
}

func TestRegistry_ForPath(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	decoder := &mockDecoder{name: "wav"}
	registry.Register(decoder, "wav")

	tests := []struct {
		path string
		ok   bool
	}{
		{"/tmp/clip.wav", true},
		{"CLIP.WAV", true},
		{"music.mp3", false},
		{"noext", false},
		{"dir.wav/file", false},
	}
	for _, tt := range tests {
		if _, ok := registry.ForPath(tt.path); ok != tt.ok {
			t.Errorf("ForPath(%q) ok = %v, want %v", tt.path, ok, tt.ok)
		}
	}
}

func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			ext := string(rune('a' + i))
			registry.Register(&mockDecoder{name: ext}, ext)
			registry.Get(ext)
			registry.Extensions()
		})
	}
	wg.Wait()

	if n := len(registry.Extensions()); n != 8 {
		t.Errorf("len(Extensions()) = %d, want 8", n)
	}
}

func TestParseResamplerKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    ResamplerKind
		wantErr bool
	}{
		{"", Cubic, false},
		{"cubic", Cubic, false},
		{"sinc", Sinc, false},
		{"linear", "", true},
	}
	for _, tt := range tests {
		got, err := ParseResamplerKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseResamplerKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrUnknownResampler) {
			t.Errorf("ParseResamplerKind(%q) error = %v, want ErrUnknownResampler", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseResamplerKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewResamplerOf(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSilentSource(44100, 1, 10)
	if got, err := NewResamplerOf(Sinc, src, 44100); err != nil || got != Source(src) {
		t.Errorf("same rate = (%v, %v), want the source itself", got, err)
	}
	if got, err := NewResamplerOf(Cubic, src, 48000); err != nil {
		t.Errorf("cubic error = %v", err)
	} else if _, ok := got.(*Resampler); !ok {
		t.Errorf("cubic = %T, want *Resampler", got)
	}
	if got, err := NewResamplerOf(Sinc, src, 48000); err != nil {
		t.Errorf("sinc error = %v", err)
	} else if _, ok := got.(*SincResampler); !ok {
		t.Errorf("sinc = %T, want *SincResampler", got)
	}
	if _, err := NewResamplerOf("linear", src, 48000); !errors.Is(err, ErrUnknownResampler) {
		t.Errorf("unknown kind error = %v, want ErrUnknownResampler", err)
	}
	if _, err := NewResamplerOf(Cubic, src, 0); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("zero rate error = %v, want ErrInvalidRate", err)
	}
}

func TestResample_SameRateIsIdentity(t *testing.T) {
	t.Parallel()

	in := []float32{0.1, -0.2, 0.3}
	out, err := Resample(in, 44100, 44100, Sinc)
	if err != nil {
		t.Fatalf("Resample() error = %v", err)
	}
	if len(out) != len(in) || &out[0] != &in[0] {
		t.Error("Resample() at the same rate did not return the input slice")
	}
}

func TestResample_InvalidRate(t *testing.T) {
	t.Parallel()

	if _, err := Resample([]float32{0}, 0, 44100, Cubic); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("error = %v, want ErrInvalidRate", err)
	}
}

func TestToMono(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(22050, 2, 2205, func(_ int, ch int) float32 {
		return []float32{0.4, 0.2}[ch]
	})
	got, err := ToMono(src, 44100, Cubic)
	if err != nil {
		t.Fatalf("ToMono() error = %v", err)
	}
	if len(got) != 4410 {
		t.Errorf("len = %d, want 4410", len(got))
	}
	for i, s := range got {
		if s < 0.299 || s > 0.301 {
			t.Fatalf("got[%d] = %v, want 0.3", i, s)
		}
	}
}

func TestReadAll_OddBufSize(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(8000, 3, 1000, 0.0001)
	got, err := ReadAll(src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if len(got) != 3000 {
		t.Errorf("len = %d, want 3000", len(got))
	}
}

func TestReadAll_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := audiotest.NewSilentSource(8000, 1, 10000).FailAfter(4096, boom)
	got, err := ReadAll(src)
	if !errors.Is(err, boom) {
		t.Fatalf("ReadAll() error = %v, want boom", err)
	}
	if len(got) != 4096 {
		t.Errorf("partial len = %d, want 4096", len(got))
	}
}

// cancelAfterRead cancels its context on the first ReadSamples call.
type cancelAfterRead struct {
	Source
	cancel context.CancelFunc
	reads  int
}

func (c *cancelAfterRead) ReadSamples(dst []float32) (int, error) {
	c.reads++
	c.cancel()
	return c.Source.ReadSamples(dst)
}

func TestReadAllContext_StopsBetweenChunks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	src := &cancelAfterRead{Source: audiotest.NewSilentSource(8000, 1, 100000), cancel: cancel}

	got, err := ReadAllContext(ctx, src)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadAllContext() error = %v, want context.Canceled", err)
	}
	if src.reads != 1 {
		t.Errorf("reads = %d, want 1", src.reads)
	}
	if len(got) != src.BufSize() {
		t.Errorf("partial len = %d, want %d", len(got), src.BufSize())
	}
}

func TestToMonoContext_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := audiotest.NewSineSource(22050, 2, 22050, 440)
	if _, err := ToMonoContext(ctx, src, 44100, Cubic); !errors.Is(err, context.Canceled) {
		t.Fatalf("ToMonoContext() error = %v, want context.Canceled", err)
	}
}

func TestSliceSource(t *testing.T) {
	t.Parallel()

	in := []float32{1, 2, 3, 4, 5}
	src := NewSliceSource(in, 8000, 1)
	buf := make([]float32, 2)

	var got []float32
	for {
		n, err := src.ReadSamples(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
	}
	if !slices.Equal(got, in) {
		t.Errorf("got %v, want %v", got, in)
	}
}
