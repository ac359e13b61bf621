// SPDX-License-Identifier: EPL-2.0

package device

import (
	"context"
	"sync"
	"time"
)

// Dummy is an in-memory Backend. Its streams only run when Tick is called,
// either by hand in tests or from Run on a ticker.
type Dummy struct {
	mu       sync.Mutex
	inputs   []Info
	outputs  []Info
	streams  []*DummyStream
	failOpen map[int]error
	closed   bool
}

// NewDummy lists one microphone (ID 0), a virtual cable (ID 1) and
// headphones (ID 2), all at sampleRate.
func NewDummy(sampleRate int) *Dummy {
	rate := float64(sampleRate)
	return &Dummy{
		inputs: []Info{
			{ID: 0, Name: "Dummy Microphone", MaxInputChannels: 1, DefaultSampleRate: rate},
		},
		outputs: []Info{
			{ID: 1, Name: "Dummy Cable", MaxOutputChannels: 2, DefaultSampleRate: rate},
			{ID: 2, Name: "Dummy Headphones", MaxOutputChannels: 2, DefaultSampleRate: rate},
		},
		failOpen: make(map[int]error),
	}
}

// FailOpen makes the next opens of device id fail with err. A nil err clears it.
func (d *Dummy) FailOpen(id int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil {
		delete(d.failOpen, id)
		return
	}
	d.failOpen[id] = err
}

func (d *Dummy) Inputs() ([]Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Info(nil), d.inputs...), nil
}

func (d *Dummy) Outputs() ([]Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Info(nil), d.outputs...), nil
}

func (d *Dummy) DefaultInput() (Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.inputs) == 0 {
		return Info{}, ErrNoDefaultDevice
	}
	return d.inputs[0], nil
}

func (d *Dummy) DefaultOutput() (Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.outputs) == 0 {
		return Info{}, ErrNoDefaultDevice
	}
	return d.outputs[0], nil
}

func (d *Dummy) open(dev Info, cfg StreamConfig, in InputFunc, out OutputFunc) (*DummyStream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrBackendClosed
	}
	if err := d.failOpen[dev.ID]; err != nil {
		return nil, err
	}

	s := &DummyStream{
		info: dev,
		cfg:  cfg,
		in:   in,
		out:  out,
		buf:  make([]float32, cfg.BlockSize),
	}
	d.streams = append(d.streams, s)
	return s, nil
}

func (d *Dummy) OpenInput(dev Info, cfg StreamConfig, fn InputFunc) (Stream, error) {
	if dev.MaxInputChannels < 1 {
		return nil, ErrNotInput
	}
	return d.open(dev, cfg, fn, nil)
}

func (d *Dummy) OpenOutput(dev Info, cfg StreamConfig, fn OutputFunc) (Stream, error) {
	if dev.MaxOutputChannels < 1 {
		return nil, ErrNotOutput
	}
	return d.open(dev, cfg, nil, fn)
}

func (d *Dummy) Close() error {
	d.mu.Lock()
	streams := d.streams
	d.streams = nil
	d.closed = true
	d.mu.Unlock()

	for _, s := range streams {
		s.Close()
	}
	return nil
}

// Streams returns every stream that is still open, in open order.
func (d *Dummy) Streams() []*DummyStream {
	d.mu.Lock()
	defer d.mu.Unlock()

	open := make([]*DummyStream, 0, len(d.streams))
	for _, s := range d.streams {
		if !s.Closed() {
			open = append(open, s)
		}
	}
	return open
}

// Stream returns the newest open stream on device id, or nil.
func (d *Dummy) Stream(id int) *DummyStream {
	streams := d.Streams()
	for i := len(streams) - 1; i >= 0; i-- {
		if streams[i].info.ID == id {
			return streams[i]
		}
	}
	return nil
}

// Tick runs one callback on every started stream: inputs first, then
// outputs, each in open order.
func (d *Dummy) Tick() {
	streams := d.Streams()
	for _, s := range streams {
		if s.in != nil {
			s.Tick()
		}
	}
	for _, s := range streams {
		if s.out != nil {
			s.Tick()
		}
	}
}

// Run calls Tick every interval until ctx is done. It plays the role of the
// hardware clock for dry runs.
func (d *Dummy) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Tick()
		}
	}
}

// DummyStream is a stream opened on a Dummy backend.
type DummyStream struct {
	mu      sync.Mutex
	info    Info
	cfg     StreamConfig
	in      InputFunc
	out     OutputFunc
	buf     []float32
	source  func([]float32)
	sink    func([]float32)
	running bool
	closed  bool
	ticks   int
}

func (s *DummyStream) Info() Info { return s.info }

func (s *DummyStream) Config() StreamConfig { return s.cfg }

// SetSource sets what an input stream captures on each tick. The default is
// silence.
func (s *DummyStream) SetSource(fn func(buf []float32)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.source = fn
}

// SetSink receives what an output stream rendered on each tick. The slice is
// reused, copy it to keep it.
func (s *DummyStream) SetSink(fn func(buf []float32)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = fn
}

// Tick runs the callback once if the stream is started.
func (s *DummyStream) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.closed {
		return
	}
	s.ticks++

	if s.in != nil {
		clear(s.buf)
		if s.source != nil {
			s.source(s.buf)
		}
		s.in(s.buf)
		return
	}

	clear(s.buf)
	s.out(s.buf)
	if s.sink != nil {
		s.sink(s.buf)
	}
}

// Ticks counts callbacks run so far.
func (s *DummyStream) Ticks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *DummyStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrBackendClosed
	}
	s.running = true
	return nil
}

func (s *DummyStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

func (s *DummyStream) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *DummyStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.closed = true
	return nil
}

func (s *DummyStream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
