// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/voxswitch/audio"
	"github.com/ik5/voxswitch/device"
	"github.com/ik5/voxswitch/internal/logging"
	"github.com/ik5/voxswitch/internal/metrics"
	"github.com/ik5/voxswitch/routing"
)

const (
	DefaultSampleRate      = 44100
	DefaultBlockSize       = 512
	DefaultQueueCapacity   = 100
	DefaultMonitorCapacity = 16
	DefaultMicGain         = 1.0
	DefaultPlaybackGain    = 0.8
	DefaultMonitorGain     = 1.0
	DefaultWatchdog        = time.Second
)

// Options configures a Session. Zero sizes fall back to the defaults.
type Options struct {
	SampleRate      int
	BlockSize       int
	QueueCapacity   int
	MonitorCapacity int

	MicGain      float64
	PlaybackGain float64
	MonitorGain  float64

	Resampler audio.ResamplerKind

	// Watchdog is the render heartbeat check interval. Zero disables it.
	Watchdog    time.Duration
	EventBuffer int

	Music string
	Slots map[string]string

	// Loader defaults to DefaultLoader(Resampler).
	Loader  Loader
	Metrics *metrics.Set
}

func DefaultOptions() Options {
	return Options{
		SampleRate:      DefaultSampleRate,
		BlockSize:       DefaultBlockSize,
		QueueCapacity:   DefaultQueueCapacity,
		MonitorCapacity: DefaultMonitorCapacity,
		MicGain:         DefaultMicGain,
		PlaybackGain:    DefaultPlaybackGain,
		MonitorGain:     DefaultMonitorGain,
		Resampler:       audio.Cubic,
		Watchdog:        DefaultWatchdog,
		EventBuffer:     DefaultEventBuffer,
	}
}

func (o *Options) fill() {
	def := DefaultOptions()
	if o.SampleRate <= 0 {
		o.SampleRate = def.SampleRate
	}
	if o.BlockSize <= 0 {
		o.BlockSize = def.BlockSize
	}
	if o.QueueCapacity <= 0 {
		o.QueueCapacity = def.QueueCapacity
	}
	if o.MonitorCapacity <= 0 {
		o.MonitorCapacity = def.MonitorCapacity
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = def.EventBuffer
	}
	if o.Loader == nil {
		o.Loader = DefaultLoader(o.Resampler)
	}
	if o.Metrics == nil {
		o.Metrics = metrics.New()
	}
}

type run struct {
	engine  *Engine
	ctrl    *Controller
	streams []device.Stream
	output  device.Info
	cancel  context.CancelFunc
	group   *errgroup.Group
}

// Session ties three device streams to one Engine and Controller. Gains,
// slots and the event channel outlive individual Start/Stop cycles.
type Session struct {
	log     zerolog.Logger
	backend device.Backend
	opts    Options
	gains   *Gains
	metrics *metrics.Set
	events  *eventBus

	slotsMu sync.RWMutex
	music   string
	slots   map[string]string

	mu  sync.Mutex
	run *run
}

func NewSession(backend device.Backend, opts Options, log zerolog.Logger) *Session {
	opts.fill()
	s := &Session{
		log:     logging.Component(log, "session"),
		backend: backend,
		opts:    opts,
		gains:   NewGains(opts.MicGain, opts.PlaybackGain, opts.MonitorGain),
		metrics: opts.Metrics,
		music:   opts.Music,
		slots:   maps.Clone(opts.Slots),
	}
	s.events = newEventBus(opts.EventBuffer, logging.Component(log, "events"), opts.Metrics)
	return s
}

// Start opens and starts the input, output and monitor streams. Any failure
// tears down what was opened and is returned as a *DeviceError.
func (s *Session) Start(ctx context.Context, input, output, monitor device.Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != nil {
		return ErrSessionRunning
	}

	eng, err := NewEngine(s.opts.BlockSize, s.opts.QueueCapacity, s.opts.MonitorCapacity, s.gains, s.metrics)
	if err != nil {
		return err
	}

	cfg := device.StreamConfig{SampleRate: s.opts.SampleRate, BlockSize: s.opts.BlockSize}
	var streams []device.Stream

	fail := func(op string, dev device.Info, err error) error {
		closeStreams(streams)
		eng.Close()
		derr := &DeviceError{Op: op, Device: dev.Name, Err: err}
		s.log.Error().Err(err).Str("op", op).Str("device", dev.Name).Msg("device failure")
		s.events.publish(DeviceErrorEvent, Error, routing.Owner{}, derr.Error())
		return derr
	}

	in, err := s.backend.OpenInput(input, cfg, eng.Capture)
	if err != nil {
		return fail("open input", input, err)
	}
	streams = append(streams, in)

	out, err := s.backend.OpenOutput(output, cfg, eng.Render)
	if err != nil {
		return fail("open output", output, err)
	}
	streams = append(streams, out)

	mon, err := s.backend.OpenOutput(monitor, cfg, eng.Monitor)
	if err != nil {
		return fail("open monitor", monitor, err)
	}
	streams = append(streams, mon)

	devs := []device.Info{input, output, monitor}
	for i, st := range streams {
		if err := st.Start(); err != nil {
			return fail("start", devs[i], err)
		}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	g, gctx := errgroup.WithContext(runCtx)

	r := &run{
		engine:  eng,
		streams: streams,
		output:  output,
		cancel:  cancel,
		group:   g,
	}
	r.ctrl = newController(eng, s.opts.SampleRate, s.opts.Loader, s.events,
		logging.Component(s.log, "controller"), s.metrics)

	g.Go(func() error { return r.ctrl.Run(gctx) })
	g.Go(func() error { return s.watch(gctx, r) })
	s.run = r

	s.log.Info().
		Str("input", input.Name).
		Str("output", output.Name).
		Str("monitor", monitor.Name).
		Int("sample_rate", s.opts.SampleRate).
		Int("block_size", s.opts.BlockSize).
		Msg("streams started")
	s.events.publish(SessionStarted, Info, routing.Owner{}, "streams started, voice active")
	return nil
}

func closeStreams(streams []device.Stream) {
	for i := len(streams) - 1; i >= 0; i-- {
		streams[i].Stop()
		streams[i].Close()
	}
}

// Stop tears the session down. It is safe to call when nothing runs.
func (s *Session) Stop() error {
	s.mu.Lock()
	r := s.run
	s.run = nil
	s.mu.Unlock()

	if r == nil {
		return nil
	}
	return s.teardown(r)
}

func (s *Session) teardown(r *run) error {
	var errs []error

	for _, st := range r.streams {
		if err := st.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping stream: %w", err))
		}
	}

	r.cancel()
	if err := r.group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		errs = append(errs, err)
	}

	r.engine.routing.Reset()
	r.engine.Close()

	for _, st := range r.streams {
		if err := st.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing stream: %w", err))
		}
	}

	s.log.Info().Msg("streams stopped")
	s.events.publish(SessionStopped, Info, routing.Owner{}, "streams stopped")
	return errors.Join(errs...)
}

// watch stops the session when the output device stops calling Render.
func (s *Session) watch(ctx context.Context, r *run) error {
	if s.opts.Watchdog <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.opts.Watchdog)
	defer ticker.Stop()

	last := r.engine.Heartbeat()
	misses := r.engine.Pool().Misses()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if m := r.engine.Pool().Misses(); m > misses {
			s.metrics.PoolMisses.Add(float64(m - misses))
			misses = m
		}

		hb := r.engine.Heartbeat()
		if hb != last {
			last = hb
			continue
		}

		err := &DeviceError{Op: "render", Device: r.output.Name, Err: ErrRenderStalled}
		s.log.Error().Err(err).Msg("output device lost, stopping session")
		s.events.publish(DeviceErrorEvent, Error, routing.Owner{}, err.Error())

		go func() {
			s.mu.Lock()
			owned := s.run == r
			if owned {
				s.run = nil
			}
			s.mu.Unlock()
			if owned {
				s.teardown(r)
			}
		}()
		return err
	}
}

func (s *Session) current() *run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run
}

// Running reports whether streams are open.
func (s *Session) Running() bool { return s.current() != nil }

// Status returns the routing state, Voice when no session runs.
func (s *Session) Status() routing.State {
	if r := s.current(); r != nil {
		return r.engine.routing.Snapshot()
	}
	return routing.State{Mode: routing.Voice}
}

func (s *Session) Events() <-chan Event      { return s.events.ch }
func (s *Session) Gains() *Gains             { return s.gains }
func (s *Session) Metrics() *metrics.Set     { return s.metrics }
func (s *Session) SetMicGain(v float64)      { s.gains.SetMic(v) }
func (s *Session) SetPlaybackGain(v float64) { s.gains.SetPlayback(v) }
func (s *Session) SetMonitorGain(v float64)  { s.gains.SetMonitor(v) }

// SetMusic replaces the main track path.
func (s *Session) SetMusic(path string) {
	s.slotsMu.Lock()
	defer s.slotsMu.Unlock()
	s.music = path
}

// SetSlots replaces the soundboard slot map.
func (s *Session) SetSlots(slots map[string]string) {
	s.slotsMu.Lock()
	defer s.slotsMu.Unlock()
	s.slots = maps.Clone(slots)
}

// Slots returns a copy of the soundboard slot map.
func (s *Session) Slots() map[string]string {
	s.slotsMu.RLock()
	defer s.slotsMu.RUnlock()
	return maps.Clone(s.slots)
}

// RequestPlayback plays path as ownerID ("music" or a slot id).
func (s *Session) RequestPlayback(ctx context.Context, ownerID, path string) (routing.Outcome, error) {
	owner := routing.ParseOwner(ownerID)
	if owner.IsZero() {
		return routing.Rejected, fmt.Errorf("%w: empty owner", ErrUnknownOwner)
	}

	r := s.current()
	if r == nil {
		s.events.publish(RejectedEvent, Error, owner, ErrNoSession.Error())
		return routing.Rejected, ErrNoSession
	}
	return r.ctrl.RequestPlayback(ctx, owner, path)
}

// RequestSlot plays the file configured for ownerID.
func (s *Session) RequestSlot(ctx context.Context, ownerID string) (routing.Outcome, error) {
	s.slotsMu.RLock()
	path := s.slots[ownerID]
	if ownerID == routing.MusicID {
		path = s.music
	}
	s.slotsMu.RUnlock()

	if path == "" {
		owner := routing.ParseOwner(ownerID)
		err := fmt.Errorf("%w: %q", ErrUnknownOwner, ownerID)
		s.events.publish(RejectedEvent, Warning, owner, err.Error())
		return routing.Rejected, err
	}
	return s.RequestPlayback(ctx, ownerID, path)
}

// StopAll cancels any playback and returns to Voice.
func (s *Session) StopAll(ctx context.Context) error {
	r := s.current()
	if r == nil {
		return nil
	}
	return r.ctrl.StopAll(ctx)
}
