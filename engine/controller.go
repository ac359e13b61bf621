// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ik5/voxswitch"
	"github.com/ik5/voxswitch/audio"
	"github.com/ik5/voxswitch/internal/metrics"
	"github.com/ik5/voxswitch/routing"
)

// Loader returns the mono samples of path at sampleRate.
type Loader func(ctx context.Context, path string, sampleRate int) ([]float32, error)

// DefaultLoader decodes through voxswitch.LoadMonoContext with the given
// resampler.
func DefaultLoader(kind audio.ResamplerKind) Loader {
	return func(ctx context.Context, path string, sampleRate int) ([]float32, error) {
		return voxswitch.LoadMonoContext(ctx, path, sampleRate, kind)
	}
}

type playback struct {
	id     uuid.UUID
	owner  routing.Owner
	path   string
	cancel context.CancelFunc
	done   chan struct{}
	result PlaybackResult // written before done is closed
}

type requestReply struct {
	outcome routing.Outcome
	err     error
}

type requestCmd struct {
	owner routing.Owner
	path  string
	reply chan requestReply
}

type stopAllCmd struct {
	reply chan struct{}
}

type playbackDone struct {
	p *playback
}

// Controller serializes every start and cancel decision on the goroutine
// running Run. At most one scheduler worker exists at a time.
type Controller struct {
	log        zerolog.Logger
	engine     *Engine
	sched      *Scheduler
	load       Loader
	sampleRate int
	events     *eventBus
	metrics    *metrics.Set

	cmds chan any
	quit chan struct{}

	// owned by the Run goroutine
	ctx    context.Context
	active *playback
}

func newController(e *Engine, sampleRate int, load Loader, events *eventBus, log zerolog.Logger, m *metrics.Set) *Controller {
	return &Controller{
		log:        log,
		engine:     e,
		sched:      NewScheduler(e, sampleRate),
		load:       load,
		sampleRate: sampleRate,
		events:     events,
		metrics:    m,
		cmds:       make(chan any),
		quit:       make(chan struct{}),
	}
}

// Run handles commands until ctx is done. Active playback is cancelled
// before it returns.
func (c *Controller) Run(ctx context.Context) error {
	c.ctx = ctx
	defer close(c.quit)

	for {
		select {
		case <-ctx.Done():
			c.stopActive()
			return ctx.Err()
		case cmd := <-c.cmds:
			c.handle(cmd)
		}
	}
}

func (c *Controller) handle(cmd any) {
	switch cmd := cmd.(type) {
	case requestCmd:
		outcome, err := c.request(cmd.owner, cmd.path)
		cmd.reply <- requestReply{outcome: outcome, err: err}
	case stopAllCmd:
		c.stopActive()
		c.engine.Flush()
		if st := c.engine.routing.Reset(); st.Mode != routing.Voice {
			c.log.Warn().Stringer("owner", st.Owner).Msg("forced routing back to voice")
		}
		close(cmd.reply)
	case playbackDone:
		if cmd.p != c.active {
			c.log.Debug().Str("session", cmd.p.id.String()).Msg("ignoring stale completion")
			return
		}
		c.finish(cmd.p)
	}
}

// RequestPlayback asks the controller to play path as owner. Busy and
// Rejected are outcomes, not errors.
func (c *Controller) RequestPlayback(ctx context.Context, owner routing.Owner, path string) (routing.Outcome, error) {
	reply := make(chan requestReply, 1)

	select {
	case c.cmds <- requestCmd{owner: owner, path: path, reply: reply}:
	case <-c.quit:
		return routing.Rejected, ErrNoSession
	case <-ctx.Done():
		return routing.Rejected, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.outcome, r.err
	case <-ctx.Done():
		return routing.Rejected, ctx.Err()
	}
}

// StopAll cancels any playback and forces Voice mode.
func (c *Controller) StopAll(ctx context.Context) error {
	reply := make(chan struct{})

	select {
	case c.cmds <- stopAllCmd{reply: reply}:
	case <-c.quit:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-reply:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) request(owner routing.Owner, path string) (routing.Outcome, error) {
	current := c.engine.routing.Owner()

	d := c.engine.routing.Decide(owner)
	switch d {
	case routing.DecisionCancel:
		c.stopActive()
		return routing.Cancelled, nil

	case routing.DecisionBusy:
		c.events.publish(BusyEvent, Warning, owner,
			fmt.Sprintf("%s busy: %s is playing, cancel it first", owner, current))
		return routing.Busy, nil

	case routing.DecisionIgnore:
		c.events.publish(RejectedEvent, Warning, owner,
			fmt.Sprintf("%s ignored while %s is playing", owner, current))
		return routing.Rejected, nil
	}

	// A request that cannot start leaves the current owner playing.
	if err := c.checkFile(owner, path); err != nil {
		return routing.Rejected, err
	}
	if d == routing.DecisionPreempt {
		c.log.Info().Stringer("owner", owner).Stringer("preempted", current).Msg("preempting playback")
		c.stopActive()
	}

	return c.start(owner, path)
}

// checkFile rejects paths that are gone or unreadable before any routing
// change happens.
func (c *Controller) checkFile(owner routing.Owner, path string) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		err = fmt.Errorf("%w: %s", voxswitch.ErrNotFound, path)
	} else {
		err = fmt.Errorf("%w: %w", voxswitch.ErrDecode, err)
	}
	c.events.publish(FileError, Error, owner, err.Error())
	return err
}

func (c *Controller) start(owner routing.Owner, path string) (routing.Outcome, error) {
	if err := c.engine.routing.Enter(owner); err != nil {
		return routing.Rejected, err
	}
	// Voice queued before the switch would delay the clip.
	if n := c.engine.Flush(); n > 0 {
		c.log.Debug().Int("blocks", n).Msg("dropped queued voice")
	}

	ctx, cancel := context.WithCancel(c.ctx)
	p := &playback{
		id:     uuid.New(),
		owner:  owner,
		path:   path,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.active = p

	c.log.Info().
		Str("session", p.id.String()).
		Stringer("owner", owner).
		Str("path", path).
		Msg("playback started")
	c.events.publish(PlaybackStarted, Info, owner,
		fmt.Sprintf("%s playing %s, voice paused", owner, filepath.Base(path)))

	go c.work(ctx, p)
	return routing.Started, nil
}

func (c *Controller) work(ctx context.Context, p *playback) {
	defer func() {
		close(p.done)
		select {
		case c.cmds <- playbackDone{p: p}:
		case <-c.quit:
		}
	}()

	samples, err := c.load(ctx, p.path, c.sampleRate)
	if err != nil {
		p.result = PlaybackResult{ID: p.id, Owner: p.owner, Outcome: Failed, Err: err}
		if ctx.Err() != nil {
			p.result.Outcome = Cancelled
		}
		return
	}

	Normalize(samples, c.engine.gains.Playback())
	p.result = c.sched.Play(ctx, p.id, p.owner, samples)
}

// stopActive cancels the running worker and waits for it.
func (c *Controller) stopActive() {
	p := c.active
	if p == nil {
		return
	}
	p.cancel()
	<-p.done
	c.finish(p)
}

// finish reverts routing for a worker that has exited.
func (c *Controller) finish(p *playback) {
	p.cancel()
	res := p.result

	// Capture is idle until Leave, so the flush only drops playback blocks.
	flushed := c.engine.Flush()
	c.engine.routing.Leave(p.owner)
	c.active = nil
	c.metrics.PlaybackSessions.WithLabelValues(res.Outcome.String()).Inc()

	c.log.Info().
		Str("session", res.ID.String()).
		Stringer("owner", p.owner).
		Stringer("outcome", res.Outcome).
		Int("blocks", res.Blocks).
		Int("flushed", flushed).
		Err(res.Err).
		Msg("playback ended")

	switch res.Outcome {
	case Finished:
		c.events.publish(PlaybackFinished, Info, p.owner,
			fmt.Sprintf("%s finished, voice resumed", p.owner))
	case Cancelled:
		c.events.publish(PlaybackCancelled, Info, p.owner,
			fmt.Sprintf("%s cancelled, voice resumed", p.owner))
	default:
		c.events.publish(FileError, Error, p.owner,
			fmt.Sprintf("%s: %v", p.owner, res.Err))
	}
}
