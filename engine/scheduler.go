// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ik5/voxswitch/queue"
	"github.com/ik5/voxswitch/routing"
	"github.com/ik5/voxswitch/utils"
)

type Outcome uint8

const (
	Finished Outcome = iota
	Cancelled
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Finished:
		return "finished"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// PlaybackResult is what a scheduler worker reports to the controller.
type PlaybackResult struct {
	ID      uuid.UUID
	Owner   routing.Owner
	Blocks  int
	Outcome Outcome
	Err     error
}

// Normalize scales samples in place so the peak equals gain. Silence is left
// untouched.
func Normalize(samples []float32, gain float64) {
	peak := utils.Peak(samples)
	if peak == 0 {
		return
	}
	utils.Scale(samples, float32(gain)/peak)
}

// Scheduler feeds a decoded buffer into the frame queue one block at a time.
// The blocking push paces it to the render callback.
type Scheduler struct {
	frames    *queue.Queue
	pool      *queue.Pool
	blockSize int

	// After the last push Play waits for render to empty the queue, polling
	// every tailPoll for at most tailTimeout. Zero tailTimeout skips the wait.
	tailPoll    time.Duration
	tailTimeout time.Duration
}

// NewScheduler feeds e. sampleRate only sets the tail wait timing.
func NewScheduler(e *Engine, sampleRate int) *Scheduler {
	period := time.Duration(e.BlockSize()) * time.Second / time.Duration(max(sampleRate, 1))
	return &Scheduler{
		frames:      e.Frames(),
		pool:        e.Pool(),
		blockSize:   e.BlockSize(),
		tailPoll:    max(period, time.Millisecond),
		tailTimeout: max(2*time.Duration(e.Frames().Cap()+1)*period, 100*time.Millisecond),
	}
}

// Play splits samples into zero padded blocks and pushes them in order. It
// checks ctx before every block.
func (s *Scheduler) Play(ctx context.Context, id uuid.UUID, owner routing.Owner, samples []float32) PlaybackResult {
	res := PlaybackResult{ID: id, Owner: owner}

	for off := 0; off < len(samples); off += s.blockSize {
		if ctx.Err() != nil {
			res.Outcome = Cancelled
			return res
		}

		b := s.pool.Get()
		n := copy(b, samples[off:])
		clear(b[n:])

		if err := s.frames.Push(ctx, b); err != nil {
			s.pool.Put(b)
			res.Outcome = Cancelled
			if errors.Is(err, queue.ErrClosed) {
				res.Err = err
			}
			return res
		}
		res.Blocks++
	}

	if !s.waitTail(ctx) {
		res.Outcome = Cancelled
		return res
	}
	res.Outcome = Finished
	return res
}

// waitTail returns false if ctx ends before the queue empties.
func (s *Scheduler) waitTail(ctx context.Context) bool {
	if s.tailTimeout <= 0 {
		return ctx.Err() == nil
	}

	timeout := time.NewTimer(s.tailTimeout)
	defer timeout.Stop()
	poll := time.NewTicker(s.tailPoll)
	defer poll.Stop()

	for {
		if s.frames.Len() == 0 || s.frames.Closed() {
			return ctx.Err() == nil
		}
		select {
		case <-ctx.Done():
			return false
		case <-timeout.C:
			return true
		case <-poll.C:
		}
	}
}
