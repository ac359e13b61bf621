// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"sync/atomic"

	"github.com/ik5/voxswitch/internal/metrics"
	"github.com/ik5/voxswitch/queue"
	"github.com/ik5/voxswitch/routing"
	"github.com/ik5/voxswitch/utils"
)

// poolSlack covers blocks held by callbacks and the scheduler outside of
// both queues.
const poolSlack = 8

// Engine owns the realtime path: the frame queue, the monitor queue, the
// block pool and the three hardware callbacks. Capture, Render and Monitor
// never block and do not allocate once the pool is warm.
type Engine struct {
	frames    *queue.Queue
	monitor   *queue.Queue
	pool      *queue.Pool
	routing   *routing.Machine
	gains     *Gains
	metrics   *metrics.Set
	blockSize int

	heartbeat atomic.Uint64
}

// NewEngine builds the queues for one session.
func NewEngine(blockSize, queueCapacity, monitorCapacity int, gains *Gains, m *metrics.Set) (*Engine, error) {
	frames, err := queue.New(queueCapacity, blockSize)
	if err != nil {
		return nil, err
	}
	monitor, err := queue.New(monitorCapacity, blockSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		frames:    frames,
		monitor:   monitor,
		pool:      queue.NewPool(queueCapacity+monitorCapacity+poolSlack, blockSize),
		routing:   routing.New(),
		gains:     gains,
		metrics:   m,
		blockSize: blockSize,
	}, nil
}

func (e *Engine) Routing() *routing.Machine  { return e.routing }
func (e *Engine) Frames() *queue.Queue       { return e.frames }
func (e *Engine) MonitorQueue() *queue.Queue { return e.monitor }
func (e *Engine) Pool() *queue.Pool          { return e.pool }
func (e *Engine) BlockSize() int             { return e.blockSize }

// Heartbeat counts render callbacks.
func (e *Engine) Heartbeat() uint64 { return e.heartbeat.Load() }

// Capture is the microphone callback. In Voice mode it queues in scaled by
// the mic gain; in Playback mode input is discarded.
func (e *Engine) Capture(in []float32) {
	if e.routing.Mode() != routing.Voice {
		return
	}

	b := e.pool.Get()
	utils.ScaleInto(b, in, float32(e.gains.Mic()))
	if !e.frames.TryPush(b) {
		e.pool.Put(b)
		e.metrics.CaptureDropped.Inc()
	}
}

// Render is the virtual cable callback. It plays the next queued block, or
// silence, through the peak limiter and forwards a copy to the monitor.
func (e *Engine) Render(out []float32) {
	e.heartbeat.Add(1)
	e.metrics.FrameQueueDepth.Set(float64(e.frames.Len()))

	b, ok := e.frames.TryPop()
	if !ok {
		clear(out)
		e.metrics.RenderUnderruns.Inc()
		return
	}

	n := copy(out, b)
	clear(out[n:])
	e.pool.Put(b)

	if Limit(out, LimiterThreshold) {
		e.metrics.RenderLimited.Inc()
	}

	m := e.pool.Get()
	n = copy(m, out)
	clear(m[n:])
	if !e.monitor.TryPush(m) {
		e.pool.Put(m)
		e.metrics.MonitorDropped.Inc()
	}
}

// Monitor is the headphone callback. It plays what Render produced, scaled
// by the monitor gain.
func (e *Engine) Monitor(out []float32) {
	b, ok := e.monitor.TryPop()
	if !ok {
		clear(out)
		return
	}
	utils.ScaleInto(out, b, float32(e.gains.Monitor()))
	e.pool.Put(b)
}

// Flush returns every pending frame block to the pool.
func (e *Engine) Flush() int {
	return e.frames.DrainTo(e.pool)
}

// Close drains both queues and releases any blocked producer.
func (e *Engine) Close() {
	e.frames.Close()
	e.monitor.Close()
	e.frames.DrainTo(e.pool)
	e.monitor.DrainTo(e.pool)
}
