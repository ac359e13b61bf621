// SPDX-License-Identifier: EPL-2.0

// Package metrics exposes the engine's counters through Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Set groups every voxswitch metric on its own registry. Counter and gauge
// updates are lock-free and safe to call from audio callbacks.
type Set struct {
	Registry *prometheus.Registry

	CaptureDropped   prometheus.Counter
	MonitorDropped   prometheus.Counter
	RenderUnderruns  prometheus.Counter
	RenderLimited    prometheus.Counter
	EventsDropped    prometheus.Counter
	PoolMisses       prometheus.Counter
	PlaybackSessions *prometheus.CounterVec
	FrameQueueDepth  prometheus.Gauge
}

// New builds a Set on a fresh registry.
func New() *Set {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Set{
		Registry: reg,

		CaptureDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "voxswitch_capture_dropped_blocks_total",
				Help: "Microphone blocks dropped because the frame queue was full",
			},
		),

		MonitorDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "voxswitch_monitor_dropped_blocks_total",
				Help: "Blocks not forwarded to the monitor because its queue was full",
			},
		),

		RenderUnderruns: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "voxswitch_render_underruns_total",
				Help: "Render callbacks that found the frame queue empty",
			},
		),

		RenderLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "voxswitch_render_limited_blocks_total",
				Help: "Rendered blocks scaled down by the peak limiter",
			},
		),

		EventsDropped: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "voxswitch_events_dropped_total",
				Help: "Status events discarded because no one drained the channel",
			},
		),

		PoolMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "voxswitch_block_pool_misses_total",
				Help: "Block pool requests that had to allocate",
			},
		),

		PlaybackSessions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "voxswitch_playback_sessions_total",
				Help: "Finished playback sessions by outcome",
			},
			[]string{"outcome"},
		),

		FrameQueueDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "voxswitch_frame_queue_depth",
				Help: "Blocks waiting in the frame queue at the last render",
			},
		),
	}
}
