// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ik5/voxswitch/internal/metrics"
	"github.com/ik5/voxswitch/routing"
)

// DefaultEventBuffer is the capacity of the status event channel.
const DefaultEventBuffer = 64

type EventKind uint8

const (
	PlaybackStarted EventKind = iota
	PlaybackFinished
	PlaybackCancelled
	FileError
	DeviceErrorEvent
	BusyEvent
	RejectedEvent
	SessionStarted
	SessionStopped
)

func (k EventKind) String() string {
	switch k {
	case PlaybackStarted:
		return "playback_started"
	case PlaybackFinished:
		return "playback_finished"
	case PlaybackCancelled:
		return "playback_cancelled"
	case FileError:
		return "file_error"
	case DeviceErrorEvent:
		return "device_error"
	case BusyEvent:
		return "busy"
	case RejectedEvent:
		return "rejected"
	case SessionStarted:
		return "session_started"
	case SessionStopped:
		return "session_stopped"
	default:
		return "unknown"
	}
}

type Severity uint8

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Event is a user facing status message.
type Event struct {
	Kind     EventKind
	Severity Severity
	Owner    routing.Owner
	Message  string
	Time     time.Time
}

// eventBus publishes events without ever blocking the sender.
type eventBus struct {
	ch      chan Event
	log     zerolog.Logger
	metrics *metrics.Set
	now     func() time.Time
}

func newEventBus(size int, log zerolog.Logger, m *metrics.Set) *eventBus {
	return &eventBus{
		ch:      make(chan Event, size),
		log:     log,
		metrics: m,
		now:     time.Now,
	}
}

func (b *eventBus) publish(kind EventKind, sev Severity, owner routing.Owner, msg string) {
	e := Event{Kind: kind, Severity: sev, Owner: owner, Message: msg, Time: b.now()}

	select {
	case b.ch <- e:
	default:
		b.metrics.EventsDropped.Inc()
		b.log.Warn().
			Stringer("kind", kind).
			Stringer("owner", owner).
			Str("message", msg).
			Msg("event channel full, dropping event")
	}
}
