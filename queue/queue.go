// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"context"
	"sync"
)

// Block is one mono audio block of exactly BlockSize samples.
type Block []float32

// Queue is a bounded FIFO of blocks. Any number of goroutines may push and
// pop concurrently.
type Queue struct {
	ch        chan Block
	done      chan struct{}
	closeOnce sync.Once
	blockSize int
}

// New creates a queue holding at most capacity blocks of blockSize samples.
func New(capacity, blockSize int) (*Queue, error) {
	if capacity <= 0 || blockSize <= 0 {
		return nil, ErrInvalidSize
	}
	return &Queue{
		ch:        make(chan Block, capacity),
		done:      make(chan struct{}),
		blockSize: blockSize,
	}, nil
}

// Push enqueues b, waiting while the queue is full. It returns ctx.Err() if
// ctx is cancelled first and ErrClosed once Close was called.
func (q *Queue) Push(ctx context.Context, b Block) error {
	select {
	case <-q.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	select {
	case q.ch <- b:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrClosed
	}
}

// TryPush enqueues b if there is room. It never blocks.
func (q *Queue) TryPush(b Block) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	select {
	case q.ch <- b:
		return true
	default:
		return false
	}
}

// TryPop dequeues the oldest block if there is one. It never blocks.
func (q *Queue) TryPop() (Block, bool) {
	select {
	case b := <-q.ch:
		return b, true
	default:
		return nil, false
	}
}

// Drain discards every pending block and returns how many were dropped.
func (q *Queue) Drain() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

// DrainTo is Drain but hands the dropped blocks back to p.
func (q *Queue) DrainTo(p *Pool) int {
	n := 0
	for {
		select {
		case b := <-q.ch:
			p.Put(b)
			n++
		default:
			return n
		}
	}
}

// Close wakes every blocked Push with ErrClosed and makes later pushes fail.
// Pending blocks stay poppable until drained. Close is idempotent.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}

// Closed reports whether Close has been called.
func (q *Queue) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

func (q *Queue) Len() int       { return len(q.ch) }
func (q *Queue) Cap() int       { return cap(q.ch) }
func (q *Queue) BlockSize() int { return q.blockSize }
