// SPDX-License-Identifier: EPL-2.0

package queue

import "sync/atomic"

// Pool is a bounded free-list of blocks. Unlike sync.Pool it never lets the
// GC reclaim its contents, so a warmed-up pool serves callbacks without
// allocating.
type Pool struct {
	free      chan Block
	blockSize int
	misses    atomic.Uint64
}

// NewPool preallocates size blocks of blockSize samples.
func NewPool(size, blockSize int) *Pool {
	p := &Pool{
		free:      make(chan Block, size),
		blockSize: blockSize,
	}
	backing := make([]float32, size*blockSize)
	for i := range size {
		p.free <- Block(backing[i*blockSize : (i+1)*blockSize : (i+1)*blockSize])
	}
	return p
}

// Get returns a block with undefined contents. It allocates only when the
// pool is empty.
func (p *Pool) Get() Block {
	select {
	case b := <-p.free:
		return b
	default:
		p.misses.Add(1)
		return make(Block, p.blockSize)
	}
}

// Put returns b to the pool. Blocks of the wrong size, and blocks that do
// not fit, are left to the GC.
func (p *Pool) Put(b Block) {
	if len(b) != p.blockSize {
		return
	}
	select {
	case p.free <- b:
	default:
	}
}

// Available is the number of blocks ready to be handed out.
func (p *Pool) Available() int { return len(p.free) }

// Misses counts Get calls that had to allocate.
func (p *Pool) Misses() uint64 { return p.misses.Load() }

func (p *Pool) BlockSize() int { return p.blockSize }
