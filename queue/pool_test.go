// SPDX-License-Identifier: EPL-2.0

package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPool_GetPut(t *testing.T) {
	p := NewPool(2, 16)
	assert.Equal(t, 2, p.Available())
	assert.Equal(t, 16, p.BlockSize())

	a, b := p.Get(), p.Get()
	assert.Len(t, a, 16)
	assert.Len(t, b, 16)
	assert.Zero(t, p.Available())
	assert.Zero(t, p.Misses())

	c := p.Get()
	assert.Len(t, c, 16)
	assert.Equal(t, uint64(1), p.Misses(), "exhausted pool allocates")

	p.Put(a)
	p.Put(b)
	p.Put(c)
	assert.Equal(t, 2, p.Available(), "pool never grows past its size")
}

func TestPool_PutRejectsWrongSize(t *testing.T) {
	p := NewPool(2, 16)
	p.Get()
	p.Put(make(Block, 8))
	p.Put(nil)
	assert.Equal(t, 1, p.Available())
}

func TestPool_BlocksDoNotOverlap(t *testing.T) {
	p := NewPool(3, 4)
	a, b := p.Get(), p.Get()
	for i := range a {
		a[i] = 1
	}
	assert.Equal(t, Block{0, 0, 0, 0}, b)

	// appending to a pooled block must not spill into its neighbour
	_ = append(a, 9)
	assert.Equal(t, Block{0, 0, 0, 0}, b)
}

func TestPool_SteadyStateDoesNotAllocate(t *testing.T) {
	p := NewPool(4, 512)
	allocs := testing.AllocsPerRun(1000, func() {
		p.Put(p.Get())
	})
	assert.Zero(t, allocs)
}
