// Package pmm stands in for the physical page allocator: a refcounted
// pool of fixed-size pages, which this subsystem treats as an external
// collaborator. Plain byte arrays stand in for physical frames rather
// than unsafe-pointer direct maps, since the real hardware mapping lives
// outside this subsystem's scope.
package pmm

import (
	"sync"
	"sync/atomic"
)

// PageSize is the fixed page size all sizes and offsets in this
// subsystem are multiples of.
const PageSize = 4096

// Frame is one physical page frame.
type Frame = *[PageSize]byte

type frame struct {
	page Frame
	refs int32
}

// Pool is a refcounted pool of zeroed physical frames. It carries no
// hardware free-list bookkeeping (no cr3/TLB state); those concerns
// belong to the PageDirectory collaborator, not to frame allocation.
type Pool struct {
	mu     sync.Mutex
	frames map[Frame]*frame
	limit  int // 0 means unlimited
	count  int
}

// NewPool creates a frame pool. limit of 0 means no cap on outstanding
// frames, useful for tests; production wiring should pass the real
// number of physical pages available.
func NewPool(limit int) *Pool {
	return &Pool{frames: make(map[Frame]*frame), limit: limit}
}

// Alloc returns a freshly zeroed frame with a refcount of 1, or ok=false
// if the pool is exhausted (spec: NO_MEMORY when frames unavailable).
func (p *Pool) Alloc() (Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.limit != 0 && p.count >= p.limit {
		return nil, false
	}
	pg := new([PageSize]byte)
	p.frames[pg] = &frame{page: pg, refs: 1}
	p.count++
	return pg, true
}

// Refup increments a frame's reference count.
func (p *Pool) Refup(f Frame) {
	p.mu.Lock()
	fr, ok := p.frames[f]
	p.mu.Unlock()
	if !ok {
		panic("pmm: refup of unknown frame")
	}
	if atomic.AddInt32(&fr.refs, 1) <= 1 {
		panic("pmm: refup from non-positive refcount")
	}
}

// Refdown decrements a frame's reference count, releasing it back to the
// pool when it reaches zero. It returns true when the frame was freed.
func (p *Pool) Refdown(f Frame) bool {
	p.mu.Lock()
	fr, ok := p.frames[f]
	if !ok {
		p.mu.Unlock()
		panic("pmm: refdown of unknown frame")
	}
	c := atomic.AddInt32(&fr.refs, -1)
	if c < 0 {
		p.mu.Unlock()
		panic("pmm: negative refcount")
	}
	if c == 0 {
		delete(p.frames, f)
		p.count--
	}
	p.mu.Unlock()
	return c == 0
}

// Refcnt returns the current reference count of f.
func (p *Pool) Refcnt(f Frame) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	fr, ok := p.frames[f]
	if !ok {
		return 0
	}
	return int(atomic.LoadInt32(&fr.refs))
}
