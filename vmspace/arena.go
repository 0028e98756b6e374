package vmspace

import "sync"

// record is one node of a VMSpace's partition of its address window.
// Records live in an arena indexed by int rather than linked by raw
// pointer, since an intrusive pointer list has no direct Go equivalent
// without unsafe.Pointer tricks.
type record struct {
	start VA
	size  uintptr
	used  bool
	region *VMRegion // nil unless used and bound

	prev, next int // arena indices; -1 is the sentinel
}

func (rec *record) end() VA { return rec.start + VA(rec.size) }

func (rec *record) contains(addr VA) bool {
	return addr >= rec.start && addr < rec.end()
}

// arena is a pool of *record slots. Indices are stable handles: growing
// the arena only reallocates the slice of pointers, never the records
// themselves, so a *record fetched under VMSpace.mu stays valid even if
// another goroutine grows the arena concurrently (it cannot be holding
// mu at the same time; see reserve/discard below).
//
// reserve/discard have their own mutex, distinct from VMSpace.mu, so
// that growing the arena (which may allocate kernel heap) never happens
// while VMSpace.mu is held. allocSpace and freeRegion rely on this:
// allocate before locking, free only after unlocking, since the kernel
// heap allocator can itself page-fault back into this subsystem.
type arena struct {
	mu    sync.Mutex // guards slots/free only, never held together with the owning VMSpace.mu
	slots []*record
	free  []int
}

// reserve hands back a record slot, recycling a discarded one if
// available. Call this before acquiring VMSpace.mu.
func (a *arena) reserve() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		*a.slots[idx] = record{}
		return idx
	}
	a.slots = append(a.slots, &record{})
	return len(a.slots) - 1
}

// discard returns an unused or freed slot to the pool. Call this after
// releasing VMSpace.mu.
func (a *arena) discard(idx int) {
	a.mu.Lock()
	a.free = append(a.free, idx)
	a.mu.Unlock()
}

func (a *arena) at(idx int) *record { return a.slots[idx] }
