package vmspace

import (
	"sync"

	"hobbyvm/defs"
	"hobbyvm/vmobject"
)

// VMSpace is a range allocator over a fixed virtual-address window. It
// owns a list of space records partitioning that window and hosts
// MapObject, UnmapRegion, Fork and TryPageFault.
//
// The embedded mutex guards the record list and used for the duration of
// any mutation or pointer-returning traversal. The record-list mutations
// (allocSpace, allocSpaceAt, freeRegion) never grow or shrink the arena
// while holding it; Fork and TryPageFault do allocate while holding it.
type VMSpace struct {
	mu sync.Mutex

	start VA
	size  uintptr
	used  uintptr

	pageDir PageDirectory
	mm      MemoryManager

	arena arena
	head  int // index of the first record; -1 only for a destroyed space
}

const noRecord = -1

// New creates a VMSpace covering [start, start+size) with a single free
// record spanning the whole window.
func New(start VA, size uintptr, pageDir PageDirectory, mm MemoryManager) *VMSpace {
	s := &VMSpace{start: start, size: size, pageDir: pageDir, mm: mm}
	idx := s.arena.reserve()
	rec := s.arena.at(idx)
	*rec = record{start: start, size: size, prev: noRecord, next: noRecord}
	s.head = idx
	return s
}

// Used returns the number of bytes currently marked used in the window.
func (s *VMSpace) Used() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.used
}

// RegionSnapshot is a read-only view of one space record, used by tests
// and diagnostics without exposing arena internals.
type RegionSnapshot struct {
	Start VA
	Size  uintptr
	Used  bool
	Bound bool
}

// Regions returns a stable, ascending-by-start snapshot of the space's
// records.
func (s *VMSpace) Regions() []RegionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []RegionSnapshot
	for i := s.head; i != noRecord; {
		rec := s.arena.at(i)
		out = append(out, RegionSnapshot{
			Start: rec.start,
			Size:  rec.size,
			Used:  rec.used,
			Bound: rec.region != nil,
		})
		i = rec.next
	}
	return out
}

// GetRegionAt returns the region whose record begins exactly at addr.
func (s *VMSpace) GetRegionAt(addr VA) (*VMRegion, defs.Err_t) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := s.head; i != noRecord; {
		rec := s.arena.at(i)
		if rec.start == addr {
			if rec.region != nil {
				return rec.region, 0
			}
			return nil, defs.ENOENT
		}
		i = rec.next
	}
	return nil, defs.ENOENT
}

// GetRegionContaining returns the region whose record covers addr.
func (s *VMSpace) GetRegionContaining(addr VA) (*VMRegion, defs.Err_t) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := s.head; i != noRecord; {
		rec := s.arena.at(i)
		if rec.contains(addr) {
			if rec.region != nil {
				return rec.region, 0
			}
			return nil, defs.ENOENT
		}
		i = rec.next
	}
	return nil, defs.ENOENT
}

// FindFreeSpace returns the lowest free record's start address with at
// least size bytes available.
func (s *VMSpace) FindFreeSpace(size uintptr) (VA, defs.Err_t) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := s.head; i != noRecord; {
		rec := s.arena.at(i)
		if !rec.used && rec.size >= size {
			return rec.start, 0
		}
		i = rec.next
	}
	return 0, defs.ENOMEM
}

// ReserveRegion marks a free record used with no bound region, letting
// the kernel block out architectural addresses without mapping anything.
func (s *VMSpace) ReserveRegion(start VA, size uintptr) defs.Err_t {
	_, err := s.allocSpaceAt(size, start)
	return err
}

// RegularAnonymousTotal sums object.Size() across used records whose
// object is anonymous and not shared, for memory accounting.
func (s *VMSpace) RegularAnonymousTotal() uintptr {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total uintptr
	for i := s.head; i != noRecord; {
		rec := s.arena.at(i)
		if rec.used && rec.region != nil {
			if anon, ok := rec.region.object.(*vmobject.AnonymousVMObject); ok && !anon.IsShared() {
				total += uintptr(anon.Size())
			}
		}
		i = rec.next
	}
	return total
}
