package vmspace

import (
	"hobbyvm/defs"
	"hobbyvm/util"
	"hobbyvm/vmobject"
)

// MapObject reserves a range inside the space's window and binds a new
// VMRegion to it. If range.Start is zero, the lowest fitting free record
// is used; otherwise range.Start must already be page-aligned and the
// mapping is placed exactly there. A zero range.Size means "the rest of
// the object starting at objectStart".
func (s *VMSpace) MapObject(object vmobject.VMObject, prot VMProt, rng VirtualRange, objectStart int) (*VMRegion, defs.Err_t) {
	if rng.Size == 0 {
		rng.Size = uintptr(object.Size() - objectStart)
	}
	if !util.Aligned(rng.Start, VA(PageSize)) ||
		!util.Aligned(rng.Size, uintptr(PageSize)) ||
		!util.Aligned(objectStart, PageSize) ||
		objectStart+int(rng.Size) > object.Size() {
		return nil, defs.EINVAL
	}

	var (
		idx int
		err defs.Err_t
	)
	if rng.Start != 0 {
		idx, err = s.allocSpaceAt(rng.Size, rng.Start)
	} else {
		idx, err = s.allocSpace(rng.Size)
	}
	if err != 0 {
		return nil, err
	}

	s.mu.Lock()
	rec := s.arena.at(idx)
	region := &VMRegion{
		object:      object,
		space:       s,
		rng:         VirtualRange{Start: rec.start, Size: rng.Size},
		objectStart: objectStart,
		prot:        prot,
	}
	rec.region = region
	s.mu.Unlock()

	if anon, ok := object.(*vmobject.AnonymousVMObject); ok {
		anon.Ref()
	}
	s.pageDir.Map(region)
	return region, 0
}

// MapStack finds the highest-addressed free record with room for
// object's full size and maps it at the top of that record, since
// stacks grow downward.
func (s *VMSpace) MapStack(object vmobject.VMObject, prot VMProt) (*VMRegion, defs.Err_t) {
	s.mu.Lock()
	var last int = noRecord
	for i := s.head; i != noRecord; {
		last = i
		i = s.arena.at(i).next
	}
	cur := last
	for cur != noRecord {
		rec := s.arena.at(cur)
		if !rec.used && rec.size >= uintptr(object.Size()) {
			break
		}
		cur = rec.prev
	}
	s.mu.Unlock()

	if cur == noRecord {
		return nil, defs.ENOMEM
	}
	rec := s.arena.at(cur)
	top := rec.end() - VA(object.Size())
	return s.MapObject(object, prot, VirtualRange{Start: top, Size: uintptr(object.Size())}, 0)
}

// UnmapRegion locates the record bound to region, tears down its
// hardware mapping, and releases the record.
func (s *VMSpace) UnmapRegion(region *VMRegion) defs.Err_t {
	return s.unmapMatching(func(rec *record) bool { return rec.region == region })
}

// UnmapRegionAt is the address-keyed form of UnmapRegion.
func (s *VMSpace) UnmapRegionAt(start VA) defs.Err_t {
	return s.unmapMatching(func(rec *record) bool { return rec.start == start })
}

func (s *VMSpace) unmapMatching(match func(*record) bool) defs.Err_t {
	s.mu.Lock()
	idx := noRecord
	for i := s.head; i != noRecord; {
		rec := s.arena.at(i)
		if match(rec) {
			idx = i
			break
		}
		i = rec.next
	}
	if idx == noRecord {
		s.mu.Unlock()
		return defs.ENOENT
	}
	rec := s.arena.at(idx)
	if rec.region == nil {
		s.mu.Unlock()
		return defs.ENOENT
	}
	region := rec.region
	region.space = nil
	s.mu.Unlock()

	s.pageDir.Unmap(region)
	if anon, ok := region.object.(*vmobject.AnonymousVMObject); ok {
		anon.Unref()
	}
	return s.freeRegion(idx)
}
