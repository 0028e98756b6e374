package vmspace

import (
	"hobbyvm/defs"
	"hobbyvm/vmobject"
)

// TryPageFault handles a write fault at addr against a CoW mapping. It
// allocates a fresh object the same size as the faulting region's object,
// copies the old object's content into it, rebinds the region to the new
// object, and clears the region's CoW bit so the next write proceeds
// without faulting again.
//
// The original implementation holds its single space lock across the
// whole handler, allocation included; unlike allocSpace/freeRegion this
// call has nothing else contending for the arena underneath it (the
// fault is against a record that is already bound and in use), so there
// is no heap-recursion hazard to split the lock around, and this mirrors
// that shape directly rather than introducing one.
func (s *VMSpace) TryPageFault(addr VA) defs.Err_t {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := noRecord
	for i := s.head; i != noRecord; {
		rec := s.arena.at(i)
		if rec.contains(addr) {
			idx = i
			break
		}
		i = rec.next
	}
	if idx == noRecord {
		return defs.ENOENT
	}

	rec := s.arena.at(idx)
	region := rec.region
	if region == nil || !region.IsCow() {
		return defs.EINVAL
	}
	anon, ok := region.object.(*vmobject.AnonymousVMObject)
	if !ok {
		return defs.EINVAL
	}

	newObj, err := s.mm.AllocAnonymous(anon.Size())
	if err != 0 {
		return err
	}

	mapped := s.mm.MapObject(newObj)
	buf := mapped.Bytes()
	anon.ReadAll(buf)
	mapped.Unmap()

	anon.Unref()
	// newObj's initial reference from AllocAnonymous becomes the region's.
	region.object = newObj
	region.setCow(false)

	return 0
}
