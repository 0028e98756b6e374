package vmspace

import "hobbyvm/defs"

// allocSpace scans records ascending and claims the first free record of
// at least size bytes, splitting it if necessary. It returns the arena
// index of the new used record.
//
// The arena slot this call might need is reserved before s.mu is taken:
// the kernel heap itself may page-fault into this same subsystem, so
// holding the space lock across a heap allocation risks re-entry and
// deadlock. If the slot goes unused (an exact fit needed no split), it
// is discarded only after s.mu is released.
func (s *VMSpace) allocSpace(size uintptr) (int, defs.Err_t) {
	spare := s.arena.reserve()

	s.mu.Lock()
	var (
		foundIdx  = noRecord
		spareUsed bool
	)
	for i := s.head; i != noRecord; {
		rec := s.arena.at(i)
		if rec.used || rec.size < size {
			i = rec.next
			continue
		}
		if rec.size == size {
			rec.used = true
			s.used += rec.size
			foundIdx = i
			break
		}

		newRec := s.arena.at(spare)
		*newRec = record{start: rec.start, size: size, used: true, prev: rec.prev, next: i}
		if rec.prev != noRecord {
			s.arena.at(rec.prev).next = spare
		}
		rec.start += VA(size)
		rec.size -= size
		rec.prev = spare
		if s.head == i {
			s.head = spare
		}
		s.used += size
		foundIdx = spare
		spareUsed = true
		break
	}
	s.mu.Unlock()

	if !spareUsed {
		s.arena.discard(spare)
	}
	if foundIdx == noRecord {
		return 0, defs.ENOMEM
	}
	return foundIdx, 0
}

// allocSpaceAt finds the free record containing address and claims
// [address, address+size) inside it, splitting into up to three
// records: an optional free head, the used middle, and an optional free
// tail.
func (s *VMSpace) allocSpaceAt(size uintptr, address VA) (int, defs.Err_t) {
	before := s.arena.reserve()
	after := s.arena.reserve()

	s.mu.Lock()
	var (
		foundIdx           = noRecord
		beforeUsed, afterUsed bool
		failed             bool
	)
	for i := s.head; i != noRecord; {
		rec := s.arena.at(i)
		if !rec.contains(address) {
			i = rec.next
			continue
		}
		if rec.used {
			failed = true
			break
		}
		if rec.size-uintptr(address-rec.start) < size {
			failed = true
			break
		}

		if rec.start == address && rec.size == size {
			rec.used = true
			s.used += rec.size
			foundIdx = i
			break
		}

		if rec.start < address {
			b := s.arena.at(before)
			*b = record{start: rec.start, size: uintptr(address - rec.start), used: false, prev: rec.prev, next: i}
			if rec.prev != noRecord {
				s.arena.at(rec.prev).next = before
			}
			rec.prev = before
			if s.head == i {
				s.head = before
			}
			beforeUsed = true
		}

		if rec.end() > address+VA(size) {
			a := s.arena.at(after)
			*a = record{start: address + VA(size), size: uintptr(rec.end() - (address + VA(size))), used: false, prev: i, next: rec.next}
			if rec.next != noRecord {
				s.arena.at(rec.next).prev = after
			}
			rec.next = after
			afterUsed = true
		}

		rec.start = address
		rec.size = size
		rec.used = true
		s.used += rec.size
		foundIdx = i
		break
	}
	s.mu.Unlock()

	if !beforeUsed {
		s.arena.discard(before)
	}
	if !afterUsed {
		s.arena.discard(after)
	}
	if failed || foundIdx == noRecord {
		return 0, defs.ENOMEM
	}
	return foundIdx, 0
}

// freeRegion marks the record at idx free and merges it with adjacent
// free neighbours. Coalesced neighbour slots are detached while s.mu is
// held but only returned to the arena after it is released, so the
// discard, which touches the arena's own allocation path, never runs
// nested inside the space lock.
func (s *VMSpace) freeRegion(idx int) defs.Err_t {
	var toDiscard [2]int
	n := 0

	s.mu.Lock()
	rec := s.arena.at(idx)
	rec.used = false
	rec.region = nil
	s.used -= rec.size

	if prevIdx := rec.prev; prevIdx != noRecord {
		prev := s.arena.at(prevIdx)
		if !prev.used {
			toDiscard[n] = prevIdx
			n++
			rec.start -= VA(prev.size)
			rec.size += prev.size
			rec.prev = prev.prev
			if rec.prev != noRecord {
				s.arena.at(rec.prev).next = idx
			}
			if s.head == prevIdx {
				s.head = idx
			}
		}
	}

	if nextIdx := rec.next; nextIdx != noRecord {
		next := s.arena.at(nextIdx)
		if !next.used {
			toDiscard[n] = nextIdx
			n++
			rec.size += next.size
			rec.next = next.next
			if rec.next != noRecord {
				s.arena.at(rec.next).prev = idx
			}
		}
	}
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		s.arena.discard(toDiscard[i])
	}
	return 0
}
