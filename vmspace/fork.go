package vmspace

import "hobbyvm/vmobject"

// Fork produces a deep-structured clone of the space for a forked
// process. The source space's lock is held for the entire walk: unlike
// allocSpace/freeRegion, constructing child regions is allowed to
// allocate here, since the hazard those two guard against is a
// *different* VMSpace's page fault recursing into this same lock, which
// cannot happen here: the child space has no other references yet and is
// invisible to every other thread until Fork returns.
//
// Every live, anonymous, writable mapping with BecomeCoW policy is
// re-flagged CoW in the parent too, even though only the child is being
// created, so that whichever side writes first pays the copy cost and
// both sides diverge cleanly.
func (s *VMSpace) Fork(childPageDir PageDirectory) (*VMSpace, []*VMRegion) {
	s.mu.Lock()
	defer s.mu.Unlock()

	child := &VMSpace{start: s.start, size: s.size, pageDir: childPageDir, mm: s.mm, used: s.used, head: noRecord}

	var regions []*VMRegion
	prevNew := noRecord
	for i := s.head; i != noRecord; {
		src := s.arena.at(i)

		newIdx := child.arena.reserve()
		newRec := child.arena.at(newIdx)
		*newRec = record{start: src.start, size: src.size, used: src.used, prev: prevNew, next: noRecord}
		if prevNew != noRecord {
			child.arena.at(prevNew).next = newIdx
		} else {
			child.head = newIdx
		}
		prevNew = newIdx

		if src.region != nil {
			newRegion := forkRegion(src.region, child)
			newRec.region = newRegion
			if newRegion != nil {
				regions = append(regions, newRegion)
			}
		}

		i = src.next
	}

	return child, regions
}

// forkRegion applies region's object's fork policy, mutating the
// parent's region in place (BecomeCoW flips its CoW bit) and returning
// the child's new region, or nil if the policy drops the mapping in the
// child (Ignore).
func forkRegion(region *VMRegion, child *VMSpace) *VMRegion {
	anon, ok := region.object.(*vmobject.AnonymousVMObject)
	if !ok {
		panic("vmspace: fork of non-anonymous object is not supported")
	}

	switch anon.ForkAction() {
	case vmobject.BecomeCoW:
		if region.prot.Write {
			region.setCow(true)
		}
		newRegion := &VMRegion{object: anon, space: child, rng: region.rng, objectStart: region.objectStart, prot: region.prot}
		anon.Ref()
		child.pageDir.Map(newRegion)
		return newRegion
	case vmobject.Share:
		newRegion := &VMRegion{object: anon, space: child, rng: region.rng, objectStart: region.objectStart, prot: region.prot}
		anon.Ref()
		child.pageDir.Map(newRegion)
		return newRegion
	case vmobject.Ignore:
		return nil
	default:
		panic("vmspace: unknown fork action")
	}
}
