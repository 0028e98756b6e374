package vmspace

import (
	"hobbyvm/defs"
	"hobbyvm/vmobject"
)

// PageDirectory installs or removes hardware mappings for a VMRegion.
// It is a collaborator: this subsystem assumes one exists per VMSpace
// but does not implement the architecture-specific mapping itself (see
// package pagedir for a software reference implementation).
type PageDirectory interface {
	// Map installs mappings for every page in region.Range(), resolving
	// to the corresponding frames of region.Object() starting at
	// region.ObjectStart(). Effective permissions are
	// region.Prot() with writes forced off while region.IsCow().
	Map(region *VMRegion)
	// Unmap removes all such mappings. Idempotent.
	Unmap(region *VMRegion)
}

// MemoryManager allocates anonymous objects and can map one into a
// transient kernel view for the memcpy a CoW break performs.
type MemoryManager interface {
	AllocAnonymous(size int) (*vmobject.AnonymousVMObject, defs.Err_t)
	MapObject(obj *vmobject.AnonymousVMObject) TemporaryMapping
}

// TemporaryMapping is a transient kernel view of an object, used only to
// give VMSpace.TryPageFault a byte-addressable destination to copy into.
type TemporaryMapping interface {
	Bytes() []byte
	Unmap()
}
