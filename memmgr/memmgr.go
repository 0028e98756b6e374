// Package memmgr is a software-only reference implementation of
// vmspace.MemoryManager: it allocates anonymous objects out of a pmm.Pool
// and gives VMSpace.TryPageFault a byte-addressable scratch buffer to
// copy a CoW break's new content into.
//
// A real kernel's MemoryManager would instead carve the mapping out of
// its own kernel address space and return a pointer straight into it;
// this one has no such space to carve from, so TemporaryMapping's Unmap
// writes the scratch buffer back into the object's frames itself.
package memmgr

import (
	"hobbyvm/defs"
	"hobbyvm/pmm"
	"hobbyvm/vmobject"
	"hobbyvm/vmspace"
)

// Manager wraps a pmm.Pool to satisfy vmspace.MemoryManager.
type Manager struct {
	pool *pmm.Pool
}

// New creates a Manager backed by pool.
func New(pool *pmm.Pool) *Manager {
	return &Manager{pool: pool}
}

// AllocAnonymous allocates a fresh zeroed anonymous object of size bytes.
func (m *Manager) AllocAnonymous(size int) (*vmobject.AnonymousVMObject, defs.Err_t) {
	return vmobject.Alloc(m.pool, size)
}

// MapObject returns a transient view of obj for TryPageFault's copy.
func (m *Manager) MapObject(obj *vmobject.AnonymousVMObject) vmspace.TemporaryMapping {
	return &Mapping{obj: obj, buf: make([]byte, obj.Size())}
}

// Mapping is the software stand-in for a transient kernel mapping: a
// scratch buffer that Unmap flushes back into the object's real frames.
type Mapping struct {
	obj *vmobject.AnonymousVMObject
	buf []byte
}

// Bytes returns the scratch buffer, initially zeroed, the caller should
// fill with the new content.
func (mp *Mapping) Bytes() []byte { return mp.buf }

// Unmap writes the scratch buffer into the object's frames. Idempotent
// after the first call only in the sense that repeated calls simply
// rewrite the same content; it does not invalidate Bytes().
func (mp *Mapping) Unmap() {
	mp.obj.WriteAll(mp.buf)
}
