package vmspace

import (
	"hobbyvm/defs"
	"hobbyvm/pmm"
	"hobbyvm/vmobject"
)

// fakePageDirectory records every Map/Unmap call instead of programming
// real page-table entries, so tests can assert on hardware-mapping
// side effects without an MMU.
type fakePageDirectory struct {
	mapped map[VA]VMProt
}

func newFakePageDirectory() *fakePageDirectory {
	return &fakePageDirectory{mapped: make(map[VA]VMProt)}
}

func (d *fakePageDirectory) Map(r *VMRegion) {
	for va := r.Start(); va < r.End(); va += PageSize {
		d.mapped[va] = r.Prot()
	}
}

func (d *fakePageDirectory) Unmap(r *VMRegion) {
	for va := r.Start(); va < r.End(); va += PageSize {
		delete(d.mapped, va)
	}
}

// fakeMemoryManager wraps a pmm.Pool the same way package memmgr does,
// kept local to avoid an import cycle (memmgr imports vmspace).
type fakeMemoryManager struct {
	pool *pmm.Pool
}

func newFakeMemoryManager(pool *pmm.Pool) *fakeMemoryManager {
	return &fakeMemoryManager{pool: pool}
}

func (m *fakeMemoryManager) AllocAnonymous(size int) (*vmobject.AnonymousVMObject, defs.Err_t) {
	return vmobject.Alloc(m.pool, size)
}

func (m *fakeMemoryManager) MapObject(obj *vmobject.AnonymousVMObject) TemporaryMapping {
	return &fakeMapping{obj: obj, buf: make([]byte, obj.Size())}
}

type fakeMapping struct {
	obj *vmobject.AnonymousVMObject
	buf []byte
}

func (m *fakeMapping) Bytes() []byte { return m.buf }
func (m *fakeMapping) Unmap()        { m.obj.WriteAll(m.buf) }

func newTestSpace(size uintptr) (*VMSpace, *fakePageDirectory, *pmm.Pool) {
	pd := newFakePageDirectory()
	pool := pmm.NewPool(0)
	mm := newFakeMemoryManager(pool)
	return New(0x1000, size, pd, mm), pd, pool
}
