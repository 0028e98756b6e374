package memmgr

import (
	"testing"

	"hobbyvm/pmm"
)

func TestAllocAnonymousWiresThroughThePool(t *testing.T) {
	pool := pmm.NewPool(0)
	m := New(pool)
	obj, err := m.AllocAnonymous(2 * pmm.PageSize)
	if !err.Ok() {
		t.Fatalf("alloc: %v", err)
	}
	if obj.Size() != 2*pmm.PageSize {
		t.Fatalf("size = %d, want %d", obj.Size(), 2*pmm.PageSize)
	}
}

func TestMapObjectUnmapWritesBackToFrames(t *testing.T) {
	pool := pmm.NewPool(0)
	m := New(pool)
	obj, _ := m.AllocAnonymous(pmm.PageSize)

	mapping := m.MapObject(obj)
	buf := mapping.Bytes()
	for i := range buf {
		buf[i] = 0x42
	}
	mapping.Unmap()

	readBack := make([]byte, obj.Size())
	obj.ReadAll(readBack)
	for i, b := range readBack {
		if b != 0x42 {
			t.Fatalf("byte %d = %#x, want 0x42", i, b)
		}
	}
}
