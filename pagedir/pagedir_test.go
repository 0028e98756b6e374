package pagedir

import (
	"testing"

	"hobbyvm/memmgr"
	"hobbyvm/pmm"
	"hobbyvm/vmobject"
	"hobbyvm/vmspace"
)

func TestMapInstallsEffectiveProtection(t *testing.T) {
	pool := pmm.NewPool(0)
	mm := memmgr.New(pool)
	pd := New()
	space := vmspace.New(0x1000, 2*vmspace.PageSize, pd, mm)

	obj, err := vmobject.Alloc(pool, 2*vmspace.PageSize)
	if !err.Ok() {
		t.Fatalf("alloc: %v", err)
	}
	region, err := space.MapObject(obj, vmspace.DefaultProt, vmspace.VirtualRange{}, 0)
	if !err.Ok() {
		t.Fatalf("map: %v", err)
	}

	if pd.Count() != 2 {
		t.Fatalf("mapped page count = %d, want 2", pd.Count())
	}
	prot, ok := pd.Lookup(region.Start())
	if !ok {
		t.Fatal("expected an entry at region start")
	}
	if !prot.Write {
		t.Fatal("a non-CoW writable region should map writable")
	}
}

func TestUnmapRemovesEntries(t *testing.T) {
	pool := pmm.NewPool(0)
	mm := memmgr.New(pool)
	pd := New()
	space := vmspace.New(0x1000, 2*vmspace.PageSize, pd, mm)

	obj, _ := vmobject.Alloc(pool, 2*vmspace.PageSize)
	region, err := space.MapObject(obj, vmspace.DefaultProt, vmspace.VirtualRange{}, 0)
	if !err.Ok() {
		t.Fatalf("map: %v", err)
	}
	if err := space.UnmapRegion(region); !err.Ok() {
		t.Fatalf("unmap: %v", err)
	}
	if pd.Count() != 0 {
		t.Fatalf("mapped page count after unmap = %d, want 0", pd.Count())
	}
}

func TestCowMappingForcesWriteOff(t *testing.T) {
	pool := pmm.NewPool(0)
	mm := memmgr.New(pool)
	pd := New()
	space := vmspace.New(0x1000, 2*vmspace.PageSize, pd, mm)

	obj, _ := vmobject.Alloc(pool, 2*vmspace.PageSize)
	region, err := space.MapObject(obj, vmspace.DefaultProt, vmspace.VirtualRange{}, 0)
	if !err.Ok() {
		t.Fatalf("map: %v", err)
	}

	childPD := New()
	_, regions := space.Fork(childPD)
	childRegion := regions[0]

	prot, ok := childPD.Lookup(childRegion.Start())
	if !ok {
		t.Fatal("expected an entry for the child mapping")
	}
	if prot.Write {
		t.Fatal("a CoW mapping must install as read-only")
	}

	parentProt, ok := pd.Lookup(region.Start())
	if !ok {
		t.Fatal("expected an entry for the parent mapping")
	}
	if parentProt.Write {
		t.Fatal("the parent's mapping, re-flagged CoW on fork, must be read-only")
	}
}
