package pmm

import "testing"

func TestAllocZeroed(t *testing.T) {
	pool := NewPool(0)
	f, ok := pool.Alloc()
	if !ok {
		t.Fatal("alloc failed with no limit")
	}
	for i, b := range f {
		if b != 0 {
			t.Fatalf("frame not zeroed at offset %d", i)
		}
	}
}

func TestAllocRespectsLimit(t *testing.T) {
	pool := NewPool(2)
	if _, ok := pool.Alloc(); !ok {
		t.Fatal("first alloc should succeed")
	}
	if _, ok := pool.Alloc(); !ok {
		t.Fatal("second alloc should succeed")
	}
	if _, ok := pool.Alloc(); ok {
		t.Fatal("third alloc should fail once limit is reached")
	}
}

func TestRefupRefdown(t *testing.T) {
	pool := NewPool(0)
	f, _ := pool.Alloc()
	if got := pool.Refcnt(f); got != 1 {
		t.Fatalf("refcnt after alloc = %d, want 1", got)
	}
	pool.Refup(f)
	if got := pool.Refcnt(f); got != 2 {
		t.Fatalf("refcnt after refup = %d, want 2", got)
	}
	if freed := pool.Refdown(f); freed {
		t.Fatal("refdown from 2 should not report freed")
	}
	if freed := pool.Refdown(f); !freed {
		t.Fatal("refdown from 1 should report freed")
	}
	if got := pool.Refcnt(f); got != 0 {
		t.Fatalf("refcnt after release = %d, want 0 (unknown frame)", got)
	}
}

func TestAllocAfterFreeReusesCapacity(t *testing.T) {
	pool := NewPool(1)
	f, _ := pool.Alloc()
	if _, ok := pool.Alloc(); ok {
		t.Fatal("pool should be exhausted at limit 1")
	}
	pool.Refdown(f)
	if _, ok := pool.Alloc(); !ok {
		t.Fatal("alloc should succeed again once a frame is released")
	}
}

func TestRefdownUnknownFramePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on refdown of unknown frame")
		}
	}()
	pool := NewPool(0)
	var stray Frame = new([PageSize]byte)
	pool.Refdown(stray)
}
