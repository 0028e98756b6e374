// Package vmobject implements VMObject and AnonymousVMObject: the
// backing store a VMRegion maps into a VMSpace.
package vmobject

import (
	"sync/atomic"

	"hobbyvm/defs"
	"hobbyvm/pmm"
	"hobbyvm/util"
)

// ForkAction is the policy an anonymous object applies to its live
// mappings when the containing VMSpace is forked.
type ForkAction int

const (
	// BecomeCoW re-installs every live mapping read-only in both parent
	// and child; the default for writable private anonymous memory.
	BecomeCoW ForkAction = iota
	// Share keeps parent and child mapping the same object writable,
	// for shared memory.
	Share
	// Ignore drops the mapping in the child entirely, for transient
	// kernel-thread and signal-handler stacks.
	Ignore
)

// VMObject is a contiguous, page-aligned backing store for virtual
// memory. Its size is immutable after construction.
type VMObject interface {
	Size() int
	IsAnonymous() bool
}

// AnonymousVMObject is RAM-backed storage with no external name: no
// file, no device. It owns the physical frames behind it and carries
// the fork policy on the object itself rather than on any one region,
// so that every mapping of a shared object is governed by a single
// decision.
//
// Go's garbage collector reclaims the struct itself once no VMRegion
// references it; the refcount here exists only to know when the last
// holder goes away, so the underlying frames can be returned to the
// pool. Alloc hands the caller one reference and every VMRegion bound
// to the object adds one more (see DESIGN.md, vmobject entry).
type AnonymousVMObject struct {
	pool   *pmm.Pool
	frames []pmm.Frame
	action ForkAction
	shared bool
	refs   int32
}

// Alloc allocates an anonymous object of n bytes (a multiple of
// pmm.PageSize) backed by freshly zeroed frames. It fails with
// defs.ENOMEM if the pool cannot supply enough frames, releasing any it
// had already taken.
func Alloc(pool *pmm.Pool, n int) (*AnonymousVMObject, defs.Err_t) {
	if n <= 0 || !util.Aligned(n, pmm.PageSize) {
		return nil, defs.EINVAL
	}
	count := n / pmm.PageSize
	frames := make([]pmm.Frame, 0, count)
	for i := 0; i < count; i++ {
		f, ok := pool.Alloc()
		if !ok {
			for _, done := range frames {
				pool.Refdown(done)
			}
			return nil, defs.ENOMEM
		}
		frames = append(frames, f)
	}
	return &AnonymousVMObject{pool: pool, frames: frames, action: BecomeCoW, refs: 1}, 0
}

// Size returns the object's size in bytes.
func (o *AnonymousVMObject) Size() int { return len(o.frames) * pmm.PageSize }

// IsAnonymous always returns true for AnonymousVMObject.
func (o *AnonymousVMObject) IsAnonymous() bool { return true }

// ForkAction reports the policy applied to this object's mappings on
// fork.
func (o *AnonymousVMObject) ForkAction() ForkAction { return o.action }

// SetForkAction changes the fork policy, e.g. to Share for an object
// backing shared memory, or Ignore for a transient kernel stack.
func (o *AnonymousVMObject) SetForkAction(a ForkAction) { o.action = a }

// IsShared reports whether this object is shared memory (excluded from
// VMSpace.RegularAnonymousTotal's private-memory accounting).
func (o *AnonymousVMObject) IsShared() bool { return o.shared }

// SetShared marks the object as shared memory.
func (o *AnonymousVMObject) SetShared(s bool) { o.shared = s }

// Ref increments the object's mapping refcount. Called whenever a new
// VMRegion binds to this object.
func (o *AnonymousVMObject) Ref() {
	if atomic.AddInt32(&o.refs, 1) <= 1 {
		panic("vmobject: ref from non-positive refcount")
	}
}

// Unref decrements the refcount, releasing the backing frames to the
// pool once the last reference, mapping or Alloc caller, is gone.
func (o *AnonymousVMObject) Unref() {
	c := atomic.AddInt32(&o.refs, -1)
	if c < 0 {
		panic("vmobject: negative refcount")
	}
	if c == 0 {
		for _, f := range o.frames {
			o.pool.Refdown(f)
		}
	}
}

// FrameAt returns the physical frame backing the page at byte offset
// off, which must be page-aligned and within the object.
func (o *AnonymousVMObject) FrameAt(off int) pmm.Frame {
	if !util.Aligned(off, pmm.PageSize) || off < 0 || off >= o.Size() {
		panic("vmobject: frame offset out of range")
	}
	return o.frames[off/pmm.PageSize]
}

// ReadAll copies the object's entire backing into dst, which must be at
// least Size() bytes long. Used by VMSpace.TryPageFault to read the old
// object "through its current virtual mapping": in this software
// simulation there is no separate virtual address to go through, so the
// frames are read directly.
func (o *AnonymousVMObject) ReadAll(dst []byte) {
	if len(dst) < o.Size() {
		panic("vmobject: dst too small in ReadAll")
	}
	for i, f := range o.frames {
		copy(dst[i*pmm.PageSize:], f[:])
	}
}

// WriteAll overwrites the object's entire backing from src, which must
// be at least Size() bytes long.
func (o *AnonymousVMObject) WriteAll(src []byte) {
	if len(src) < o.Size() {
		panic("vmobject: src too small in WriteAll")
	}
	for i := range o.frames {
		copy(o.frames[i][:], src[i*pmm.PageSize:])
	}
}
