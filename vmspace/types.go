// Package vmspace implements VMRegion and VMSpace: the per-process range
// allocator, object-mapping layer, fork-time copy-on-write, and
// page-fault path. It is the core of this module.
package vmspace

import "hobbyvm/pmm"

// VA is a virtual address.
type VA uintptr

// VMProt is the protection descriptor carried by a VMRegion. The zero
// value is not a valid default; use DefaultProt.
type VMProt struct {
	Read    bool
	Write   bool
	Execute bool
	Cow     bool
}

// DefaultProt grants read, write and execute with CoW unset.
var DefaultProt = VMProt{Read: true, Write: true, Execute: true}

// VirtualRange is a span of virtual addresses. A zero Size at map time
// means "until the end of the object".
type VirtualRange struct {
	Start VA
	Size  uintptr
}

// End returns the exclusive end address of the range.
func (r VirtualRange) End() VA { return r.Start + VA(r.Size) }

// PageSize is re-exported from pmm so callers of this package do not
// need to import pmm just to round sizes.
const PageSize = pmm.PageSize
