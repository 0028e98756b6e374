package vmspace

import "hobbyvm/vmobject"

// VMRegion is a single mapping of a (sub-)range of a VMObject into
// exactly one VMSpace at a specific virtual range with a protection set.
// It is constructed only by VMSpace.MapObject and VMSpace.Fork.
type VMRegion struct {
	object      vmobject.VMObject
	space       *VMSpace // non-owning; nil once unmapped
	rng         VirtualRange
	objectStart int
	prot        VMProt
}

// Object returns the VMObject this region maps.
func (r *VMRegion) Object() vmobject.VMObject { return r.object }

// Range returns the region's virtual range within its VMSpace.
func (r *VMRegion) Range() VirtualRange { return r.rng }

// ObjectStart returns the byte offset into Object() this region begins
// at.
func (r *VMRegion) ObjectStart() int { return r.objectStart }

// Prot returns the region's current protection, including its live CoW
// bit.
func (r *VMRegion) Prot() VMProt { return r.prot }

// IsCow reports whether writes through this mapping currently trap.
func (r *VMRegion) IsCow() bool { return r.prot.Cow }

// Start returns the region's first virtual address.
func (r *VMRegion) Start() VA { return r.rng.Start }

// End returns the region's exclusive end address.
func (r *VMRegion) End() VA { return r.rng.End() }

// Size returns the region's size in bytes.
func (r *VMRegion) Size() uintptr { return r.rng.Size }

// setCow sets the region's CoW bit and reinstalls the hardware mapping,
// so that writes trap while it is set and proceed once it is cleared.
// Callers must hold r.space.mu.
func (r *VMRegion) setCow(b bool) {
	r.prot.Cow = b
	if r.space != nil {
		r.space.pageDir.Map(r)
	}
}
