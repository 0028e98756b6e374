// Package pagedir is a software reference implementation of
// vmspace.PageDirectory: it records the effective protection of every
// mapped page instead of programming real page-table entries, so tests
// and cmd/vmsim can observe what the hardware would have been told
// without needing an MMU underneath them.
package pagedir

import (
	"sync"

	"hobbyvm/vmspace"
)

// Directory tracks mappings by virtual page address.
type Directory struct {
	mu      sync.Mutex
	entries map[vmspace.VA]vmspace.VMProt
}

// New creates an empty Directory.
func New() *Directory {
	return &Directory{entries: make(map[vmspace.VA]vmspace.VMProt)}
}

// Map installs entries for every page in region's range, matching the
// region's protection with writes forced off while the region is CoW.
func (d *Directory) Map(region *vmspace.VMRegion) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prot := region.Prot()
	effective := prot
	if region.IsCow() {
		effective.Write = false
	}
	for va := region.Start(); va < region.End(); va += vmspace.PageSize {
		d.entries[va] = effective
	}
}

// Unmap removes every entry region installed.
func (d *Directory) Unmap(region *vmspace.VMRegion) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for va := region.Start(); va < region.End(); va += vmspace.PageSize {
		delete(d.entries, va)
	}
}

// Lookup reports the effective protection installed at va, if any.
func (d *Directory) Lookup(va vmspace.VA) (vmspace.VMProt, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.entries[va]
	return p, ok
}

// Count returns the number of pages currently mapped, for test assertions.
func (d *Directory) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
