// Command vmsim wires the vm subsystem together end to end: it maps an
// anonymous object, forks the space, breaks copy-on-write by faulting a
// write in the child, and reports what each side sees afterward.
package main

import (
	"fmt"
	"log"

	"hobbyvm/memmgr"
	"hobbyvm/pagedir"
	"hobbyvm/pmm"
	"hobbyvm/vmobject"
	"hobbyvm/vmspace"
)

func main() {
	pool := pmm.NewPool(0)
	mm := memmgr.New(pool)
	pd := pagedir.New()

	space := vmspace.New(0x1000, 16*vmspace.PageSize, pd, mm)

	obj, errc := vmobject.Alloc(pool, 4*vmspace.PageSize)
	if !errc.Ok() {
		log.Fatalf("alloc object: %v", errc)
	}

	region, errc := space.MapObject(obj, vmspace.DefaultProt, vmspace.VirtualRange{}, 0)
	if !errc.Ok() {
		log.Fatalf("map object: %v", errc)
	}
	fmt.Printf("mapped object at %#x, size %d\n", region.Start(), region.Size())

	childPD := pagedir.New()
	child, childRegions := space.Fork(childPD)
	fmt.Printf("forked: parent cow=%v, child regions=%d\n", region.IsCow(), len(childRegions))

	childRegion := childRegions[0]
	if err := child.TryPageFault(childRegion.Start()); !err.Ok() {
		log.Fatalf("page fault: %v", err)
	}
	fmt.Printf("after cow break: child cow=%v, same object=%v\n",
		childRegion.IsCow(), childRegion.Object() == region.Object())
}
