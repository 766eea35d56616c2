// Package native implements the host side of values crossing the bridge:
// consumable arrays and maps, their conversion from and to the dynamic value
// tree, the type tags the host reads them back with, and a key iterator over
// maps.
//
// An Array or Map owns exactly one value. Pushing or putting one container
// into another moves the owned value and leaves the source consumed; every
// later use of the source fails with ErrAlreadyConsumed. Containers are not
// safe for concurrent use: build and consume them on one goroutine before
// handing them across.
package native
