package coltype

import "sync"

// pointerHandles assigns stable, process-local int32 identities to opaque
// values held in KindPointer columns. Go forbids reinterpreting a pointer
// as an integer safely, so the "print the pointer as a signed 32-bit
// integer" wire convention works off a handle table instead of the
// pointer's bit pattern.
var pointerHandles = struct {
	mu     sync.Mutex
	byPtr  map[any]int32
	byID   []any
	nextID int32
}{byPtr: make(map[any]int32)}

// PointerHandleOf returns the stable handle for p, assigning a new one on
// first sight. nil maps to handle 0.
func PointerHandleOf(p any) int32 {
	if p == nil {
		return 0
	}
	pointerHandles.mu.Lock()
	defer pointerHandles.mu.Unlock()
	if id, ok := pointerHandles.byPtr[p]; ok {
		return id
	}
	pointerHandles.nextID++
	id := pointerHandles.nextID
	pointerHandles.byPtr[p] = id
	pointerHandles.byID = append(pointerHandles.byID, p)
	return id
}
