package vgrid

// Sink receives the engine's output: the current ordered render-slot buffer
// and the total content height the collaborator should size its scroll
// container to.
//
// Update is called from the engine's internal goroutine, so implementations
// must hand the snapshot off quickly (post a message, swap a pointer) rather
// than render inline. The slots slice and the Slot structs it points to are
// a frozen snapshot owned by the sink; the engine never writes to them after
// handing them over, so they may be read from any goroutine. Slot identity
// across updates is carried by Slot.ID, which stays the same for items that
// remain in view.
type Sink[T any] interface {
	Update(slots []*Slot[T], contentHeight float32)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc[T any] func(slots []*Slot[T], contentHeight float32)

// Update calls f(slots, contentHeight).
func (f SinkFunc[T]) Update(slots []*Slot[T], contentHeight float32) {
	f(slots, contentHeight)
}
