// Package vgrid provides a virtualization engine for large paginated grids.
// It computes which items are visible, fetches only the backing pages, and
// maintains a minimal-churn buffer of render slots.
package vgrid

// Vec2 represents a 2D vector for positions and sizes.
type Vec2 struct {
	X, Y float32
}

// Add returns the sum of two vectors.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns the difference of two vectors.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Item is one logical collection entry addressed by its absolute index.
// Pending marks an entry whose backing page has been requested but has not
// resolved yet; Value is the zero value of T while Pending is true.
type Item[T any] struct {
	Index   int
	Value   T
	Pending bool
}

// Slot is a render-buffer entry. ID is the slot's identity: it stays the
// same across buffer updates while the slot survives or is reused for an
// entering item, so the rendering collaborator can key whatever it attached
// to the slot (a DOM node, a texture, a cached string) off ID and reuse it
// when only the slot's content changes.
//
// Published slots are frozen snapshots: the engine never writes to a Slot it
// has handed out, so reading one from any goroutine is safe.
type Slot[T any] struct {
	ID      int64
	Index   int
	Value   T
	Pending bool
	Pos     Vec2
}

// maxf returns the maximum of two float32 values.
func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

// ceilDiv returns ceil(a/b) for positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
