package vgrid

// MeasurementSample is a raw geometry reading supplied by the measurement
// collaborator (whatever owns the real viewport: a window system, a terminal,
// a DOM). Values are taken as-is from a probe item's box; the resolver turns
// them into a usable Geometry.
type MeasurementSample struct {
	Columns     int     // resolved grid column count (0 if undetermined)
	RowGap      float32 // vertical gap between rows
	ColGap      float32 // horizontal gap between columns
	ProbeWidth  float32 // probe item width, excluding gap (0 if unmeasured)
	ProbeHeight float32 // probe item height, excluding gap (0 if unmeasured)
}

// Geometry is an immutable snapshot of the grid's measurements.
// ItemWidth and ItemHeight include their gap, so an item at absolute index i
// sits at (i%Columns)*ItemWidth, (i/Columns)*ItemHeight.
type Geometry struct {
	Columns    int
	RowGap     float32
	ColGap     float32
	ItemWidth  float32 // probe width + ColGap
	ItemHeight float32 // probe height + RowGap
}

// ResolveGeometry converts a raw measurement sample into a Geometry.
// It fails softly: an undetermined column count resolves to 1 column and
// negative gaps resolve to 0. An unmeasured probe dimension stays 0, which
// makes the geometry invalid; callers must treat the window as empty until a
// valid measurement arrives (never divide by an item dimension without
// checking Valid).
func ResolveGeometry(s MeasurementSample) Geometry {
	g := Geometry{
		Columns: s.Columns,
		RowGap:  maxf(s.RowGap, 0),
		ColGap:  maxf(s.ColGap, 0),
	}
	if g.Columns < 1 {
		g.Columns = 1
	}
	if s.ProbeHeight > 0 {
		g.ItemHeight = s.ProbeHeight + g.RowGap
	}
	if s.ProbeWidth > 0 {
		g.ItemWidth = s.ProbeWidth + g.ColGap
	}
	return g
}

// Valid reports whether both item dimensions have been measured.
// Windowing against an invalid geometry yields an empty window and zero
// content height rather than a division by zero.
func (g Geometry) Valid() bool {
	return g.ItemHeight > 0 && g.ItemWidth > 0 && g.Columns >= 1
}

// ItemPos returns the render position of the item at the given absolute
// index: x = (index mod columns) * itemWidth, y = (index / columns) *
// itemHeight.
func (g Geometry) ItemPos(index int) Vec2 {
	if g.Columns < 1 {
		return Vec2{}
	}
	return Vec2{
		X: float32(index%g.Columns) * g.ItemWidth,
		Y: float32(index/g.Columns) * g.ItemHeight,
	}
}

// ContentHeight returns the total pixel height of the scrollable content:
// itemHeight * ceil(totalCount/columns) - rowGap. The collaborator uses this
// to size the scroll container. Returns 0 for an invalid geometry or an
// empty collection.
func (g Geometry) ContentHeight(totalCount int) float32 {
	if !g.Valid() || totalCount <= 0 {
		return 0
	}
	rows := ceilDiv(totalCount, g.Columns)
	return maxf(g.ItemHeight*float32(rows)-g.RowGap, 0)
}
