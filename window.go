package vgrid

// Window is the buffered absolute-index range that must be materialized for
// rendering, including margin beyond the literally visible viewport, plus
// the page span that covers it. A Window is recomputed wholesale on every
// geometry or scroll change, never adjusted incrementally.
//
// Usage:
//
//	w := ComputeWindow(scrollTop, viewportHeight, geom, totalCount, pageSize)
//	for _, page := range w.Pages() {
//	    // fetch page of size w.PageSize
//	}
type Window struct {
	Offset int // first buffered absolute index (inclusive)
	Length int // number of buffered indices

	// Visible sub-range (without margin), kept for diagnostics and tests.
	VisibleOffset int
	VisibleLength int

	StartPage int // first page covering the buffered range (inclusive)
	EndPage   int // last page covering the buffered range (exclusive)
	PageSize  int

	Geometry Geometry // the geometry this window was computed from
}

// ComputeWindow maps the viewport onto a buffered index range.
//
// scrollTop is the distance of the viewport top above the grid origin
// (clamped to >= 0). The buffered range is twice the visible range, shifted
// back by half a visible length, so the viewport content sits roughly in the
// middle third. The result is pure and deterministic for a given input
// tuple; no cached state is consulted.
//
// An invalid geometry, a non-positive page size, or an empty collection
// yields an empty window (Length 0, no pages).
func ComputeWindow(scrollTop, viewportHeight float32, g Geometry, totalCount, pageSize int) Window {
	w := Window{PageSize: pageSize, Geometry: g}
	if !g.Valid() || pageSize <= 0 || totalCount <= 0 {
		return w
	}
	scrollTop = maxf(scrollTop, 0)

	// Rows that intersect the viewport, +1 for partial-row overscroll.
	rowsInView := int(ceilf((viewportHeight+g.RowGap)/g.ItemHeight)) + 1
	w.VisibleLength = rowsInView * g.Columns

	rowsBefore := int((scrollTop + g.RowGap) / g.ItemHeight)
	w.VisibleOffset = rowsBefore * g.Columns

	// Symmetric margin: half a visible length before, the rest after.
	w.Offset = w.VisibleOffset - w.VisibleLength/2
	if w.Offset < 0 {
		w.Offset = 0
	}
	w.Length = w.VisibleLength * 2

	// Soft ceiling derived from the total count.
	if w.Offset > totalCount {
		w.Offset = totalCount
	}
	if w.Offset+w.Length > totalCount {
		w.Length = totalCount - w.Offset
	}

	w.StartPage = w.Offset / pageSize
	w.EndPage = ceilDiv(w.Offset+w.Length, pageSize)
	return w
}

// IsEmpty reports whether the window materializes no items.
func (w Window) IsEmpty() bool {
	return w.Length <= 0
}

// PageCount returns the number of pages covering the buffered range.
func (w Window) PageCount() int {
	if w.IsEmpty() {
		return 0
	}
	return w.EndPage - w.StartPage
}

// Pages returns the page numbers covering the buffered range, in order.
func (w Window) Pages() []int {
	if w.IsEmpty() {
		return nil
	}
	pages := make([]int, 0, w.EndPage-w.StartPage)
	for p := w.StartPage; p < w.EndPage; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Contains reports whether the absolute index falls inside the buffered
// range.
func (w Window) Contains(index int) bool {
	return index >= w.Offset && index < w.Offset+w.Length
}

// Equal reports whether two windows materialize the same range from the
// same geometry. The engine skips requerying when the recomputed window
// equals the active one.
func (w Window) Equal(other Window) bool {
	return w.Offset == other.Offset &&
		w.Length == other.Length &&
		w.StartPage == other.StartPage &&
		w.EndPage == other.EndPage &&
		w.PageSize == other.PageSize &&
		w.Geometry == other.Geometry
}

// ceilf returns the smallest integer value >= v, as a float32.
// Inputs here are small non-negative pixel counts, well inside exact int
// range.
func ceilf(v float32) float32 {
	i := float32(int(v))
	if v > i {
		return i + 1
	}
	return i
}
