package vgrid

// accumulator merges the page events of one range query into a single
// ordered sequence, keyed by absolute index.
//
// The sequence is scoped to the query: every new window starts a fresh
// accumulator aligned to its own start page, so indices line up without
// tracking a global origin. Each arriving page splices over exactly the
// sub-range it owns (remove-then-insert with equal lengths), which keeps
// alignment intact no matter the arrival order; the final merged state is
// therefore order-independent. The sequence grows to cover every index a
// page event touched and never shrinks within the query.
type accumulator[T any] struct {
	startPage int
	pageSize  int
	items     []Item[T]
}

func newAccumulator[T any](startPage, pageSize int) *accumulator[T] {
	return &accumulator[T]{startPage: startPage, pageSize: pageSize}
}

// origin returns the absolute index of the accumulator's first element.
func (a *accumulator[T]) origin() int {
	return a.startPage * a.pageSize
}

// apply splices one page event into the sequence.
func (a *accumulator[T]) apply(ev pageEvent[T]) {
	lo := ev.local * a.pageSize
	hi := lo + len(ev.items)

	// Grow with pending sentinels so the splice target exists.
	for len(a.items) < hi {
		a.items = append(a.items, Item[T]{Index: a.origin() + len(a.items), Pending: true})
	}

	for i, v := range ev.items {
		a.items[lo+i] = Item[T]{
			Index:   a.origin() + lo + i,
			Value:   v,
			Pending: ev.placeholder,
		}
	}
}

// sliceBuffer extracts exactly w.Length items at the window's buffered
// offset, padding with pending sentinels where the accumulator has not yet
// grown to cover the range. The window must belong to the same query as the
// accumulator (same start page).
func sliceBuffer[T any](a *accumulator[T], w Window) []Item[T] {
	if w.IsEmpty() {
		return nil
	}
	out := make([]Item[T], w.Length)
	base := w.Offset - a.origin()
	for i := range out {
		if j := base + i; j >= 0 && j < len(a.items) {
			out[i] = a.items[j]
		} else {
			out[i] = Item[T]{Index: w.Offset + i, Pending: true}
		}
	}
	return out
}
