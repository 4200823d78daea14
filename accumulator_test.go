package vgrid

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func resolvedPage(local, pageSize, startPage int) pageEvent[int] {
	items := make([]int, pageSize)
	for i := range items {
		items[i] = (startPage+local)*pageSize + i
	}
	return pageEvent[int]{local: local, items: items}
}

func placeholderPage(local, pageSize int) pageEvent[int] {
	return pageEvent[int]{local: local, items: make([]int, pageSize), placeholder: true}
}

func TestAccumulatorSplice(t *testing.T) {
	acc := newAccumulator[int](2, 4) // origin at absolute index 8

	acc.apply(resolvedPage(1, 4, 2)) // absolute 12..15 arrives first
	acc.apply(resolvedPage(0, 4, 2)) // absolute 8..11 fills the gap

	if len(acc.items) != 8 {
		t.Fatalf("accumulated length = %d, want 8", len(acc.items))
	}
	for i, it := range acc.items {
		if it.Pending {
			t.Errorf("item %d still pending", i)
		}
		if it.Index != 8+i || it.Value != 8+i {
			t.Errorf("item %d = {Index:%d Value:%d}, want %d", i, it.Index, it.Value, 8+i)
		}
	}
}

func TestAccumulatorPlaceholderThenResolve(t *testing.T) {
	acc := newAccumulator[int](0, 3)

	acc.apply(placeholderPage(0, 3))
	for i, it := range acc.items {
		if !it.Pending {
			t.Errorf("item %d should be pending after placeholder", i)
		}
	}

	acc.apply(resolvedPage(0, 3, 0))
	for i, it := range acc.items {
		if it.Pending {
			t.Errorf("item %d should be resolved", i)
		}
		if it.Value != i {
			t.Errorf("item %d = %d, want %d", i, it.Value, i)
		}
	}
}

// TestAccumulatorOrderIndependence verifies that any arrival permutation of
// page resolutions produces the same final state.
func TestAccumulatorOrderIndependence(t *testing.T) {
	const (
		startPage = 3
		pageSize  = 5
		pages     = 6
	)

	reference := newAccumulator[int](startPage, pageSize)
	for local := 0; local < pages; local++ {
		reference.apply(placeholderPage(local, pageSize))
	}
	for local := 0; local < pages; local++ {
		reference.apply(resolvedPage(local, pageSize, startPage))
	}

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		acc := newAccumulator[int](startPage, pageSize)
		for local := 0; local < pages; local++ {
			acc.apply(placeholderPage(local, pageSize))
		}
		for _, local := range rng.Perm(pages) {
			acc.apply(resolvedPage(local, pageSize, startPage))
		}
		if diff := cmp.Diff(reference.items, acc.items); diff != "" {
			t.Fatalf("trial %d: state differs from reference (-ref +got):\n%s", trial, diff)
		}
	}
}

func TestAccumulatorShortLastPage(t *testing.T) {
	acc := newAccumulator[int](0, 4)
	acc.apply(pageEvent[int]{local: 0, items: []int{0, 1}}) // collection ends early

	if len(acc.items) != 2 {
		t.Fatalf("accumulated length = %d, want 2", len(acc.items))
	}
}

func TestSliceBufferPadsPending(t *testing.T) {
	acc := newAccumulator[int](0, 4)
	acc.apply(resolvedPage(0, 4, 0)) // only indices 0..3 resolved

	g := ResolveGeometry(MeasurementSample{
		Columns: 2, RowGap: 0, ColGap: 0, ProbeWidth: 100, ProbeHeight: 50,
	})
	w := ComputeWindow(0, 50, g, 100, 4)
	if w.Offset != 0 || w.Length < 6 {
		t.Fatalf("unexpected test window %+v", w)
	}

	items := sliceBuffer(acc, w)
	if len(items) != w.Length {
		t.Fatalf("slice length = %d, want %d", len(items), w.Length)
	}
	for i, it := range items {
		if it.Index != w.Offset+i {
			t.Errorf("item %d index = %d, want %d", i, it.Index, w.Offset+i)
		}
		if i < 4 && it.Pending {
			t.Errorf("item %d should be resolved", i)
		}
		if i >= 4 && !it.Pending {
			t.Errorf("item %d should be a pending pad", i)
		}
	}
}

func TestSliceBufferOffsetWithinQuery(t *testing.T) {
	acc := newAccumulator[int](1, 4) // query origin at absolute index 4
	acc.apply(resolvedPage(0, 4, 1))
	acc.apply(resolvedPage(1, 4, 1))

	w := Window{Offset: 6, Length: 4, StartPage: 1, EndPage: 3, PageSize: 4}
	items := sliceBuffer(acc, w)

	want := []Item[int]{
		{Index: 6, Value: 6},
		{Index: 7, Value: 7},
		{Index: 8, Value: 8},
		{Index: 9, Value: 9},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("slice mismatch (-want +got):\n%s", diff)
	}
}
