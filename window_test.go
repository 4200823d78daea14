package vgrid_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-theft-auto/vgrid"
)

// testGeometry returns the geometry used throughout the windowing tests:
// 4 columns, 110px item rows (100 + 10 gap), 180px item columns.
func testGeometry() vgrid.Geometry {
	return vgrid.ResolveGeometry(vgrid.MeasurementSample{
		Columns:     4,
		RowGap:      10,
		ColGap:      10,
		ProbeWidth:  170,
		ProbeHeight: 100,
	})
}

// TestComputeWindowWorkedExample pins the reference calculation:
// pageSize=20, columns=4, itemHeight=110, rowGap=10, scrollTop=220,
// viewport=500.
func TestComputeWindowWorkedExample(t *testing.T) {
	w := vgrid.ComputeWindow(220, 500, testGeometry(), 1000, 20)

	if w.VisibleOffset != 8 {
		t.Errorf("visible offset = %d, want 8", w.VisibleOffset)
	}
	if w.VisibleLength != 24 {
		t.Errorf("visible length = %d, want 24", w.VisibleLength)
	}
	if w.Offset != 0 {
		t.Errorf("buffered offset = %d, want 0", w.Offset)
	}
	if w.Length != 48 {
		t.Errorf("buffered length = %d, want 48", w.Length)
	}
	if w.StartPage != 0 || w.EndPage != 3 {
		t.Errorf("page span = [%d,%d), want [0,3)", w.StartPage, w.EndPage)
	}
	if diff := cmp.Diff([]int{0, 1, 2}, w.Pages()); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
}

// TestComputeWindowRangeCorrectness checks that for a sweep of scroll
// positions the buffered range always covers the visible range plus margin.
func TestComputeWindowRangeCorrectness(t *testing.T) {
	g := testGeometry()
	for scroll := float32(0); scroll < 5000; scroll += 37 {
		for _, viewport := range []float32{120, 500, 1080} {
			w := vgrid.ComputeWindow(scroll, viewport, g, 1<<20, 20)

			if w.Offset < 0 {
				t.Fatalf("scroll %v viewport %v: negative offset %d", scroll, viewport, w.Offset)
			}
			if w.Offset > w.VisibleOffset {
				t.Fatalf("scroll %v viewport %v: offset %d exceeds visible offset %d",
					scroll, viewport, w.Offset, w.VisibleOffset)
			}
			if w.Offset+w.Length < w.VisibleOffset+w.VisibleLength {
				t.Fatalf("scroll %v viewport %v: window [%d,%d) does not cover visible [%d,%d)",
					scroll, viewport, w.Offset, w.Offset+w.Length,
					w.VisibleOffset, w.VisibleOffset+w.VisibleLength)
			}
		}
	}
}

// TestComputeWindowPageCoverage checks that every buffered index falls
// inside the page span.
func TestComputeWindowPageCoverage(t *testing.T) {
	g := testGeometry()
	for scroll := float32(0); scroll < 5000; scroll += 53 {
		for _, pageSize := range []int{7, 20, 64} {
			w := vgrid.ComputeWindow(scroll, 700, g, 1<<20, pageSize)
			lo := w.StartPage * pageSize
			hi := w.EndPage * pageSize
			if w.Offset < lo || w.Offset+w.Length > hi {
				t.Fatalf("scroll %v pageSize %d: window [%d,%d) outside pages [%d,%d)",
					scroll, pageSize, w.Offset, w.Offset+w.Length, lo, hi)
			}
		}
	}
}

func TestComputeWindowClampsToTotal(t *testing.T) {
	w := vgrid.ComputeWindow(0, 500, testGeometry(), 10, 20)
	if w.Offset+w.Length > 10 {
		t.Errorf("window [%d,%d) exceeds total count 10", w.Offset, w.Offset+w.Length)
	}
	if w.EndPage != 1 {
		t.Errorf("end page = %d, want 1", w.EndPage)
	}
}

func TestComputeWindowNegativeScrollClamped(t *testing.T) {
	g := testGeometry()
	got := vgrid.ComputeWindow(-300, 500, g, 1000, 20)
	want := vgrid.ComputeWindow(0, 500, g, 1000, 20)
	if !got.Equal(want) {
		t.Errorf("negative scroll window %+v differs from zero scroll %+v", got, want)
	}
}

func TestComputeWindowEmptyCases(t *testing.T) {
	g := testGeometry()

	if w := vgrid.ComputeWindow(0, 500, vgrid.Geometry{}, 1000, 20); !w.IsEmpty() {
		t.Error("invalid geometry must yield an empty window")
	}
	if w := vgrid.ComputeWindow(0, 500, g, 0, 20); !w.IsEmpty() {
		t.Error("zero total count must yield an empty window")
	}
	if w := vgrid.ComputeWindow(0, 500, g, 1000, 0); !w.IsEmpty() {
		t.Error("zero page size must yield an empty window")
	}
	if pages := vgrid.ComputeWindow(0, 500, vgrid.Geometry{}, 1000, 20).Pages(); pages != nil {
		t.Errorf("empty window pages = %v, want nil", pages)
	}
}

func TestWindowContains(t *testing.T) {
	w := vgrid.ComputeWindow(220, 500, testGeometry(), 1000, 20)
	if !w.Contains(w.Offset) || !w.Contains(w.Offset+w.Length-1) {
		t.Error("window must contain its own bounds")
	}
	if w.Contains(w.Offset + w.Length) {
		t.Error("window must not contain its exclusive end")
	}
	if w.Contains(-1) {
		t.Error("window must not contain negative indices")
	}
}

func TestWindowEqual(t *testing.T) {
	g := testGeometry()
	a := vgrid.ComputeWindow(220, 500, g, 1000, 20)
	b := vgrid.ComputeWindow(225, 500, g, 1000, 20) // same row, same window
	c := vgrid.ComputeWindow(1200, 500, g, 1000, 20)

	if !a.Equal(b) {
		t.Errorf("windows for scrolls within one row should be equal: %+v vs %+v", a, b)
	}
	if a.Equal(c) {
		t.Error("windows a full viewport apart should differ")
	}
}
