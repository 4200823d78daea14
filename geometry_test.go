package vgrid_test

import (
	"testing"

	"github.com/go-theft-auto/vgrid"
)

func TestResolveGeometryBasic(t *testing.T) {
	g := vgrid.ResolveGeometry(vgrid.MeasurementSample{
		Columns:     4,
		RowGap:      10,
		ColGap:      8,
		ProbeWidth:  172,
		ProbeHeight: 100,
	})

	if g.Columns != 4 {
		t.Errorf("columns = %d, want 4", g.Columns)
	}
	if g.ItemHeight != 110 {
		t.Errorf("item height = %v, want 110", g.ItemHeight)
	}
	if g.ItemWidth != 180 {
		t.Errorf("item width = %v, want 180", g.ItemWidth)
	}
	if !g.Valid() {
		t.Error("expected valid geometry")
	}
}

func TestResolveGeometryColumnFallback(t *testing.T) {
	// Undetermined columns must resolve to 1, never 0.
	g := vgrid.ResolveGeometry(vgrid.MeasurementSample{
		Columns:     0,
		ProbeWidth:  50,
		ProbeHeight: 50,
	})
	if g.Columns != 1 {
		t.Errorf("columns = %d, want 1", g.Columns)
	}
}

func TestResolveGeometryNegativeGaps(t *testing.T) {
	g := vgrid.ResolveGeometry(vgrid.MeasurementSample{
		Columns:     2,
		RowGap:      -5,
		ColGap:      -5,
		ProbeWidth:  50,
		ProbeHeight: 50,
	})
	if g.RowGap != 0 || g.ColGap != 0 {
		t.Errorf("gaps = %v/%v, want 0/0", g.RowGap, g.ColGap)
	}
	if g.ItemHeight != 50 || g.ItemWidth != 50 {
		t.Errorf("item box = %vx%v, want 50x50", g.ItemWidth, g.ItemHeight)
	}
}

func TestResolveGeometryUnmeasured(t *testing.T) {
	g := vgrid.ResolveGeometry(vgrid.MeasurementSample{Columns: 3})
	if g.Valid() {
		t.Error("unmeasured probe must yield an invalid geometry")
	}
	if h := g.ContentHeight(1000); h != 0 {
		t.Errorf("content height = %v, want 0 for invalid geometry", h)
	}
}

func TestItemPos(t *testing.T) {
	g := vgrid.ResolveGeometry(vgrid.MeasurementSample{
		Columns: 4, RowGap: 10, ColGap: 0, ProbeWidth: 180, ProbeHeight: 100,
	})

	tests := []struct {
		index int
		want  vgrid.Vec2
	}{
		{0, vgrid.Vec2{X: 0, Y: 0}},
		{3, vgrid.Vec2{X: 540, Y: 0}},
		{4, vgrid.Vec2{X: 0, Y: 110}},
		{5, vgrid.Vec2{X: 180, Y: 110}},
		{11, vgrid.Vec2{X: 540, Y: 220}},
	}
	for _, tt := range tests {
		if got := g.ItemPos(tt.index); got != tt.want {
			t.Errorf("ItemPos(%d) = %+v, want %+v", tt.index, got, tt.want)
		}
	}
}

func TestContentHeight(t *testing.T) {
	g := vgrid.ResolveGeometry(vgrid.MeasurementSample{
		Columns: 4, RowGap: 10, ProbeWidth: 180, ProbeHeight: 100,
	})

	// 10 items in 4 columns = 3 rows: 3*110 - 10 = 320.
	if h := g.ContentHeight(10); h != 320 {
		t.Errorf("ContentHeight(10) = %v, want 320", h)
	}
	// Exactly full rows.
	if h := g.ContentHeight(8); h != 210 {
		t.Errorf("ContentHeight(8) = %v, want 210", h)
	}
	if h := g.ContentHeight(0); h != 0 {
		t.Errorf("ContentHeight(0) = %v, want 0", h)
	}
}
