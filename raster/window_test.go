package raster

import (
	"math"
	"testing"
)

var utm10m = GeoTransform{300000, 10, 0, 5000000, 0, -10}

func TestResolveWindowInside(t *testing.T) {
	roi := BBox{MinX: 300105, MinY: 4999605, MaxX: 300395, MaxY: 4999895}
	w, err := ResolveWindow(utm10m, 100, 100, roi)
	if err != nil {
		t.Fatal(err)
	}
	if w.RowStart != 10 || w.ColStart != 10 || w.RowStop != 39 || w.ColStop != 39 {
		t.Errorf("unexpected window %+v", w)
	}
	if w.X0 != 300100 || w.Y0 != 4999900 || w.X1 != 300400 || w.Y1 != 4999600 {
		t.Errorf("unexpected corners %+v", w)
	}
	if w.Width() != 30 || w.Height() != 30 {
		t.Errorf("unexpected size %dx%d", w.Width(), w.Height())
	}
}

func TestResolveWindowClamped(t *testing.T) {
	roi := BBox{MinX: 299000, MinY: 4998000, MaxX: 300055, MaxY: 5001000}
	w, err := ResolveWindow(utm10m, 100, 100, roi)
	if err != nil {
		t.Fatal(err)
	}
	if w.RowStart != 0 || w.ColStart != 0 || w.RowStop != 99 || w.ColStop != 5 {
		t.Errorf("unexpected window %+v", w)
	}
	if w.RowStop > 99 || w.ColStop > 99 || w.RowStart < 0 || w.ColStart < 0 {
		t.Errorf("window escapes raster: %+v", w)
	}
}

func TestResolveWindowOutside(t *testing.T) {
	cases := []BBox{
		{MinX: 100, MinY: 100, MaxX: 200, MaxY: 200},
		{MinX: 301001, MinY: 4999000, MaxX: 302000, MaxY: 4999500},
		{MinX: 300200, MinY: 4999500, MaxX: 300100, MaxY: 4999600},
	}
	for _, roi := range cases {
		_, err := ResolveWindow(utm10m, 100, 100, roi)
		if !IsGeometryError(err) {
			t.Errorf("roi %v: expected geometry error, got %v", roi, err)
		}
	}
}

func TestFullWindow(t *testing.T) {
	w := FullWindow(utm10m, 100, 50)
	if w.Width() != 100 || w.Height() != 50 {
		t.Errorf("unexpected size %dx%d", w.Width(), w.Height())
	}
	if w.X1 != 301000 || w.Y1 != 4999500 {
		t.Errorf("unexpected corners %+v", w)
	}
}

func TestRemapWindowAcrossResolutions(t *testing.T) {
	gt60 := GeoTransform{300000, 60, 0, 5000000, 0, -60}
	anchor, err := ResolveWindow(gt60, 20, 20, BBox{MinX: 300070, MinY: 4999830, MaxX: 300170, MaxY: 4999930})
	if err != nil {
		t.Fatal(err)
	}
	if anchor.ColStart != 1 || anchor.ColStop != 2 || anchor.RowStart != 1 || anchor.RowStop != 2 {
		t.Fatalf("unexpected anchor %+v", anchor)
	}

	w, err := RemapWindow(anchor, utm10m, 120, 120)
	if err != nil {
		t.Fatal(err)
	}
	if w.ColStart != 6 || w.ColStop != 17 || w.RowStart != 6 || w.RowStop != 17 {
		t.Errorf("unexpected remapped window %+v", w)
	}
	if w.Width() != 6*anchor.Width() || w.Height() != 6*anchor.Height() {
		t.Errorf("remapped window is not six times the anchor: %dx%d", w.Width(), w.Height())
	}

	self, err := RemapWindow(anchor, gt60, 20, 20)
	if err != nil {
		t.Fatal(err)
	}
	if self.RowStart != anchor.RowStart || self.ColStop != anchor.ColStop {
		t.Errorf("remapping onto the anchor raster changed the window: %+v", self)
	}
}

func TestGeoTransformInverse(t *testing.T) {
	gt := GeoTransform{10, 2, 0.5, 20, 0.25, -3}
	inv, err := gt.Inverse()
	if err != nil {
		t.Fatal(err)
	}
	x, y := gt.Apply(7, 11)
	c, r := inv.Apply(x, y)
	if math.Abs(c-7) > 1e-9 || math.Abs(r-11) > 1e-9 {
		t.Errorf("round trip gave (%v, %v)", c, r)
	}
	if _, err := (GeoTransform{0, 1, 1, 0, 1, 1}).Inverse(); err == nil {
		t.Errorf("expected singular transform error")
	}
}

func TestParseI2M(t *testing.T) {
	gt, err := ParseI2M("20,0,0,-20,600000,5100000")
	if err != nil {
		t.Fatal(err)
	}
	want := GeoTransform{600000, 20, 0, 5100000, 0, -20}
	if gt != want {
		t.Errorf("got %v, want %v", gt, want)
	}
	if _, err := ParseI2M("1,2,3"); err == nil {
		t.Errorf("expected error on short matrix")
	}
}

func TestAnyBitSet(t *testing.T) {
	nan := float32(math.NaN())
	got, err := AnyBitSet([]float32{0, 1, 2, 4, 6, nan}, []int{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []bool{false, false, true, true, true, false}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pixel %d: got %v want %v", i, got[i], want[i])
		}
	}
}
