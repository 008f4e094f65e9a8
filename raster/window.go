package raster

import (
	"math"
)

// BBox is an axis aligned envelope in projected coordinates.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b BBox) Intersects(o BBox) bool {
	return !(b.MaxX < o.MinX || b.MinX > o.MaxX || b.MaxY < o.MinY || b.MinY > o.MaxY)
}

func (b BBox) Empty() bool {
	return b.MaxX < b.MinX || b.MaxY < b.MinY
}

// Window is a pixel rectangle with inclusive stop indices together
// with the projected corners of its outer pixel edges.  (X0, Y0) is
// the top-left corner and (X1, Y1) the bottom-right one.
type Window struct {
	RowStart, ColStart int
	RowStop, ColStop   int
	X0, Y0, X1, Y1     float64
}

func (w Window) Width() int  { return w.ColStop - w.ColStart + 1 }
func (w Window) Height() int { return w.RowStop - w.RowStart + 1 }

// Extent returns the envelope of the window's projected corners.
func (w Window) Extent() BBox {
	return BBox{
		MinX: math.Min(w.X0, w.X1), MaxX: math.Max(w.X0, w.X1),
		MinY: math.Min(w.Y0, w.Y1), MaxY: math.Max(w.Y0, w.Y1),
	}
}

// Extent returns the envelope of a width x height raster.
func Extent(gt GeoTransform, width, height int) BBox {
	return FullWindow(gt, width, height).Extent()
}

// FullWindow spans the whole raster.
func FullWindow(gt GeoTransform, width, height int) Window {
	return cornerWindow(gt, 0, 0, height-1, width-1)
}

func cornerWindow(gt GeoTransform, rowStart, colStart, rowStop, colStop int) Window {
	x0, y0 := gt.Apply(float64(colStart), float64(rowStart))
	x1, y1 := gt.Apply(float64(colStop+1), float64(rowStop+1))
	return Window{
		RowStart: rowStart, ColStart: colStart,
		RowStop: rowStop, ColStop: colStop,
		X0: x0, Y0: y0, X1: x1, Y1: y1,
	}
}

// ResolveWindow converts the envelope of a region into the pixel
// window of a width x height raster.  The top-left pixel is the one
// holding (MinX, MaxY), the bottom-right one holds (MaxX, MinY); both
// are clamped into the raster.
func ResolveWindow(gt GeoTransform, width, height int, roi BBox) (Window, error) {
	if roi.Empty() {
		return Window{}, GeometryErrorf("region envelope %v is empty", roi)
	}
	if !roi.Intersects(Extent(gt, width, height)) {
		return Window{}, GeometryErrorf("region %v is outside the raster extent %v", roi, Extent(gt, width, height))
	}

	rowStart, colStart, err := gt.Index(roi.MinX, roi.MaxY)
	if err != nil {
		return Window{}, GeometryErrorf("%v", err)
	}
	rowStop, colStop, err := gt.Index(roi.MaxX, roi.MinY)
	if err != nil {
		return Window{}, GeometryErrorf("%v", err)
	}
	rowStart, colStart = maxInt(0, rowStart), maxInt(0, colStart)
	rowStop, colStop = minInt(height-1, rowStop), minInt(width-1, colStop)

	if rowStop < rowStart || colStop < colStart || rowStart > height-1 || colStart > width-1 || rowStop < 0 || colStop < 0 {
		return Window{}, GeometryErrorf("region %v does not cover any pixel", roi)
	}
	return cornerWindow(gt, rowStart, colStart, rowStop, colStop), nil
}

// RemapWindow expresses the projected corners of an anchor window in
// the pixel space of another raster of the same product.  The stop
// indices select the last pixel starting strictly before the anchor's
// far edge, so a 60 m anchor pixel maps onto exactly six 10 m pixels.
// The returned window keeps the anchor's projected corners.
func RemapWindow(anchor Window, gt GeoTransform, width, height int) (Window, error) {
	c0, r0, err := gt.Pixel(anchor.X0, anchor.Y0)
	if err != nil {
		return Window{}, ProductErrorf("%v", err)
	}
	c1, r1, err := gt.Pixel(anchor.X1, anchor.Y1)
	if err != nil {
		return Window{}, ProductErrorf("%v", err)
	}

	rowStart := maxInt(0, int(math.Floor(r0+indexEps)))
	colStart := maxInt(0, int(math.Floor(c0+indexEps)))
	rowStop := minInt(height-1, int(math.Ceil(r1-indexEps))-1)
	colStop := minInt(width-1, int(math.Ceil(c1-indexEps))-1)

	if rowStop < rowStart || colStop < colStart {
		return Window{}, GeometryErrorf("anchor window %v falls outside the raster", anchor.Extent())
	}
	return Window{
		RowStart: rowStart, ColStart: colStart,
		RowStop: rowStop, ColStop: colStop,
		X0: anchor.X0, Y0: anchor.Y0, X1: anchor.X1, Y1: anchor.Y1,
	}, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// WindowFromIndices builds the window of the given inclusive pixel
// indices, clamped into a width x height raster.
func WindowFromIndices(gt GeoTransform, width, height, rowStart, colStart, rowStop, colStop int) (Window, error) {
	rowStart, colStart = maxInt(0, rowStart), maxInt(0, colStart)
	rowStop, colStop = minInt(height-1, rowStop), minInt(width-1, colStop)
	if rowStop < rowStart || colStop < colStart {
		return Window{}, GeometryErrorf("pixel window rows %d-%d cols %d-%d is empty", rowStart, rowStop, colStart, colStop)
	}
	return cornerWindow(gt, rowStart, colStart, rowStop, colStop), nil
}
