package raster

import (
	"fmt"
	"math"
)

// Grid holds pixel-centre coordinates: X ascending, Y descending, both
// spaced by Resolution.
type Grid struct {
	X          []float64
	Y          []float64
	Resolution float64
}

// NewGrid builds the coordinates of a width x height grid whose
// top-left pixel corner is (x0, y0).
func NewGrid(x0, y0, res float64, width, height int) *Grid {
	g := &Grid{X: make([]float64, width), Y: make([]float64, height), Resolution: res}
	for i := range g.X {
		g.X[i] = x0 + res/2 + float64(i)*res
	}
	for j := range g.Y {
		g.Y[j] = y0 - res/2 - float64(j)*res
	}
	return g
}

// GridForWindow lays a res spaced grid over the projected extent of w.
func GridForWindow(w Window, res float64) (*Grid, error) {
	if res <= 0 {
		return nil, fmt.Errorf("invalid grid resolution %v", res)
	}
	width := int(math.Round(math.Abs(w.X1-w.X0) / res))
	height := int(math.Round(math.Abs(w.Y0-w.Y1) / res))
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("window %v is smaller than one %v pixel", w.Extent(), res)
	}
	return NewGrid(w.X0, w.Y0, res, width, height), nil
}

func (g *Grid) Width() int  { return len(g.X) }
func (g *Grid) Height() int { return len(g.Y) }

// Extent is the envelope of the pixel centres.
func (g *Grid) Extent() BBox {
	if len(g.X) == 0 || len(g.Y) == 0 {
		return BBox{MinX: 1, MaxX: 0, MinY: 1, MaxY: 0}
	}
	return BBox{MinX: g.X[0], MaxX: g.X[len(g.X)-1], MinY: g.Y[len(g.Y)-1], MaxY: g.Y[0]}
}

// Origin is the top-left pixel corner.
func (g *Grid) Origin() (float64, float64) {
	return g.X[0] - g.Resolution/2, g.Y[0] + g.Resolution/2
}

// Equal compares coordinates within a small fraction of a pixel.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if len(g.X) != len(o.X) || len(g.Y) != len(o.Y) || !SameResolution(g.Resolution, o.Resolution) {
		return false
	}
	tol := g.Resolution * 1e-6
	for i := range g.X {
		if math.Abs(g.X[i]-o.X[i]) > tol {
			return false
		}
	}
	for j := range g.Y {
		if math.Abs(g.Y[j]-o.Y[j]) > tol {
			return false
		}
	}
	return true
}

// Select returns the index ranges [i0, i1) and [j0, j1) of the pixel
// centres falling inside e.
func (g *Grid) Select(e BBox) (i0, i1, j0, j1 int) {
	tol := g.Resolution * 1e-6
	i0, i1 = len(g.X), 0
	for i, x := range g.X {
		if x >= e.MinX-tol && x <= e.MaxX+tol {
			if i < i0 {
				i0 = i
			}
			i1 = i + 1
		}
	}
	j0, j1 = len(g.Y), 0
	for j, y := range g.Y {
		if y >= e.MinY-tol && y <= e.MaxY+tol {
			if j < j0 {
				j0 = j
			}
			j1 = j + 1
		}
	}
	if i1 < i0 {
		i0, i1 = 0, 0
	}
	if j1 < j0 {
		j0, j1 = 0, 0
	}
	return
}

// Sub returns the grid restricted to columns [i0, i1) and rows [j0, j1).
func (g *Grid) Sub(i0, i1, j0, j1 int) *Grid {
	out := &Grid{Resolution: g.Resolution}
	out.X = append([]float64(nil), g.X[i0:i1]...)
	out.Y = append([]float64(nil), g.Y[j0:j1]...)
	return out
}

// SameResolution compares two resolutions with a relative tolerance.
func SameResolution(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}
