package processor

import (
	"fmt"
	"sort"
	"time"

	"github.com/nci/gcube/raster"
)

// Variable is one named layer of a cube.  Data holds one row major
// height x width slice per time step.
type Variable struct {
	Name        string
	Data        [][]float32
	Categorical bool
	Attrs       map[string]string
}

// CompositeProduct is a time indexed stack of variables sharing one
// coordinate grid and CRS.
type CompositeProduct struct {
	Name  string
	CRS   string
	Grid  *raster.Grid
	Times []time.Time
	Vars  []*Variable
	Attrs map[string]string
	// Metadata holds the source product's own metadata items.
	Metadata map[string]string
}

func (p *CompositeProduct) Width() int  { return p.Grid.Width() }
func (p *CompositeProduct) Height() int { return p.Grid.Height() }

func (p *CompositeProduct) Var(name string) (*Variable, bool) {
	for _, v := range p.Vars {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// VarNames lists the variables in storage order.
func (p *CompositeProduct) VarNames() []string {
	names := make([]string, len(p.Vars))
	for i, v := range p.Vars {
		names[i] = v.Name
	}
	return names
}

// Extent is the envelope of the pixel centres.
func (p *CompositeProduct) Extent() raster.BBox {
	return p.Grid.Extent()
}

// Check verifies that every slice matches the grid and time axis.
func (p *CompositeProduct) Check() error {
	if p.Grid == nil {
		return fmt.Errorf("product %s has no grid", p.Name)
	}
	n := p.Width() * p.Height()
	for _, v := range p.Vars {
		if len(v.Data) != len(p.Times) {
			return fmt.Errorf("variable %s has %d time steps, expected %d", v.Name, len(v.Data), len(p.Times))
		}
		for _, d := range v.Data {
			if len(d) != n {
				return fmt.Errorf("variable %s has %d pixels, expected %dx%d", v.Name, len(d), p.Width(), p.Height())
			}
		}
	}
	return nil
}

// clip restricts the product to columns [i0, i1) and rows [j0, j1).
func (p *CompositeProduct) clip(i0, i1, j0, j1 int) {
	if i0 == 0 && j0 == 0 && i1 == p.Width() && j1 == p.Height() {
		return
	}
	width := p.Width()
	for _, v := range p.Vars {
		for t, d := range v.Data {
			v.Data[t] = clipSlice(d, width, i0, i1, j0, j1)
		}
	}
	p.Grid = p.Grid.Sub(i0, i1, j0, j1)
}

func clipSlice(d []float32, width, i0, i1, j0, j1 int) []float32 {
	out := make([]float32, 0, (i1-i0)*(j1-j0))
	for j := j0; j < j1; j++ {
		out = append(out, d[j*width+i0:j*width+i1]...)
	}
	return out
}

func copyAttrs(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the product.
func (p *CompositeProduct) Clone() *CompositeProduct {
	c := &CompositeProduct{
		Name:     p.Name,
		CRS:      p.CRS,
		Grid:     p.Grid.Sub(0, p.Grid.Width(), 0, p.Grid.Height()),
		Times:    append([]time.Time(nil), p.Times...),
		Attrs:    copyAttrs(p.Attrs),
		Metadata: copyAttrs(p.Metadata),
	}
	for _, v := range p.Vars {
		nv := &Variable{Name: v.Name, Categorical: v.Categorical, Attrs: copyAttrs(v.Attrs)}
		for _, d := range v.Data {
			nv.Data = append(nv.Data, append([]float32(nil), d...))
		}
		c.Vars = append(c.Vars, nv)
	}
	return c
}

// SortedAttrKeys lists attribute names in a stable order for reports.
func SortedAttrKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
