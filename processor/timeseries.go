package processor

import (
	"sort"
	"time"

	"github.com/nci/gcube/raster"
)

// Stack concatenates products along time, sorted by acquisition time.
// They must share the CRS, the grid and the variables.
func Stack(products []*CompositeProduct) (*CompositeProduct, error) {
	if len(products) == 0 {
		return nil, raster.InputErrorf("no product to stack")
	}
	first := products[0]
	for _, p := range products[1:] {
		if p.CRS != first.CRS {
			return nil, raster.InputErrorf("cannot stack %s in %s with products in %s", p.Name, p.CRS, first.CRS)
		}
		if !p.Grid.Equal(first.Grid) {
			return nil, raster.InputErrorf("cannot stack %s: coordinate grids differ", p.Name)
		}
		if len(p.Vars) != len(first.Vars) {
			return nil, raster.InputErrorf("cannot stack %s: variables %v differ from %v", p.Name, p.VarNames(), first.VarNames())
		}
		for _, v := range first.Vars {
			if _, ok := p.Var(v.Name); !ok {
				return nil, raster.InputErrorf("cannot stack %s: variable %s missing", p.Name, v.Name)
			}
		}
	}

	type step struct {
		t    time.Time
		p    *CompositeProduct
		slot int
	}
	var steps []step
	for _, p := range products {
		for i, t := range p.Times {
			steps = append(steps, step{t, p, i})
		}
	}
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].t.Before(steps[j].t) })

	out := &CompositeProduct{
		Name:     first.Name,
		CRS:      first.CRS,
		Grid:     first.Grid,
		Attrs:    copyAttrs(first.Attrs),
		Metadata: copyAttrs(first.Metadata),
	}
	for _, v := range first.Vars {
		out.Vars = append(out.Vars, &Variable{Name: v.Name, Categorical: v.Categorical, Attrs: copyAttrs(v.Attrs)})
	}
	for _, s := range steps {
		out.Times = append(out.Times, s.t)
		for _, v := range out.Vars {
			src, _ := s.p.Var(v.Name)
			v.Data = append(v.Data, src.Data[s.slot])
		}
	}
	return out, nil
}

// TimeSeries groups products by name and stacks each group, in order
// of first appearance.
func TimeSeries(products []*CompositeProduct) ([]*CompositeProduct, error) {
	var names []string
	groups := make(map[string][]*CompositeProduct)
	for _, p := range products {
		if _, ok := groups[p.Name]; !ok {
			names = append(names, p.Name)
		}
		groups[p.Name] = append(groups[p.Name], p)
	}
	var out []*CompositeProduct
	for _, name := range names {
		s, err := Stack(groups[name])
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
