package processor

import (
	"fmt"
	"math"
	"strings"

	"github.com/nci/gcube/raster"
)

type Polarity int

const (
	// Include masks flag the pixels to keep.
	Include Polarity = iota
	// Exclude masks flag the pixels to discard.
	Exclude
)

func (p Polarity) String() string {
	if p == Exclude {
		return "OUT"
	}
	return "IN"
}

// ParsePolarity accepts IN/OUT as well as include/exclude.
func ParsePolarity(s string) (Polarity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IN", "INCLUDE":
		return Include, nil
	case "OUT", "EXCLUDE":
		return Exclude, nil
	}
	return Include, raster.InputErrorf("mask type must be IN or OUT, got %q", s)
}

// MaskLayer is a single variable product used to keep or discard the
// pixels of another product.
type MaskLayer struct {
	Product  *CompositeProduct
	Polarity Polarity
}

func (m *MaskLayer) Name() string {
	if m.Product == nil || len(m.Product.Vars) == 0 {
		return ""
	}
	return m.Product.Vars[0].Name
}

// quality masks recorded under their own attribute with a version
var versionedMasks = map[string]string{
	"s2cloudless": "cloudmask",
	"waterdetect": "watermask",
}

// IntersectExtents returns the envelope shared by all extents.
func IntersectExtents(extents ...raster.BBox) (raster.BBox, error) {
	if len(extents) == 0 {
		return raster.BBox{}, fmt.Errorf("no extent to intersect")
	}
	out := extents[0]
	for _, e := range extents[1:] {
		out.MinX = math.Max(out.MinX, e.MinX)
		out.MinY = math.Max(out.MinY, e.MinY)
		out.MaxX = math.Min(out.MaxX, e.MaxX)
		out.MaxY = math.Min(out.MaxY, e.MaxY)
	}
	if out.Empty() {
		return out, raster.GeometryErrorf("mask and product extents do not intersect")
	}
	return out, nil
}

// ComputeKeep combines n pixel masks: same polarity layers are summed,
// a pixel is kept when some include layer is positive and no exclude
// layer is non-zero.  NaN mask pixels are never kept.
func ComputeKeep(n int, include, exclude [][]float32) []bool {
	keep := make([]bool, n)
	for i := range keep {
		var in, out float64
		for _, m := range include {
			in += float64(m[i])
		}
		for _, m := range exclude {
			out += float64(m[i])
		}
		switch {
		case len(include) == 0:
			keep[i] = out == 0
		case len(exclude) == 0:
			keep[i] = in > 0
		default:
			keep[i] = in > 0 && out == 0
		}
	}
	return keep
}

// ApplyMasks clips target to the extent it shares with every mask and
// sets its pixels to NaN wherever the combined masks discard them.
// Masks must share the target's CRS and resolution; they are not
// modified.  On error target is left untouched.
func ApplyMasks(target *CompositeProduct, masks []*MaskLayer) error {
	plan, err := planMasks(target, masks)
	if err != nil {
		return err
	}
	plan.apply()
	return nil
}

// maskPlan is a validated mask application: the target window and the
// matching mask slices.
type maskPlan struct {
	target         *CompositeProduct
	masks          []*MaskLayer
	i0, i1, j0, j1 int
	// clipped mask slices, per time step of the mask
	layers [][][]float32
}

// planMasks checks masks against target without modifying either.
func planMasks(target *CompositeProduct, masks []*MaskLayer) (*maskPlan, error) {
	if len(masks) == 0 {
		return nil, raster.InputErrorf("no mask to apply")
	}
	extents := []raster.BBox{target.Extent()}
	for _, m := range masks {
		if m.Product == nil || len(m.Product.Vars) != 1 {
			return nil, raster.InputErrorf("mask layers must hold exactly one variable")
		}
		mp := m.Product
		if mp.CRS != target.CRS {
			return nil, raster.InputErrorf("mask %s is in %s, product %s is in %s", m.Name(), mp.CRS, target.Name, target.CRS)
		}
		if !raster.SameResolution(mp.Grid.Resolution, target.Grid.Resolution) {
			return nil, raster.InputErrorf("mask %s resolution %v differs from product resolution %v", m.Name(), mp.Grid.Resolution, target.Grid.Resolution)
		}
		if len(mp.Times) != 1 && len(mp.Times) != len(target.Times) {
			return nil, raster.InputErrorf("mask %s has %d time steps, product %s has %d", m.Name(), len(mp.Times), target.Name, len(target.Times))
		}
		extents = append(extents, mp.Extent())
	}
	bbox, err := IntersectExtents(extents...)
	if err != nil {
		return nil, err
	}

	plan := &maskPlan{target: target, masks: masks, layers: make([][][]float32, len(masks))}
	plan.i0, plan.i1, plan.j0, plan.j1 = target.Grid.Select(bbox)
	if plan.i1 <= plan.i0 || plan.j1 <= plan.j0 {
		return nil, raster.GeometryErrorf("no pixel of %s lies in the shared extent", target.Name)
	}
	clipped := target.Grid.Sub(plan.i0, plan.i1, plan.j0, plan.j1)

	for k, m := range masks {
		mp := m.Product
		mi0, mi1, mj0, mj1 := mp.Grid.Select(bbox)
		if !mp.Grid.Sub(mi0, mi1, mj0, mj1).Equal(clipped) {
			return nil, raster.InputErrorf("mask %s grid is not aligned on product %s", m.Name(), target.Name)
		}
		for _, d := range mp.Vars[0].Data {
			plan.layers[k] = append(plan.layers[k], clipSlice(d, mp.Width(), mi0, mi1, mj0, mj1))
		}
	}
	return plan, nil
}

func (plan *maskPlan) apply() {
	target := plan.target
	target.clip(plan.i0, plan.i1, plan.j0, plan.j1)
	n := target.Width() * target.Height()

	nan := float32(math.NaN())
	for t := range target.Times {
		var include, exclude [][]float32
		for k, m := range plan.masks {
			slice := plan.layers[k][0]
			if len(plan.layers[k]) > 1 {
				slice = plan.layers[k][t]
			}
			if m.Polarity == Exclude {
				exclude = append(exclude, slice)
			} else {
				include = append(include, slice)
			}
		}
		keep := ComputeKeep(n, include, exclude)
		for _, v := range target.Vars {
			d := v.Data[t]
			for i, ok := range keep {
				if !ok {
					d[i] = nan
				}
			}
		}
	}

	recordMasks(target, plan.masks)
}

func recordMasks(target *CompositeProduct, masks []*MaskLayer) {
	if target.Attrs == nil {
		target.Attrs = make(map[string]string)
	}
	var names []string
	if prev := target.Attrs["masks"]; prev != "" {
		names = strings.Split(prev, ", ")
	}
	for _, m := range masks {
		name := m.Name()
		if attr, ok := versionedMasks[name]; ok {
			version := m.Product.Vars[0].Attrs["version"]
			target.Attrs[attr] = fmt.Sprintf("%s (%s) [%s]", name, version, m.Polarity)
			continue
		}
		names = append(names, fmt.Sprintf("%s [%s]", name, m.Polarity))
	}
	if len(names) > 0 {
		target.Attrs["masks"] = strings.Join(names, ", ")
	}
}
