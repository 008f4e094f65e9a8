package processor

import (
	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/utils"
)

// MaskDef computes a mask layer from the bands of a product, either a
// boolean expression or bit tests over one categorical band.
type MaskDef struct {
	Config utils.Mask
	expr   *Formula
}

func NewMaskDef(cfg utils.Mask) (*MaskDef, error) {
	d := &MaskDef{Config: cfg}
	if len(cfg.Expression) > 0 {
		f, err := CompileFormula(cfg.ID, cfg.Expression)
		if err != nil {
			return nil, err
		}
		d.expr = f
		return d, nil
	}
	if len(cfg.Band) == 0 {
		return nil, raster.InputErrorf("mask %s needs either an expression or a band", cfg.ID)
	}
	// validate the bit tests once
	if _, err := ComputeMask(&d.Config, nil); err != nil {
		return nil, raster.InputErrorf("mask %s: %v", cfg.ID, err)
	}
	return d, nil
}

func (d *MaskDef) Name() string { return d.Config.ID }

// Bands lists the bands the mask is computed from.
func (d *MaskDef) Bands() []string {
	if d.expr != nil {
		return append([]string(nil), d.expr.Vars...)
	}
	return []string{d.Config.Band}
}

// Polarity is the configured default, Include for inclusive masks.
func (d *MaskDef) Polarity() Polarity {
	if d.Config.Inclusive {
		return Include
	}
	return Exclude
}

// Product computes the mask over p as a categorical single variable
// product named after the mask.
func (d *MaskDef) Product(p *CompositeProduct) (*CompositeProduct, error) {
	var data [][]float32
	if d.expr != nil {
		var err error
		if data, err = d.expr.Evaluate(p); err != nil {
			return nil, err
		}
		for _, slice := range data {
			for i, v := range slice {
				if v == v && v != 0 {
					slice[i] = 1
				}
			}
		}
	} else {
		band, ok := p.Var(d.Config.Band)
		if !ok {
			return nil, raster.InputErrorf("mask %s needs band %s, product %s has %v", d.Name(), d.Config.Band, p.Name, p.VarNames())
		}
		for _, slice := range band.Data {
			m, err := ComputeMask(&d.Config, slice)
			if err != nil {
				return nil, raster.InputErrorf("mask %s: %v", d.Name(), err)
			}
			data = append(data, m)
		}
	}

	attrs := map[string]string{"grid_mapping": "crs"}
	if d.Config.Version != "" {
		attrs["version"] = d.Config.Version
	}
	if d.Config.LongName != "" {
		attrs["long_name"] = d.Config.LongName
	}
	if d.expr != nil {
		attrs["expression"] = d.expr.Text
	}
	return derivedProduct(p, d.Name(), &Variable{Name: d.Name(), Data: data, Categorical: true, Attrs: attrs}), nil
}

// Layer computes the mask over p with its configured polarity.
func (d *MaskDef) Layer(p *CompositeProduct) (*MaskLayer, error) {
	mp, err := d.Product(p)
	if err != nil {
		return nil, err
	}
	return &MaskLayer{Product: mp, Polarity: d.Polarity()}, nil
}
