package processor

import (
	"fmt"
	"math"
	"strings"

	goeval "github.com/edisonguo/govaluate"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/utils"
)

// Formula is a per-pixel expression over the variables of a product.
type Formula struct {
	Name     string
	Text     string
	LongName string
	Units    string
	// Vars are the variables the expression reads, in order of first
	// use.
	Vars []string
	expr *goeval.EvaluableExpression
}

func CompileFormula(name, text string) (*Formula, error) {
	if len(strings.TrimSpace(text)) == 0 {
		return nil, raster.InputErrorf("formula %s has no expression", name)
	}
	expr, err := goeval.NewEvaluableExpression(text)
	if err != nil {
		return nil, raster.InputErrorf("formula %s: %v", name, err)
	}

	f := &Formula{Name: name, Text: text, expr: expr}
	seen := make(map[string]bool)
	for _, token := range expr.Tokens() {
		if token.Kind != goeval.VARIABLE {
			continue
		}
		varName, ok := token.Value.(string)
		if !ok {
			return nil, raster.InputErrorf("formula %s: variable token '%v' failed to cast string", name, token.Value)
		}
		if !seen[varName] {
			seen[varName] = true
			f.Vars = append(f.Vars, varName)
		}
	}
	if len(f.Vars) == 0 {
		return nil, raster.InputErrorf("formula %s does not reference any band", name)
	}
	return f, nil
}

// NewFormula compiles a configured formula.
func NewFormula(cfg utils.Formula) (*Formula, error) {
	f, err := CompileFormula(cfg.Name, cfg.Expression)
	if err != nil {
		return nil, err
	}
	f.LongName = cfg.LongName
	f.Units = cfg.Units
	return f, nil
}

// Evaluate computes the formula for every pixel and time step of p.
// A pixel with any NaN input, or a non finite result, is NaN.  Boolean
// results give 1 or 0.
func (f *Formula) Evaluate(p *CompositeProduct) ([][]float32, error) {
	inputs := make([]*Variable, len(f.Vars))
	for i, name := range f.Vars {
		v, ok := p.Var(name)
		if !ok {
			return nil, raster.InputErrorf("formula %s needs band %s, product %s has %v", f.Name, name, p.Name, p.VarNames())
		}
		inputs[i] = v
	}

	n := p.Width() * p.Height()
	nan := float32(math.NaN())
	out := make([][]float32, len(p.Times))
	parameters := make(map[string]interface{}, len(f.Vars))
	for t := range p.Times {
		res := make([]float32, n)
		for i := 0; i < n; i++ {
			noData := false
			for k, v := range inputs {
				val := v.Data[t][i]
				if math.IsNaN(float64(val)) {
					noData = true
					break
				}
				parameters[f.Vars[k]] = float64(val)
			}
			if noData {
				res[i] = nan
				continue
			}

			result, err := f.expr.Evaluate(parameters)
			if err != nil {
				return nil, fmt.Errorf("formula %s: eval '%v' error: %v", f.Name, f.Text, err)
			}
			val, err := toFloat(result)
			if err != nil {
				return nil, fmt.Errorf("formula %s: %v", f.Name, err)
			}
			if math.IsInf(val, 0) {
				val = math.NaN()
			}
			res[i] = float32(val)
		}
		out[t] = res
	}
	return out, nil
}

func toFloat(result interface{}) (float64, error) {
	switch v := result.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return 0, fmt.Errorf("failed to cast eval result '%v' to float", result)
}

// Product evaluates the formula into a new single variable product on
// p's grid.
func (f *Formula) Product(p *CompositeProduct) (*CompositeProduct, error) {
	data, err := f.Evaluate(p)
	if err != nil {
		return nil, err
	}
	attrs := map[string]string{"grid_mapping": "crs", "expression": f.Text}
	if f.LongName != "" {
		attrs["long_name"] = f.LongName
	}
	if f.Units != "" {
		attrs["units"] = f.Units
	}
	return derivedProduct(p, f.Name, &Variable{Name: f.Name, Data: data, Attrs: attrs}), nil
}

// derivedProduct wraps vars into a product sharing p's grid, time axis
// and metadata.
func derivedProduct(p *CompositeProduct, name string, vars ...*Variable) *CompositeProduct {
	return &CompositeProduct{
		Name:     name,
		CRS:      p.CRS,
		Grid:     p.Grid,
		Times:    append(p.Times[:0:0], p.Times...),
		Vars:     vars,
		Attrs:    make(map[string]string),
		Metadata: copyAttrs(p.Metadata),
	}
}
