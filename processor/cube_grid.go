package processor

import (
	"fmt"
	"log"
	"time"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/reader"
)

// Band is one layer resampled onto a session grid.
type Band struct {
	Name        string
	Data        []float32
	Categorical bool
	// Filter is the resampling filter applied, "none" when the band
	// was already at the grid resolution.
	Filter string
}

// Normalizer brings the bands of one extraction session onto the grid
// laid over the anchor window at the session resolution.
type Normalizer struct {
	Grid    *raster.Grid
	Verbose bool
}

// NewNormalizer lays a res spaced grid over the anchor window.
func NewNormalizer(anchor raster.Window, res float64) (*Normalizer, error) {
	grid, err := raster.GridForWindow(anchor, res)
	if err != nil {
		return nil, raster.InputErrorf("%v", err)
	}
	return &Normalizer{Grid: grid}, nil
}

func (n *Normalizer) Normalize(s *reader.BandSample) (*Band, error) {
	data, filter, err := normalizeTo(s.Data, s.Width, s.Height, s.Resolution, n.Grid, s.Categorical)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %v", s.Name, err)
	}
	if n.Verbose && filter != "none" {
		log.Printf("normalize: %s scale factor %v, resampling filter %s", s.Name, s.Resolution/n.Grid.Resolution, filter)
	}
	return &Band{Name: s.Name, Data: data, Categorical: s.Categorical, Filter: filter}, nil
}

// AssembleProduct stacks bands sharing grid into a single time step
// product.
func AssembleProduct(name, crs string, grid *raster.Grid, acquired time.Time, bands []*Band) (*CompositeProduct, error) {
	if grid == nil {
		return nil, fmt.Errorf("no grid to assemble %s on", name)
	}
	p := &CompositeProduct{
		Name:     name,
		CRS:      crs,
		Grid:     grid,
		Times:    []time.Time{acquired},
		Attrs:    make(map[string]string),
		Metadata: make(map[string]string),
	}
	n := grid.Width() * grid.Height()
	for _, b := range bands {
		if len(b.Data) != n {
			return nil, fmt.Errorf("band %s holds %d values, grid is %dx%d", b.Name, len(b.Data), grid.Width(), grid.Height())
		}
		if _, dup := p.Var(b.Name); dup {
			return nil, fmt.Errorf("band %s given twice", b.Name)
		}
		p.Vars = append(p.Vars, &Variable{
			Name:        b.Name,
			Data:        [][]float32{b.Data},
			Categorical: b.Categorical,
			Attrs:       map[string]string{"grid_mapping": "crs"},
		})
	}
	return p, nil
}
