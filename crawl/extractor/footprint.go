package extractor

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
)

// Footprinter opens identified products to read their coordinate
// system and geographic footprint.
type Footprinter struct {
	Registry *reader.Registry
	Resolver *region.Resolver
}

// footprintBand is present in every product type; other tables fall
// back to their first band.
const footprintBand = "B4"

// Fill sets the CRS and polygon of rec from the anchor band's raster.
func (f *Footprinter) Fill(rec *ProductRecord) error {
	table, err := f.Registry.Tables().Lookup(rec.ProductType)
	if err != nil {
		return err
	}
	band := footprintBand
	if _, ok := table.Bands[band]; !ok {
		var names []string
		for name := range table.Bands {
			names = append(names, name)
		}
		sort.Strings(names)
		band = names[0]
	}

	opts := reader.Options{}
	if rec.ProductType == "S2_C2RCC" {
		opts.SensingDate = rec.Acquired.Format("2006-01-02")
	}
	h, err := f.Registry.Open(rec.ProductType, rec.Path, []string{band}, opts)
	if err != nil {
		return err
	}
	defer h.Close()

	win, err := h.ResolveWindow(nil)
	if err != nil {
		return err
	}
	ext := win.Extent()
	d, err := region.FromWKT(polygonWKT(ext.MinX, ext.MinY, ext.MaxX, ext.MaxY), h.CRS())
	if err != nil {
		return err
	}
	p, err := f.Resolver.Project(d, region.DefaultSRS)
	if err != nil {
		return fmt.Errorf("%s: %v", rec.Path, err)
	}
	rec.CRS = h.CRS()
	rec.Polygon = p.WKT
	if acq := h.Acquired(); !acq.IsZero() {
		rec.Acquired = acq.UTC()
	}
	return nil
}

func polygonWKT(minX, minY, maxX, maxY float64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return fmt.Sprintf("POLYGON ((%s %s, %s %s, %s %s, %s %s, %s %s))",
		f(minX), f(maxY), f(maxX), f(maxY), f(maxX), f(minY), f(minX), f(minY), f(minX), f(maxY))
}
