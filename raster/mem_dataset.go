package raster

import (
	"fmt"
)

// MemDataset is an in-memory Dataset.  Bands are row major and share
// the dataset size.
type MemDataset struct {
	Width, Height int
	Transform     GeoTransform
	CRS           string
	Meta          map[string]map[string]string
	Bands         []MemBand
	Closed        bool
}

type MemBand struct {
	Description string
	Meta        map[string]string
	Data        []float32
}

func (d *MemDataset) Size() (int, int) { return d.Width, d.Height }
func (d *MemDataset) BandCount() int   { return len(d.Bands) }
func (d *MemDataset) Projection() string {
	return d.CRS
}

func (d *MemDataset) GeoTransform() (GeoTransform, error) {
	if d.Transform == (GeoTransform{}) {
		return GeoTransform{}, fmt.Errorf("dataset has no geotransform")
	}
	return d.Transform, nil
}

func (d *MemDataset) Metadata(domain string) map[string]string {
	if d.Meta == nil {
		return map[string]string{}
	}
	md, ok := d.Meta[domain]
	if !ok {
		return map[string]string{}
	}
	return md
}

func (d *MemDataset) BandDescription(band int) string {
	if band < 1 || band > len(d.Bands) {
		return ""
	}
	return d.Bands[band-1].Description
}

func (d *MemDataset) BandMetadata(band int) map[string]string {
	if band < 1 || band > len(d.Bands) || d.Bands[band-1].Meta == nil {
		return map[string]string{}
	}
	return d.Bands[band-1].Meta
}

func (d *MemDataset) ReadWindow(band int, w Window) ([]float32, error) {
	if band < 1 || band > len(d.Bands) {
		return nil, fmt.Errorf("band %d out of range", band)
	}
	if w.RowStart < 0 || w.ColStart < 0 || w.RowStop >= d.Height || w.ColStop >= d.Width || w.Width() < 1 || w.Height() < 1 {
		return nil, fmt.Errorf("window rows %d-%d cols %d-%d outside %dx%d", w.RowStart, w.RowStop, w.ColStart, w.ColStop, d.Width, d.Height)
	}
	src := d.Bands[band-1].Data
	out := make([]float32, 0, w.Width()*w.Height())
	for r := w.RowStart; r <= w.RowStop; r++ {
		out = append(out, src[r*d.Width+w.ColStart:r*d.Width+w.ColStop+1]...)
	}
	return out, nil
}

func (d *MemDataset) Close() error {
	d.Closed = true
	return nil
}
