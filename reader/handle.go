package reader

import (
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"time"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/region"
)

// decoder turns raw samples into physical units: fill values become
// NaN, the rest scale*v + offset.
type decoder struct {
	scale, offset float64
	fill          float64
	hasFill       bool
}

func (d decoder) apply(data []float32) {
	for i, v := range data {
		if d.hasFill && float64(v) == d.fill {
			data[i] = float32(math.NaN())
			continue
		}
		if d.scale != 1 || d.offset != 0 {
			data[i] = float32(d.scale*float64(v) + d.offset)
		}
	}
}

// decoderFromTags reads CF style scale_factor, add_offset and
// _FillValue band attributes.
func decoderFromTags(tags map[string]string) (decoder, error) {
	d := decoder{scale: 1}
	for key, dst := range map[string]*float64{"scale_factor": &d.scale, "add_offset": &d.offset} {
		if v, ok := tags[key]; ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return d, raster.ProductErrorf("invalid %s %q", key, v)
			}
			*dst = f
		}
	}
	if v, ok := tags["_FillValue"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return d, raster.ProductErrorf("invalid _FillValue %q", v)
		}
		d.fill, d.hasFill = f, true
	}
	return d, nil
}

// source locates the raster holding one band.
type source struct {
	path string
	band int
	// decode nil means decoding from the band's CF attributes.
	decode      *decoder
	categorical bool
	// georef overrides the file's own georeferencing.
	georef *georef
}

type georef struct {
	gt  raster.GeoTransform
	crs string
}

// maskSource is a quality raster turned into a discard field.
type maskSource struct {
	name string
	source
	discard func([]float32) ([]bool, error)
}

type windowFunc func(gt raster.GeoTransform, width, height int, roi raster.BBox) (raster.Window, error)

// handle implements Handle for every format; variants differ in how
// they fill it at Open time.
type handle struct {
	env         *Env
	productType string
	order       []string
	sources     map[string]*source
	masks       []*maskSource
	crs         string
	acquired    time.Time
	meta        map[string]string
	attrs       map[string]string
	defaultRes  float64
	window      windowFunc
	closers     []io.Closer
}

func newHandle(env *Env, productType string) *handle {
	return &handle{
		env:         env,
		productType: productType,
		sources:     make(map[string]*source),
		meta:        make(map[string]string),
		attrs:       make(map[string]string),
		window:      raster.ResolveWindow,
	}
}

func (h *handle) add(band string, src *source) {
	h.order = append(h.order, band)
	h.sources[band] = src
}

// initCRS reads the CRS of the anchor raster unless a variant already
// set it.
func (h *handle) initCRS() error {
	if len(h.order) == 0 {
		return raster.ProductErrorf("no band to extract")
	}
	if h.crs != "" {
		return nil
	}
	ds, _, err := h.open(h.sources[h.order[0]])
	if err != nil {
		return err
	}
	defer ds.Close()
	h.crs = ds.Projection()
	if h.crs == "" {
		return raster.ProductErrorf("%s has no coordinate reference system", h.sources[h.order[0]].path)
	}
	return nil
}

func (h *handle) open(src *source) (raster.Dataset, raster.GeoTransform, error) {
	var ds raster.Dataset
	var err error
	if src.georef != nil {
		ds, err = raster.OpenGeoreferenced(h.env.Opener, src.path, src.georef.gt, src.georef.crs)
	} else {
		ds, err = h.env.Opener.Open(src.path)
	}
	if err != nil {
		return nil, raster.GeoTransform{}, raster.ProductErrorf("cannot open %s: %v", src.path, err)
	}
	gt, err := ds.GeoTransform()
	if err != nil {
		ds.Close()
		return nil, raster.GeoTransform{}, raster.ProductErrorf("%s: %v", src.path, err)
	}
	return ds, gt, nil
}

func (h *handle) ProductType() string        { return h.productType }
func (h *handle) CRS() string                { return h.crs }
func (h *handle) Bands() []string            { return append([]string(nil), h.order...) }
func (h *handle) DefaultResolution() float64 { return h.defaultRes }
func (h *handle) Acquired() time.Time        { return h.acquired }
func (h *handle) Metadata() map[string]string {
	return h.meta
}
func (h *handle) Attrs() map[string]string { return h.attrs }

func (h *handle) ResolveWindow(roi *region.Descriptor) (raster.Window, error) {
	anchor := h.sources[h.order[0]]
	ds, gt, err := h.open(anchor)
	if err != nil {
		return raster.Window{}, err
	}
	defer ds.Close()

	width, height := ds.Size()
	if roi == nil {
		return raster.FullWindow(gt, width, height), nil
	}
	p, err := h.env.Resolver.Resolve(roi, h.crs, raster.Extent(gt, width, height))
	if err != nil {
		return raster.Window{}, err
	}
	return h.window(gt, width, height, p.Bounds)
}

func (h *handle) Extract(band string, win raster.Window) (*BandSample, error) {
	src, ok := h.sources[band]
	if !ok {
		return nil, raster.ProductErrorf("band %s is not part of this %s extraction", band, h.productType)
	}
	data, w, gt, ds, err := h.read(src, win)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	if !src.categorical {
		dec := src.decode
		if dec == nil {
			d, err := decoderFromTags(ds.BandMetadata(src.band))
			if err != nil {
				return nil, err
			}
			dec = &d
		}
		dec.apply(data)
	}

	if h.env.Verbose {
		log.Printf("extract: %s %s rows %d-%d cols %d-%d at %vm", h.productType, band, w.RowStart, w.RowStop, w.ColStart, w.ColStop, gt.Resolution())
	}
	return &BandSample{
		Name:        band,
		Data:        data,
		Width:       w.Width(),
		Height:      w.Height(),
		Resolution:  gt.Resolution(),
		CRS:         h.crs,
		Window:      w,
		Categorical: src.categorical,
	}, nil
}

func (h *handle) SupplementaryMasks(win raster.Window) ([]*BandSample, error) {
	var out []*BandSample
	for _, m := range h.masks {
		data, w, gt, ds, err := h.read(&m.source, win)
		if err != nil {
			return nil, err
		}
		ds.Close()

		discard, err := m.discard(data)
		if err != nil {
			return nil, raster.ProductErrorf("mask %s: %v", m.name, err)
		}
		for i, d := range discard {
			if d {
				data[i] = 1
			} else {
				data[i] = 0
			}
		}
		out = append(out, &BandSample{
			Name:        m.name,
			Data:        data,
			Width:       w.Width(),
			Height:      w.Height(),
			Resolution:  gt.Resolution(),
			CRS:         h.crs,
			Window:      w,
			Categorical: true,
		})
	}
	return out, nil
}

// read opens src, remaps win onto its raster and reads the samples.
// The caller closes the returned dataset.
func (h *handle) read(src *source, win raster.Window) ([]float32, raster.Window, raster.GeoTransform, raster.Dataset, error) {
	ds, gt, err := h.open(src)
	if err != nil {
		return nil, raster.Window{}, gt, nil, err
	}
	width, height := ds.Size()
	w, err := raster.RemapWindow(win, gt, width, height)
	if err != nil {
		ds.Close()
		return nil, w, gt, nil, err
	}
	data, err := ds.ReadWindow(src.band, w)
	if err != nil {
		ds.Close()
		return nil, w, gt, nil, raster.ProductErrorf("error reading %s: %v", src.path, err)
	}
	return data, w, gt, ds, nil
}

func (h *handle) Close() error {
	var first error
	for _, c := range h.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	h.closers = nil
	return first
}

// closeOnError releases whatever a failed Open acquired.
func (h *handle) closeOnError(err error) (Handle, error) {
	h.Close()
	return nil, err
}

func parseFloatTag(tags map[string]string, key string) (float64, error) {
	v, ok := tags[key]
	if !ok {
		return 0, raster.ProductErrorf("metadata item %s is missing", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, raster.ProductErrorf("metadata item %s=%q is not a number", key, v)
	}
	return f, nil
}

func parseTime(layouts []string, value string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", value)
}
