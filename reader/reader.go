package reader

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/region"
)

// BandSample is one band read inside a window and decoded into
// physical units, nodata being NaN.
type BandSample struct {
	Name          string
	Data          []float32
	Width, Height int
	Resolution    float64
	CRS           string
	Window        raster.Window
	// Categorical samples carry class or bit-field values and must
	// never be interpolated.
	Categorical bool
}

// Handle is an open product.  Bands are read one at a time in the
// order given by Bands; the first one is the session anchor whose
// raster defines the authoritative window.
type Handle interface {
	ProductType() string
	CRS() string
	Bands() []string
	// DefaultResolution is the output resolution used when none is
	// requested, 0 meaning the anchor's native resolution.
	DefaultResolution() float64
	// ResolveWindow reprojects roi into the product CRS and converts
	// its envelope into the anchor raster's pixel window.  A nil roi
	// gives the whole raster.
	ResolveWindow(roi *region.Descriptor) (raster.Window, error)
	// Extract reads band inside the projected extent of win, remapped
	// through the band's own geotransform.
	Extract(band string, win raster.Window) (*BandSample, error)
	// SupplementaryMasks returns the product's own quality masks
	// requested through Options, as categorical samples that are 1
	// where pixels must be discarded.
	SupplementaryMasks(win raster.Window) ([]*BandSample, error)
	Acquired() time.Time
	Metadata() map[string]string
	// Attrs are the reader attributes propagated to output products
	// (theia_bands, grs_bands, suppl_masks, data_type).
	Attrs() map[string]string
	Close() error
}

// Extractor opens products of one format.
type Extractor interface {
	Open(path string, bands []string, opts Options) (Handle, error)
}

// Options are the format specific side-channel parameters.
type Options struct {
	// THEIABands selects flat ("FRE", the default) or surface ("SRE")
	// reflectances.
	THEIABands string
	// THEIAMasks maps CLM, MG2 or SAT onto the bits to test; an empty
	// list tests all eight bits.
	THEIAMasks map[string][]int
	// NoGlintCorrection reads GRS reflectances before sunglint
	// removal.
	NoGlintCorrection bool
	// Flags applies the GRS water flags.
	Flags bool
	// SensingDate is the acquisition date of C2RCC products,
	// YYYY-MM-DD or YYYYMMDD.
	SensingDate string
	// Resolution is the resolution extraction runs at, when known.
	Resolution float64
}

// Env carries the collaborators every extractor needs.
type Env struct {
	Opener   raster.Opener
	Resolver *region.Resolver
	Tables   *Tables
	Verbose  bool
}

type constructor func(env *Env, productType string, table *FormatTable) Extractor

var variants = map[string]constructor{
	"S2_ESA_L1C":   newS2ESA,
	"S2_ESA_L2A":   newS2ESA,
	"S2_THEIA":     newTHEIA,
	"L8_USGS_L1C1": newLandsatL1,
	"L8_USGS_L2":   newLandsatL2,
	"S2_GRS":       newGRS,
	"L8_GRS":       newGRS,
	"S2_C2RCC":     newC2RCC,
}

// Registry is the product type to extractor lookup table.
type Registry struct {
	env        *Env
	extractors map[string]Extractor
}

func NewRegistry(env *Env) (*Registry, error) {
	if env.Tables == nil {
		env.Tables = DefaultTables()
	}
	r := &Registry{env: env, extractors: make(map[string]Extractor)}
	for name, table := range env.Tables.Formats {
		ctor, ok := variants[name]
		if !ok {
			return nil, fmt.Errorf("no extractor implements product type %s", name)
		}
		r.extractors[name] = ctor(env, name, table)
	}
	return r, nil
}

func (r *Registry) Lookup(productType string) (Extractor, error) {
	e, ok := r.extractors[productType]
	if !ok {
		return nil, raster.InputErrorf("unknown product type %q", productType)
	}
	return e, nil
}

func (r *Registry) Tables() *Tables { return r.env.Tables }

// Open is a shortcut for Lookup followed by Open.
func (r *Registry) Open(productType, path string, bands []string, opts Options) (Handle, error) {
	e, err := r.Lookup(productType)
	if err != nil {
		return nil, err
	}
	if len(bands) == 0 {
		return nil, raster.InputErrorf("no band requested")
	}
	return e.Open(path, bands, opts)
}

// Encode flattens options into string pairs for the wire.
func (o Options) Encode() map[string]string {
	m := map[string]string{}
	if o.THEIABands != "" {
		m["theia_bands"] = o.THEIABands
	}
	if len(o.THEIAMasks) > 0 {
		var names []string
		for name := range o.THEIAMasks {
			names = append(names, name)
		}
		sort.Strings(names)
		var parts []string
		for _, name := range names {
			var bits []string
			for _, b := range o.THEIAMasks[name] {
				bits = append(bits, strconv.Itoa(b))
			}
			parts = append(parts, name+":"+strings.Join(bits, ","))
		}
		m["theia_masks"] = strings.Join(parts, ";")
	}
	if o.NoGlintCorrection {
		m["glint_corrected"] = "false"
	}
	if o.Flags {
		m["flags"] = "true"
	}
	if o.SensingDate != "" {
		m["sensing_date"] = o.SensingDate
	}
	if o.Resolution != 0 {
		m["resolution"] = strconv.FormatFloat(o.Resolution, 'f', -1, 64)
	}
	return m
}

// DecodeOptions is the inverse of Encode.
func DecodeOptions(m map[string]string) (Options, error) {
	var o Options
	o.THEIABands = m["theia_bands"]
	if s := m["theia_masks"]; s != "" {
		o.THEIAMasks = map[string][]int{}
		for _, part := range strings.Split(s, ";") {
			kv := strings.SplitN(part, ":", 2)
			var bits []int
			if len(kv) == 2 && kv[1] != "" {
				for _, b := range strings.Split(kv[1], ",") {
					v, err := strconv.Atoi(b)
					if err != nil {
						return o, raster.InputErrorf("invalid bit %q for mask %s", b, kv[0])
					}
					bits = append(bits, v)
				}
			}
			o.THEIAMasks[kv[0]] = bits
		}
	}
	if v, ok := m["glint_corrected"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, raster.InputErrorf("invalid glint_corrected value %q", v)
		}
		o.NoGlintCorrection = !b
	}
	if v, ok := m["flags"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return o, raster.InputErrorf("invalid flags value %q", v)
		}
		o.Flags = b
	}
	o.SensingDate = m["sensing_date"]
	if v, ok := m["resolution"]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return o, raster.InputErrorf("invalid resolution %q", v)
		}
		o.Resolution = f
	}
	return o, nil
}
