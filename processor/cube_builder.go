package processor

import (
	"fmt"
	"log"
	"math"
	"time"

	humanize "github.com/dustin/go-humanize"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
)

// Version is recorded in the history attribute of every product.
var Version = "dev"

const (
	Convention = "CF-1.8"

	// name of the product holding the requested bands themselves
	BandsProduct = "bands"
)

// BuilderConfig holds the read only collaborators shared by every
// builder of a run.
type BuilderConfig struct {
	Registry *reader.Registry
	Formulas map[string]*Formula
	Masks    map[string]*MaskDef
	Verbose  bool
}

// Builder turns one product into analysis ready cubes through the
// stages configure, extract, compute, optionally mask, and retrieve.
// Calls made out of order return a *StateError.  A Builder is not safe
// for concurrent use.
type Builder struct {
	cfg   *BuilderConfig
	state BuildState

	productType string
	path        string
	opts        reader.Options
	roi         *region.Descriptor
	outRes      float64
	procRes     float64
	bands       []string
	formulas    []*Formula
	masks       []*MaskDef
	// bands read for masks applied later through ComputeMaskLayer
	extra []string

	raw       *CompositeProduct
	readAttrs map[string]string
	products  []*CompositeProduct
}

func NewBuilder(cfg *BuilderConfig) *Builder {
	return &Builder{cfg: cfg}
}

func (b *Builder) State() BuildState { return b.state }

func (b *Builder) configurable(op string) error {
	switch b.state {
	case StateEmpty, StateConfigured:
		return nil
	case StateConsumed:
		b.reset()
		return nil
	}
	return &StateError{Op: op, State: b.state}
}

func (b *Builder) reset() {
	*b = Builder{cfg: b.cfg}
}

func (b *Builder) configured() {
	if b.productType != "" {
		b.state = StateConfigured
	}
}

// SetReader selects the product to read and the output and processing
// resolutions, 0 meaning unset.  Resolutions are validated against the
// format's authorized set; formats whose resolution is fixed ignore
// them.
func (b *Builder) SetReader(productType, path string, outRes, procRes float64, opts reader.Options) error {
	if err := b.configurable("set reader"); err != nil {
		return err
	}
	table, err := b.cfg.Registry.Tables().Lookup(productType)
	if err != nil {
		return err
	}
	if outRes < 0 || procRes < 0 {
		return raster.InputErrorf("resolutions must not be negative")
	}

	if table.Configurable() {
		if err := table.CheckResolution("out_resolution", outRes); err != nil {
			return err
		}
		if err := table.CheckResolution("processing_resolution", procRes); err != nil {
			return err
		}
		if outRes == 0 {
			outRes = procRes
		}
		if procRes < outRes {
			if procRes != 0 {
				log.Printf("builder: processing resolution %vm is finer than the output resolution, raised to %vm", procRes, outRes)
			}
			procRes = outRes
		}
	} else if outRes != 0 || procRes != 0 {
		log.Printf("builder: %s has a fixed resolution, requested resolutions ignored", productType)
		outRes, procRes = 0, 0
	}

	b.productType = productType
	b.path = path
	b.outRes = outRes
	b.procRes = procRes
	b.opts = opts
	b.opts.Resolution = procRes
	b.configured()
	return nil
}

// SetRegion restricts extraction to roi, nil meaning the whole product.
func (b *Builder) SetRegion(roi *region.Descriptor) error {
	if err := b.configurable("set region"); err != nil {
		return err
	}
	b.roi = roi
	b.configured()
	return nil
}

// SetBands requests the bands themselves as an output product.
func (b *Builder) SetBands(bands []string) error {
	if err := b.configurable("set bands"); err != nil {
		return err
	}
	b.bands = dedup(bands)
	b.configured()
	return nil
}

// SetFormulas requests one output product per named formula.
func (b *Builder) SetFormulas(names []string) error {
	if err := b.configurable("set formulas"); err != nil {
		return err
	}
	var formulas []*Formula
	for _, name := range dedup(names) {
		f, ok := b.cfg.Formulas[name]
		if !ok {
			return raster.InputErrorf("unknown formula %q", name)
		}
		formulas = append(formulas, f)
	}
	b.formulas = formulas
	b.configured()
	return nil
}

// SetMasks requests one output mask product per named mask.
func (b *Builder) SetMasks(names []string) error {
	if err := b.configurable("set masks"); err != nil {
		return err
	}
	var masks []*MaskDef
	for _, name := range dedup(names) {
		d, ok := b.cfg.Masks[name]
		if !ok {
			return raster.InputErrorf("unknown mask %q", name)
		}
		masks = append(masks, d)
	}
	b.masks = masks
	b.configured()
	return nil
}

// RequireMasks reads the bands of the named masks along with the
// outputs so the masks can be computed with ComputeMaskLayer.
func (b *Builder) RequireMasks(names []string) error {
	if err := b.configurable("require masks"); err != nil {
		return err
	}
	var extra []string
	for _, name := range dedup(names) {
		d, ok := b.cfg.Masks[name]
		if !ok {
			return raster.InputErrorf("unknown mask %q", name)
		}
		extra = append(extra, d.Bands()...)
	}
	b.extra = extra
	b.configured()
	return nil
}

// requiredBands lists the bands read from the product: the requested
// ones followed by those formulas and masks depend on.
func (b *Builder) requiredBands() []string {
	var all []string
	all = append(all, b.bands...)
	for _, f := range b.formulas {
		all = append(all, f.Vars...)
	}
	for _, d := range b.masks {
		all = append(all, d.Bands()...)
	}
	all = append(all, b.extra...)
	return dedup(all)
}

// Extract reads every required band over the region, normalizes them
// onto the session grid and assembles the raw product.
func (b *Builder) Extract() error {
	if b.state != StateConfigured {
		return &StateError{Op: "extract", State: b.state}
	}
	bands := b.requiredBands()
	if len(b.bands)+len(b.formulas)+len(b.masks) == 0 {
		return raster.InputErrorf("no band, formula or mask requested")
	}

	start := time.Now()
	h, err := b.cfg.Registry.Open(b.productType, b.path, bands, b.opts)
	if err != nil {
		return err
	}
	defer h.Close()

	raw, err := b.extract(h)
	if err != nil {
		return err
	}
	if b.cfg.Verbose {
		size := uint64(raw.Width()*raw.Height()*len(raw.Vars)) * 4
		log.Printf("extract: %s %d bands %dx%d at %vm, %s in %v", b.path, len(raw.Vars), raw.Width(), raw.Height(), raw.Grid.Resolution, humanize.Bytes(size), time.Since(start))
	}

	b.raw = raw
	b.readAttrs = copyAttrs(h.Attrs())
	if b.outRes == 0 {
		b.outRes = raw.Grid.Resolution
	}
	b.state = StateExtracted
	return nil
}

func (b *Builder) extract(h reader.Handle) (*CompositeProduct, error) {
	win, err := h.ResolveWindow(b.roi)
	if err != nil {
		return nil, err
	}

	var norm *Normalizer
	var bands []*Band
	for _, name := range h.Bands() {
		s, err := h.Extract(name, win)
		if err != nil {
			return nil, err
		}
		if norm == nil {
			res := b.procRes
			if res == 0 {
				res = h.DefaultResolution()
			}
			if res == 0 {
				res = s.Resolution
			}
			if res > s.Resolution && !raster.SameResolution(res, s.Resolution) {
				return nil, raster.InputErrorf("resolution %vm is coarser than the %vm native resolution of %s", res, s.Resolution, name)
			}
			if norm, err = NewNormalizer(win, res); err != nil {
				return nil, err
			}
			norm.Verbose = b.cfg.Verbose
		}
		band, err := norm.Normalize(s)
		if err != nil {
			return nil, err
		}
		bands = append(bands, band)
	}

	suppl, err := h.SupplementaryMasks(win)
	if err != nil {
		return nil, err
	}
	for _, s := range suppl {
		m, err := norm.Normalize(s)
		if err != nil {
			return nil, err
		}
		discardFlagged(bands, m.Data)
	}

	raw, err := AssembleProduct("raw", h.CRS(), norm.Grid, h.Acquired(), bands)
	if err != nil {
		return nil, err
	}
	for k, v := range h.Metadata() {
		raw.Metadata[k] = v
	}
	return raw, nil
}

// discardFlagged sets non categorical bands to NaN wherever the mask
// is not zero.
func discardFlagged(bands []*Band, mask []float32) {
	nan := float32(math.NaN())
	for _, band := range bands {
		if band.Categorical {
			continue
		}
		for i, m := range mask {
			if m != 0 {
				band.Data[i] = nan
			}
		}
	}
}

// Compute evaluates the requested outputs over the raw product and
// brings them to the output resolution.
func (b *Builder) Compute() error {
	if b.state != StateExtracted {
		return &StateError{Op: "compute", State: b.state}
	}
	var products []*CompositeProduct
	if len(b.bands) > 0 {
		p := derivedProduct(b.raw, BandsProduct)
		for _, name := range b.bands {
			v, _ := b.raw.Var(name)
			nv := &Variable{Name: v.Name, Categorical: v.Categorical, Attrs: copyAttrs(v.Attrs)}
			for _, d := range v.Data {
				nv.Data = append(nv.Data, append([]float32(nil), d...))
			}
			p.Vars = append(p.Vars, nv)
		}
		products = append(products, p)
	}
	for _, f := range b.formulas {
		p, err := f.Product(b.raw)
		if err != nil {
			return err
		}
		products = append(products, p)
	}
	for _, d := range b.masks {
		p, err := d.Product(b.raw)
		if err != nil {
			return err
		}
		products = append(products, p)
	}

	for i, p := range products {
		out, err := b.toOutput(p)
		if err != nil {
			return err
		}
		products[i] = out
	}
	b.products = products
	b.state = StateAssembled
	return nil
}

// toOutput resamples p to the output resolution and sets its
// attributes.
func (b *Builder) toOutput(p *CompositeProduct) (*CompositeProduct, error) {
	if !raster.SameResolution(p.Grid.Resolution, b.outRes) {
		r, err := ResampleProduct(p, b.outRes)
		if err != nil {
			return nil, err
		}
		if b.cfg.Verbose {
			log.Printf("compute: %s resampled from %vm to %vm", p.Name, p.Grid.Resolution, b.outRes)
		}
		p = r
	}

	for k, v := range b.readAttrs {
		if k != "data_type" {
			p.Attrs[k] = v
		}
	}
	source := b.productType
	if table, err := b.cfg.Registry.Tables().Lookup(b.productType); err == nil && table.Source != "" {
		source = table.Source
	}
	p.Attrs["Convention"] = Convention
	p.Attrs["title"] = fmt.Sprintf("%s from %s", p.Name, b.productType)
	p.Attrs["history"] = fmt.Sprintf("created with gcube (v%s) on %s", Version, time.Now().UTC().Format("2006-01-02 15:04:05"))
	p.Attrs["product_type"] = b.productType
	p.Attrs["source"] = source
	p.Attrs["resolution"] = fmt.Sprintf("%v", b.outRes)
	if b.procRes != 0 {
		p.Attrs["processing_resolution"] = fmt.Sprintf("%v", b.procRes)
	}
	return p, nil
}

// ComputeMaskLayer computes a configured mask over the raw product at
// the output resolution, for use with Mask.
func (b *Builder) ComputeMaskLayer(name string, polarity Polarity) (*MaskLayer, error) {
	if b.state != StateAssembled && b.state != StateMasked {
		return nil, &StateError{Op: "compute mask layer", State: b.state}
	}
	d, ok := b.cfg.Masks[name]
	if !ok {
		return nil, raster.InputErrorf("unknown mask %q", name)
	}
	p, err := d.Product(b.raw)
	if err != nil {
		return nil, err
	}
	if !raster.SameResolution(p.Grid.Resolution, b.outRes) {
		if p, err = ResampleProduct(p, b.outRes); err != nil {
			return nil, err
		}
	}
	return &MaskLayer{Product: p, Polarity: polarity}, nil
}

// Mask applies the layers to every output product.  Products are only
// modified once the layers have been checked against all of them.
func (b *Builder) Mask(layers ...*MaskLayer) error {
	if b.state != StateAssembled && b.state != StateMasked {
		return &StateError{Op: "mask", State: b.state}
	}
	plans := make([]*maskPlan, len(b.products))
	for i, p := range b.products {
		plan, err := planMasks(p, layers)
		if err != nil {
			return err
		}
		plans[i] = plan
	}
	for _, plan := range plans {
		plan.apply()
	}
	b.state = StateMasked
	return nil
}

// Products returns the outputs and resets the builder.
func (b *Builder) Products() ([]*CompositeProduct, error) {
	if b.state != StateAssembled && b.state != StateMasked {
		return nil, &StateError{Op: "get products", State: b.state}
	}
	out := b.products
	b.reset()
	b.state = StateConsumed
	return out, nil
}

// ResampleProduct rescales every variable of p onto a res spaced grid
// over the same origin.
func ResampleProduct(p *CompositeProduct, res float64) (*CompositeProduct, error) {
	if res <= 0 {
		return nil, raster.InputErrorf("invalid output resolution %v", res)
	}
	scale := p.Grid.Resolution / res
	x0, y0 := p.Grid.Origin()
	grid := raster.NewGrid(x0, y0, res, ResampledSize(p.Width(), scale), ResampledSize(p.Height(), scale))

	out := derivedProduct(p, p.Name)
	out.Grid = grid
	out.Attrs = copyAttrs(p.Attrs)
	for _, v := range p.Vars {
		nv := &Variable{Name: v.Name, Categorical: v.Categorical, Attrs: copyAttrs(v.Attrs)}
		for _, d := range v.Data {
			r, _, _, err := Resample(d, p.Width(), p.Height(), scale, v.Categorical)
			if err != nil {
				return nil, fmt.Errorf("resample %s: %v", v.Name, err)
			}
			nv.Data = append(nv.Data, r)
		}
		out.Vars = append(out.Vars, nv)
	}
	return out, nil
}

func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
