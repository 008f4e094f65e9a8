package processor

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
)

func build(t *testing.T, cfg *BuilderConfig, item *BatchItem) []*CompositeProduct {
	t.Helper()
	products, err := (&LocalRunner{Config: cfg}).Run(context.Background(), item)
	if err != nil {
		t.Fatal(err)
	}
	return products
}

func near(a float32, b float64) bool {
	return math.Abs(float64(a)-b) < 1e-5
}

func TestBuilderAnchorResolution(t *testing.T) {
	op, dir := s2Product(t)
	cfg := testBuilderConfig(t, op, raster.BBox{})
	products := build(t, cfg, &BatchItem{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B2", "B5"}})

	if len(products) != 1 || products[0].Name != BandsProduct {
		t.Fatalf("unexpected products %v", products)
	}
	p := products[0]
	checkGrid(t, p.Grid, 6, 6)
	if p.Grid.Resolution != 20 || p.Grid.X[0] != 300010 || p.Grid.Y[0] != 4999990 {
		t.Errorf("grid at %vm starting (%v, %v)", p.Grid.Resolution, p.Grid.X[0], p.Grid.Y[0])
	}
	if names := p.VarNames(); names[0] != "B2" || names[1] != "B5" {
		t.Errorf("variables %v", names)
	}
	for i, v := range p.Vars[0].Data[0] {
		if !near(v, 0.1) {
			t.Fatalf("B2 pixel %d: %v", i, v)
		}
	}
	if err := p.Check(); err != nil {
		t.Error(err)
	}
	if p.Attrs["Convention"] != Convention || p.Attrs["title"] != "bands from S2_ESA_L1C" || p.Attrs["source"] != "ESA" {
		t.Errorf("unexpected attributes %v", p.Attrs)
	}
	if !strings.HasPrefix(p.Attrs["history"], "created with gcube (v") {
		t.Errorf("history %q", p.Attrs["history"])
	}
	if _, ok := p.Attrs["data_type"]; ok {
		t.Error("data_type must not be propagated")
	}
}

func TestBuilderOutputResolution(t *testing.T) {
	op, dir := s2Product(t)
	cfg := testBuilderConfig(t, op, raster.BBox{})

	// processing raised to 10, the 20m anchor upsampled
	p := build(t, cfg, &BatchItem{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B2", "B5"}, OutResolution: 10})[0]
	checkGrid(t, p.Grid, 12, 12)
	if p.Grid.X[0] != 300005 {
		t.Errorf("grid starts at %v", p.Grid.X[0])
	}

	// extraction at 20, outputs brought to 10 afterwards
	p = build(t, cfg, &BatchItem{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B2", "B5"}, OutResolution: 10, ProcessingResolution: 20})[0]
	checkGrid(t, p.Grid, 12, 12)
	if p.Attrs["resolution"] != "10" || p.Attrs["processing_resolution"] != "20" {
		t.Errorf("unexpected attributes %v", p.Attrs)
	}
	for i, v := range p.Vars[1].Data[0] {
		if !near(v, 0.05) {
			t.Fatalf("B5 pixel %d: %v", i, v)
		}
	}

	// the 60m anchor downsamples the 10m band
	p = build(t, cfg, &BatchItem{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B1", "B2"}, OutResolution: 60})[0]
	checkGrid(t, p.Grid, 2, 2)
	for _, v := range p.Vars[1].Data[0] {
		if !near(v, 0.1) {
			t.Errorf("B2 at 60m: %v", v)
		}
	}
}

func TestBuilderResolutionRules(t *testing.T) {
	op, dir := s2Product(t)
	cfg := testBuilderConfig(t, op, raster.BBox{})

	b := NewBuilder(cfg)
	if err := b.SetReader("S2_ESA_L1C", dir, 15, 0, reader.Options{}); !raster.IsInputError(err) {
		t.Errorf("15m output: expected an input error, got %v", err)
	}
	if err := b.SetReader("S2_ESA_L1C", dir, 0, 30, reader.Options{}); !raster.IsInputError(err) {
		t.Errorf("30m processing: expected an input error, got %v", err)
	}
	if err := b.SetReader("S2_THEIA", dir, 60, 0, reader.Options{}); !raster.IsInputError(err) {
		t.Errorf("60m THEIA output: expected an input error, got %v", err)
	}
	if err := b.SetReader("S2_ESA_L1C", dir, 20, 10, reader.Options{}); err != nil {
		t.Fatal(err)
	}
	if b.outRes != 20 || b.procRes != 20 {
		t.Errorf("resolutions %v/%v, want 20/20", b.outRes, b.procRes)
	}
	if err := b.SetReader("S2_ESA_L1C", dir, 0, 60, reader.Options{}); err != nil {
		t.Fatal(err)
	}
	if b.outRes != 60 || b.procRes != 60 {
		t.Errorf("resolutions %v/%v, want 60/60", b.outRes, b.procRes)
	}
	if err := b.SetReader("L8_USGS_L1C1", dir, 10, 20, reader.Options{}); err != nil {
		t.Fatal(err)
	}
	if b.outRes != 0 || b.procRes != 0 {
		t.Errorf("fixed resolution formats ignore requests, got %v/%v", b.outRes, b.procRes)
	}

	// a 60m output from a 10m anchor
	_, err := (&LocalRunner{Config: cfg}).Run(context.Background(), &BatchItem{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B2"}, OutResolution: 60})
	if !raster.IsInputError(err) {
		t.Errorf("expected an input error, got %v", err)
	}
}

func TestBuilderFormulasAndMasks(t *testing.T) {
	op, dir := s2Product(t)
	cfg := testBuilderConfig(t, op, raster.BBox{})
	products := build(t, cfg, &BatchItem{
		ProductType: "S2_ESA_L1C",
		Path:        dir,
		Formulas:    []string{"ndvi"},
		Masks:       []string{"bright"},
	})
	if len(products) != 2 || products[0].Name != "ndvi" || products[1].Name != "bright" {
		t.Fatalf("unexpected products %v", products)
	}
	ndvi := products[0]
	// B11 is the 20m anchor
	checkGrid(t, ndvi.Grid, 6, 6)
	for _, v := range ndvi.Vars[0].Data[0] {
		if !near(v, 1.0/3) {
			t.Fatalf("ndvi %v", v)
		}
	}
	if ndvi.Attrs["title"] != "ndvi from S2_ESA_L1C" {
		t.Errorf("title %q", ndvi.Attrs["title"])
	}
	for _, v := range products[1].Vars[0].Data[0] {
		if v != 1 {
			t.Fatalf("bright mask %v", v)
		}
	}
}

func TestBuilderAppliesComputedMasks(t *testing.T) {
	op, dir := s2Product(t)
	cfg := testBuilderConfig(t, op, raster.BBox{})

	p := build(t, cfg, &BatchItem{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B4"}, Apply: []MaskRef{{"dark", Exclude}}})[0]
	for _, v := range p.Vars[0].Data[0] {
		if !near(v, 0.04) {
			t.Fatalf("kept pixel %v", v)
		}
	}
	if p.Attrs["masks"] != "dark [OUT]" {
		t.Errorf("masks attribute %q", p.Attrs["masks"])
	}
	if len(p.VarNames()) != 1 {
		t.Errorf("mask bands leaked into the outputs: %v", p.VarNames())
	}

	p = build(t, cfg, &BatchItem{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B4"}, Apply: []MaskRef{{"bright", Exclude}}})[0]
	for _, v := range p.Vars[0].Data[0] {
		if !math.IsNaN(float64(v)) {
			t.Fatalf("discarded pixel %v", v)
		}
	}
}

func TestBuilderRegion(t *testing.T) {
	op, dir := s2Product(t)
	roi, err := region.FromWKT("POINT (2.5 45.1)", "")
	if err != nil {
		t.Fatal(err)
	}

	inside := testBuilderConfig(t, op, raster.BBox{MinX: 300025, MinY: 4999905, MaxX: 300055, MaxY: 4999975})
	p := build(t, inside, &BatchItem{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B2", "B5"}, Region: roi})[0]
	checkGrid(t, p.Grid, 2, 4)
	if p.Grid.X[0] != 300030 || p.Grid.Y[0] != 4999970 {
		t.Errorf("grid starts at (%v, %v)", p.Grid.X[0], p.Grid.Y[0])
	}

	outside := testBuilderConfig(t, op, raster.BBox{MinX: 400000, MinY: 4000000, MaxX: 400100, MaxY: 4000100})
	_, err = (&LocalRunner{Config: outside}).Run(context.Background(), &BatchItem{ProductType: "S2_ESA_L1C", Path: dir, Bands: []string{"B2"}, Region: roi})
	if !raster.IsGeometryError(err) {
		t.Errorf("expected a geometry error, got %v", err)
	}
}

func TestBuilderStates(t *testing.T) {
	op, dir := s2Product(t)
	cfg := testBuilderConfig(t, op, raster.BBox{})
	b := NewBuilder(cfg)

	var se *StateError
	if err := b.Extract(); !errors.As(err, &se) || se.State != StateEmpty {
		t.Errorf("extract before configuration: %v", err)
	}
	if err := b.SetBands([]string{"B4"}); err != nil {
		t.Fatal(err)
	}
	if err := b.RequireMasks([]string{"dark"}); err != nil {
		t.Fatal(err)
	}
	if b.State() != StateEmpty {
		t.Errorf("state %v without a reader", b.State())
	}
	if err := b.SetReader("S2_ESA_L1C", dir, 0, 0, reader.Options{}); err != nil {
		t.Fatal(err)
	}
	if b.State() != StateConfigured {
		t.Errorf("state %v", b.State())
	}
	if err := b.Compute(); !errors.As(err, &se) || se.State != StateConfigured {
		t.Errorf("compute before extract: %v", err)
	}
	if _, err := b.Products(); !errors.As(err, &se) {
		t.Errorf("products before compute: %v", err)
	}
	if err := b.Extract(); err != nil {
		t.Fatal(err)
	}
	if err := b.SetBands([]string{"B3"}); !errors.As(err, &se) || se.State != StateExtracted {
		t.Errorf("configuration after extract: %v", err)
	}
	if err := b.Mask(); !errors.As(err, &se) {
		t.Errorf("mask before compute: %v", err)
	}
	if err := b.Compute(); err != nil {
		t.Fatal(err)
	}
	l, err := b.ComputeMaskLayer("dark", Exclude)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Mask(l); err != nil {
		t.Fatal(err)
	}
	if b.State() != StateMasked {
		t.Errorf("state %v", b.State())
	}
	products, err := b.Products()
	if err != nil || len(products) != 1 {
		t.Fatalf("products %v, %v", products, err)
	}
	if b.State() != StateConsumed {
		t.Errorf("state %v", b.State())
	}
	if _, err := b.Products(); !errors.As(err, &se) || se.State != StateConsumed {
		t.Errorf("second retrieval: %v", err)
	}

	// a consumed builder starts over
	if err := b.SetReader("S2_ESA_L1C", dir, 0, 0, reader.Options{}); err != nil {
		t.Fatal(err)
	}
	if err := b.Extract(); !raster.IsInputError(err) {
		t.Errorf("extract without outputs: expected an input error, got %v", err)
	}
}

func TestBuilderUnknownNames(t *testing.T) {
	op, _ := s2Product(t)
	b := NewBuilder(testBuilderConfig(t, op, raster.BBox{}))
	if err := b.SetFormulas([]string{"evi"}); !raster.IsInputError(err) {
		t.Errorf("expected an input error, got %v", err)
	}
	if err := b.SetMasks([]string{"snow"}); !raster.IsInputError(err) {
		t.Errorf("expected an input error, got %v", err)
	}
	if err := b.SetReader("S2_ESA_L9", "x", 0, 0, reader.Options{}); !raster.IsInputError(err) {
		t.Errorf("expected an input error, got %v", err)
	}
}
