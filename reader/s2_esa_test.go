package reader

import (
	"math"
	"testing"
	"time"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/region"
)

func safeProduct(t *testing.T) (*fakeOpener, string) {
	dir := t.TempDir()
	mtd := touch(t, dir, "MTD_MSIL1C.xml", []byte("<xml/>"))

	tags := map[string]string{
		"PROCESSING_LEVEL":     "Level-1C",
		"QUANTIFICATION_VALUE": "10000",
		"SPECIAL_VALUE_NODATA": "0",
		"PRODUCT_START_TIME":   "2020-06-01T10:30:31.024Z",
	}
	sub10 := "SENTINEL2_L1C:" + mtd + ":10m:EPSG_32631"
	sub20 := "SENTINEL2_L1C:" + mtd + ":20m:EPSG_32631"
	sub60 := "SENTINEL2_L1C:" + mtd + ":60m:EPSG_32631"
	tci := "SENTINEL2_L1C:" + mtd + ":TCI:EPSG_32631"

	op := newFakeOpener()
	op.add(mtd, func() *raster.MemDataset {
		return &raster.MemDataset{Meta: map[string]map[string]string{
			"": tags,
			"SUBDATASETS": {
				"SUBDATASET_1_NAME": sub10,
				"SUBDATASET_2_NAME": sub20,
				"SUBDATASET_3_NAME": sub60,
				"SUBDATASET_4_NAME": tci,
			},
		}}
	})
	op.add(sub10, func() *raster.MemDataset {
		return &raster.MemDataset{Width: 12, Height: 12, Transform: utmGT(10), CRS: "EPSG:32631",
			Bands: []raster.MemBand{
				band("B4, central wavelength 665 nm", 12, 12, constant(400)),
				band("B3, central wavelength 560 nm", 12, 12, constant(300)),
				band("B2, central wavelength 490 nm", 12, 12, func(r, c int) float32 {
					if r == 0 && c == 0 {
						return 0
					}
					return 1000
				}),
				band("B8, central wavelength 842 nm", 12, 12, constant(800)),
			}}
	})
	op.add(sub20, func() *raster.MemDataset {
		return &raster.MemDataset{Width: 6, Height: 6, Transform: utmGT(20), CRS: "EPSG:32631",
			Bands: []raster.MemBand{
				band("B5, central wavelength 705 nm", 6, 6, constant(500)),
				band("B11, central wavelength 1610 nm", 6, 6, constant(1100)),
			}}
	})
	op.add(sub60, func() *raster.MemDataset {
		return &raster.MemDataset{Width: 2, Height: 2, Transform: utmGT(60), CRS: "EPSG:32631",
			Bands: []raster.MemBand{
				band("B1, central wavelength 443 nm", 2, 2, constant(100)),
			}}
	})
	return op, dir
}

func TestS2ESAOrderAndDecoding(t *testing.T) {
	op, dir := safeProduct(t)
	reg, err := NewRegistry(newEnv(op, nil))
	if err != nil {
		t.Fatal(err)
	}

	h, err := reg.Open("S2_ESA_L1C", dir, []string{"B2", "B5", "B1"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	bands := h.Bands()
	if len(bands) != 3 || bands[0] != "B1" || bands[1] != "B5" || bands[2] != "B2" {
		t.Errorf("expected coarsest group first, got %v", bands)
	}
	if h.CRS() != "EPSG:32631" {
		t.Errorf("unexpected CRS %q", h.CRS())
	}
	want := time.Date(2020, 6, 1, 10, 30, 31, 24000000, time.UTC)
	if !h.Acquired().Equal(want) {
		t.Errorf("acquired %v, want %v", h.Acquired(), want)
	}

	win, err := h.ResolveWindow(nil)
	if err != nil {
		t.Fatal(err)
	}
	if win.Width() != 2 || win.Height() != 2 {
		t.Errorf("anchor window %+v", win)
	}

	b2, err := h.Extract("B2", win)
	if err != nil {
		t.Fatal(err)
	}
	if b2.Width != 12 || b2.Height != 12 || b2.Resolution != 10 {
		t.Errorf("unexpected B2 sample %dx%d at %v", b2.Width, b2.Height, b2.Resolution)
	}
	if !math.IsNaN(float64(b2.Data[0])) {
		t.Errorf("nodata not mapped to NaN: %v", b2.Data[0])
	}
	if math.Abs(float64(b2.Data[1])-0.1) > 1e-6 {
		t.Errorf("reflectance %v, want 0.1", b2.Data[1])
	}

	b1, err := h.Extract("B1", win)
	if err != nil {
		t.Fatal(err)
	}
	if b1.Resolution != 60 || b1.Width != 2 {
		t.Errorf("unexpected B1 sample %+v", b1)
	}

	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if n := op.stillOpen(); n != 0 {
		t.Errorf("%d datasets left open", n)
	}
}

func TestS2ESARegionWindow(t *testing.T) {
	op, dir := safeProduct(t)
	env := newEnv(op, map[string]raster.BBox{
		"EPSG:32631": {MinX: 300070, MinY: 4999900, MaxX: 300100, MaxY: 4999930},
	})
	reg, _ := NewRegistry(env)
	h, err := reg.Open("S2_ESA_L1C", dir, []string{"B2", "B1"}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	roi, _ := region.FromWKT("POLYGON ((2.1 45.1, 2.2 45.1, 2.2 45.2, 2.1 45.1))", "")
	win, err := h.ResolveWindow(roi)
	if err != nil {
		t.Fatal(err)
	}
	if win.ColStart != 1 || win.ColStop != 1 || win.RowStart != 1 || win.RowStop != 1 {
		t.Fatalf("unexpected anchor window %+v", win)
	}
	b2, err := h.Extract("B2", win)
	if err != nil {
		t.Fatal(err)
	}
	if b2.Window.ColStart != 6 || b2.Window.ColStop != 11 || b2.Width != 6 {
		t.Errorf("B2 not aligned on the anchor pixel: %+v", b2.Window)
	}

	far, _ := region.FromWKT("POINT (100 10)", "")
	env.Resolver = region.NewResolver(&fakeEngine{bounds: map[string]raster.BBox{
		"EPSG:32631": {MinX: 900000, MinY: 100, MaxX: 900100, MaxY: 200},
	}})
	if _, err := h.ResolveWindow(far); !raster.IsGeometryError(err) {
		t.Errorf("expected geometry error, got %v", err)
	}
}

func TestS2ESAMissingBand(t *testing.T) {
	op, dir := safeProduct(t)
	reg, _ := NewRegistry(newEnv(op, nil))

	if _, err := reg.Open("S2_ESA_L1C", dir, []string{"B2", "B10"}, Options{}); !raster.IsProductError(err) {
		t.Errorf("expected product error for absent band, got %v", err)
	}
	if _, err := reg.Open("S2_ESA_L1C", dir, []string{"B13"}, Options{}); !raster.IsProductError(err) {
		t.Errorf("expected product error for unknown band, got %v", err)
	}
	if _, err := reg.Open("S2_UNKNOWN", dir, []string{"B2"}, Options{}); !raster.IsInputError(err) {
		t.Errorf("expected input error for unknown product type, got %v", err)
	}
	if n := op.stillOpen(); n != 0 {
		t.Errorf("%d datasets left open after failed opens", n)
	}
}
