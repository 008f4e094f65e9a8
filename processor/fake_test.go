package processor

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
	"github.com/nci/gcube/utils"
)

type memOpener map[string]func() *raster.MemDataset

func (o memOpener) Open(path string) (raster.Dataset, error) {
	fn, ok := o[path]
	if !ok {
		return nil, fmt.Errorf("no such dataset: %s", path)
	}
	return fn(), nil
}

type boxEngine raster.BBox

func (e boxEngine) Transform(d *region.Descriptor, dst string) (string, raster.BBox, error) {
	return d.Geometry, raster.BBox(e), nil
}

func (e boxEngine) ReadVector(path string) (string, string, error) {
	return "", "", fmt.Errorf("not supported")
}

func constBand(desc string, width, height int, v float32) raster.MemBand {
	b := raster.MemBand{Description: desc, Data: make([]float32, width*height)}
	for i := range b.Data {
		b.Data[i] = v
	}
	return b
}

// s2Product writes an L1C metadata file and serves its 10, 20 and
// 60 m subdatasets over a 120 m square whose top-left corner is
// (300000, 5000000).
func s2Product(t *testing.T) (memOpener, string) {
	t.Helper()
	dir := t.TempDir()
	mtd := filepath.Join(dir, "MTD_MSIL1C.xml")
	if err := os.WriteFile(mtd, []byte("<xml/>"), 0644); err != nil {
		t.Fatal(err)
	}
	gt := func(res float64) raster.GeoTransform {
		return raster.GeoTransform{300000, res, 0, 5000000, 0, -res}
	}
	tags := map[string]string{
		"PROCESSING_LEVEL":     "Level-1C",
		"QUANTIFICATION_VALUE": "10000",
		"SPECIAL_VALUE_NODATA": "0",
		"PRODUCT_START_TIME":   "2020-06-01T10:30:31.024Z",
	}
	sub := func(group string) string { return "SENTINEL2_L1C:" + mtd + ":" + group + ":EPSG_32631" }

	op := memOpener{}
	op[mtd] = func() *raster.MemDataset {
		return &raster.MemDataset{Meta: map[string]map[string]string{
			"": tags,
			"SUBDATASETS": {
				"SUBDATASET_1_NAME": sub("10m"),
				"SUBDATASET_2_NAME": sub("20m"),
				"SUBDATASET_3_NAME": sub("60m"),
				"SUBDATASET_4_NAME": sub("TCI"),
			},
		}}
	}
	op[sub("10m")] = func() *raster.MemDataset {
		return &raster.MemDataset{Width: 12, Height: 12, Transform: gt(10), CRS: "EPSG:32631",
			Bands: []raster.MemBand{
				constBand("B4, central wavelength 665 nm", 12, 12, 400),
				constBand("B3, central wavelength 560 nm", 12, 12, 300),
				constBand("B2, central wavelength 490 nm", 12, 12, 1000),
				constBand("B8, central wavelength 842 nm", 12, 12, 800),
			}}
	}
	op[sub("20m")] = func() *raster.MemDataset {
		return &raster.MemDataset{Width: 6, Height: 6, Transform: gt(20), CRS: "EPSG:32631",
			Bands: []raster.MemBand{
				constBand("B5, central wavelength 705 nm", 6, 6, 500),
				constBand("B11, central wavelength 1610 nm", 6, 6, 1100),
			}}
	}
	op[sub("60m")] = func() *raster.MemDataset {
		return &raster.MemDataset{Width: 2, Height: 2, Transform: gt(60), CRS: "EPSG:32631",
			Bands: []raster.MemBand{
				constBand("B1, central wavelength 443 nm", 2, 2, 100),
			}}
	}
	return op, dir
}

func testBuilderConfig(t *testing.T, op raster.Opener, roi raster.BBox) *BuilderConfig {
	t.Helper()
	reg, err := reader.NewRegistry(&reader.Env{
		Opener:   op,
		Resolver: region.NewResolver(boxEngine(roi)),
		Tables:   reader.DefaultTables(),
	})
	if err != nil {
		t.Fatal(err)
	}
	ndvi, err := NewFormula(utils.Formula{Name: "ndvi", Expression: "(B8 - B4) / (B8 + B4)"})
	if err != nil {
		t.Fatal(err)
	}
	bright, err := NewMaskDef(utils.Mask{ID: "bright", Expression: "B11 > 0.1", Inclusive: true})
	if err != nil {
		t.Fatal(err)
	}
	dark, err := NewMaskDef(utils.Mask{ID: "dark", Expression: "B11 < 0.1", Inclusive: true})
	if err != nil {
		t.Fatal(err)
	}
	return &BuilderConfig{
		Registry: reg,
		Formulas: map[string]*Formula{"ndvi": ndvi},
		Masks:    map[string]*MaskDef{"bright": bright, "dark": dark},
	}
}
