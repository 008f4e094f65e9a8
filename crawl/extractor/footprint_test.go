package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
)

const landsatMTL = `GROUP = L1_METADATA_FILE
  GROUP = PRODUCT_METADATA
    DATE_ACQUIRED = 2019-08-11
    SCENE_CENTER_TIME = "10:31:23.4591950Z"
  END_GROUP = PRODUCT_METADATA
  GROUP = IMAGE_ATTRIBUTES
    SUN_ELEVATION = 30.00000000
  END_GROUP = IMAGE_ATTRIBUTES
  GROUP = RADIOMETRIC_RESCALING
    REFLECTANCE_MULT_BAND_4 = 2.0000E-05
    REFLECTANCE_ADD_BAND_4 = -0.100000
  END_GROUP = RADIOMETRIC_RESCALING
END_GROUP = L1_METADATA_FILE
END
`

type mapOpener map[string]*raster.MemDataset

func (o mapOpener) Open(path string) (raster.Dataset, error) {
	ds, ok := o[path]
	if !ok {
		return nil, fmt.Errorf("no such dataset: %s", path)
	}
	return ds, nil
}

// wgs84Engine records the geometry it was asked to reproject.
type wgs84Engine struct {
	got *region.Descriptor
}

func (e *wgs84Engine) Transform(d *region.Descriptor, dst string) (string, raster.BBox, error) {
	if dst != region.DefaultSRS {
		return "", raster.BBox{}, fmt.Errorf("unexpected target %s", dst)
	}
	e.got = d
	return "POLYGON ((0.5 45, 1 45, 1 44.5, 0.5 44.5, 0.5 45))", raster.BBox{MinX: 0.5, MinY: 44.5, MaxX: 1, MaxY: 45}, nil
}

func (e *wgs84Engine) ReadVector(string) (string, string, error) {
	return "", "", fmt.Errorf("not supported")
}

func TestFootprint(t *testing.T) {
	id := "LC08_L1TP_196030_20190811_20190820_01_T1"
	dir := filepath.Join(t.TempDir(), id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	for name, content := range map[string]string{id + "_MTL.txt": landsatMTL, id + "_B4.TIF": ""} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	op := mapOpener{filepath.Join(dir, id+"_B4.TIF"): {
		Width: 4, Height: 2, CRS: "EPSG:32631",
		Transform: raster.GeoTransform{300000, 30, 0, 5000000, 0, -30},
		Bands:     []raster.MemBand{{Data: make([]float32, 8)}},
	}}
	engine := &wgs84Engine{}
	resolver := region.NewResolver(engine)
	reg, err := reader.NewRegistry(&reader.Env{Opener: op, Resolver: resolver})
	if err != nil {
		t.Fatal(err)
	}

	m, err := Identify(DefaultRules, id)
	if err != nil || m == nil {
		t.Fatalf("identify: %v, %v", m, err)
	}
	rec := &ProductRecord{Path: dir, ProductType: m.ProductType, Acquired: m.Acquired}
	f := &Footprinter{Registry: reg, Resolver: resolver}
	if err := f.Fill(rec); err != nil {
		t.Fatal(err)
	}

	if rec.CRS != "EPSG:32631" || !strings.HasPrefix(rec.Polygon, "POLYGON ((0.5 45") {
		t.Errorf("got %+v", rec)
	}
	want := "POLYGON ((300000 5000000, 300120 5000000, 300120 4999940, 300000 4999940, 300000 5000000))"
	if engine.got == nil || engine.got.Geometry != want || engine.got.SRS != "EPSG:32631" {
		t.Errorf("reprojected %+v", engine.got)
	}
	if !rec.Acquired.Equal(time.Date(2019, 8, 11, 10, 31, 23, 459195000, time.UTC)) {
		t.Errorf("acquired %v", rec.Acquired)
	}

	rec = &ProductRecord{Path: dir, ProductType: "S2_MSI"}
	if err := f.Fill(rec); !raster.IsInputError(err) {
		t.Errorf("unknown product type: %v", err)
	}
}
