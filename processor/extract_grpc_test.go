package processor

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
	pb "github.com/nci/gcube/worker/gdalservice"
)

func TestResultError(t *testing.T) {
	if err := ResultError(&pb.Result{Error: "OK"}); err != nil {
		t.Errorf("OK result gave %v", err)
	}
	if err := ResultError(&pb.Result{}); err == nil {
		t.Error("empty result accepted")
	}
	for _, err := range []error{
		raster.GeometryErrorf("Wanted ROI is outside the input product"),
		raster.ProductErrorf("B10 is not available"),
		raster.InputErrorf("unknown mask"),
	} {
		got := ResultError(ErrorResult(err))
		if raster.ErrorKind(got) != raster.ErrorKind(err) {
			t.Errorf("%v came back as %v", err, got)
		}
	}
	if got := ResultError(ErrorResult(fmt.Errorf("disk full"))); got == nil || raster.ErrorKind(got) != "" {
		t.Errorf("untyped error came back as %v", got)
	}
}

func TestItemWireForm(t *testing.T) {
	item := &BatchItem{
		ProductType:          "S2_THEIA",
		Path:                 "/data/SENTINEL2A_20200601.zip",
		Bands:                []string{"B4", "B8"},
		Formulas:             []string{"ndvi"},
		Apply:                []MaskRef{{"cloud", Exclude}, {"land", Include}},
		Region:               &region.Descriptor{Geometry: "POINT (1 2)", Encoding: "wkt", SRS: "EPSG:4326", Buffer: 50},
		OutResolution:        20,
		ProcessingResolution: 20,
		Options:              reader.Options{THEIABands: "FRE", Flags: true},
	}
	got, err := DecodeItem(EncodeItem(item))
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != item.Path || len(got.Bands) != 2 || got.OutResolution != 20 {
		t.Errorf("decoded %+v", got)
	}
	if len(got.Apply) != 2 || got.Apply[0].Polarity != Exclude || got.Apply[1].Polarity != Include {
		t.Errorf("mask references %+v", got.Apply)
	}
	if got.Region == nil || *got.Region != *item.Region {
		t.Errorf("region %+v", got.Region)
	}
	if got.Options.THEIABands != "FRE" || !got.Options.Flags {
		t.Errorf("options %+v", got.Options)
	}
}

func TestProductWireForm(t *testing.T) {
	nan := float32(math.NaN())
	p := singleVar("ndvi", 0, 20, 10, 2, 2, []float32{1, nan, 3, 4})
	p.Times = append(p.Times, p.Times[0].Add(24*time.Hour))
	p.Vars[0].Data = append(p.Vars[0].Data, []float32{5, 6, 7, 8})
	p.Attrs["title"] = "ndvi from S2_ESA_L1C"

	out, err := DecodeProducts(EncodeProducts([]*CompositeProduct{p}))
	if err != nil {
		t.Fatal(err)
	}
	q := out[0]
	if err := q.Check(); err != nil {
		t.Fatal(err)
	}
	if !q.Grid.Equal(p.Grid) || q.CRS != p.CRS || q.Attrs["title"] != p.Attrs["title"] {
		t.Errorf("decoded %+v", q)
	}
	if !q.Times[1].Equal(p.Times[1]) {
		t.Errorf("times %v", q.Times)
	}
	if !math.IsNaN(float64(q.Vars[0].Data[0][1])) || q.Vars[0].Data[1][3] != 8 {
		t.Errorf("data %v", q.Vars[0].Data)
	}

	broken := EncodeProducts([]*CompositeProduct{p})
	broken[0].Vars[0].Data = broken[0].Vars[0].Data[1:]
	if _, err := DecodeProducts(broken); err == nil {
		t.Error("short variable accepted")
	}
}
