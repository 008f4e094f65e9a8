package main

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nci/gcube/processor"
	"github.com/nci/gcube/raster"
)

func TestParseApply(t *testing.T) {
	refs, err := parseApply("cloud, water:include ,shadow:OUT")
	if err != nil {
		t.Fatal(err)
	}
	want := []processor.MaskRef{{"cloud", processor.Exclude}, {"water", processor.Include}, {"shadow", processor.Exclude}}
	if len(refs) != len(want) {
		t.Fatalf("got %v", refs)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("ref %d: got %v, want %v", i, refs[i], want[i])
		}
	}
	if _, err := parseApply("cloud:maybe"); !raster.IsInputError(err) {
		t.Errorf("bad polarity: %v", err)
	}
}

func TestReadProductList(t *testing.T) {
	list := `# products of June
S2_THEIA /data/SENTINEL2B_20190604-103902-224_L2A_T31TFJ_C_V2-2
/data/S2A_MSIL1C_20190604T103031_N0207_R108_T31TFJ_20190604T124235.SAFE	S2_ESA_L1C	{"id":"x","path":"/data/S2A_MSIL1C_20190604T103031_N0207_R108_T31TFJ_20190604T124235.SAFE","product_type":"S2_ESA_L1C","acquired":"2019-06-04T10:30:31Z"}
{"id":"y","path":"/data/c2rcc.nc","product_type":"S2_C2RCC","acquired":"2019-06-09T10:30:31Z"}

/data/LC08_L1TP_196030_20190811_20190820_01_T1.tar.gz
`
	recs, err := readProductList(strings.NewReader(list), "L8_USGS_L1C1")
	if err != nil {
		t.Fatal(err)
	}
	types := []string{"S2_THEIA", "S2_ESA_L1C", "S2_C2RCC", "L8_USGS_L1C1"}
	if len(recs) != len(types) {
		t.Fatalf("got %d records", len(recs))
	}
	for i, pt := range types {
		if recs[i].ProductType != pt || !strings.HasPrefix(recs[i].Path, "/data/") {
			t.Errorf("record %d: %+v", i, recs[i])
		}
	}

	items := processor.CatalogueItems(recs, &processor.BatchItem{Bands: []string{"B4"}})
	if items[2].Options.SensingDate != "2019-06-09" || items[0].Options.SensingDate != "" {
		t.Errorf("sensing dates %q %q", items[0].Options.SensingDate, items[2].Options.SensingDate)
	}

	if _, err := readProductList(strings.NewReader("/data/a.SAFE\n"), ""); err == nil {
		t.Error("bare path accepted without a default product type")
	}
}

func TestRenderReport(t *testing.T) {
	p := &processor.CompositeProduct{
		Name:  "S2_ESA_L1C",
		CRS:   "EPSG:32631",
		Grid:  raster.NewGrid(300000, 5000000, 20, 3, 2),
		Times: []time.Time{time.Date(2019, 6, 4, 10, 30, 31, 0, time.UTC)},
		Vars: []*processor.Variable{
			{Name: "B4", Data: [][]float32{make([]float32, 6)}},
			{Name: "B8", Data: [][]float32{make([]float32, 6)}},
		},
	}
	v := &reportView{
		RunID:    "run-1",
		Duration: 1500 * time.Millisecond,
		Results: []*processor.BatchResult{
			{Item: &processor.BatchItem{ProductType: "S2_ESA_L1C", Path: "/data/a.SAFE"}, Products: []*processor.CompositeProduct{p}, Duration: time.Second},
			{Item: &processor.BatchItem{ProductType: "S2_THEIA", Path: "/data/b"}, Err: raster.GeometryErrorf("Wanted ROI is outside the input product")},
			{Item: &processor.BatchItem{ProductType: "S2_THEIA", Path: "/data/c"}, Err: fmt.Errorf("disk full")},
		},
		Series: []*processor.CompositeProduct{p},
	}
	out, err := renderReport("", v)
	if err != nil {
		t.Fatal(err)
	}
	s := string(out)
	for _, want := range []string{
		"run run-1: 1/3 products in 1.5s",
		"OK S2_ESA_L1C /data/a.SAFE (1s)",
		"  S2_ESA_L1C: 3x2 EPSG:32631, 2019-06-04T10:30:31Z, B4 B8, 48 B",
		"FAILED S2_THEIA /data/b",
		"error (geometry): geometry error: Wanted ROI",
		"error (processing): disk full",
		"series S2_ESA_L1C: 3x2",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("%q missing from:\n%s", want, s)
		}
	}
}
