package processor

import (
	"context"
	"testing"
	"time"

	"github.com/nci/gcube/metrics"
	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/region"
)

type memLogger struct {
	infos []*metrics.ExtractionInfo
}

func (l *memLogger) Log(info *metrics.ExtractionInfo) { l.infos = append(l.infos, info) }

func TestResultMetrics(t *testing.T) {
	r := &BatchResult{
		ID: "item",
		Item: &BatchItem{
			ProductType: "S2_ESA_L1C", Path: "p", Bands: []string{"B2"},
			Region: &region.Descriptor{Geometry: "POINT (3 45)", SRS: "EPSG:4326"},
		},
		Products: []*CompositeProduct{singleVar("B2", 0, 40, 20, 2, 2, nil)},
		Duration: time.Second,
	}
	info := ResultMetrics("run", "local", r)
	if info.RunID != "run" || info.ItemID != "item" || info.RegionSRS != "EPSG:4326" || info.Status != "" {
		t.Errorf("got %+v", info)
	}
	if len(info.Products) != 1 || info.Products[0].Bytes != 16 || info.Products[0].Variables[0] != "B2" {
		t.Errorf("products %+v", info.Products)
	}

	r.Err = raster.GeometryErrorf("region outside product")
	r.Products = nil
	info = ResultMetrics("run", "local", r)
	if info.Status != metrics.StatusFailed || info.ErrorKind != "geometry" || len(info.Products) != 0 {
		t.Errorf("got %+v", info)
	}
}

func TestResultLogger(t *testing.T) {
	l := &memLogger{}
	bp := NewBatchPipeline(runnerFunc(func(_ context.Context, item *BatchItem) ([]*CompositeProduct, error) {
		return nil, nil
	}), 1, false, 0)
	bp.OnResult = ResultLogger(l, bp.RunID, "local")
	if _, err := bp.Run(context.Background(), items("a", "b")); err != nil {
		t.Fatal(err)
	}
	if len(l.infos) != 2 || l.infos[0].RunID != bp.RunID || l.infos[0].ReqTime == "" {
		t.Errorf("logged %+v", l.infos)
	}
}
