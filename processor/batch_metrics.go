package processor

import (
	"github.com/nci/gcube/metrics"
	"github.com/nci/gcube/raster"
)

// ResultMetrics builds the metrics record of a finished item.
func ResultMetrics(runID, worker string, r *BatchResult) *metrics.ExtractionInfo {
	item := r.Item
	info := &metrics.ExtractionInfo{
		Duration:             r.Duration,
		RunID:                runID,
		ItemID:               r.ID,
		Worker:               worker,
		ProductType:          item.ProductType,
		Path:                 item.Path,
		Bands:                item.Bands,
		Formulas:             item.Formulas,
		Masks:                item.Masks,
		OutResolution:        item.OutResolution,
		ProcessingResolution: item.ProcessingResolution,
	}
	if item.Region != nil {
		info.Region = item.Region.Geometry
		info.RegionSRS = item.Region.SRS
	}
	if r.Err != nil {
		info.Status = metrics.StatusFailed
		info.Error = r.Err.Error()
		info.ErrorKind = raster.ErrorKind(r.Err)
	}

	for _, p := range r.Products {
		pi := &metrics.ProductInfo{
			Name:      p.Name,
			Width:     p.Width(),
			Height:    p.Height(),
			TimeSteps: len(p.Times),
			Variables: p.VarNames(),
		}
		for _, v := range p.Vars {
			for _, d := range v.Data {
				pi.Bytes += int64(len(d)) * 4
			}
		}
		info.Products = append(info.Products, pi)
	}
	return info
}

// ResultLogger returns an OnResult callback that logs each item's
// metrics record.
func ResultLogger(logger metrics.Logger, runID, worker string) func(*BatchResult) {
	return func(r *BatchResult) {
		mc := metrics.NewMetricsCollector(logger)
		info := ResultMetrics(runID, worker, r)
		info.ReqTime = mc.Info.ReqTime
		mc.Info = info
		mc.Log()
	}
}
