package metrics

import (
	"bytes"
	"encoding/json"
	"time"
)

// ProductInfo summarises one output cube.
type ProductInfo struct {
	Name      string   `json:"name"`
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	TimeSteps int      `json:"time_steps"`
	Variables []string `json:"variables"`
	Bytes     int64    `json:"bytes"`
}

// ExtractionInfo is the record of one product extraction.
type ExtractionInfo struct {
	ReqTime              string         `json:"req_time"`
	Duration             time.Duration  `json:"duration"`
	RunID                string         `json:"run_id"`
	ItemID               string         `json:"item_id"`
	Worker               string         `json:"worker"`
	ProductType          string         `json:"product_type"`
	Path                 string         `json:"path"`
	Bands                []string       `json:"bands,omitempty"`
	Formulas             []string       `json:"formulas,omitempty"`
	Masks                []string       `json:"masks,omitempty"`
	Region               string         `json:"region,omitempty"`
	RegionSRS            string         `json:"region_srs,omitempty"`
	OutResolution        float64        `json:"out_resolution,omitempty"`
	ProcessingResolution float64        `json:"processing_resolution,omitempty"`
	Status               string         `json:"status"`
	Error                string         `json:"error,omitempty"`
	ErrorKind            string         `json:"error_kind,omitempty"`
	Products             []*ProductInfo `json:"products,omitempty"`
	BytesProduced        int64          `json:"bytes_produced"`
}

const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

type MetricsCollector struct {
	Info   *ExtractionInfo
	logger Logger
}

func NewMetricsCollector(logger Logger) *MetricsCollector {
	return &MetricsCollector{
		Info:   &ExtractionInfo{ReqTime: time.Now().UTC().Format(time.RFC3339)},
		logger: logger,
	}
}

func (m *MetricsCollector) Log() {
	if m.logger != nil {
		m.logger.Log(m.Info)
	}
}

// ToJSON encodes the record as one JSON line.
func (i *ExtractionInfo) ToJSON() (string, error) {
	i.BytesProduced = 0
	for _, p := range i.Products {
		i.BytesProduced += p.Bytes
	}
	if len(i.Status) == 0 {
		i.Status = StatusOK
		if len(i.Error) > 0 {
			i.Status = StatusFailed
		}
	}

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(i); err != nil {
		return "", err
	}
	return buf.String(), nil
}
