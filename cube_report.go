package main

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/edisonguo/jet"

	"github.com/nci/gcube/processor"
	"github.com/nci/gcube/raster"
)

const defaultReport = `run {{ .RunID }}: {{ .Succeeded }}/{{ .Total }} products in {{ .Duration }}
{{ range i, r := .Rows }}{{ r.Status }} {{ r.ProductType }} {{ r.Path }} ({{ r.Duration }})
{{ if r.Failed }}  error ({{ r.ErrorKind }}): {{ r.Error }}
{{ end }}{{ range j, p := r.Products }}  {{ p.Name }}: {{ p.Size }}, {{ p.Times }}, {{ p.Vars }}, {{ p.Bytes }}
{{ end }}{{ end }}{{ range k, p := .Series }}series {{ p.Name }}: {{ p.Size }}, {{ p.Times }}, {{ p.Vars }}, {{ p.Bytes }}
{{ end }}`

type reportView struct {
	RunID    string
	Duration time.Duration
	Results  []*processor.BatchResult
	Series   []*processor.CompositeProduct
}

// The template sees preformatted strings only.
type reportData struct {
	RunID     string
	Duration  string
	Succeeded int
	Total     int
	Rows      []*reportRow
	Series    []*reportProduct
}

type reportRow struct {
	Status      string
	ProductType string
	Path        string
	Duration    string
	Failed      bool
	Error       string
	ErrorKind   string
	Products    []*reportProduct
}

type reportProduct struct {
	Name  string
	Size  string
	Times string
	Vars  string
	Bytes string
}

func describeProduct(p *processor.CompositeProduct) *reportProduct {
	var n uint64
	for _, v := range p.Vars {
		for _, d := range v.Data {
			n += uint64(len(d)) * 4
		}
	}
	times := fmt.Sprintf("%d time steps", len(p.Times))
	if len(p.Times) == 1 {
		times = p.Times[0].UTC().Format(time.RFC3339)
	}
	return &reportProduct{
		Name:  p.Name,
		Size:  fmt.Sprintf("%dx%d %s", p.Width(), p.Height(), p.CRS),
		Times: times,
		Vars:  strings.Join(p.VarNames(), " "),
		Bytes: humanize.Bytes(n),
	}
}

func newReportData(v *reportView) *reportData {
	d := &reportData{RunID: v.RunID, Duration: v.Duration.Round(time.Millisecond).String(), Total: len(v.Results)}
	for _, r := range v.Results {
		row := &reportRow{
			Status:      "OK",
			ProductType: r.Item.ProductType,
			Path:        r.Item.Path,
			Duration:    r.Duration.Round(time.Millisecond).String(),
		}
		if r.Err != nil {
			row.Status = "FAILED"
			row.Failed = true
			row.Error = r.Err.Error()
			row.ErrorKind = raster.ErrorKind(r.Err)
			if len(row.ErrorKind) == 0 {
				row.ErrorKind = "processing"
			}
		} else {
			d.Succeeded++
		}
		for _, p := range r.Products {
			row.Products = append(row.Products, describeProduct(p))
		}
		d.Rows = append(d.Rows, row)
	}
	for _, p := range v.Series {
		d.Series = append(d.Series, describeProduct(p))
	}
	return d
}

// renderReport executes the report template at path, or the built-in
// one.
func renderReport(path string, v *reportView) ([]byte, error) {
	name, content := "report.tpl", defaultReport
	if len(path) > 0 {
		b, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, err
		}
		name, content = path, string(b)
	}

	view := jet.NewSet(jet.SafeWriter(func(w io.Writer, b []byte) {
		w.Write(b)
	}), ".", "/")
	tmpl, err := view.LoadTemplate(name, content)
	if err != nil {
		return nil, fmt.Errorf("report template: %v", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, make(jet.VarMap), newReportData(v)); err != nil {
		return nil, fmt.Errorf("report template: %v", err)
	}
	return buf.Bytes(), nil
}
