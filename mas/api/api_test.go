package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	extr "github.com/nci/gcube/crawl/extractor"
)

type fakeCatalogue struct {
	query    *catalogueQuery
	ingested []*extr.ProductRecord
}

func (c *fakeCatalogue) Intersects(ctx context.Context, q *catalogueQuery) ([]byte, error) {
	c.query = q
	return []byte(`{"products": []}`), nil
}

func (c *fakeCatalogue) Ingest(ctx context.Context, recs []*extr.ProductRecord) (int, error) {
	c.ingested = append(c.ingested, recs...)
	return len(recs), nil
}

func TestIntersects(t *testing.T) {
	cat := &fakeCatalogue{}
	s := &server{cat: cat}

	form := url.Values{"wkt": {"POLYGON ((0 0, 1 0, 1 1, 0 0))"}}
	req := httptest.NewRequest("POST", "/?intersects&srs=EPSG:32631&time=2019-06-01&until=2019-07-01T00:00:00Z&product_type=S2_THEIA,S2_ESA_L1C&limit=5", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.handler(rec, req)

	if rec.Code != 200 || rec.Body.String() != `{"products": []}` {
		t.Fatalf("%d %s", rec.Code, rec.Body.String())
	}
	q := cat.query
	if q.SRID != 32631 || q.WKT != form.Get("wkt") || q.Limit != 5 || len(q.ProductTypes) != 2 {
		t.Errorf("got %+v", q)
	}
	if !q.Start.Equal(time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC)) || !q.End.Equal(time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("time range %v %v", q.Start, q.End)
	}
}

func TestIntersectsRejects(t *testing.T) {
	s := &server{cat: &fakeCatalogue{}}
	for _, query := range []string{
		"?intersects&srs=+proj=utm",
		"?intersects&time=yesterday",
		"?intersects&time=2019-07-01&until=2019-06-01",
		"?intersects&limit=-1",
		"?drill",
	} {
		rec := httptest.NewRecorder()
		s.handler(rec, httptest.NewRequest("GET", "/"+query, nil))
		if rec.Code != 400 {
			t.Errorf("%s: status %d", query, rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body["error"]) == 0 {
			t.Errorf("%s: body %s", query, rec.Body.String())
		}
	}
}

func TestIngest(t *testing.T) {
	cat := &fakeCatalogue{}
	s := &server{cat: cat}

	body := `{"id":"a","path":"/data/a.SAFE","product_type":"S2_ESA_L1C","acquired":"2019-06-04T10:30:31Z"}

/data/b	S2_THEIA	{"id":"b","path":"/data/b","product_type":"S2_THEIA","acquired":"2019-06-04T10:39:02Z","polygon":"POLYGON ((0 0, 1 0, 1 1, 0 0))"}
`
	rec := httptest.NewRecorder()
	s.handler(rec, httptest.NewRequest("POST", "/?ingest", strings.NewReader(body)))
	if rec.Code != 200 || !strings.Contains(rec.Body.String(), `"ingested": 2`) {
		t.Fatalf("%d %s", rec.Code, rec.Body.String())
	}
	if len(cat.ingested) != 2 || cat.ingested[1].ProductType != "S2_THEIA" || len(cat.ingested[1].Polygon) == 0 {
		t.Errorf("ingested %+v", cat.ingested)
	}

	rec = httptest.NewRecorder()
	s.handler(rec, httptest.NewRequest("POST", "/?ingest", strings.NewReader(`{"id":"c","path":"/data/c"}`)))
	if rec.Code != 400 {
		t.Errorf("incomplete record: status %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.handler(rec, httptest.NewRequest("GET", "/?ingest", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET ingest: status %d", rec.Code)
	}
}
