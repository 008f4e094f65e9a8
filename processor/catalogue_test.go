package processor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nci/gcube/region"
)

func TestCatalogueQuery(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		got = r
		w.Write([]byte(`{"products": [
			{"id": "a", "path": "/data/a.SAFE", "product_type": "S2_ESA_L1C", "acquired": "2019-06-04T10:30:31Z"},
			{"id": "b", "path": "/data/b.nc", "product_type": "S2_C2RCC", "acquired": "2019-06-09T10:30:31Z"}
		]}`))
	}))
	defer srv.Close()

	c := NewCatalogueClient(strings.TrimPrefix(srv.URL, "http://"), false)
	d, err := region.FromGeoJSON([]byte(`{"type": "Feature", "geometry": {"type": "Point", "coordinates": [3, 45]}}`))
	if err != nil {
		t.Fatal(err)
	}
	recs, err := c.Query(context.Background(), &CatalogueQuery{
		Region:       d,
		Start:        time.Date(2019, 6, 1, 0, 0, 0, 0, time.UTC),
		ProductTypes: []string{"S2_ESA_L1C", "S2_C2RCC"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 || recs[1].Path != "/data/b.nc" {
		t.Fatalf("got %+v", recs)
	}
	if _, ok := got.URL.Query()["intersects"]; !ok {
		t.Errorf("query %s", got.URL.RawQuery)
	}
	if got.FormValue("srs") != "EPSG:4326" || got.FormValue("time") != "2019-06-01T00:00:00.000Z" || got.FormValue("product_type") != "S2_ESA_L1C,S2_C2RCC" {
		t.Errorf("query %s", got.URL.RawQuery)
	}
	if wkt := got.PostFormValue("wkt"); !strings.HasPrefix(strings.ToUpper(wkt), "POINT") {
		t.Errorf("wkt %q", wkt)
	}

	items := CatalogueItems(recs, &BatchItem{Bands: []string{"B4"}, OutResolution: 20})
	if len(items) != 2 || items[0].ProductType != "S2_ESA_L1C" || items[1].Bands[0] != "B4" || items[1].OutResolution != 20 {
		t.Errorf("items %+v", items)
	}
	if items[1].Options.SensingDate != "2019-06-09" || items[0].Options.SensingDate != "" {
		t.Errorf("sensing dates %q %q", items[0].Options.SensingDate, items[1].Options.SensingDate)
	}
}

func TestCatalogueErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{ "error": "relation \"products\" does not exist" }`, 400)
	}))
	defer srv.Close()

	c := NewCatalogueClient(srv.URL, false)
	if _, err := c.Query(context.Background(), &CatalogueQuery{}); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("got %v", err)
	}

	buffered := region.FromPoint(3, 45, "EPSG:4326", 0.1)
	if _, err := c.Query(context.Background(), &CatalogueQuery{Region: buffered}); err == nil {
		t.Error("buffered region accepted without a resolver")
	}

}
