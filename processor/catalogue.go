package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	geo "github.com/nci/geometry"

	extr "github.com/nci/gcube/crawl/extractor"
	"github.com/nci/gcube/region"
)

// ISOFormat is the string used to format Go ISO times
const ISOFormat = "2006-01-02T15:04:05.000Z"

const DefaultMaxLogLength = 3000

// CatalogueQuery selects the products to process from the catalogue.
type CatalogueQuery struct {
	Region       *region.Descriptor
	Start        time.Time
	End          time.Time
	ProductTypes []string
	NameSpace    string
	Limit        int
}

type catalogueResponse struct {
	Products []*extr.ProductRecord `json:"products"`
	Error    string                `json:"error"`
}

// CatalogueClient queries the MAS product catalogue over HTTP.
type CatalogueClient struct {
	APIAddress string
	Client     *http.Client
	// Resolver, when set, applies region buffers before the query;
	// without it buffered regions are rejected.
	Resolver *region.Resolver
	Verbose  bool
}

func NewCatalogueClient(apiAddr string, verbose bool) *CatalogueClient {
	return &CatalogueClient{APIAddress: apiAddr, Client: &http.Client{Timeout: 5 * time.Minute}, Verbose: verbose}
}

// regionWKT returns the query geometry as WKT with its EPSG code.
func (c *CatalogueClient) regionWKT(d *region.Descriptor) (string, string, error) {
	if d.Buffer != 0 {
		if c.Resolver == nil {
			return "", "", fmt.Errorf("buffered regions need a resolver")
		}
		p, err := c.Resolver.Project(d, region.DefaultSRS)
		if err != nil {
			return "", "", err
		}
		return p.WKT, p.SRS, nil
	}
	if d.Encoding != region.EncodingGeoJSON {
		return d.Geometry, d.SRS, nil
	}

	var feat geo.Feature
	err := json.Unmarshal([]byte(fmt.Sprintf(`{"type": "Feature", "geometry": %s}`, d.Geometry)), &feat)
	if err != nil || feat.Geometry == nil {
		return "", "", fmt.Errorf("Problem unmarshalling GeoJSON object: %v", d.Geometry)
	}
	return feat.Geometry.MarshalWKT(), d.SRS, nil
}

// Query lists the matching products in acquisition order.
func (c *CatalogueClient) Query(ctx context.Context, q *CatalogueQuery) ([]*extr.ProductRecord, error) {
	params := url.Values{}
	params.Set("intersects", "")
	postBody := url.Values{}
	if q.Region != nil {
		wkt, srs, err := c.regionWKT(q.Region)
		if err != nil {
			return nil, err
		}
		postBody.Set("wkt", wkt)
		params.Set("srs", srs)
	}
	if !q.Start.IsZero() {
		params.Set("time", q.Start.UTC().Format(ISOFormat))
	}
	if !q.End.IsZero() {
		params.Set("until", q.End.UTC().Format(ISOFormat))
	}
	if len(q.ProductTypes) > 0 {
		params.Set("product_type", strings.Join(q.ProductTypes, ","))
	}
	if len(q.NameSpace) > 0 {
		params.Set("namespace", q.NameSpace)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	reqURL := fmt.Sprintf("%s/?%s", strings.TrimSuffix(c.apiBase(), "/"), params.Encode())
	if c.Verbose {
		postBodyStr := postBody.Encode()
		if len(postBodyStr) > DefaultMaxLogLength {
			postBodyStr = postBodyStr[:DefaultMaxLogLength]
		}
		log.Printf("mas_url:%s\tpost_body:%s", reqURL, postBodyStr)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, strings.NewReader(postBody.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST request to %s failed. Error: %v", reqURL, err)
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Error parsing response body from %s. Error: %v", reqURL, err)
	}

	var metadata catalogueResponse
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("Problem parsing JSON response from %s. Error: %v", reqURL, err)
	}
	if len(metadata.Error) > 0 {
		return nil, fmt.Errorf("Indexer returned error: %v", metadata.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Indexer returned status %s", resp.Status)
	}

	if c.Verbose {
		log.Printf("Indexer time: %v, products: %v", time.Since(start), len(metadata.Products))
	}
	return metadata.Products, nil
}

func (c *CatalogueClient) apiBase() string {
	if strings.HasPrefix(c.APIAddress, "http://") || strings.HasPrefix(c.APIAddress, "https://") {
		return c.APIAddress
	}
	return "http://" + c.APIAddress
}

// CatalogueItems turns catalogue records into batch items sharing the
// settings of tmpl.
func CatalogueItems(recs []*extr.ProductRecord, tmpl *BatchItem) []*BatchItem {
	items := make([]*BatchItem, 0, len(recs))
	for _, rec := range recs {
		item := *tmpl
		item.ProductType = rec.ProductType
		item.Path = rec.Path
		if rec.ProductType == "S2_C2RCC" && len(item.Options.SensingDate) == 0 && !rec.Acquired.IsZero() {
			item.Options.SensingDate = rec.Acquired.Format("2006-01-02")
		}
		items = append(items, &item)
	}
	return items
}
