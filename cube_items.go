package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"time"

	extr "github.com/nci/gcube/crawl/extractor"
	"github.com/nci/gcube/processor"
	"github.com/nci/gcube/reader"
	"github.com/nci/gcube/region"
	"github.com/nci/gcube/utils"
)

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); len(v) > 0 {
			out = append(out, v)
		}
	}
	return out
}

// parseApply reads "name[:include|:exclude]" lists, exclude being the
// default.
func parseApply(s string) ([]processor.MaskRef, error) {
	var refs []processor.MaskRef
	for _, v := range splitList(s) {
		kv := strings.SplitN(v, ":", 2)
		ref := processor.MaskRef{Name: kv[0], Polarity: processor.Exclude}
		if len(kv) == 2 {
			pol, err := processor.ParsePolarity(kv[1])
			if err != nil {
				return nil, err
			}
			ref.Polarity = pol
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func flagSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// regionFromFlags loads at most one region source.
func regionFromFlags(e region.Engine) (*region.Descriptor, error) {
	var d *region.Descriptor
	n := 0
	var err error
	if len(*wkt) > 0 {
		n++
		d, err = region.FromWKT(*wkt, *srs)
	}
	if len(*wktFile) > 0 && err == nil {
		n++
		d, err = region.FromWKTFile(*wktFile, *srs)
	}
	if len(*geojsonFile) > 0 && err == nil {
		n++
		var data []byte
		data, err = ioutil.ReadFile(*geojsonFile)
		if err == nil {
			d, err = region.FromGeoJSON(data)
		}
	}
	if len(*vectorFile) > 0 && err == nil {
		n++
		d, err = region.FromVector(e, *vectorFile)
	}
	if (flagSet("lat") || flagSet("lon")) && err == nil {
		n++
		d = region.FromPoint(*lon, *lat, *srs, 0)
	}
	if err != nil {
		return nil, err
	}
	if n > 1 {
		return nil, fmt.Errorf("wkt, wkt_file, geojson, shp and lat/lon are exclusive")
	}
	if d != nil && *buffer != 0 {
		d = d.WithBuffer(*buffer)
	}
	return d, nil
}

// itemFromFlags builds the settings shared by every item.
func itemFromFlags(roi *region.Descriptor) (*processor.BatchItem, error) {
	refs, err := parseApply(*apply)
	if err != nil {
		return nil, err
	}
	opts := map[string]string{}
	if len(*theiaBands) > 0 {
		opts["theia_bands"] = *theiaBands
	}
	if len(*theiaMasks) > 0 {
		opts["theia_masks"] = *theiaMasks
	}
	if *noGlint {
		opts["glint_corrected"] = "false"
	}
	if *grsFlags {
		opts["flags"] = "true"
	}
	if len(*sensingDate) > 0 {
		opts["sensing_date"] = *sensingDate
	}
	options, err := reader.DecodeOptions(opts)
	if err != nil {
		return nil, err
	}

	item := &processor.BatchItem{
		Bands:                splitList(*bands),
		Formulas:             splitList(*formulas),
		Masks:                splitList(*masks),
		Apply:                refs,
		Region:               roi,
		OutResolution:        *outRes,
		ProcessingResolution: *procRes,
		Options:              options,
	}
	if len(item.Bands)+len(item.Formulas)+len(item.Masks) == 0 {
		return nil, fmt.Errorf("nothing to extract: set bands, formulas or masks")
	}
	return item, nil
}

// listItems gathers products from the command line, a product list or
// the catalogue, in this order of precedence.
func listItems(ctx context.Context, conf *utils.Config, tmpl *processor.BatchItem, resolver *region.Resolver) ([]*processor.BatchItem, error) {
	switch {
	case flag.NArg() > 0:
		if len(*productType) == 0 {
			return nil, fmt.Errorf("product_type is required with products given as arguments")
		}
		var items []*processor.BatchItem
		for _, p := range flag.Args() {
			item := *tmpl
			item.ProductType = *productType
			item.Path = p
			items = append(items, &item)
		}
		return items, nil

	case len(*productList) > 0:
		f, err := os.Open(*productList)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		recs, err := readProductList(f, *productType)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", *productList, err)
		}
		return processor.CatalogueItems(recs, tmpl), nil

	case len(conf.ServiceConfig.MASAddress) > 0:
		q := &processor.CatalogueQuery{Region: tmpl.Region, ProductTypes: splitList(*productType), Limit: *catalogLimit}
		var err error
		if q.Start, err = parseDate(*startTime); err != nil {
			return nil, err
		}
		if q.End, err = parseDate(*endTime); err != nil {
			return nil, err
		}
		c := processor.NewCatalogueClient(conf.ServiceConfig.MASAddress, *verbose)
		c.Resolver = resolver
		recs, err := c.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		return processor.CatalogueItems(recs, tmpl), nil
	}
	return nil, fmt.Errorf("give products as arguments, a product list or configure mas_address")
}

func parseDate(s string) (time.Time, error) {
	if len(s) == 0 {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// readProductList accepts "product_type path" lines, crawl tsv lines
// and crawl json records.  defaultType, when set, names the product
// type of lines holding a bare path.
func readProductList(r io.Reader, defaultType string) ([]*extr.ProductRecord, error) {
	var recs []*extr.ProductRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}
		if fields := strings.SplitN(line, "\t", 3); len(fields) == 3 {
			line = fields[2]
		}

		rec := new(extr.ProductRecord)
		if strings.HasPrefix(line, "{") {
			if err := json.Unmarshal([]byte(line), rec); err != nil {
				return nil, fmt.Errorf("line %d: %v", n, err)
			}
		} else {
			fields := strings.Fields(line)
			switch {
			case len(fields) == 2:
				rec.ProductType, rec.Path = fields[0], fields[1]
			case len(fields) == 1 && len(defaultType) > 0:
				rec.ProductType, rec.Path = defaultType, fields[0]
			default:
				return nil, fmt.Errorf("line %d: expected 'product_type path'", n)
			}
		}
		if len(rec.ProductType) == 0 || len(rec.Path) == 0 {
			return nil, fmt.Errorf("line %d: product type and path are required", n)
		}
		recs = append(recs, rec)
	}
	return recs, sc.Err()
}
