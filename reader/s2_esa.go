package reader

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nci/gcube/raster"
)

// s2ESA reads ESA Sentinel-2 L1C and L2A SAFE products, unpacked or
// zipped, through the GDAL SENTINEL2 driver: one subdataset per
// resolution group, bands identified by their description.
type s2ESA struct {
	env         *Env
	productType string
	table       *FormatTable
}

func newS2ESA(env *Env, productType string, table *FormatTable) Extractor {
	return &s2ESA{env: env, productType: productType, table: table}
}

func (e *s2ESA) Open(path string, bands []string, opts Options) (Handle, error) {
	wanted := map[string]string{}
	for _, b := range bands {
		res, err := e.table.Resource(b)
		if err != nil {
			return nil, err
		}
		wanted[res] = b
	}

	h := newHandle(e.env, e.productType)
	mtdPath, err := e.locateMetadata(h, path)
	if err != nil {
		return h.closeOnError(err)
	}

	ds, err := e.env.Opener.Open(mtdPath)
	if err != nil {
		return h.closeOnError(raster.ProductErrorf("cannot open %s: %v", mtdPath, err))
	}
	defer ds.Close()
	tags := ds.Metadata("")
	for k, v := range tags {
		h.meta[k] = v
	}

	subs := subdatasetNames(ds)
	if len(subs) < 2 {
		return h.closeOnError(raster.ProductErrorf("%s lists no band subdataset", mtdPath))
	}
	// the last subdataset is the true colour preview
	subs = subs[:len(subs)-1]

	type group struct {
		path  string
		bands []string
		srcs  []*source
	}
	var groups []group
	for _, sub := range subs {
		sds, err := e.env.Opener.Open(sub)
		if err != nil {
			return h.closeOnError(raster.ProductErrorf("cannot open subdataset %s: %v", sub, err))
		}
		dec, err := s2Decoder(mergeTags(tags, sds.Metadata("")))
		if err != nil {
			sds.Close()
			return h.closeOnError(err)
		}
		g := group{path: sub}
		for i := 1; i <= sds.BandCount(); i++ {
			name := strings.Split(sds.BandDescription(i), ", ")[0]
			if band, ok := wanted[name]; ok {
				d := dec
				g.bands = append(g.bands, band)
				g.srcs = append(g.srcs, &source{path: sub, band: i, decode: &d})
				delete(wanted, name)
			}
		}
		sds.Close()
		if len(g.bands) > 0 {
			groups = append(groups, g)
		}
	}
	for _, b := range bands {
		if _, missing := wanted[e.table.Bands[b]]; missing {
			return h.closeOnError(raster.ProductErrorf("band %s not found in %s", b, path))
		}
	}

	// coarsest resolution group first
	for i := len(groups) - 1; i >= 0; i-- {
		for j, band := range groups[i].bands {
			h.add(band, groups[i].srcs[j])
		}
	}

	start, ok := tags["PRODUCT_START_TIME"]
	if !ok {
		return h.closeOnError(raster.ProductErrorf("PRODUCT_START_TIME is missing from %s", mtdPath))
	}
	h.acquired, err = parseTime([]string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"}, strings.TrimSuffix(start, "Z"))
	if err != nil {
		return h.closeOnError(raster.ProductErrorf("%v", err))
	}
	h.attrs["data_type"] = e.table.DataType

	if err := h.initCRS(); err != nil {
		return h.closeOnError(err)
	}
	return h, nil
}

// locateMetadata finds the MTD_MSI*.xml product metadata GDAL opens
// the product with.
func (e *s2ESA) locateMetadata(h *handle, path string) (string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".xml") {
		return path, nil
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		matches, _ := filepath.Glob(filepath.Join(path, "MTD_MSI*.xml"))
		if len(matches) == 0 {
			return "", raster.ProductErrorf("no MTD_MSI*.xml in %s", path)
		}
		return matches[0], nil
	}

	c, err := openContainer(path)
	if err != nil {
		return "", raster.ProductErrorf("%v", err)
	}
	h.closers = append(h.closers, c)
	found := c.Find("", "MTD_MSI*.xml")
	if len(found) == 0 {
		return "", raster.ProductErrorf("no MTD_MSI*.xml in %s", path)
	}
	return c.GDALPath(found[0]), nil
}

// s2Decoder derives the reflectance decoding of a SAFE product from
// its quantification value and nodata tag.
func s2Decoder(tags map[string]string) (decoder, error) {
	key := "BOA_QUANTIFICATION_VALUE"
	if tags["PROCESSING_LEVEL"] == "Level-1C" {
		key = "QUANTIFICATION_VALUE"
	}
	q, err := parseFloatTag(tags, key)
	if err != nil {
		return decoder{}, err
	}
	if q == 0 {
		return decoder{}, raster.ProductErrorf("%s is zero", key)
	}
	fill, err := parseFloatTag(tags, "SPECIAL_VALUE_NODATA")
	if err != nil {
		return decoder{}, err
	}
	return decoder{scale: 1 / q, fill: fill, hasFill: true}, nil
}

func mergeTags(base, over map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(over))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range over {
		out[k] = v
	}
	return out
}
