package reader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nci/gcube/raster"
)

var theiaMaskNames = map[string]bool{"CLM": true, "MG2": true, "SAT": true}

// theia reads THEIA (MAJA/MUSCATE) Sentinel-2 L2A products: one
// GeoTIFF per band, surface or flat reflectance, with MTD_ALL.xml
// metadata and bit-field quality masks under MASKS/.
type theia struct {
	env         *Env
	productType string
	table       *FormatTable
}

func newTHEIA(env *Env, productType string, table *FormatTable) Extractor {
	return &theia{env: env, productType: productType, table: table}
}

func (e *theia) Open(path string, bands []string, opts Options) (Handle, error) {
	kind := opts.THEIABands
	if kind == "" {
		kind = "FRE"
	}
	if kind != "FRE" && kind != "SRE" {
		return nil, raster.InputErrorf("\"theia_bands\" must be either \"SRE\" or \"FRE\", got %q", kind)
	}
	for name := range opts.THEIAMasks {
		if !theiaMaskNames[name] {
			return nil, raster.InputErrorf("unknown THEIA mask %q, expected CLM, MG2 or SAT", name)
		}
	}

	h := newHandle(e.env, e.productType)
	c, err := openContainer(path)
	if err != nil {
		return nil, raster.ProductErrorf("%v", err)
	}
	h.closers = append(h.closers, c)

	mtd := c.Find("", "*MTD_ALL.xml")
	if len(mtd) == 0 {
		return h.closeOnError(raster.ProductErrorf("no MTD_ALL.xml in %s", path))
	}
	data, err := c.ReadFile(mtd[0])
	if err != nil {
		return h.closeOnError(raster.ProductErrorf("%v", err))
	}
	md, err := parseMuscateMetadata(data)
	if err != nil {
		return h.closeOnError(raster.ProductErrorf("%s: %v", mtd[0], err))
	}
	h.meta = md

	q, err := parseFloatTag(md, "REFLECTANCE_QUANTIFICATION_VALUE")
	if err != nil {
		return h.closeOnError(err)
	}
	if q == 0 {
		return h.closeOnError(raster.ProductErrorf("REFLECTANCE_QUANTIFICATION_VALUE is zero"))
	}
	nodata, err := parseFloatTag(md, "nodata")
	if err != nil {
		return h.closeOnError(err)
	}
	dec := decoder{scale: 1 / q, fill: nodata, hasFill: true}

	// 20 m bands first so that the anchor is the coarsest raster
	var fine, coarse []string
	for _, b := range bands {
		if e.table.IsFine(b) {
			fine = append(fine, b)
		} else {
			coarse = append(coarse, b)
		}
	}
	h.defaultRes = 20
	if len(fine) > 0 {
		h.defaultRes = 10
	}
	for _, b := range append(coarse, fine...) {
		res, err := e.table.Resource(b)
		if err != nil {
			return h.closeOnError(err)
		}
		found := c.Find("", fmt.Sprintf("*_%s_%s.tif", kind, res))
		if len(found) == 0 {
			return h.closeOnError(raster.ProductErrorf("band %s (%s) not found in %s", b, kind, path))
		}
		d := dec
		h.add(b, &source{path: c.GDALPath(found[0]), band: 1, decode: &d})
	}

	if len(opts.THEIAMasks) > 0 {
		res := opts.Resolution
		if res == 0 {
			res = h.defaultRes
		}
		suffix := "_R2"
		if res == 10 {
			suffix = "_R1"
		}

		var names, labels []string
		for name := range opts.THEIAMasks {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			found := c.Find("MASKS", fmt.Sprintf("*_%s%s.tif", name, suffix))
			if len(found) == 0 {
				return h.closeOnError(raster.ProductErrorf("mask %s%s not found in %s", name, suffix, path))
			}
			bits := opts.THEIAMasks[name]
			if len(bits) == 0 {
				bits = []int{0, 1, 2, 3, 4, 5, 6, 7}
			}
			testBits := bits
			h.masks = append(h.masks, &maskSource{
				name:   "THEIA_" + name,
				source: source{path: c.GDALPath(found[0]), band: 1, categorical: true},
				discard: func(v []float32) ([]bool, error) {
					return raster.AnyBitSet(v, testBits)
				},
			})
			var sb strings.Builder
			for _, b := range bits {
				fmt.Fprintf(&sb, "%d", b)
			}
			labels = append(labels, fmt.Sprintf("THEIA_%s (%s)", name, sb.String()))
		}
		h.attrs["suppl_masks"] = strings.Join(labels, ", ")
	}

	acq, ok := md["ACQUISITION_DATE"]
	if !ok {
		return h.closeOnError(raster.ProductErrorf("ACQUISITION_DATE is missing from %s", mtd[0]))
	}
	h.acquired, err = parseTime([]string{"2006-01-02T15:04:05"}, strings.TrimSuffix(strings.Split(acq, ".")[0], "Z"))
	if err != nil {
		return h.closeOnError(raster.ProductErrorf("%v", err))
	}
	h.attrs["data_type"] = e.table.DataType
	h.attrs["theia_bands"] = kind

	if err := h.initCRS(); err != nil {
		return h.closeOnError(err)
	}
	return h, nil
}
