package reader

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nci/gcube/raster"
)

// landsatL1 reads USGS Landsat 8 Collection 1 Level-1 products, a
// directory or tarball of per-band GeoTIFFs plus MTL.txt.  Digital
// numbers become top of atmosphere reflectances corrected for the sun
// elevation.
type landsatL1 struct {
	env         *Env
	productType string
	table       *FormatTable
}

func newLandsatL1(env *Env, productType string, table *FormatTable) Extractor {
	return &landsatL1{env: env, productType: productType, table: table}
}

func (e *landsatL1) Open(path string, bands []string, opts Options) (Handle, error) {
	h := newHandle(e.env, e.productType)
	c, err := openContainer(path)
	if err != nil {
		return nil, raster.ProductErrorf("%v", err)
	}
	h.closers = append(h.closers, c)

	mtl, err := readMTL(c, path)
	if err != nil {
		return h.closeOnError(err)
	}
	for k, v := range mtl.Flatten() {
		h.meta[k] = v
	}

	elev, err := mtl.Float("SUN_ELEVATION")
	if err != nil {
		return h.closeOnError(err)
	}
	sinElev := math.Sin(elev * math.Pi / 180)
	if sinElev <= 0 {
		return h.closeOnError(raster.ProductErrorf("sun elevation %v is below the horizon", elev))
	}

	for _, b := range bands {
		res, err := e.table.Resource(b)
		if err != nil {
			return h.closeOnError(err)
		}
		found := c.Find("", fmt.Sprintf("*_%s.TIF", res))
		if len(found) == 0 {
			return h.closeOnError(raster.ProductErrorf("band %s not found in %s", b, path))
		}
		src := &source{path: c.GDALPath(found[0]), band: 1, categorical: e.table.IsCategorical(b)}
		if !src.categorical {
			n := strings.TrimPrefix(res, "B")
			mult, err := mtl.Float("REFLECTANCE_MULT_BAND_" + n)
			if err != nil {
				return h.closeOnError(err)
			}
			add, err := mtl.Float("REFLECTANCE_ADD_BAND_" + n)
			if err != nil {
				return h.closeOnError(err)
			}
			// DN 0 is the Level-1 fill value
			src.decode = &decoder{scale: mult / sinElev, offset: add / sinElev, fill: 0, hasFill: true}
		}
		h.add(b, src)
	}

	h.acquired, err = mtlAcquisitionTime(mtl)
	if err != nil {
		return h.closeOnError(err)
	}
	h.attrs["data_type"] = e.table.DataType

	if err := h.initCRS(); err != nil {
		return h.closeOnError(err)
	}
	return h, nil
}

// landsatL2 reads USGS Landsat 8 surface reflectance products (LaSRC)
// delivered as HDF, unpacked or in a tarball with their MTL.txt.
type landsatL2 struct {
	env         *Env
	productType string
	table       *FormatTable
}

func newLandsatL2(env *Env, productType string, table *FormatTable) Extractor {
	return &landsatL2{env: env, productType: productType, table: table}
}

func (e *landsatL2) Open(path string, bands []string, opts Options) (Handle, error) {
	h := newHandle(e.env, e.productType)
	c, err := openContainer(path)
	if err != nil {
		return nil, raster.ProductErrorf("%v", err)
	}
	h.closers = append(h.closers, c)

	hdf := c.Find("", "*.hdf")
	if len(hdf) == 0 {
		return h.closeOnError(raster.ProductErrorf("no HDF file in %s", path))
	}
	ds, err := e.env.Opener.Open(c.GDALPath(hdf[0]))
	if err != nil {
		return h.closeOnError(raster.ProductErrorf("cannot open %s: %v", hdf[0], err))
	}
	defer ds.Close()
	for k, v := range ds.Metadata("") {
		h.meta[k] = v
	}

	mtl, err := readMTL(c, path)
	if err != nil {
		return h.closeOnError(err)
	}
	for k, v := range mtl.Flatten() {
		h.meta[k] = v
	}

	reflectance := map[string]string{}
	for _, sub := range subdatasetNames(ds) {
		if v := subdatasetVariable(sub); strings.HasPrefix(v, "sr_b") {
			reflectance[v] = sub
		}
	}
	for _, b := range bands {
		res, err := e.table.Resource(b)
		if err != nil {
			return h.closeOnError(err)
		}
		sub, ok := reflectance[res]
		if !ok {
			return h.closeOnError(raster.ProductErrorf("band %s (%s) not found in %s", b, res, path))
		}
		// decoded from the subdataset's scale_factor and _FillValue
		h.add(b, &source{path: sub, band: 1})
	}

	h.acquired, err = mtlAcquisitionTime(mtl)
	if err != nil {
		return h.closeOnError(err)
	}
	h.attrs["data_type"] = e.table.DataType

	if err := h.initCRS(); err != nil {
		return h.closeOnError(err)
	}
	return h, nil
}

func readMTL(c container, path string) (MTL, error) {
	found := c.Find("", "*MTL.txt")
	if len(found) == 0 {
		return nil, raster.ProductErrorf("no MTL.txt in %s", path)
	}
	data, err := c.ReadFile(found[0])
	if err != nil {
		return nil, raster.ProductErrorf("%v", err)
	}
	mtl, err := ParseMTL(data)
	if err != nil {
		return nil, raster.ProductErrorf("%s: %v", found[0], err)
	}
	return mtl, nil
}

// mtlAcquisitionTime combines DATE_ACQUIRED and the UTC
// SCENE_CENTER_TIME.
func mtlAcquisitionTime(mtl MTL) (time.Time, error) {
	date, ok := mtl.Get("DATE_ACQUIRED")
	if !ok {
		return time.Time{}, raster.ProductErrorf("MTL item DATE_ACQUIRED is missing")
	}
	clock, ok := mtl.Get("SCENE_CENTER_TIME")
	if !ok {
		return time.Time{}, raster.ProductErrorf("MTL item SCENE_CENTER_TIME is missing")
	}
	clock = strings.TrimSuffix(clock, "Z")
	t, err := parseTime([]string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"}, date+"T"+clock)
	if err != nil {
		return time.Time{}, raster.ProductErrorf("%v", err)
	}
	return t, nil
}
