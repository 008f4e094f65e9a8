package reader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/region"
)

// floorWindow converts a region envelope into pixels of a north-up
// grid of square res pixels whose top-left corner is the geotransform
// origin.  Edges beyond the raster select the whole raster side.
func floorWindow(res float64) windowFunc {
	return func(gt raster.GeoTransform, nx, ny int, roi raster.BBox) (raster.Window, error) {
		x0, y0 := gt[0], gt[3]
		x1, y1 := gt.Apply(float64(nx), float64(ny))
		if roi.MaxX < x0 || roi.MinY > y0 || roi.MinX > x1 || roi.MaxY < y1 {
			return raster.Window{}, raster.GeometryErrorf("Wanted ROI is outside the input product")
		}

		rowStart, colStart := 0, 0
		rowStop, colStop := ny-1, nx-1
		if roi.MaxY <= y0 {
			rowStart = int(math.Floor((y0 - roi.MaxY) / res))
		}
		if roi.MinX >= x0 {
			colStart = int(math.Floor((roi.MinX - x0) / res))
		}
		if roi.MinY >= y1 {
			rowStop = int(math.Floor((y0 - roi.MinY) / res))
		}
		if roi.MaxX <= x1 {
			colStop = int(math.Floor((roi.MaxX - x0) / res))
		}
		return raster.WindowFromIndices(gt, nx, ny, rowStart, colStart, rowStop, colStop)
	}
}

// grs reads GRS (Glint Removal for Sentinel-2-like sensors) netCDF
// products.  Their grid is only described by the crs variable's i2m
// attribute, so every variable is opened with that georeferencing.
type grs struct {
	env         *Env
	productType string
	table       *FormatTable
}

func newGRS(env *Env, productType string, table *FormatTable) Extractor {
	return &grs{env: env, productType: productType, table: table}
}

func (e *grs) Open(path string, bands []string, opts Options) (Handle, error) {
	if e.table.Resolution <= 0 {
		return nil, raster.ProductErrorf("no resolution configured for %s", e.productType)
	}
	h := newHandle(e.env, e.productType)

	ds, err := e.env.Opener.Open(path)
	if err != nil {
		return nil, raster.ProductErrorf("cannot open %s: %v", path, err)
	}
	defer ds.Close()
	md := ds.Metadata("")

	i2m, ok := md["crs#i2m"]
	if !ok {
		return nil, raster.ProductErrorf("%s has no crs:i2m attribute", path)
	}
	gt, err := raster.ParseI2M(i2m)
	if err != nil {
		return nil, raster.ProductErrorf("%v", err)
	}
	crs := md["crs#wkt"]
	if crs == "" {
		crs = md["crs#spatial_ref"]
	}
	if crs == "" {
		return nil, raster.ProductErrorf("%s has no CRS definition", path)
	}
	h.crs = crs
	ref := &georef{gt: gt, crs: crs}

	variables := map[string]bool{}
	for _, sub := range subdatasetNames(ds) {
		variables[subdatasetVariable(sub)] = true
	}

	prefix := "Rrs"
	if opts.NoGlintCorrection {
		prefix = "Rrs_g"
	}
	for _, b := range bands {
		res, err := e.table.Resource(b)
		if err != nil {
			return nil, err
		}
		name := res
		if !e.table.IsExtra(b) {
			name = prefix + "_" + res
		}
		if !variables[name] {
			return nil, raster.ProductErrorf("variable %s not found in %s", name, path)
		}
		h.add(b, &source{path: netCDFVariable(path, name), band: 1, georef: ref})
	}

	if opts.Flags {
		if !variables["flags"] {
			return nil, raster.ProductErrorf("variable flags not found in %s", path)
		}
		h.masks = append(h.masks, &maskSource{
			name:   "GRS_flags",
			source: source{path: netCDFVariable(path, "flags"), band: 1, categorical: true, georef: ref},
			discard: func(v []float32) ([]bool, error) {
				out := make([]bool, len(v))
				for i, f := range v {
					out[i] = f != 0
				}
				return out, nil
			},
		})
		h.attrs["suppl_masks"] = "GRS_flags"
	}

	stripPrefixed(h.meta, md, "NC_GLOBAL#")
	stripPrefixed(h.meta, md, "metadata#")
	start, ok := h.meta["start_date"]
	if !ok {
		return nil, raster.ProductErrorf("%s has no start_date attribute", path)
	}
	h.acquired, err = parseTime([]string{"02-Jan-2006 15:04:05.999999", "02-Jan-2006 15:04:05"}, start)
	if err != nil {
		return nil, raster.ProductErrorf("%v", err)
	}

	h.window = floorWindow(e.table.Resolution)
	h.attrs["data_type"] = e.table.DataType
	h.attrs["grs_bands"] = prefix
	return h, nil
}

// c2rcc reads SNAP C2RCC netCDF outputs.  They carry no acquisition
// time and only latitude/longitude arrays, so the sensing date is a
// required option and the grid is laid in the UTM zone of the scene.
type c2rcc struct {
	env         *Env
	productType string
	table       *FormatTable
}

func newC2RCC(env *Env, productType string, table *FormatTable) Extractor {
	return &c2rcc{env: env, productType: productType, table: table}
}

func parseSensingDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, raster.InputErrorf("\"sensing_date\" is missing")
	}
	t, err := time.Parse("20060102", strings.Replace(s, "-", "", -1))
	if err != nil {
		return time.Time{}, raster.InputErrorf("\"sensing_date\" must be in \"YYYY-MM-DD\" (or \"YYYYMMDD\") format, got %q", s)
	}
	return t, nil
}

// UTMZone returns the EPSG code of the WGS84 UTM zone holding
// (lon, lat).
func UTMZone(lon, lat float64) string {
	zone := int(math.Floor((lon+180)/6)) + 1
	if zone < 1 {
		zone = 1
	}
	if zone > 60 {
		zone = 60
	}
	if lat >= 0 {
		return fmt.Sprintf("EPSG:%d", 32600+zone)
	}
	return fmt.Sprintf("EPSG:%d", 32700+zone)
}

func lineWKT(xa, ya, xb, yb float64) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return "LINESTRING (" + f(xa) + " " + f(ya) + ", " + f(xb) + " " + f(yb) + ")"
}

func (e *c2rcc) Open(path string, bands []string, opts Options) (Handle, error) {
	acquired, err := parseSensingDate(opts.SensingDate)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(bands))
	for i, b := range bands {
		if names[i], err = e.table.Resource(b); err != nil {
			return nil, err
		}
	}
	res := e.table.Resolution
	if res <= 0 {
		return nil, raster.ProductErrorf("no resolution configured for %s", e.productType)
	}

	lonMin, lonMax, err := e.span(path, "lon")
	if err != nil {
		return nil, err
	}
	latMin, latMax, err := e.span(path, "lat")
	if err != nil {
		return nil, err
	}
	utm := UTMZone((lonMin+lonMax)/2, (latMin+latMax)/2)

	// top-left and bottom-right corners of the scene
	corners, err := region.FromWKT(lineWKT(lonMin, latMax, lonMax, latMin), region.DefaultSRS)
	if err != nil {
		return nil, err
	}
	p, err := e.env.Resolver.Project(corners, utm)
	if err != nil {
		return nil, err
	}
	gt := raster.GeoTransform{math.Round(p.Bounds.MinX), res, 0, math.Round(p.Bounds.MaxY), 0, -res}
	ref := &georef{gt: gt, crs: utm}

	h := newHandle(e.env, e.productType)
	h.crs = utm
	for i, b := range bands {
		h.add(b, &source{path: netCDFVariable(path, names[i]), band: 1, georef: ref})
	}
	h.acquired = acquired
	h.meta["sensing_date"] = acquired.Format("2006-01-02")
	h.window = floorWindow(res)
	h.attrs["data_type"] = e.table.DataType
	return h, nil
}

// span returns the range of the finite values of a coordinate variable.
func (e *c2rcc) span(path, variable string) (float64, float64, error) {
	ds, err := e.env.Opener.Open(netCDFVariable(path, variable))
	if err != nil {
		return 0, 0, raster.ProductErrorf("cannot open %s in %s: %v", variable, path, err)
	}
	defer ds.Close()
	w, h := ds.Size()
	data, err := ds.ReadWindow(1, raster.Window{RowStop: h - 1, ColStop: w - 1})
	if err != nil {
		return 0, 0, raster.ProductErrorf("error reading %s: %v", variable, err)
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		lo, hi = math.Min(lo, f), math.Max(hi, f)
	}
	if lo > hi {
		return 0, 0, raster.ProductErrorf("%s has no valid %s value", path, variable)
	}
	return lo, hi, nil
}
