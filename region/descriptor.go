package region

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	geo "github.com/nci/geometry"
	"github.com/nci/gcube/raster"
)

const (
	EncodingWKT     = "wkt"
	EncodingGeoJSON = "geojson"

	DefaultSRS = "EPSG:4326"
)

var wktTypes = []string{"POINT", "LINESTRING", "POLYGON", "MULTIPOINT", "MULTILINESTRING", "MULTIPOLYGON"}

// Descriptor is a region of interest in its source coordinate system.
// It is loaded eagerly and never modified; reprojection happens later
// through a Resolver, once per target CRS.
type Descriptor struct {
	Geometry string
	Encoding string
	SRS      string
	// Buffer grows the geometry by this distance in source CRS units
	// before reprojection.
	Buffer float64
}

// FromWKT builds a descriptor from WKT text.  An empty srs means
// geographic WGS84.
func FromWKT(wkt, srs string) (*Descriptor, error) {
	wkt = strings.TrimSpace(wkt)
	kind := strings.ToUpper(strings.TrimSpace(strings.SplitN(wkt, "(", 2)[0]))
	kind = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(kind, " Z"), " M"))
	valid := false
	for _, t := range wktTypes {
		if kind == t {
			valid = true
			break
		}
	}
	if !valid || !strings.Contains(wkt, "(") {
		return nil, raster.InputErrorf("invalid WKT geometry: %.40q", wkt)
	}
	return &Descriptor{Geometry: wkt, Encoding: EncodingWKT, SRS: NormalizeSRS(srs)}, nil
}

// FromWKTFile reads the first line of a WKT file.
func FromWKTFile(path, srs string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, raster.InputErrorf("cannot open WKT file: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, raster.InputErrorf("cannot read WKT file %s: %v", path, err)
		}
		return nil, raster.InputErrorf("WKT file %s is empty", path)
	}
	return FromWKT(scanner.Text(), srs)
}

// FromGeoJSON accepts a Feature or a FeatureCollection, in which case
// the first feature is used.  GeoJSON coordinates are always WGS84.
func FromGeoJSON(data []byte) (*Descriptor, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, raster.InputErrorf("invalid GeoJSON: %v", err)
	}

	var geom geo.Geometry
	switch probe.Type {
	case "FeatureCollection":
		var fc geo.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, raster.InputErrorf("invalid GeoJSON feature collection: %v", err)
		}
		if len(fc.Features) == 0 {
			return nil, raster.InputErrorf("GeoJSON feature collection has no features")
		}
		geom = fc.Features[0].Geometry
	case "Feature":
		var feat geo.Feature
		if err := json.Unmarshal(data, &feat); err != nil {
			return nil, raster.InputErrorf("invalid GeoJSON feature: %v", err)
		}
		geom = feat.Geometry
	default:
		return nil, raster.InputErrorf("GeoJSON type %q is not supported, expected Feature or FeatureCollection", probe.Type)
	}

	if geom == nil {
		return nil, raster.InputErrorf("GeoJSON feature has no geometry")
	}
	geomJSON, err := json.Marshal(geom)
	if err != nil {
		return nil, raster.InputErrorf("problem marshaling GeoJSON geometry: %v", err)
	}
	return &Descriptor{Geometry: string(geomJSON), Encoding: EncodingGeoJSON, SRS: DefaultSRS}, nil
}

// FromPoint builds a point region, usually combined with a buffer.
func FromPoint(x, y float64, srs string, buffer float64) *Descriptor {
	wkt := fmt.Sprintf("POINT (%s %s)", strconv.FormatFloat(x, 'f', -1, 64), strconv.FormatFloat(y, 'f', -1, 64))
	return &Descriptor{Geometry: wkt, Encoding: EncodingWKT, SRS: NormalizeSRS(srs), Buffer: buffer}
}

// FromVector loads the first feature of a shapefile-like container
// together with the container's own CRS.
func FromVector(e Engine, path string) (*Descriptor, error) {
	wkt, srs, err := e.ReadVector(path)
	if err != nil {
		return nil, raster.InputErrorf("cannot read vector file %s: %v", path, err)
	}
	return FromWKT(wkt, srs)
}

// WithBuffer returns a copy of d grown by dist.
func (d *Descriptor) WithBuffer(dist float64) *Descriptor {
	c := *d
	c.Buffer = dist
	return &c
}

func (d *Descriptor) String() string {
	g := d.Geometry
	if len(g) > 64 {
		g = g[:61] + "..."
	}
	if d.Buffer != 0 {
		return fmt.Sprintf("%s [%s] buffer=%v", g, d.SRS, d.Buffer)
	}
	return fmt.Sprintf("%s [%s]", g, d.SRS)
}

// NormalizeSRS turns bare EPSG codes ("4326", "epsg:4326") into the
// "EPSG:<code>" form and leaves other definitions untouched.
func NormalizeSRS(srs string) string {
	srs = strings.TrimSpace(srs)
	if srs == "" {
		return DefaultSRS
	}
	if code, err := strconv.Atoi(srs); err == nil {
		return fmt.Sprintf("EPSG:%d", code)
	}
	if len(srs) > 5 && strings.EqualFold(srs[:5], "EPSG:") {
		if code, err := strconv.Atoi(srs[5:]); err == nil {
			return fmt.Sprintf("EPSG:%d", code)
		}
	}
	return srs
}
