package region

import (
	"sync"

	"github.com/nci/gcube/raster"
)

// Engine does the actual geometry work; the GDAL/OGR implementation
// lives in worker/gdalprocess.
type Engine interface {
	// Transform buffers the descriptor geometry in its source CRS,
	// reprojects it into dstSRS and returns the WKT and envelope of
	// the result.
	Transform(d *Descriptor, dstSRS string) (string, raster.BBox, error)
	// ReadVector returns the first feature geometry of a vector
	// container as WKT together with the container CRS.
	ReadVector(path string) (string, string, error)
}

// Projected is a region expressed in a target CRS.
type Projected struct {
	WKT    string
	SRS    string
	Bounds raster.BBox
}

type cacheKey struct {
	d   *Descriptor
	dst string
}

// Resolver reprojects descriptors into target coordinate systems.
// Results are memoised per (descriptor, target CRS) so a descriptor
// reused across many products of the same zone is transformed once.
// A Resolver is safe for concurrent use.
type Resolver struct {
	engine Engine

	mu    sync.Mutex
	cache map[cacheKey]*Projected
}

func NewResolver(e Engine) *Resolver {
	return &Resolver{engine: e, cache: make(map[cacheKey]*Projected)}
}

// Project reprojects d into dstSRS.
func (r *Resolver) Project(d *Descriptor, dstSRS string) (*Projected, error) {
	if d == nil {
		return nil, raster.InputErrorf("no region descriptor")
	}
	dstSRS = NormalizeSRS(dstSRS)
	key := cacheKey{d, dstSRS}

	r.mu.Lock()
	p, ok := r.cache[key]
	r.mu.Unlock()
	if ok {
		return p, nil
	}

	wkt, env, err := r.engine.Transform(d, dstSRS)
	if err != nil {
		return nil, raster.GeometryErrorf("cannot reproject region %v to %s: %v", d, dstSRS, err)
	}
	p = &Projected{WKT: wkt, SRS: dstSRS, Bounds: env}

	r.mu.Lock()
	r.cache[key] = p
	r.mu.Unlock()
	return p, nil
}

// Resolve reprojects d into dstSRS and checks that the result overlaps
// extent, a raster envelope expressed in dstSRS.
func (r *Resolver) Resolve(d *Descriptor, dstSRS string, extent raster.BBox) (*Projected, error) {
	p, err := r.Project(d, dstSRS)
	if err != nil {
		return nil, err
	}
	if !p.Bounds.Intersects(extent) {
		return nil, raster.GeometryErrorf("Wanted ROI is outside the input product: region %v, raster %v", p.Bounds, extent)
	}
	return p, nil
}
