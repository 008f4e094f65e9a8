package raster

// Dataset is an open raster file or sub-dataset.  Implementations
// release every resource they hold on Close.
type Dataset interface {
	Size() (width, height int)
	BandCount() int
	GeoTransform() (GeoTransform, error)
	// Projection returns "EPSG:<code>" when the CRS has an EPSG
	// authority and the WKT definition otherwise.
	Projection() string
	Metadata(domain string) map[string]string
	BandDescription(band int) string
	BandMetadata(band int) map[string]string
	// ReadWindow reads band (1 based) inside w, row major.
	ReadWindow(band int, w Window) ([]float32, error)
	Close() error
}

// Opener opens datasets by GDAL style path (plain files, /vsizip/,
// /vsitar/, NETCDF:"file":var, ...).
type Opener interface {
	Open(path string) (Dataset, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Dataset, error)

func (f OpenerFunc) Open(path string) (Dataset, error) { return f(path) }

// GeoreferencingOpener is implemented by openers able to attach a
// geotransform and CRS to a dataset whose file carries none, such as
// netCDF variables georeferenced through custom attributes.
type GeoreferencingOpener interface {
	OpenGeoreferenced(path string, gt GeoTransform, crs string) (Dataset, error)
}

// OpenGeoreferenced opens path with the given georeferencing, through
// the opener when it supports it and by overriding the dataset's own
// georeferencing otherwise.
func OpenGeoreferenced(op Opener, path string, gt GeoTransform, crs string) (Dataset, error) {
	if gop, ok := op.(GeoreferencingOpener); ok {
		return gop.OpenGeoreferenced(path, gt, crs)
	}
	ds, err := op.Open(path)
	if err != nil {
		return nil, err
	}
	return &georeferenced{Dataset: ds, gt: gt, crs: crs}, nil
}

type georeferenced struct {
	Dataset
	gt  GeoTransform
	crs string
}

func (g *georeferenced) GeoTransform() (GeoTransform, error) { return g.gt, nil }
func (g *georeferenced) Projection() string                 { return g.crs }
