package reader

import (
	_ "embed"
	"fmt"
	"io/ioutil"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/nci/gcube/raster"
)

//go:embed formats.yaml
var defaultFormats []byte

type FormatTable struct {
	Source   string `yaml:"source"`
	Family   string `yaml:"family"`
	DataType string `yaml:"data_type"`
	// Resolution is the native resolution of formats whose output
	// resolution is not configurable.
	Resolution  float64           `yaml:"resolution"`
	Resolutions []int             `yaml:"resolutions"`
	Bands       map[string]string `yaml:"bands"`
	ExtraBands  map[string]string `yaml:"extra_bands"`
	Categorical []string          `yaml:"categorical"`
	Unavailable []string          `yaml:"unavailable"`
	FineBands   []string          `yaml:"fine_bands"`
}

// Tables holds the band tables of every product type.  It is read only
// once loaded and shared by all workers.
type Tables struct {
	Formats map[string]*FormatTable `yaml:"formats"`
}

// DefaultTables returns the tables compiled into the binary.
func DefaultTables() *Tables {
	t, err := ParseTables(defaultFormats)
	if err != nil {
		panic(fmt.Sprintf("embedded format tables: %v", err))
	}
	return t
}

func ParseTables(data []byte) (*Tables, error) {
	t := &Tables{}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("error parsing format tables: %v", err)
	}
	if len(t.Formats) == 0 {
		return nil, fmt.Errorf("format tables define no product type")
	}
	for name, f := range t.Formats {
		if len(f.Bands) == 0 {
			return nil, fmt.Errorf("product type %s has no bands", name)
		}
	}
	return t, nil
}

// LoadTables reads a YAML table file.  An empty path gives the
// embedded tables.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables(), nil
	}
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading format tables %s: %v", path, err)
	}
	return ParseTables(data)
}

func (t *Tables) Lookup(productType string) (*FormatTable, error) {
	f, ok := t.Formats[productType]
	if !ok {
		return nil, raster.InputErrorf("unknown product type %q", productType)
	}
	return f, nil
}

// ProductTypes lists the configured product types in sorted order.
func (t *Tables) ProductTypes() []string {
	var names []string
	for name := range t.Formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resource maps a requested band onto the name of the sub-resource
// holding it.
func (f *FormatTable) Resource(band string) (string, error) {
	for _, u := range f.Unavailable {
		if u == band {
			return "", raster.ProductErrorf("%s is not available in %s products", band, f.Source)
		}
	}
	if r, ok := f.Bands[band]; ok {
		return r, nil
	}
	if r, ok := f.ExtraBands[band]; ok {
		return r, nil
	}
	return "", raster.ProductErrorf("band %s is not part of %s products", band, f.Source)
}

func (f *FormatTable) IsExtra(band string) bool {
	_, ok := f.ExtraBands[band]
	return ok
}

func (f *FormatTable) IsCategorical(band string) bool {
	return contains(f.Categorical, band)
}

func (f *FormatTable) IsFine(band string) bool {
	return contains(f.FineBands, band)
}

// Configurable reports whether output and processing resolutions can
// be chosen for this product type.
func (f *FormatTable) Configurable() bool {
	return len(f.Resolutions) > 0
}

// CheckResolution validates a requested resolution; 0 means unset.
func (f *FormatTable) CheckResolution(name string, res float64) error {
	if res == 0 || !f.Configurable() {
		return nil
	}
	for _, r := range f.Resolutions {
		if float64(r) == res {
			return nil
		}
	}
	return raster.InputErrorf("%q must be in %v, got %v", name, f.Resolutions, res)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
