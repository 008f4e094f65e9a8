package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/region"
)

// fakeOpener serves in-memory datasets by path and counts how many
// are left open.
type fakeOpener struct {
	mu       sync.Mutex
	datasets map[string]func() *raster.MemDataset
	open     int
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{datasets: map[string]func() *raster.MemDataset{}}
}

func (o *fakeOpener) add(path string, fn func() *raster.MemDataset) {
	o.datasets[path] = fn
}

func (o *fakeOpener) Open(path string) (raster.Dataset, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn, ok := o.datasets[path]
	if !ok {
		return nil, fmt.Errorf("no such dataset: %s", path)
	}
	o.open++
	return &countedDataset{fn(), o}, nil
}

func (o *fakeOpener) stillOpen() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.open
}

type countedDataset struct {
	*raster.MemDataset
	o *fakeOpener
}

func (d *countedDataset) Close() error {
	d.o.mu.Lock()
	d.o.open--
	d.o.mu.Unlock()
	return d.MemDataset.Close()
}

type fakeEngine struct {
	bounds map[string]raster.BBox
}

func (e *fakeEngine) Transform(d *region.Descriptor, dst string) (string, raster.BBox, error) {
	b, ok := e.bounds[dst]
	if !ok {
		return "", raster.BBox{}, fmt.Errorf("unknown CRS %s", dst)
	}
	return d.Geometry, b, nil
}

func (e *fakeEngine) ReadVector(path string) (string, string, error) {
	return "", "", fmt.Errorf("not supported")
}

func newEnv(op raster.Opener, bounds map[string]raster.BBox) *Env {
	return &Env{
		Opener:   op,
		Resolver: region.NewResolver(&fakeEngine{bounds: bounds}),
		Tables:   DefaultTables(),
	}
}

// band fills a width x height band with fn(row, col).
func band(desc string, width, height int, fn func(r, c int) float32) raster.MemBand {
	b := raster.MemBand{Description: desc, Data: make([]float32, width*height)}
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			b.Data[r*width+c] = fn(r, c)
		}
	}
	return b
}

func constant(v float32) func(r, c int) float32 {
	return func(int, int) float32 { return v }
}

func touch(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, content, 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

func utmGT(res float64) raster.GeoTransform {
	return raster.GeoTransform{300000, res, 0, 5000000, 0, -res}
}
