package processor

import (
	"math"
	"testing"
	"time"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/reader"
)

func checkGrid(t *testing.T, g *raster.Grid, width, height int) {
	t.Helper()
	if g.Width() != width || g.Height() != height {
		t.Fatalf("grid is %dx%d, want %dx%d", g.Width(), g.Height(), width, height)
	}
	if width > 1 && math.Abs(g.X[1]-g.X[0]-g.Resolution) > 1e-9 {
		t.Errorf("x step %v, want %v", g.X[1]-g.X[0], g.Resolution)
	}
	if height > 1 && math.Abs(g.Y[1]-g.Y[0]+g.Resolution) > 1e-9 {
		t.Errorf("y step %v, want %v", g.Y[1]-g.Y[0], -g.Resolution)
	}
}

func TestNormalizerAlignsResolutions(t *testing.T) {
	gt := raster.GeoTransform{300000, 10, 0, 5000000, 0, -10}
	anchor, err := raster.WindowFromIndices(gt, 12, 12, 2, 2, 9, 9)
	if err != nil {
		t.Fatal(err)
	}
	norm, err := NewNormalizer(anchor, 10)
	if err != nil {
		t.Fatal(err)
	}
	checkGrid(t, norm.Grid, 8, 8)
	if norm.Grid.X[0] != 300025 || norm.Grid.Y[0] != 4999975 {
		t.Errorf("grid starts at (%v, %v)", norm.Grid.X[0], norm.Grid.Y[0])
	}

	fine := &reader.BandSample{Name: "B2", Data: ramp(8, 8), Width: 8, Height: 8, Resolution: 10}
	coarse := &reader.BandSample{Name: "B5", Data: ramp(4, 4), Width: 4, Height: 4, Resolution: 20}
	b2, err := norm.Normalize(fine)
	if err != nil {
		t.Fatal(err)
	}
	b5, err := norm.Normalize(coarse)
	if err != nil {
		t.Fatal(err)
	}
	if len(b2.Data) != len(b5.Data) || len(b2.Data) != 64 {
		t.Fatalf("normalized to %d and %d values", len(b2.Data), len(b5.Data))
	}
	if b2.Filter != "none" || b5.Filter != FilterNearest {
		t.Errorf("filters %s and %s", b2.Filter, b5.Filter)
	}

	p, err := AssembleProduct("raw", "EPSG:32631", norm.Grid, time.Unix(0, 0), []*Band{b2, b5})
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Check(); err != nil {
		t.Fatal(err)
	}
	if len(p.Times) != 1 || len(p.Vars) != 2 {
		t.Errorf("product has %d times and %d variables", len(p.Times), len(p.Vars))
	}
}

func TestNormalizerDownsamplesToCoarseGrid(t *testing.T) {
	gt := raster.GeoTransform{0, 20, 0, 120, 0, -20}
	norm, err := NewNormalizer(raster.FullWindow(gt, 6, 6), 20)
	if err != nil {
		t.Fatal(err)
	}
	b, err := norm.Normalize(&reader.BandSample{Name: "B2", Data: make([]float32, 144), Width: 12, Height: 12, Resolution: 10})
	if err != nil {
		t.Fatal(err)
	}
	if b.Filter != FilterLanczos || len(b.Data) != 36 {
		t.Errorf("filter %s, %d values", b.Filter, len(b.Data))
	}
	checkGrid(t, norm.Grid, 6, 6)
}

func TestNewNormalizerRejectsBadResolution(t *testing.T) {
	gt := raster.GeoTransform{0, 20, 0, 120, 0, -20}
	if _, err := NewNormalizer(raster.FullWindow(gt, 6, 6), 0); !raster.IsInputError(err) {
		t.Errorf("expected an input error, got %v", err)
	}
}

func TestAssembleProductErrors(t *testing.T) {
	grid := raster.NewGrid(0, 20, 10, 2, 2)
	short := &Band{Name: "B2", Data: []float32{1, 2, 3}}
	if _, err := AssembleProduct("raw", "EPSG:32631", grid, time.Time{}, []*Band{short}); err == nil {
		t.Error("expected an error for a short band")
	}
	b := &Band{Name: "B2", Data: []float32{1, 2, 3, 4}}
	if _, err := AssembleProduct("raw", "EPSG:32631", grid, time.Time{}, []*Band{b, b}); err == nil {
		t.Error("expected an error for a duplicated band")
	}
}
