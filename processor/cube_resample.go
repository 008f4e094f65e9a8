package processor

import (
	"fmt"
	"math"

	"github.com/nci/gcube/raster"
)

const (
	FilterNearest = "nearest"
	FilterLanczos = "lanczos"

	lanczosLobes = 3
	// valid weight sums at or below this give NaN
	minWeightSum = 1e-6
)

// ResampleFilter returns the filter used to rescale by scale, the
// input resolution divided by the output one.  Downsampling smooths,
// upsampling and categorical data never invent values.
func ResampleFilter(scale float64, categorical bool) string {
	if categorical || scale >= 1 {
		return FilterNearest
	}
	return FilterLanczos
}

// ResampledSize is round(dim * scale), at least one pixel.
func ResampledSize(dim int, scale float64) int {
	n := int(math.Round(float64(dim) * scale))
	if n < 1 {
		n = 1
	}
	return n
}

// Resample rescales a row major width x height array by scale.  NaN
// is nodata: nearest neighbour copies it, the Lanczos filter gives it
// no weight and yields NaN only where a pixel footprint holds no valid
// sample.
func Resample(data []float32, width, height int, scale float64, categorical bool) ([]float32, int, int, error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, 0, 0, fmt.Errorf("invalid resampling scale %v", scale)
	}
	if len(data) != width*height {
		return nil, 0, 0, fmt.Errorf("array holds %d values, expected %dx%d", len(data), width, height)
	}
	ow, oh := ResampledSize(width, scale), ResampledSize(height, scale)
	if ow == width && oh == height {
		return append([]float32(nil), data...), width, height, nil
	}

	if ResampleFilter(scale, categorical) == FilterNearest {
		return nearest(data, width, height, ow, oh), ow, oh, nil
	}
	tmp := lanczosRows(data, width, height, ow)
	tmp = transpose(tmp, ow, height)
	tmp = lanczosRows(tmp, height, ow, oh)
	return transpose(tmp, oh, ow), ow, oh, nil
}

func nearest(data []float32, width, height, ow, oh int) []float32 {
	sx := float64(width) / float64(ow)
	sy := float64(height) / float64(oh)
	cols := make([]int, ow)
	for i := range cols {
		cols[i] = minInt(width-1, int(math.Floor((float64(i)+0.5)*sx)))
	}
	out := make([]float32, ow*oh)
	for j := 0; j < oh; j++ {
		row := minInt(height-1, int(math.Floor((float64(j)+0.5)*sy))) * width
		for i, c := range cols {
			out[j*ow+i] = data[row+c]
		}
	}
	return out
}

func lanczos(x float64) float64 {
	if x == 0 {
		return 1
	}
	if x <= -lanczosLobes || x >= lanczosLobes {
		return 0
	}
	px := math.Pi * x
	return lanczosLobes * math.Sin(px) * math.Sin(px/lanczosLobes) / (px * px)
}

type tap struct {
	j int
	w float64
}

type kernel struct {
	taps []tap
	// footprint [f0, f1) of input samples under the output pixel
	f0, f1 int
}

// kernels precomputes the Lanczos taps mapping n samples onto m,
// the kernel being widened by the reduction factor.
func kernels(n, m int) []kernel {
	f := math.Max(float64(n)/float64(m), 1)
	support := lanczosLobes * f
	out := make([]kernel, m)
	for i := range out {
		centre := (float64(i) + 0.5) * f
		k := kernel{
			f0: maxInt(0, int(math.Floor(float64(i)*f))),
			f1: minInt(n, int(math.Ceil((float64(i)+1)*f))),
		}
		if k.f1 <= k.f0 {
			k.f1 = minInt(n, k.f0+1)
		}
		for j := maxInt(0, int(math.Floor(centre-support))); j < minInt(n, int(math.Ceil(centre+support))); j++ {
			if w := lanczos((float64(j) + 0.5 - centre) / f); w != 0 {
				k.taps = append(k.taps, tap{j, w})
			}
		}
		out[i] = k
	}
	return out
}

// lanczosRows resamples each row of a width x height array onto ow
// columns.
func lanczosRows(data []float32, width, height, ow int) []float32 {
	ks := kernels(width, ow)
	out := make([]float32, ow*height)
	for r := 0; r < height; r++ {
		row := data[r*width : (r+1)*width]
		for i, k := range ks {
			valid := false
			for j := k.f0; j < k.f1; j++ {
				if !math.IsNaN(float64(row[j])) {
					valid = true
					break
				}
			}
			if !valid {
				out[r*ow+i] = float32(math.NaN())
				continue
			}
			var sum, wsum float64
			for _, t := range k.taps {
				v := float64(row[t.j])
				if math.IsNaN(v) {
					continue
				}
				sum += t.w * v
				wsum += t.w
			}
			if wsum <= minWeightSum {
				out[r*ow+i] = float32(math.NaN())
				continue
			}
			out[r*ow+i] = float32(sum / wsum)
		}
	}
	return out
}

func transpose(data []float32, width, height int) []float32 {
	out := make([]float32, len(data))
	for r := 0; r < height; r++ {
		for c := 0; c < width; c++ {
			out[c*height+r] = data[r*width+c]
		}
	}
	return out
}

// fitToGrid crops or NaN pads a width x height array to gw x gh,
// keeping the top-left corner.
func fitToGrid(data []float32, width, height, gw, gh int) []float32 {
	if width == gw && height == gh {
		return data
	}
	out := make([]float32, gw*gh)
	nan := float32(math.NaN())
	for j := 0; j < gh; j++ {
		for i := 0; i < gw; i++ {
			if i < width && j < height {
				out[j*gw+i] = data[j*width+i]
			} else {
				out[j*gw+i] = nan
			}
		}
	}
	return out
}

// normalizeTo resamples a layer of resolution res onto grid.
func normalizeTo(data []float32, width, height int, res float64, grid *raster.Grid, categorical bool) ([]float32, string, error) {
	filter := "none"
	if !raster.SameResolution(res, grid.Resolution) {
		scale := res / grid.Resolution
		filter = ResampleFilter(scale, categorical)
		var err error
		data, width, height, err = Resample(data, width, height, scale, categorical)
		if err != nil {
			return nil, filter, err
		}
	}
	return fitToGrid(data, width, height, grid.Width(), grid.Height()), filter, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
