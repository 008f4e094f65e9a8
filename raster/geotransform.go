package raster

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// GeoTransform holds the six GDAL affine coefficients:
//
//	x = gt[0] + col*gt[1] + row*gt[2]
//	y = gt[3] + col*gt[4] + row*gt[5]
type GeoTransform [6]float64

// Tolerance, in pixels, used when snapping projected coordinates onto
// pixel indices.
const indexEps = 1e-6

// Apply maps a pixel corner (col, row) to projected coordinates.
func (gt GeoTransform) Apply(col, row float64) (float64, float64) {
	return gt[0] + col*gt[1] + row*gt[2], gt[3] + col*gt[4] + row*gt[5]
}

// Inverse returns the transform mapping projected coordinates back to
// pixel space.
func (gt GeoTransform) Inverse() (GeoTransform, error) {
	det := gt[1]*gt[5] - gt[2]*gt[4]
	if math.Abs(det) < 1e-15 {
		return GeoTransform{}, fmt.Errorf("geotransform %v is not invertible", gt)
	}
	inv := 1 / det
	return GeoTransform{
		(gt[2]*gt[3] - gt[0]*gt[5]) * inv,
		gt[5] * inv,
		-gt[2] * inv,
		(-gt[1]*gt[3] + gt[0]*gt[4]) * inv,
		-gt[4] * inv,
		gt[1] * inv,
	}, nil
}

// Pixel returns the fractional pixel position (col, row) of a
// projected coordinate.
func (gt GeoTransform) Pixel(x, y float64) (float64, float64, error) {
	inv, err := gt.Inverse()
	if err != nil {
		return 0, 0, err
	}
	col, row := inv.Apply(x, y)
	return col, row, nil
}

// Index returns the (row, col) of the pixel containing (x, y).
func (gt GeoTransform) Index(x, y float64) (int, int, error) {
	col, row, err := gt.Pixel(x, y)
	if err != nil {
		return 0, 0, err
	}
	return int(math.Floor(row + indexEps)), int(math.Floor(col + indexEps)), nil
}

// Resolution is the pixel width in CRS units.
func (gt GeoTransform) Resolution() float64 {
	return math.Hypot(gt[1], gt[4])
}

// NorthUp reports whether the transform has no rotation terms.
func (gt GeoTransform) NorthUp() bool {
	return gt[2] == 0 && gt[4] == 0
}

// ParseI2M builds a GeoTransform from a comma separated image-to-model
// matrix "a,b,c,d,e,f" as written by ACOLITE/GRS processors.  The
// matrix is stored column major so it is reordered into GDAL order.
func ParseI2M(s string) (GeoTransform, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return GeoTransform{}, fmt.Errorf("i2m attribute must have 6 terms, found %d", len(parts))
	}
	var v [6]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return GeoTransform{}, fmt.Errorf("i2m term %d: %v", i, err)
		}
		v[i] = f
	}
	return GeoTransform{v[4], v[0], v[1], v[5], v[2], v[3]}, nil
}
