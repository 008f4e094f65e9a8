package raster

import (
	"fmt"
	"math"
)

// AnyBitSet reports, per pixel, whether any of bits is set in the
// integer value of data.  NaN pixels report false.
func AnyBitSet(data []float32, bits []int) ([]bool, error) {
	var mask uint64
	for _, b := range bits {
		if b < 0 || b > 63 {
			return nil, fmt.Errorf("bit %d out of range", b)
		}
		mask |= 1 << uint(b)
	}
	out := make([]bool, len(data))
	for i, v := range data {
		if math.IsNaN(float64(v)) {
			continue
		}
		out[i] = uint64(v)&mask > 0
	}
	return out, nil
}
