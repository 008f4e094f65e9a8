package processor

import (
	"fmt"
	"math"
	"strconv"

	"github.com/nci/gcube/utils"
)

// bitTest flags a value when value&filter == want.
type bitTest struct {
	filter, want uint64
}

func parseBits(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 2, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid binary string %q", s)
	}
	return v, nil
}

// ComputeMask evaluates the bit tests of mask over a categorical band.
// The result is 1 where the pixel is flagged, 0 where it is not and NaN
// where the band has no data.
func ComputeMask(mask *utils.Mask, data []float32) ([]float32, error) {
	if len(mask.Value) == 0 {
		if len(mask.BitTests) == 0 {
			return nil, fmt.Errorf("Please specify either mask.Value or mask.BitTests")
		} else if len(mask.BitTests)%2 != 0 {
			return nil, fmt.Errorf("The entries in mask.BitTests must be in pairs")
		}
	}

	var value uint64
	var tests []bitTest
	if len(mask.Value) > 0 {
		v, err := parseBits(mask.Value)
		if err != nil {
			return nil, err
		}
		value = v
	} else {
		for j := 0; j < len(mask.BitTests); j += 2 {
			filter, err := parseBits(mask.BitTests[j])
			if err != nil {
				return nil, err
			}
			want, err := parseBits(mask.BitTests[j+1])
			if err != nil {
				return nil, err
			}
			tests = append(tests, bitTest{filter, want})
		}
	}

	out := make([]float32, len(data))
	for i, v := range data {
		if math.IsNaN(float64(v)) {
			out[i] = float32(math.NaN())
			continue
		}
		val := uint64(int64(v))
		flagged := false
		if len(mask.Value) > 0 {
			flagged = val&value > 0
		} else {
			for _, t := range tests {
				if val&t.filter == t.want {
					flagged = true
					break
				}
			}
		}
		if flagged {
			out[i] = 1
		}
	}
	return out, nil
}
