package core

import "math"

// ScaleByMaxAbs divides data by its largest finite magnitude and returns the
// scaled copy with that factor. Second moments of the scaled copy cannot
// overflow. All-zero input is returned as is with factor 1.
func ScaleByMaxAbs(data []float64) ([]float64, float64) {
	factor := 0.0
	for _, v := range data {
		if a := math.Abs(v); a > factor && !math.IsInf(a, 0) {
			factor = a
		}
	}
	if factor == 0 {
		return data, 1
	}

	scaled := make([]float64, len(data))
	for i, v := range data {
		scaled[i] = v / factor
	}
	return scaled, factor
}
