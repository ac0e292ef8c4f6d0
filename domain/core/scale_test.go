package core

import (
	"math"
	"testing"
)

func TestScaleByMaxAbs(t *testing.T) {
	scaled, factor := ScaleByMaxAbs([]float64{-4, 2, 1})
	if factor != 4 {
		t.Fatalf("expected factor 4, got %v", factor)
	}
	want := []float64{-1, 0.5, 0.25}
	for i := range want {
		if scaled[i] != want[i] {
			t.Errorf("scaled[%d] = %v, want %v", i, scaled[i], want[i])
		}
	}

	zeros := []float64{0, 0}
	if out, f := ScaleByMaxAbs(zeros); f != 1 || &out[0] != &zeros[0] {
		t.Errorf("all-zero input should be returned unscaled")
	}

	big, f := ScaleByMaxAbs([]float64{1e300, -1e300})
	if f != 1e300 || big[0] != 1 || big[1] != -1 {
		t.Errorf("unexpected scaling of large values: %v %v", big, f)
	}
	if math.IsInf(big[0]*big[0]*1e3, 0) {
		t.Error("scaled squares should be finite")
	}
}
