package bleve

import (
	"math"
	"testing"
)

func TestCoefficient_TablePointsAndClamping(t *testing.T) {
	cases := []struct{ p, want float64 }{
		{1, 0.11},
		{50, 0.11},
		{140, 0.05},
		{200, 0.032},
		{300, 0.028},
		{1000, 0.028},
	}
	for _, tc := range cases {
		if got := Coefficient(tc.p); got != tc.want {
			t.Fatalf("Coefficient(%v)=%v want %v", tc.p, got, tc.want)
		}
	}
}

func TestCoefficient_LogLogInterpolation(t *testing.T) {
	// Geometric midpoint of 50 and 140 maps to the geometric mean of 0.11 and 0.05.
	p := math.Sqrt(50 * 140)
	want := math.Sqrt(0.11 * 0.05)
	if got := Coefficient(p); math.Abs(got-want) > 1e-12 {
		t.Fatalf("Coefficient(%v)=%v want %v", p, got, want)
	}

	prev := Coefficient(50)
	for p := 51.0; p <= 300; p++ {
		c := Coefficient(p)
		if c > prev {
			t.Fatalf("coefficient increases at %v", p)
		}
		prev = c
	}
}

func TestEffectDistance(t *testing.T) {
	if d := EffectDistance(50, 1e6); math.Abs(d-11) > 1e-9 {
		t.Fatalf("EffectDistance(50, 1e6)=%v want 11", d)
	}
	if d := EffectDistance(0, 1e6); !math.IsInf(d, 1) {
		t.Fatalf("EffectDistance(0)=%v want +Inf", d)
	}
}
