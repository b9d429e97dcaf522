package bleve

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/Agrid-Dev/thermoprops/internal/saturation"
)

func nominalInputs() Inputs {
	return Inputs{
		Volume:         1.0,
		LiquidFraction: 0.7,
		PressureRel:    30,
		Asb:            DefaultAsb,
		Thresholds:     []float64{50, 140, 200},
	}
}

// countingSource answers lookups from seq in order, repeating the last entry.
type countingSource struct {
	calls int
	seq   []saturation.Properties
	err   error
}

func (s *countingSource) Properties(_ context.Context, pa float64) (saturation.Properties, error) {
	s.calls++
	if s.err != nil {
		return saturation.Properties{}, s.err
	}
	p := s.seq[min(s.calls, len(s.seq))-1]
	p.Pressure = pa
	return p, nil
}

func TestCalculate_Nominal(t *testing.T) {
	calc := NewCalculator(saturation.NewService(nil))

	res, err := calc.Calculate(context.Background(), nominalInputs())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.AvailableEnergy <= 0 {
		t.Fatalf("available energy=%v, want > 0", res.AvailableEnergy)
	}
	if res.EffectiveEnergy != 2*res.AvailableEnergy {
		t.Fatalf("effective=%v, want Asb*available=%v", res.EffectiveEnergy, 2*res.AvailableEnergy)
	}
	if len(res.Distances) != 3 {
		t.Fatalf("distances=%d, want 3", len(res.Distances))
	}
	if !(res.Distances[0].Distance > res.Distances[1].Distance && res.Distances[1].Distance > res.Distances[2].Distance) {
		t.Fatalf("distances should shrink as the threshold rises: %+v", res.Distances)
	}
	if len(res.Curve) <= 10 {
		t.Fatalf("curve has %d points, want > 10", len(res.Curve))
	}
	if !slices.IsSortedFunc(res.Curve, func(a, b CurvePoint) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		}
		return 0
	}) {
		t.Fatal("curve not sorted by distance")
	}
}

func TestCalculate_StepsAreRounded(t *testing.T) {
	res, err := NewCalculator(saturation.NewService(nil)).Calculate(context.Background(), nominalInputs())
	if err != nil {
		t.Fatal(err)
	}

	var sawTemperature bool
	for _, s := range res.Steps {
		if s.Text != "" {
			sawTemperature = s.Unit == "°C"
			continue
		}
		if s.Value != significant(s.Value, 5) {
			t.Fatalf("step %q not rounded: %v", s.Description, s.Value)
		}
	}
	if !sawTemperature {
		t.Fatal("expected a preformatted temperature step")
	}
	if res.Steps[3].Description != "Initial Absolute Pressure (P_i)" || res.Steps[3].Value != 31.013 {
		t.Fatalf("unexpected absolute pressure step: %+v", res.Steps[3])
	}
}

func TestCalculate_InvalidInputs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Inputs)
	}{
		{"zero volume", func(in *Inputs) { in.Volume = 0 }},
		{"nan volume", func(in *Inputs) { in.Volume = math.NaN() }},
		{"fraction above one", func(in *Inputs) { in.LiquidFraction = 1.2 }},
		{"zero fraction", func(in *Inputs) { in.LiquidFraction = 0 }},
		{"negative pressure", func(in *Inputs) { in.PressureRel = -1 }},
		{"zero asb", func(in *Inputs) { in.Asb = 0 }},
		{"no positive threshold", func(in *Inputs) { in.Thresholds = []float64{-1, 0} }},
		{"no threshold", func(in *Inputs) { in.Thresholds = nil }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &countingSource{}
			in := nominalInputs()
			tc.mutate(&in)

			_, err := NewCalculator(src).Calculate(context.Background(), in)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if src.calls != 0 {
				t.Fatalf("properties looked up %d times for invalid input", src.calls)
			}
		})
	}
}

func TestCalculate_OutOfRangePressurePropagates(t *testing.T) {
	in := nominalInputs()
	in.PressureRel = 300

	_, err := NewCalculator(saturation.NewService(nil)).Calculate(context.Background(), in)
	var oor *saturation.OutOfRangeError
	if !errors.As(err, &oor) {
		t.Fatalf("expected *saturation.OutOfRangeError, got %v", err)
	}
}

func TestCalculate_InvalidVaporFraction(t *testing.T) {
	initial := saturation.Properties{
		Temperature: 500,
		RhoLiquid:   800, RhoVapor: 20,
		SLiquid: 9000, SVapor: 9500,
		ULiquid: 900e3, UVapor: 2600e3,
	}
	final := saturation.Properties{
		Temperature: 373,
		RhoLiquid:   958, RhoVapor: 0.6,
		SLiquid: 1300, SVapor: 7350,
		ULiquid: 419e3, UVapor: 2506e3,
	}
	src := &countingSource{seq: []saturation.Properties{initial, final}}

	_, err := NewCalculator(src).Calculate(context.Background(), nominalInputs())
	if !errors.Is(err, ErrInvalidVaporFraction) {
		t.Fatalf("expected ErrInvalidVaporFraction, got %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected two lookups, got %d", src.calls)
	}
}

func TestCalculate_SourceErrorUnchanged(t *testing.T) {
	boom := errors.New("backend down")
	_, err := NewCalculator(&countingSource{err: boom}).Calculate(context.Background(), nominalInputs())
	if !errors.Is(err, boom) {
		t.Fatalf("expected source error, got %v", err)
	}
}

func TestParseThresholds(t *testing.T) {
	got := ParseThresholds(" 50, foo,140 ,-1, 0,200,NaN")
	want := []float64{50, 140, 200}
	if !slices.Equal(got, want) {
		t.Fatalf("ParseThresholds=%v want %v", got, want)
	}
	if ParseThresholds("foo, -1, 0") != nil {
		t.Fatal("expected no thresholds")
	}
}
