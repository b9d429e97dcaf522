// Package bleve estimates the energy released by the burst of a vessel of
// saturated water and the resulting overpressure effect distances.
package bleve

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/Agrid-Dev/thermoprops/internal/saturation"
)

const (
	AtmosphericPressurePa = 101325.0
	DefaultAsb            = 2.0

	curvePoints = 100
)

// PropertiesSource is the saturation lookup the calculator depends on. The
// in-process service and the remote API client both satisfy it.
type PropertiesSource interface {
	Properties(ctx context.Context, pressurePa float64) (saturation.Properties, error)
}

type Calculator struct {
	props PropertiesSource
}

func NewCalculator(p PropertiesSource) *Calculator {
	return &Calculator{props: p}
}

// ParseThresholds reads a comma separated list of overpressures, dropping
// entries that are not positive numbers.
func ParseThresholds(s string) []float64 {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

func validate(in Inputs) ([]float64, error) {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
	switch {
	case !finite(in.Volume) || in.Volume <= 0:
		return nil, fmt.Errorf("%w: vessel volume must be a positive number", ErrInvalidInput)
	case !finite(in.LiquidFraction) || in.LiquidFraction <= 0 || in.LiquidFraction > 1:
		return nil, fmt.Errorf("%w: liquid volume fraction must be between 0 and 1", ErrInvalidInput)
	case !finite(in.PressureRel) || in.PressureRel < 0:
		return nil, fmt.Errorf("%w: relative rupture pressure must be a non-negative number", ErrInvalidInput)
	case !finite(in.Asb) || in.Asb <= 0:
		return nil, fmt.Errorf("%w: surface factor (Asb) must be greater than 0", ErrInvalidInput)
	}

	thresholds := make([]float64, 0, len(in.Thresholds))
	for _, t := range in.Thresholds {
		if finite(t) && t > 0 {
			thresholds = append(thresholds, t)
		}
	}
	if len(thresholds) == 0 {
		return nil, fmt.Errorf("%w: at least one positive overpressure threshold is required", ErrInvalidInput)
	}
	return thresholds, nil
}

type recorder []Step

func (r *recorder) add(desc string, v float64, unit string) {
	*r = append(*r, Step{Description: desc, Value: significant(v, 5), Unit: unit})
}

func (r *recorder) text(desc, text, unit string) {
	*r = append(*r, Step{Description: desc, Text: text, Unit: unit})
}

func significant(v float64, digits int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	out, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'g', digits, 64), 64)
	return out
}

// Calculate runs the isentropic expansion from the rupture pressure down to
// atmospheric pressure and derives effect distances from the released energy.
//
// Errors: ErrInvalidInput for bad inputs (no lookup is made),
// ErrInvalidVaporFraction when the final state is not two-phase, and any
// error of the properties source unchanged.
func (c *Calculator) Calculate(ctx context.Context, in Inputs) (Results, error) {
	thresholds, err := validate(in)
	if err != nil {
		return Results{}, err
	}

	var steps recorder
	steps.add("Total Volume (V_tot)", in.Volume, "m³")
	steps.add("Liquid Volume Fraction (φ_l)", in.LiquidFraction, "-")
	steps.add("Initial Relative Pressure (P_rel)", in.PressureRel, "bar")
	pInitial := in.PressureRel*1e5 + AtmosphericPressurePa
	steps.add("Initial Absolute Pressure (P_i)", pInitial/1e5, "bar")

	initial, err := c.props.Properties(ctx, pInitial)
	if err != nil {
		return Results{}, err
	}
	steps.text("Initial Temperature", strconv.FormatFloat(initial.Temperature-273.15, 'f', 2, 64), "°C")
	steps.add("Initial Liquid Enthalpy (h_l_i)", initial.HLiquid/1e3, "kJ/kg")
	steps.add("Initial Vapor Enthalpy (h_v_i)", initial.HVapor/1e3, "kJ/kg")
	steps.add("Initial Liquid Density (ρ_l_i)", initial.RhoLiquid, "kg/m³")
	steps.add("Initial Vapor Density (ρ_v_i)", initial.RhoVapor, "kg/m³")
	steps.add("Initial Liquid Entropy (s_l_i)", initial.SLiquid/1e3, "kJ/kg.K")
	steps.add("Initial Vapor Entropy (s_v_i)", initial.SVapor/1e3, "kJ/kg.K")

	vl := in.Volume * in.LiquidFraction
	vv := in.Volume - vl
	ml := initial.RhoLiquid * vl
	mv := initial.RhoVapor * vv
	mass := ml + mv
	steps.add("Liquid Volume (V_l)", vl, "m³")
	steps.add("Vapor Volume (V_v)", vv, "m³")
	steps.add("Liquid Mass (m_l)", ml, "kg")
	steps.add("Vapor Mass (m_v)", mv, "kg")
	steps.add("Total Mass (M_tot)", mass, "kg")

	ui := ml*initial.ULiquid + mv*initial.UVapor
	steps.add("Initial Liquid Internal Energy (u_l_i)", initial.ULiquid/1e3, "kJ/kg")
	steps.add("Initial Vapor Internal Energy (u_v_i)", initial.UVapor/1e3, "kJ/kg")
	steps.add("Total Initial Internal Energy (U_i)", ui/1e6, "MJ")

	si := (ml*initial.SLiquid + mv*initial.SVapor) / mass
	steps.add("Average Initial Entropy (s_i)", si/1e3, "kJ/kg.K")

	final, err := c.props.Properties(ctx, AtmosphericPressurePa)
	if err != nil {
		return Results{}, err
	}
	steps.add("Final Liquid Entropy (s_l_f)", final.SLiquid/1e3, "kJ/kg.K")
	steps.add("Final Vapor Entropy (s_v_f)", final.SVapor/1e3, "kJ/kg.K")

	y := (si - final.SLiquid) / (final.SVapor - final.SLiquid)
	steps.add("Final Vapor Mass Fraction (y)", y, "-")
	if !(y >= 0 && y <= 1) {
		return Results{}, ErrInvalidVaporFraction
	}

	uf := mass * ((1-y)*final.ULiquid + y*final.UVapor)
	steps.add("Final Liquid Internal Energy (u_l_f)", final.ULiquid/1e3, "kJ/kg")
	steps.add("Final Vapor Internal Energy (u_v_f)", final.UVapor/1e3, "kJ/kg")
	steps.add("Total Final Internal Energy (U_f)", uf/1e6, "MJ")

	available := ui - uf
	steps.add("Available Energy (E_available = Ui - Uf)", available/1e6, "MJ")
	effective := in.Asb * available
	steps.add("Surface Factor (Asb)", in.Asb, "-")
	steps.add("Effective Energy (E_effective = Asb * E_available)", effective/1e6, "MJ")

	distances := make([]Distance, len(thresholds))
	for i, t := range thresholds {
		distances[i] = Distance{Threshold: t, Distance: EffectDistance(t, effective)}
	}

	return Results{
		AvailableEnergy: available,
		EffectiveEnergy: effective,
		Distances:       distances,
		Steps:           steps,
		Curve:           overpressureCurve(thresholds, distances, effective),
	}, nil
}

func overpressureCurve(thresholds []float64, distances []Distance, energyJ float64) []CurvePoint {
	maxDist := 0.0
	for _, d := range distances {
		maxDist = max(maxDist, d.Distance)
	}
	maxDist *= 1.2

	hi := max(slices.Max(thresholds), 300)
	lo := min(slices.Min(thresholds), 10) * 0.5

	curve := make([]CurvePoint, 0, curvePoints+1)
	for i := 0; i <= curvePoints; i++ {
		p := hi - float64(i)*(hi-lo)/curvePoints
		if p <= 0 {
			continue
		}
		d := EffectDistance(p, energyJ)
		if d > 0 && d < 2*maxDist {
			curve = append(curve, CurvePoint{Distance: d, Overpressure: p})
		}
	}
	slices.SortStableFunc(curve, func(a, b CurvePoint) int { return cmp.Compare(a.Distance, b.Distance) })
	return curve
}
