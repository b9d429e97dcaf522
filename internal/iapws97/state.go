// Package iapws97 implements the IAPWS Industrial Formulation 1997 for the
// thermodynamic properties of water and steam, limited to what saturation
// lookups need: regions 1, 2 and 3 and the saturation line (region 4).
//
// Units follow the formulation: MPa, K, kJ/kg, kJ/(kg·K) and m³/kg.
package iapws97

import (
	"errors"
	"fmt"
	"math"
)

const (
	R = 0.461526 // specific gas constant, kJ/(kg·K)

	CriticalTemperature = 647.096 // K
	CriticalPressure    = 22.064  // MPa
	CriticalDensity     = 322.0   // kg/m³

	// Lower end of the IF97 saturation line (0 °C).
	MinSaturationTemperature = 273.15         // K
	MinSaturationPressure    = 611.212677e-06 // MPa

	// Region 1/3 boundary temperature on the saturation line.
	region3Temperature = 623.15 // K
)

// State is a single equilibrium state.
type State struct {
	Region      int
	Temperature float64 // K
	Pressure    float64 // MPa
	Volume      float64 // m³/kg
	Enthalpy    float64 // kJ/kg
	Entropy     float64 // kJ/(kg·K)
	Energy      float64 // kJ/kg
	Quality     float64 // vapour mass fraction, 0 outside region 4
}

// Density returns 1/Volume in kg/m³.
func (s State) Density() float64 {
	return 1 / s.Volume
}

var ErrInvalidQuality = errors.New("vapour quality must be within [0, 1]")

// RangeError reports an input outside the validity range of the formulation.
type RangeError struct {
	Quantity string
	Value    float64
	Min, Max float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("iapws97: %s %g outside [%g, %g]", e.Quantity, e.Value, e.Min, e.Max)
}

// Saturated returns the two-phase state at pressure p (MPa) and vapour
// quality x. x=0 is saturated liquid, x=1 saturated vapour.
func Saturated(p, x float64) (State, error) {
	if !(x >= 0 && x <= 1) {
		return State{}, ErrInvalidQuality
	}
	t, err := SaturationTemperature(p)
	if err != nil {
		return State{}, err
	}

	var liquid, vapor State
	if t <= region3Temperature {
		liquid = Region1(p, t)
		vapor = Region2(p, t)
	} else {
		rhoL, err := region3SaturatedDensity(p, t, true)
		if err != nil {
			return State{}, err
		}
		rhoV, err := region3SaturatedDensity(p, t, false)
		if err != nil {
			return State{}, err
		}
		liquid = Region3(rhoL, t)
		vapor = Region3(rhoV, t)
	}

	st := State{
		Region:      4,
		Temperature: t,
		Pressure:    p,
		Volume:      mix(liquid.Volume, vapor.Volume, x),
		Enthalpy:    mix(liquid.Enthalpy, vapor.Enthalpy, x),
		Entropy:     mix(liquid.Entropy, vapor.Entropy, x),
		Energy:      mix(liquid.Energy, vapor.Energy, x),
		Quality:     x,
	}
	if !st.finite() {
		return State{}, &RangeError{Quantity: "pressure", Value: p, Min: MinSaturationPressure, Max: CriticalPressure}
	}
	return st, nil
}

func mix(liquid, vapor, x float64) float64 {
	switch x {
	case 0:
		return liquid
	case 1:
		return vapor
	}
	return liquid + x*(vapor-liquid)
}

func (s State) finite() bool {
	for _, v := range []float64{s.Temperature, s.Volume, s.Enthalpy, s.Entropy, s.Energy} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
