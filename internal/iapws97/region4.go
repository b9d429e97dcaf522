package iapws97

import "math"

// Region 4: saturation line.
var region4 = [10]float64{
	0.11670521452767e4,
	-0.72421316703206e6,
	-0.17073846940092e2,
	0.12020824702470e5,
	-0.32325550322333e7,
	0.14915108613530e2,
	-0.48232657361591e4,
	0.40511340542057e6,
	-0.23855557567849,
	0.65017534844798e3,
}

// SaturationPressure returns the saturation pressure (MPa) at t (K).
func SaturationPressure(t float64) (float64, error) {
	if !(t >= MinSaturationTemperature && t <= CriticalTemperature) {
		return 0, &RangeError{Quantity: "temperature", Value: t, Min: MinSaturationTemperature, Max: CriticalTemperature}
	}
	n := region4
	theta := t + n[8]/(t-n[9])
	a := theta*theta + n[0]*theta + n[1]
	b := n[2]*theta*theta + n[3]*theta + n[4]
	c := n[5]*theta*theta + n[6]*theta + n[7]
	return math.Pow(2*c/(-b+math.Sqrt(b*b-4*a*c)), 4), nil
}

// SaturationTemperature returns the saturation temperature (K) at p (MPa).
func SaturationTemperature(p float64) (float64, error) {
	if !(p >= MinSaturationPressure && p <= CriticalPressure) {
		return 0, &RangeError{Quantity: "pressure", Value: p, Min: MinSaturationPressure, Max: CriticalPressure}
	}
	n := region4
	beta := math.Pow(p, 0.25)
	e := beta*beta + n[2]*beta + n[5]
	f := n[0]*beta*beta + n[3]*beta + n[6]
	g := n[1]*beta*beta + n[4]*beta + n[7]
	d := 2 * g / (-f - math.Sqrt(f*f-4*e*g))
	t := (n[9] + d - math.Sqrt((n[9]+d)*(n[9]+d)-4*(n[8]+n[9]*d))) / 2
	return math.Min(t, CriticalTemperature), nil
}
