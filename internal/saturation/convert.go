package saturation

import "math"

const (
	pascalsPerMegapascal = 1_000_000.0
	pascalsPerBar        = 100_000.0
	kilo                 = 1000.0
)

func PascalToMegapascal(pa float64) float64 {
	return pa / pascalsPerMegapascal
}

func PascalToBar(pa float64) float64 {
	return pa / pascalsPerBar
}

// ValidatePressure accepts finite pressures strictly above zero. There is
// no upper bound here; the provider decides what it can evaluate.
func ValidatePressure(pa float64) error {
	if math.IsNaN(pa) || math.IsInf(pa, 0) || pa <= 0 {
		return ErrInvalidPressure
	}
	return nil
}

// Assemble converts two provider states into Properties. pressurePa is
// echoed as given, never recomputed from the provider's MPa value.
func Assemble(pressurePa float64, liquid, vapor State) Properties {
	return Properties{
		Pressure:    pressurePa,
		Temperature: liquid.Temperature,
		HLiquid:     liquid.Enthalpy * kilo,
		HVapor:      vapor.Enthalpy * kilo,
		RhoLiquid:   1 / liquid.Volume,
		RhoVapor:    1 / vapor.Volume,
		SLiquid:     liquid.Entropy * kilo,
		SVapor:      vapor.Entropy * kilo,
		ULiquid:     liquid.Energy * kilo,
		UVapor:      vapor.Energy * kilo,
	}
}
