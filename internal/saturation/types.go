package saturation

// State is one equilibrium state in provider units:
// K, MPa, kJ/kg, m³/kg and kJ/(kg·K).
type State struct {
	Temperature float64
	Pressure    float64
	Enthalpy    float64
	Volume      float64
	Entropy     float64
	Energy      float64
}

// Properties is the saturation record in SI base units.
type Properties struct {
	Pressure    float64 // Pa, as requested
	Temperature float64 // K

	HLiquid, HVapor     float64 // J/kg
	RhoLiquid, RhoVapor float64 // kg/m³
	SLiquid, SVapor     float64 // J/(kg·K)
	ULiquid, UVapor     float64 // J/kg
}

// Latent returns the latent heat of vaporisation in J/kg.
func (p Properties) Latent() float64 {
	return p.HVapor - p.HLiquid
}
