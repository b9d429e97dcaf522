package saturation

import (
	"fmt"

	"github.com/Agrid-Dev/thermoprops/internal/iapws97"
)

// Provider evaluates a saturation state at pressureMPa and vapour quality
// (0 liquid, 1 vapour). Implementations must be safe for concurrent use.
type Provider interface {
	SaturatedState(pressureMPa, quality float64) (State, error)
}

// IAPWS97 is the Provider backed by the IF97 industrial formulation.
type IAPWS97 struct{}

func (IAPWS97) SaturatedState(pressureMPa, quality float64) (State, error) {
	st, err := iapws97.Saturated(pressureMPa, quality)
	if err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrOutsideSaturationRange, err)
	}
	return State{
		Temperature: st.Temperature,
		Pressure:    st.Pressure,
		Enthalpy:    st.Enthalpy,
		Volume:      st.Volume,
		Entropy:     st.Entropy,
		Energy:      st.Energy,
	}, nil
}
