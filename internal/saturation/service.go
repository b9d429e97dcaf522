package saturation

import "context"

const (
	qualityLiquid = 0
	qualityVapor  = 1
)

// Service answers saturation-property queries. It holds no mutable state.
type Service struct {
	provider Provider
}

func NewService(p Provider) *Service {
	if p == nil {
		p = IAPWS97{}
	}
	return &Service{provider: p}
}

// Properties validates pressurePa, looks up the saturated liquid and vapour
// states and converts them to SI base units.
//
// Errors: ErrInvalidPressure before any provider call, *OutOfRangeError for
// any provider failure.
func (s *Service) Properties(_ context.Context, pressurePa float64) (Properties, error) {
	if err := ValidatePressure(pressurePa); err != nil {
		return Properties{}, err
	}
	mpa := PascalToMegapascal(pressurePa)

	liquid, err := s.provider.SaturatedState(mpa, qualityLiquid)
	if err != nil {
		return Properties{}, &OutOfRangeError{PressurePa: pressurePa, Err: err}
	}
	vapor, err := s.provider.SaturatedState(mpa, qualityVapor)
	if err != nil {
		return Properties{}, &OutOfRangeError{PressurePa: pressurePa, Err: err}
	}

	return Assemble(pressurePa, liquid, vapor), nil
}
