package saturation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPressure        = errors.New("pressure must be a finite number greater than zero")
	ErrOutsideSaturationRange = errors.New("pressure outside the saturation range")
)

// OutOfRangeError is returned when a syntactically valid pressure has no
// saturation state. The message is user-facing.
type OutOfRangeError struct {
	PressurePa float64
	Err        error
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("Pressure %.3f bar(abs) is outside IAPWS saturation range.", PascalToBar(e.PressurePa))
}

func (e *OutOfRangeError) Unwrap() error {
	return e.Err
}
