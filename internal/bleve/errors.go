package bleve

import "errors"

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidVaporFraction = errors.New("calculation resulted in an invalid final vapor fraction, check input parameters")
)
