package quad

import (
	"errors"
	"fmt"
)

// ErrNumerical indicates an integral could not be computed to tolerance.
var ErrNumerical = errors.New("quad: integration did not converge")

// QuadratureError wraps ErrNumerical with the state of the failed integral.
type QuadratureError struct {
	Reason       string
	Lo, Hi       float64
	Value        float64
	AbsErr       float64
	Subdivisions int
}

func (e *QuadratureError) Error() string {
	return fmt.Sprintf("%v: %s on [%g, %g] after %d subdivisions (value %g, abs err %g)",
		ErrNumerical, e.Reason, e.Lo, e.Hi, e.Subdivisions, e.Value, e.AbsErr)
}

func (e *QuadratureError) Unwrap() error {
	return ErrNumerical
}
