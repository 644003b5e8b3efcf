package mpole

import (
	"errors"
	"fmt"
)

// Domain errors for multipole setup and evaluation.
var (
	// ErrInvalidAxisType indicates an axis type outside the known set.
	ErrInvalidAxisType = errors.New("mpole: invalid axis type")

	// ErrBadFrameReference indicates a frame anchor that is missing,
	// out of range, or refers to the particle itself.
	ErrBadFrameReference = errors.New("mpole: bad frame particle reference")

	// ErrInvalidBox indicates box vectors that are not reduced-form or
	// have non-positive volume.
	ErrInvalidBox = errors.New("mpole: invalid periodic box vectors")

	// ErrNotConverged indicates the induced-dipole solve exhausted its
	// iteration budget above the tolerance.
	ErrNotConverged = errors.New("mpole: induced dipoles failed to converge")

	// ErrGridTooSmall indicates a reciprocal grid dimension below the
	// spline order.
	ErrGridTooSmall = errors.New("mpole: reciprocal grid smaller than spline order")

	// ErrInvalidParameter indicates a particle parameter outside its
	// valid range.
	ErrInvalidParameter = errors.New("mpole: parameter out of valid bounds")
)

// SetupError wraps a domain error with the particle it arose from.
type SetupError struct {
	Particle int
	Wrapped  error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("particle %d: %v", e.Particle, e.Wrapped)
}

func (e *SetupError) Unwrap() error {
	return e.Wrapped
}
