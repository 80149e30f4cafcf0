package logmeal

import (
	"errors"
	"fmt"
)

// ErrNoDishDetected is returned when segmentation yields no usable region:
// the image was processed but nothing on it could be identified as food.
// Distinct from transport failures so callers can phrase feedback
// accordingly.
var ErrNoDishDetected = errors.New("no dish detected in image")

// ErrNoNutritionData is returned when the nutrition payload of a confirmed
// dish carries no usable nutrient table.
var ErrNoNutritionData = errors.New("could not process nutrition data")

// ServiceError is a failed remote call: a non-2xx status, an empty body, or
// an unreadable payload. Status and Body are kept for diagnostics.
type ServiceError struct {
	Op     string
	Status int
	Body   string
	Err    error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("%s failed: status %d: %s", e.Op, e.Status, e.Body)
	}
	return fmt.Sprintf("%s failed: status %d", e.Op, e.Status)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// ValidationError is a caller bug surfaced before any network call: an
// identifier that should have come from a prior successful step is not
// positive.
type ValidationError struct {
	Field string
	Value int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Field, e.Value)
}

// StateError reports a pipeline step invoked from the wrong state, e.g. a
// confirmation issued before segmentation completed.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s in state %s", e.Op, e.State)
}
