package video

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when an operation needs an initialised renderer.
var ErrNotReady = errors.New("no renderer is ready")

// BackendError provides context for a failed backend operation.
type BackendError struct {
	Operation string // What was being attempted ("init", "switch")
	Backend   string // Backend display name
	Err       error  // Underlying error if any
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("renderer %s %s failed: %v", e.Backend, e.Operation, e.Err)
	}
	return fmt.Sprintf("renderer %s %s failed", e.Backend, e.Operation)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
