package export

import "fmt"

// RenderingError indicates the deck artifact could not be written or its
// slide images could not be produced. Rendering failures are fatal for a
// run because review and the final artifact both depend on them.
type RenderingError struct {
	Message string
	Cause   error
}

func (e *RenderingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rendering error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("rendering error: %s", e.Message)
}

func (e *RenderingError) Unwrap() error {
	return e.Cause
}
