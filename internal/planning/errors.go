package planning

import "fmt"

// PlanningError indicates the outline could not be produced. Planning
// failures are fatal for a run because every later stage depends on the
// outline.
type PlanningError struct {
	Message string
	Cause   error
}

func (e *PlanningError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("planning error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("planning error: %s", e.Message)
}

func (e *PlanningError) Unwrap() error {
	return e.Cause
}
