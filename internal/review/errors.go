package review

import "fmt"

// ReviewError indicates the holistic review could not be completed. Review
// failures are not fatal for a run; the pipeline keeps the generated deck
// and records that review was skipped.
type ReviewError struct {
	Message string
	Cause   error
}

func (e *ReviewError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("review error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("review error: %s", e.Message)
}

func (e *ReviewError) Unwrap() error {
	return e.Cause
}
