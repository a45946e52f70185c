package generation

import "fmt"

// ContentValidationError indicates a slide's generated content failed its
// schema contract even after retrying. The pipeline degrades the slide
// rather than failing the run.
type ContentValidationError struct {
	SlideNumber int
	Message     string
	Cause       error
}

func (e *ContentValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("content validation error on slide %d: %s: %v", e.SlideNumber, e.Message, e.Cause)
	}
	return fmt.Sprintf("content validation error on slide %d: %s", e.SlideNumber, e.Message)
}

func (e *ContentValidationError) Unwrap() error {
	return e.Cause
}

// GenerationError indicates a slide's content call failed outright
// (transport or provider failure rather than a contract mismatch).
type GenerationError struct {
	SlideNumber int
	Message     string
	Cause       error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error on slide %d: %s: %v", e.SlideNumber, e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error on slide %d: %s", e.SlideNumber, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
