package extract

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("url is required")
	ErrNoStructuredOutput = errors.New("no JSON object found in model response")
	ErrMalformedOutput    = errors.New("model response contains malformed JSON")
)

// FetchError reports a failed page fetch. Status is zero when no response
// was received at all.
type FetchError struct {
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("failed to fetch webpage: %d", e.Status)
	}
	return fmt.Sprintf("failed to fetch webpage: %v", e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ValidationError names the first required field the model output violated.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsExtractionError reports whether err is one of the pipeline's own
// failure classes, as opposed to a configuration or transport fault.
func IsExtractionError(err error) bool {
	var fetchErr *FetchError
	var validationErr *ValidationError
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoStructuredOutput) ||
		errors.Is(err, ErrMalformedOutput) ||
		errors.As(err, &fetchErr) ||
		errors.As(err, &validationErr)
}
