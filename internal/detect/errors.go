package detect

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResult is returned when the prediction body isn't a usable detection
	ErrInvalidResult = errors.New("invalid detection result")

	// ErrUpstream is returned when the prediction service answers with a non-2xx status
	ErrUpstream = errors.New("prediction service error")
)

// StatusError is a non-2xx answer from the prediction service
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("predict failed with status %d: %s", e.Code, e.Body)
}

// Is reports StatusError as ErrUpstream
func (e *StatusError) Is(target error) bool {
	return target == ErrUpstream
}
