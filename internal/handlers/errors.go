package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/tendant/sortbin/internal/preview"
	"github.com/tendant/sortbin/internal/session"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, session.ErrImageNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotImage),
		errors.Is(err, preview.ErrUnsupportedImage):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, session.ErrNoSelection):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrDetectDisabled),
		errors.Is(err, session.ErrDetectInFlight),
		errors.Is(err, session.ErrAlreadyDetected):
		return http.StatusConflict
	case errors.Is(err, session.ErrDetectFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err with the status it maps to
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("Request failed: %v", err)
	}
	http.Error(w, err.Error(), status)
}
