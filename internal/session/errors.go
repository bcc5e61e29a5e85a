package session

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or closed session ids
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionClosed is returned when a closed session is used
	ErrSessionClosed = errors.New("session closed")

	// ErrImageNotFound is returned for image ids not in the session
	ErrImageNotFound = errors.New("image not found")

	// ErrNotImage is returned for uploads that aren't image/*
	ErrNotImage = errors.New("upload is not an image")

	// ErrNoSelection is returned when detecting with nothing selected
	ErrNoSelection = errors.New("no image selected")

	// ErrDetectInFlight is returned while a detection for the image is pending
	ErrDetectInFlight = errors.New("detection already in progress")

	// ErrAlreadyDetected is returned for images that already have a result
	ErrAlreadyDetected = errors.New("image already detected")

	// ErrDetectDisabled is returned when no detector is configured
	ErrDetectDisabled = errors.New("detection is not configured")

	// ErrDetectFailed wraps failures of the detection backend
	ErrDetectFailed = errors.New("detection failed")
)
