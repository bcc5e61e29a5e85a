package preview

import "errors"

var (
	// ErrUnknownHandle is returned for handles that were never issued or are already revoked
	ErrUnknownHandle = errors.New("unknown preview handle")

	// ErrUnsupportedImage is returned when the upload can't be decoded as an image
	ErrUnsupportedImage = errors.New("unsupported image")
)
