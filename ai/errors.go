package ai

import "errors"

var (
	// ErrUnknownBackend is returned for a Backend value outside the supported set.
	ErrUnknownBackend = errors.New("unknown ai backend")

	// ErrMalformedResponse indicates a model answered with a payload that could not be decoded.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrResourceClosed is returned by Resource.Get after Close.
	ErrResourceClosed = errors.New("model resource is closed")
)
