package stream

import "errors"

var (
	// ErrWriterRequired is returned when a publisher is built without a writer.
	ErrWriterRequired = errors.New("stream writer required")

	// ErrReaderRequired is returned when a consumer is built without a reader.
	ErrReaderRequired = errors.New("stream reader required")

	// ErrStoreRequired is returned when a consumer is built without a document store.
	ErrStoreRequired = errors.New("document store required")

	// ErrInvalidMaxAttempts is returned by RetryWithBackoff for a non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	errInvalidEncoding = errors.New("message is not valid utf-8")
	errEmptyDocument   = errors.New("message is an empty object")
)
