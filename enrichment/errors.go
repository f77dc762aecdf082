package enrichment

import "errors"

var (
	// ErrClassifierRequired is returned when no topic classifier is provided.
	ErrClassifierRequired = errors.New("topic classifier required")

	// ErrExtractorRequired is returned when no entity extractor is provided.
	ErrExtractorRequired = errors.New("entity extractor required")
)
