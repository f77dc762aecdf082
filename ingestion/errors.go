package ingestion

import "errors"

var (
	// ErrGatewayRequired is returned when no article source is provided.
	ErrGatewayRequired = errors.New("gateway required")

	// ErrEngineRequired is returned when no enrichment engine is provided.
	ErrEngineRequired = errors.New("enrichment engine required")

	// ErrStoreRequired is returned when no record store is provided.
	ErrStoreRequired = errors.New("record store required")

	// ErrPipelineReleased is returned by RunCycle after Release.
	ErrPipelineReleased = errors.New("pipeline released")
)
