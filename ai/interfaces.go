package ai

import "context"

// TopicClassifier ranks candidate labels for a piece of text without any
// task-specific training (zero-shot classification).
// Implementations must be thread-safe for concurrent use.
type TopicClassifier interface {
	// Rank scores every candidate label against text and returns them
	// best first. An empty result means the model produced no usable ranking.
	Rank(ctx context.Context, text string, labels []string) ([]LabelScore, error)
}

// EntityExtractor tags named entities in text.
// Implementations must be thread-safe for concurrent use.
type EntityExtractor interface {
	// Tag returns the tokens recognised as part of an entity, in encounter
	// order. Tokens may be word pieces or pre-grouped spans; use GroupTokens
	// to turn them into surface forms.
	Tag(ctx context.Context, text string) ([]Token, error)
}

// LabelScore is one ranked candidate label.
type LabelScore struct {
	Label string
	Score float64
}

// Token is a single tagged unit returned by an EntityExtractor.
type Token struct {
	// Word is the surface text of the token or span. Word-piece
	// continuations carry a "##" prefix.
	Word string

	// Entity is a token-level IOB label such as "B-PER" or "I-ORG".
	// Empty when the backend already grouped tokens.
	Entity string

	// EntityGroup is set by backends that aggregate tokens into spans
	// (e.g. "PER", "LOC"). A token with an EntityGroup is a complete entity.
	EntityGroup string

	Score float64
	Start int
	End   int
}

// Provider aggregates the model capabilities used by enrichment.
// A provider is expensive to build and is shared read-only across callers.
type Provider interface {
	// TopicClassifier returns the zero-shot classification service.
	TopicClassifier() TopicClassifier

	// EntityExtractor returns the named-entity tagging service.
	EntityExtractor() EntityExtractor

	// Close releases resources held by the provider and its services.
	Close() error
}
