// Package mock provides test double implementations of the ai interfaces.
//
// The mocks let enrichment and ingestion tests run without a model service
// and with controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	ranked, err := provider.TopicClassifier().Rank(ctx, "Sport news", core.CategoryLabels())
//
//	// Custom behavior injection
//	classifier := mock.NewMockTopicClassifier().
//	    WithRankFunc(func(ctx context.Context, text string, labels []string) ([]ai.LabelScore, error) {
//	        return nil, errors.New("model offline")
//	    })
//
//	// Check call counts
//	count := classifier.CallCount()
//
// # Default Behavior
//
//   - MockTopicClassifier: labels named in the text rank first
//   - MockEntityExtractor: every capitalised word is an entity
//   - MockProvider: aggregates the two
package mock
