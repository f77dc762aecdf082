package mock

import (
	"context"
	"strings"
	"sync"

	"github.com/poiesic/newsroom/ai"
)

// MockTopicClassifier is a test double for ai.TopicClassifier.
// It allows custom behavior injection via function fields.
type MockTopicClassifier struct {
	// RankFunc is called by Rank if set.
	// If nil, the first label mentioned in the text wins.
	RankFunc func(ctx context.Context, text string, labels []string) ([]ai.LabelScore, error)

	mu        sync.Mutex
	callCount int
	texts     []string
}

// NewMockTopicClassifier creates a mock classifier with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockTopicClassifier() *MockTopicClassifier {
	return &MockTopicClassifier{}
}

// WithRankFunc sets the function called by Rank and returns the mock.
func (m *MockTopicClassifier) WithRankFunc(fn func(ctx context.Context, text string, labels []string) ([]ai.LabelScore, error)) *MockTopicClassifier {
	m.RankFunc = fn
	return m
}

// Rank returns a ranking. Default behavior: labels that appear in the text
// (case-insensitive) come first in candidate order, followed by the rest.
func (m *MockTopicClassifier) Rank(ctx context.Context, text string, labels []string) ([]ai.LabelScore, error) {
	m.mu.Lock()
	m.callCount++
	m.texts = append(m.texts, text)
	fn := m.RankFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text, labels)
	}

	lower := strings.ToLower(text)
	hits := make([]ai.LabelScore, 0, len(labels))
	misses := make([]ai.LabelScore, 0, len(labels))
	for _, l := range labels {
		if strings.Contains(lower, strings.ToLower(l)) {
			hits = append(hits, ai.LabelScore{Label: l, Score: 0.9})
		} else {
			misses = append(misses, ai.LabelScore{Label: l, Score: 0.1})
		}
	}
	return append(hits, misses...), nil
}

// CallCount returns the number of times Rank was called.
func (m *MockTopicClassifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Texts returns every text passed to Rank, in call order.
func (m *MockTopicClassifier) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Reset clears the call history and custom functions.
func (m *MockTopicClassifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.texts = nil
	m.RankFunc = nil
}
