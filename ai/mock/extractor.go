package mock

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/poiesic/newsroom/ai"
)

// MockEntityExtractor is a test double for ai.EntityExtractor.
// It allows custom behavior injection via function fields.
type MockEntityExtractor struct {
	// TagFunc is called by Tag if set.
	// If nil, every capitalised word becomes a single-token entity.
	TagFunc func(ctx context.Context, text string) ([]ai.Token, error)

	mu        sync.Mutex
	callCount int
	texts     []string
}

// NewMockEntityExtractor creates a mock entity extractor with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockEntityExtractor() *MockEntityExtractor {
	return &MockEntityExtractor{}
}

// WithTagFunc sets the function called by Tag and returns the mock.
func (m *MockEntityExtractor) WithTagFunc(fn func(ctx context.Context, text string) ([]ai.Token, error)) *MockEntityExtractor {
	m.TagFunc = fn
	return m
}

// Tag returns mock entity tokens.
func (m *MockEntityExtractor) Tag(ctx context.Context, text string) ([]ai.Token, error) {
	m.mu.Lock()
	m.callCount++
	m.texts = append(m.texts, text)
	fn := m.TagFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}

	// Default: one pre-grouped span per capitalised word
	tokens := []ai.Token{}
	for _, word := range strings.Fields(text) {
		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word == "" {
			continue
		}
		if unicode.IsUpper([]rune(word)[0]) {
			tokens = append(tokens, ai.Token{Word: word, EntityGroup: "MISC", Score: 1})
		}
	}
	return tokens, nil
}

// CallCount returns the number of times Tag was called.
func (m *MockEntityExtractor) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Texts returns every text passed to Tag, in call order.
func (m *MockEntityExtractor) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.texts...)
}

// Reset clears the call history and custom functions.
func (m *MockEntityExtractor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.texts = nil
	m.TagFunc = nil
}
