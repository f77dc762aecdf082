package keyword

import "github.com/poiesic/newsroom/ai"

// Provider implements ai.Provider without any model. It is deterministic and
// needs no network, which makes it the fallback when no backend is configured.
type Provider struct {
	classifier *TopicClassifier
	extractor  *EntityExtractor
}

// NewProvider returns an offline provider.
func NewProvider() ai.Provider {
	return &Provider{
		classifier: &TopicClassifier{},
		extractor:  &EntityExtractor{},
	}
}

// TopicClassifier returns the keyword scorer.
func (p *Provider) TopicClassifier() ai.TopicClassifier {
	return p.classifier
}

// EntityExtractor returns the capitalisation tagger.
func (p *Provider) EntityExtractor() ai.EntityExtractor {
	return p.extractor
}

// Close is a no-op.
func (p *Provider) Close() error {
	return nil
}
