package httpapi

import (
	"slices"
	"sync"
)

// Preferences keeps per-user topic preferences in memory.
type Preferences struct {
	mu     sync.RWMutex
	topics map[string][]string
}

// NewPreferences returns an empty preference registry.
func NewPreferences() *Preferences {
	return &Preferences{topics: make(map[string][]string)}
}

// Set replaces the topics for user.
func (p *Preferences) Set(user string, topics []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics[user] = slices.Clone(topics)
}

// Get returns the topics for user and whether any were saved.
func (p *Preferences) Get(user string) ([]string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	topics, ok := p.topics[user]
	return slices.Clone(topics), ok
}
