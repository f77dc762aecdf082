// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID is the opaque identifier of a stored record.
// It is assigned once at enrichment time and never changes.
type ID string

// NewID returns a fresh random identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// String returns the identifier as a plain string.
func (id ID) String() string {
	return string(id)
}

// Topic is a label from the fixed category set.
type Topic string

const (
	TopicPolitics Topic = "Politics"
	TopicFinance  Topic = "Finance"
	TopicScience  Topic = "Science"
	TopicCulture  Topic = "Culture"
	TopicSport    Topic = "Sport"
)

// Categories is the closed, ordered set of topics an article can be labelled with.
// The order matters: the first member is the default when classification fails.
var Categories = []Topic{TopicPolitics, TopicFinance, TopicScience, TopicCulture, TopicSport}

// DefaultTopic is used whenever the classifier produces no usable ranking.
var DefaultTopic = Categories[0]

// CategoryLabels returns the category set as plain strings, in canonical order.
func CategoryLabels() []string {
	labels := make([]string, len(Categories))
	for i, c := range Categories {
		labels[i] = string(c)
	}
	return labels
}

// ParseTopic maps a label to a member of the category set, ignoring case and
// surrounding whitespace. The second return value is false for unknown labels.
func ParseTopic(label string) (Topic, bool) {
	label = strings.TrimSpace(label)
	for _, c := range Categories {
		if strings.EqualFold(string(c), label) {
			return c, true
		}
	}
	return "", false
}

// IsKnown reports whether t is a member of the category set.
func (t Topic) IsKnown() bool {
	_, ok := ParseTopic(string(t))
	return ok && string(t) != ""
}

// RawArticle is a provider-shaped news item. It only lives between a fetch
// and the enrichment/publish steps. Empty strings mean "absent".
type RawArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	Summary     string `json:"summary,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`

	// Category is set only when an upstream already knows the topic.
	Category string `json:"category,omitempty"`
}

// ClassificationText is the input handed to the classifier and entity
// extractor: title and summary joined by a single space.
func (a RawArticle) ClassificationText() string {
	return a.Title + " " + a.Summary
}

// Record is an enriched article as kept by the record store.
type Record struct {
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt string    `json:"published_at,omitempty"`
	Topic       Topic     `json:"topic"`
	Entities    []string  `json:"entities"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// DefaultProvenance tags messages emitted by the ingestion pipeline.
const DefaultProvenance = "newsroom-ingestion"

// StreamMessage is the JSON payload published for every raw article.
// It deliberately carries no identifier: consumers insert each message as a
// new document.
type StreamMessage struct {
	Title       string  `json:"title"`
	Summary     string  `json:"summary"`
	Category    string  `json:"category"`
	PublishedAt string  `json:"publishedAt"`
	URL         string  `json:"url"`
	ImageURL    string  `json:"imageUrl"`
	Score       float64 `json:"score"`
	Source      string  `json:"_source"`
}

// NewStreamMessage projects a raw article onto the wire shape.
func NewStreamMessage(a RawArticle, provenance string) StreamMessage {
	if provenance == "" {
		provenance = DefaultProvenance
	}
	return StreamMessage{
		Title:       a.Title,
		Summary:     a.Summary,
		Category:    a.Category,
		PublishedAt: a.PublishedAt,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		Score:       0,
		Source:      provenance,
	}
}
