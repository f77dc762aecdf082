package keyword

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/poiesic/newsroom/ai"
)

// topicKeywords maps a lower-cased label to the keywords that vote for it.
var topicKeywords = map[string][]string{
	"politics": {
		"election", "government", "minister", "president", "parliament", "senate",
		"congress", "policy", "vote", "campaign", "diplomat", "regulation",
		"law", "court", "party", "governance", "sanction", "treaty",
	},
	"finance": {
		"market", "stock", "bank", "economy", "economic", "inflation", "interest rate",
		"investor", "trade", "currency", "earnings", "revenue", "profit", "bond",
		"shares", "nasdaq", "dow", "crypto", "bitcoin", "budget", "tax",
	},
	"science": {
		"science", "scientist", "research", "study", "discovery", "physics",
		"biology", "chemistry", "space", "nasa", "telescope", "climate",
		"genome", "quantum", "vaccine", "medical", "technology", "ai",
	},
	"culture": {
		"film", "movie", "music", "art", "museum", "festival", "book", "novel",
		"theater", "theatre", "fashion", "celebrity", "album", "exhibition",
		"culture", "cultural", "heritage", "award",
	},
	"sport": {
		"match", "game", "team", "league", "cup", "championship", "tournament",
		"player", "coach", "goal", "score", "season", "olympic", "football",
		"soccer", "tennis", "basketball", "victory", "win", "sport", "sports",
	},
}

// TopicClassifier implements ai.TopicClassifier by counting keyword hits.
// Labels without any hit are left out of the ranking.
type TopicClassifier struct{}

var _ ai.TopicClassifier = (*TopicClassifier)(nil)

// Rank scores each candidate label by keyword hits in text. Ties keep the
// candidate order. An empty result means no label matched.
func (c *TopicClassifier) Rank(ctx context.Context, text string, labels []string) ([]ai.LabelScore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := tokenize(text)
	lower := strings.ToLower(text)

	ranked := make([]ai.LabelScore, 0, len(labels))
	for _, label := range labels {
		score := 0
		for _, kw := range topicKeywords[strings.ToLower(label)] {
			if strings.Contains(kw, " ") {
				// Multi-word keyword: check in pre-lowered text
				if strings.Contains(lower, kw) {
					score++
				}
				continue
			}
			for _, t := range tokens {
				if t == kw || (len(kw) > 3 && strings.HasPrefix(t, kw)) {
					score++
				}
			}
		}
		if score > 0 {
			ranked = append(ranked, ai.LabelScore{Label: label, Score: float64(score)})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked, nil
}

func tokenize(s string) []string {
	var tokens []string
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word != "" {
			tokens = append(tokens, word)
		}
	}
	return tokens
}
