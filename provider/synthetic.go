package provider

import "github.com/poiesic/newsroom/core"

// syntheticArticles is the filler set served when no upstream yields data.
// It covers every category once so a synthetic cycle exercises all topics.
var syntheticArticles = []core.RawArticle{
	{
		Title:       "Sample headline about AI in politics",
		URL:         "https://example.com/ai-politics",
		Summary:     "Short summary for local testing.",
		PublishedAt: "2025-09-21T10:00:00Z",
	},
	{
		Title:       "Finance: Markets rise amid tech rally",
		URL:         "https://example.com/finance",
		Summary:     "Stocks climb as investors digest earnings.",
		PublishedAt: "2025-09-21T11:00:00Z",
	},
	{
		Title:       "Science: New telescope discovery",
		URL:         "https://example.com/science",
		Summary:     "Interesting finding in space.",
		PublishedAt: "2025-09-21T12:00:00Z",
	},
	{
		Title:       "Culture: Festival opens downtown",
		URL:         "https://example.com/culture",
		Summary:     "City hosts annual event.",
		PublishedAt: "2025-09-21T13:00:00Z",
	},
	{
		Title:       "Sport: Local team wins",
		URL:         "https://example.com/sport",
		Summary:     "Big victory last night.",
		PublishedAt: "2025-09-21T14:00:00Z",
	},
}

// Synthetic returns exactly limit filler articles, cycling through the base
// set. A non-positive limit yields an empty slice.
func Synthetic(limit int) []core.RawArticle {
	if limit <= 0 {
		return []core.RawArticle{}
	}
	out := make([]core.RawArticle, limit)
	for i := range out {
		out[i] = syntheticArticles[i%len(syntheticArticles)]
	}
	return out
}

// SyntheticBase returns a copy of the base filler set.
func SyntheticBase() []core.RawArticle {
	return append([]core.RawArticle(nil), syntheticArticles...)
}
