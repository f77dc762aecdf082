package httpapi

import "github.com/poiesic/newsroom/core"

// NewsView is the public JSON shape of a stored record.
type NewsView struct {
	ID          core.ID  `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	URL         string   `json:"url"`
	PublishedAt string   `json:"publishedAt"`
	Category    string   `json:"category"`
	Entities    []string `json:"entities"`
	Score       float64  `json:"score"`
	ImageURL    string   `json:"imageUrl"`
}

func renderNews(r *core.Record) NewsView {
	entities := r.Entities
	if entities == nil {
		entities = []string{}
	}
	return NewsView{
		ID:          r.ID,
		Title:       r.Title,
		Summary:     r.Summary,
		URL:         r.URL,
		PublishedAt: r.PublishedAt,
		Category:    string(r.Topic),
		Entities:    entities,
		Score:       0,
		ImageURL:    r.ImageURL,
	}
}

func renderList(records []*core.Record) []NewsView {
	views := make([]NewsView, len(records))
	for i, r := range records {
		views[i] = renderNews(r)
	}
	return views
}
