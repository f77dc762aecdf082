package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/poiesic/newsroom/core"
)

const (
	// DefaultBaseURL is the NewsAPI endpoint root.
	DefaultBaseURL = "https://newsapi.org"

	// DefaultRegion scopes the headline tier.
	DefaultRegion = "us"

	// DefaultQuery is the keyword union used by the broad tier.
	DefaultQuery = "technology OR science OR politics OR sports OR culture"

	// DefaultLanguage restricts the broad tier; enrichment models are English.
	DefaultLanguage = "en"
)

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

// newsAPIArticle mirrors the upstream item. JSON null decodes to "".
type newsAPIArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PublishedAt string `json:"publishedAt"`
	URLToImage  string `json:"urlToImage"`
}

func (a newsAPIArticle) toRaw() core.RawArticle {
	return core.RawArticle{
		Title:       a.Title,
		URL:         a.URL,
		Summary:     stripHTML(a.Description),
		PublishedAt: a.PublishedAt,
		ImageURL:    a.URLToImage,
	}
}

// topHeadlines queries the low-latency headline endpoint for the configured region.
func (g *Gateway) topHeadlines(ctx context.Context, limit int) ([]core.RawArticle, error) {
	params := url.Values{}
	params.Set("country", g.region)
	params.Set("pageSize", strconv.Itoa(limit))
	return g.newsAPI(ctx, "/v2/top-headlines", params, limit)
}

// everything queries the broad keyword endpoint sorted by recency.
func (g *Gateway) everything(ctx context.Context, limit int) ([]core.RawArticle, error) {
	params := url.Values{}
	params.Set("q", g.query)
	params.Set("language", DefaultLanguage)
	params.Set("pageSize", strconv.Itoa(limit))
	params.Set("sortBy", "publishedAt")
	return g.newsAPI(ctx, "/v2/everything", params, limit)
}

func (g *Gateway) newsAPI(ctx context.Context, path string, params url.Values, limit int) ([]core.RawArticle, error) {
	params.Set("apiKey", g.apiKey)

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	endpoint := g.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrUnexpectedStatus, path, resp.StatusCode, snippet)
	}

	var body newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if len(body.Articles) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoArticles, path)
	}

	if len(body.Articles) > limit {
		body.Articles = body.Articles[:limit]
	}
	out := make([]core.RawArticle, 0, len(body.Articles))
	for _, a := range body.Articles {
		out = append(out, a.toRaw())
	}
	return out, nil
}
