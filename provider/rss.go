package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/poiesic/newsroom/core"
)

// rss reads the configured feeds in order until limit items are collected.
// A failing feed is logged and skipped.
func (g *Gateway) rss(ctx context.Context, limit int) ([]core.RawArticle, error) {
	out := make([]core.RawArticle, 0, limit)
	var errs []error

	for _, feedURL := range g.feeds {
		if len(out) >= limit {
			break
		}

		feedCtx, cancel := context.WithTimeout(ctx, g.timeout)
		feed, err := g.parser.ParseURLWithContext(feedURL, feedCtx)
		cancel()
		if err != nil {
			g.logger.Warn("feed fetch failed", "feed", feedURL, "err", err)
			errs = append(errs, fmt.Errorf("fetching %s: %w", feedURL, err))
			continue
		}

		for _, item := range feed.Items {
			if len(out) >= limit {
				break
			}
			out = append(out, feedItemToRaw(item))
		}
	}

	if len(out) == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return nil, fmt.Errorf("%w: rss", ErrNoArticles)
	}
	return out, nil
}

func feedItemToRaw(item *gofeed.Item) core.RawArticle {
	desc := item.Description
	if desc == "" {
		desc = item.Content
	}

	published := item.Published
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC().Format(time.RFC3339)
	} else if item.UpdatedParsed != nil {
		published = item.UpdatedParsed.UTC().Format(time.RFC3339)
	}

	image := ""
	if item.Image != nil {
		image = item.Image.URL
	}
	if image == "" {
		for _, enc := range item.Enclosures {
			if enc != nil && strings.HasPrefix(enc.Type, "image/") {
				image = enc.URL
				break
			}
		}
	}

	return core.RawArticle{
		Title:       strings.TrimSpace(item.Title),
		URL:         item.Link,
		Summary:     stripHTML(desc),
		PublishedAt: published,
		ImageURL:    image,
	}
}
