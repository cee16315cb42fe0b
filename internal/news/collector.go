package news

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"news-notifier/internal/feeds"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	feedRequestTimeout = 15 * time.Second
	userAgent          = "news-notifier/1.0"
)

// Collector fetches recent entries from the configured RSS/Atom feeds.
type Collector struct {
	parser     *gofeed.Parser
	limiter    *rate.Limiter
	lookback   time.Duration
	maxPerFeed int
	logger     zerolog.Logger
}

// NewCollector creates a Collector keeping entries published within the
// lookback window, at most maxPerFeed per feed.
func NewCollector(lookback time.Duration, maxPerFeed int, logger zerolog.Logger) *Collector {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: feedRequestTimeout}
	parser.UserAgent = userAgent

	return &Collector{
		parser:     parser,
		limiter:    rate.NewLimiter(rate.Every(time.Second), 2),
		lookback:   lookback,
		maxPerFeed: maxPerFeed,
		logger:     logger.With().Str("component", "collector").Logger(),
	}
}

// Collect gathers items from every feed in the registry. A failing feed is
// logged and skipped; it does not fail the run.
func (c *Collector) Collect(ctx context.Context, registry *feeds.Registry) []Item {
	var items []Item

	for _, feed := range registry.Feeds {
		feedLogger := c.logger.With().Str("feed", feed.Name).Logger()
		feedLogger.Info().Str("url", feed.URL).Msg("Collecting feed")

		feedItems, err := c.collectFeed(ctx, feed)
		if err != nil {
			feedLogger.Error().Err(err).Msg("Failed to collect feed")
			continue
		}

		feedLogger.Debug().Int("item_count", len(feedItems)).Msg("Feed collected")
		items = append(items, feedItems...)
	}

	return items
}

// collectFeed fetches one feed and keeps its recent entries
func (c *Collector) collectFeed(ctx context.Context, feed feeds.Feed) ([]Item, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	parsed, err := c.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %q: %w", feed.URL, err)
	}

	cutoff := time.Now().Add(-c.lookback)

	var items []Item
	for _, entry := range parsed.Items {
		published := publishedTime(entry)
		if published.Before(cutoff) {
			continue
		}

		items = append(items, Item{
			Site:      feed.Name,
			Title:     entry.Title,
			Meta:      buildMeta(entry.Published, entry.Description),
			URL:       entry.Link,
			Published: published,
			Translate: feed.Translate,
		})

		if len(items) >= c.maxPerFeed {
			break
		}
	}

	return items, nil
}

// publishedTime resolves an entry's publish time. Entries without a
// parseable timestamp count as fresh, matching the collection contract.
func publishedTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	return time.Now()
}
