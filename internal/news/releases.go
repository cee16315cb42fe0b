package news

import (
	"context"
	"strings"
	"time"

	"news-notifier/internal/feeds"

	"github.com/google/go-github/v55/github"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// ReleaseWatcher turns recent GitHub releases of watched repositories
// into digest items.
type ReleaseWatcher struct {
	client   *github.Client
	lookback time.Duration
	logger   zerolog.Logger
}

// NewReleaseWatcher creates a ReleaseWatcher. An empty token yields an
// unauthenticated client, which is enough for public repositories.
func NewReleaseWatcher(ctx context.Context, token string, lookback time.Duration, logger zerolog.Logger) *ReleaseWatcher {
	var httpClient = oauth2.NewClient(ctx, nil)
	if token != "" {
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	return &ReleaseWatcher{
		client:   github.NewClient(httpClient),
		lookback: lookback,
		logger:   logger.With().Str("component", "releases").Logger(),
	}
}

// Collect lists recent releases for every watched repository. As with
// feeds, a failing repository is logged and skipped.
func (w *ReleaseWatcher) Collect(ctx context.Context, watches []feeds.ReleaseWatch) []Item {
	cutoff := time.Now().Add(-w.lookback)

	var items []Item
	for _, watch := range watches {
		owner, repo, ok := splitRepo(watch.Repo)
		if !ok {
			w.logger.Warn().Str("repo", watch.Repo).Msg("Ignoring malformed repository name")
			continue
		}

		releases, _, err := w.client.Repositories.ListReleases(ctx, owner, repo, &github.ListOptions{PerPage: 10})
		if err != nil {
			w.logger.Error().Err(err).Str("repo", watch.Repo).Msg("Failed to list releases")
			continue
		}

		for _, release := range releases {
			if release.GetDraft() {
				continue
			}
			published := release.GetPublishedAt().Time
			if published.Before(cutoff) {
				continue
			}

			title := release.GetName()
			if title == "" {
				title = release.GetTagName()
			}

			items = append(items, Item{
				Site:      watch.Repo,
				Title:     title,
				Meta:      published.UTC().Format("2006-01-02 15:04"),
				URL:       release.GetHTMLURL(),
				Published: published,
			})
		}
	}

	return items
}

func splitRepo(full string) (owner, repo string, ok bool) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
