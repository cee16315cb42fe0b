package feeds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const RegistryFileName = "feeds.yaml"

// Default returns the built-in feed set, used when no feeds file or
// feeds repository is configured.
func Default() *Registry {
	return &Registry{
		Feeds: []Feed{
			{Name: "GeekNews", URL: "https://feeds.feedburner.com/geeknews-feed", Lang: "ko"},
			{Name: "무신사", URL: "https://medium.com/feed/musinsa-tech", Lang: "ko"},
			{Name: "네이버", URL: "https://d2.naver.com/d2.atom", Lang: "ko"},
			{Name: "카카오", URL: "https://tech.kakao.com/feed/", Lang: "ko"},
			{Name: "토스", URL: "https://toss.tech/rss.xml", Lang: "ko"},
			{Name: "NHN Toast", URL: "https://meetup.toast.com/rss", Lang: "ko"},
			{Name: "Hacker News", URL: "https://hnrss.org/frontpage", Lang: "en", Translate: true},
		},
	}
}

// Parse decodes a feeds.yaml document
func Parse(data []byte) (*Registry, error) {
	registry := &Registry{}
	if err := yaml.Unmarshal(data, registry); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file: %w", err)
	}

	if len(registry.Feeds) == 0 && len(registry.Releases) == 0 {
		return nil, fmt.Errorf("feeds file declares no sources")
	}

	for i, feed := range registry.Feeds {
		if feed.Name == "" || feed.URL == "" {
			return nil, fmt.Errorf("feed %d is missing a name or url", i)
		}
	}
	for i, watch := range registry.Releases {
		if watch.Repo == "" {
			return nil, fmt.Errorf("release watch %d is missing a repo", i)
		}
	}

	return registry, nil
}

// Load reads a feeds.yaml file from disk
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}
	return Parse(data)
}
