package feeds

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid registry", func(t *testing.T) {
		t.Parallel()

		registry, err := Parse([]byte(`
feeds:
  - name: GeekNews
    url: https://feeds.feedburner.com/geeknews-feed
    lang: ko
  - name: Hacker News
    url: https://hnrss.org/frontpage
    lang: en
    translate: true
releases:
  - repo: golang/go
`))
		require.NoError(t, err)
		require.Len(t, registry.Feeds, 2)
		assert.Equal(t, "GeekNews", registry.Feeds[0].Name)
		assert.False(t, registry.Feeds[0].Translate)
		assert.True(t, registry.Feeds[1].Translate)
		require.Len(t, registry.Releases, 1)
		assert.Equal(t, "golang/go", registry.Releases[0].Repo)
	})

	t.Run("no sources", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte(`feeds: []`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no sources")
	})

	t.Run("missing url", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte("feeds:\n  - name: broken\n"))
		require.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		_, err := Parse([]byte("feeds: {nope"))
		require.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	t.Parallel()

	registry := Default()
	require.NotEmpty(t, registry.Feeds)

	var foreign int
	for _, feed := range registry.Feeds {
		require.NotEmpty(t, feed.Name)
		require.NotEmpty(t, feed.URL)
		if feed.Translate {
			foreign++
			assert.Equal(t, "en", feed.Lang)
		}
	}
	assert.Equal(t, 1, foreign)
}

func TestMaterializer(t *testing.T) {
	t.Parallel()

	t.Run("local file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "feeds.yaml")
		require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - name: local\n    url: https://example.com/rss\n"), 0o644))

		m := NewMaterializer("", path, nil, zerolog.Nop())
		registry, err := m.Materialize()
		require.NoError(t, err)
		require.Len(t, registry.Feeds, 1)
		assert.Equal(t, "local", registry.Feeds[0].Name)
	})

	t.Run("missing local file", func(t *testing.T) {
		t.Parallel()

		m := NewMaterializer("", filepath.Join(t.TempDir(), "absent.yaml"), nil, zerolog.Nop())
		_, err := m.Materialize()
		require.Error(t, err)
	})

	t.Run("nothing configured falls back to defaults", func(t *testing.T) {
		t.Parallel()

		m := NewMaterializer("", "", nil, zerolog.Nop())
		registry, err := m.Materialize()
		require.NoError(t, err)
		assert.Equal(t, Default(), registry)
	})
}
