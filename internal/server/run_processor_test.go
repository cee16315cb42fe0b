package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"news-notifier/internal/slack"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeedsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func serveFeed(t *testing.T, title string) *httptest.Server {
	t.Helper()
	pubDate := time.Now().Add(-time.Hour).UTC().Format(time.RFC1123Z)
	doc := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>t</title><item><title>%s</title><link>https://example.com/a</link><pubDate>%s</pubDate></item></channel></rss>`, title, pubDate)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, doc)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type webhookRecorder struct {
	calls    atomic.Int64
	lastBody atomic.Value
	status   int
}

func serveWebhook(t *testing.T, status int) (*httptest.Server, *webhookRecorder) {
	t.Helper()
	rec := &webhookRecorder{status: status}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.calls.Add(1)
		var message slack.Message
		if err := json.NewDecoder(r.Body).Decode(&message); err == nil {
			rec.lastBody.Store(message)
		}
		w.WriteHeader(rec.status)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestRunProcessor_Execute(t *testing.T) {
	t.Parallel()

	t.Run("delivers a digest and completes", func(t *testing.T) {
		t.Parallel()

		feedSrv := serveFeed(t, "오늘의 뉴스")
		webhookSrv, rec := serveWebhook(t, http.StatusOK)

		cfg := testConfig()
		cfg.SlackWebhookURL = webhookSrv.URL
		cfg.DeepLAPIKey = "test-key"
		cfg.FeedsFile = writeFeedsFile(t, fmt.Sprintf("feeds:\n  - name: 테스트\n    url: %s\n", feedSrv.URL))

		srv := newTestServer(t, cfg)
		run := srv.RunOnce()

		assert.Equal(t, StatusCompleted, run.Status)
		assert.Equal(t, 1, run.ItemCount)
		assert.Empty(t, run.Error)
		assert.False(t, run.EndTime.IsZero())
		require.Equal(t, int64(1), rec.calls.Load())

		message := rec.lastBody.Load().(slack.Message)
		require.NotEmpty(t, message.Blocks)
		assert.Contains(t, message.Blocks[0].Text.Text, "상위 1")
	})

	t.Run("translates foreign headlines", func(t *testing.T) {
		t.Parallel()

		feedSrv := serveFeed(t, "An English headline")
		webhookSrv, rec := serveWebhook(t, http.StatusOK)

		deeplSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"translations":[{"text":"번역된 제목"}]}`)
		}))
		t.Cleanup(deeplSrv.Close)

		cfg := testConfig()
		cfg.SlackWebhookURL = webhookSrv.URL
		cfg.DeepLAPIKey = "test-key"
		cfg.DeepLAPIURL = deeplSrv.URL
		cfg.FeedsFile = writeFeedsFile(t, fmt.Sprintf("feeds:\n  - name: Hacker News\n    url: %s\n    lang: en\n    translate: true\n", feedSrv.URL))

		srv := newTestServer(t, cfg)
		run := srv.RunOnce()

		require.Equal(t, StatusCompleted, run.Status)
		message := rec.lastBody.Load().(slack.Message)
		require.Len(t, message.Blocks, 3)
		assert.Contains(t, message.Blocks[2].Text.Text, "번역된 제목")
	})

	t.Run("fails fast when materialization breaks", func(t *testing.T) {
		t.Parallel()

		webhookSrv, rec := serveWebhook(t, http.StatusOK)

		cfg := testConfig()
		cfg.SlackWebhookURL = webhookSrv.URL
		cfg.DeepLAPIKey = "test-key"
		cfg.FeedsFile = filepath.Join(t.TempDir(), "absent.yaml")

		srv := newTestServer(t, cfg)
		run := srv.RunOnce()

		assert.Equal(t, StatusFailed, run.Status)
		assert.Contains(t, run.Error, "materialize")
		// Delivery is never reached
		assert.Equal(t, int64(0), rec.calls.Load())
	})

	t.Run("fails when secrets are missing", func(t *testing.T) {
		t.Parallel()

		cfg := testConfig()

		srv := newTestServer(t, cfg)
		run := srv.RunOnce()

		assert.Equal(t, StatusFailed, run.Status)
		assert.Contains(t, run.Error, "SLACK_WEBHOOK_URL and DEEPL_API_KEY must be set")
	})

	t.Run("fails when delivery is rejected", func(t *testing.T) {
		t.Parallel()

		feedSrv := serveFeed(t, "뉴스")
		webhookSrv, rec := serveWebhook(t, http.StatusBadRequest)

		cfg := testConfig()
		cfg.SlackWebhookURL = webhookSrv.URL
		cfg.DeepLAPIKey = "test-key"
		cfg.FeedsFile = writeFeedsFile(t, fmt.Sprintf("feeds:\n  - name: 테스트\n    url: %s\n", feedSrv.URL))

		srv := newTestServer(t, cfg)
		run := srv.RunOnce()

		assert.Equal(t, StatusFailed, run.Status)
		assert.Equal(t, int64(1), rec.calls.Load())
	})

	t.Run("empty day still delivers the quiet digest", func(t *testing.T) {
		t.Parallel()

		// Feed whose only entry is far outside the lookback window
		pubDate := time.Now().Add(-96 * time.Hour).UTC().Format(time.RFC1123Z)
		doc := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>t</title><item><title>old</title><link>https://example.com/old</link><pubDate>%s</pubDate></item></channel></rss>`, pubDate)
		feedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, doc)
		}))
		t.Cleanup(feedSrv.Close)

		webhookSrv, rec := serveWebhook(t, http.StatusOK)

		cfg := testConfig()
		cfg.SlackWebhookURL = webhookSrv.URL
		cfg.DeepLAPIKey = "test-key"
		cfg.FeedsFile = writeFeedsFile(t, fmt.Sprintf("feeds:\n  - name: 조용한피드\n    url: %s\n", feedSrv.URL))

		srv := newTestServer(t, cfg)
		run := srv.RunOnce()

		require.Equal(t, StatusCompleted, run.Status)
		assert.Equal(t, 0, run.ItemCount)

		message := rec.lastBody.Load().(slack.Message)
		require.Len(t, message.Blocks, 2)
		assert.Contains(t, message.Blocks[1].Text.Text, "새로운 소식이 없습니다")
	})
}
