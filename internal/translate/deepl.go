package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	proEndpoint  = "https://api.deepl.com/v2/translate"
	freeEndpoint = "https://api-free.deepl.com/v2/translate"

	requestTimeout = 10 * time.Second
	targetLang     = "KO"

	// Shown instead of a translation when no usable translator exists
	unavailableText = "번역 실패 (API 키 또는 텍스트를 확인하세요)"
)

// Translator calls the DeepL REST API to translate headlines to Korean.
type Translator struct {
	apiKey   string
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// New creates a Translator. Free-tier keys (suffix ":fx") are routed to
// the api-free host. endpoint overrides the derived URL when non-empty.
func New(apiKey, endpoint string, logger zerolog.Logger) *Translator {
	if endpoint == "" {
		endpoint = proEndpoint
		if strings.HasSuffix(apiKey, ":fx") {
			endpoint = freeEndpoint
		}
	}

	return &Translator{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger.With().Str("component", "translate").Logger(),
	}
}

// Translate translates text to Korean. A missing key or empty text yields
// a marker string, and request errors degrade to a truncated copy of the
// original, so a single bad headline never fails a run.
func (t *Translator) Translate(ctx context.Context, text string) string {
	if t.apiKey == "" || text == "" {
		return unavailableText
	}

	translated, err := t.translate(ctx, text)
	if err != nil {
		t.logger.Error().Err(err).Msg("Translation failed")
		return fmt.Sprintf("번역 중 오류 발생: %s...", truncate(text, 50))
	}

	return translated
}

func (t *Translator) translate(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", targetLang)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "DeepL-Auth-Key "+t.apiKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call DeepL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("DeepL returned %s - %s", resp.Status, string(body))
	}

	var result struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Translations) == 0 {
		return "", fmt.Errorf("DeepL returned no translations")
	}

	return result.Translations[0].Text, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
