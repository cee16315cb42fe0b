package slack

import (
	"fmt"
	"testing"

	"news-notifier/internal/news"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDigest(t *testing.T) {
	t.Parallel()

	t.Run("empty digest announces a quiet day", func(t *testing.T) {
		t.Parallel()

		message := BuildDigest(nil)
		require.Len(t, message.Blocks, 2)
		assert.Equal(t, "header", message.Blocks[0].Type)
		assert.Equal(t, "📑 오늘의 주요 뉴스 (상위 0)", message.Blocks[0].Text.Text)
		assert.Equal(t, "section", message.Blocks[1].Type)
		assert.Equal(t, "지난 24시간 동안 새로운 소식이 없습니다.", message.Blocks[1].Text.Text)
	})

	t.Run("renders one card per item", func(t *testing.T) {
		t.Parallel()

		message := BuildDigest([]news.Item{
			{Site: "GeekNews", Title: "뉴스 제목", Meta: "2026-08-24 · 조회수 1.2K", URL: "https://example.com/a"},
			{Site: "Hacker News", Title: "번역된 제목", Meta: "2026-08-24", URL: "https://example.com/b"},
		})

		// header + 2 * (divider + section)
		require.Len(t, message.Blocks, 5)
		assert.Equal(t, "📑 오늘의 주요 뉴스 (상위 2)", message.Blocks[0].Text.Text)

		card := message.Blocks[2]
		assert.Equal(t, "section", card.Type)
		assert.Equal(t, "mrkdwn", card.Text.Type)
		assert.Equal(t, "*GeekNews*\n뉴스 제목\n_2026-08-24 · 조회수 1.2K_", card.Text.Text)
		require.NotNil(t, card.Accessory)
		assert.Equal(t, "button", card.Accessory.Type)
		assert.Equal(t, "읽기", card.Accessory.Text.Text)
		assert.Equal(t, "https://example.com/a", card.Accessory.URL)

		assert.Equal(t, "divider", message.Blocks[1].Type)
		assert.Equal(t, "divider", message.Blocks[3].Type)
	})

	t.Run("stops past the block limit", func(t *testing.T) {
		t.Parallel()

		var items []news.Item
		for i := 0; i < 60; i++ {
			items = append(items, news.Item{
				Site:  "site",
				Title: fmt.Sprintf("item %d", i),
				URL:   fmt.Sprintf("https://example.com/%d", i),
			})
		}

		message := BuildDigest(items)
		assert.LessOrEqual(t, len(message.Blocks), maxBlocks+2)
		assert.Equal(t, maxBlocks+2, len(message.Blocks))
	})
}
