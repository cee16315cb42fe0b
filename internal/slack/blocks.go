package slack

import (
	"fmt"

	"news-notifier/internal/news"
)

// Slack rejects messages with more than 50 blocks; stop well before that.
const maxBlocks = 45

// TextObject is a Block Kit text composition object
type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// Accessory is a Block Kit section accessory (here always a link button)
type Accessory struct {
	Type string      `json:"type"`
	Text *TextObject `json:"text"`
	URL  string      `json:"url"`
}

// Block is a single Block Kit layout block
type Block struct {
	Type      string      `json:"type"`
	Text      *TextObject `json:"text,omitempty"`
	Accessory *Accessory  `json:"accessory,omitempty"`
}

// Message is an incoming-webhook payload
type Message struct {
	Blocks []Block `json:"blocks"`
}

// BuildDigest renders collected items as a card-style Block Kit list: a
// header, then one divider+section card per item with a read button.
func BuildDigest(items []news.Item) *Message {
	blocks := []Block{
		{
			Type: "header",
			Text: &TextObject{
				Type:  "plain_text",
				Text:  fmt.Sprintf("📑 오늘의 주요 뉴스 (상위 %d)", len(items)),
				Emoji: true,
			},
		},
	}

	if len(items) == 0 {
		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{Type: "mrkdwn", Text: "지난 24시간 동안 새로운 소식이 없습니다."},
		})
		return &Message{Blocks: blocks}
	}

	for _, item := range items {
		blocks = append(blocks, Block{Type: "divider"})
		blocks = append(blocks, Block{
			Type: "section",
			Text: &TextObject{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s*\n%s\n_%s_", item.Site, item.Title, item.Meta),
			},
			Accessory: &Accessory{
				Type: "button",
				Text: &TextObject{Type: "plain_text", Text: "읽기"},
				URL:  item.URL,
			},
		})
		if len(blocks) > maxBlocks {
			break
		}
	}

	return &Message{Blocks: blocks}
}
