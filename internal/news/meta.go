package news

import (
	"regexp"
	"strings"
)

const publishedMetaLength = 16

// GeekNews embeds view and comment counts in entry summaries.
var (
	viewsPattern    = regexp.MustCompile(`조회수\s?([0-9.,Kk]+)`)
	commentsPattern = regexp.MustCompile(`댓글\s?([0-9.,Kk]+)`)
)

// buildMeta assembles the meta line shown under an item: the leading part
// of the published string, plus view/comment counts when the summary
// carries them.
func buildMeta(published, summary string) string {
	meta := truncate(published, publishedMetaLength)

	if views := firstGroup(viewsPattern, summary); views != "" {
		meta += " · 조회수 " + views
	}
	if comments := firstGroup(commentsPattern, summary); comments != "" {
		meta += " · 댓글 " + comments
	}

	return strings.TrimSpace(meta)
}

func firstGroup(pattern *regexp.Regexp, s string) string {
	match := pattern.FindStringSubmatch(s)
	if match == nil {
		return ""
	}
	return match[1]
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
