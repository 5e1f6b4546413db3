package library

import (
	"context"
	"log"
	"regexp"
	"strings"
)

const maxDescriptionRunes = 500

var markupTag = regexp.MustCompile(`<[^>]+>`)

// FetchDescription returns the sanitized description for a work key. It
// never fails: problems map to NoDescription or DescriptionUnavailable.
func (c *Client) FetchDescription(ctx context.Context, key string) string {
	key = strings.TrimSpace(key)
	if key == "" || c == nil {
		return NoDescription
	}
	if !strings.HasPrefix(key, "/") {
		key = "/" + key
	}

	resp, err := c.http.Get(ctx, c.baseURL+key+".json", nil, c.descriptionTimeout)
	if err != nil {
		log.Printf("description fetch %s failed: %v", key, err)
		return DescriptionUnavailable
	}
	if !resp.OK() {
		return DescriptionUnavailable
	}

	var detail workDetail
	if err := resp.DecodeJSON(&detail); err != nil {
		log.Printf("description decode %s failed: %v", key, err)
		return DescriptionUnavailable
	}

	text := SanitizeDescription(detail.Description.Text)
	if text == "" {
		return NoDescription
	}
	return text
}

// SanitizeDescription strips markup tags, collapses whitespace, and
// truncates to 500 characters followed by "...".
func SanitizeDescription(text string) string {
	text = markupTag.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > maxDescriptionRunes {
		return string(runes[:maxDescriptionRunes]) + "..."
	}
	return text
}
