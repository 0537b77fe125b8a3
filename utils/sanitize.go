package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	ugcPolicy   = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy()
)

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return ugcPolicy.Sanitize(input)
}

// PlainText strips every tag, unescapes entities and trims surrounding whitespace. Titles and
// review bodies are stored this way.
func PlainText(input string) string {
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(input)))
}
