// Package htmlsanitize strips markup from user-entered free text before it is
// stored. Donor records are plain text end to end; anything that looks like
// HTML is removed rather than escaped.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict drops every element. Content of script and style is dropped too.
var strict = bluemonday.StrictPolicy()

// PlainText returns s with all tags removed, entities decoded and surrounding
// whitespace trimmed.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	if !strings.ContainsAny(s, "<>&") {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains nothing that resembles a tag.
func IsPlainText(s string) bool {
	return !strings.Contains(s, "<") || !strings.Contains(s, ">")
}

// Fields applies PlainText to each pointer in place.
func Fields(ptrs ...*string) {
	for _, p := range ptrs {
		if p != nil {
			*p = PlainText(*p)
		}
	}
}
