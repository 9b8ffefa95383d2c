package upstream

import (
	"html"
	"regexp"
	"strings"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	spacePattern = regexp.MustCompile(`\s+`)
)

// StripHTML is a conservative tag-stripper for catalog description text
// (spec §4.2). It is not a full sanitizer: it removes tags, HTML-unescapes
// entities, then collapses whitespace, which is sufficient for text
// that is only ever rendered as plain text by this system.
func StripHTML(input string) string {
	stripped := tagPattern.ReplaceAllString(input, " ")
	stripped = html.UnescapeString(stripped)
	stripped = spacePattern.ReplaceAllString(stripped, " ")
	return strings.TrimSpace(stripped)
}
