package util

import (
	"regexp"
	"strings"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
	slugDashes  = regexp.MustCompile(`-{2,}`)
)

// Slugify converts a name into a URL-safe slug: lowercase, alphanumeric
// runs separated by single dashes.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = slugInvalid.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
