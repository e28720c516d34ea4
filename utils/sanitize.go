package utils

import "github.com/microcosm-cc/bluemonday"

// Display metadata (titles, captions, alt text) is plain text; the strict
// policy strips all markup.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize cleans caller-supplied metadata to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
