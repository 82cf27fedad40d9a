package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var ugcPolicy = bluemonday.UGCPolicy()

// SanitizeContent strips dangerous markup from user-submitted comment
// bodies. It runs at the HTTP boundary; the comment subsystem itself treats
// content as opaque text.
func SanitizeContent(s string) string {
	return strings.TrimSpace(ugcPolicy.Sanitize(s))
}
