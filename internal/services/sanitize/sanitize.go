// Package sanitize scrubs model output before it is returned to callers:
// markup is stripped and secret-shaped substrings are redacted. Sanitization
// is best-effort and total; it never fails.
package sanitize

import (
	"regexp"
	"strings"
)

// Redacted replaces every secret-shaped match in the output.
const Redacted = "[REDACTED]"

var (
	htmlTag        = regexp.MustCompile(`<[^>]+>`)
	javascriptURI  = regexp.MustCompile(`(?i)javascript:`)

	secretPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)sk-[a-zA-Z0-9]{48}`), // OpenAI-style API key
		// Exactly 32 hex chars; the boundaries leave longer hex runs
		// (e.g. sha256 digests) intact.
		regexp.MustCompile(`(?i)\b[a-f0-9]{32}\b`),
		regexp.MustCompile(`(?i)(password|token|secret|key)\s*[:=]\s*['"]?[^'"]+['"]?`), // labeled credential
	}
)

// Sanitize strips HTML/XML tags, removes javascript: URI schemes, and
// replaces secret-shaped substrings with the redaction marker. Empty input
// yields empty output.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	text = htmlTag.ReplaceAllString(text, "")
	text = javascriptURI.ReplaceAllString(text, "")

	for _, pattern := range secretPatterns {
		text = pattern.ReplaceAllString(text, Redacted)
	}

	return strings.TrimSpace(text)
}
