// Package preprocess normalizes and clips untrusted question/context text
// before it reaches the policy validator and the prompt builder. Both
// functions are pure and deterministic.
package preprocess

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// boundaryWindow is how far back from the truncation point Clip searches
// for a sentence terminator.
const boundaryWindow = 200

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	asciiReplacer = strings.NewReplacer(
		"‘", "'", // left single quote
		"’", "'", // right single quote
		"“", `"`, // left double quote
		"”", `"`, // right double quote
		"–", "-", // en dash
		"—", "-", // em dash
	)

	sentenceTerminators = []string{". ", "! ", "? "}
)

// Normalize applies Unicode NFKC normalization, maps typographic quotes and
// dashes to ASCII equivalents, collapses whitespace runs to single spaces,
// and trims the ends. Idempotent.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = asciiReplacer.Replace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Clip truncates context to at most maxChars characters, preferring to cut
// on a sentence boundary. It takes the first maxChars characters and searches
// the trailing boundaryWindow of that prefix for the rightmost sentence
// terminator followed by a space; if found, the result ends exactly after the
// terminator (the trailing space is dropped). Otherwise the raw prefix is
// returned. A maxChars too small to contain any boundary falls back to hard
// truncation, which is expected and correct. A non-positive maxChars clips
// everything; the config validator rejects such budgets afterwards.
func Clip(context string, maxChars int) string {
	if maxChars <= 0 {
		return ""
	}

	runes := []rune(context)
	if len(runes) <= maxChars {
		return context
	}

	prefix := runes[:maxChars]
	start := len(prefix) - boundaryWindow
	if start < 0 {
		start = 0
	}
	tail := string(prefix[start:])

	// Rightmost terminator wins. Byte offsets are safe here: the terminator
	// sequences are ASCII, so slicing at idx+1 never splits a rune.
	idx := -1
	for _, term := range sentenceTerminators {
		if i := strings.LastIndex(tail, term); i > idx {
			idx = i
		}
	}
	if idx == -1 {
		return string(prefix)
	}

	return string(prefix[:start]) + tail[:idx+1]
}
