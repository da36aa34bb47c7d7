package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeEmptyInput(t *testing.T) {
	assert.Equal(t, "", Sanitize(""))
}

func TestSanitizePlainTextUnchanged(t *testing.T) {
	input := "Paris is the capital of France."
	assert.Equal(t, input, Sanitize(input))
}

func TestSanitizeStripsMarkup(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"script tag", "hello <script>alert(1)</script> world", "hello alert(1) world"},
		{"html tags", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"javascript uri", "see javascript:alert(1) here", "see alert(1) here"},
		{"self-closing tag", "line one<br/>line two", "line oneline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "<")
		})
	}
}

func TestSanitizeRedactsSecrets(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"openai key", "use sk-" + strings.Repeat("a", 48) + " to authenticate"},
		{"hex token", "the token is 0123456789abcdef0123456789abcdef ok"},
		{"labeled api key", "api_key: sk-secret-value"},
		{"labeled password", "password=hunter2-and-more"},
		{"labeled token", "TOKEN = abc.def.ghi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.input)
			assert.Contains(t, got, Redacted)
			assert.NotContains(t, got, "hunter2")
			assert.NotContains(t, got, strings.Repeat("a", 48))
		})
	}
}

func TestSanitizeRedactsSecretsCaseInsensitively(t *testing.T) {
	got := Sanitize("use SK-" + strings.Repeat("A", 48) + " to authenticate")
	assert.Equal(t, "use "+Redacted+" to authenticate", got)

	got = Sanitize("the token is 0123456789ABCDEF0123456789ABCDEF ok")
	assert.Equal(t, "the token is "+Redacted+" ok", got)
}

func TestSanitizeLeavesLongerHexRunsIntact(t *testing.T) {
	// 64-hex digests are not 32-char tokens; the boundaries keep them whole.
	digest := strings.Repeat("0123456789abcdef", 4)
	got := Sanitize("checksum " + digest + " verified")
	assert.Equal(t, "checksum "+digest+" verified", got)
}

func TestSanitizeKeepsSurroundingText(t *testing.T) {
	got := Sanitize("The key sk-" + strings.Repeat("x", 48) + " was rotated.")
	assert.Equal(t, "The key "+Redacted+" was rotated.", got)
}

func TestSanitizeTrimsResult(t *testing.T) {
	assert.Equal(t, "answer", Sanitize("  answer  "))
}

func TestSanitizeNeverPanicsOnOddInput(t *testing.T) {
	inputs := []string{
		"<<<>>>",
		"<unclosed",
		strings.Repeat("<a>", 1000),
		"sk-short",
	}
	for _, input := range inputs {
		_ = Sanitize(input)
	}
}
