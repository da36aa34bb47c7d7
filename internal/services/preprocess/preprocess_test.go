package preprocess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"plain text unchanged", "What is Go?", "What is Go?"},
		{"curly quotes mapped", "It’s “quoted” text", `It's "quoted" text`},
		{"dashes mapped", "a – b — c", "a - b - c"},
		{"whitespace collapsed", "a\t\tb\n\nc   d", "a b c d"},
		{"ends trimmed", "  hello  ", "hello"},
		{"fullwidth compatibility form", "Ｈｉ", "Hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"  It’s  a “test” — really  ",
		"plain",
		"a\nb\tc",
	}
	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestClipShortInputUnchanged(t *testing.T) {
	assert.Equal(t, "short text", Clip("short text", 100))
	assert.Equal(t, "", Clip("", 10))
}

func TestClipExactLengthUnchanged(t *testing.T) {
	input := strings.Repeat("a", 50)
	assert.Equal(t, input, Clip(input, 50))
}

func TestClipPrefersSentenceBoundary(t *testing.T) {
	input := "First sentence. Second sentence goes on and on past the limit"
	got := Clip(input, 40)

	assert.Equal(t, "First sentence.", got)
	assert.True(t, strings.HasSuffix(got, "."))
}

func TestClipUsesRightmostBoundary(t *testing.T) {
	input := "One. Two! Three? Four five six seven eight nine ten eleven"
	got := Clip(input, 30)

	// "Three?" ends at position 16, the rightmost terminator within budget.
	assert.Equal(t, "One. Two! Three?", got)
}

func TestClipNonPositiveBudget(t *testing.T) {
	assert.Equal(t, "", Clip("some context text", 0))
	assert.Equal(t, "", Clip("some context text", -1))
	assert.Equal(t, "", Clip("", 0))
}

func TestClipNoBoundaryFallsBackToHardCut(t *testing.T) {
	input := strings.Repeat("a", 500)
	got := Clip(input, 100)

	assert.Equal(t, strings.Repeat("a", 100), got)
}

func TestClipRuneSafety(t *testing.T) {
	input := strings.Repeat("é", 200)
	got := Clip(input, 50)

	assert.Equal(t, 50, len([]rune(got)))
	assert.True(t, strings.HasPrefix(input, got))
}

func TestClipResultNeverExceedsBudget(t *testing.T) {
	inputs := []string{
		"First sentence. Second sentence continues for a while longer here",
		strings.Repeat("word ", 100),
		strings.Repeat("x", 300) + ". " + strings.Repeat("y", 300),
	}
	for _, input := range inputs {
		for _, max := range []int{10, 50, 200} {
			got := Clip(input, max)
			assert.LessOrEqual(t, len([]rune(got)), max)
		}
	}
}
