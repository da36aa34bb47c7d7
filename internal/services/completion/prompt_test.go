package completion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("What is Go?", "Go is a programming language.")

	assert.Equal(t, "Context:\nGo is a programming language.\n\nQuestion: What is Go?\n\nAnswer concisely and directly:", prompt)
}

func TestBuildPromptEmptyContext(t *testing.T) {
	prompt := BuildPrompt("What is Go?", "")

	assert.Contains(t, prompt, "Context:\n\n")
	assert.Contains(t, prompt, "Question: What is Go?")
}

func TestSystemPromptPinsRefusal(t *testing.T) {
	assert.Contains(t, SystemPrompt, "ONLY the provided context")
	assert.Contains(t, SystemPrompt, "I don't know based on the provided context.")
}
