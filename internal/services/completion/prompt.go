package completion

import "fmt"

// SystemPrompt pins the model to the supplied context and gives it an exact
// refusal string for unanswerable questions.
const SystemPrompt = "You are a careful assistant. Use ONLY the provided context to answer " +
	"the user's question. If the answer cannot be determined from the context, " +
	"reply exactly: 'I don't know based on the provided context.'"

// BuildPrompt assembles the user-turn prompt from preprocessed context and
// question text.
func BuildPrompt(question, context string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer concisely and directly:", context, question)
}
