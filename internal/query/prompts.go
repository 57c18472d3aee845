package query

import "strings"

// Refusal is the fixed strict-mode answer when nothing relevant is indexed.
// It appears verbatim in the strict prompt so the model-produced and
// orchestrator-produced refusals are identical.
const Refusal = "This information is not present in the uploaded documents."

const strictPrompt = `You are a document-grounded AI assistant.
Answer ONLY using the provided context.
If the answer is not explicitly present, say:
"` + Refusal + `"`

const hybridDefinitionPrompt = `You are a hybrid AI assistant.

Rules:
- If the question asks for the meaning or definition of a term or name,
  you may use general knowledge.
- Do NOT invent document-specific facts.
- Acknowledge document mentions if relevant.`

const hybridGeneralPrompt = `You are a hybrid RAG AI assistant.

Rules:
- Use document context for document-specific facts.
- Never fabricate document facts.
- General explanations and advice are allowed.
- Be honest when information is not present.`

var definitionPrefixes = []string{"what is", "meaning of", "define"}

// IsDefinitionQuestion reports whether the question asks for a definition.
// Definition questions relax strict grounding in hybrid mode only.
func IsDefinitionQuestion(question string) bool {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, p := range definitionPrefixes {
		if strings.HasPrefix(q, p) {
			return true
		}
	}
	return strings.Contains(q, "what does")
}

// selectPrompt picks one of the three mutually exclusive templates.
func selectPrompt(strict, definition bool) string {
	switch {
	case strict:
		return strictPrompt
	case definition:
		return hybridDefinitionPrompt
	default:
		return hybridGeneralPrompt
	}
}
