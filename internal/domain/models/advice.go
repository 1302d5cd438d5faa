package models

// AdviceSource tells where an advisor answer came from.
type AdviceSource string

const (
	AdviceSourceLLM      AdviceSource = "llm"
	AdviceSourceFallback AdviceSource = "fallback"
)

// Advice is a strategy advisor answer.
type Advice struct {
	Text   string       `json:"text"`
	Source AdviceSource `json:"source"`
	Notice string       `json:"notice,omitempty"`
}
