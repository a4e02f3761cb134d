package models

// Prompt is a saved DAG generation prompt.
type Prompt struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Prompt      string `json:"prompt"`
	DagID       string `json:"dag_id"`
	Active      bool   `json:"active"`
	CreatedAt   string `json:"created_at"`
}

// Generated reports whether a DAG has already been produced from the prompt.
func (p Prompt) Generated() bool {
	return p.DagID != ""
}

// PromptInput is the body of POST /api/dag/prompts
type PromptInput struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Prompt      string `json:"prompt" yaml:"prompt"`
}
