// Package models contains wire types and constants for the Airflow LLM
// plugin REST API.
package models

import "fmt"

// Endpoint paths, relative to the server base URL
const (
	EndpointSession     = "/api/chat/session"
	EndpointHistory     = "/api/chat/history"
	EndpointMessage     = "/api/chat/message"
	EndpointModelConfig = "/api/model-config"
	EndpointPrompts     = "/api/dag/prompts"
	EndpointGenerate    = "/api/dag/generate"
)

// PromptPath returns the path addressing a single saved prompt.
func PromptPath(id int64) string {
	return fmt.Sprintf("%s/%d", EndpointPrompts, id)
}

// GeneratePath returns the path that triggers DAG generation for a prompt.
func GeneratePath(id int64) string {
	return fmt.Sprintf("%s/%d", EndpointGenerate, id)
}

// DefaultHeaders returns headers sent with every request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": "dagchat",
	}
}
