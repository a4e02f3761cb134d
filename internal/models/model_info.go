package models

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ModelInfo describes the LLM the server is configured with. Display only.
type ModelInfo struct {
	Provider  string
	ModelName string
}

// Label renders the descriptor as "provider / model".
func (m ModelInfo) Label() string {
	return fmt.Sprintf("%s / %s", m.Provider, m.ModelName)
}

// ParseModelConfig extracts the default model descriptor from a
// /api/model-config body. It accepts both {"default": {...}} and the flat
// {"provider", "model_name"} shape the plugin serves. A valid body without
// a descriptor (including {"success": false}) yields nil, nil.
func ParseModelConfig(data []byte) (*ModelInfo, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON in model config response")
	}
	parsed := gjson.ParseBytes(data)

	if def := parsed.Get("default"); def.IsObject() {
		return descriptorFrom(def), nil
	}
	return descriptorFrom(parsed), nil
}

func descriptorFrom(obj gjson.Result) *ModelInfo {
	provider := obj.Get("provider")
	name := obj.Get("model_name")
	if !provider.Exists() || !name.Exists() {
		return nil
	}
	return &ModelInfo{Provider: provider.String(), ModelName: name.String()}
}
