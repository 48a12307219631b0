package models

// ModelInfo describes a generative model available to an API key.
type ModelInfo struct {
	Name                       string   `json:"name" yaml:"name"`
	DisplayName                string   `json:"display_name" yaml:"display_name"`
	InputTokenLimit            int32    `json:"input_token_limit" yaml:"input_token_limit"`
	OutputTokenLimit           int32    `json:"output_token_limit" yaml:"output_token_limit"`
	SupportedGenerationMethods []string `json:"supported_generation_methods" yaml:"supported_generation_methods"`
}

// Supports reports whether the model lists method (e.g. "generateContent").
func (m ModelInfo) Supports(method string) bool {
	for _, sm := range m.SupportedGenerationMethods {
		if sm == method {
			return true
		}
	}
	return false
}
