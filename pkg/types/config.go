// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means the client default.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "deep-researcher/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// OllamaConfig holds settings for the local inference endpoint.
type OllamaConfig struct {
	// BaseURL is the Ollama server URL (default "http://localhost:11434").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier used for every generation call
	// (default "deepseek-r1:8b").
	Model string `json:"model" yaml:"model"`

	// Temperature is the fixed sampling temperature (default 0.3, chosen
	// for low-variance phrasing).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// SearchConfig holds settings for the literature search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Backend selects the search API: "tavily" (default) or
	// "semantic_scholar".
	Backend string `json:"backend" yaml:"backend"`

	// APIKey authenticates requests to the Tavily search API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// SemanticAPIKey authenticates requests to the Semantic Scholar API.
	// Optional; without it the API applies stricter rate limits.
	SemanticAPIKey string `json:"semantic_api_key,omitempty" yaml:"semantic_api_key,omitempty"`

	// MaxResults is the maximum number of papers per search query
	// (default 10, capped at 20 by the API).
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SearchDepth selects the Tavily search mode (default "advanced").
	SearchDepth string `json:"search_depth" yaml:"search_depth"`
}

// ReportConfig holds settings for the output artifact.
type ReportConfig struct {
	// OutputDir is the directory for research reports (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	Ollama OllamaConfig `json:"ollama" yaml:"ollama"`
	Search SearchConfig `json:"search" yaml:"search"`
	Report ReportConfig `json:"report" yaml:"report"`
}

// Defaults for the pipeline configuration.
const (
	DefaultModel         = "deepseek-r1:8b"
	DefaultTemperature   = 0.3
	DefaultBaseURL       = "http://localhost:11434"
	DefaultSearchBackend = "tavily"
	DefaultMaxResults    = 10
	DefaultSearchDepth   = "advanced"
	DefaultUserAgent     = "deep-researcher/0.1"
	DefaultOutputDir     = "output"
)

// DefaultPipelineConfig returns the configuration used when no config file
// or flags override it.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Ollama: OllamaConfig{
			BaseURL:     DefaultBaseURL,
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
		},
		Search: SearchConfig{
			HTTPConfig:  HTTPConfig{UserAgent: DefaultUserAgent},
			Backend:     DefaultSearchBackend,
			MaxResults:  DefaultMaxResults,
			SearchDepth: DefaultSearchDepth,
		},
		Report: ReportConfig{OutputDir: DefaultOutputDir},
	}
}
