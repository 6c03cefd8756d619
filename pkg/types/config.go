// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by clients that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litgap/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// GenAIConfig holds settings for the generative-text service.
type GenAIConfig struct {
	HTTPConfig `yaml:",inline"`

	// Model is the model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the service.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API root (tests, proxies).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// RetrievalSource selects the primary paper backend.
type RetrievalSource string

const (
	SourceCORE     RetrievalSource = "core"
	SourceOpenAlex RetrievalSource = "openalex"
	SourceArxiv    RetrievalSource = "arxiv"
)

// RetrievalConfig holds settings for the primary Paper Retriever.
type RetrievalConfig struct {
	HTTPConfig `yaml:",inline"`

	// Source selects the backend: core, openalex or arxiv.
	Source RetrievalSource `json:"source" yaml:"source"`

	// CoreAPIKey is the CORE bearer credential.
	CoreAPIKey string `json:"core_api_key,omitempty" yaml:"core_api_key,omitempty"`

	// OpenAlexEmail is sent as mailto for the OpenAlex polite pool.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty"`

	// Limit is the default number of papers per search (default 10).
	Limit int `json:"limit" yaml:"limit"`

	// RequestsPerSecond paces calls to the backend. Zero disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// ScholarGraphConfig holds settings for the secondary scholarly-graph path.
type ScholarGraphConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is an optional Semantic Scholar key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxAttempts bounds the retry-until-well-formed loop (default 5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// RequestsPerSecond paces calls to the API. Zero disables pacing.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format"`

	// File, when set, also writes JSON logs to a rotated file.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
}

// ServeConfig holds settings for the HTTP shell.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// CacheTTL enables the request-keyed cache when positive.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Config groups all settings.
type Config struct {
	GenAI        GenAIConfig        `json:"genai" yaml:"genai"`
	Retrieval    RetrievalConfig    `json:"retrieval" yaml:"retrieval"`
	ScholarGraph ScholarGraphConfig `json:"scholar_graph" yaml:"scholar_graph"`
	Log          LogConfig          `json:"log" yaml:"log"`
	Serve        ServeConfig        `json:"serve" yaml:"serve"`

	// CategoriesFile overrides the embedded research categories table.
	CategoriesFile string `json:"categories_file,omitempty" yaml:"categories_file,omitempty"`
}
