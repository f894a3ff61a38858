// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "litmine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RetrieveConfig holds settings for the retrieval stage.
type RetrieveConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Keywords is the free-text query sent to the literature database.
	Keywords string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`

	// StartYear and EndYear bound the publication-date window (inclusive).
	StartYear int `json:"start_year" yaml:"start_year" mapstructure:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year" mapstructure:"end_year"`

	// SamplePerYear is the number of identifiers randomly sampled per year.
	SamplePerYear int `json:"sample_per_year" yaml:"sample_per_year" mapstructure:"sample_per_year"`

	// Email is sent with E-utilities requests for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`

	// APIKey is an optional NCBI API key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// CallInterval is the pacing delay between consecutive API calls
	// (default 340ms, just under the 3-requests-per-second limit).
	CallInterval time.Duration `json:"call_interval" yaml:"call_interval" mapstructure:"call_interval"`

	// FetchBatchSize is the number of identifiers fetched per EFetch call.
	FetchBatchSize int `json:"fetch_batch_size" yaml:"fetch_batch_size" mapstructure:"fetch_batch_size"`
}

// AIConfig holds settings shared by the stages that call the chat API.
type AIConfig struct {
	// Model is the model identifier (e.g. "claude-sonnet-4-5").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the chat API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// QAConfig holds settings for the QA generation stage.
type QAConfig struct {
	// BankPath overrides the accumulating QA bank CSV location.
	BankPath string `json:"bank_path,omitempty" yaml:"bank_path,omitempty" mapstructure:"bank_path"`
}

// BankConfig holds settings for the QA bank store.
type BankConfig struct {
	// BankDir is the base directory for the bank database (contains qa.db).
	BankDir string `json:"bank_dir" yaml:"bank_dir" mapstructure:"bank_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Retrieve RetrieveConfig `json:"retrieve" yaml:"retrieve" mapstructure:"retrieve"`
	AI       AIConfig       `json:"ai" yaml:"ai" mapstructure:"ai"`
	QA       QAConfig       `json:"qa" yaml:"qa" mapstructure:"qa"`
}
