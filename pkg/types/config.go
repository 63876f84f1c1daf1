package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "storm-writer/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMConfig holds shared settings for stages that call the language model API.
type LLMConfig struct {
	// Model is the chat model identifier (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model"`

	// EmbeddingModel is the embedding model identifier used by the
	// reference index (e.g. "text-embedding-3-small").
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model"`

	// APIKey is the authentication key for the API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API endpoint. Empty uses the default.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// SearchConfig holds settings for the search gateway.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the maximum number of results per query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// SurveyConfig holds settings for the perspective survey stage.
type SurveyConfig struct {
	// MaxEditors caps the number of personas kept from the survey call
	// (default 4). The generation prompt asks for a small set, but the cap
	// is enforced here rather than trusted.
	MaxEditors int `json:"max_editors" yaml:"max_editors"`

	// DocTruncate is the per-document character budget for the background
	// examples block (default 1000).
	DocTruncate int `json:"doc_truncate" yaml:"doc_truncate"`
}

// InterviewConfig holds settings for the interview simulation stage.
type InterviewConfig struct {
	// MaxTurns caps the number of expert answers per interview (default 5).
	MaxTurns int `json:"max_turns" yaml:"max_turns"`

	// ContextBudget is the character budget for the serialized search
	// results handed to the answer call (default 15000).
	ContextBudget int `json:"context_budget" yaml:"context_budget"`
}

// ComposeConfig holds settings for the section drafting stage.
type ComposeConfig struct {
	// RetrieveK is the number of reference documents retrieved per section
	// (default 10). Retrieval returns fewer when the index is smaller.
	RetrieveK int `json:"retrieve_k" yaml:"retrieve_k"`
}

// PipelineConfig groups all stage configurations for one article run.
type PipelineConfig struct {
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Survey    SurveyConfig    `json:"survey" yaml:"survey"`
	Interview InterviewConfig `json:"interview" yaml:"interview"`
	Compose   ComposeConfig   `json:"compose" yaml:"compose"`
}

// WithDefaults returns a copy of the config with zero values replaced by
// the stage defaults.
func (c PipelineConfig) WithDefaults() PipelineConfig {
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o"
	}
	if c.LLM.EmbeddingModel == "" {
		c.LLM.EmbeddingModel = "text-embedding-3-small"
	}
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = 30 * time.Second
	}
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = "storm-writer/0.1"
	}
	if c.Search.MaxResults <= 0 {
		c.Search.MaxResults = 10
	}
	if c.Survey.MaxEditors <= 0 {
		c.Survey.MaxEditors = 4
	}
	if c.Survey.DocTruncate <= 0 {
		c.Survey.DocTruncate = 1000
	}
	if c.Interview.MaxTurns <= 0 {
		c.Interview.MaxTurns = 5
	}
	if c.Interview.ContextBudget <= 0 {
		c.Interview.ContextBudget = 15000
	}
	if c.Compose.RetrieveK <= 0 {
		c.Compose.RetrieveK = 10
	}
	return c
}
