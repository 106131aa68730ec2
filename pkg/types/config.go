package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout, applied uniformly to every call.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "evidence-scout/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for PubMed search and fetch.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Queries are the free-text search queries run in order, one at a time.
	Queries []string `json:"queries" yaml:"queries" mapstructure:"queries"`

	// DateAfter is the publication date floor (YYYY-MM-DD).
	DateAfter string `json:"date_after" yaml:"date_after" mapstructure:"date_after"`

	// MaxResults caps the identifiers returned per query (default 25).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// FetchDelay is the fixed minimum delay between consecutive record
	// fetches, respecting the NCBI usage policy (default 500ms).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay" mapstructure:"fetch_delay"`
}

// ExtractionConfig holds settings for the Claude extraction stage.
type ExtractionConfig struct {
	// Model is the Claude model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the Anthropic API key. Loaded from secrets, never from the
	// config file.
	APIKey string `json:"-" yaml:"-" mapstructure:"-"`
}

// ScoringConfig holds settings for evidence scoring and acceptance.
type ScoringConfig struct {
	// MinScore is the minimum evidence score required to archive a record
	// (default 3).
	MinScore int `json:"min_score" yaml:"min_score" mapstructure:"min_score"`

	// TopJournals overrides the built-in high-impact journal list when set.
	TopJournals []string `json:"top_journals,omitempty" yaml:"top_journals,omitempty" mapstructure:"top_journals"`
}

// ArchiveConfig holds settings for the Airtable evidence archive.
type ArchiveConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseID is the Airtable base identifier.
	BaseID string `json:"base_id" yaml:"base_id" mapstructure:"base_id"`

	// Table is the evidence table name (default "Clinical_Evidence").
	Table string `json:"table" yaml:"table" mapstructure:"table"`

	// ConditionsTable is the read-only aging-conditions reference table.
	// Empty disables condition cross-references.
	ConditionsTable string `json:"conditions_table,omitempty" yaml:"conditions_table,omitempty" mapstructure:"conditions_table"`

	// ClustersTable is the read-only biomarker-cluster reference table.
	// Empty disables biomarker cross-references.
	ClustersTable string `json:"clusters_table,omitempty" yaml:"clusters_table,omitempty" mapstructure:"clusters_table"`

	// APIKey is the Airtable API key. Loaded from secrets, never from the
	// config file.
	APIKey string `json:"-" yaml:"-" mapstructure:"-"`
}

// IndexConfig holds settings for the local evidence mirror.
type IndexConfig struct {
	// Enabled controls whether archived records are mirrored locally.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database path (default "evidence.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// PipelineConfig groups all stage configurations for one scout run.
type PipelineConfig struct {
	Search     SearchConfig     `json:"search" yaml:"search" mapstructure:"search"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Scoring    ScoringConfig    `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Archive    ArchiveConfig    `json:"archive" yaml:"archive" mapstructure:"archive"`
	Index      IndexConfig      `json:"index" yaml:"index" mapstructure:"index"`

	// TaxonomyFile points at a YAML taxonomy definition. When empty or
	// missing the built-in default taxonomy is used.
	TaxonomyFile string `json:"taxonomy_file,omitempty" yaml:"taxonomy_file,omitempty" mapstructure:"taxonomy_file"`
}
