package config

// Config represents the persistent linkdex configuration stored as
// config.toml. The TOML layout uses sections for logical grouping; the same
// dotted keys are addressable through viper flags and LINKDEX_* env vars.
type Config struct {
	Notes    NotesConfig    `toml:"notes" mapstructure:"notes"`
	Storage  StorageConfig  `toml:"storage" mapstructure:"storage"`
	Fetch    FetchConfig    `toml:"fetch" mapstructure:"fetch"`
	Pipeline PipelineConfig `toml:"pipeline" mapstructure:"pipeline"`
	LLM      LLMConfig      `toml:"llm" mapstructure:"llm"`
	Events   EventsConfig   `toml:"events" mapstructure:"events"`
	API      APIConfig      `toml:"api" mapstructure:"api"`
}

// NotesConfig locates the daily notes tree.
type NotesConfig struct {
	// Dir is the root of the daily notes tree (files named YYYY-MM-DD.md).
	Dir string `toml:"dir" mapstructure:"dir"`

	// Vocabulary is the path to the YAML tag vocabulary file. Empty means
	// the built-in vocabulary.
	Vocabulary string `toml:"vocabulary,omitempty" mapstructure:"vocabulary"`
}

// StorageConfig holds store settings.
type StorageConfig struct {
	SQLitePath string `toml:"sqlite_path" mapstructure:"sqlite_path"`
}

// FetchConfig holds fetcher settings.
type FetchConfig struct {
	// RatePerSecond is the per-origin request ceiling.
	RatePerSecond float64 `toml:"rate_per_second" mapstructure:"rate_per_second"`

	// TimeoutSeconds bounds one fetch so a slow host cannot hang a worker.
	TimeoutSeconds int `toml:"timeout_seconds" mapstructure:"timeout_seconds"`

	// MaxContentBytes caps how much of a response body is read.
	MaxContentBytes int64 `toml:"max_content_bytes" mapstructure:"max_content_bytes"`

	UserAgent string `toml:"user_agent,omitempty" mapstructure:"user_agent"`
}

// PipelineConfig holds coordinator settings.
type PipelineConfig struct {
	// Workers is the global concurrency cap across links.
	Workers int `toml:"workers" mapstructure:"workers"`

	// BatchSize bounds how many links are in flight per batch.
	BatchSize int `toml:"batch_size" mapstructure:"batch_size"`

	// RetryFailed re-attempts retryable failures from previous runs.
	RetryFailed bool `toml:"retry_failed" mapstructure:"retry_failed"`

	// SkipUnchanged skips note files whose content hash has not changed.
	SkipUnchanged bool `toml:"skip_unchanged" mapstructure:"skip_unchanged"`
}

// LLMConfig selects the enrichment backend.
type LLMConfig struct {
	// Provider is "anthropic", "openai" or "ollama".
	Provider string `toml:"provider" mapstructure:"provider"`
	Model    string `toml:"model,omitempty" mapstructure:"model"`

	// APIKey overrides the provider env var (ANTHROPIC_API_KEY /
	// OPENAI_API_KEY). Leave empty in committed config files.
	APIKey  string `toml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL string `toml:"base_url,omitempty" mapstructure:"base_url"`
}

// EventsConfig configures the optional event stream.
type EventsConfig struct {
	// Provider is "nop" or "kafka".
	Provider string `toml:"provider" mapstructure:"provider"`
	Brokers  string `toml:"brokers,omitempty" mapstructure:"brokers"`
	Topic    string `toml:"topic,omitempty" mapstructure:"topic"`
}

// APIConfig holds read-only API server settings.
type APIConfig struct {
	Listen string `toml:"listen" mapstructure:"listen"`
}
