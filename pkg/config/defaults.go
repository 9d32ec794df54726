package config

const (
	defaultSQLitePath      = "links.db"
	defaultRatePerSecond   = 1.0
	defaultTimeoutSeconds  = 30
	defaultMaxContentBytes = 1_000_000
	defaultUserAgent       = "linkdex/1.0"

	defaultWorkers   = 4
	defaultBatchSize = 50

	defaultLLMProvider = "anthropic"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "linkdex.link.processed"

	defaultAPIListen = ":5001"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			SQLitePath: defaultSQLitePath,
		},
		Fetch: FetchConfig{
			RatePerSecond:   defaultRatePerSecond,
			TimeoutSeconds:  defaultTimeoutSeconds,
			MaxContentBytes: defaultMaxContentBytes,
			UserAgent:       defaultUserAgent,
		},
		Pipeline: PipelineConfig{
			Workers:       defaultWorkers,
			BatchSize:     defaultBatchSize,
			RetryFailed:   true,
			SkipUnchanged: true,
		},
		LLM: LLMConfig{
			Provider: defaultLLMProvider,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
	}
}
