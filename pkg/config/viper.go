package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// InitViper builds a viper instance with the full precedence chain:
// flag > env > config file > default.
//
// configFile may name an explicit config.toml; when empty, viper searches the
// working directory and ~/.linkdex. Environment variables use the LINKDEX_
// prefix with dots replaced by underscores (e.g. LINKDEX_STORAGE_SQLITE_PATH).
func InitViper(configFile string) (*viper.Viper, error) {
	v := viper.New()

	setViperDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.linkdex")
	}

	if err := v.ReadInConfig(); err != nil {
		// A search-path miss is fine, defaults will apply. An explicitly
		// named file that cannot be read is not.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("LINKDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// FromViper materializes a Config from the resolved viper state.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Load is the common entry for commands: init viper then materialize.
func Load(configFile string) (*Config, error) {
	v, err := InitViper(configFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of
// truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("notes.dir", d.Notes.Dir)
	v.SetDefault("notes.vocabulary", d.Notes.Vocabulary)

	v.SetDefault("storage.sqlite_path", d.Storage.SQLitePath)

	v.SetDefault("fetch.rate_per_second", d.Fetch.RatePerSecond)
	v.SetDefault("fetch.timeout_seconds", d.Fetch.TimeoutSeconds)
	v.SetDefault("fetch.max_content_bytes", d.Fetch.MaxContentBytes)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)

	v.SetDefault("pipeline.workers", d.Pipeline.Workers)
	v.SetDefault("pipeline.batch_size", d.Pipeline.BatchSize)
	v.SetDefault("pipeline.retry_failed", d.Pipeline.RetryFailed)
	v.SetDefault("pipeline.skip_unchanged", d.Pipeline.SkipUnchanged)

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.api_key", d.LLM.APIKey)
	v.SetDefault("llm.base_url", d.LLM.BaseURL)

	v.SetDefault("events.provider", d.Events.Provider)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)

	v.SetDefault("api.listen", d.API.Listen)
}
