// Package setup wires shared dependencies for the linkdex commands: config
// loading, logging, the store, and the pipeline coordinator.
package setup

import (
	"fmt"
	"strings"
	"time"

	"github.com/daylogco/linkdex/pkg/config"
	"github.com/daylogco/linkdex/pkg/enrich"
	"github.com/daylogco/linkdex/pkg/eventstream"
	"github.com/daylogco/linkdex/pkg/eventstream/kafka"
	"github.com/daylogco/linkdex/pkg/eventstream/nop"
	"github.com/daylogco/linkdex/pkg/fetch"
	"github.com/daylogco/linkdex/pkg/logger"
	"github.com/daylogco/linkdex/pkg/notes"
	"github.com/daylogco/linkdex/pkg/pipeline"
	"github.com/daylogco/linkdex/pkg/ratelimit"
	"github.com/daylogco/linkdex/pkg/store/sqlite"

	"log/slog"

	"github.com/spf13/cobra"
)

// Logger builds the CLI logger, pretty-printed for terminals.
func Logger(cmd *cobra.Command) *slog.Logger {
	debug, _ := cmd.Flags().GetBool("debug")
	return logger.New(logger.WithPretty(true), logger.WithDebug(debug))
}

// Config loads configuration from the --config flag, search paths and
// LINKDEX_* environment variables.
func Config(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// OpenStore opens the configured SQLite store.
func OpenStore(cfg *config.Config) (*sqlite.Driver, error) {
	st, err := sqlite.New(cfg.Storage.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Storage.SQLitePath, err)
	}
	return st, nil
}

// Publisher builds the configured eventstream publisher.
func Publisher(cfg *config.Config) (eventstream.Publisher, error) {
	switch cfg.Events.Provider {
	case "", "nop":
		return nop.NewPublisher(), nil
	case "kafka":
		if cfg.Events.Brokers == "" {
			return nil, fmt.Errorf("events provider kafka requires brokers")
		}
		return kafka.NewPublisher(strings.Split(cfg.Events.Brokers, ","), cfg.Events.Topic), nil
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Events.Provider)
	}
}

// Coordinator assembles the full pipeline: rate-limited fetcher, enrichment
// client, vocabulary and publisher. Option mutators adjust the run options
// after config defaults are applied (e.g. extract's stage toggles).
func Coordinator(cfg *config.Config, st *sqlite.Driver, pub eventstream.Publisher, log *slog.Logger, mutate ...func(*pipeline.Options)) (*pipeline.Coordinator, error) {
	client, err := enrich.NewClient(enrich.ClientConfig{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating enrichment client: %w", err)
	}

	vocab, err := enrich.LoadVocabulary(cfg.Notes.Vocabulary)
	if err != nil {
		return nil, err
	}

	fetcher := fetch.New(fetch.Config{
		Limiter:      ratelimit.NewPerOrigin(cfg.Fetch.RatePerSecond),
		Timeout:      time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		MaxBodyBytes: cfg.Fetch.MaxContentBytes,
		UserAgent:    cfg.Fetch.UserAgent,
	})

	runner := enrich.NewRunner(client, client, vocab)

	opts := pipeline.Options{
		Workers:       cfg.Pipeline.Workers,
		BatchSize:     cfg.Pipeline.BatchSize,
		RetryFailed:   cfg.Pipeline.RetryFailed,
		SkipUnchanged: cfg.Pipeline.SkipUnchanged,
	}
	for _, m := range mutate {
		m(&opts)
	}

	return pipeline.New(st, fetcher, runner, pub, log, opts), nil
}

// ScanNotes lists daily note files in the configured directory, optionally
// restricted to a date range (inclusive, "2006-01-02").
func ScanNotes(cfg *config.Config, from, to string) ([]notes.NoteFile, error) {
	var fromDate, toDate time.Time
	var err error

	if from != "" {
		fromDate, err = time.Parse("2006-01-02", from)
		if err != nil {
			return nil, fmt.Errorf("invalid --from date %q: %w", from, err)
		}
	}
	if to != "" {
		toDate, err = time.Parse("2006-01-02", to)
		if err != nil {
			return nil, fmt.Errorf("invalid --to date %q: %w", to, err)
		}
	}

	files, err := notes.Scan(cfg.Notes.Dir, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("scanning notes in %s: %w", cfg.Notes.Dir, err)
	}
	return files, nil
}
