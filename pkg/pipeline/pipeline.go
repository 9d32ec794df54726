// Package pipeline coordinates the enrichment stages over the store: note
// scanning, fetching, extraction, summarization and tagging. Each link's
// outcome is committed in a single transaction, so interrupted runs resume
// cleanly and finished records are never re-processed.
package pipeline

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/daylogco/linkdex/pkg/enrich"
	"github.com/daylogco/linkdex/pkg/eventstream"
	"github.com/daylogco/linkdex/pkg/extract"
	"github.com/daylogco/linkdex/pkg/fetch"
	"github.com/daylogco/linkdex/pkg/link"
	"github.com/daylogco/linkdex/pkg/notes"
	"github.com/daylogco/linkdex/pkg/store"
)

// Fetcher retrieves one URL's raw content with rate limiting applied.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Result, error)
}

// Options tune one pipeline run.
type Options struct {
	// Workers bounds concurrent link processing.
	Workers int

	// BatchSize bounds how many records are loaded from the store at once.
	BatchSize int

	// RetryFailed re-attempts transient failures from earlier runs.
	RetryFailed bool

	// SkipUnchanged skips note files whose content hash has not changed
	// since the last run.
	SkipUnchanged bool

	// SkipFetch, SkipSummarize and SkipTag disable individual stages for
	// this run; the skipped stage stays pending for a later run.
	SkipFetch     bool
	SkipSummarize bool
	SkipTag       bool
}

// Result counts one run's outcomes.
type Result struct {
	RunID string

	FilesScanned int
	FilesSkipped int
	NewLinks     int

	// Processed counts records advanced this run; LinksSkipped counts
	// records in the store that needed no work (already complete, or failed
	// terminally with retries off).
	Processed    int
	LinksSkipped int

	FetchFailed   int
	ExtractFailed int
	SummaryFailed int
	TagFailed     int
}

// Coordinator drives the pipeline over a store, fetcher and enrichment
// runner.
type Coordinator struct {
	store     store.Driver
	fetcher   Fetcher
	enricher  *enrich.Runner
	publisher eventstream.Publisher
	log       *slog.Logger
	opts      Options
}

// New creates a Coordinator. A nil publisher disables event emission; a nil
// logger falls back to slog's default.
func New(st store.Driver, fetcher Fetcher, enricher *enrich.Runner, publisher eventstream.Publisher, log *slog.Logger, opts Options) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &Coordinator{
		store:     st,
		fetcher:   fetcher,
		enricher:  enricher,
		publisher: publisher,
		log:       log,
		opts:      opts,
	}
}

// Run scans the given note files for links, then processes every record with
// unfinished stages.
func (c *Coordinator) Run(ctx context.Context, files []notes.NoteFile) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := c.log.With("run_id", res.RunID)

	if err := c.scan(ctx, files, res, log); err != nil {
		return res, err
	}
	if err := c.process(ctx, res, log); err != nil {
		return res, err
	}

	return res, nil
}

// Process runs only the enrichment stages over records already in the store.
func (c *Coordinator) Process(ctx context.Context) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := c.log.With("run_id", res.RunID)
	if err := c.process(ctx, res, log); err != nil {
		return res, err
	}
	return res, nil
}

func (c *Coordinator) scan(ctx context.Context, files []notes.NoteFile, res *Result, log *slog.Logger) error {
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		hash, err := fileHash(file.Path)
		if err != nil {
			return fmt.Errorf("hash note file %s: %w", file.Path, err)
		}

		if c.opts.SkipUnchanged {
			changed, err := c.store.NoteFileChanged(ctx, file.Path, hash)
			if err != nil {
				return err
			}
			if !changed {
				res.FilesSkipped++
				continue
			}
		}

		raws, err := notes.ParseFile(file)
		if err != nil {
			return fmt.Errorf("parse note file %s: %w", file.Path, err)
		}

		for _, raw := range raws {
			created, err := c.store.Upsert(ctx, raw)
			if err != nil {
				return fmt.Errorf("upsert %s: %w", raw.URL, err)
			}
			if created {
				res.NewLinks++
			}
		}

		if err := c.store.MarkNoteFile(ctx, file.Path, hash); err != nil {
			return err
		}
		res.FilesScanned++
	}

	log.Info("scanned daily notes",
		"files", res.FilesScanned,
		"skipped", res.FilesSkipped,
		"new_links", res.NewLinks)
	return nil
}

func (c *Coordinator) process(ctx context.Context, res *Result, log *slog.Logger) error {
	// Failed records stay eligible for selection when retries are on, so a
	// record attempted this run must not be picked up again by the next
	// batch. The selection window widens by the attempted count: records
	// that failed again this run sort ahead of untried ones and would
	// otherwise fill every batch.
	attempted := make(map[string]bool)

	var mu sync.Mutex

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := c.store.Pending(ctx, c.opts.RetryFailed, c.opts.BatchSize+len(attempted))
		if err != nil {
			return err
		}

		var work []*link.Record
		for _, rec := range batch {
			if !attempted[rec.URL] {
				work = append(work, rec)
				attempted[rec.URL] = true
			}
		}
		if len(work) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.opts.Workers)

		for _, rec := range work {
			g.Go(func() error {
				outcome := c.processOne(gctx, rec, res.RunID, log)

				mu.Lock()
				res.Processed++
				switch rec.FetchStatus {
				case link.FetchFailed:
					res.FetchFailed++
				case link.ExtractFailed:
					res.ExtractFailed++
				}
				if rec.SummaryStatus == link.SummaryFailed {
					res.SummaryFailed++
				}
				if rec.TagStatus == link.TaggingFailed {
					res.TagFailed++
				}
				mu.Unlock()

				return outcome
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
	}

	stats, err := c.store.Stats(ctx)
	if err != nil {
		return err
	}
	res.LinksSkipped = stats.Total - res.Processed
	if res.LinksSkipped < 0 {
		res.LinksSkipped = 0
	}

	log.Info("pipeline run complete",
		"processed", res.Processed,
		"skipped", res.LinksSkipped,
		"fetch_failed", res.FetchFailed,
		"extract_failed", res.ExtractFailed,
		"summary_failed", res.SummaryFailed,
		"tag_failed", res.TagFailed)
	return nil
}

// processOne advances every unfinished stage of one record and commits the
// outcome in a single transaction. Stage failures are recorded in the
// statuses; only store and context errors abort the run.
func (c *Coordinator) processOne(ctx context.Context, rec *link.Record, runID string, log *slog.Logger) error {
	var ran bool

	if !c.opts.SkipFetch && c.needsFetch(rec) {
		c.fetchStage(ctx, rec, log)
		ran = true
		if err := ctx.Err(); err != nil {
			return err
		}
	}

	in := enrich.Input{
		URL:         rec.URL,
		Domain:      rec.Domain,
		Title:       rec.BestTitle(),
		Description: rec.Description,
		Content:     rec.Text(),
	}

	if !c.opts.SkipSummarize && c.needsSummary(rec) {
		summary, status, model := c.enricher.SummarizeStage(ctx, in)
		rec.SummaryStatus = status
		if status != link.SummaryFailed {
			rec.Summary = &summary
			rec.SummarizerModel = model
		}
		ran = true
	}

	if !c.opts.SkipTag && c.needsTags(rec) {
		tags, status := c.enricher.TagStage(ctx, in)
		rec.TagStatus = status
		if status == link.Tagged {
			rec.Tags = tags
		}
		ran = true
	}

	if !ran {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.store.Commit(ctx, rec); err != nil {
		return fmt.Errorf("commit %s: %w", rec.URL, err)
	}

	c.publish(ctx, rec, runID, log)

	log.Debug("processed link",
		"url", rec.URL,
		"fetch", rec.FetchStatus,
		"summary", rec.SummaryStatus,
		"tags", rec.TagStatus)
	return nil
}

func (c *Coordinator) needsFetch(rec *link.Record) bool {
	if rec.FetchStatus == link.FetchPending {
		return true
	}
	return c.opts.RetryFailed && rec.FetchStatus == link.FetchFailed && rec.Retryable
}

func (c *Coordinator) needsSummary(rec *link.Record) bool {
	if rec.SummaryStatus == link.SummaryPending {
		return true
	}
	return c.opts.RetryFailed && rec.SummaryStatus == link.SummaryFailed
}

func (c *Coordinator) needsTags(rec *link.Record) bool {
	if rec.TagStatus == link.TagPending {
		return true
	}
	return c.opts.RetryFailed && rec.TagStatus == link.TaggingFailed
}

// fetchStage fetches and extracts one URL, recording the outcome and its
// retryability on the record.
func (c *Coordinator) fetchStage(ctx context.Context, rec *link.Record, log *slog.Logger) {
	now := time.Now().UTC()
	rec.FetchedAt = &now
	rec.FetchError = ""
	rec.Retryable = false

	result, err := c.fetcher.Fetch(ctx, rec.URL)
	if err != nil {
		rec.FetchStatus = link.FetchFailed
		rec.FetchError = err.Error()
		rec.Retryable = retryableFetchError(err)
		log.Warn("fetch failed", "url", rec.URL, "retryable", rec.Retryable, "error", err)
		return
	}

	if result.ContentType == fetch.TypeOther {
		// Media and other unsupported types carry no extractable text;
		// enrichment falls back to note metadata.
		empty := ""
		rec.Content = &empty
		rec.FetchStatus = link.Fetched
		return
	}

	text, err := extract.Extract(result.ContentType, result.Body)
	if err != nil {
		rec.FetchStatus = link.ExtractFailed
		rec.FetchError = err.Error()
		log.Warn("extraction failed", "url", rec.URL, "error", err)
		return
	}

	if result.ContentType == fetch.TypeHTML {
		if title := extract.Title(result.Body); title != "" {
			rec.PageTitle = title
		}
	}

	rec.Content = &text
	rec.FetchStatus = link.Fetched
}

// retryableFetchError classifies a fetch failure: network errors and
// throttling or server-side HTTP statuses are transient, other HTTP statuses
// are permanent.
func retryableFetchError(err error) bool {
	var httpErr *fetch.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Retryable()
	}
	var netErr *fetch.NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	// Context timeouts surface without the typed wrapper in some paths.
	return errors.Is(err, context.DeadlineExceeded)
}

func (c *Coordinator) publish(ctx context.Context, rec *link.Record, runID string, log *slog.Logger) {
	if c.publisher == nil {
		return
	}

	names := make([]string, 0, len(rec.Tags))
	for _, t := range rec.Tags {
		names = append(names, t.Name)
	}

	event := &eventstream.LinkProcessedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeLinkProcessed,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		RunID:         runID,
		URL:           rec.URL,
		Domain:        rec.Domain,
		FirstSeen:     rec.FirstSeen.Format("2006-01-02"),
		FetchStatus:   rec.FetchStatus,
		SummaryStatus: rec.SummaryStatus,
		TagStatus:     rec.TagStatus,
		TagNames:      names,
	}

	if err := c.publisher.PublishLinkProcessed(ctx, event); err != nil {
		// Event delivery is best-effort; the committed record is the
		// source of truth.
		log.Warn("event publish failed", "url", rec.URL, "error", err)
	}
}

func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:]), nil
}
