// Package enrich sequences the two LLM enrichment stages, summarization and
// tagging, against one link's extracted text. The stages are independent: a
// failure in one never blocks the other, and a link with no usable text still
// receives a metadata-derived summary on a marked degraded path.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/daylogco/linkdex/pkg/link"
)

// BackendError wraps an enrichment backend failure (unavailable, rate
// limited, malformed output). Backend errors are retryable on a later run.
type BackendError struct {
	Provider string
	Err      error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s backend: %v", e.Provider, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// Input is everything the enrichment stages may draw on for one link.
type Input struct {
	URL         string
	Domain      string
	Title       string
	Description string

	// Content is the extracted text; empty means the stages fall back to
	// metadata.
	Content string
}

// Summarizer produces a short synopsis of the given input.
type Summarizer interface {
	Summarize(ctx context.Context, in Input) (string, error)
	ModelName() string
}

// Tagger assigns vocabulary tags with confidence scores to the given input.
type Tagger interface {
	Tag(ctx context.Context, in Input, vocab Vocabulary) ([]link.Tag, error)
}

// Result carries the outcome of both stages, each with its own status.
type Result struct {
	Summary         string
	SummaryStatus   link.SummaryStatus
	SummarizerModel string

	Tags      []link.Tag
	TagStatus link.TagStatus
}

// Runner applies the stage-level fallback policy over a Summarizer and a
// Tagger.
type Runner struct {
	summarizer Summarizer
	tagger     Tagger
	vocab      Vocabulary
}

// NewRunner creates a Runner. A nil vocabulary falls back to the built-in
// one.
func NewRunner(summarizer Summarizer, tagger Tagger, vocab Vocabulary) *Runner {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Runner{
		summarizer: summarizer,
		tagger:     tagger,
		vocab:      vocab,
	}
}

// Run executes both stages. It always returns a Result; per-stage failures
// are captured in the statuses, never as an error.
func (r *Runner) Run(ctx context.Context, in Input) Result {
	res := Result{}
	res.Summary, res.SummaryStatus, res.SummarizerModel = r.SummarizeStage(ctx, in)
	res.Tags, res.TagStatus = r.TagStage(ctx, in)
	return res
}

// SummarizeStage runs only the summarization stage. Records with no usable
// content get a metadata-derived summary on the degraded path.
func (r *Runner) SummarizeStage(ctx context.Context, in Input) (string, link.SummaryStatus, string) {
	if strings.TrimSpace(in.Content) == "" {
		return MetadataSummary(in), link.SkippedNoContent, "metadata"
	}

	summary, err := r.summarizer.Summarize(ctx, in)
	if err != nil {
		return "", link.SummaryFailed, ""
	}

	return strings.TrimSpace(summary), link.Summarized, r.summarizer.ModelName()
}

// TagStage runs only the tagging stage. Records with no text at all are
// skipped rather than sent to the backend.
func (r *Runner) TagStage(ctx context.Context, in Input) ([]link.Tag, link.TagStatus) {
	if strings.TrimSpace(in.Content) == "" &&
		strings.TrimSpace(in.Title) == "" &&
		strings.TrimSpace(in.Description) == "" {
		return nil, link.SkippedNoText
	}

	tags, err := r.tagger.Tag(ctx, in, r.vocab)
	if err != nil {
		return nil, link.TaggingFailed
	}

	return tags, link.Tagged
}

// MetadataSummary derives a synopsis from note metadata alone, for links
// whose content could not be fetched or extracted.
func MetadataSummary(in Input) string {
	var parts []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		for _, existing := range parts {
			if existing == s {
				return
			}
		}
		parts = append(parts, s)
	}

	add(in.Title)
	add(in.Description)

	if len(parts) == 0 {
		return in.URL
	}
	return strings.Join(parts, " - ")
}
