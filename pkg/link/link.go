// Package link defines the core data model: raw links discovered in daily
// notes and the durable, enriched records keyed by URL.
package link

import (
	"net/url"
	"time"
)

// FetchStatus tracks the fetch/extract stage of a record.
type FetchStatus string

const (
	FetchPending  FetchStatus = "pending"
	Fetched       FetchStatus = "fetched"
	FetchFailed   FetchStatus = "fetch_failed"
	ExtractFailed FetchStatus = "extract_failed"
)

// SummaryStatus tracks the summarization stage of a record.
type SummaryStatus string

const (
	SummaryPending   SummaryStatus = "pending"
	Summarized       SummaryStatus = "summarized"
	SummaryFailed    SummaryStatus = "summary_failed"
	SkippedNoContent SummaryStatus = "skipped_no_content"
)

// TagStatus tracks the tagging stage of a record.
type TagStatus string

const (
	TagPending    TagStatus = "pending"
	Tagged        TagStatus = "tagged"
	TaggingFailed TagStatus = "tagging_failed"
	SkippedNoText TagStatus = "skipped_no_text"
)

// Category classifies a tag.
type Category string

const (
	CategoryLanguage Category = "language"
	CategoryTopic    Category = "topic"
	CategoryCulture  Category = "culture"
)

// Raw is one link discovered in a daily note. Raw links are ephemeral: the
// same URL may appear in many notes, and only the URL-keyed Record persists.
type Raw struct {
	URL         string
	Title       string
	Description string
	SourceDate  time.Time
	SourceFile  string
	IndentLevel int
	ParentURL   string
}

// Tag is one vocabulary tag assigned to a record with a confidence in [0,1].
type Tag struct {
	Name       string
	Category   Category
	Confidence float64
}

// Record is the durable, enriched link entity, keyed by URL.
type Record struct {
	URL         string
	Domain      string
	Title       string
	Description string
	ParentURL   string
	IndentLevel int

	// FirstSeen is the date of the earliest note that referenced the URL.
	FirstSeen  time.Time
	SourceFile string

	PageTitle   string
	Content     *string
	FetchStatus FetchStatus
	FetchError  string

	// Retryable marks a failed fetch as transient (network error, 429, 5xx).
	// Permanent failures keep it false and are never re-attempted.
	Retryable bool
	FetchedAt *time.Time

	Summary         *string
	SummaryStatus   SummaryStatus
	SummarizerModel string

	TagStatus TagStatus
	Tags      []Tag

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a pending Record from a raw sighting.
func New(raw Raw) *Record {
	return &Record{
		URL:           raw.URL,
		Domain:        Domain(raw.URL),
		Title:         raw.Title,
		Description:   raw.Description,
		ParentURL:     raw.ParentURL,
		IndentLevel:   raw.IndentLevel,
		FirstSeen:     raw.SourceDate,
		SourceFile:    raw.SourceFile,
		FetchStatus:   FetchPending,
		SummaryStatus: SummaryPending,
		TagStatus:     TagPending,
	}
}

// Done reports whether every stage reached a terminal state, success or
// permanent failure included. A Done record is skipped on re-runs unless a
// retryable failure is being re-attempted.
func (r *Record) Done() bool {
	return r.FetchStatus != FetchPending &&
		r.SummaryStatus != SummaryPending &&
		r.TagStatus != TagPending
}

// Enriched reports whether every stage completed successfully, counting the
// sanctioned degraded paths (metadata summary, no taggable text) as complete.
func (r *Record) Enriched() bool {
	fetchOK := r.FetchStatus == Fetched
	summaryOK := r.SummaryStatus == Summarized || r.SummaryStatus == SkippedNoContent
	tagOK := r.TagStatus == Tagged || r.TagStatus == SkippedNoText
	return fetchOK && summaryOK && tagOK
}

// Text returns the best available text for enrichment: extracted content when
// present and non-empty, otherwise empty so callers fall back to metadata.
func (r *Record) Text() string {
	if r.Content == nil {
		return ""
	}
	return *r.Content
}

// BestTitle prefers the fetched page title over the note-provided one.
func (r *Record) BestTitle() string {
	if r.PageTitle != "" {
		return r.PageTitle
	}
	return r.Title
}

// Domain returns the host portion of a URL, or "" if it cannot be parsed.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// Origin returns the scheme+host portion of a URL, the unit of rate limiting.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}
