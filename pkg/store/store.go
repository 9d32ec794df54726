// Package store defines the persistence interface for link records. The
// concrete SQLite driver lives in the sqlite subpackage.
package store

import (
	"context"
	"errors"

	"github.com/daylogco/linkdex/pkg/link"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("store: record not found")

// TagCount is one vocabulary tag with the number of records carrying it.
type TagCount struct {
	Name     string
	Category link.Category
	Count    int
}

// Stats summarizes pipeline progress across the whole store.
type Stats struct {
	Total         int
	Fetched       int
	FetchFailed   int
	ExtractFailed int
	Pending       int
	Summarized    int
	Tagged        int
}

// Driver is the persistence interface for link records.
//
// Commit persists one record's full enrichment outcome, tags included, in a
// single transaction, so a crash never leaves a record half-updated.
type Driver interface {
	// Upsert registers a raw sighting. A new URL inserts a pending record
	// and returns true; a known URL keeps its existing row and enrichment,
	// only moving first_seen earlier if the sighting predates it.
	Upsert(ctx context.Context, raw link.Raw) (bool, error)

	// Get retrieves a record with its tags, or ErrNotFound.
	Get(ctx context.Context, url string) (*link.Record, error)

	// Pending returns records with at least one pending stage, oldest
	// first. With retryFailed, records whose failures are transient
	// (retryable fetch errors, backend summary/tagging failures) are
	// included too.
	Pending(ctx context.Context, retryFailed bool, limit int) ([]*link.Record, error)

	// Commit writes the record's enrichment state and replaces its tags in
	// one transaction.
	Commit(ctx context.Context, rec *link.Record) error

	// Search runs a full-text query over titles, descriptions, content and
	// summaries.
	Search(ctx context.Context, query string, limit int) ([]*link.Record, error)

	// ByTag returns records carrying the named tag, newest first.
	ByTag(ctx context.Context, tag string) ([]*link.Record, error)

	// Tags returns every assigned tag with its record count, most used
	// first.
	Tags(ctx context.Context) ([]TagCount, error)

	// Recent returns the most recently seen records.
	Recent(ctx context.Context, limit int) ([]*link.Record, error)

	// Stats reports store-wide pipeline progress.
	Stats(ctx context.Context) (*Stats, error)

	// EmptyContent returns fetched records whose extracted content is
	// empty or shorter than minContentLen, oldest first.
	EmptyContent(ctx context.Context, minContentLen, limit int) ([]*link.Record, error)

	// ResetFetch moves fetched records with empty or near-empty content
	// back to pending so the next run re-attempts them. A positive limit
	// bounds how many are reset. Returns the number of records reset.
	ResetFetch(ctx context.Context, minContentLen, limit int) (int, error)

	// ResetTags reopens tagging. With clearExisting it drops every tag
	// assignment and resets all records; otherwise only failed and skipped
	// tag statuses are reset and existing assignments are kept. Returns
	// the number of records reset.
	ResetTags(ctx context.Context, clearExisting bool) (int, error)

	// NoteFileChanged reports whether the note file at path is new or has
	// a different content hash than last recorded.
	NoteFileChanged(ctx context.Context, path, hash string) (bool, error)

	// MarkNoteFile records the note file's content hash after processing.
	MarkNoteFile(ctx context.Context, path, hash string) error

	// Close releases the underlying database handle.
	Close() error
}
