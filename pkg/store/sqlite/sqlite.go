// Package sqlite provides the SQLite-backed store driver with full-text
// search over titles, descriptions, content and summaries. Build with the
// sqlite_fts5 tag for FTS5 ranked search; without it search degrades to
// LIKE scans.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/daylogco/linkdex/pkg/link"
	"github.com/daylogco/linkdex/pkg/store"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// Driver implements store.Driver over a single SQLite database file.
type Driver struct {
	db *sql.DB
}

var _ store.Driver = (*Driver)(nil)

// New opens (or creates) the database at path and applies the schema.
// Path can be ":memory:" for an in-memory database.
func New(path string) (*Driver, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// A single writer connection keeps transactions serialized and avoids
	// SQLITE_BUSY under concurrent pipeline commits.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	if err := initFTS(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{db: db}, nil
}

// Close closes the underlying database handle.
func (d *Driver) Close() error {
	return d.db.Close()
}

// Upsert registers a raw sighting. New URLs insert a pending record; known
// URLs keep their enrichment and only move first_seen earlier when the
// sighting predates the recorded date.
func (d *Driver) Upsert(ctx context.Context, raw link.Raw) (bool, error) {
	var firstSeen string
	err := d.db.QueryRowContext(ctx,
		`SELECT first_seen FROM links WHERE url = ?`, raw.URL,
	).Scan(&firstSeen)

	now := time.Now().UTC().Format(timeLayout)
	sighted := raw.SourceDate.Format(dateLayout)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		rec := link.New(raw)
		_, err := d.db.ExecContext(ctx, `
			INSERT INTO links (url, title, description, domain, first_seen,
				source_file, parent_url, indent_level,
				fetch_status, summary_status, tag_status,
				created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.URL, rec.Title, rec.Description, rec.Domain, sighted,
			rec.SourceFile, rec.ParentURL, rec.IndentLevel,
			string(rec.FetchStatus), string(rec.SummaryStatus), string(rec.TagStatus),
			now, now,
		)
		if err != nil {
			return false, fmt.Errorf("insert link: %w", err)
		}
		return true, nil

	case err != nil:
		return false, fmt.Errorf("lookup link: %w", err)

	default:
		stored, perr := time.Parse(dateLayout, firstSeen)
		if perr != nil {
			return false, fmt.Errorf("parse first_seen: %w", perr)
		}
		sightedDay, perr := time.Parse(dateLayout, sighted)
		if perr != nil {
			return false, fmt.Errorf("parse sighting date: %w", perr)
		}
		if sightedDay.Before(stored) {
			_, err := d.db.ExecContext(ctx, `
				UPDATE links
				SET first_seen = ?, source_file = ?, updated_at = ?
				WHERE url = ?`,
				sighted, raw.SourceFile, now, raw.URL,
			)
			if err != nil {
				return false, fmt.Errorf("backdate link: %w", err)
			}
		}
		return false, nil
	}
}

// Get retrieves a record with its tags.
func (d *Driver) Get(ctx context.Context, url string) (*link.Record, error) {
	row := d.db.QueryRowContext(ctx, selectColumns+` FROM links WHERE url = ?`, url)
	rec, id, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if rec.Tags, err = d.loadTags(ctx, id); err != nil {
		return nil, err
	}
	return rec, nil
}

// Pending returns records with at least one pending stage, oldest first.
// With retryFailed, transient failures are eligible again: retryable fetch
// errors and backend summary/tagging failures.
func (d *Driver) Pending(ctx context.Context, retryFailed bool, limit int) ([]*link.Record, error) {
	query := selectColumns + ` FROM links
		WHERE fetch_status = 'pending'
		   OR summary_status = 'pending'
		   OR tag_status = 'pending'`
	if retryFailed {
		query += `
		   OR (fetch_status = 'fetch_failed' AND retryable = 1)
		   OR summary_status = 'summary_failed'
		   OR tag_status = 'tagging_failed'`
	}
	query += ` ORDER BY first_seen ASC, id ASC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return d.queryRecords(ctx, query)
}

// Commit writes the record's full enrichment state and replaces its tags in
// one transaction.
func (d *Driver) Commit(ctx context.Context, rec *link.Record) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)

	var fetchedAt any
	if rec.FetchedAt != nil {
		fetchedAt = rec.FetchedAt.UTC().Format(timeLayout)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE links
		SET page_title = ?, page_content = ?,
			fetch_status = ?, fetch_error = ?, retryable = ?, fetched_at = ?,
			summary = ?, summary_status = ?, summarizer_model = ?,
			tag_status = ?, updated_at = ?
		WHERE url = ?`,
		rec.PageTitle, rec.Content,
		string(rec.FetchStatus), rec.FetchError, rec.Retryable, fetchedAt,
		rec.Summary, string(rec.SummaryStatus), rec.SummarizerModel,
		string(rec.TagStatus), now, rec.URL,
	)
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}

	var id int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM links WHERE url = ?`, rec.URL).Scan(&id); err != nil {
		return fmt.Errorf("resolve link id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM link_tags WHERE link_id = ?`, id); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	for _, tag := range rec.Tags {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO tags (name, category) VALUES (?, ?)`,
			tag.Name, string(tag.Category),
		); err != nil {
			return fmt.Errorf("ensure tag %s: %w", tag.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO link_tags (link_id, tag_id, confidence)
			SELECT ?, id, ? FROM tags WHERE name = ?`,
			id, tag.Confidence, tag.Name,
		); err != nil {
			return fmt.Errorf("attach tag %s: %w", tag.Name, err)
		}
	}

	return tx.Commit()
}

// Columns are qualified so the same select works for joined queries.
const selectColumns = `
	SELECT links.id, links.url, links.title, links.description, links.domain,
		links.first_seen, links.source_file, links.parent_url,
		links.indent_level, links.page_title, links.page_content,
		links.fetch_status, links.fetch_error, links.retryable,
		links.fetched_at, links.summary, links.summary_status,
		links.summarizer_model, links.tag_status,
		links.created_at, links.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*link.Record, int64, error) {
	var (
		rec       link.Record
		id        int64
		firstSeen string
		content   sql.NullString
		fetchedAt sql.NullString
		summary   sql.NullString
		createdAt string
		updatedAt string
	)

	err := row.Scan(
		&id, &rec.URL, &rec.Title, &rec.Description, &rec.Domain,
		&firstSeen, &rec.SourceFile, &rec.ParentURL, &rec.IndentLevel,
		&rec.PageTitle, &content,
		&rec.FetchStatus, &rec.FetchError, &rec.Retryable, &fetchedAt,
		&summary, &rec.SummaryStatus, &rec.SummarizerModel, &rec.TagStatus,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	if rec.FirstSeen, err = time.Parse(dateLayout, firstSeen); err != nil {
		return nil, 0, fmt.Errorf("parse first_seen: %w", err)
	}
	if content.Valid {
		rec.Content = &content.String
	}
	if fetchedAt.Valid {
		t, err := time.Parse(timeLayout, fetchedAt.String)
		if err != nil {
			return nil, 0, fmt.Errorf("parse fetched_at: %w", err)
		}
		rec.FetchedAt = &t
	}
	if summary.Valid {
		rec.Summary = &summary.String
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, 0, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, 0, fmt.Errorf("parse updated_at: %w", err)
	}

	return &rec, id, nil
}

func (d *Driver) queryRecords(ctx context.Context, query string, args ...any) ([]*link.Record, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	var (
		records []*link.Record
		ids     []int64
	)
	for rows.Next() {
		rec, id, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}

	for i, rec := range records {
		if rec.Tags, err = d.loadTags(ctx, ids[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (d *Driver) loadTags(ctx context.Context, linkID int64) ([]link.Tag, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name, t.category, lt.confidence
		FROM link_tags lt
		JOIN tags t ON t.id = lt.tag_id
		WHERE lt.link_id = ?
		ORDER BY lt.confidence DESC, t.name ASC`,
		linkID,
	)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	var tags []link.Tag
	for rows.Next() {
		var tag link.Tag
		if err := rows.Scan(&tag.Name, &tag.Category, &tag.Confidence); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
