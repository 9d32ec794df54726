package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/daylogco/linkdex/pkg/link"
	"github.com/daylogco/linkdex/pkg/store"
)

// ByTag returns records carrying the named tag, newest first.
func (d *Driver) ByTag(ctx context.Context, tag string) ([]*link.Record, error) {
	return d.queryRecords(ctx, selectColumns+` FROM links
		JOIN link_tags lt ON links.id = lt.link_id
		JOIN tags t ON t.id = lt.tag_id
		WHERE t.name = ?
		ORDER BY links.first_seen DESC, links.id DESC`,
		tag,
	)
}

// Tags returns every assigned tag with its record count, most used first.
func (d *Driver) Tags(ctx context.Context) ([]store.TagCount, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name, t.category, COUNT(lt.link_id) AS n
		FROM tags t
		JOIN link_tags lt ON t.id = lt.tag_id
		GROUP BY t.id
		ORDER BY n DESC, t.name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var counts []store.TagCount
	for rows.Next() {
		var tc store.TagCount
		if err := rows.Scan(&tc.Name, &tc.Category, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

// Recent returns the most recently seen records.
func (d *Driver) Recent(ctx context.Context, limit int) ([]*link.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	return d.queryRecords(ctx, selectColumns+` FROM links
		ORDER BY first_seen DESC, id DESC
		LIMIT ?`,
		limit,
	)
}

// Stats reports store-wide pipeline progress.
func (d *Driver) Stats(ctx context.Context) (*store.Stats, error) {
	var s store.Stats
	err := d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(CASE WHEN fetch_status = 'fetched' THEN 1 END),
			COUNT(CASE WHEN fetch_status = 'fetch_failed' THEN 1 END),
			COUNT(CASE WHEN fetch_status = 'extract_failed' THEN 1 END),
			COUNT(CASE WHEN fetch_status = 'pending'
				OR summary_status = 'pending'
				OR tag_status = 'pending' THEN 1 END),
			COUNT(CASE WHEN summary_status IN ('summarized', 'skipped_no_content') THEN 1 END),
			COUNT(CASE WHEN tag_status IN ('tagged', 'skipped_no_text') THEN 1 END)
		FROM links`,
	).Scan(&s.Total, &s.Fetched, &s.FetchFailed, &s.ExtractFailed,
		&s.Pending, &s.Summarized, &s.Tagged)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &s, nil
}

// EmptyContent returns fetched records whose extracted content is empty or
// shorter than minContentLen, oldest first.
func (d *Driver) EmptyContent(ctx context.Context, minContentLen, limit int) ([]*link.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	return d.queryRecords(ctx, selectColumns+` FROM links
		WHERE fetch_status = 'fetched'
		  AND (page_content IS NULL OR LENGTH(page_content) < ?)
		ORDER BY first_seen ASC, id ASC
		LIMIT ?`,
		minContentLen, limit,
	)
}

// ResetFetch moves fetched records with empty or near-empty content back to
// pending, clearing their enrichment so the next run redoes all stages.
func (d *Driver) ResetFetch(ctx context.Context, minContentLen, limit int) (int, error) {
	if limit <= 0 {
		limit = -1
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)

	const target = `
		SELECT id FROM links
		WHERE fetch_status = 'fetched'
		  AND (page_content IS NULL OR LENGTH(page_content) < ?)
		ORDER BY first_seen ASC, id ASC
		LIMIT ?`

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM link_tags WHERE link_id IN (`+target+`)`,
		minContentLen, limit,
	); err != nil {
		return 0, fmt.Errorf("clear tags: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE links
		SET fetch_status = 'pending', page_content = NULL, page_title = '',
			fetch_error = '', retryable = 0, fetched_at = NULL,
			summary = NULL, summary_status = 'pending', summarizer_model = '',
			tag_status = 'pending', updated_at = ?
		WHERE id IN (`+target+`)`,
		now, minContentLen, limit,
	)
	if err != nil {
		return 0, fmt.Errorf("reset fetch: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), tx.Commit()
}

// ResetTags reopens tagging. With clearExisting every assignment is dropped
// and all records reset; otherwise only failed and skipped statuses reopen
// and successful assignments are kept.
func (d *Driver) ResetTags(ctx context.Context, clearExisting bool) (int, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)

	statusFilter := `tag_status IN ('tagging_failed', 'skipped_no_text')`
	if clearExisting {
		if _, err := tx.ExecContext(ctx, `DELETE FROM link_tags`); err != nil {
			return 0, fmt.Errorf("clear tags: %w", err)
		}
		statusFilter = `tag_status != 'pending'`
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE links SET tag_status = 'pending', updated_at = ?
		WHERE `+statusFilter,
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("reset tag status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), tx.Commit()
}

// NoteFileChanged reports whether the note file is new or its content hash
// differs from the last processed run.
func (d *Driver) NoteFileChanged(ctx context.Context, path, hash string) (bool, error) {
	var stored string
	err := d.db.QueryRowContext(ctx,
		`SELECT file_hash FROM note_files WHERE source_file = ?`, path,
	).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup note file: %w", err)
	}
	return stored != hash, nil
}

// MarkNoteFile records the note file's content hash after processing.
func (d *Driver) MarkNoteFile(ctx context.Context, path, hash string) error {
	now := time.Now().UTC().Format(timeLayout)
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO note_files (source_file, file_hash, processed_at)
		VALUES (?, ?, ?)
		ON CONFLICT(source_file) DO UPDATE SET
			file_hash = excluded.file_hash,
			processed_at = excluded.processed_at`,
		path, hash, now,
	)
	if err != nil {
		return fmt.Errorf("mark note file: %w", err)
	}
	return nil
}
