//go:build !sqlite_fts5

package sqlite

import (
	"context"
	"database/sql"

	"github.com/daylogco/linkdex/pkg/link"
)

func initFTS(_ *sql.DB) error {
	// FTS5 is not compiled in; search falls back to LIKE scans over the
	// links columns.
	return nil
}

// Search performs a LIKE-based scan over titles, descriptions, content and
// summaries (fallback when FTS5 is not compiled in), newest first.
func (d *Driver) Search(ctx context.Context, query string, limit int) ([]*link.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	like := "%" + query + "%"
	return d.queryRecords(ctx, selectColumns+` FROM links
		WHERE title LIKE ? OR description LIKE ?
		   OR page_content LIKE ? OR summary LIKE ?
		ORDER BY first_seen DESC, id DESC
		LIMIT ?`,
		like, like, like, like, limit,
	)
}
