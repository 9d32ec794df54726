//go:build sqlite_fts5

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/daylogco/linkdex/pkg/link"
)

// The links_fts virtual table mirrors the searchable columns of links; the
// triggers keep it in sync with every insert, update and delete.
const ftsSchemaSQL = `
CREATE VIRTUAL TABLE IF NOT EXISTS links_fts USING fts5(
	title,
	description,
	page_content,
	summary,
	content='links',
	content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS links_ai AFTER INSERT ON links BEGIN
	INSERT INTO links_fts(rowid, title, description, page_content, summary)
	VALUES (new.id, new.title, new.description, new.page_content, new.summary);
END;

CREATE TRIGGER IF NOT EXISTS links_au AFTER UPDATE ON links BEGIN
	INSERT INTO links_fts(links_fts, rowid, title, description, page_content, summary)
	VALUES ('delete', old.id, old.title, old.description, old.page_content, old.summary);
	INSERT INTO links_fts(rowid, title, description, page_content, summary)
	VALUES (new.id, new.title, new.description, new.page_content, new.summary);
END;

CREATE TRIGGER IF NOT EXISTS links_ad AFTER DELETE ON links BEGIN
	INSERT INTO links_fts(links_fts, rowid, title, description, page_content, summary)
	VALUES ('delete', old.id, old.title, old.description, old.page_content, old.summary);
END;
`

func initFTS(db *sql.DB) error {
	if _, err := db.Exec(ftsSchemaSQL); err != nil {
		return fmt.Errorf("apply fts schema: %w", err)
	}
	return nil
}

// Search runs an FTS5 query over titles, descriptions, content and
// summaries, best match first.
func (d *Driver) Search(ctx context.Context, query string, limit int) ([]*link.Record, error) {
	if limit <= 0 {
		limit = 50
	}
	return d.queryRecords(ctx, selectColumns+` FROM links
		JOIN links_fts ON links.id = links_fts.rowid
		WHERE links_fts MATCH ?
		ORDER BY rank
		LIMIT ?`,
		query, limit,
	)
}
