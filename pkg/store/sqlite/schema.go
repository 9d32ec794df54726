package sqlite

const schemaSQL = `
CREATE TABLE IF NOT EXISTS links (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	url              TEXT UNIQUE NOT NULL,
	title            TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	domain           TEXT NOT NULL DEFAULT '',
	-- ISO date string. A DATE declared type would make the driver convert
	-- the value to time.Time on scan.
	first_seen       TEXT NOT NULL,
	source_file      TEXT NOT NULL DEFAULT '',
	parent_url       TEXT NOT NULL DEFAULT '',
	indent_level     INTEGER NOT NULL DEFAULT 0,

	page_title       TEXT NOT NULL DEFAULT '',
	page_content     TEXT,
	fetch_status     TEXT NOT NULL DEFAULT 'pending',
	fetch_error      TEXT NOT NULL DEFAULT '',
	retryable        INTEGER NOT NULL DEFAULT 0,
	fetched_at       TIMESTAMP,

	summary          TEXT,
	summary_status   TEXT NOT NULL DEFAULT 'pending',
	summarizer_model TEXT NOT NULL DEFAULT '',

	tag_status       TEXT NOT NULL DEFAULT 'pending',

	created_at       TIMESTAMP NOT NULL,
	updated_at       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT UNIQUE NOT NULL,
	category TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS link_tags (
	link_id    INTEGER NOT NULL REFERENCES links(id) ON DELETE CASCADE,
	tag_id     INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	confidence REAL NOT NULL DEFAULT 1.0,
	PRIMARY KEY (link_id, tag_id)
);

CREATE TABLE IF NOT EXISTS note_files (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	source_file  TEXT UNIQUE NOT NULL,
	file_hash    TEXT NOT NULL,
	processed_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_links_first_seen ON links(first_seen);
CREATE INDEX IF NOT EXISTS idx_links_domain ON links(domain);
CREATE INDEX IF NOT EXISTS idx_links_fetch_status ON links(fetch_status);
`
