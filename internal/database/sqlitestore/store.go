// Package sqlitestore provides SQLite-backed store implementations, an
// alternative to boltstore for deployments that want SQL access to the
// moderation tables.
package sqlitestore

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS voices (
	id         TEXT PRIMARY KEY,
	author_id  TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	state      TEXT NOT NULL DEFAULT 'normal',
	hidden     INTEGER NOT NULL DEFAULT 0,
	media_path TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_voices_author ON voices(author_id);

CREATE TABLE IF NOT EXISTS reports (
	id          TEXT PRIMARY KEY,
	voice_id    TEXT NOT NULL,
	reporter_id TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	created_at  TEXT NOT NULL,
	UNIQUE(voice_id, reporter_id)
);
CREATE INDEX IF NOT EXISTS idx_reports_voice ON reports(voice_id);
CREATE INDEX IF NOT EXISTS idx_reports_reporter ON reports(reporter_id);

CREATE TABLE IF NOT EXISTS audit_log (
	id        TEXT PRIMARY KEY,
	action    TEXT NOT NULL,
	actor_id  TEXT NOT NULL,
	target_id TEXT NOT NULL DEFAULT '',
	reason    TEXT NOT NULL DEFAULT '',
	timestamp TEXT NOT NULL,
	auto_mod  INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp);
`

// Open opens (creating if needed) a SQLite database at path and applies the
// moderation schema. The connection is instrumented so queries show up as
// spans under the active tracer provider.
func Open(path string) (*sql.DB, error) {
	db, err := otelsql.Open("sqlite", path, otelsql.WithAttributes(semconv.DBSystemSqlite))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// modernc.org/sqlite serializes writes itself; a single connection
	// avoids SQLITE_BUSY under concurrent updates.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
