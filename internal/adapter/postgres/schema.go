package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS announcements (
	link        TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	language    TEXT NOT NULL,
	department  TEXT NOT NULL,
	articles    JSONB NOT NULL,
	crawled_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS crawl_failures (
	id                     BIGSERIAL PRIMARY KEY,
	url                    TEXT NOT NULL UNIQUE,
	reason                 TEXT NOT NULL,
	detail                 TEXT NOT NULL DEFAULT '',
	http_status_code       INTEGER NOT NULL DEFAULT 0,
	failed_attempts        INTEGER NOT NULL DEFAULT 0,
	reason_count           INTEGER NOT NULL DEFAULT 1,
	last_attempt_timestamp TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the tables used by the Postgres repositories.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
