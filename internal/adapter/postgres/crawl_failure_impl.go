package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
)

// CrawlFailureRepoImpl provides a concrete implementation for the CrawlFailureRepository interface using PostgreSQL.
type CrawlFailureRepoImpl struct {
	db *pgxpool.Pool
}

// NewCrawlFailureRepo creates a new instance of CrawlFailureRepoImpl.
func NewCrawlFailureRepo(db *pgxpool.Pool) *CrawlFailureRepoImpl {
	return &CrawlFailureRepoImpl{db: db}
}

// Record creates or updates the failure record of a URL.
// reason_count counts consecutive failures with the same reason.
func (r *CrawlFailureRepoImpl) Record(ctx context.Context, failure *entity.CrawlFailure) error {
	query := `
		INSERT INTO crawl_failures (url, reason, detail, http_status_code, failed_attempts, reason_count, last_attempt_timestamp)
		VALUES ($1, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (url) DO UPDATE SET
			reason = EXCLUDED.reason,
			detail = EXCLUDED.detail,
			http_status_code = EXCLUDED.http_status_code,
			failed_attempts = EXCLUDED.failed_attempts,
			reason_count = CASE WHEN crawl_failures.reason = EXCLUDED.reason
				THEN crawl_failures.reason_count + 1 ELSE 1 END,
			last_attempt_timestamp = EXCLUDED.last_attempt_timestamp;
	`
	_, err := r.db.Exec(ctx, query,
		failure.URL,
		failure.Reason,
		failure.Detail,
		failure.HTTPStatusCode,
		failure.FailedAttempts,
		failure.LastAttemptTimestamp,
	)
	return err
}

// Delete removes a failure record, typically after a successful crawl.
func (r *CrawlFailureRepoImpl) Delete(ctx context.Context, url string) error {
	query := `DELETE FROM crawl_failures WHERE url = $1;`
	_, err := r.db.Exec(ctx, query, url)
	return err
}

// DeleteMany removes the failure records of URLs dropped from the store.
func (r *CrawlFailureRepoImpl) DeleteMany(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	query := `DELETE FROM crawl_failures WHERE url = ANY($1);`
	_, err := r.db.Exec(ctx, query, urls)
	return err
}

// FindByURL retrieves the failure record of a URL.
func (r *CrawlFailureRepoImpl) FindByURL(ctx context.Context, url string) (*entity.CrawlFailure, error) {
	query := `
		SELECT id, url, reason, detail, http_status_code, failed_attempts, last_attempt_timestamp
		FROM crawl_failures
		WHERE url = $1;
	`
	var f entity.CrawlFailure
	err := r.db.QueryRow(ctx, query, url).Scan(
		&f.ID,
		&f.URL,
		&f.Reason,
		&f.Detail,
		&f.HTTPStatusCode,
		&f.FailedAttempts,
		&f.LastAttemptTimestamp,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrFailureNotFound
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}
