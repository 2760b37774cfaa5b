package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/announcement-crawler/internal/entity"
)

// AnnouncementRepoImpl provides a concrete implementation for the AnnouncementRepository interface using PostgreSQL.
type AnnouncementRepoImpl struct {
	db *pgxpool.Pool
}

// NewAnnouncementRepo creates a new instance of AnnouncementRepoImpl.
func NewAnnouncementRepo(db *pgxpool.Pool) *AnnouncementRepoImpl {
	return &AnnouncementRepoImpl{db: db}
}

// SaveAll upserts every announcement within a single transaction.
func (r *AnnouncementRepoImpl) SaveAll(ctx context.Context, announcements []entity.Announcement) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO announcements (link, title, language, department, articles, crawled_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (link) DO UPDATE SET
			title = EXCLUDED.title,
			language = EXCLUDED.language,
			department = EXCLUDED.department,
			articles = EXCLUDED.articles,
			crawled_at = EXCLUDED.crawled_at;
	`

	batch := &pgx.Batch{}
	for _, a := range announcements {
		articlesJSON, err := json.Marshal(a.Articles)
		if err != nil {
			return fmt.Errorf("failed to encode articles of %s: %w", a.Link, err)
		}
		batch.Queue(query, a.Link, a.Title, a.Language, a.Department, articlesJSON, a.CrawledAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
