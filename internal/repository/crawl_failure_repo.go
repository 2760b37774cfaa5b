package repository

import (
	"context"

	"github.com/user/announcement-crawler/internal/entity"
)

// CrawlFailureRepository keeps the reason behind every failure increment.
type CrawlFailureRepository interface {
	// Record creates or updates the failure record of a URL.
	Record(ctx context.Context, failure *entity.CrawlFailure) error
	// Delete removes a failure record, typically after a successful crawl.
	Delete(ctx context.Context, url string) error
	// DeleteMany removes the failure records of URLs dropped from the store.
	DeleteMany(ctx context.Context, urls []string) error
}

// CrawlFailureFinder looks up the last failure of a URL.
type CrawlFailureFinder interface {
	// FindByURL returns ErrFailureNotFound when the URL has no failure record.
	FindByURL(ctx context.Context, url string) (*entity.CrawlFailure, error)
}
