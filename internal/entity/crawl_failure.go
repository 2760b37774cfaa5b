package entity

import "time"

// Failure reasons recorded alongside each failed_attempts increment.
const (
	ReasonMissingFromDiscovery = "missing_from_discovery"
	ReasonFetchFailed          = "fetch_failed"
	ReasonNoArticles           = "no_articles"
)

// CrawlFailure mirrors the `crawl_failures` PostgreSQL table schema.
type CrawlFailure struct {
	ID                   int64
	URL                  string
	Reason               string
	Detail               string
	HTTPStatusCode       int
	FailedAttempts       int
	LastAttemptTimestamp time.Time
}
