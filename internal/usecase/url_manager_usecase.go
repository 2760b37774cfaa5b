package usecase

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
	"go.uber.org/zap"
)

const recentCrawlWindow = 24 * time.Hour

// Layouts accepted when reading stored timestamps. The naive forms carry no
// zone and are read in local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// URLManager tracks the announcement-list URLs known from earlier runs and
// decides which of them to crawl. It is not safe for concurrent use: callers
// load, mutate and save it from a single goroutine.
type URLManager struct {
	repo   repository.URLRecordRepository
	logger *zap.Logger
	now    func() time.Time
	urls   map[string]*entity.URLRecord
}

// URLManagerOption configures a URLManager.
type URLManagerOption func(*URLManager)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) URLManagerOption {
	return func(m *URLManager) { m.now = now }
}

// NewURLManager creates a manager with an empty store. Call Load to read the
// persisted state.
func NewURLManager(repo repository.URLRecordRepository, logger *zap.Logger, opts ...URLManagerOption) *URLManager {
	m := &URLManager{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		urls:   make(map[string]*entity.URLRecord),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load replaces the in-memory state with the persisted store. A missing or
// corrupt store starts the manager empty; only unexpected I/O errors are returned.
func (m *URLManager) Load() error {
	store, err := m.repo.Load()
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrStoreNotFound):
		m.logger.Info("URL store does not exist, starting fresh")
		m.urls = make(map[string]*entity.URLRecord)
		return nil
	case errors.Is(err, repository.ErrStoreCorrupt):
		m.logger.Warn("Failed to load URL store, starting fresh", zap.Error(err))
		m.urls = make(map[string]*entity.URLRecord)
		return nil
	default:
		return fmt.Errorf("failed to load url store: %w", err)
	}

	if len(store.Skipped) > 0 {
		m.logger.Warn("Dropped unreadable URL records", zap.Strings("urls", store.Skipped))
	}

	m.urls = make(map[string]*entity.URLRecord, len(store.URLs))
	for url, rec := range store.URLs {
		if rec == nil {
			continue
		}
		if rec.Metadata == nil {
			rec.Metadata = entity.Metadata{}
		}
		if rec.FailedAttempts < 0 {
			m.logger.Warn("Resetting negative failure count", zap.String("url", url), zap.Int("failed_attempts", rec.FailedAttempts))
			rec.FailedAttempts = 0
		}
		m.urls[url] = rec
	}
	m.logger.Info("URL store loaded", zap.Int("url_count", len(m.urls)))
	return nil
}

// Save persists the current state.
func (m *URLManager) Save() error {
	store := &entity.URLStore{
		LastUpdated: m.timestamp(),
		URLCount:    len(m.urls),
		URLs:        m.urls,
	}
	if err := m.repo.Save(store); err != nil {
		return fmt.Errorf("failed to save url store: %w", err)
	}
	m.logger.Info("URL store saved", zap.Int("url_count", store.URLCount))
	return nil
}

// AddURL records that url was seen. A new URL gets a fresh record with
// metadata; a known URL only has last_seen bumped and keeps its original
// metadata and failure count.
func (m *URLManager) AddURL(url string, metadata entity.Metadata) {
	now := m.timestamp()
	if rec, ok := m.urls[url]; ok {
		rec.LastSeen = now
		return
	}
	if metadata == nil {
		metadata = entity.Metadata{}
	}
	m.urls[url] = &entity.URLRecord{
		FirstSeen: now,
		LastSeen:  now,
		Metadata:  metadata,
	}
}

// UpdateFromFullCrawl folds the URLs found by one discovery pass into the
// store. Every known URL missing from discovered gets one more failed
// attempt. It returns the missing URLs, sorted. Call it once per pass.
func (m *URLManager) UpdateFromFullCrawl(discovered map[string]struct{}) []string {
	for url := range discovered {
		m.AddURL(url, nil)
	}

	var missing []string
	for url, rec := range m.urls {
		if _, ok := discovered[url]; ok {
			continue
		}
		rec.FailedAttempts++
		missing = append(missing, url)
	}
	sort.Strings(missing)
	return missing
}

// CleanupOldURLs removes records not seen by discovery for more than days.
// Records whose last_seen cannot be parsed are kept. It returns the removed
// URLs, sorted.
func (m *URLManager) CleanupOldURLs(days int) []string {
	cutoff := m.now().AddDate(0, 0, -days)

	var removed []string
	for url, rec := range m.urls {
		lastSeen, ok := parseTimestamp(rec.LastSeen)
		if !ok {
			continue
		}
		if lastSeen.Before(cutoff) {
			removed = append(removed, url)
		}
	}
	for _, url := range removed {
		delete(m.urls, url)
	}
	sort.Strings(removed)

	if len(removed) > 0 {
		m.logger.Info("Cleaned up old URLs", zap.Int("removed", len(removed)), zap.Int("days", days))
	}
	return removed
}

// GetURLsToCrawl returns the URLs below the failure threshold in
// lexicographic order.
func (m *URLManager) GetURLsToCrawl() []string {
	urls := make([]string, 0, len(m.urls))
	for url, rec := range m.urls {
		if rec.FailedAttempts >= entity.MaxFailedAttempts {
			continue
		}
		urls = append(urls, url)
	}
	sort.Strings(urls)
	return urls
}

// MarkCrawled records the outcome of fetching url. Unknown URLs are ignored
// and false is returned.
func (m *URLManager) MarkCrawled(url string, success bool) bool {
	rec, ok := m.urls[url]
	if !ok {
		m.logger.Debug("Ignoring crawl outcome for unknown URL", zap.String("url", url))
		return false
	}
	now := m.timestamp()
	rec.LastCrawled = &now
	if success {
		rec.FailedAttempts = 0
	} else {
		rec.FailedAttempts++
	}
	return true
}

// GetStatistics summarises the current state without modifying it.
func (m *URLManager) GetStatistics() entity.Statistics {
	since := m.now().Add(-recentCrawlWindow)

	var stats entity.Statistics
	stats.TotalURLs = len(m.urls)
	for _, rec := range m.urls {
		if rec.FailedAttempts >= entity.MaxFailedAttempts {
			stats.FailedURLs++
		}
		if rec.LastCrawled == nil {
			continue
		}
		if crawled, ok := parseTimestamp(*rec.LastCrawled); ok && crawled.After(since) {
			stats.RecentlyCrawled++
		}
	}
	stats.ActiveURLs = stats.TotalURLs - stats.FailedURLs
	return stats
}

// Record returns a copy of the record for url.
func (m *URLManager) Record(url string) (entity.URLRecord, bool) {
	rec, ok := m.urls[url]
	if !ok {
		return entity.URLRecord{}, false
	}
	return *rec, true
}

func (m *URLManager) timestamp() string {
	return m.now().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, value)
		} else {
			t, err = time.ParseInLocation(layout, value, time.Local)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
