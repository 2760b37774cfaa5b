package usecase

import (
	"context"
	"errors"

	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
	"go.uber.org/zap"
)

// ErrURLNotFound is returned when the store has no record for a URL.
var ErrURLNotFound = errors.New("url not found in store")

// StatusReader answers read-only queries against the persisted store. It
// reloads the store on every call so a long-running server sees the writes
// of crawler runs.
type StatusReader struct {
	repo     repository.URLRecordRepository
	failures repository.CrawlFailureFinder // optional
	logger   *zap.Logger
	opts     []URLManagerOption
}

// NewStatusReader creates a StatusReader. failures may be nil.
func NewStatusReader(repo repository.URLRecordRepository, failures repository.CrawlFailureFinder, logger *zap.Logger, opts ...URLManagerOption) *StatusReader {
	return &StatusReader{repo: repo, failures: failures, logger: logger, opts: opts}
}

func (s *StatusReader) load() (*URLManager, error) {
	m := NewURLManager(s.repo, s.logger, s.opts...)
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Statistics summarises the persisted store.
func (s *StatusReader) Statistics() (entity.Statistics, error) {
	m, err := s.load()
	if err != nil {
		return entity.Statistics{}, err
	}
	return m.GetStatistics(), nil
}

// Plan returns the URLs the next item pass would crawl.
func (s *StatusReader) Plan() ([]string, error) {
	m, err := s.load()
	if err != nil {
		return nil, err
	}
	return m.GetURLsToCrawl(), nil
}

// Status returns the record of url, or ErrURLNotFound.
func (s *StatusReader) Status(ctx context.Context, url string) (*entity.RecordStatus, error) {
	m, err := s.load()
	if err != nil {
		return nil, err
	}
	rec, ok := m.Record(url)
	if !ok {
		return nil, ErrURLNotFound
	}
	status := entity.NewRecordStatus(url, rec)

	if s.failures != nil && rec.FailedAttempts > 0 {
		failure, err := s.failures.FindByURL(ctx, url)
		switch {
		case err == nil:
			status.FailureReason = failure.Reason
		case !errors.Is(err, repository.ErrFailureNotFound):
			s.logger.Warn("Failed to look up crawl failure", zap.String("url", url), zap.Error(err))
		}
	}
	return status, nil
}
