package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
	"go.uber.org/zap"
)

func TestJobRunDiscoverAndCrawl(t *testing.T) {
	f := newDiscoveryFixture(t)
	f.parser.articles[csList] = []entity.Article{{Title: "公告", Link: "https://cs.site.nthu.edu.tw/p/406-1.php"}}
	repo := &memRepo{}
	m := NewURLManager(repo, zap.NewNop(), WithClock(f.clock.Now))
	f.deps.Manager = m

	announcements := &fakeAnnouncements{}
	crawler := NewCrawler(CrawlerDeps{
		Manager:       m,
		Fetcher:       f.fetcher,
		Parser:        f.parser,
		Announcements: []repository.AnnouncementRepository{announcements},
		Metrics:       f.deps.Metrics,
		Logger:        zap.NewNop(),
	}, 2)
	lock := &fakeLock{}

	job := NewJob(JobDeps{
		Manager:    m,
		Discoverer: f.discoverer(),
		Crawler:    crawler,
		Lock:       lock,
		Metrics:    f.deps.Metrics,
		Logger:     zap.NewNop(),
	}, time.Minute, entity.DefaultCleanupDays)

	report, err := job.Run(context.Background(), StepDiscover, StepCrawl)
	require.NoError(t, err)
	require.NotNil(t, report.Discovery)
	require.NotNil(t, report.Crawl)
	assert.Equal(t, 2, report.Crawl.Planned)
	assert.Equal(t, 1, report.Crawl.Succeeded)

	assert.Equal(t, 1, repo.saves)
	assert.Equal(t, 2, repo.store.URLCount)
	assert.Equal(t, 1, lock.acquired)
	assert.Equal(t, 1, lock.released)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.deps.Metrics.StoreURLs.WithLabelValues("total")))
	assert.Len(t, announcements.saved, 1)
}

func TestJobSavesAfterFailedStep(t *testing.T) {
	f := newDiscoveryFixture(t)
	f.fetcher.pages = map[string]bool{}
	repo := &memRepo{store: &entity.URLStore{URLs: map[string]*entity.URLRecord{
		oldList: {FirstSeen: "2024-01-01T00:00:00", LastSeen: "2024-01-01T00:00:00", Metadata: entity.Metadata{}},
	}}}
	m := NewURLManager(repo, zap.NewNop(), WithClock(f.clock.Now))
	f.deps.Manager = m

	job := NewJob(JobDeps{
		Manager:    m,
		Discoverer: f.discoverer(),
		Metrics:    f.deps.Metrics,
		Logger:     zap.NewNop(),
	}, time.Minute, entity.DefaultCleanupDays)

	_, err := job.Run(context.Background(), StepDiscover, StepCleanup)
	require.ErrorIs(t, err, ErrDiscoveryIncomplete)
	assert.Equal(t, 1, repo.saves)
	assert.Contains(t, repo.store.URLs, oldList, "cleanup does not run after a failed step")
}

func TestJobLockHeld(t *testing.T) {
	repo := &memRepo{}
	m := NewURLManager(repo, zap.NewNop())
	job := NewJob(JobDeps{
		Manager: m,
		Lock:    &fakeLock{err: repository.ErrLockHeld},
		Metrics: newMetrics(),
		Logger:  zap.NewNop(),
	}, time.Minute, entity.DefaultCleanupDays)

	_, err := job.Run(context.Background(), StepCleanup)
	require.ErrorIs(t, err, repository.ErrLockHeld)
	assert.Equal(t, 0, repo.saves)
}

func TestJobCleanup(t *testing.T) {
	clock := newClock()
	repo := &memRepo{store: &entity.URLStore{URLs: map[string]*entity.URLRecord{
		oldList: {LastSeen: ts(clock.Now().AddDate(0, 0, -91)), Metadata: entity.Metadata{}},
		csList:  {LastSeen: ts(clock.Now().AddDate(0, 0, -89)), Metadata: entity.Metadata{}},
	}}}
	m := NewURLManager(repo, zap.NewNop(), WithClock(clock.Now))
	job := NewJob(JobDeps{Manager: m, Metrics: newMetrics(), Logger: zap.NewNop()}, time.Minute, 90)

	report, err := job.Run(context.Background(), StepCleanup)
	require.NoError(t, err)
	assert.Equal(t, []string{oldList}, report.Removed)
	assert.Equal(t, 1, repo.store.URLCount)
}

func TestJobUnconfiguredStep(t *testing.T) {
	repo := &memRepo{saveErr: errors.New("read-only")}
	m := NewURLManager(repo, zap.NewNop())
	job := NewJob(JobDeps{Manager: m, Metrics: newMetrics(), Logger: zap.NewNop()}, time.Minute, 90)

	_, err := job.Run(context.Background(), StepCrawl)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
	assert.Contains(t, err.Error(), "read-only")
}
