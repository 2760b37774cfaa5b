package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/announcement-crawler/internal/entity"
	"go.uber.org/zap"
)

const (
	csHome  = "https://cs.site.nthu.edu.tw/?Lang=zh-tw"
	csList  = "https://cs.site.nthu.edu.tw/p/403-1.php?Lang=zh-tw"
	csEmpty = "https://cs.site.nthu.edu.tw/p/403-2.php?Lang=zh-tw"
	busList = "https://affairs.site.nthu.edu.tw/p/403-1165-1065-1.php?Lang=zh-tw"
	oldList = "https://old.site.nthu.edu.tw/p/403-9.php?Lang=zh-tw"
)

type discoveryFixture struct {
	manager  *URLManager
	clock    *fakeClock
	fetcher  *fakeFetcher
	parser   *fakeParser
	failures *fakeFailures
	deps     DiscovererDeps
	sources  SourceConfig
}

func newDiscoveryFixture(t *testing.T) *discoveryFixture {
	t.Helper()
	clock := newClock()
	m, _ := newManager(t, clock)

	fetcher := newFakeFetcher(csHome, csList, csEmpty)
	parser := newFakeParser()
	parser.more[csHome] = []string{
		"https://cs.site.nthu.edu.tw/p/403-1.php",
		"http://cs.site.nthu.edu.tw/p/403-1.php?Lang=en",
		"https://www.example.com/p/403-1.php",
		"https://cs.site.nthu.edu.tw/p/403-2.php",
	}
	parser.titles[csList] = "最新消息"

	failures := newFakeFailures()
	return &discoveryFixture{
		manager:  m,
		clock:    clock,
		fetcher:  fetcher,
		parser:   parser,
		failures: failures,
		deps: DiscovererDeps{
			Manager:     m,
			Directory:   &fakeDirectory{departments: []entity.Department{department("資訊工程學系", "http://cs.site.nthu.edu.tw/")}},
			HomeFetcher: fetcher,
			ListFetcher: fetcher,
			Parser:      parser,
			Failures:    failures,
			Metrics:     newMetrics(),
			Logger:      zap.NewNop(),
		},
		sources: SourceConfig{
			Languages:    []string{"zh-tw"},
			DomainSuffix: "site.nthu.edu.tw",
			CustomListPages: []entity.ListPage{
				{Title: "校園公車暨巡迴公車公告", Link: busList, Language: "zh-tw", Department: "總務處事務組"},
			},
		},
	}
}

func (f *discoveryFixture) discoverer() *Discoverer {
	d := NewDiscoverer(f.deps, f.sources, 2, entity.DefaultCleanupDays)
	d.now = f.clock.Now
	return d
}

func TestDiscovererRun(t *testing.T) {
	f := newDiscoveryFixture(t)
	f.manager.AddURL(oldList, entity.Metadata{"title": "old"})

	report, err := f.discoverer().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Sources)
	assert.Equal(t, 1, report.Fetched)
	assert.Equal(t, 2, report.Candidates, "duplicate and off-domain links are dropped")
	assert.Equal(t, 2, report.Discovered)
	assert.Equal(t, 2, report.New)
	assert.Equal(t, []string{oldList}, report.Missing)
	assert.Empty(t, report.Removed)

	rec, ok := f.manager.Record(csList)
	require.True(t, ok)
	assert.Equal(t, entity.Metadata{"title": "最新消息", "department": "資訊工程學系", "language": "zh-tw"}, rec.Metadata)

	_, ok = f.manager.Record(busList)
	assert.True(t, ok, "custom list pages are always discovered")
	_, ok = f.manager.Record(csEmpty)
	assert.False(t, ok, "list pages without content are not added")

	old, _ := f.manager.Record(oldList)
	assert.Equal(t, 1, old.FailedAttempts)
	require.Contains(t, f.failures.recorded, oldList)
	assert.Equal(t, entity.ReasonMissingFromDiscovery, f.failures.recorded[oldList].Reason)
	assert.Equal(t, 1, f.failures.recorded[oldList].FailedAttempts)

	assert.NotContains(t, f.fetcher.called(), "https://www.example.com/p/403-1.php?Lang=zh-tw")
	assert.Equal(t, 2.0, testutil.ToFloat64(f.deps.Metrics.DiscoveredURL.WithLabelValues("new")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.deps.Metrics.DiscoveredURL.WithLabelValues("missing")))
}

func TestDiscovererKeepsFirstMetadata(t *testing.T) {
	f := newDiscoveryFixture(t)
	f.manager.AddURL(csList, entity.Metadata{"title": "舊標題"})

	report, err := f.discoverer().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.New)

	rec, _ := f.manager.Record(csList)
	assert.Equal(t, "舊標題", rec.Metadata.String(entity.MetaTitle))
	assert.Equal(t, 0, rec.FailedAttempts)
}

func TestDiscovererRemovesStaleURLs(t *testing.T) {
	f := newDiscoveryFixture(t)
	f.manager.AddURL(oldList, nil)
	f.clock.Advance(100 * 24 * time.Hour)

	report, err := f.discoverer().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{oldList}, report.Missing)
	assert.Equal(t, []string{oldList}, report.Removed)
	_, ok := f.manager.Record(oldList)
	assert.False(t, ok)
	assert.NotContains(t, f.failures.recorded, oldList)
}

func TestDiscovererAbortsWhenNoHomepageFetched(t *testing.T) {
	f := newDiscoveryFixture(t)
	f.manager.AddURL(oldList, nil)
	f.fetcher.pages = map[string]bool{}

	report, err := f.discoverer().Run(context.Background())
	require.ErrorIs(t, err, ErrDiscoveryIncomplete)
	assert.Equal(t, 0, report.Fetched)

	old, _ := f.manager.Record(oldList)
	assert.Equal(t, 0, old.FailedAttempts, "an empty pass must not count as missing")
	assert.Empty(t, f.failures.recorded)
}

func TestDiscovererWithoutFailureRepository(t *testing.T) {
	f := newDiscoveryFixture(t)
	f.deps.Failures = nil
	f.manager.AddURL(oldList, nil)

	report, err := f.discoverer().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{oldList}, report.Missing)
}

func TestDiscovererCancelled(t *testing.T) {
	f := newDiscoveryFixture(t)
	f.manager.AddURL(oldList, nil)
	ctx, cancel := context.WithCancel(context.Background())
	f.fetcher.cancel = cancel

	_, err := f.discoverer().Run(ctx)
	require.Error(t, err)

	old, _ := f.manager.Record(oldList)
	assert.Equal(t, 0, old.FailedAttempts)
}
