package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/pkg/metrics"
	"github.com/user/announcement-crawler/pkg/utils"
	"go.uber.org/zap"
)

// ErrDiscoveryIncomplete is returned when no source homepage could be
// fetched. Reconciling such a pass would count every known URL as missing.
var ErrDiscoveryIncomplete = errors.New("discovery pass fetched no source homepage")

// DiscoveryReport summarises one discovery pass.
type DiscoveryReport struct {
	Sources    int
	Fetched    int
	Candidates int
	Discovered int
	New        int
	Missing    []string
	Removed    []string
}

// Discoverer walks department homepages for announcement list pages and
// reconciles what it finds with the URL store.
type Discoverer struct {
	manager     *URLManager
	directory   repository.DirectoryRepository
	homeFetcher repository.PageFetcher
	listFetcher repository.PageFetcher
	parser      repository.PageParser
	failures    repository.CrawlFailureRepository // optional
	metrics     *metrics.Metrics
	logger      *zap.Logger
	sources     SourceConfig
	workers     int
	cleanupDays int
	now         func() time.Time
}

// DiscovererDeps groups the collaborators of a Discoverer.
type DiscovererDeps struct {
	Manager     *URLManager
	Directory   repository.DirectoryRepository
	HomeFetcher repository.PageFetcher
	ListFetcher repository.PageFetcher
	Parser      repository.PageParser
	Failures    repository.CrawlFailureRepository
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// NewDiscoverer creates a Discoverer. deps.Failures may be nil.
func NewDiscoverer(deps DiscovererDeps, sources SourceConfig, workers, cleanupDays int) *Discoverer {
	return &Discoverer{
		manager:     deps.Manager,
		directory:   deps.Directory,
		homeFetcher: deps.HomeFetcher,
		listFetcher: deps.ListFetcher,
		parser:      deps.Parser,
		failures:    deps.Failures,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		sources:     sources,
		workers:     workers,
		cleanupDays: cleanupDays,
		now:         time.Now,
	}
}

type candidate struct {
	url        string
	department string
	language   string
}

type homeResult struct {
	source entity.Source
	links  []string
	err    error
}

type listResult struct {
	page entity.ListPage
	ok   bool
	err  error
}

// Run performs a full discovery pass. Fetching is concurrent; every store
// mutation happens afterwards on the calling goroutine.
func (d *Discoverer) Run(ctx context.Context) (*DiscoveryReport, error) {
	sources := BuildSources(d.departments(), d.sources, d.logger)
	report := &DiscoveryReport{Sources: len(sources)}
	d.logger.Info("Starting discovery pass", zap.Int("sources", len(sources)))

	homes := d.fetchHomepages(ctx, sources)
	candidates := d.collectCandidates(homes, report)
	if report.Fetched == 0 && len(sources) > 0 {
		return report, ErrDiscoveryIncomplete
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("discovery interrupted: %w", err)
	}

	pages := d.fetchListPages(ctx, candidates)
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("discovery interrupted: %w", err)
	}
	pages = append(pages, d.sources.CustomListPages...)
	sort.Slice(pages, func(i, j int) bool { return pages[i].Link < pages[j].Link })

	discovered := make(map[string]struct{}, len(pages))
	for _, page := range pages {
		if _, dup := discovered[page.Link]; dup {
			continue
		}
		discovered[page.Link] = struct{}{}
		if _, known := d.manager.Record(page.Link); known {
			d.metrics.DiscoveredURL.WithLabelValues("seen").Inc()
		} else {
			report.New++
			d.metrics.DiscoveredURL.WithLabelValues("new").Inc()
			d.logger.Info("Discovered new announcement list",
				zap.String("url", page.Link),
				zap.String("department", page.Department),
				zap.String("title", page.Title))
		}
		d.manager.AddURL(page.Link, page.Metadata())
	}
	report.Discovered = len(discovered)

	report.Missing = d.manager.UpdateFromFullCrawl(discovered)
	d.metrics.DiscoveredURL.WithLabelValues("missing").Add(float64(len(report.Missing)))
	for _, url := range report.Missing {
		d.recordMissing(ctx, url)
	}

	report.Removed = d.manager.CleanupOldURLs(d.cleanupDays)
	d.metrics.DiscoveredURL.WithLabelValues("removed").Add(float64(len(report.Removed)))
	if d.failures != nil && len(report.Removed) > 0 {
		if err := d.failures.DeleteMany(ctx, report.Removed); err != nil {
			d.logger.Warn("Failed to delete failure records of removed URLs", zap.Error(err))
		}
	}

	d.logger.Info("Discovery pass finished",
		zap.Int("sources", report.Sources),
		zap.Int("fetched", report.Fetched),
		zap.Int("candidates", report.Candidates),
		zap.Int("discovered", report.Discovered),
		zap.Int("new", report.New),
		zap.Int("missing", len(report.Missing)),
		zap.Int("removed", len(report.Removed)))
	return report, nil
}

func (d *Discoverer) departments() []entity.Department {
	if d.directory == nil {
		return nil
	}
	departments, err := d.directory.Departments()
	if err != nil {
		d.logger.Warn("Failed to load department directory, using built-in sources only", zap.Error(err))
		return nil
	}
	return departments
}

func (d *Discoverer) fetchHomepages(ctx context.Context, sources []entity.Source) []homeResult {
	urls := make([]string, len(sources))
	bySource := make(map[string]entity.Source, len(sources))
	for i, src := range sources {
		urls[i] = src.URL
		bySource[src.URL] = src
	}

	return runWorkers(ctx, d.workers, urls,
		func(ctx context.Context, url string) homeResult {
			res := homeResult{source: bySource[url]}
			page, err := fetchPage(ctx, d.homeFetcher, d.metrics, "discovery", url)
			if err != nil {
				res.err = err
				return res
			}
			res.links, res.err = d.parser.MoreLinks(page)
			return res
		},
		func(url string, err error) homeResult {
			return homeResult{source: bySource[url], err: err}
		},
	)
}

// collectCandidates normalises "more" links and drops duplicates and
// off-domain targets.
func (d *Discoverer) collectCandidates(homes []homeResult, report *DiscoveryReport) []candidate {
	requested := make(map[string]struct{})
	for _, home := range homes {
		requested[home.source.URL] = struct{}{}
	}

	var candidates []candidate
	for _, home := range homes {
		if home.err != nil {
			d.logger.Warn("Failed to fetch source homepage",
				zap.String("url", home.source.URL),
				zap.String("department", home.source.Department),
				zap.String("error_type", repository.ErrorType(home.err)),
				zap.Error(home.err))
			continue
		}
		report.Fetched++

		for _, link := range home.links {
			normalized, err := utils.SetQueryParam(link, utils.LanguageQueryParam, home.source.Language)
			if err != nil || !utils.HasDomainSuffix(normalized, d.sources.DomainSuffix) {
				continue
			}
			if _, dup := requested[normalized]; dup {
				continue
			}
			requested[normalized] = struct{}{}
			candidates = append(candidates, candidate{
				url:        normalized,
				department: home.source.Department,
				language:   home.source.Language,
			})
		}
	}
	report.Candidates = len(candidates)
	return candidates
}

func (d *Discoverer) fetchListPages(ctx context.Context, candidates []candidate) []entity.ListPage {
	urls := make([]string, len(candidates))
	byURL := make(map[string]candidate, len(candidates))
	for i, c := range candidates {
		urls[i] = c.url
		byURL[c.url] = c
	}

	results := runWorkers(ctx, d.workers, urls,
		func(ctx context.Context, url string) listResult {
			page, err := fetchPage(ctx, d.listFetcher, d.metrics, "discovery", url)
			if err != nil {
				return listResult{err: err}
			}
			title, ok, err := d.parser.ListPage(page)
			if err != nil {
				return listResult{err: err}
			}
			c := byURL[url]
			return listResult{
				page: entity.ListPage{Title: title, Link: url, Language: c.language, Department: c.department},
				ok:   ok,
			}
		},
		func(url string, err error) listResult { return listResult{err: err} },
	)

	var pages []entity.ListPage
	for i, res := range results {
		switch {
		case res.err != nil:
			d.logger.Warn("Failed to fetch announcement list", zap.String("url", urls[i]), zap.Error(res.err))
		case !res.ok:
			d.logger.Warn("Announcement list page has no content", zap.String("url", urls[i]))
		default:
			pages = append(pages, res.page)
		}
	}
	return pages
}

func (d *Discoverer) recordMissing(ctx context.Context, url string) {
	rec, _ := d.manager.Record(url)
	d.logger.Debug("Known announcement list not rediscovered",
		zap.String("url", url), zap.Int("failed_attempts", rec.FailedAttempts))
	if d.failures == nil {
		return
	}
	failure := &entity.CrawlFailure{
		URL:                  url,
		Reason:               entity.ReasonMissingFromDiscovery,
		FailedAttempts:       rec.FailedAttempts,
		LastAttemptTimestamp: d.now(),
	}
	if err := d.failures.Record(ctx, failure); err != nil {
		d.logger.Warn("Failed to record crawl failure", zap.String("url", url), zap.Error(err))
	}
}

// fetchPage fetches url and records the attempt in the crawl metrics.
func fetchPage(ctx context.Context, fetcher repository.PageFetcher, m *metrics.Metrics, pass, url string) (*entity.Page, error) {
	start := time.Now()
	page, err := fetcher.Fetch(ctx, url)
	m.CrawlDuration.WithLabelValues(utils.Hostname(url)).Observe(time.Since(start).Seconds())
	if err != nil {
		m.CrawlsTotal.WithLabelValues(pass, "failure", repository.ErrorType(err)).Inc()
		return nil, err
	}
	m.CrawlsTotal.WithLabelValues(pass, "success", "").Inc()
	return page, nil
}
