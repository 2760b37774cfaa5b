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
	"go.uber.org/zap"
)

// CrawlReport summarises one item pass.
type CrawlReport struct {
	Planned   int
	Succeeded int
	Failed    int
	Skipped   int
}

// Crawler fetches the announcement list pages selected by the URL manager
// and records the outcome of every fetch.
type Crawler struct {
	manager       *URLManager
	fetcher       repository.PageFetcher
	parser        repository.PageParser
	announcements []repository.AnnouncementRepository
	failures      repository.CrawlFailureRepository // optional
	metrics       *metrics.Metrics
	logger        *zap.Logger
	workers       int
	now           func() time.Time
}

// CrawlerDeps groups the collaborators of a Crawler.
type CrawlerDeps struct {
	Manager       *URLManager
	Fetcher       repository.PageFetcher
	Parser        repository.PageParser
	Announcements []repository.AnnouncementRepository
	Failures      repository.CrawlFailureRepository
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
}

// NewCrawler creates a Crawler that runs at most workers fetches at once.
func NewCrawler(deps CrawlerDeps, workers int) *Crawler {
	return &Crawler{
		manager:       deps.Manager,
		fetcher:       deps.Fetcher,
		parser:        deps.Parser,
		announcements: deps.Announcements,
		failures:      deps.Failures,
		metrics:       deps.Metrics,
		logger:        deps.Logger,
		workers:       workers,
		now:           time.Now,
	}
}

type crawlResult struct {
	articles []entity.Article
	err      error
	skipped  bool
}

var errNoArticles = fmt.Errorf("%w: no articles on page", repository.ErrExtractionFailed)

// Run crawls every URL of the current plan. Fetches run concurrently;
// outcomes are applied to the manager one by one on the calling goroutine.
func (c *Crawler) Run(ctx context.Context) (*CrawlReport, error) {
	plan := c.manager.GetURLsToCrawl()
	report := &CrawlReport{Planned: len(plan)}
	c.logger.Info("Starting item pass", zap.Int("planned", len(plan)))

	results := runWorkers(ctx, c.workers, plan,
		func(ctx context.Context, url string) crawlResult {
			page, err := fetchPage(ctx, c.fetcher, c.metrics, "crawl", url)
			if err != nil {
				// Aborted fetches say nothing about the URL.
				if ctx.Err() != nil {
					return crawlResult{skipped: true}
				}
				return crawlResult{err: err}
			}
			articles, err := c.parser.Articles(page)
			if err != nil {
				return crawlResult{err: err}
			}
			if len(articles) == 0 {
				return crawlResult{err: errNoArticles}
			}
			return crawlResult{articles: articles}
		},
		func(string, error) crawlResult { return crawlResult{skipped: true} },
	)

	crawledAt := c.now()
	var announcements []entity.Announcement
	for i, url := range plan {
		res := results[i]
		if res.skipped {
			report.Skipped++
			continue
		}

		success := res.err == nil
		if !c.manager.MarkCrawled(url, success) {
			continue
		}
		rec, _ := c.manager.Record(url)

		if !success {
			report.Failed++
			c.logger.Warn("Failed to crawl announcement list",
				zap.String("url", url),
				zap.Int("failed_attempts", rec.FailedAttempts),
				zap.String("error_type", repository.ErrorType(res.err)),
				zap.Error(res.err))
			c.recordFailure(ctx, url, rec, res.err)
			continue
		}

		report.Succeeded++
		c.clearFailure(ctx, url)
		announcements = append(announcements, entity.Announcement{
			Title:      rec.Metadata.String(entity.MetaTitle),
			Link:       url,
			Language:   rec.Metadata.String(entity.MetaLanguage),
			Department: rec.Metadata.String(entity.MetaDepartment),
			Articles:   res.articles,
			CrawledAt:  crawledAt,
		})
	}
	sort.Slice(announcements, func(i, j int) bool { return announcements[i].Link < announcements[j].Link })

	var saveErrs []error
	for _, repo := range c.announcements {
		if err := repo.SaveAll(ctx, announcements); err != nil {
			saveErrs = append(saveErrs, err)
		}
	}

	c.logger.Info("Item pass finished",
		zap.Int("planned", report.Planned),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped))

	if err := errors.Join(saveErrs...); err != nil {
		return report, fmt.Errorf("failed to save announcements: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("item pass interrupted: %w", err)
	}
	return report, nil
}

func (c *Crawler) recordFailure(ctx context.Context, url string, rec entity.URLRecord, cause error) {
	if c.failures == nil {
		return
	}
	reason := entity.ReasonFetchFailed
	if errors.Is(cause, errNoArticles) {
		reason = entity.ReasonNoArticles
	}
	failure := &entity.CrawlFailure{
		URL:                  url,
		Reason:               reason,
		Detail:               cause.Error(),
		HTTPStatusCode:       repository.StatusCodeOf(cause),
		FailedAttempts:       rec.FailedAttempts,
		LastAttemptTimestamp: c.now(),
	}
	if err := c.failures.Record(ctx, failure); err != nil {
		c.logger.Warn("Failed to record crawl failure", zap.String("url", url), zap.Error(err))
	}
}

func (c *Crawler) clearFailure(ctx context.Context, url string) {
	if c.failures == nil {
		return
	}
	if err := c.failures.Delete(ctx, url); err != nil {
		c.logger.Warn("Failed to clear crawl failure", zap.String("url", url), zap.Error(err))
	}
}
