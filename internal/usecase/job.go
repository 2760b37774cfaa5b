package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/pkg/metrics"
	"go.uber.org/zap"
)

// Step is one stage of a job.
type Step string

const (
	StepDiscover Step = "discover"
	StepCrawl    Step = "crawl"
	StepCleanup  Step = "cleanup"
)

// StoreLockName names the lock guarding the URL store.
const StoreLockName = "announcement-url-store"

// JobReport collects the reports of the steps that ran.
type JobReport struct {
	Discovery *DiscoveryReport
	Crawl     *CrawlReport
	Removed   []string
}

// Job performs exactly one load, mutate and save cycle on the URL store.
type Job struct {
	manager     *URLManager
	discoverer  *Discoverer
	crawler     *Crawler
	lock        repository.LockRepository // optional
	lockTTL     time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger
	cleanupDays int
}

// JobDeps groups the collaborators of a Job. Discoverer, Crawler and Lock
// may be nil when the corresponding steps are not used.
type JobDeps struct {
	Manager    *URLManager
	Discoverer *Discoverer
	Crawler    *Crawler
	Lock       repository.LockRepository
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
}

// NewJob creates a Job.
func NewJob(deps JobDeps, lockTTL time.Duration, cleanupDays int) *Job {
	return &Job{
		manager:     deps.Manager,
		discoverer:  deps.Discoverer,
		crawler:     deps.Crawler,
		lock:        deps.Lock,
		lockTTL:     lockTTL,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		cleanupDays: cleanupDays,
	}
}

// Run executes steps in order. The store is saved even when a step fails,
// so outcomes recorded before the failure are kept.
func (j *Job) Run(ctx context.Context, steps ...Step) (*JobReport, error) {
	if j.lock != nil {
		release, err := j.lock.Acquire(ctx, StoreLockName, j.lockTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire store lock: %w", err)
		}
		defer func() {
			// The job context may already be cancelled.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if rerr := release(releaseCtx); rerr != nil {
				j.logger.Warn("Failed to release store lock", zap.Error(rerr))
			}
		}()
	}

	if err := j.manager.Load(); err != nil {
		return nil, err
	}

	report := &JobReport{}
	var stepErr error
	for _, step := range steps {
		if stepErr = j.runStep(ctx, step, report); stepErr != nil {
			j.logger.Error("Job step failed", zap.String("step", string(step)), zap.Error(stepErr))
			break
		}
	}

	saveErr := j.manager.Save()
	stats := j.manager.GetStatistics()
	j.metrics.ObserveStatistics(stats)
	j.logger.Info("Job finished",
		zap.Int("total_urls", stats.TotalURLs),
		zap.Int("active_urls", stats.ActiveURLs),
		zap.Int("failed_urls", stats.FailedURLs),
		zap.Int("recently_crawled", stats.RecentlyCrawled))

	return report, errors.Join(stepErr, saveErr)
}

func (j *Job) runStep(ctx context.Context, step Step, report *JobReport) error {
	switch step {
	case StepDiscover:
		if j.discoverer == nil {
			return fmt.Errorf("step %q is not configured", step)
		}
		r, err := j.discoverer.Run(ctx)
		report.Discovery = r
		return err
	case StepCrawl:
		if j.crawler == nil {
			return fmt.Errorf("step %q is not configured", step)
		}
		r, err := j.crawler.Run(ctx)
		report.Crawl = r
		return err
	case StepCleanup:
		report.Removed = append(report.Removed, j.manager.CleanupOldURLs(j.cleanupDays)...)
		return nil
	}
	return fmt.Errorf("unknown step %q", step)
}
