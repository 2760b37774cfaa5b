package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/redis/go-redis/v9"
	"github.com/user/announcement-crawler/internal/adapter/chromedp_crawler"
	"github.com/user/announcement-crawler/internal/adapter/htmlextract"
	"github.com/user/announcement-crawler/internal/adapter/jsonfile"
	"github.com/user/announcement-crawler/internal/adapter/postgres"
	redis_adapter "github.com/user/announcement-crawler/internal/adapter/redis"
	"github.com/user/announcement-crawler/internal/adapter/resty_fetcher"
	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/internal/usecase"
	"github.com/user/announcement-crawler/pkg/metrics"
	"github.com/user/announcement-crawler/pkg/useragent"
	"go.uber.org/zap"
)

// app holds everything one job invocation needs.
type app struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	job      *usecase.Job
	closers  []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func newApp(ctx context.Context) (*app, error) {
	a := &app{registry: prometheus.NewRegistry()}
	a.metrics = metrics.New(a.registry)

	manager := usecase.NewURLManager(jsonfile.NewURLRecordRepo(cfg.URLListPath), log)

	// --- Optional PostgreSQL sinks ---
	announcementRepos := []repository.AnnouncementRepository{jsonfile.NewAnnouncementRepo(cfg.AnnouncementsPath)}
	var failures repository.CrawlFailureRepository
	if cfg.PostgresURL != "" {
		dbpool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		a.closers = append(a.closers, dbpool.Close)
		if err := postgres.EnsureSchema(ctx, dbpool); err != nil {
			a.Close()
			return nil, fmt.Errorf("unable to prepare database schema: %w", err)
		}
		announcementRepos = append(announcementRepos, postgres.NewAnnouncementRepo(dbpool))
		failures = postgres.NewCrawlFailureRepo(dbpool)
		log.Info("PostgreSQL connection pool established")
	}

	// --- Optional Redis lock ---
	var lock repository.LockRepository
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			a.Close()
			return nil, fmt.Errorf("unable to connect to redis: %w", err)
		}
		lock = redis_adapter.NewLockRepo(rdb)
		log.Info("Redis connection established")
	}

	// --- Fetchers ---
	agents := useragent.NewManager(cfg.Proxies())
	listFetcher := resty_fetcher.NewFetcher(agents, cfg.Proxies(), cfg.PageTimeout())
	var homeFetcher repository.PageFetcher = listFetcher
	if cfg.UseBrowser {
		browser := chromedp_crawler.NewChromedpCrawler(cfg.CrawlWorkers, cfg.PageTimeout(), agents, log)
		a.closers = append(a.closers, browser.Close)
		homeFetcher = browser
	}
	parser := htmlextract.New()

	discoverer := usecase.NewDiscoverer(usecase.DiscovererDeps{
		Manager:     manager,
		Directory:   jsonfile.NewDirectoryRepo(cfg.DirectoryPath),
		HomeFetcher: homeFetcher,
		ListFetcher: listFetcher,
		Parser:      parser,
		Failures:    failures,
		Metrics:     a.metrics,
		Logger:      log,
	}, usecase.DefaultSourceConfig(cfg.Languages, cfg.RpageDomainSuffix), cfg.CrawlWorkers, cfg.CleanupDays)

	crawler := usecase.NewCrawler(usecase.CrawlerDeps{
		Manager:       manager,
		Fetcher:       listFetcher,
		Parser:        parser,
		Announcements: announcementRepos,
		Failures:      failures,
		Metrics:       a.metrics,
		Logger:        log,
	}, cfg.CrawlWorkers)

	a.job = usecase.NewJob(usecase.JobDeps{
		Manager:    manager,
		Discoverer: discoverer,
		Crawler:    crawler,
		Lock:       lock,
		Metrics:    a.metrics,
		Logger:     log,
	}, cfg.LockTimeout(), cfg.CleanupDays)
	return a, nil
}

// pushMetrics sends the job metrics to the Pushgateway, when configured.
func (a *app) pushMetrics(job string) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := push.New(cfg.PushgatewayURL, job).Gatherer(a.registry).Push(); err != nil {
		log.Warn("Failed to push metrics", zap.String("pushgateway", cfg.PushgatewayURL), zap.Error(err))
	}
}

// runJob wires the application and runs steps as one job.
func runJob(ctx context.Context, name string, steps ...usecase.Step) (*usecase.JobReport, error) {
	a, err := newApp(ctx)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	report, err := a.job.Run(ctx, steps...)
	a.pushMetrics("announcement_crawler_" + name)
	return report, err
}
