package chromedp_crawler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/pkg/useragent"
	"go.uber.org/zap"
)

// ChromedpCrawler renders pages in headless Chrome. Department homepages
// load their announcement tabs with JavaScript.
type ChromedpCrawler struct {
	allocatorPool *sync.Pool
	cancels       []context.CancelFunc
	mu            sync.Mutex
	timeout       time.Duration
	logger        *zap.Logger
}

// NewChromedpCrawler creates a new fetcher implementation using chromedp.
func NewChromedpCrawler(maxConcurrency int, pageLoadTimeout time.Duration, agents *useragent.Manager, logger *zap.Logger) *ChromedpCrawler {
	c := &ChromedpCrawler{
		timeout: pageLoadTimeout,
		logger:  logger,
	}
	c.allocatorPool = &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", true),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.UserAgent(agents.UserAgent()),
			)
			if proxy := agents.Proxy(); proxy != "" {
				opts = append(opts, chromedp.ProxyServer(proxy))
			}
			allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
			c.mu.Lock()
			c.cancels = append(c.cancels, cancel)
			c.mu.Unlock()
			return allocCtx
		},
	}

	// Pre-warm the pool
	for i := 0; i < maxConcurrency; i++ {
		allocCtx := c.allocatorPool.Get().(context.Context)
		c.allocatorPool.Put(allocCtx)
	}
	return c
}

// Close shuts down every browser started by the pool.
func (c *ChromedpCrawler) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
}

// Fetch renders url and returns the resulting DOM.
func (c *ChromedpCrawler) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	// Get an allocator context from the pool
	allocCtx := c.allocatorPool.Get().(context.Context)
	defer c.allocatorPool.Put(allocCtx)

	// Create a new browser context from the allocator
	taskCtx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancel()

	// Create a timeout for the entire crawl task
	taskCtx, cancelTimeout := context.WithTimeout(taskCtx, c.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	// The status of the main document arrives as a network event.
	var (
		statusMu   sync.Mutex
		statusCode int
		finalURL   = url
	)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		statusMu.Lock()
		defer statusMu.Unlock()
		if statusCode == 0 {
			statusCode = int(resp.Response.Status)
			finalURL = resp.Response.URL
		}
	})

	var html string
	startTime := time.Now()
	err := chromedp.Run(taskCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	responseTime := time.Since(startTime).Milliseconds()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(taskCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("render %s: %w: %v", url, repository.ErrCrawlTimeout, err)
		}
		return nil, fmt.Errorf("render %s: %w: %v", url, repository.ErrNavigationFailed, err)
	}

	statusMu.Lock()
	defer statusMu.Unlock()
	if statusCode >= 400 {
		return nil, fmt.Errorf("render %s: %w", url, repository.NewHTTPStatusError(statusCode))
	}

	c.logger.Debug("Rendered page", zap.String("url", url), zap.Int64("duration_ms", responseTime))
	return &entity.Page{
		URL:            finalURL,
		HTML:           html,
		HTTPStatusCode: statusCode,
		ResponseTimeMS: int(responseTime),
	}, nil
}
