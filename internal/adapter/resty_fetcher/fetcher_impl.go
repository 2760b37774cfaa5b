package resty_fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/pkg/useragent"
)

const maxRedirects = 5

// Fetcher retrieves pages over plain HTTP. Announcement list pages are
// server-rendered, so no browser is needed for them.
type Fetcher struct {
	agents  *useragent.Manager
	direct  *resty.Client
	proxied map[string]*resty.Client
}

// NewFetcher creates a fetcher with one client per configured proxy.
func NewFetcher(agents *useragent.Manager, proxies []string, timeout time.Duration) *Fetcher {
	f := &Fetcher{
		agents:  agents,
		direct:  newClient(agents, timeout),
		proxied: make(map[string]*resty.Client, len(proxies)),
	}
	for _, p := range proxies {
		f.proxied[p] = newClient(agents, timeout).SetProxy(p)
	}
	return f
}

func newClient(agents *useragent.Manager, timeout time.Duration) *resty.Client {
	return resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetHeader("User-Agent", agents.UserAgent()).
		SetHeader("Accept", "text/html,application/xhtml+xml")
}

func (f *Fetcher) client() *resty.Client {
	if c, ok := f.proxied[f.agents.Proxy()]; ok {
		return c
	}
	return f.direct
}

// Fetch retrieves url and returns its body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	resp, err := f.client().R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, classify(err))
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch %s: %w", url, repository.NewHTTPStatusError(resp.StatusCode()))
	}

	finalURL := url
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}
	return &entity.Page{
		URL:            finalURL,
		HTML:           resp.String(),
		HTTPStatusCode: resp.StatusCode(),
		ResponseTimeMS: int(resp.Time().Milliseconds()),
	}, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", repository.ErrCrawlTimeout, err)
	}
	return fmt.Errorf("%w: %v", repository.ErrNavigationFailed, err)
}
