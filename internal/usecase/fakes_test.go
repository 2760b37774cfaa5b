package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/pkg/metrics"
)

// fakeFetcher serves pages from memory. Unknown URLs answer 404.
type fakeFetcher struct {
	mu     sync.Mutex
	errs   map[string]error
	calls  []string
	pages  map[string]bool
	cancel context.CancelFunc // called on the first fetch when set
}

func newFakeFetcher(urls ...string) *fakeFetcher {
	f := &fakeFetcher{errs: map[string]error{}, pages: map[string]bool{}}
	for _, u := range urls {
		f.pages[u] = true
	}
	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	cancel := f.cancel
	f.cancel = nil
	err, failing := f.errs[url]
	known := f.pages[url]
	f.mu.Unlock()

	if cancel != nil {
		cancel()
		return nil, fmt.Errorf("fetch %s: %w", url, ctx.Err())
	}
	if failing {
		return nil, err
	}
	if !known {
		return nil, fmt.Errorf("fetch %s: %w", url, repository.NewHTTPStatusError(404))
	}
	return &entity.Page{URL: url, HTML: "<html></html>", HTTPStatusCode: 200}, nil
}

func (f *fakeFetcher) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeParser answers from maps keyed by page URL.
type fakeParser struct {
	more     map[string][]string
	titles   map[string]string
	articles map[string][]entity.Article
}

func newFakeParser() *fakeParser {
	return &fakeParser{
		more:     map[string][]string{},
		titles:   map[string]string{},
		articles: map[string][]entity.Article{},
	}
}

func (p *fakeParser) MoreLinks(page *entity.Page) ([]string, error) {
	return p.more[page.URL], nil
}

func (p *fakeParser) ListPage(page *entity.Page) (string, bool, error) {
	title, ok := p.titles[page.URL]
	return title, ok, nil
}

func (p *fakeParser) Articles(page *entity.Page) ([]entity.Article, error) {
	return p.articles[page.URL], nil
}

type fakeDirectory struct {
	departments []entity.Department
	err         error
}

func (d *fakeDirectory) Departments() ([]entity.Department, error) {
	return d.departments, d.err
}

func department(name, website string) entity.Department {
	var d entity.Department
	d.Name = name
	d.Details.Contact.Website = website
	return d
}

type fakeFailures struct {
	mu       sync.Mutex
	recorded map[string]*entity.CrawlFailure
	deleted  []string
}

func newFakeFailures() *fakeFailures {
	return &fakeFailures{recorded: map[string]*entity.CrawlFailure{}}
}

func (f *fakeFailures) Record(_ context.Context, failure *entity.CrawlFailure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded[failure.URL] = failure
	return nil
}

func (f *fakeFailures) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.recorded, url)
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeFailures) DeleteMany(ctx context.Context, urls []string) error {
	for _, u := range urls {
		_ = f.Delete(ctx, u)
	}
	return nil
}

type fakeAnnouncements struct {
	saved []entity.Announcement
	calls int
	err   error
}

func (a *fakeAnnouncements) SaveAll(_ context.Context, announcements []entity.Announcement) error {
	a.calls++
	if a.err != nil {
		return a.err
	}
	a.saved = announcements
	return nil
}

type fakeLock struct {
	err      error
	acquired int
	released int
}

func (l *fakeLock) Acquire(context.Context, string, time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}
