package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/user/announcement-crawler/internal/entity"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	CrawlsTotal   *prometheus.CounterVec   // status: success, failure
	CrawlDuration *prometheus.HistogramVec // per domain
	DiscoveredURL *prometheus.CounterVec   // outcome: new, seen, missing, removed

	StoreURLs *prometheus.GaugeVec // state: total, active, failed, recently_crawled
}

// New registers the metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		CrawlsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawls_total",
				Help: "Total number of page fetch attempts.",
			},
			[]string{"pass", "status", "error_type"},
		),
		CrawlDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crawl_duration_seconds",
				Help:    "Duration of page fetches.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 15, 30, 60},
			},
			[]string{"domain"},
		),
		DiscoveredURL: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "discovery_urls_total",
				Help: "Announcement list URLs handled by discovery passes.",
			},
			[]string{"outcome"},
		),
		StoreURLs: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "url_store_urls",
				Help: "Number of URLs in the store by state.",
			},
			[]string{"state"},
		),
	}
}

// ObserveStatistics copies store statistics into the gauges.
func (m *Metrics) ObserveStatistics(stats entity.Statistics) {
	m.StoreURLs.WithLabelValues("total").Set(float64(stats.TotalURLs))
	m.StoreURLs.WithLabelValues("active").Set(float64(stats.ActiveURLs))
	m.StoreURLs.WithLabelValues("failed").Set(float64(stats.FailedURLs))
	m.StoreURLs.WithLabelValues("recently_crawled").Set(float64(stats.RecentlyCrawled))
}
