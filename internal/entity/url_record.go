package entity

const (
	// MaxFailedAttempts is the failure count at which a record stops being
	// selected for crawling. The record itself is kept.
	MaxFailedAttempts = 5
	// DefaultCleanupDays is how long a record may go unseen by discovery
	// before cleanup removes it.
	DefaultCleanupDays = 90
)

// Metadata holds caller-supplied attributes of a URL (department, title,
// language). The engine passes it through untouched.
type Metadata map[string]any

// URLRecord is the persisted crawl state of one announcement-list URL.
// Timestamps are kept as the strings found on disk so that a malformed value
// never prevents the rest of the store from loading.
type URLRecord struct {
	FailedAttempts int      `json:"failed_attempts"`
	FirstSeen      string   `json:"first_seen"`
	LastCrawled    *string  `json:"last_crawled"`
	LastSeen       string   `json:"last_seen"`
	Metadata       Metadata `json:"metadata"`
}

// URLStore mirrors the JSON document holding every known URL.
type URLStore struct {
	LastUpdated string                `json:"last_updated"`
	URLCount    int                   `json:"url_count"`
	URLs        map[string]*URLRecord `json:"urls"`
	// Skipped lists the URLs whose records could not be read at all.
	Skipped []string `json:"-"`
}

// Statistics summarises the store for monitoring.
type Statistics struct {
	TotalURLs       int `json:"total_urls"`
	ActiveURLs      int `json:"active_urls"`
	FailedURLs      int `json:"failed_urls"`
	RecentlyCrawled int `json:"recently_crawled"`
}
