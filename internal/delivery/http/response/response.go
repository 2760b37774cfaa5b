package response

import "github.com/user/announcement-crawler/internal/entity"

// StatisticsResponse is the DTO of GET /api/statistics.
type StatisticsResponse struct {
	TotalURLs       int `json:"total_urls"`
	ActiveURLs      int `json:"active_urls"`
	FailedURLs      int `json:"failed_urls"`
	RecentlyCrawled int `json:"recently_crawled"`
}

// URLListResponse is the DTO of GET /api/urls.
type URLListResponse struct {
	Count int      `json:"count"`
	URLs  []string `json:"urls"`
}

// URLStatusResponse is a DTO for a URL record, mirroring entity.RecordStatus
type URLStatusResponse struct {
	URL            string          `json:"url"`
	CurrentStatus  string          `json:"current_status"` // "active", "quarantined"
	FirstSeen      string          `json:"first_seen"`
	LastSeen       string          `json:"last_seen"`
	LastCrawled    *string         `json:"last_crawled"`
	FailedAttempts int             `json:"failed_attempts"`
	Metadata       entity.Metadata `json:"metadata"`
	FailureReason  string          `json:"failure_reason,omitempty"`
}

// NewStatisticsResponse converts store statistics.
func NewStatisticsResponse(s entity.Statistics) StatisticsResponse {
	return StatisticsResponse{
		TotalURLs:       s.TotalURLs,
		ActiveURLs:      s.ActiveURLs,
		FailedURLs:      s.FailedURLs,
		RecentlyCrawled: s.RecentlyCrawled,
	}
}

// NewURLStatusResponse converts a record status.
func NewURLStatusResponse(s *entity.RecordStatus) URLStatusResponse {
	return URLStatusResponse{
		URL:            s.URL,
		CurrentStatus:  s.CurrentStatus,
		FirstSeen:      s.FirstSeen,
		LastSeen:       s.LastSeen,
		LastCrawled:    s.LastCrawled,
		FailedAttempts: s.FailedAttempts,
		Metadata:       s.Metadata,
		FailureReason:  s.FailureReason,
	}
}
