package repository

import (
	"context"

	"github.com/user/announcement-crawler/internal/entity"
)

// AnnouncementRepository stores the results of an item pass.
type AnnouncementRepository interface {
	// SaveAll stores announcements. Implementations may replace earlier results.
	SaveAll(ctx context.Context, announcements []entity.Announcement) error
}
