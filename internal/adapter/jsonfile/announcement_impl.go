package jsonfile

import (
	"context"
	"sort"

	"github.com/user/announcement-crawler/internal/entity"
)

// AnnouncementRepo writes the announcements of an item pass to one JSON file.
type AnnouncementRepo struct {
	path string
}

// NewAnnouncementRepo creates a new instance of AnnouncementRepo.
func NewAnnouncementRepo(path string) *AnnouncementRepo {
	return &AnnouncementRepo{path: path}
}

// SaveAll replaces the file with announcements sorted by link.
func (r *AnnouncementRepo) SaveAll(_ context.Context, announcements []entity.Announcement) error {
	sorted := make([]entity.Announcement, len(announcements))
	copy(sorted, announcements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Link < sorted[j].Link })
	for i := range sorted {
		if sorted[i].Articles == nil {
			sorted[i].Articles = []entity.Article{}
		}
	}

	data, err := encode(sorted)
	if err != nil {
		return err
	}
	return writeAtomic(r.path, data)
}
