package repository

import "github.com/user/announcement-crawler/internal/entity"

// URLRecordRepository persists the whole URL store as one document.
type URLRecordRepository interface {
	// Load reads the store. It returns ErrStoreNotFound on a cold start and
	// an error wrapping ErrStoreCorrupt when the document cannot be decoded.
	Load() (*entity.URLStore, error)
	// Save replaces the stored document.
	Save(store *entity.URLStore) error
}
