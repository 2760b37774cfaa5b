package repository

import "github.com/user/announcement-crawler/internal/entity"

// DirectoryRepository provides the campus department directory.
type DirectoryRepository interface {
	Departments() ([]entity.Department, error)
}
