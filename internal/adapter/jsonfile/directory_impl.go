package jsonfile

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/user/announcement-crawler/internal/entity"
)

// DirectoryRepo reads the department directory produced by the directory scraper.
type DirectoryRepo struct {
	path string
}

// NewDirectoryRepo creates a new instance of DirectoryRepo.
func NewDirectoryRepo(path string) *DirectoryRepo {
	return &DirectoryRepo{path: path}
}

// Departments decodes the directory file.
func (r *DirectoryRepo) Departments() ([]entity.Department, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, err
	}
	var departments []entity.Department
	if err := json.Unmarshal(data, &departments); err != nil {
		return nil, fmt.Errorf("failed to decode directory %s: %w", r.path, err)
	}
	return departments, nil
}
