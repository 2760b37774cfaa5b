package entity

import "time"

// Article is one row of an announcement list page.
type Article struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Date  string `json:"date"`
}

// Announcement is the fetched content of one announcement list page.
type Announcement struct {
	Title      string    `json:"title"`
	Link       string    `json:"link"`
	Language   string    `json:"language"`
	Department string    `json:"department"`
	Articles   []Article `json:"articles"`
	CrawledAt  time.Time `json:"-"`
}

// ListPage is an announcement list page found by a discovery pass.
type ListPage struct {
	Title      string `json:"title"`
	Link       string `json:"link"`
	Language   string `json:"language"`
	Department string `json:"department"`
}

// Metadata keys written for every discovered list page.
const (
	MetaTitle      = "title"
	MetaDepartment = "department"
	MetaLanguage   = "language"
)

// Metadata returns the record metadata stored for the page.
func (p ListPage) Metadata() Metadata {
	return Metadata{
		MetaTitle:      p.Title,
		MetaDepartment: p.Department,
		MetaLanguage:   p.Language,
	}
}

// String returns the metadata value for key, or "" when absent or not a string.
func (m Metadata) String(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
