package repository

import (
	"context"

	"github.com/user/announcement-crawler/internal/entity"
)

// PageFetcher defines the contract for retrieving a web page.
type PageFetcher interface {
	// Fetch retrieves url and returns its HTML.
	Fetch(ctx context.Context, url string) (*entity.Page, error)
}

// PageParser extracts announcement data from fetched pages.
type PageParser interface {
	// MoreLinks returns the absolute targets of the "more" links of a homepage.
	MoreLinks(page *entity.Page) ([]string, error)
	// ListPage reports the title of an announcement list page and whether it lists anything.
	ListPage(page *entity.Page) (title string, hasContent bool, err error)
	// Articles returns the articles listed on an announcement list page.
	Articles(page *entity.Page) ([]entity.Article, error)
}
