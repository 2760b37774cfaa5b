package htmlextract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/pkg/utils"
	"golang.org/x/net/html"
)

// Selectors of the Rpage site template.
const (
	moreLinkSelector   = "p.more a"
	listTitleSelector  = "[class*='title']"
	listRowsSelector   = "#pageptlist .row.listBS, #pageptlist tr"
	listContainer      = "#pageptlist"
	articleRowSelector = ".row.listBS"
	articleLinkSel     = ".mtitle a"
)

// Extractor parses Rpage announcement pages with goquery.
type Extractor struct{}

// New returns an Extractor.
func New() *Extractor {
	return &Extractor{}
}

func parse(page *entity.Page) (*goquery.Document, *url.URL, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", repository.ErrExtractionFailed, err)
	}
	base, err := url.Parse(page.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: bad page url %q: %v", repository.ErrExtractionFailed, page.URL, err)
	}
	return doc, base, nil
}

// MoreLinks returns the absolute targets of the "more" links on a homepage.
func (e *Extractor) MoreLinks(page *entity.Page) ([]string, error) {
	doc, base, err := parse(page)
	if err != nil {
		return nil, err
	}

	var links []string
	doc.Find(moreLinkSelector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		abs, err := utils.ToAbsoluteURL(base, href)
		if err != nil {
			return
		}
		links = append(links, abs)
	})
	return links, nil
}

// ListPage returns the title of an announcement list page and whether it
// lists any rows.
func (e *Extractor) ListPage(page *entity.Page) (string, bool, error) {
	doc, _, err := parse(page)
	if err != nil {
		return "", false, err
	}

	var title string
	doc.Find(listTitleSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		title = ownText(s)
		return title == ""
	})
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	return title, doc.Find(listRowsSelector).Length() > 0, nil
}

// Articles returns the rows of an announcement list page. Rows without a
// titled link are skipped.
func (e *Extractor) Articles(page *entity.Page) ([]entity.Article, error) {
	doc, base, err := parse(page)
	if err != nil {
		return nil, err
	}

	container := doc.Find(listContainer)
	rows := container.Find(articleRowSelector)
	if rows.Length() == 0 {
		rows = container.Find("tr")
	}

	articles := []entity.Article{}
	rows.Each(func(i int, row *goquery.Selection) {
		link := row.Find(articleLinkSel).First()
		if link.Length() == 0 {
			return
		}
		title := strings.ReplaceAll(strings.TrimSpace(link.Text()), `"`, "")
		if title == "" {
			return
		}

		article := entity.Article{Title: title}
		if href, ok := link.Attr("href"); ok && strings.TrimSpace(href) != "" {
			if abs, err := utils.ToAbsoluteURL(base, href); err == nil {
				article.Link = abs
			}
		}
		article.Date = ownText(row.Find(".mdate").First())
		if article.Date == "" {
			article.Date = ownText(row.Find(".d-txt").First())
		}
		articles = append(articles, article)
	})
	return articles, nil
}

// ownText returns the trimmed text of the first non-blank text node directly
// under the selection.
func ownText(s *goquery.Selection) string {
	var text string
	s.Contents().EachWithBreak(func(i int, c *goquery.Selection) bool {
		if n := c.Get(0); n.Type == html.TextNode {
			text = strings.TrimSpace(n.Data)
		}
		return text == ""
	})
	return text
}
