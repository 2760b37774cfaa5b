package usecase

import (
	"sort"

	"github.com/user/announcement-crawler/internal/entity"
	"github.com/user/announcement-crawler/pkg/utils"
	"go.uber.org/zap"
)

// SourceConfig describes where discovery starts. It is passed explicitly to
// the discovery use case.
type SourceConfig struct {
	Languages    []string
	DomainSuffix string
	// OtherSources are homepages not listed in the directory.
	OtherSources []entity.Source
	// CustomListPages are list pages that are always considered discovered.
	CustomListPages []entity.ListPage
}

// DefaultSourceConfig returns the campus-wide sources that the directory
// does not cover.
func DefaultSourceConfig(languages []string, domainSuffix string) SourceConfig {
	return SourceConfig{
		Languages:    languages,
		DomainSuffix: domainSuffix,
		OtherSources: []entity.Source{
			{Department: "清華公佈欄", Language: "zh-tw", URL: "https://bulletin.site.nthu.edu.tw/?Lang=zh-tw"},
			{Department: "清華公佈欄", Language: "en", URL: "https://bulletin.site.nthu.edu.tw/?Lang=en"},
			{Department: "國立清華大學學生會", Language: "zh-tw", URL: "https://nthusa.site.nthu.edu.tw/?Lang=zh-tw"},
		},
		CustomListPages: []entity.ListPage{
			{
				Title:      "校園公車暨巡迴公車公告",
				Link:       "https://affairs.site.nthu.edu.tw/p/403-1165-1065-1.php?Lang=zh-tw",
				Language:   "zh-tw",
				Department: "總務處事務組",
			},
			{
				Title:      "校園公車暨巡迴公車公告",
				Link:       "https://affairs.site.nthu.edu.tw/p/403-1165-1065-1.php?Lang=en",
				Language:   "en",
				Department: "總務處事務組",
			},
		},
	}
}

// BuildSources turns directory entries into one homepage per language and
// appends cfg.OtherSources. Departments without a website on the Rpage
// domain are skipped.
func BuildSources(departments []entity.Department, cfg SourceConfig, logger *zap.Logger) []entity.Source {
	seen := make(map[string]struct{})
	var sources []entity.Source
	add := func(src entity.Source) {
		if _, ok := seen[src.URL]; ok {
			return
		}
		seen[src.URL] = struct{}{}
		sources = append(sources, src)
	}

	for _, dept := range departments {
		website := dept.Details.Contact.Website
		if dept.Name == "" || website == "" {
			continue
		}
		if !utils.HasDomainSuffix(utils.ForceHTTPS(website), cfg.DomainSuffix) {
			continue
		}
		urls, err := utils.MultiLangURLs(website, cfg.Languages)
		if err != nil {
			logger.Debug("Skipping department with unparsable website", zap.String("department", dept.FullName()), zap.Error(err))
			continue
		}
		for lang, u := range urls {
			add(entity.Source{Department: dept.FullName(), Language: lang, URL: u})
		}
	}
	for _, src := range cfg.OtherSources {
		add(src)
	}

	sort.Slice(sources, func(i, j int) bool {
		a, b := sources[i], sources[j]
		if a.Department != b.Department {
			return a.Department < b.Department
		}
		if a.Language != b.Language {
			return a.Language < b.Language
		}
		return a.URL < b.URL
	})
	return sources
}
