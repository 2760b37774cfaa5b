package usecase

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/user/announcement-crawler/internal/entity"
	"go.uber.org/zap"
)

func TestBuildSources(t *testing.T) {
	departments := []entity.Department{
		department("資訊工程學系", "http://cs.site.nthu.edu.tw/"),
		department("外部網站", "https://www.example.com/"),
		department("", "https://noname.site.nthu.edu.tw/"),
		department("重複", "https://cs.site.nthu.edu.tw/"),
	}
	cfg := SourceConfig{
		Languages:    []string{"zh-tw", "en"},
		DomainSuffix: "site.nthu.edu.tw",
		OtherSources: []entity.Source{{Department: "清華公佈欄", Language: "en", URL: "https://bulletin.site.nthu.edu.tw/?Lang=en"}},
	}

	sources := BuildSources(departments, cfg, zap.NewNop())

	assert.Equal(t, []entity.Source{
		{Department: "清華公佈欄", Language: "en", URL: "https://bulletin.site.nthu.edu.tw/?Lang=en"},
		{Department: "資訊工程學系", Language: "en", URL: "https://cs.site.nthu.edu.tw/?Lang=en"},
		{Department: "資訊工程學系", Language: "zh-tw", URL: "https://cs.site.nthu.edu.tw/?Lang=zh-tw"},
	}, sources)
}

func TestDefaultSourceConfig(t *testing.T) {
	cfg := DefaultSourceConfig([]string{"zh-tw", "en"}, "site.nthu.edu.tw")
	assert.Len(t, cfg.OtherSources, 3)
	for _, page := range cfg.CustomListPages {
		assert.Contains(t, page.Link, "Lang="+page.Language)
	}
}

func TestRunWorkers(t *testing.T) {
	inputs := []string{"a", "b", "c", "d", "e"}
	var running, peak int32

	results := runWorkers(context.Background(), 2, inputs,
		func(_ context.Context, in string) string {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			atomic.AddInt32(&running, -1)
			return in + in
		},
		func(in string, _ error) string { return "skipped" },
	)

	assert.Equal(t, []string{"aa", "bb", "cc", "dd", "ee"}, results)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestRunWorkersCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := runWorkers(ctx, 0, []string{"a", "b"},
		func(_ context.Context, in string) string { return in },
		func(in string, err error) string { return "skipped:" + in },
	)
	assert.Equal(t, []string{"skipped:a", "skipped:b"}, results)
}
