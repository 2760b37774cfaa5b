package htmlextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/announcement-crawler/internal/entity"
)

const homepage = `<html><head><title>Registrar</title></head><body>
<div class="tab-pane">
  <p class="more"><a href="/p/403-1001-1-1.php?Lang=zh-tw">more</a></p>
  <p class="more"><a href="https://other.site.nthu.edu.tw/p/403-2.php">more</a></p>
  <p class="more"><a href="">more</a></p>
  <p><a href="/p/not-more.php">other</a></p>
</div></body></html>`

const listPage = `<html><head><title> Fallback Title </title></head><body>
<div class="module-title">
  <h2 class="page-title">
    最新消息
  </h2>
</div>
<div id="pageptlist">
  <div class="row listBS">
    <div class="mtitle"><a href="/p/406-1001-1.php">  "Course" selection opens </a></div>
    <div class="mdate"> 2025-02-20 </div>
  </div>
  <div class="row listBS">
    <div class="mtitle"><a href="https://abs.site.nthu.edu.tw/x.php">Scholarship</a></div>
    <span class="d-txt">2025-02-18</span>
  </div>
  <div class="row listBS"><div class="mtitle">no link</div></div>
  <div class="row listBS"><div class="mtitle"><a href="/p/empty.php">   </a></div></div>
</div></body></html>`

const tableListPage = `<html><head><title>Table News</title></head><body>
<table id="pageptlist">
  <tr><td class="mdate">2025-01-05</td><td class="mtitle"><a href="t1.php">Row one</a></td></tr>
  <tr><th>header</th></tr>
</table></body></html>`

const emptyListPage = `<html><head><title>Empty</title></head><body><div id="pageptlist"></div></body></html>`

func TestMoreLinks(t *testing.T) {
	links, err := New().MoreLinks(&entity.Page{URL: "https://registrar.site.nthu.edu.tw/?Lang=zh-tw", HTML: homepage})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://registrar.site.nthu.edu.tw/p/403-1001-1-1.php?Lang=zh-tw",
		"https://other.site.nthu.edu.tw/p/403-2.php",
	}, links)
}

func TestListPage(t *testing.T) {
	e := New()

	title, ok, err := e.ListPage(&entity.Page{URL: "https://a.site.nthu.edu.tw/p/403-1.php", HTML: listPage})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "最新消息", title)

	title, ok, err = e.ListPage(&entity.Page{URL: "https://a.site.nthu.edu.tw/p/403-1.php", HTML: tableListPage})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Table News", title)

	_, ok, err = e.ListPage(&entity.Page{URL: "https://a.site.nthu.edu.tw/p/403-1.php", HTML: emptyListPage})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArticles(t *testing.T) {
	articles, err := New().Articles(&entity.Page{URL: "https://a.site.nthu.edu.tw/p/403-1.php?Lang=en", HTML: listPage})
	require.NoError(t, err)
	assert.Equal(t, []entity.Article{
		{Title: "Course selection opens", Link: "https://a.site.nthu.edu.tw/p/406-1001-1.php", Date: "2025-02-20"},
		{Title: "Scholarship", Link: "https://abs.site.nthu.edu.tw/x.php", Date: "2025-02-18"},
	}, articles)
}

func TestArticlesTableLayout(t *testing.T) {
	articles, err := New().Articles(&entity.Page{URL: "https://a.site.nthu.edu.tw/p/403-1.php", HTML: tableListPage})
	require.NoError(t, err)
	assert.Equal(t, []entity.Article{
		{Title: "Row one", Link: "https://a.site.nthu.edu.tw/p/t1.php", Date: "2025-01-05"},
	}, articles)
}

func TestArticlesEmpty(t *testing.T) {
	articles, err := New().Articles(&entity.Page{URL: "https://a.site.nthu.edu.tw/", HTML: emptyListPage})
	require.NoError(t, err)
	assert.Empty(t, articles)
}
