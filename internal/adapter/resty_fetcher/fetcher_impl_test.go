package resty_fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/announcement-crawler/internal/repository"
	"github.com/user/announcement-crawler/pkg/useragent"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ok", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>" + r.UserAgent() + "</body></html>"))
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/ok", http.StatusFound)
	})
	mux.HandleFunc("/forbidden", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	srv := newTestServer(t)
	agents := useragent.NewManager(nil)
	f := NewFetcher(agents, nil, time.Second)

	page, err := f.Fetch(context.Background(), srv.URL+"/moved")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/ok", page.URL)
	assert.Equal(t, http.StatusOK, page.HTTPStatusCode)
	assert.Contains(t, page.HTML, agents.UserAgent())
}

func TestFetchErrors(t *testing.T) {
	srv := newTestServer(t)
	f := NewFetcher(useragent.NewManager(nil), nil, 200*time.Millisecond)
	ctx := context.Background()

	_, err := f.Fetch(ctx, srv.URL+"/forbidden")
	require.ErrorIs(t, err, repository.ErrContentRestricted)
	assert.Equal(t, http.StatusForbidden, repository.StatusCodeOf(err))

	_, err = f.Fetch(ctx, srv.URL+"/missing")
	require.ErrorIs(t, err, repository.ErrNavigationFailed)
	assert.Equal(t, http.StatusNotFound, repository.StatusCodeOf(err))

	_, err = f.Fetch(ctx, srv.URL+"/slow")
	require.ErrorIs(t, err, repository.ErrCrawlTimeout)
}
