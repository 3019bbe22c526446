package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lightning66/GiftMe/config"
	"github.com/lightning66/GiftMe/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFetcher() *Fetcher {
	return NewFetcher(config.FetchConfig{Timeout: 2 * time.Second, MaxBodyBytes: 1 << 20})
}

func TestFetch_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<html><title>ok</title></html>"))
	}))
	defer srv.Close()

	page, err := newTestFetcher().Fetch(context.Background(), srv.URL, 0)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.HTML, "<title>ok</title>")
	assert.Equal(t, "text/html; charset=utf-8", page.ContentType)
	assert.Contains(t, got.Get("User-Agent"), "Chrome/120")
	assert.Equal(t, "https://www.google.com/", got.Get("Referer"))
	assert.Equal(t, "en-US,en;q=0.9", got.Get("Accept-Language"))
	assert.NotEmpty(t, got.Get("Accept"))
}

func TestFetch_UpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL, 0)
	require.Error(t, err)

	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, models.ErrCodeUpstream, fe.Code)
	assert.Equal(t, http.StatusForbidden, fe.StatusCode)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := newTestFetcher().Fetch(context.Background(), srv.URL, 100*time.Millisecond)
	require.Error(t, err)

	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, models.ErrCodeTimeout, fe.Code)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), addr, 0)
	require.Error(t, err)

	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, models.ErrCodeNetwork, fe.Code)
}

func TestFetch_RedirectToNonHTTPScheme(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "ftp://example.com/file", http.StatusFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher().Fetch(context.Background(), srv.URL, 0)
	require.Error(t, err)

	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, models.ErrCodeNetwork, fe.Code)
	assert.True(t, errors.Is(err, errBadRedirectScheme))
}

func TestFetch_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>moved</body></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page, err := newTestFetcher().Fetch(context.Background(), srv.URL+"/old", 0)
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/new", page.FinalURL)
	assert.Contains(t, page.HTML, "moved")
}

func TestFetch_TranscodesDeclaredCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "Caf\xe9" is "Café" in Latin-1.
		_, _ = w.Write([]byte("<html><title>Caf\xe9</title></html>"))
	}))
	defer srv.Close()

	page, err := newTestFetcher().Fetch(context.Background(), srv.URL, 0)
	require.NoError(t, err)
	assert.Contains(t, page.HTML, "Café")
}

func TestFetch_CapsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(strings.Repeat("a", 4096)))
	}))
	defer srv.Close()

	f := NewFetcher(config.FetchConfig{Timeout: time.Second, MaxBodyBytes: 1024})
	page, err := f.Fetch(context.Background(), srv.URL, 0)
	require.NoError(t, err)
	assert.Len(t, page.HTML, 1024)
}

func TestStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	defer srv.Close()

	f := newTestFetcher()

	resp, err := f.Stream(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	_, err = f.Stream(context.Background(), srv.URL+"/missing.png")
	var fe *models.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, models.ErrCodeUpstream, fe.Code)
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
}

func TestNewFetcher_Defaults(t *testing.T) {
	f := NewFetcher(config.FetchConfig{})
	assert.Equal(t, 12*time.Second, f.Timeout())
	assert.Equal(t, int64(10<<20), f.maxBody)
}
