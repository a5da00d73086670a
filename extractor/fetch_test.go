package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oversea-labs/oversea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_Fetch(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	html, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, html, "ok")
	assert.Equal(t, oversea.UserAgent(), gotUA)
	assert.Contains(t, gotLang, "zh-CN")
}

func TestHTTPFetcher_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)

	var extErr *oversea.ExtractionError
	require.ErrorAs(t, err, &extErr)
	assert.Equal(t, srv.URL, extErr.URL)
	assert.Contains(t, extErr.Error(), "404")
}

func TestHTTPFetcher_Fetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewHTTPFetcher()
	_, err := f.Fetch(ctx, srv.URL)
	require.Error(t, err)

	var extErr *oversea.ExtractionError
	assert.ErrorAs(t, err, &extErr)
}

func TestHTTPFetcher_Fetch_BadURL(t *testing.T) {
	f := NewHTTPFetcher()
	_, err := f.Fetch(context.Background(), "://not-a-url")
	require.Error(t, err)
}

func TestNewChromedpFetcher_Defaults(t *testing.T) {
	f := NewChromedpFetcher()
	assert.Equal(t, 60*time.Second, f.Timeout)
	assert.True(t, f.Headless)
	assert.Empty(t, f.WaitSelector)
}

func TestNewAlibaba1688_WiresWaitSelector(t *testing.T) {
	f := NewChromedpFetcher()
	NewAlibaba1688(f)
	assert.Equal(t, "div#detailContentContainer", f.WaitSelector)

	// An explicit wait selector is left alone.
	custom := NewChromedpFetcher()
	custom.WaitSelector = "#custom"
	NewAlibaba1688(custom)
	assert.Equal(t, "#custom", custom.WaitSelector)
}
