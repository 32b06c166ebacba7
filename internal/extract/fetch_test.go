package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherSendsBrowserHeaders(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, browserUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, browserLanguage, r.Header.Get("Accept-Language"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.Equal(t, browserAccept, r.Header.Get("Accept"))
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	page, err := NewHTTPFetcher(time.Second, 0).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", page)
	assert.Equal(t, 1, hits)
}

func TestHTTPFetcherNon2xxIsSingleAttempt(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(time.Second, 0).Fetch(context.Background(), srv.URL)
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, http.StatusForbidden, fetchErr.Status)
	assert.Equal(t, "failed to fetch webpage: 403", err.Error())
	assert.Equal(t, 1, hits)
}

func TestHTTPFetcherLimitsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer srv.Close()

	page, err := NewHTTPFetcher(time.Second, 10).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, page, 10)
}

func TestHTTPFetcherTransportError(t *testing.T) {
	_, err := NewHTTPFetcher(time.Second, 0).Fetch(context.Background(), "http://127.0.0.1:1/listing")
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	assert.Zero(t, fetchErr.Status)
}
