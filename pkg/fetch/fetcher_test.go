package fetch

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tunai-collect/pkg/utils"
)

func testEntry() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestFetchSuccess(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), "tunai-collect/1.0", testEntry())
	res, err := f.Fetch(context.Background(), server.URL+"/page")
	require.NoError(t, err)

	assert.Equal(t, "tunai-collect/1.0", gotUA)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(res.Body), "hello")
	assert.True(t, res.IsHTML())
	assert.Equal(t, "/page", res.FinalURL.Path)
}

func TestFetchHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), "ua", testEntry())
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrHTTPStatus)
	assert.Equal(t, "HTTPStatus_404", utils.CategorizeError(err))
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	client := &http.Client{Timeout: 20 * time.Millisecond}
	f := NewFetcher(client, "ua", testEntry())
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrTimeout)
	assert.Equal(t, "Timeout", utils.CategorizeError(err))
}

func TestFetchNetworkError(t *testing.T) {
	// Closed server: connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	f := NewFetcher(&http.Client{}, "ua", testEntry())
	_, err := f.Fetch(context.Background(), addr)
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrNetwork)
}

func TestFetchContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(server.Client(), "ua", testEntry())
	_, err := f.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, utils.ErrTimeout)
}

func TestFetchRedirectUpdatesFinalURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewFetcher(server.Client(), "ua", testEntry())
	res, err := f.Fetch(context.Background(), server.URL+"/old")
	require.NoError(t, err)
	assert.Equal(t, "/new", res.FinalURL.Path)
}

func TestResultIsHTML(t *testing.T) {
	assert.True(t, (&Result{ContentType: "text/html; charset=utf-8"}).IsHTML())
	assert.True(t, (&Result{ContentType: "application/xhtml+xml"}).IsHTML())
	assert.True(t, (&Result{ContentType: ""}).IsHTML())
	assert.False(t, (&Result{ContentType: "application/pdf"}).IsHTML())
	assert.False(t, (&Result{ContentType: "image/png"}).IsHTML())
}
