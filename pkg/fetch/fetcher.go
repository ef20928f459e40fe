// Package fetch performs polite HTTP retrieval: a configured client, a
// per-host rate limiter, a robots.txt gate, and a single-attempt page
// fetcher that classifies failures for error accounting.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"tunai-collect/pkg/utils"
)

// Result is the outcome of a successful page fetch.
type Result struct {
	Body        []byte
	StatusCode  int
	ContentType string
	FinalURL    *url.URL // URL after redirects; basis for link resolution
}

// Fetcher performs single-attempt GET requests. A URL that fails is
// counted against the page budget and never refetched, so there is no
// retry loop here.
type Fetcher struct {
	client    *http.Client
	userAgent string
	log       *logrus.Entry
}

// NewFetcher creates a Fetcher sending the given User-Agent.
func NewFetcher(client *http.Client, userAgent string, log *logrus.Entry) *Fetcher {
	return &Fetcher{
		client:    client,
		userAgent: userAgent,
		log:       log,
	}
}

// Fetch GETs the page once and reads the full body. Errors are wrapped
// with the matching sentinel: ErrTimeout for deadline-style failures,
// ErrNetwork for transport failures, ErrHTTPStatus for non-2xx responses.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for '%s': %w", utils.ErrParsing, pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, f.classifyTransportError(pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status %d %s fetching '%s'", utils.ErrHTTPStatus, resp.StatusCode, http.StatusText(resp.StatusCode), pageURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, f.classifyTransportError(pageURL, err)
	}

	finalURL := resp.Request.URL
	f.log.WithFields(logrus.Fields{
		"url": pageURL, "status_code": resp.StatusCode, "bytes": len(body),
	}).Debug("Successfully fetched")

	return &Result{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
	}, nil
}

// classifyTransportError maps transport failures onto the timeout/network
// sentinels. Context cancellation passes through unwrapped so callers can
// distinguish shutdown from a slow host.
func (f *Fetcher) classifyTransportError(pageURL string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: fetching '%s': %w", utils.ErrTimeout, pageURL, err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: fetching '%s': %w", utils.ErrTimeout, pageURL, err)
	}
	// http.Client.Timeout surfaces as a url.Error with this message
	if strings.Contains(err.Error(), "Client.Timeout exceeded") {
		return fmt.Errorf("%w: fetching '%s': %w", utils.ErrTimeout, pageURL, err)
	}
	return fmt.Errorf("%w: fetching '%s': %w", utils.ErrNetwork, pageURL, err)
}

// IsHTML reports whether the response content type is parseable HTML.
// An empty Content-Type is treated as HTML since small forum installs
// often omit it.
func (r *Result) IsHTML() bool {
	if r.ContentType == "" {
		return true
	}
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(r.ContentType, ";")[0]))
	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
