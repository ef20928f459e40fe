package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/temoto/robotstxt"

	"tunai-collect/pkg/utils"
)

// RobotsGate fetches, parses, and caches robots.txt per host and answers
// allow/deny for candidate URLs. The gate fails open: if robots.txt
// cannot be fetched or parsed, the host is treated as fully allowed and a
// warning is logged once per host.
type RobotsGate struct {
	client    *http.Client
	userAgent string
	cache     map[string]*robotstxt.RobotsData // hostname -> parsed data (nil on fetch failure)
	cacheMu   sync.Mutex
	log       *logrus.Entry
}

// NewRobotsGate creates a RobotsGate using the shared HTTP client.
func NewRobotsGate(client *http.Client, userAgent string, log *logrus.Entry) *RobotsGate {
	return &RobotsGate{
		client:    client,
		userAgent: userAgent,
		cache:     make(map[string]*robotstxt.RobotsData),
		log:       log,
	}
}

// Allowed reports whether the user agent may fetch targetURL. Returns
// true when robots data could not be obtained.
func (rg *RobotsGate) Allowed(ctx context.Context, targetURL *url.URL) bool {
	data := rg.robotsData(ctx, targetURL)
	if data == nil {
		return true
	}
	return data.TestAgent(targetURL.RequestURI(), rg.userAgent)
}

// CrawlDelay returns the Crawl-delay directive for the host of targetURL,
// or zero if none applies. Uses cached data only; never triggers a fetch
// beyond the one Allowed already performed.
func (rg *RobotsGate) CrawlDelay(targetURL *url.URL) time.Duration {
	rg.cacheMu.Lock()
	data, found := rg.cache[targetURL.Hostname()]
	rg.cacheMu.Unlock()
	if !found || data == nil {
		return 0
	}
	return data.FindGroup(rg.userAgent).CrawlDelay
}

// robotsData retrieves robots.txt data for the host, using the cache or
// fetching once. Returns nil when the file is unreachable or unparseable.
func (rg *RobotsGate) robotsData(ctx context.Context, targetURL *url.URL) *robotstxt.RobotsData {
	host := targetURL.Hostname()

	rg.cacheMu.Lock()
	data, found := rg.cache[host]
	rg.cacheMu.Unlock()
	if found {
		return data
	}

	robotsURL := &url.URL{Scheme: targetURL.Scheme, Host: targetURL.Host, Path: "/robots.txt"}
	if robotsURL.Scheme != "http" && robotsURL.Scheme != "https" {
		robotsURL.Scheme = "https"
	}
	robotsLog := rg.log.WithFields(logrus.Fields{"host": host, "robots_url": robotsURL.String()})
	robotsLog.Info("Fetching robots.txt...")

	data = rg.fetchAndParse(ctx, robotsURL, robotsLog)

	rg.cacheMu.Lock()
	rg.cache[host] = data
	rg.cacheMu.Unlock()
	return data
}

func (rg *RobotsGate) fetchAndParse(ctx context.Context, robotsURL *url.URL, robotsLog *logrus.Entry) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL.String(), nil)
	if err != nil {
		robotsLog.Errorf("Error creating robots.txt request: %v", err)
		return nil
	}
	req.Header.Set("User-Agent", rg.userAgent)

	resp, err := rg.client.Do(req)
	if err != nil {
		robotsLog.WithField("error_category", utils.CategorizeError(utils.ErrRobotsUnreachable)).
			Warnf("robots.txt unreachable, host treated as allowed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	// Server errors count as unreachable: fail open rather than adopt the
	// disallow-all reading some parsers give 5xx.
	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		robotsLog.WithField("error_category", utils.CategorizeError(utils.ErrRobotsUnreachable)).
			Warnf("robots.txt returned status %d, host treated as allowed", resp.StatusCode)
		return nil
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		robotsLog.Warnf("Error reading robots.txt body, host treated as allowed: %v", err)
		return nil
	}

	// FromStatusAndBytes applies the standard status semantics for the
	// remaining codes: 4xx means allow everything.
	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, bodyBytes)
	if err != nil {
		robotsLog.Warnf("Error parsing robots.txt, host treated as allowed: %v", err)
		return nil
	}

	robotsLog.Infof("Fetched robots.txt (status %d)", resp.StatusCode)
	return data
}
