// Package scope decides which discovered URLs a crawl session is allowed
// to follow: domain allow-list plus skip-path prefixes.
package scope

import (
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"
)

// DomainFilter admits URLs whose registrable domain is on the allow-list
// (exact or subdomain-suffix match) and whose path does not start with any
// of the configured skip prefixes. Applied to every link discovered by the
// extractor before it reaches the frontier.
type DomainFilter struct {
	allowed      []string // lowercased
	skipPrefixes []string
	log          *logrus.Entry
}

// NewDomainFilter creates a DomainFilter from the caller-supplied
// allow-list and skip-path prefixes.
func NewDomainFilter(allowedDomains, skipPathPrefixes []string, log *logrus.Entry) *DomainFilter {
	allowed := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			allowed = append(allowed, d)
		}
	}
	return &DomainFilter{
		allowed:      allowed,
		skipPrefixes: skipPathPrefixes,
		log:          log,
	}
}

// Admit reports whether the URL may enter the frontier.
func (f *DomainFilter) Admit(u *url.URL) bool {
	if u == nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}
	if !f.hostAllowed(host) {
		f.log.Debugf("Domain filter rejected host '%s'", host)
		return false
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	for _, prefix := range f.skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			f.log.Debugf("Skip-path prefix '%s' rejected '%s'", prefix, u.String())
			return false
		}
	}
	return true
}

func (f *DomainFilter) hostAllowed(host string) bool {
	registrable := RegistrableDomain(host)
	for _, d := range f.allowed {
		if host == d || registrable == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// RegistrableDomain returns the eTLD+1 for a hostname. Hosts without one
// (IP addresses, localhost, single labels) map to themselves, which keeps
// allow-lists working in tests against httptest servers.
func RegistrableDomain(host string) string {
	host = strings.ToLower(host)
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return etld1
}
