package config

import (
	"fmt"
	"net/url"
	"time"

	"tunai-collect/pkg/utils"
)

// Validate checks AppConfig fields and applies sensible defaults.
// Returns collected warnings and any fatal error.
// Modifies receiver in place to apply defaults.
func (c *AppConfig) Validate() (warnings []string, err error) {
	if c.DefaultUserAgent == "" {
		warnings = append(warnings, "default_user_agent is empty, defaulting to 'tunai-collect/1.0'")
		c.DefaultUserAgent = "tunai-collect/1.0"
	}

	if c.DefaultDelayPerHost < 0 {
		warnings = append(warnings, "default_delay_per_host cannot be negative, setting to 0")
		c.DefaultDelayPerHost = 0
	}

	if c.DefaultMaxPages <= 0 {
		warnings = append(warnings, "default_max_pages should be > 0, defaulting to 100")
		c.DefaultMaxPages = 100
	}

	if c.OutputBaseDir == "" {
		warnings = append(warnings, "output_base_dir is empty, defaulting to './data/raw'")
		c.OutputBaseDir = "./data/raw"
	}

	if c.MaxSiteConcurrency <= 0 {
		c.MaxSiteConcurrency = 2
	}

	c.validateHTTPClientSettings()

	if len(c.Sites) == 0 {
		return warnings, fmt.Errorf("%w: no sites configured", utils.ErrConfigValidation)
	}

	return warnings, nil
}

func (c *AppConfig) validateHTTPClientSettings() {
	h := &c.HTTPClientSettings
	if h.Timeout <= 0 {
		h.Timeout = 15 * time.Second
	}
	if h.MaxIdleConns <= 0 {
		h.MaxIdleConns = 20
	}
	if h.MaxIdleConnsPerHost <= 0 {
		h.MaxIdleConnsPerHost = 2
	}
	if h.IdleConnTimeout <= 0 {
		h.IdleConnTimeout = 90 * time.Second
	}
	if h.TLSHandshakeTimeout <= 0 {
		h.TLSHandshakeTimeout = 10 * time.Second
	}
	if h.DialerTimeout <= 0 {
		h.DialerTimeout = 10 * time.Second
	}
	if h.DialerKeepAlive <= 0 {
		h.DialerKeepAlive = 30 * time.Second
	}
	if h.ExpectContinueTimeout <= 0 {
		h.ExpectContinueTimeout = 1 * time.Second
	}
}

// Validate checks SiteConfig fields for one site.
// Returns collected warnings and any fatal error.
func (sc *SiteConfig) Validate() (warnings []string, err error) {
	if len(sc.SeedURLs) == 0 {
		return nil, fmt.Errorf("%w: seed_urls must not be empty", utils.ErrConfigValidation)
	}
	for _, seed := range sc.SeedURLs {
		parsed, parseErr := url.ParseRequestURI(seed)
		if parseErr != nil {
			return warnings, fmt.Errorf("%w: invalid seed URL '%s': %v", utils.ErrConfigValidation, seed, parseErr)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return warnings, fmt.Errorf("%w: seed URL '%s' must be http(s)", utils.ErrConfigValidation, seed)
		}
	}

	if len(sc.AllowedDomains) == 0 {
		return nil, fmt.Errorf("%w: allowed_domains must not be empty", utils.ErrConfigValidation)
	}

	if sc.MaxPages < 0 {
		warnings = append(warnings, "max_pages cannot be negative, using default")
		sc.MaxPages = 0
	}
	if sc.MaxDepth < 0 {
		warnings = append(warnings, "max_depth cannot be negative, disabling depth limit")
		sc.MaxDepth = 0
	}
	if sc.DelayPerHost < 0 {
		warnings = append(warnings, "delay_per_host cannot be negative, using default")
		sc.DelayPerHost = 0
	}
	if sc.MinPostLength < 0 {
		warnings = append(warnings, "min_post_length cannot be negative, using default")
		sc.MinPostLength = 0
	}

	if !sc.Forum && sc.MinPostLength > 0 {
		warnings = append(warnings, "min_post_length is set but forum is false; it will be ignored")
	}

	return warnings, nil
}
