package config

import "time"

// SiteConfig holds configuration for one collection target. Each entry is
// the moral equivalent of one collector script: seeds, scope, budget, and
// which extra record streams to produce.
type SiteConfig struct {
	SeedURLs         []string      `yaml:"seed_urls"`
	AllowedDomains   []string      `yaml:"allowed_domains"`
	MaxPages         int           `yaml:"max_pages,omitempty"` // 0 = app default
	MaxDepth         int           `yaml:"max_depth,omitempty"` // 0 = unlimited
	SkipPathPrefixes []string      `yaml:"skip_path_prefixes,omitempty"`
	UserAgent        string        `yaml:"user_agent,omitempty"`
	DelayPerHost     time.Duration `yaml:"delay_per_host,omitempty"`

	// Forum handling: thread pages additionally yield per-post records and
	// feed the vocabulary tracker.
	Forum          bool   `yaml:"forum,omitempty"`
	ThreadPathHint string `yaml:"thread_path_hint,omitempty"` // default "/threads/"
	MinPostLength  int    `yaml:"min_post_length,omitempty"`  // default 20

	// Flashcard extraction (English/Arabic/romanized triplets).
	ExtractCards bool `yaml:"extract_cards,omitempty"`
}

// AppConfig holds the global application configuration.
type AppConfig struct {
	DefaultUserAgent    string                `yaml:"default_user_agent"`
	DefaultDelayPerHost time.Duration         `yaml:"default_delay_per_host"`
	DefaultMaxPages     int                   `yaml:"default_max_pages,omitempty"`
	OutputBaseDir       string                `yaml:"output_base_dir"`
	StateDir            string                `yaml:"state_dir,omitempty"` // empty = in-memory visited set only
	MaxSiteConcurrency  int                   `yaml:"max_site_concurrency,omitempty"`
	HTTPClientSettings  HTTPClientConfig      `yaml:"http_client_settings,omitempty"`
	Sites               map[string]SiteConfig `yaml:"sites"`
}

// HTTPClientConfig holds settings for the shared HTTP client.
type HTTPClientConfig struct {
	Timeout             time.Duration `yaml:"timeout,omitempty"`                 // Overall request timeout (the fetch bound)
	MaxIdleConns        int           `yaml:"max_idle_conns,omitempty"`          // Max total idle connections
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host,omitempty"` // Max idle connections per host
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout,omitempty"`       // Timeout for idle connections
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout,omitempty"`   // Timeout for TLS handshake
	DialerTimeout       time.Duration `yaml:"dialer_timeout,omitempty"`          // Connection dial timeout
	DialerKeepAlive     time.Duration `yaml:"dialer_keep_alive,omitempty"`       // TCP keep-alive interval

	ExpectContinueTimeout time.Duration `yaml:"expect_continue_timeout,omitempty"` // Timeout waiting for 100-continue
	ForceAttemptHTTP2     *bool         `yaml:"force_attempt_http2,omitempty"`     // nil = default (true)
}

// EffectiveUserAgent returns the site override or the global default.
func EffectiveUserAgent(siteCfg SiteConfig, appCfg AppConfig) string {
	if siteCfg.UserAgent != "" {
		return siteCfg.UserAgent
	}
	return appCfg.DefaultUserAgent
}

// EffectiveDelayPerHost returns the site override or the global default.
func EffectiveDelayPerHost(siteCfg SiteConfig, appCfg AppConfig) time.Duration {
	if siteCfg.DelayPerHost > 0 {
		return siteCfg.DelayPerHost
	}
	return appCfg.DefaultDelayPerHost
}

// EffectiveMaxPages returns the site page budget or the global default.
func EffectiveMaxPages(siteCfg SiteConfig, appCfg AppConfig) int {
	if siteCfg.MaxPages > 0 {
		return siteCfg.MaxPages
	}
	return appCfg.DefaultMaxPages
}

// EffectiveThreadPathHint returns the path substring identifying thread
// pages for forum sites.
func EffectiveThreadPathHint(siteCfg SiteConfig) string {
	if siteCfg.ThreadPathHint != "" {
		return siteCfg.ThreadPathHint
	}
	return "/threads/"
}

// EffectiveMinPostLength returns the minimum post text length for forum
// post records.
func EffectiveMinPostLength(siteCfg SiteConfig) int {
	if siteCfg.MinPostLength > 0 {
		return siteCfg.MinPostLength
	}
	return 20
}
