package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "content-hub/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CMSConfig holds settings for the microCMS content API client.
type CMSConfig struct {
	HTTPConfig `yaml:",inline"`

	// ServiceDomain is the microCMS service subdomain ({domain}.microcms.io).
	ServiceDomain string `json:"service_domain" yaml:"service_domain"`

	// APIKey is sent as the X-MICROCMS-API-KEY header.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BaseURL overrides the API root derived from ServiceDomain. Used by tests
	// and self-hosted proxies.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`

	// MaxRetries is the number of retry attempts on HTTP 429/503 (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RateLimit is the maximum requests per second (default 5, 0 disables).
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// PageSize is the page size used when paginating all articles (default 100,
	// the microCMS maximum).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// StoreConfig holds settings for the local content snapshot.
type StoreConfig struct {
	// DataDir contains content.db and exports.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// RelatedConfig holds settings for related and popular article selection.
type RelatedConfig struct {
	// Limit is the number of related articles returned (default 6).
	Limit int `json:"limit" yaml:"limit"`

	// PoolSize is the number of recent articles considered as candidates
	// (default 100).
	PoolSize int `json:"pool_size" yaml:"pool_size"`
}

// SiteConfig describes the public site for feeds and the sitemap.
type SiteConfig struct {
	URL         string `json:"url" yaml:"url"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Language    string `json:"language" yaml:"language"`
	AuthorEmail string `json:"author_email" yaml:"author_email"`
}

// ServeConfig holds settings for the HTTP server.
type ServeConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// RevalidateSecret authenticates CMS webhook calls. Empty disables the check.
	RevalidateSecret string `json:"revalidate_secret,omitempty" yaml:"revalidate_secret,omitempty"`

	// CORSOrigins lists origins allowed to call the JSON API. Empty allows none.
	CORSOrigins []string `json:"cors_origins,omitempty" yaml:"cors_origins,omitempty"`

	// RateLimit is the number of requests per minute allowed from one client
	// IP (default 300, 0 disables).
	RateLimit int `json:"rate_limit" yaml:"rate_limit"`
}

// LogConfig selects the structured log level and format.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// Config groups all component configurations.
type Config struct {
	CMS     CMSConfig     `json:"cms" yaml:"cms"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Related RelatedConfig `json:"related" yaml:"related"`
	Site    SiteConfig    `json:"site" yaml:"site"`
	Serve   ServeConfig   `json:"serve" yaml:"serve"`
	Log     LogConfig     `json:"log" yaml:"log"`
}
