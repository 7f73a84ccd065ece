// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/pdiddy/content-hub/internal/cms"
	"github.com/pdiddy/content-hub/internal/secrets"
	"github.com/pdiddy/content-hub/internal/store"
	"github.com/pdiddy/content-hub/pkg/types"
)

// commandTimeout bounds one-shot commands that talk to the CMS.
const commandTimeout = 5 * time.Minute

func setDefaults() {
	viper.SetDefault("cms.timeout", cms.DefaultTimeout)
	viper.SetDefault("cms.user_agent", cms.DefaultUserAgent)
	viper.SetDefault("cms.max_retries", cms.DefaultMaxRetries)
	viper.SetDefault("cms.rate_limit", cms.DefaultRateLimit)
	viper.SetDefault("cms.page_size", cms.DefaultPageSize)

	viper.SetDefault("store.data_dir", "data")

	viper.SetDefault("related.limit", 6)
	viper.SetDefault("related.pool_size", 100)

	viper.SetDefault("site.url", "http://localhost:8080")
	viper.SetDefault("site.name", "content-hub")
	viper.SetDefault("site.language", "ja")

	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("serve.rate_limit", 300)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("secrets_dir", ".secrets")
}

// loadConfig assembles the typed configuration from viper, filling empty
// credentials from the secrets directory.
func loadConfig() types.Config {
	return types.Config{
		CMS: types.CMSConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("cms.timeout"),
				UserAgent: viper.GetString("cms.user_agent"),
			},
			ServiceDomain: viper.GetString("cms.service_domain"),
			APIKey:        secretDefault(secrets.CMSAPIKey, viper.GetString("cms.api_key")),
			BaseURL:       viper.GetString("cms.base_url"),
			MaxRetries:    viper.GetInt("cms.max_retries"),
			RateLimit:     viper.GetFloat64("cms.rate_limit"),
			PageSize:      viper.GetInt("cms.page_size"),
		},
		Store: types.StoreConfig{
			DataDir: viper.GetString("store.data_dir"),
		},
		Related: types.RelatedConfig{
			Limit:    viper.GetInt("related.limit"),
			PoolSize: viper.GetInt("related.pool_size"),
		},
		Site: types.SiteConfig{
			URL:         viper.GetString("site.url"),
			Name:        viper.GetString("site.name"),
			Description: viper.GetString("site.description"),
			Language:    viper.GetString("site.language"),
			AuthorEmail: viper.GetString("site.author_email"),
		},
		Serve: types.ServeConfig{
			Addr:             viper.GetString("serve.addr"),
			RevalidateSecret: secretDefault(secrets.RevalidateSecret, viper.GetString("serve.revalidate_secret")),
			CORSOrigins:      viper.GetStringSlice("serve.cors_origins"),
			RateLimit:        viper.GetInt("serve.rate_limit"),
		},
		Log: types.LogConfig{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		},
	}
}

func openStore(cfg types.Config) (*store.Store, error) {
	return store.NewStore(cfg.Store)
}

func newCMSClient(cfg types.Config) (*cms.Client, error) {
	return cms.NewClient(cfg.CMS, nil)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
