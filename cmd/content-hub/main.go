// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the content-hub CLI.
// Implements: content sync, related and popular rankings, search, export,
//
//	feeds, and the HTTP server (CLI surface).
//
// See docs/ARCHITECTURE § CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/content-hub/internal/logging"
	"github.com/pdiddy/content-hub/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds values loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret stored
// under key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the content-hub CLI.
var rootCmd = &cobra.Command{
	Use:   "content-hub",
	Short: "Related-article engine and content API for a microCMS blog",
	Long: `content-hub mirrors a microCMS blog into a local SQLite snapshot and
serves it: related-article rankings, recency-based popular lists, search,
RSS/Atom feeds, a sitemap, and a JSON API.

Run "content-hub sync" to pull content, then query it with related, popular,
and search, or serve everything over HTTP with "content-hub serve".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(logging.Config{
			Level:  viper.GetString("log.level"),
			Format: viper.GetString("log.format"),
		})

		s, err := secrets.Load(viper.GetString("secrets_dir"))
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logging.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./content-hub.yaml or ~/.config/content-hub/content-hub.yaml)")
	pf.String("data-dir", "data", "directory holding content.db and exports")
	pf.String("log-level", "info", "log level: debug, info, warn, error, disabled")
	pf.String("log-format", "console", "log format: json or console")
	pf.String("secrets-dir", ".secrets", "directory of secret files")

	_ = viper.BindPFlag("store.data_dir", pf.Lookup("data-dir"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.format", pf.Lookup("log-format"))
	_ = viper.BindPFlag("secrets_dir", pf.Lookup("secrets-dir"))

	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("content-hub")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "content-hub"))
		}
	}

	viper.SetEnvPrefix("CONTENT_HUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
