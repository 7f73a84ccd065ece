// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/content-hub/internal/logging"
	"github.com/pdiddy/content-hub/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API, feeds, and sitemap over HTTP",
	Long: `Serve starts the HTTP server over the local store. When CMS credentials
are configured, the /api/revalidate webhook keeps the store current, and
--sync-interval runs a full sync periodically.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source server.ContentSource
	client, err := newCMSClient(cfg)
	if err != nil {
		logging.Warn().Err(err).Msg("CMS client unavailable, revalidation disabled")
	} else {
		source = client
		if interval, _ := cmd.Flags().GetDuration("sync-interval"); interval > 0 {
			go func() {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						summary, err := st.Sync(ctx, client, logWriter{})
						if err != nil {
							logging.Err(err).Msg("periodic sync failed")
							continue
						}
						logging.Info().
							Int("added", summary.Added).
							Int("updated", summary.Updated).
							Int("deleted", summary.Deleted).
							Int("failed", summary.Failed).
							Msg("periodic sync complete")
					}
				}
			}()
		}
	}

	srv := server.New(server.Config{
		Serve:   cfg.Serve,
		Related: cfg.Related,
		Site:    cfg.Site,
	}, st, source)
	return srv.Run(ctx)
}

// logWriter sends sync progress lines to the debug log.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	if line := bytes.TrimSpace(p); len(line) > 0 {
		logging.Debug().Msg(string(line))
	}
	return len(p), nil
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	serveCmd.Flags().Duration("sync-interval", 0, "run a full sync at this interval (0 disables)")
	_ = viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
