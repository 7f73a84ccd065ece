// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror categories and articles from microCMS into the local store",
	Long: `Sync pulls every category and article from the microCMS content API into
data/content.db. New and changed articles are written, unchanged ones are
skipped, and articles no longer published upstream are removed.`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	client, err := newCMSClient(cfg)
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	summary, err := st.Sync(ctx, client, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d article(s) failed to sync", summary.Failed)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
