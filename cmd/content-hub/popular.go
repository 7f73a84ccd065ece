// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-hub/internal/metrics"
	"github.com/pdiddy/content-hub/internal/relatedness"
	"github.com/pdiddy/content-hub/internal/search"
)

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most recent articles as the popular selection",
	Long: `Popular ranks recently published articles by recency. The candidate pool
is twice the requested limit, capped at 20.`,
	RunE: runPopular,
}

func runPopular(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	st, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	recent, err := st.Candidates(context.Background(), min(limit*2, 20))
	if err != nil {
		return err
	}
	items := relatedness.RankPopular(recent, limit)
	metrics.RecordPopular()

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, items)
	}
	return search.FormatTable(os.Stdout, items)
}

func init() {
	popularCmd.Flags().Int("limit", relatedness.DefaultLimit, "number of articles")
	popularCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(popularCmd)
}
