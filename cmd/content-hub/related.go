// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-hub/internal/logging"
	"github.com/pdiddy/content-hub/internal/metrics"
	"github.com/pdiddy/content-hub/internal/relatedness"
	"github.com/pdiddy/content-hub/internal/search"
)

var relatedCmd = &cobra.Command{
	Use:   "related <slug>",
	Short: "Rank the articles most related to one article",
	Long: `Related scores recent articles against the given article on category,
shared tags, publication proximity, difficulty, and audience, and prints the
highest scoring ones with their score breakdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func runRelated(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	limit, _ := cmd.Flags().GetInt("limit")
	if !cmd.Flags().Changed("limit") {
		limit = cfg.Related.Limit
	}
	pool, _ := cmd.Flags().GetInt("pool")
	if !cmd.Flags().Changed("pool") {
		pool = cfg.Related.PoolSize
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	target, err := st.Article(ctx, args[0])
	if err != nil {
		return err
	}
	candidates, err := st.Candidates(ctx, pool)
	if err != nil {
		return err
	}

	ranking, err := relatedness.RankRelated(target, candidates, limit)
	if err != nil {
		return err
	}
	metrics.RecordRanking(len(candidates), len(ranking.Skipped))
	for _, sk := range ranking.Skipped {
		logging.Warn().Err(sk.Err).Str("slug", sk.Slug).Msg("skipped malformed candidate")
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, ranking.Scores)
	}
	return formatRelated(target.Title, ranking)
}

func formatRelated(title string, ranking relatedness.Ranking) error {
	fmt.Fprintf(os.Stdout, "Related to: %s\n\n", title)
	if len(ranking.Scores) == 0 {
		fmt.Println("No related articles found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-6s  %-16s  %-40s  %s\n",
		"Rank", "Score", "Level", "Title", "cat/tag/date/diff/aud")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))

	for i, sc := range ranking.Scores {
		b := sc.Breakdown
		fmt.Fprintf(os.Stdout, "%-4d  %6.2f  %-16s  %-40s  %.0f/%.2f/%.2f/%.0f/%.0f\n",
			i+1, sc.Total, relatedness.Classify(sc.Total).Label,
			search.Truncate(sc.Item.Title, 40),
			b.Category, b.TagOverlap, b.DateProximity, b.Difficulty, b.Audience)
	}

	fmt.Fprintf(os.Stdout, "\n%d results", len(ranking.Scores))
	if n := len(ranking.Skipped); n > 0 {
		fmt.Fprintf(os.Stdout, ", %d skipped", n)
	}
	fmt.Fprintln(os.Stdout)
	return nil
}

func init() {
	relatedCmd.Flags().Int("limit", relatedness.DefaultLimit, "number of related articles")
	relatedCmd.Flags().Int("pool", 100, "number of recent articles considered")
	relatedCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(relatedCmd)
}
