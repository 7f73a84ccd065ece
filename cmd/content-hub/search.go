// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-hub/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search stored articles by keyword and filters",
	Long: `Search matches the keyword against title, body, and excerpt, narrows by
category, tags, content type, audience, and difficulty, then sorts and pages
the results.`,
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	opts := searchOptsFromFlags(cmd, args)

	st, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer st.Close()

	items, err := st.Recent(context.Background(), 0)
	if err != nil {
		return err
	}
	page := search.Run(items, opts)

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return writeJSON(os.Stdout, page)
	}
	if err := search.FormatTable(os.Stdout, page.Items); err != nil {
		return err
	}
	if page.Total > 0 {
		fmt.Fprintf(os.Stdout, "\npage %d of %d, %d results\n", page.Page, page.TotalPages, page.Total)
	}
	return nil
}

func searchOptsFromFlags(cmd *cobra.Command, args []string) search.Options {
	opts := search.DefaultOptions()

	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	opts.Filters.Query = query
	opts.Filters.Category, _ = cmd.Flags().GetString("category")
	opts.Filters.Tags, _ = cmd.Flags().GetStringSlice("tag")
	opts.Filters.ContentType, _ = cmd.Flags().GetString("type")
	opts.Filters.TargetAudience, _ = cmd.Flags().GetString("audience")
	opts.Filters.DifficultyLevel, _ = cmd.Flags().GetString("difficulty")

	if by, _ := cmd.Flags().GetString("sort"); by != "" {
		opts.SortBy = by
	}
	if order, _ := cmd.Flags().GetString("order"); order != "" {
		opts.SortOrder = order
	}
	if page, _ := cmd.Flags().GetInt("page"); page > 0 {
		opts.Page = page
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		opts.Limit = limit
	}
	return opts
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().String("query", "", "keyword matched against title, body, and excerpt")
	cmd.Flags().String("category", "", "filter by category slug")
	cmd.Flags().StringSlice("tag", nil, "filter by tag (repeatable or comma-separated)")
	cmd.Flags().String("type", "", "filter by content type: experience, research, tutorial")
	cmd.Flags().String("audience", "", "filter by target audience: engineer, enterprise, both")
	cmd.Flags().String("difficulty", "", "filter by difficulty: beginner, intermediate, advanced")
	cmd.Flags().String("sort", search.SortPublishedAt, "sort field: publishedAt, updatedAt, title, readingTime")
	cmd.Flags().String("order", search.OrderDesc, "sort order: asc or desc")
	cmd.Flags().Int("page", 1, "page number")
	cmd.Flags().Int("limit", search.DefaultLimit, "results per page")
	cmd.Flags().Bool("json", false, "output results as JSON")
}

func init() {
	addSearchFlags(searchCmd)

	rootCmd.AddCommand(searchCmd)
}
