// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/content-hub/internal/feed"
	"github.com/pdiddy/content-hub/internal/store"
)

const feedItems = 50

var feedCmd = &cobra.Command{
	Use:   "feed {rss|atom|sitemap|category <slug>}",
	Short: "Render a feed or the sitemap from the local store",
	Long: `Feed renders the site RSS 2.0 feed, the Atom 1.0 feed, a per-category RSS
feed, or the sitemap, writing XML to stdout or to --output.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFeed,
}

func runFeed(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	site := feed.SiteFromConfig(cfg.Site)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := renderFeed(context.Background(), st, site, args, time.Now())
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Fprintln(os.Stderr, "Wrote", output)
	return nil
}

func renderFeed(ctx context.Context, st *store.Store, site feed.Site, args []string, now time.Time) ([]byte, error) {
	switch args[0] {
	case "rss", "atom":
		if len(args) > 1 {
			return nil, fmt.Errorf("%s takes no arguments", args[0])
		}
		items, err := st.Recent(ctx, feedItems)
		if err != nil {
			return nil, err
		}
		if args[0] == "rss" {
			return feed.RSS(site, items, now)
		}
		return feed.Atom(site, items, now)
	case "category":
		if len(args) != 2 {
			return nil, fmt.Errorf("category requires a slug")
		}
		category, err := st.Category(ctx, args[1])
		if err != nil {
			return nil, err
		}
		items, _, err := st.Query(ctx, store.Filter{CategorySlug: category.Slug, Limit: feedItems})
		if err != nil {
			return nil, err
		}
		return feed.CategoryRSS(site, category, items, now)
	case "sitemap":
		items, err := st.Recent(ctx, 0)
		if err != nil {
			return nil, err
		}
		categories, err := st.Categories(ctx)
		if err != nil {
			return nil, err
		}
		return feed.Sitemap(site, items, categories, now)
	default:
		return nil, fmt.Errorf("unknown feed %q: use rss, atom, category, or sitemap", args[0])
	}
}

func init() {
	feedCmd.Flags().String("output", "", "write to this file instead of stdout")

	rootCmd.AddCommand(feedCmd)
}
