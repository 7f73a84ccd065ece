// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/content-hub/pkg/types"
)

const titleWidth = 48

// FormatTable writes items as a fixed-width table.
func FormatTable(w io.Writer, items []types.ContentItem) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No articles found.")
		return err
	}

	fmt.Fprintf(w, "%-10s  %-*s  %-14s  %-10s  %s\n",
		"Published", titleWidth, "Title", "Category", "Type", "Tags")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for _, item := range items {
		category := item.CategoryName()
		if category == "" {
			category = "-"
		}
		ctype := string(item.ContentType)
		if ctype == "" {
			ctype = "-"
		}
		if _, err := fmt.Fprintf(w, "%-10s  %-*s  %-14s  %-10s  %s\n",
			item.PublishedAt.Format("2006-01-02"),
			titleWidth, Truncate(item.Title, titleWidth),
			Truncate(category, 14), ctype, item.Tags.String()); err != nil {
			return err
		}
	}
	return nil
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
