// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search filters, sorts, and pages article lists and round-trips
// search options through URL query parameters.
// Implements: article search (filters, sort, pagination, tag collection);
//
//	docs/ARCHITECTURE § Search.
package search

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/content-hub/pkg/types"
)

// Sort fields and orders.
const (
	SortPublishedAt = "publishedAt"
	SortUpdatedAt   = "updatedAt"
	SortTitle       = "title"
	SortReadingTime = "readingTime"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// DefaultLimit is the page size used when none is given.
const DefaultLimit = 12

// Filters narrows a list of articles. Empty fields match everything.
type Filters struct {
	Query           string   `json:"query,omitempty"`
	Category        string   `json:"category,omitempty"` // category slug
	Tags            []string `json:"tags,omitempty"`
	ContentType     string   `json:"contentType,omitempty"`
	TargetAudience  string   `json:"targetAudience,omitempty"`
	DifficultyLevel string   `json:"difficultyLevel,omitempty"`
}

// IsEmpty reports whether no filter is set.
func (f Filters) IsEmpty() bool {
	return f.Query == "" && f.Category == "" && len(f.Tags) == 0 &&
		f.ContentType == "" && f.TargetAudience == "" && f.DifficultyLevel == ""
}

// Options is a complete search request.
type Options struct {
	Filters   Filters `json:"filters"`
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
	SortBy    string  `json:"sortBy"`
	SortOrder string  `json:"sortOrder"`
}

// DefaultOptions returns page 1 of 12, newest first.
func DefaultOptions() Options {
	return Options{
		Page:      1,
		Limit:     DefaultLimit,
		SortBy:    SortPublishedAt,
		SortOrder: OrderDesc,
	}
}

// Offset returns the index of the first item on the requested page.
func (o Options) Offset() int {
	if o.Page < 1 {
		return 0
	}
	return (o.Page - 1) * o.Limit
}

// sortAliases maps accepted spellings to canonical sort fields.
var sortAliases = map[string]string{
	SortPublishedAt: SortPublishedAt,
	SortUpdatedAt:   SortUpdatedAt,
	SortTitle:       SortTitle,
	SortReadingTime: SortReadingTime,
	"reading_time":  SortReadingTime,
}

// ParseParams reads options from URL query parameters. Unknown sort fields,
// unknown orders, and pages below 1 fall back to the defaults.
func ParseParams(v url.Values) Options {
	opts := DefaultOptions()
	opts.Filters = Filters{
		Query:           strings.TrimSpace(v.Get("q")),
		Category:        v.Get("category"),
		Tags:            splitTags(v.Get("tags")),
		ContentType:     v.Get("contentType"),
		TargetAudience:  v.Get("targetAudience"),
		DifficultyLevel: v.Get("difficultyLevel"),
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p > 0 {
		opts.Page = p
	}
	if by, ok := sortAliases[v.Get("sortBy")]; ok {
		opts.SortBy = by
	}
	if order := strings.ToLower(v.Get("sortOrder")); order == OrderAsc || order == OrderDesc {
		opts.SortOrder = order
	}
	return opts
}

// BuildParams is the inverse of ParseParams. Values equal to the defaults
// are omitted.
func BuildParams(opts Options) url.Values {
	v := url.Values{}
	f := opts.Filters
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("q", f.Query)
	set("category", f.Category)
	if len(f.Tags) > 0 {
		v.Set("tags", strings.Join(f.Tags, ","))
	}
	set("contentType", f.ContentType)
	set("targetAudience", f.TargetAudience)
	set("difficultyLevel", f.DifficultyLevel)
	if opts.Page > 1 {
		v.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.SortBy != "" && opts.SortBy != SortPublishedAt {
		v.Set("sortBy", opts.SortBy)
	}
	if opts.SortOrder != "" && opts.SortOrder != OrderDesc {
		v.Set("sortOrder", opts.SortOrder)
	}
	return v
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Filter returns the items matching f, in input order. The keyword matches
// case-insensitively anywhere in title, content, or excerpt; tags match when
// any article tag contains any requested tag.
func Filter(items []types.ContentItem, f Filters) []types.ContentItem {
	query := strings.ToLower(f.Query)
	wanted := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			wanted = append(wanted, t)
		}
	}

	out := []types.ContentItem{}
	for _, item := range items {
		if query != "" {
			text := strings.ToLower(item.Title + " " + item.Content + " " + item.Excerpt)
			if !strings.Contains(text, query) {
				continue
			}
		}
		if f.Category != "" && item.CategorySlug() != f.Category {
			continue
		}
		if len(wanted) > 0 && !anyTagContains(item.Tags, wanted) {
			continue
		}
		if f.ContentType != "" && string(item.ContentType) != f.ContentType {
			continue
		}
		if f.TargetAudience != "" && string(item.TargetAudience) != f.TargetAudience {
			continue
		}
		if f.DifficultyLevel != "" && string(item.DifficultyLevel) != f.DifficultyLevel {
			continue
		}
		out = append(out, item)
	}
	return out
}

func anyTagContains(tags types.Tags, wanted []string) bool {
	for _, w := range wanted {
		for _, tag := range tags {
			if strings.Contains(tag, w) {
				return true
			}
		}
	}
	return false
}

// Sort returns a sorted copy of items. Unknown fields sort by publication
// time. Equal keys keep their input order.
func Sort(items []types.ContentItem, by, order string) []types.ContentItem {
	out := append([]types.ContentItem(nil), items...)
	var cmp func(a, b types.ContentItem) int
	switch sortAliases[by] {
	case SortTitle:
		cmp = func(a, b types.ContentItem) int {
			return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		}
	case SortReadingTime:
		cmp = func(a, b types.ContentItem) int { return a.ReadingTime - b.ReadingTime }
	case SortUpdatedAt:
		cmp = func(a, b types.ContentItem) int { return a.LastModified().Compare(b.LastModified()) }
	default:
		cmp = func(a, b types.ContentItem) int { return a.PublishedAt.Compare(b.PublishedAt) }
	}
	asc := strings.EqualFold(order, OrderAsc)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if asc {
			return c < 0
		}
		return c > 0
	})
	return out
}

// Page is one page of results.
type Page struct {
	Items      []types.ContentItem `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"totalPages"`
}

// Paginate slices out page (1-based) of size limit. A page past the end is
// empty; a non-positive limit uses DefaultLimit.
func Paginate(items []types.ContentItem, page, limit int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page < 1 {
		page = 1
	}
	p := Page{
		Items:      []types.ContentItem{},
		Total:      len(items),
		Page:       page,
		Limit:      limit,
		TotalPages: TotalPages(len(items), limit),
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return p
	}
	end := min(start+limit, len(items))
	p.Items = items[start:end]
	return p
}

// TotalPages returns the number of pages needed for total items.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Run applies filters, sorting, and pagination in one call.
func Run(items []types.ContentItem, opts Options) Page {
	matched := Filter(items, opts.Filters)
	return Paginate(Sort(matched, opts.SortBy, opts.SortOrder), opts.Page, opts.Limit)
}

// CollectTags returns the sorted set of tags used across items.
func CollectTags(items []types.ContentItem) []string {
	seen := map[string]struct{}{}
	for _, item := range items {
		for _, tag := range item.Tags {
			seen[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
