// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/content-hub/pkg/types"
)

// Sort fields accepted by Query.
const (
	SortPublishedAt = "publishedAt"
	SortUpdatedAt   = "updatedAt"
	SortTitle       = "title"
	SortReadingTime = "readingTime"
)

var sortColumns = map[string]string{
	SortPublishedAt: "a.published_at",
	SortUpdatedAt:   "a.updated_at",
	SortTitle:       "a.title",
	SortReadingTime: "a.reading_time",
}

// Filter selects published articles for Query. Zero values match everything.
type Filter struct {
	CategorySlug    string
	Tags            []string // any tag containing one of these
	ContentType     string
	TargetAudience  string
	DifficultyLevel string
	Keyword         string // substring of title, content, or excerpt

	SortBy    string // one of the Sort constants; default publishedAt
	SortOrder string // "asc" or "desc"; default desc

	Limit  int
	Offset int
}

func (f Filter) where() sq.And {
	conds := sq.And{published}
	if f.CategorySlug != "" {
		conds = append(conds, sq.Eq{"c.slug": f.CategorySlug})
	}
	var tagConds sq.Or
	for _, tag := range f.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		tagConds = append(tagConds, sq.Expr(
			`EXISTS (SELECT 1 FROM json_each(a.tags) WHERE json_each.value LIKE ? ESCAPE '\')`,
			likePattern(tag)))
	}
	if len(tagConds) > 0 {
		conds = append(conds, tagConds)
	}
	if f.ContentType != "" {
		conds = append(conds, sq.Eq{"a.content_type": f.ContentType})
	}
	if f.TargetAudience != "" {
		conds = append(conds, sq.Eq{"a.target_audience": f.TargetAudience})
	}
	if f.DifficultyLevel != "" {
		conds = append(conds, sq.Eq{"a.difficulty_level": f.DifficultyLevel})
	}
	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		pat := likePattern(kw)
		conds = append(conds, sq.Or{
			sq.Expr(`a.title LIKE ? ESCAPE '\'`, pat),
			sq.Expr(`a.content LIKE ? ESCAPE '\'`, pat),
			sq.Expr(`a.excerpt LIKE ? ESCAPE '\'`, pat),
		})
	}
	return conds
}

func (f Filter) orderBy() []string {
	col, ok := sortColumns[f.SortBy]
	if !ok {
		col = sortColumns[SortPublishedAt]
	}
	dir := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		dir = "ASC"
	}
	return []string{col + " " + dir, "a.rowid ASC"}
}

// likePattern wraps s for a substring LIKE match, escaping wildcards.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// Query returns one page of published articles matching f together with
// the total number of matches.
func (s *Store) Query(ctx context.Context, f Filter) ([]types.ContentItem, int, error) {
	where := f.where()

	countSQL, countArgs, err := sq.Select("COUNT(*)").
		From("articles a").
		LeftJoin("categories c ON c.id = a.category_id").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}
	var total int
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting articles: %w", err)
	}

	b := selectArticles(articleColumns).Where(where).OrderBy(f.orderBy()...)
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		if f.Limit <= 0 {
			b = b.Limit(1<<63 - 1)
		}
		b = b.Offset(uint64(f.Offset))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying articles: %w", err)
	}
	items, err := scanArticles(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// TagCount is one tag and the number of published articles carrying it.
type TagCount struct {
	Tag   string `json:"tag" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// Tags returns every tag in use by published articles, most used first and
// alphabetical among equals.
func (s *Store) Tags(ctx context.Context) ([]TagCount, error) {
	query, args, err := sq.Select("j.value", "COUNT(*) AS n").
		From("articles a, json_each(a.tags) j").
		Where(published).
		GroupBy("j.value").
		OrderBy("n DESC", "j.value ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	out := []TagCount{}
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
