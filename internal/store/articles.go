// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	json "github.com/goccy/go-json"

	"github.com/pdiddy/content-hub/pkg/types"
)

// articleColumns is the full column list for article reads; the category
// columns come from a LEFT JOIN and may be NULL.
var articleColumns = []string{
	"a.id", "a.slug", "a.title", "a.excerpt", "a.content", "a.category_id", "a.tags",
	"a.published_at", "a.updated_at", "a.difficulty_level", "a.target_audience",
	"a.content_type", "a.status", "a.reading_time", "a.featured_image_url",
	"c.name", "c.slug", "c.description",
}

// summaryColumns matches articleColumns but leaves the body out.
var summaryColumns = func() []string {
	cols := append([]string(nil), articleColumns...)
	cols[4] = "'' AS content"
	return cols
}()

// published excludes drafts. Articles without a status are treated as
// published since the content API only serves published entries.
var published = sq.NotEq{"a.status": string(types.StatusDraft)}

func selectArticles(cols []string) sq.SelectBuilder {
	return sq.Select(cols...).
		From("articles a").
		LeftJoin("categories c ON c.id = a.category_id")
}

// UpsertArticle inserts or replaces one article, keyed by ID.
func (s *Store) UpsertArticle(ctx context.Context, item types.ContentItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	tags := item.Tags
	if tags == nil {
		tags = types.Tags{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encoding tags: %w", err)
	}

	query, args, err := sq.Insert("articles").
		Columns("id", "slug", "title", "excerpt", "content", "category_id", "tags",
			"published_at", "updated_at", "difficulty_level", "target_audience",
			"content_type", "status", "reading_time", "featured_image_url").
		Values(item.ID, item.Slug, item.Title, item.Excerpt, item.Content, item.CategoryID, string(tagsJSON),
			formatTime(item.PublishedAt), formatTime(item.LastModified()), string(item.DifficultyLevel),
			string(item.TargetAudience), string(item.ContentType), string(item.Status),
			item.ReadingTime, item.FeaturedImageURL).
		Suffix(`ON CONFLICT(id) DO UPDATE SET
			slug=excluded.slug, title=excluded.title, excerpt=excluded.excerpt,
			content=excluded.content, category_id=excluded.category_id, tags=excluded.tags,
			published_at=excluded.published_at, updated_at=excluded.updated_at,
			difficulty_level=excluded.difficulty_level, target_audience=excluded.target_audience,
			content_type=excluded.content_type, status=excluded.status,
			reading_time=excluded.reading_time, featured_image_url=excluded.featured_image_url`).
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting article %s: %w", item.Slug, err)
	}
	return nil
}

// DeleteArticle removes an article by ID and reports whether it existed.
func (s *Store) DeleteArticle(ctx context.Context, id string) (bool, error) {
	query, args, err := sq.Delete("articles").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("building query: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("deleting article %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting article %s: %w", id, err)
	}
	return n > 0, nil
}

// Article returns the published article with the given slug.
func (s *Store) Article(ctx context.Context, slug string) (types.ContentItem, error) {
	return s.one(ctx, sq.And{published, sq.Eq{"a.slug": slug}}, slug)
}

// ArticleByID returns the published article with the given content ID.
func (s *Store) ArticleByID(ctx context.Context, id string) (types.ContentItem, error) {
	return s.one(ctx, sq.And{published, sq.Eq{"a.id": id}}, id)
}

func (s *Store) one(ctx context.Context, where sq.Sqlizer, key string) (types.ContentItem, error) {
	query, args, err := selectArticles(articleColumns).Where(where).Limit(1).ToSql()
	if err != nil {
		return types.ContentItem{}, fmt.Errorf("building query: %w", err)
	}
	item, err := scanArticle(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return types.ContentItem{}, fmt.Errorf("article %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return types.ContentItem{}, err
	}
	return item, nil
}

// Recent returns up to limit published articles, newest first. Equal
// publication times fall back to insertion order. A limit of zero or less
// returns every article.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.ContentItem, error) {
	return s.list(ctx, articleColumns, limit)
}

// Candidates is Recent without article bodies, for ranking.
func (s *Store) Candidates(ctx context.Context, limit int) ([]types.ContentItem, error) {
	return s.list(ctx, summaryColumns, limit)
}

func (s *Store) list(ctx context.Context, cols []string, limit int) ([]types.ContentItem, error) {
	b := selectArticles(cols).Where(published).OrderBy("a.published_at DESC", "a.rowid ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing articles: %w", err)
	}
	return scanArticles(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (types.ContentItem, error) {
	var (
		item                        types.ContentItem
		tagsJSON, pubAt, updAt      string
		difficulty, audience, ctype string
		status                      string
		catName, catSlug, catDesc   sql.NullString
	)
	err := row.Scan(&item.ID, &item.Slug, &item.Title, &item.Excerpt, &item.Content,
		&item.CategoryID, &tagsJSON, &pubAt, &updAt, &difficulty, &audience,
		&ctype, &status, &item.ReadingTime, &item.FeaturedImageURL,
		&catName, &catSlug, &catDesc)
	if err != nil {
		return types.ContentItem{}, err
	}

	if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
		return types.ContentItem{}, fmt.Errorf("decoding tags of %s: %w", item.Slug, err)
	}
	if item.PublishedAt, err = parseTime(pubAt); err != nil {
		return types.ContentItem{}, err
	}
	if item.UpdatedAt, err = parseTime(updAt); err != nil {
		return types.ContentItem{}, err
	}
	item.DifficultyLevel = types.DifficultyLevel(difficulty)
	item.TargetAudience = types.TargetAudience(audience)
	item.ContentType = types.ContentType(ctype)
	item.Status = types.Status(status)

	if item.CategoryID != "" && catSlug.Valid {
		item.Category = &types.Category{
			ID:          item.CategoryID,
			Name:        catName.String,
			Slug:        catSlug.String,
			Description: catDesc.String,
		}
	}
	return item, nil
}

func scanArticles(rows *sql.Rows) ([]types.ContentItem, error) {
	defer rows.Close()
	items := []types.ContentItem{}
	for rows.Next() {
		item, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating articles: %w", err)
	}
	return items, nil
}
