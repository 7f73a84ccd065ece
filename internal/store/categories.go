// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/pdiddy/content-hub/pkg/types"
)

// ReplaceCategories makes the stored category set equal to categories.
func (s *Store) ReplaceCategories(ctx context.Context, categories []types.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clearing categories: %w", err)
	}
	if err := upsertCategories(ctx, tx, categories); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertCategories inserts or updates categories without removing others.
func (s *Store) UpsertCategories(ctx context.Context, categories []types.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertCategories(ctx, tx, categories); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertCategories(ctx context.Context, tx *sql.Tx, categories []types.Category) error {
	if len(categories) == 0 {
		return nil
	}
	b := sq.Insert("categories").Columns("id", "name", "slug", "description")
	for _, c := range categories {
		b = b.Values(c.ID, c.Name, c.Slug, c.Description)
	}
	query, args, err := b.Suffix(`ON CONFLICT(id) DO UPDATE SET
		name=excluded.name, slug=excluded.slug, description=excluded.description`).ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting categories: %w", err)
	}
	return nil
}

// Categories returns every category ordered by name.
func (s *Store) Categories(ctx context.Context) ([]types.Category, error) {
	query, args, err := sq.Select("id", "name", "slug", "description").
		From("categories").
		OrderBy("name", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	out := []types.Category{}
	for rows.Next() {
		var c types.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Category returns the category with the given slug.
func (s *Store) Category(ctx context.Context, slug string) (types.Category, error) {
	query, args, err := sq.Select("id", "name", "slug", "description").
		From("categories").
		Where(sq.Eq{"slug": slug}).
		Limit(1).
		ToSql()
	if err != nil {
		return types.Category{}, fmt.Errorf("building query: %w", err)
	}

	var c types.Category
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Category{}, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return types.Category{}, fmt.Errorf("reading category %s: %w", slug, err)
	}
	return c, nil
}
