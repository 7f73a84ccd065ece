// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store keeps a local SQLite snapshot of published content so the
// relatedness engine, feeds, and API can serve without a CMS round trip.
// Implements: content store (schema, incremental sync, queries, export);
//
//	docs/ARCHITECTURE § Content Store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/content-hub/internal/cms"
	"github.com/pdiddy/content-hub/internal/metrics"
	"github.com/pdiddy/content-hub/pkg/types"
)

const dbFile = "content.db"

// timeLayout stores instants in UTC with fixed-width fractional seconds so
// lexical order in SQLite matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// ErrNotFound is returned when a slug or ID is not in the store.
var ErrNotFound = errors.New("not found")

// Store manages the content snapshot database.
type Store struct {
	db      *sql.DB
	dataDir string
}

// NewStore opens or creates the database at dataDir/content.db and creates
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dataDir: dataDir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the directory holding the database and exports.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_categories_slug ON categories(slug)`,
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			excerpt TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			category_id TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '[]',
			published_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			difficulty_level TEXT NOT NULL DEFAULT '',
			target_audience TEXT NOT NULL DEFAULT '',
			content_type TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			reading_time INTEGER NOT NULL DEFAULT 0,
			featured_image_url TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_published ON articles(published_at)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category_id)`,
		`CREATE TABLE IF NOT EXISTS sync_status (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Source supplies the full upstream content set for Sync. *cms.Client
// implements it.
type Source interface {
	AllCategories(ctx context.Context) ([]types.Category, error)
	AllArticles(ctx context.Context) ([]cms.ArticleRecord, error)
}

// SyncSummary holds counts from a sync run.
type SyncSummary struct {
	Added     int
	Updated   int
	Unchanged int
	Failed    int
	Deleted   int
}

// Total returns the number of upstream articles processed.
func (s SyncSummary) Total() int {
	return s.Added + s.Updated + s.Unchanged + s.Failed
}

// Sync mirrors src into the store. Categories are replaced wholesale.
// Articles are upserted when new or when their update time changed, and
// rows whose IDs no longer appear upstream are deleted. An article that
// fails conversion is counted and left as stored. Progress lines go to w.
func (s *Store) Sync(ctx context.Context, src Source, w io.Writer) (summary SyncSummary, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordSync(time.Since(start), summary.Added+summary.Updated, summary.Unchanged, summary.Failed, summary.Deleted, err)
	}()

	categories, err := src.AllCategories(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetching categories: %w", err)
	}
	if err := s.ReplaceCategories(ctx, categories); err != nil {
		return summary, err
	}
	fmt.Fprintf(w, "categories: %d\n", len(categories))

	records, err := src.AllArticles(ctx)
	if err != nil {
		return summary, fmt.Errorf("fetching articles: %w", err)
	}

	stored, err := s.updateTimes(ctx)
	if err != nil {
		return summary, err
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		seen[rec.ID] = true
		item, convErr := rec.ToContentItem()
		if convErr != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rec.Slug, convErr)
			summary.Failed++
			continue
		}

		prev, exists := stored[item.ID]
		if exists && prev == formatTime(item.LastModified()) {
			fmt.Fprintf(w, "skipped %s\n", item.Slug)
			summary.Unchanged++
			continue
		}

		if err := s.UpsertArticle(ctx, item); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", item.Slug, err)
			summary.Failed++
			continue
		}
		if exists {
			fmt.Fprintf(w, "updated %s\n", item.Slug)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "added   %s\n", item.Slug)
			summary.Added++
		}
	}

	for id := range stored {
		if seen[id] {
			continue
		}
		if _, err := s.DeleteArticle(ctx, id); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "deleted %s\n", id)
		summary.Deleted++
	}

	if err := s.setStatus(ctx, "last_sync", formatTime(time.Now())); err != nil {
		return summary, err
	}

	fmt.Fprintf(w, "\nadded: %d, updated: %d, unchanged: %d, failed: %d, deleted: %d\n",
		summary.Added, summary.Updated, summary.Unchanged, summary.Failed, summary.Deleted)
	return summary, nil
}

// updateTimes maps stored article IDs to their stored update time.
func (s *Store) updateTimes(ctx context.Context) (map[string]string, error) {
	query, args, err := sq.Select("id", "updated_at").From("articles").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("reading update times: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var id, updated string
		if err := rows.Scan(&id, &updated); err != nil {
			return nil, fmt.Errorf("scanning update time: %w", err)
		}
		out[id] = updated
	}
	return out, rows.Err()
}

// LastSync returns the time of the last completed sync, or the zero time if
// the store has never been synced.
func (s *Store) LastSync(ctx context.Context) (time.Time, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM sync_status WHERE key = ?`, "last_sync").Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading sync status: %w", err)
	}
	return parseTime(v)
}

func (s *Store) setStatus(ctx context.Context, key, value string) error {
	query, args, err := sq.Insert("sync_status").
		Columns("key", "value").
		Values(key, value).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating sync status: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t, nil
}
