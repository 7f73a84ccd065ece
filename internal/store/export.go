// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/content-hub/pkg/types"
)

// Snapshot is the exported form of the store.
type Snapshot struct {
	ExportedAt time.Time           `json:"exported_at" yaml:"exported_at"`
	LastSync   time.Time           `json:"last_sync,omitempty" yaml:"last_sync,omitempty"`
	Categories []types.Category    `json:"categories" yaml:"categories"`
	Articles   []types.ContentItem `json:"articles" yaml:"articles"`
}

// Snapshot reads every category and published article.
func (s *Store) Snapshot(ctx context.Context) (Snapshot, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	articles, err := s.Recent(ctx, 0)
	if err != nil {
		return Snapshot{}, err
	}
	last, err := s.LastSync(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		ExportedAt: time.Now().UTC(),
		LastSync:   last,
		Categories: categories,
		Articles:   articles,
	}, nil
}

// ExportYAML writes the snapshot as YAML to path, defaulting to
// <data_dir>/export.yaml. It returns the path written.
func (s *Store) ExportYAML(ctx context.Context, path string) (string, error) {
	return s.export(ctx, path, "export.yaml", yaml.Marshal)
}

// ExportJSON writes the snapshot as indented JSON to path, defaulting to
// <data_dir>/export.json. It returns the path written.
func (s *Store) ExportJSON(ctx context.Context, path string) (string, error) {
	return s.export(ctx, path, "export.json", func(v any) ([]byte, error) {
		return json.MarshalIndent(v, "", "  ")
	})
}

func (s *Store) export(ctx context.Context, path, defaultName string, encode func(any) ([]byte, error)) (string, error) {
	if path == "" {
		path = filepath.Join(s.dataDir, defaultName)
	}
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	data, err := encode(snap)
	if err != nil {
		return "", fmt.Errorf("encoding export: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
