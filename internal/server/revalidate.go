// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/pdiddy/content-hub/internal/cms"
	"github.com/pdiddy/content-hub/internal/logging"
	"github.com/pdiddy/content-hub/internal/metrics"
)

// maxWebhookBody bounds the webhook payload read into memory.
const maxWebhookBody = 1 << 20

// webhookEvent is the microCMS webhook payload. Contents carries the old and
// new revisions; only IDs are needed here since the article is re-fetched.
type webhookEvent struct {
	Service  string          `json:"service"`
	API      string          `json:"api"`
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Contents json.RawMessage `json:"contents,omitempty"`
}

// revalidateResponse acknowledges a processed webhook.
type revalidateResponse struct {
	Revalidated bool      `json:"revalidated"`
	Timestamp   time.Time `json:"timestamp"`
	Event       string    `json:"event"`
	API         string    `json:"api"`
	Action      string    `json:"action,omitempty"`
}

// handleRevalidate applies a CMS change to the snapshot. Article creates and
// edits re-fetch the article by ID; an article that is gone upstream, or a
// delete event, removes it. Any category event reloads all categories.
func (s *Server) handleRevalidate(w http.ResponseWriter, r *http.Request) {
	secret := s.cfg.Serve.RevalidateSecret
	if secret == "" {
		logging.Warn().Msg("revalidate secret not set, skipping security check")
	} else if subtle.ConstantTimeCompare([]byte(r.URL.Query().Get("secret")), []byte(secret)) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid secret")
		return
	}

	var ev webhookEvent
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook body")
		return
	}
	if s.source == nil {
		writeError(w, http.StatusServiceUnavailable, "content source not configured")
		return
	}

	logging.Info().
		Str("api", ev.API).
		Str("type", ev.Type).
		Str("id", ev.ID).
		Msg("revalidation webhook received")

	action, err := s.revalidate(r.Context(), ev)
	metrics.RecordRevalidation(ev.API+"/"+ev.Type, err)
	if err != nil {
		logging.Err(err).Str("api", ev.API).Str("id", ev.ID).Msg("revalidation failed")
		writeError(w, http.StatusInternalServerError, "error revalidating")
		return
	}

	writeJSON(w, http.StatusOK, revalidateResponse{
		Revalidated: true,
		Timestamp:   s.now().UTC(),
		Event:       ev.Type,
		API:         ev.API,
		Action:      action,
	})
}

func (s *Server) revalidate(ctx context.Context, ev webhookEvent) (string, error) {
	switch ev.API {
	case "articles":
		switch ev.Type {
		case "new", "create", "edit":
			return s.refreshArticle(ctx, ev.ID)
		case "delete":
			return s.removeArticle(ctx, ev.ID)
		}
	case "categories":
		switch ev.Type {
		case "new", "create", "edit", "delete":
			categories, err := s.source.AllCategories(ctx)
			if err != nil {
				return "", fmt.Errorf("fetching categories: %w", err)
			}
			if err := s.store.ReplaceCategories(ctx, categories); err != nil {
				return "", err
			}
			return "categories reloaded", nil
		}
	}
	return "ignored", nil
}

func (s *Server) refreshArticle(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errors.New("article event without id")
	}
	rec, err := s.source.GetArticle(ctx, id)
	if errors.Is(err, cms.ErrNotFound) {
		// Unpublished articles disappear from the content API.
		return s.removeArticle(ctx, id)
	}
	if err != nil {
		return "", fmt.Errorf("fetching article %s: %w", id, err)
	}
	item, err := rec.ToContentItem()
	if err != nil {
		return "", err
	}
	if err := s.store.UpsertArticle(ctx, item); err != nil {
		return "", err
	}
	return "upserted " + item.Slug, nil
}

func (s *Server) removeArticle(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", errors.New("article event without id")
	}
	deleted, err := s.store.DeleteArticle(ctx, id)
	if err != nil {
		return "", err
	}
	if !deleted {
		return "not stored", nil
	}
	return "deleted " + id, nil
}
