// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/content-hub/internal/feed"
	"github.com/pdiddy/content-hub/internal/logging"
	"github.com/pdiddy/content-hub/internal/store"
)

const (
	feedCache    = "public, max-age=3600, stale-while-revalidate=86400"
	sitemapCache = "public, max-age=86400"
)

func (s *Server) handleRSS(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Recent(r.Context(), feedLimit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	data, err := feed.RSS(s.site, items, s.now())
	if err != nil {
		s.feedError(w, err)
		return
	}
	writeXML(w, "application/rss+xml; charset=utf-8", feedCache, data)
}

func (s *Server) handleAtom(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.Recent(r.Context(), feedLimit)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	data, err := feed.Atom(s.site, items, s.now())
	if err != nil {
		s.feedError(w, err)
		return
	}
	writeXML(w, "application/atom+xml; charset=utf-8", feedCache, data)
}

func (s *Server) handleCategoryRSS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	category, err := s.store.Category(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	items, _, err := s.store.Query(ctx, store.Filter{CategorySlug: category.Slug, Limit: feedLimit})
	if err != nil {
		writeStoreError(w, err)
		return
	}
	data, err := feed.CategoryRSS(s.site, category, items, s.now())
	if err != nil {
		s.feedError(w, err)
		return
	}
	writeXML(w, "application/rss+xml; charset=utf-8", feedCache, data)
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	items, err := s.store.Recent(ctx, 0)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	categories, err := s.store.Categories(ctx)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	data, err := feed.Sitemap(s.site, items, categories, s.now())
	if err != nil {
		s.feedError(w, err)
		return
	}
	writeXML(w, "application/xml; charset=utf-8", sitemapCache, data)
}

func (s *Server) feedError(w http.ResponseWriter, err error) {
	logging.Err(err).Msg("rendering feed")
	http.Error(w, "feed unavailable", http.StatusInternalServerError)
}
