// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the content snapshot over HTTP: the article API,
// related and popular rankings, feeds, the sitemap, and the CMS webhook.
// Implements: HTTP surface (routes, middleware, revalidation);
//
//	docs/ARCHITECTURE § HTTP Surface.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/content-hub/internal/cms"
	"github.com/pdiddy/content-hub/internal/feed"
	"github.com/pdiddy/content-hub/internal/logging"
	"github.com/pdiddy/content-hub/internal/relatedness"
	"github.com/pdiddy/content-hub/internal/store"
	"github.com/pdiddy/content-hub/pkg/types"
)

const (
	// maxRelatedLimit caps the limit query parameter on ranking endpoints.
	maxRelatedLimit = 20

	// feedLimit is the number of articles included in feeds.
	feedLimit = 50

	defaultPoolSize = 100
	shutdownTimeout = 10 * time.Second
)

// Store is the read and write surface the server needs from the snapshot.
// *store.Store implements it.
type Store interface {
	Query(ctx context.Context, f store.Filter) ([]types.ContentItem, int, error)
	Article(ctx context.Context, slug string) (types.ContentItem, error)
	Recent(ctx context.Context, limit int) ([]types.ContentItem, error)
	Candidates(ctx context.Context, limit int) ([]types.ContentItem, error)
	Categories(ctx context.Context) ([]types.Category, error)
	Category(ctx context.Context, slug string) (types.Category, error)
	Tags(ctx context.Context) ([]store.TagCount, error)
	UpsertArticle(ctx context.Context, item types.ContentItem) error
	DeleteArticle(ctx context.Context, id string) (bool, error)
	ReplaceCategories(ctx context.Context, categories []types.Category) error
}

// ContentSource fetches fresh content when the CMS reports a change.
// *cms.Client implements it.
type ContentSource interface {
	GetArticle(ctx context.Context, id string) (cms.ArticleRecord, error)
	AllCategories(ctx context.Context) ([]types.Category, error)
}

// Config holds server settings.
type Config struct {
	Serve   types.ServeConfig
	Related types.RelatedConfig
	Site    types.SiteConfig
}

// Server serves the content API.
type Server struct {
	cfg    Config
	store  Store
	source ContentSource
	site   feed.Site
	now    func() time.Time
}

// New creates a server over st. source may be nil, in which case the
// revalidation webhook answers 503.
func New(cfg Config, st Store, source ContentSource) *Server {
	if cfg.Related.Limit <= 0 {
		cfg.Related.Limit = relatedness.DefaultLimit
	}
	if cfg.Related.PoolSize <= 0 {
		cfg.Related.PoolSize = defaultPoolSize
	}
	return &Server{
		cfg:    cfg,
		store:  st,
		source: source,
		site:   feed.SiteFromConfig(cfg.Site),
		now:    time.Now,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestMetrics)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(corsHandler(s.cfg.Serve.CORSOrigins))
		r.Use(rateLimiter(s.cfg.Serve.RateLimit))

		r.Get("/articles", s.handleArticles)
		r.Get("/articles/{slug}", s.handleArticle)
		r.Get("/articles/{slug}/related", s.handleRelated)
		r.Get("/popular", s.handlePopular)
		r.Get("/categories", s.handleCategories)
		r.Get("/tags", s.handleTags)
		r.Post("/revalidate", s.handleRevalidate)
	})

	r.Get("/feed.xml", s.handleRSS)
	r.Get("/atom.xml", s.handleAtom)
	r.Get("/categories/{slug}/feed.xml", s.handleCategoryRSS)
	r.Get("/sitemap.xml", s.handleSitemap)

	return r
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Serve.Addr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
