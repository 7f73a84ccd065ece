// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/content-hub/internal/logging"
	"github.com/pdiddy/content-hub/internal/metrics"
	"github.com/pdiddy/content-hub/internal/relatedness"
	"github.com/pdiddy/content-hub/internal/render"
	"github.com/pdiddy/content-hub/internal/search"
	"github.com/pdiddy/content-hub/internal/store"
	"github.com/pdiddy/content-hub/pkg/types"
)

// relatedItem is one entry of the related articles response.
type relatedItem struct {
	Article   types.ContentItem     `json:"article"`
	Score     float64               `json:"score"`
	Breakdown relatedness.Breakdown `json:"breakdown"`
	Level     relatedness.Level     `json:"level"`
	Label     string                `json:"label"`
}

// filterFromOptions maps URL search options onto a store query.
func filterFromOptions(opts search.Options) store.Filter {
	f := opts.Filters
	return store.Filter{
		CategorySlug:    f.Category,
		Tags:            f.Tags,
		ContentType:     f.ContentType,
		TargetAudience:  f.TargetAudience,
		DifficultyLevel: f.DifficultyLevel,
		Keyword:         f.Query,
		SortBy:          opts.SortBy,
		SortOrder:       opts.SortOrder,
		Limit:           opts.Limit,
		Offset:          opts.Offset(),
	}
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	opts := search.ParseParams(r.URL.Query())
	items, total, err := s.store.Query(r.Context(), filterFromOptions(opts))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, search.Page{
		Items:      items,
		Total:      total,
		Page:       opts.Page,
		Limit:      opts.Limit,
		TotalPages: search.TotalPages(total, opts.Limit),
	})
}

// articleDetail is the single-article payload: the stored item plus its
// meta description and table of contents.
type articleDetail struct {
	types.ContentItem
	Description string           `json:"description"`
	Headings    []render.Heading `json:"headings"`
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.Article(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	description := item.Excerpt
	if description == "" {
		description = render.MetaDescription(item.Content, 0)
	}
	writeJSON(w, http.StatusOK, articleDetail{
		ContentItem: item,
		Description: description,
		Headings:    render.Headings(item.Content),
	})
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := limitParam(r, s.cfg.Related.Limit, maxRelatedLimit)

	target, err := s.store.Article(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	pool, err := s.store.Candidates(ctx, s.cfg.Related.PoolSize)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	ranking, err := relatedness.RankRelated(target, pool, limit)
	if err != nil {
		if errors.Is(err, relatedness.ErrMalformedItem) {
			logging.Warn().Err(err).Str("slug", target.Slug).Msg("cannot rank malformed article")
			writeError(w, http.StatusUnprocessableEntity, "article cannot be ranked")
			return
		}
		writeStoreError(w, err)
		return
	}
	metrics.RecordRanking(len(pool), len(ranking.Skipped))
	for _, sk := range ranking.Skipped {
		logging.Warn().Err(sk.Err).Str("slug", sk.Slug).Msg("skipped malformed candidate")
	}

	out := make([]relatedItem, 0, len(ranking.Scores))
	for _, sc := range ranking.Scores {
		c := relatedness.Classify(sc.Total)
		out = append(out, relatedItem{
			Article:   sc.Item,
			Score:     sc.Total,
			Breakdown: sc.Breakdown,
			Level:     c.Level,
			Label:     c.Label,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	limit := limitParam(r, relatedness.DefaultLimit, maxRelatedLimit)
	if limit == 0 {
		writeJSON(w, http.StatusOK, []types.ContentItem{})
		return
	}
	recent, err := s.store.Candidates(r.Context(), min(limit*2, maxRelatedLimit))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	metrics.RecordPopular()
	writeJSON(w, http.StatusOK, relatedness.RankPopular(recent, limit))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.Categories(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.Tags(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}
