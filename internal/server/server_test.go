// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-hub/internal/cms"
	"github.com/pdiddy/content-hub/internal/relatedness"
	"github.com/pdiddy/content-hub/internal/render"
	"github.com/pdiddy/content-hub/internal/search"
	"github.com/pdiddy/content-hub/internal/store"
	"github.com/pdiddy/content-hub/pkg/types"
)

// --- test helpers ---

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	articles   map[string]cms.ArticleRecord
	categories []types.Category
}

func (f *fakeSource) GetArticle(_ context.Context, id string) (cms.ArticleRecord, error) {
	rec, ok := f.articles[id]
	if !ok {
		return cms.ArticleRecord{}, cms.ErrNotFound
	}
	return rec, nil
}

func (f *fakeSource) AllCategories(context.Context) ([]types.Category, error) {
	return f.categories, nil
}

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	require.NoError(t, st.ReplaceCategories(ctx, []types.Category{
		{ID: "c1", Name: "Agents", Slug: "agents"},
		{ID: "c2", Name: "RAG", Slug: "rag"},
	}))

	items := []types.ContentItem{
		{ID: "t", Slug: "dify-intro", Title: "Intro to Dify", CategoryID: "c1", Tags: types.NewTags("dify", "agent"),
			PublishedAt: day0, DifficultyLevel: types.DifficultyBeginner, TargetAudience: types.AudienceEngineer,
			Content: "<h2>Setup</h2><p>Dify body</p><h3>Install</h3>"},
		{ID: "a", Slug: "dify-advanced", Title: "Advanced Dify", CategoryID: "c1", Tags: types.NewTags("dify", "agent"),
			PublishedAt: day0.AddDate(0, 0, -3), DifficultyLevel: types.DifficultyBeginner, TargetAudience: types.AudienceEngineer},
		{ID: "b", Slug: "mcp-servers", Title: "Writing MCP servers", CategoryID: "c1", Tags: types.NewTags("mcp", "agent"),
			PublishedAt: day0.AddDate(0, 0, -10), DifficultyLevel: types.DifficultyAdvanced, TargetAudience: types.AudienceEngineer},
		{ID: "c", Slug: "rag-eval", Title: "Evaluating RAG", CategoryID: "c2", Tags: types.NewTags("rag"),
			PublishedAt: day0.AddDate(0, 0, -60), DifficultyLevel: types.DifficultyIntermediate, TargetAudience: types.AudienceBoth,
			ContentType: types.ContentResearch},
		{ID: "d", Slug: "draft-post", Title: "Unfinished", CategoryID: "c1", Tags: types.NewTags("dify"),
			PublishedAt: day0.AddDate(0, 0, 1), DifficultyLevel: types.DifficultyBeginner, TargetAudience: types.AudienceEngineer,
			Status: types.StatusDraft},
	}
	for _, it := range items {
		require.NoError(t, st.UpsertArticle(ctx, it))
	}
	return st
}

func testServer(t *testing.T, cfg Config, source ContentSource) (*httptest.Server, *store.Store) {
	t.Helper()
	st := seedStore(t)
	if cfg.Site.URL == "" {
		cfg.Site = types.SiteConfig{URL: "https://blog.example.com", Name: "Practical AI", Language: "ja"}
	}
	srv := New(cfg, st, source)
	srv.now = func() time.Time { return day0 }
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func post(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func slugs(items []types.ContentItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Slug
	}
	return out
}

// --- routes ---

func TestHealthz(t *testing.T) {
	ts, _ := testServer(t, Config{}, nil)
	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestArticles(t *testing.T) {
	ts, _ := testServer(t, Config{}, nil)

	tests := []struct {
		name  string
		query string
		want  []string
		total int
	}{
		{"all published", "", []string{"dify-intro", "dify-advanced", "mcp-servers", "rag-eval"}, 4},
		{"category", "?category=rag", []string{"rag-eval"}, 1},
		{"tags", "?tags=mcp,rag", []string{"mcp-servers", "rag-eval"}, 2},
		{"keyword", "?q=dify", []string{"dify-intro", "dify-advanced"}, 2},
		{"content type", "?contentType=research", []string{"rag-eval"}, 1},
		{"sorted", "?sortBy=title&sortOrder=asc", []string{"dify-advanced", "rag-eval", "dify-intro", "mcp-servers"}, 4},
		{"page past end", "?page=2", []string{}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts, "/api/articles"+tt.query)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			page := decode[search.Page](t, body)
			assert.Equal(t, tt.want, slugs(page.Items))
			assert.Equal(t, tt.total, page.Total)
			assert.Equal(t, search.DefaultLimit, page.Limit)
		})
	}
}

func TestArticle(t *testing.T) {
	ts, _ := testServer(t, Config{}, nil)

	resp, body := get(t, ts, "/api/articles/dify-intro")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item := decode[types.ContentItem](t, body)
	assert.Equal(t, "Intro to Dify", item.Title)
	require.NotNil(t, item.Category)
	assert.Equal(t, "agents", item.Category.Slug)

	detail := decode[articleDetail](t, body)
	assert.Equal(t, "Setup Dify body Install", detail.Description)
	assert.Equal(t, []render.Heading{
		{Level: 2, Text: "Setup", ID: "setup"},
		{Level: 3, Text: "Install", ID: "install"},
	}, detail.Headings)

	for _, slug := range []string{"missing", "draft-post"} {
		resp, body = get(t, ts, "/api/articles/"+slug)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, slug)
		assert.JSONEq(t, `{"error":"not found"}`, string(body))
	}
}

func TestRelated(t *testing.T) {
	ts, _ := testServer(t, Config{}, nil)

	resp, body := get(t, ts, "/api/articles/dify-intro/related")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[[]relatedItem](t, body)
	require.Len(t, got, 3)

	var (
		gotSlugs  []string
		gotLevels []relatedness.Level
	)
	for _, r := range got {
		gotSlugs = append(gotSlugs, r.Article.Slug)
		gotLevels = append(gotLevels, r.Level)
		assert.Empty(t, r.Article.Content)
		assert.Equal(t, relatedness.Classify(r.Score).Label, r.Label)
	}
	assert.Equal(t, []string{"dify-advanced", "mcp-servers", "rag-eval"}, gotSlugs)
	assert.Equal(t, []relatedness.Level{relatedness.LevelHigh, relatedness.LevelMedium, relatedness.LevelLow}, gotLevels)
	assert.Equal(t, 30.0, got[0].Breakdown.Category)
	assert.Equal(t, 40.0, got[0].Breakdown.TagOverlap)
	assert.Greater(t, got[0].Score, got[1].Score)

	resp, body = get(t, ts, "/api/articles/dify-intro/related?limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]relatedItem](t, body), 1)

	resp, body = get(t, ts, "/api/articles/dify-intro/related?limit=0")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	resp, _ = get(t, ts, "/api/articles/missing/related")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPopular(t *testing.T) {
	ts, _ := testServer(t, Config{}, nil)

	resp, body := get(t, ts, "/api/popular?limit=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"dify-intro", "dify-advanced"}, slugs(decode[[]types.ContentItem](t, body)))

	_, body = get(t, ts, "/api/popular")
	assert.Len(t, decode[[]types.ContentItem](t, body), 4)
}

func TestCategoriesAndTags(t *testing.T) {
	ts, _ := testServer(t, Config{}, nil)

	_, body := get(t, ts, "/api/categories")
	cats := decode[[]types.Category](t, body)
	require.Len(t, cats, 2)
	assert.Equal(t, "agents", cats[0].Slug)

	_, body = get(t, ts, "/api/tags")
	tags := decode[[]store.TagCount](t, body)
	require.NotEmpty(t, tags)
	assert.Equal(t, store.TagCount{Tag: "agent", Count: 3}, tags[0])
}

func TestFeeds(t *testing.T) {
	ts, _ := testServer(t, Config{}, nil)

	tests := []struct {
		path     string
		feedType string
		items    int
	}{
		{"/feed.xml", "rss", 4},
		{"/atom.xml", "atom", 4},
		{"/categories/agents/feed.xml", "rss", 3},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, ts, tt.path)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Cache-Control"), "max-age=3600")

			parsed, err := gofeed.NewParser().ParseString(string(body))
			require.NoError(t, err)
			assert.Equal(t, tt.feedType, parsed.FeedType)
			assert.Len(t, parsed.Items, tt.items)
		})
	}

	resp, _ := get(t, ts, "/categories/unknown/feed.xml")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := get(t, ts, "/sitemap.xml")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")
	assert.Contains(t, string(body), "<loc>https://blog.example.com/articles/rag-eval</loc>")
	assert.NotContains(t, string(body), "draft-post")
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := testServer(t, Config{}, nil)
	get(t, ts, "/api/articles/dify-intro")

	resp, body := get(t, ts, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `content_hub_api_requests_total{method="GET",route="/api/articles/{slug}",status="200"}`)
}

func TestRateLimit(t *testing.T) {
	ts, _ := testServer(t, Config{Serve: types.ServeConfig{RateLimit: 2}}, nil)

	for i := 0; i < 2; i++ {
		resp, _ := get(t, ts, "/api/categories")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, body := get(t, ts, "/api/categories")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, string(body))

	// Feeds are outside the API rate limit.
	resp, _ = get(t, ts, "/feed.xml")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORS(t *testing.T) {
	ts, _ := testServer(t, Config{Serve: types.ServeConfig{CORSOrigins: []string{"https://blog.example.com"}}}, nil)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/categories", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://blog.example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://blog.example.com", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

// --- revalidation ---

func webhookSource() *fakeSource {
	return &fakeSource{
		articles: map[string]cms.ArticleRecord{
			"a": {ID: "a", Slug: "dify-advanced", Title: "Advanced Dify, revised",
				PublishedAt: "2024-02-27T00:00:00Z", UpdatedAt: "2024-03-02T00:00:00Z",
				Tags: types.NewTags("dify"), DifficultyLevel: "beginner", TargetAudience: "engineer"},
			"n": {ID: "n", Slug: "brand-new", Title: "Brand new",
				PublishedAt: "2024-03-05T00:00:00Z", Tags: types.NewTags("new"),
				DifficultyLevel: "advanced", TargetAudience: "enterprise"},
			"bad": {ID: "bad", Slug: "bad"},
		},
		categories: []types.Category{{ID: "c1", Name: "Agents", Slug: "agents"}},
	}
}

func TestRevalidate(t *testing.T) {
	cfg := Config{Serve: types.ServeConfig{RevalidateSecret: "s3cret"}}
	ts, st := testServer(t, cfg, webhookSource())
	ctx := context.Background()

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantAction string
	}{
		{"wrong secret", "/api/revalidate?secret=nope", `{"api":"articles","type":"edit","id":"a"}`, http.StatusUnauthorized, ""},
		{"missing secret", "/api/revalidate", `{"api":"articles","type":"edit","id":"a"}`, http.StatusUnauthorized, ""},
		{"bad body", "/api/revalidate?secret=s3cret", `{`, http.StatusBadRequest, ""},
		{"edit refetches", "/api/revalidate?secret=s3cret", `{"api":"articles","type":"edit","id":"a"}`, http.StatusOK, "upserted dify-advanced"},
		{"new article", "/api/revalidate?secret=s3cret", `{"api":"articles","type":"new","id":"n"}`, http.StatusOK, "upserted brand-new"},
		{"unpublished upstream", "/api/revalidate?secret=s3cret", `{"api":"articles","type":"edit","id":"b"}`, http.StatusOK, "deleted b"},
		{"delete", "/api/revalidate?secret=s3cret", `{"api":"articles","type":"delete","id":"c"}`, http.StatusOK, "deleted c"},
		{"delete unknown", "/api/revalidate?secret=s3cret", `{"api":"articles","type":"delete","id":"zzz"}`, http.StatusOK, "not stored"},
		{"malformed upstream", "/api/revalidate?secret=s3cret", `{"api":"articles","type":"edit","id":"bad"}`, http.StatusInternalServerError, ""},
		{"category event", "/api/revalidate?secret=s3cret", `{"api":"categories","type":"delete","id":"c2"}`, http.StatusOK, "categories reloaded"},
		{"other api", "/api/revalidate?secret=s3cret", `{"api":"authors","type":"edit","id":"x"}`, http.StatusOK, "ignored"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, ts, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, resp.StatusCode, string(body))
			if tt.wantStatus == http.StatusOK {
				got := decode[revalidateResponse](t, body)
				assert.True(t, got.Revalidated)
				assert.Equal(t, tt.wantAction, got.Action)
			}
		})
	}

	item, err := st.Article(ctx, "dify-advanced")
	require.NoError(t, err)
	assert.Equal(t, "Advanced Dify, revised", item.Title)

	_, err = st.Article(ctx, "brand-new")
	assert.NoError(t, err)

	for _, gone := range []string{"mcp-servers", "rag-eval"} {
		_, err = st.Article(ctx, gone)
		assert.ErrorIs(t, err, store.ErrNotFound, gone)
	}

	cats, err := st.Categories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestRevalidateWithoutSecretOrSource(t *testing.T) {
	ts, _ := testServer(t, Config{}, webhookSource())
	resp, _ := post(t, ts, "/api/revalidate", `{"api":"articles","type":"edit","id":"a"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ts, _ = testServer(t, Config{}, nil)
	resp, _ = post(t, ts, "/api/revalidate", `{"api":"articles","type":"edit","id":"a"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestLimitParam(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 6},
		{"abc", 6},
		{"3", 3},
		{"-1", 0},
		{"0", 0},
		{"50", 20},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?limit="+tt.raw, nil)
			assert.Equal(t, tt.want, limitParam(r, 6, 20))
		})
	}
}
