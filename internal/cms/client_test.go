// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-hub/internal/httputil"
	"github.com/pdiddy/content-hub/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

const testKey = "test-key"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := NewClient(types.CMSConfig{
		APIKey:   testKey,
		BaseURL:  ts.URL,
		PageSize: 2,
	}, ts.Client())
	require.NoError(t, err)
	return c
}

func articleJSON(id, slug, published string) string {
	return fmt.Sprintf(`{"id":%q,"slug":%q,"title":"T %s","publishedAt":%q,"updatedAt":%q,"tags":"AI, Dify","category":{"id":"c1","name":"Agents","slug":"agents"},"difficultyLevel":["beginner"],"targetAudience":["engineer"],"contentType":["tutorial"],"status":["published"],"content":"<p>body</p>"}`,
		id, slug, id, published, published)
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.CMSConfig
		wantErr bool
	}{
		{"service domain and key", types.CMSConfig{ServiceDomain: "blog", APIKey: "k"}, false},
		{"base url and key", types.CMSConfig{BaseURL: "http://localhost:1234/api/v1/", APIKey: "k"}, false},
		{"missing key", types.CMSConfig{ServiceDomain: "blog"}, true},
		{"missing domain", types.CMSConfig{APIKey: "k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.cfg, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, c.baseURL[len(c.baseURL)-1:], "/")
		})
	}

	c, err := NewClient(types.CMSConfig{ServiceDomain: "blog", APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://blog.microcms.io/api/v1", c.baseURL)
	assert.Equal(t, DefaultPageSize, c.pageSize)
	assert.Equal(t, DefaultMaxRetries, c.maxRetries)
}

func TestGetArticleSendsAPIKey(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testKey, r.Header.Get("X-MICROCMS-API-KEY"))
		assert.Equal(t, "/articles/a1", r.URL.Path)
		fmt.Fprint(w, articleJSON("a1", "intro", "2024-01-10T00:00:00.000Z"))
	})

	rec, err := c.GetArticle(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "intro", rec.Slug)
	assert.Equal(t, types.Tags{"ai", "dify"}, rec.Tags)
	assert.Equal(t, SelectField("beginner"), rec.DifficultyLevel)
}

func TestGetArticleBySlug(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "slug[equals]intro", r.URL.Query().Get("filters"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		if r.URL.Query().Get("filters") == "slug[equals]intro" {
			fmt.Fprintf(w, `{"contents":[%s],"totalCount":1,"offset":0,"limit":1}`,
				articleJSON("a1", "intro", "2024-01-10T00:00:00.000Z"))
			return
		}
		fmt.Fprint(w, `{"contents":[],"totalCount":0,"offset":0,"limit":1}`)
	})

	rec, err := c.GetArticleBySlug(context.Background(), "intro")
	require.NoError(t, err)
	assert.Equal(t, "a1", rec.ID)
}

func TestGetArticleBySlugNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"contents":[],"totalCount":0,"offset":0,"limit":1}`)
	})

	_, err := c.GetArticleBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetArticleHTTPNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetArticle(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFilters(t *testing.T) {
	tests := []struct {
		name       string
		call       func(*Client) error
		wantFilter string
		wantQ      string
	}{
		{
			name: "by category",
			call: func(c *Client) error {
				_, err := c.ListArticlesByCategory(context.Background(), "c1", Query{})
				return err
			},
			wantFilter: "category[equals]c1",
		},
		{
			name: "by category keeps existing filters",
			call: func(c *Client) error {
				_, err := c.ListArticlesByCategory(context.Background(), "c1", Query{Filters: Equals("status", "published")})
				return err
			},
			wantFilter: "status[equals]published[and]category[equals]c1",
		},
		{
			name: "by tag",
			call: func(c *Client) error {
				_, err := c.ListArticlesByTag(context.Background(), "mcp", Query{})
				return err
			},
			wantFilter: "tags[contains]mcp",
		},
		{
			name: "search",
			call: func(c *Client) error {
				_, err := c.SearchArticles(context.Background(), "agents", Query{})
				return err
			},
			wantQ: "agents",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantFilter, r.URL.Query().Get("filters"))
				assert.Equal(t, tt.wantQ, r.URL.Query().Get("q"))
				fmt.Fprint(w, `{"contents":[],"totalCount":0,"offset":0,"limit":10}`)
			})
			require.NoError(t, tt.call(c))
		})
	}
}

func TestAllArticlesPaginates(t *testing.T) {
	records := []string{
		articleJSON("a1", "one", "2024-01-05T00:00:00Z"),
		articleJSON("a2", "two", "2024-01-04T00:00:00Z"),
		articleJSON("a3", "three", "2024-01-03T00:00:00Z"),
	}
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		end := offset + limit
		if end > len(records) {
			end = len(records)
		}
		body := ""
		for i, rec := range records[offset:end] {
			if i > 0 {
				body += ","
			}
			body += rec
		}
		fmt.Fprintf(w, `{"contents":[%s],"totalCount":%d,"offset":%d,"limit":%d}`, body, len(records), offset, limit)
	})

	all, err := c.AllArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "one", all[0].Slug)
	assert.Equal(t, "three", all[2].Slug)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestAllCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		fmt.Fprint(w, `{"contents":[{"id":"c1","name":"Agents","slug":"agents"},{"id":"c2","name":"RAG","slug":"rag"}],"totalCount":2,"offset":0,"limit":2}`)
	})

	cats, err := c.AllCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.Category{
		{ID: "c1", Name: "Agents", Slug: "agents"},
		{ID: "c2", Name: "RAG", Slug: "rag"},
	}, cats)
}

func TestGetCategoryBySlug(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "slug[equals]agents", r.URL.Query().Get("filters"))
		fmt.Fprint(w, `{"contents":[{"id":"c1","name":"Agents","slug":"agents"}],"totalCount":1,"offset":0,"limit":1}`)
	})

	rec, err := c.GetCategoryBySlug(context.Background(), "agents")
	require.NoError(t, err)
	assert.Equal(t, "c1", rec.ID)
}

func TestAPIErrorSurfaces(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"X-MICROCMS-API-KEY header is invalid."}`)
	})

	_, err := c.ListCategories(context.Background(), Query{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Contains(t, apiErr.Body, "invalid")
}

func TestCircuitBreakerOpens(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	for i := 0; i < breakerTrip; i++ {
		_, err := c.GetArticle(context.Background(), "a1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}

	_, err := c.GetArticle(context.Background(), "a1")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(breakerTrip), atomic.LoadInt32(&calls))
}

func TestNotFoundDoesNotTripBreaker(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for i := 0; i < breakerTrip+2; i++ {
		_, err := c.GetArticle(context.Background(), "gone")
		assert.ErrorIs(t, err, ErrNotFound)
	}
}

func TestRetriesRateLimitedRequests(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"contents":[],"totalCount":0,"offset":0,"limit":10}`)
	})

	_, err := c.ListArticles(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
