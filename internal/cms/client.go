// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cms is a client for the microCMS content API that backs the blog.
// Implements: content source (article and category retrieval, pagination,
// image URLs); docs/ARCHITECTURE § Content Source.
//
// Every request is rate limited, retried on 429 and 503 by httputil, and
// guarded by a circuit breaker so a failing CMS does not stall sync or the
// webhook handler.
package cms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/pdiddy/content-hub/internal/httputil"
	"github.com/pdiddy/content-hub/internal/logging"
	"github.com/pdiddy/content-hub/internal/metrics"
	"github.com/pdiddy/content-hub/pkg/types"
)

// Defaults applied by NewClient for zero config values.
const (
	DefaultTimeout    = 10 * time.Second
	DefaultMaxRetries = 3
	DefaultRateLimit  = 5.0
	DefaultPageSize   = 100
	DefaultUserAgent  = "content-hub/0.1"

	// maxPageSize is the largest limit the list endpoints accept.
	maxPageSize = 100

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 512
)

const (
	endpointArticles   = "articles"
	endpointCategories = "categories"
)

var (
	// ErrNotFound is returned when the requested content does not exist.
	ErrNotFound = errors.New("content not found")

	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("cms unavailable")
)

// APIError is a non-success response from the content API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cms API returned HTTP %d: %s", e.Status, e.Body)
}

// Client talks to one microCMS service.
type Client struct {
	baseURL    string
	apiKey     string
	userAgent  string
	maxRetries int
	pageSize   int

	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewClient builds a client from cfg. A nil httpClient gets a client with
// cfg.Timeout. The service domain and API key are required unless BaseURL
// is set, in which case only the key is.
func NewClient(cfg types.CMSConfig, httpClient *http.Client) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("cms: API key is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		if cfg.ServiceDomain == "" {
			return nil, fmt.Errorf("cms: service domain is required")
		}
		baseURL = fmt.Sprintf("https://%s.microcms.io/api/v1", cfg.ServiceDomain)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.PageSize <= 0 || cfg.PageSize > maxPageSize {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		maxRetries: cfg.MaxRetries,
		pageSize:   cfg.PageSize,
		http:       httpClient,
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    newBreaker("cms-api"),
	}, nil
}

// get fetches baseURL/path with params and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, endpoint, path, params)
	})
	recordBreakerResult(c.breaker, err)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-MICROCMS-API-KEY", c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, c.http, req, c.maxRetries)
	if err != nil {
		metrics.RecordCMSRequest(endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("requesting %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	metrics.RecordCMSRequest(endpoint, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", endpoint, err)
	}
	logging.Debug().Str("endpoint", endpoint).Int("bytes", len(body)).Msg("cms response")
	return body, nil
}

// --- articles ---

// ListArticles returns one page of articles.
func (c *Client) ListArticles(ctx context.Context, q Query) (ArticleList, error) {
	var list ArticleList
	if err := c.get(ctx, endpointArticles, endpointArticles, q.Values(), &list); err != nil {
		return ArticleList{}, fmt.Errorf("listing articles: %w", err)
	}
	return list, nil
}

// GetArticle returns one article by content ID.
func (c *Client) GetArticle(ctx context.Context, id string) (ArticleRecord, error) {
	var rec ArticleRecord
	if err := c.get(ctx, endpointArticles, endpointArticles+"/"+url.PathEscape(id), nil, &rec); err != nil {
		return ArticleRecord{}, fmt.Errorf("getting article %s: %w", id, err)
	}
	return rec, nil
}

// GetArticleBySlug returns the article with the given slug, or ErrNotFound.
func (c *Client) GetArticleBySlug(ctx context.Context, slug string) (ArticleRecord, error) {
	list, err := c.ListArticles(ctx, Query{Filters: Equals("slug", slug), Limit: 1})
	if err != nil {
		return ArticleRecord{}, err
	}
	if len(list.Contents) == 0 {
		return ArticleRecord{}, fmt.Errorf("article %q: %w", slug, ErrNotFound)
	}
	return list.Contents[0], nil
}

// ListArticlesByCategory returns articles in a category. Filters already in q
// are kept and combined with the category filter.
func (c *Client) ListArticlesByCategory(ctx context.Context, categoryID string, q Query) (ArticleList, error) {
	q.Filters = And(q.Filters, Equals("category", categoryID))
	return c.ListArticles(ctx, q)
}

// ListArticlesByTag returns articles whose tag field contains tag.
func (c *Client) ListArticlesByTag(ctx context.Context, tag string, q Query) (ArticleList, error) {
	q.Filters = And(q.Filters, Contains("tags", tag))
	return c.ListArticles(ctx, q)
}

// SearchArticles runs a full-text search.
func (c *Client) SearchArticles(ctx context.Context, keyword string, q Query) (ArticleList, error) {
	q.Q = keyword
	return c.ListArticles(ctx, q)
}

// AllArticles pages through every article, newest first.
func (c *Client) AllArticles(ctx context.Context) ([]ArticleRecord, error) {
	var all []ArticleRecord
	for offset := 0; ; {
		page, err := c.ListArticles(ctx, Query{
			Limit:  c.pageSize,
			Offset: offset,
			Orders: "-publishedAt",
			Depth:  1,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Contents...)
		offset += len(page.Contents)
		if len(page.Contents) == 0 || offset >= page.TotalCount {
			return all, nil
		}
	}
}

// --- categories ---

// ListCategories returns one page of categories.
func (c *Client) ListCategories(ctx context.Context, q Query) (CategoryList, error) {
	var list CategoryList
	if err := c.get(ctx, endpointCategories, endpointCategories, q.Values(), &list); err != nil {
		return CategoryList{}, fmt.Errorf("listing categories: %w", err)
	}
	return list, nil
}

// AllCategories pages through every category.
func (c *Client) AllCategories(ctx context.Context) ([]types.Category, error) {
	var all []types.Category
	for offset := 0; ; {
		page, err := c.ListCategories(ctx, Query{Limit: c.pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, rec := range page.Contents {
			all = append(all, rec.ToCategory())
		}
		offset += len(page.Contents)
		if len(page.Contents) == 0 || offset >= page.TotalCount {
			return all, nil
		}
	}
}

// GetCategory returns one category by content ID.
func (c *Client) GetCategory(ctx context.Context, id string) (CategoryRecord, error) {
	var rec CategoryRecord
	if err := c.get(ctx, endpointCategories, endpointCategories+"/"+url.PathEscape(id), nil, &rec); err != nil {
		return CategoryRecord{}, fmt.Errorf("getting category %s: %w", id, err)
	}
	return rec, nil
}

// GetCategoryBySlug returns the category with the given slug, or ErrNotFound.
func (c *Client) GetCategoryBySlug(ctx context.Context, slug string) (CategoryRecord, error) {
	list, err := c.ListCategories(ctx, Query{Filters: Equals("slug", slug), Limit: 1})
	if err != nil {
		return CategoryRecord{}, err
	}
	if len(list.Contents) == 0 {
		return CategoryRecord{}, fmt.Errorf("category %q: %w", slug, ErrNotFound)
	}
	return list.Contents[0], nil
}
