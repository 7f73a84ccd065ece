// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"bytes"
	"encoding/xml"
	"testing"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/rss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/content-hub/pkg/types"
)

var (
	testNow  = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	testSite = Site{
		URL:         "https://blog.example.com",
		Name:        "Practical AI",
		Description: "Hands-on AI engineering notes",
		Language:    "ja",
		AuthorEmail: "noreply@example.com",
	}
	agents = types.Category{ID: "c1", Name: "Agents", Slug: "agents"}
)

func testItems() []types.ContentItem {
	return []types.ContentItem{
		{
			ID:          "a2",
			Slug:        "mcp-servers",
			Title:       "Writing MCP servers",
			Excerpt:     "Expose tools to models",
			Content:     "<p>MCP body</p>",
			CategoryID:  agents.ID,
			Category:    &agents,
			Tags:        types.NewTags("mcp", "claude"),
			PublishedAt: time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC),
			UpdatedAt:   time.Date(2024, 2, 25, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:          "a1",
			Slug:        "dify-intro",
			Title:       "Dify <intro> & setup",
			Excerpt:     "Getting started",
			Content:     "<p>Dify body</p>",
			Tags:        types.Tags{},
			PublishedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestRSS(t *testing.T) {
	data, err := RSS(testSite, testItems(), testNow)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte(xml.Header)))

	parsed, err := gofeed.NewParser().ParseString(string(data))
	require.NoError(t, err)
	assert.Equal(t, "rss", parsed.FeedType)
	assert.Equal(t, "Practical AI", parsed.Title)
	assert.Equal(t, "https://blog.example.com", parsed.Link)
	assert.Equal(t, "ja", parsed.Language)
	require.Len(t, parsed.Items, 2)

	first := parsed.Items[0]
	assert.Equal(t, "Writing MCP servers", first.Title)
	assert.Equal(t, "https://blog.example.com/articles/mcp-servers", first.Link)
	assert.Equal(t, "https://blog.example.com/articles/mcp-servers", first.GUID)
	assert.Equal(t, "Expose tools to models", first.Description)
	assert.Contains(t, first.Content, "<p>MCP body</p>")
	assert.ElementsMatch(t, []string{"Agents", "claude", "mcp"}, first.Categories)
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, first.PublishedParsed.Equal(time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)))

	second := parsed.Items[1]
	assert.Equal(t, "Dify <intro> & setup", second.Title)
	assert.Equal(t, []string{"Uncategorized"}, second.Categories)

	raw, err := (&rss.Parser{}).Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "60", raw.TTL)
	assert.Equal(t, "Tue, 20 Feb 2024 09:00:00 GMT", raw.PubDate)
	assert.Equal(t, "Fri, 01 Mar 2024 12:00:00 GMT", raw.LastBuildDate)
	assert.Equal(t, "noreply@example.com (Practical AI)", raw.ManagingEditor)
}

func TestRSSEmpty(t *testing.T) {
	data, err := RSS(testSite, nil, testNow)
	require.NoError(t, err)

	raw, err := (&rss.Parser{}).Parse(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Empty(t, raw.Items)
	assert.Equal(t, raw.LastBuildDate, raw.PubDate)
}

func TestCategoryRSS(t *testing.T) {
	items := testItems()[:1]
	data, err := CategoryRSS(testSite, agents, items, testNow)
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().ParseString(string(data))
	require.NoError(t, err)
	assert.Equal(t, "Practical AI - Agents", parsed.Title)
	assert.Equal(t, "https://blog.example.com/categories/agents", parsed.Link)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, []string{"Agents"}, parsed.Items[0].Categories)
	assert.Contains(t, string(data), `href="https://blog.example.com/categories/agents/feed.xml"`)
}

func TestAtom(t *testing.T) {
	data, err := Atom(testSite, testItems(), testNow)
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().ParseString(string(data))
	require.NoError(t, err)
	assert.Equal(t, "atom", parsed.FeedType)
	assert.Equal(t, "Practical AI", parsed.Title)
	assert.Equal(t, "Hands-on AI engineering notes", parsed.Description)
	require.NotNil(t, parsed.UpdatedParsed)
	assert.True(t, parsed.UpdatedParsed.Equal(time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)))
	require.Len(t, parsed.Items, 2)

	first := parsed.Items[0]
	assert.Equal(t, "https://blog.example.com/articles/mcp-servers", first.Link)
	assert.Equal(t, "https://blog.example.com/articles/mcp-servers", first.GUID)
	require.NotNil(t, first.UpdatedParsed)
	assert.True(t, first.UpdatedParsed.Equal(time.Date(2024, 2, 25, 9, 0, 0, 0, time.UTC)))
	require.NotNil(t, first.PublishedParsed)
	assert.True(t, first.PublishedParsed.Equal(time.Date(2024, 2, 20, 9, 0, 0, 0, time.UTC)))
	assert.ElementsMatch(t, []string{"Agents", "claude", "mcp"}, first.Categories)
	assert.Contains(t, first.Content, "MCP body")

	// An item without an update time reports its publication time.
	second := parsed.Items[1]
	require.NotNil(t, second.UpdatedParsed)
	assert.True(t, second.UpdatedParsed.Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
}

func TestSitemap(t *testing.T) {
	cats := []types.Category{agents, {ID: "c2", Name: "RAG", Slug: "rag"}}
	data, err := Sitemap(testSite, testItems(), cats, testNow)
	require.NoError(t, err)

	var set urlSet
	require.NoError(t, xml.Unmarshal(data, &set))
	require.Len(t, set.URLs, 6)

	tests := []struct {
		loc      string
		lastmod  string
		freq     string
		priority string
	}{
		{"https://blog.example.com", "2024-03-01T12:00:00Z", "daily", "1.0"},
		{"https://blog.example.com/articles", "2024-03-01T12:00:00Z", "daily", "0.9"},
		{"https://blog.example.com/articles/mcp-servers", "2024-02-25T09:00:00Z", "weekly", "0.8"},
		{"https://blog.example.com/articles/dify-intro", "2024-01-10T00:00:00Z", "weekly", "0.8"},
		{"https://blog.example.com/categories/agents", "2024-03-01T12:00:00Z", "daily", "0.6"},
		{"https://blog.example.com/categories/rag", "2024-03-01T12:00:00Z", "daily", "0.6"},
	}
	for i, tt := range tests {
		t.Run(tt.loc, func(t *testing.T) {
			got := set.URLs[i]
			assert.Equal(t, tt.loc, got.Loc)
			assert.Equal(t, tt.lastmod, got.LastMod)
			assert.Equal(t, tt.freq, got.ChangeFreq)
			assert.Equal(t, tt.priority, got.Priority)
		})
	}
}

func TestSiteFromConfigTrimsSlash(t *testing.T) {
	site := SiteFromConfig(types.SiteConfig{URL: "https://blog.example.com/", Name: "x"})
	assert.Equal(t, "https://blog.example.com", site.URL)
	assert.Equal(t, "https://blog.example.com/articles/a", site.articleURL("a"))
	assert.Empty(t, Site{}.author())
}
