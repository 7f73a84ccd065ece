// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"encoding/xml"
	"time"

	"github.com/pdiddy/content-hub/pkg/types"
)

type urlSet struct {
	XMLName xml.Name     `xml:"http://www.sitemaps.org/schemas/sitemap/0.9 urlset"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

// Sitemap renders the XML sitemap: the home page (1.0, daily), the article
// index (0.9, daily), each article (0.8, weekly, last modified at its update
// time), and each category page (0.6, daily).
func Sitemap(site Site, items []types.ContentItem, categories []types.Category, now time.Time) ([]byte, error) {
	stamp := atomDate(now)
	set := urlSet{URLs: []sitemapURL{
		{Loc: site.base(), LastMod: stamp, ChangeFreq: "daily", Priority: "1.0"},
		{Loc: site.base() + "/articles", LastMod: stamp, ChangeFreq: "daily", Priority: "0.9"},
	}}
	for _, item := range items {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        site.articleURL(item.Slug),
			LastMod:    atomDate(item.LastModified()),
			ChangeFreq: "weekly",
			Priority:   "0.8",
		})
	}
	for _, c := range categories {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        site.categoryURL(c.Slug),
			LastMod:    stamp,
			ChangeFreq: "daily",
			Priority:   "0.6",
		})
	}
	return marshal(set)
}
