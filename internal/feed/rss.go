// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"encoding/xml"
	"time"

	"github.com/pdiddy/content-hub/internal/render"
	"github.com/pdiddy/content-hub/pkg/types"
)

type rssDoc struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	DCNS      string     `xml:"xmlns:dc,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title          cdata     `xml:"title"`
	Link           string    `xml:"link"`
	Description    cdata     `xml:"description"`
	AtomLink       atomLink  `xml:"atom:link"`
	Language       string    `xml:"language,omitempty"`
	ManagingEditor string    `xml:"managingEditor,omitempty"`
	WebMaster      string    `xml:"webMaster,omitempty"`
	LastBuildDate  string    `xml:"lastBuildDate"`
	PubDate        string    `xml:"pubDate"`
	Generator      string    `xml:"generator"`
	TTL            int       `xml:"ttl"`
	Items          []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       cdata   `xml:"title"`
	Description cdata   `xml:"description"`
	Content     cdata   `xml:"content:encoded"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	PubDate     string  `xml:"pubDate"`
	Author      string  `xml:"author,omitempty"`
	Categories  []cdata `xml:"category"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSS renders the site-wide RSS 2.0 feed. Each item carries its category and
// one category element per tag.
func RSS(site Site, items []types.ContentItem, now time.Time) ([]byte, error) {
	ch := channel(site, items, now)
	ch.Title = cdata{site.Name}
	ch.Description = cdata{site.Description}
	ch.Link = site.base()
	ch.AtomLink.Href = site.base() + "/feed.xml"
	for _, item := range items {
		ri := rssEntry(site, item)
		ri.Categories = append(ri.Categories, categoryLabel(item))
		for _, tag := range item.Tags {
			ri.Categories = append(ri.Categories, cdata{tag})
		}
		ch.Items = append(ch.Items, ri)
	}
	return marshal(rssDocument(ch))
}

// CategoryRSS renders the RSS 2.0 feed for one category. Items carry only the
// category itself.
func CategoryRSS(site Site, category types.Category, items []types.ContentItem, now time.Time) ([]byte, error) {
	ch := channel(site, items, now)
	ch.Title = cdata{site.Name + " - " + category.Name}
	ch.Description = cdata{site.Description + " - " + category.Name}
	ch.Link = site.categoryURL(category.Slug)
	ch.AtomLink.Href = site.categoryURL(category.Slug) + "/feed.xml"
	for _, item := range items {
		ri := rssEntry(site, item)
		ri.Categories = []cdata{{category.Name}}
		ch.Items = append(ch.Items, ri)
	}
	return marshal(rssDocument(ch))
}

func rssDocument(ch rssChannel) rssDoc {
	return rssDoc{
		Version:   "2.0",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		DCNS:      "http://purl.org/dc/elements/1.1/",
		AtomNS:    "http://www.w3.org/2005/Atom",
		Channel:   ch,
	}
}

// channel fills the fields shared by every RSS feed. pubDate is the newest
// item's publication date, or now for an empty feed.
func channel(site Site, items []types.ContentItem, now time.Time) rssChannel {
	pub := now
	if len(items) > 0 {
		pub = items[0].PublishedAt
	}
	return rssChannel{
		AtomLink:       atomLink{Rel: "self", Type: "application/rss+xml"},
		Language:       site.Language,
		ManagingEditor: site.author(),
		WebMaster:      site.author(),
		LastBuildDate:  rssDate(now),
		PubDate:        rssDate(pub),
		Generator:      generator,
		TTL:            TTL,
	}
}

func rssEntry(site Site, item types.ContentItem) rssItem {
	link := site.articleURL(item.Slug)
	return rssItem{
		Title:       cdata{item.Title},
		Description: cdata{item.Excerpt},
		Content:     cdata{render.FeedHTML(item, site.URL)},
		Link:        link,
		GUID:        rssGUID{IsPermaLink: true, Value: link},
		PubDate:     rssDate(item.PublishedAt),
		Author:      site.author(),
	}
}

func categoryLabel(item types.ContentItem) cdata {
	if name := item.CategoryName(); name != "" {
		return cdata{name}
	}
	return cdata{"Uncategorized"}
}
