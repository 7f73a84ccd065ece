// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/pdiddy/content-hub/internal/render"
	"github.com/pdiddy/content-hub/pkg/types"
)

type atomFeed struct {
	XMLName   xml.Name    `xml:"http://www.w3.org/2005/Atom feed"`
	Title     atomText    `xml:"title"`
	Subtitle  atomText    `xml:"subtitle"`
	Links     []atomLink  `xml:"link"`
	ID        string      `xml:"id"`
	Updated   string      `xml:"updated"`
	Rights    string      `xml:"rights,omitempty"`
	Generator string      `xml:"generator"`
	Author    atomPerson  `xml:"author"`
	Entries   []atomEntry `xml:"entry"`
}

type atomText struct {
	Type string `xml:"type,attr"`
	Text string `xml:",chardata"`
}

type atomPerson struct {
	Name  string `xml:"name"`
	Email string `xml:"email,omitempty"`
	URI   string `xml:"uri,omitempty"`
}

type atomEntry struct {
	Title      atomText       `xml:"title"`
	Link       atomLink       `xml:"link"`
	ID         string         `xml:"id"`
	Updated    string         `xml:"updated"`
	Published  string         `xml:"published"`
	Author     atomPerson     `xml:"author"`
	Summary    atomText       `xml:"summary"`
	Content    atomText       `xml:"content"`
	Categories []atomCategory `xml:"category"`
}

type atomCategory struct {
	Term  string `xml:"term,attr"`
	Label string `xml:"label,attr"`
}

// Atom renders the site-wide Atom 1.0 feed. The feed's updated time is the
// newest item's publication date, or now for an empty feed.
func Atom(site Site, items []types.ContentItem, now time.Time) ([]byte, error) {
	updated := now
	if len(items) > 0 {
		updated = items[0].PublishedAt
	}
	author := atomPerson{Name: site.Name, Email: site.AuthorEmail}

	feed := atomFeed{
		Title:    atomText{Type: "text", Text: site.Name},
		Subtitle: atomText{Type: "text", Text: site.Description},
		Links: []atomLink{
			{Href: site.base() + "/atom.xml", Rel: "self", Type: "application/atom+xml"},
			{Href: site.base(), Rel: "alternate", Type: "text/html"},
		},
		ID:        site.base() + "/",
		Updated:   atomDate(updated),
		Rights:    fmt.Sprintf("© %d %s", now.Year(), site.Name),
		Generator: generator,
		Author:    atomPerson{Name: site.Name, Email: site.AuthorEmail, URI: site.base()},
	}

	for _, item := range items {
		link := site.articleURL(item.Slug)
		entry := atomEntry{
			Title:     atomText{Type: "html", Text: item.Title},
			Link:      atomLink{Href: link, Rel: "alternate", Type: "text/html"},
			ID:        link,
			Updated:   atomDate(item.LastModified()),
			Published: atomDate(item.PublishedAt),
			Author:    author,
			Summary:   atomText{Type: "html", Text: item.Excerpt},
			Content:   atomText{Type: "html", Text: render.FeedHTML(item, site.URL)},
		}
		label := categoryLabel(item).Text
		entry.Categories = append(entry.Categories, atomCategory{Term: label, Label: label})
		for _, tag := range item.Tags {
			entry.Categories = append(entry.Categories, atomCategory{Term: tag, Label: tag})
		}
		feed.Entries = append(feed.Entries, entry)
	}
	return marshal(feed)
}

func atomDate(t time.Time) string { return t.UTC().Format(time.RFC3339) }
