// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package feed renders the site's syndication documents: the RSS 2.0 and
// Atom 1.0 feeds, per-category RSS feeds, and the XML sitemap.
// Implements: feeds and sitemap; docs/ARCHITECTURE § Syndication.
//
// Every function is pure: callers pass the site description, the articles
// (newest first), and the generation time.
package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/content-hub/pkg/types"
)

// TTL is the RSS time-to-live in minutes.
const TTL = 60

// rfc822 is the RSS date layout, always rendered in GMT.
const rfc822 = "Mon, 02 Jan 2006 15:04:05 GMT"

const generator = "content-hub"

// Site is the public site a feed describes.
type Site struct {
	URL         string
	Name        string
	Description string
	Language    string
	AuthorEmail string
}

// SiteFromConfig converts the site settings.
func SiteFromConfig(cfg types.SiteConfig) Site {
	return Site{
		URL:         strings.TrimRight(cfg.URL, "/"),
		Name:        cfg.Name,
		Description: cfg.Description,
		Language:    cfg.Language,
		AuthorEmail: cfg.AuthorEmail,
	}
}

func (s Site) base() string { return strings.TrimRight(s.URL, "/") }

func (s Site) articleURL(slug string) string { return s.base() + "/articles/" + slug }

func (s Site) categoryURL(slug string) string { return s.base() + "/categories/" + slug }

// author renders "email (name)" as RSS expects, or "" when no email is set.
func (s Site) author() string {
	if s.AuthorEmail == "" {
		return ""
	}
	return fmt.Sprintf("%s (%s)", s.AuthorEmail, s.Name)
}

type cdata struct {
	Text string `xml:",cdata"`
}

func marshal(doc any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding xml: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func rssDate(t time.Time) string { return t.UTC().Format(rfc822) }
