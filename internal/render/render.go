// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render derives text artifacts from article HTML: plain text,
// reading time, meta descriptions, heading outlines, and the HTML body used
// in feed entries.
// Implements: content text helpers; docs/ARCHITECTURE § Rendering.
package render

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/content-hub/pkg/types"
)

// CharsPerMinute is the reading speed used for estimates. Articles are
// mostly Japanese, which is read per character rather than per word.
const CharsPerMinute = 400

// DefaultDescriptionLength is the meta description length used when the
// caller passes zero.
const DefaultDescriptionLength = 160

// blockElements end a run of text; their boundaries separate words.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "br": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "tr": true, "td": true, "th": true,
	"section": true, "article": true, "figcaption": true,
}

func parse(src string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return doc, nil
}

// PlainText strips markup and collapses whitespace. Script and style
// contents are dropped. Unparseable input is returned with whitespace
// collapsed.
func PlainText(src string) string {
	doc, err := parse(src)
	if err != nil {
		return strings.Join(strings.Fields(src), " ")
	}
	var b strings.Builder
	collectText(doc.Selection, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func collectText(s *goquery.Selection, b *strings.Builder) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch name := goquery.NodeName(c); name {
		case "#text":
			b.WriteString(c.Text())
		case "script", "style", "#comment":
		default:
			collectText(c, b)
			if blockElements[name] {
				b.WriteByte(' ')
			}
		}
	})
}

// ReadingTime estimates minutes to read src at CharsPerMinute, counting
// characters with whitespace removed. The result is at least 1.
func ReadingTime(src string) int {
	n := 0
	for _, r := range PlainText(src) {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	minutes := int(math.Ceil(float64(n) / CharsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// MetaDescription returns the plain text of src truncated to max characters,
// ending in "..." when cut.
func MetaDescription(src string, max int) string {
	if max <= 0 {
		max = DefaultDescriptionLength
	}
	return truncate(PlainText(src), max, "...")
}

func truncate(s string, max int, suffix string) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	keep := max - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:keep]), unicode.IsSpace) + suffix
}

// Heading is one entry of an article outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// Headings returns the h2 and h3 outline of src. Headings without an id get
// one from Slugify; duplicate ids get a numeric suffix.
func Headings(src string) []Heading {
	doc, err := parse(src)
	if err != nil {
		return nil
	}

	seen := map[string]int{}
	var out []Heading
	doc.Find("h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if text == "" {
			return
		}
		id, ok := s.Attr("id")
		if !ok || id == "" {
			id = Slugify(text)
		}
		if id == "" {
			id = "section"
		}
		if n := seen[id]; n > 0 {
			seen[id] = n + 1
			id = fmt.Sprintf("%s-%d", id, n+1)
		} else {
			seen[id] = 1
		}

		level := 2
		if goquery.NodeName(s) == "h3" {
			level = 3
		}
		out = append(out, Heading{Level: level, Text: text, ID: id})
	})
	return out
}

var (
	slugStrip  = regexp.MustCompile(`[^\p{L}\p{N}\s_-]+`)
	slugSpaces = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lowercases text, drops punctuation, and joins words with hyphens.
// Letters outside ASCII are kept.
func Slugify(text string) string {
	s := strings.ToLower(text)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

var codeFence = regexp.MustCompile("(?s)```(.*?)```")

// FeedHTML builds the body of a feed entry: the excerpt, the article
// content, and a footer with category, tags, reading time, and a link back.
// Fenced code left in the content is wrapped in pre/code.
func FeedHTML(item types.ContentItem, siteURL string) string {
	category := item.CategoryName()
	if category == "" {
		category = "Uncategorized"
	}
	tags := item.Tags.String()
	if tags == "" {
		tags = "none"
	}
	readingTime := item.ReadingTime
	if readingTime <= 0 {
		readingTime = ReadingTime(item.Content)
	}
	link := strings.TrimRight(siteURL, "/") + "/articles/" + item.Slug

	content := codeFence.ReplaceAllStringFunc(item.Content, func(m string) string {
		inner := codeFence.FindStringSubmatch(m)[1]
		return "<pre><code>" + html.EscapeString(strings.Trim(inner, "\n")) + "</code></pre>"
	})

	var b strings.Builder
	b.WriteString("<div>")
	fmt.Fprintf(&b, "<p><strong>Summary:</strong> %s</p><hr>", html.EscapeString(item.Excerpt))
	b.WriteString(content)
	b.WriteString("<hr>")
	fmt.Fprintf(&b, "<p><strong>Category:</strong> %s</p>", html.EscapeString(category))
	fmt.Fprintf(&b, "<p><strong>Tags:</strong> %s</p>", html.EscapeString(tags))
	fmt.Fprintf(&b, "<p><strong>Reading time:</strong> %d min</p>", readingTime)
	fmt.Fprintf(&b, `<p><a href="%s">Read the article</a></p>`, html.EscapeString(link))
	b.WriteString("</div>")
	return b.String()
}
