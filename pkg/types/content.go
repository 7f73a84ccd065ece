// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for content-hub.
// Implements: content model (ContentItem, Category, Tags), configuration
// (Config and per-component settings).
//
// See docs/ARCHITECTURE.md § Data Model.
package types

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// DifficultyLevel grades how much background an article assumes.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// TargetAudience identifies who an article is written for.
type TargetAudience string

const (
	AudienceEngineer   TargetAudience = "engineer"
	AudienceEnterprise TargetAudience = "enterprise"
	AudienceBoth       TargetAudience = "both"
)

// ContentType classifies the kind of article.
type ContentType string

const (
	ContentExperience ContentType = "experience"
	ContentResearch   ContentType = "research"
	ContentTutorial   ContentType = "tutorial"
)

// Status is the publication state reported by the CMS.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
)

// Category groups articles. Articles reference it by ID.
type Category struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ContentItem is one published article as seen by the ranking and rendering
// layers. Instances are read-only snapshots of the CMS record.
type ContentItem struct {
	// ID is the CMS content identifier.
	ID string `json:"id" yaml:"id" validate:"required"`

	// Slug is the URL path segment, unique across articles.
	Slug string `json:"slug" yaml:"slug" validate:"required"`

	Title   string `json:"title" yaml:"title"`
	Excerpt string `json:"excerpt" yaml:"excerpt"`

	// Content is the article body as HTML.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// CategoryID references a Category. Empty means uncategorized.
	CategoryID string `json:"category_id,omitempty" yaml:"category_id,omitempty"`

	// Category is the resolved category, when the loader had it at hand.
	Category *Category `json:"category,omitempty" yaml:"category,omitempty"`

	// Tags is the normalized tag set.
	Tags Tags `json:"tags" yaml:"tags"`

	PublishedAt time.Time `json:"published_at" yaml:"published_at" validate:"required"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`

	DifficultyLevel DifficultyLevel `json:"difficulty_level" yaml:"difficulty_level" validate:"required,oneof=beginner intermediate advanced"`
	TargetAudience  TargetAudience  `json:"target_audience" yaml:"target_audience" validate:"required,oneof=engineer enterprise both"`
	ContentType     ContentType     `json:"content_type,omitempty" yaml:"content_type,omitempty" validate:"omitempty,oneof=experience research tutorial"`
	Status          Status          `json:"status,omitempty" yaml:"status,omitempty" validate:"omitempty,oneof=published draft"`

	// ReadingTime is the estimated reading time in minutes.
	ReadingTime int `json:"reading_time,omitempty" yaml:"reading_time,omitempty" validate:"gte=0"`

	FeaturedImageURL string `json:"featured_image_url,omitempty" yaml:"featured_image_url,omitempty"`
}

// ErrInvalidItem is returned by Validate for structurally malformed items.
var ErrInvalidItem = errors.New("invalid content item")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func itemValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate reports whether the item carries the fields ranking depends on:
// an ID, a slug, a publication instant, and known enum values.
func (c ContentItem) Validate() error {
	err := itemValidator().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidItem, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w %q: %s", ErrInvalidItem, c.Slug, strings.Join(fields, ", "))
}

// CategorySlug returns the resolved category slug, or "" when unknown.
func (c ContentItem) CategorySlug() string {
	if c.Category == nil {
		return ""
	}
	return c.Category.Slug
}

// CategoryName returns the resolved category name, or "" when unknown.
func (c ContentItem) CategoryName() string {
	if c.Category == nil {
		return ""
	}
	return c.Category.Name
}

// LastModified returns UpdatedAt, falling back to PublishedAt.
func (c ContentItem) LastModified() time.Time {
	if c.UpdatedAt.IsZero() {
		return c.PublishedAt
	}
	return c.UpdatedAt
}

// timestampLayouts lists the accepted publication timestamp formats, most
// specific first.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a CMS timestamp. It accepts RFC 3339 with or without
// fractional seconds, a zone-less date-time, and a bare date (UTC midnight).
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
