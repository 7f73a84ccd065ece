// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cms

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/pdiddy/content-hub/internal/render"
	"github.com/pdiddy/content-hub/pkg/types"
)

// CategoryRecord is a category as returned by the categories endpoint.
type CategoryRecord struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	PublishedAt string `json:"publishedAt"`
	RevisedAt   string `json:"revisedAt"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// ToCategory converts the record to the domain type.
func (r CategoryRecord) ToCategory() types.Category {
	return types.Category{
		ID:          r.ID,
		Name:        r.Name,
		Slug:        r.Slug,
		Description: r.Description,
	}
}

// ImageRecord is a microCMS media field.
type ImageRecord struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ArticleRecord is an article as returned by the articles endpoint.
type ArticleRecord struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
	PublishedAt string `json:"publishedAt"`
	RevisedAt   string `json:"revisedAt"`

	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt"`

	Category      *CategoryRecord `json:"category"`
	Tags          types.Tags      `json:"tags"`
	FeaturedImage *ImageRecord    `json:"featured_image,omitempty"`

	ContentType     SelectField `json:"contentType"`
	TargetAudience  SelectField `json:"targetAudience"`
	DifficultyLevel SelectField `json:"difficultyLevel"`
	Status          SelectField `json:"status"`

	ReadingTime int `json:"reading_time"`
}

// ToContentItem converts the record into a validated ContentItem. Timestamps
// are parsed, tags are already normalized by decoding, and a missing reading
// time is estimated from the body.
func (r ArticleRecord) ToContentItem() (types.ContentItem, error) {
	published, err := types.ParseTimestamp(r.PublishedAt)
	if err != nil {
		return types.ContentItem{}, fmt.Errorf("article %s: publishedAt: %w", r.ID, err)
	}

	var updated = published
	if r.UpdatedAt != "" {
		if updated, err = types.ParseTimestamp(r.UpdatedAt); err != nil {
			return types.ContentItem{}, fmt.Errorf("article %s: updatedAt: %w", r.ID, err)
		}
	}

	item := types.ContentItem{
		ID:              r.ID,
		Slug:            r.Slug,
		Title:           r.Title,
		Excerpt:         r.Excerpt,
		Content:         r.Content,
		Tags:            r.Tags,
		PublishedAt:     published,
		UpdatedAt:       updated,
		DifficultyLevel: types.DifficultyLevel(r.DifficultyLevel),
		TargetAudience:  types.TargetAudience(r.TargetAudience),
		ContentType:     types.ContentType(r.ContentType),
		Status:          types.Status(r.Status),
		ReadingTime:     r.ReadingTime,
	}
	if item.Tags == nil {
		item.Tags = types.Tags{}
	}
	if r.Category != nil && r.Category.ID != "" {
		c := r.Category.ToCategory()
		item.CategoryID = c.ID
		item.Category = &c
	}
	if r.FeaturedImage != nil {
		item.FeaturedImageURL = r.FeaturedImage.URL
	}
	if item.ReadingTime <= 0 && item.Content != "" {
		item.ReadingTime = render.ReadingTime(item.Content)
	}

	if err := item.Validate(); err != nil {
		return types.ContentItem{}, fmt.Errorf("article %s: %w", r.ID, err)
	}
	return item, nil
}

// SelectField is a microCMS select field. The API returns a list of chosen
// values even for single-select fields; older schemas return a plain string.
// Only the first value is kept.
type SelectField string

// UnmarshalJSON accepts a string, a list of strings, or null.
func (s *SelectField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("select field: %w", err)
		}
		*s = ""
		if len(list) > 0 {
			*s = SelectField(list[0])
		}
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("select field: %w", err)
	}
	*s = SelectField(v)
	return nil
}

// ArticleList is one page of articles.
type ArticleList struct {
	Contents   []ArticleRecord `json:"contents"`
	TotalCount int             `json:"totalCount"`
	Offset     int             `json:"offset"`
	Limit      int             `json:"limit"`
}

// CategoryList is one page of categories.
type CategoryList struct {
	Contents   []CategoryRecord `json:"contents"`
	TotalCount int              `json:"totalCount"`
	Offset     int              `json:"offset"`
	Limit      int              `json:"limit"`
}
