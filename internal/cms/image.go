// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cms

import (
	"net/url"
	"strconv"
	"strings"
)

// ImageOptions selects image API transformations. Zero dimensions keep the
// original size.
type ImageOptions struct {
	Width   int
	Height  int
	Quality int
	Format  string
}

// DefaultImageOptions returns quality 80 in webp.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{Quality: 80, Format: "webp"}
}

// ImageURL appends image API parameters to a media URL. An empty URL yields
// an empty string.
func ImageURL(raw string, opts ImageOptions) string {
	if raw == "" {
		return ""
	}
	if opts.Quality <= 0 {
		opts.Quality = 80
	}
	if opts.Format == "" {
		opts.Format = "webp"
	}

	v := url.Values{}
	if opts.Width > 0 {
		v.Set("w", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		v.Set("h", strconv.Itoa(opts.Height))
	}
	v.Set("q", strconv.Itoa(opts.Quality))
	v.Set("fm", opts.Format)

	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + v.Encode()
}
