// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cms

import (
	"net/url"
	"strconv"
	"strings"
)

// Query holds the list and detail query parameters the content API accepts.
// Zero values are omitted from the request.
type Query struct {
	DraftKey string
	Limit    int
	Offset   int
	Orders   string
	Q        string
	Fields   []string
	IDs      []string
	Filters  string
	Depth    int
}

// Values encodes the query as URL parameters.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.DraftKey != "" {
		v.Set("draftKey", q.DraftKey)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Orders != "" {
		v.Set("orders", q.Orders)
	}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if len(q.Fields) > 0 {
		v.Set("fields", strings.Join(q.Fields, ","))
	}
	if len(q.IDs) > 0 {
		v.Set("ids", strings.Join(q.IDs, ","))
	}
	if q.Filters != "" {
		v.Set("filters", q.Filters)
	}
	if q.Depth > 0 {
		v.Set("depth", strconv.Itoa(q.Depth))
	}
	return v
}

// Equals builds a field[equals]value filter.
func Equals(field, value string) string {
	return field + "[equals]" + value
}

// Contains builds a field[contains]value filter.
func Contains(field, value string) string {
	return field + "[contains]" + value
}

// And joins non-empty filters with [and].
func And(filters ...string) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, "[and]")
}
