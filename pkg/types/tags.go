// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Tags is a normalized tag set: lowercase, trimmed, non-empty, deduplicated,
// and sorted. The CMS delivers tags either as one comma-joined string or as a
// list; both forms are normalized when decoded so no later stage sees the raw
// shape.
type Tags []string

// NewTags normalizes raw labels into a tag set. Each label may itself be a
// comma-joined list.
func NewTags(raw ...string) Tags {
	return NormalizeTags(raw)
}

// ParseTags splits a comma-joined tag string and normalizes the result.
func ParseTags(s string) Tags {
	return NormalizeTags([]string{s})
}

// NormalizeTags lowercases, trims, splits on commas, drops empties, and
// deduplicates. The result is sorted, so normalizing twice is a no-op.
func NormalizeTags(raw []string) Tags {
	seen := make(map[string]struct{}, len(raw))
	out := make(Tags, 0, len(raw))
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			tag := strings.ToLower(strings.TrimSpace(part))
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// Set returns the normalized tags as a membership set. Tags built as a
// literal rather than through NewTags are normalized here too.
func (t Tags) Set() map[string]struct{} {
	set := make(map[string]struct{}, len(t))
	for _, tag := range t {
		if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
			set[tag] = struct{}{}
		}
	}
	return set
}

// Contains reports whether tag, once normalized, is in the set.
func (t Tags) Contains(tag string) bool {
	tag = strings.ToLower(strings.TrimSpace(tag))
	i := sort.SearchStrings(t, tag)
	return i < len(t) && t[i] == tag
}

// String joins the tags with ", " for display.
func (t Tags) String() string {
	return strings.Join(t, ", ")
}

// UnmarshalJSON accepts a string, a list of strings, or null.
func (t *Tags) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Tags{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = ParseTags(s)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings: %w", err)
	}
	*t = NormalizeTags(list)
	return nil
}

// UnmarshalYAML accepts a scalar string or a sequence of strings.
func (t *Tags) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*t = Tags{}
			return nil
		}
		*t = ParseTags(node.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("decoding tag list: %w", err)
		}
		*t = NormalizeTags(list)
		return nil
	default:
		return fmt.Errorf("tags must be a string or a list of strings, got YAML kind %d", node.Kind)
	}
}
