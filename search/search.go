// Package search filters an in-memory tutorial collection by a free-text query.
//
// A record matches when the lowercased query is a substring of its lowercased
// title, lead, or tags. Matching never reorders, ranks, or fails: an empty
// query is "no active search" and yields the whole collection, and a query with
// no matches yields an empty (non-nil) slice.
package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fields are the searchable texts of a record.
type Fields struct {
	Title string
	Lead  string
	Tags  []string
}

// Record is anything that can expose its searchable fields.
type Record interface {
	SearchFields() Fields
}

// TagMode selects how a query is matched against a record's tags.
type TagMode int

const (
	// JoinedTags concatenates all tags without a separator and searches the
	// result, so a query may match across the boundary of two adjacent tags
	// (["foo", "bar"] matches "oob").
	JoinedTags TagMode = iota
	// EachTag matches every tag on its own; no cross-tag matches.
	EachTag
)

// ParseTagMode maps a config value to a TagMode. Unknown values fall back to
// JoinedTags.
func ParseTagMode(s string) TagMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "each", "each-tag", "per-tag":
		return EachTag
	default:
		return JoinedTags
	}
}

func (m TagMode) String() string {
	if m == EachTag {
		return "each"
	}
	return "joined"
}

type options struct {
	tagMode TagMode
}

// Option configures matching.
type Option func(*options)

// WithTagMode sets how tags are matched (default JoinedTags).
func WithTagMode(m TagMode) Option {
	return func(o *options) {
		o.tagMode = m
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Filter returns the records of collection that match query, in collection
// order. An empty query returns collection itself.
func Filter[T Record](collection []T, query string, opts ...Option) []T {
	if query == "" {
		return collection
	}
	o := buildOptions(opts)
	m := newMatcher(query, o.tagMode)
	out := make([]T, 0)
	for _, rec := range collection {
		if m.match(rec.SearchFields()) {
			out = append(out, rec)
		}
	}
	return out
}

// Matches reports whether a single record matches query. An empty query
// matches everything.
func Matches(rec Record, query string, opts ...Option) bool {
	if query == "" {
		return true
	}
	o := buildOptions(opts)
	return newMatcher(query, o.tagMode).match(rec.SearchFields())
}

type matcher struct {
	lower   cases.Caser
	needle  string
	tagMode TagMode
}

func newMatcher(query string, mode TagMode) *matcher {
	// A Caser is not safe for concurrent use, so each call gets its own.
	m := &matcher{lower: cases.Lower(language.Und), tagMode: mode}
	m.needle = m.fold(query)
	return m
}

func (m *matcher) fold(s string) string {
	return m.lower.String(s)
}

func (m *matcher) match(f Fields) bool {
	if strings.Contains(m.fold(f.Title), m.needle) {
		return true
	}
	if strings.Contains(m.fold(f.Lead), m.needle) {
		return true
	}
	if m.tagMode == EachTag {
		for _, t := range f.Tags {
			if strings.Contains(m.fold(t), m.needle) {
				return true
			}
		}
		return false
	}
	return strings.Contains(m.fold(strings.Join(f.Tags, "")), m.needle)
}
