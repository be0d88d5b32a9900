package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rec struct {
	id    string
	title string
	lead  string
	tags  []string
}

func (r rec) SearchFields() Fields {
	return Fields{Title: r.title, Lead: r.lead, Tags: r.tags}
}

func ids(rs []rec) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.id)
	}
	return out
}

func widgets() []rec {
	return []rec{
		{id: "1", title: "Intro to Widgets", lead: "start here", tags: []string{"basics"}},
		{id: "2", title: "Advanced Gadgets", lead: "deep dive", tags: []string{"gadgets"}},
		{id: "3", title: "Widget Internals", lead: "how it works", tags: []string{"internals"}},
	}
}

func sample() []rec {
	return []rec{
		{id: "a", title: "Getting started with Go", lead: "Install the toolchain", tags: []string{"Go", "Beginner"}},
		{id: "b", title: "CSS Grid", lead: "Layouts without floats", tags: []string{"CSS"}},
		{id: "c", title: "Concurrency patterns", lead: "Channels in Go", tags: []string{"go", "advanced"}},
		{id: "d", title: "React hooks", lead: "useState and friends", tags: []string{"React", "JavaScript"}},
		{id: "e", title: "Ünïcode Strings", lead: "ΣΊΣΥΦΟΣ and friends", tags: nil},
	}
}

func TestFilterEmptyQueryIsIdentity(t *testing.T) {
	for _, c := range [][]rec{nil, {}, widgets(), sample()} {
		got := Filter(c, "")
		assert.Equal(t, c, got)
	}
}

func TestFilterEmptyCollection(t *testing.T) {
	got := Filter([]rec{}, "go")
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Filter[rec](nil, "go")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestFilterWidgetScenario(t *testing.T) {
	got := Filter(widgets(), "widget")
	assert.Equal(t, []string{"1", "3"}, ids(got))
	assert.Len(t, got, 2)
}

func TestFilterNoMatches(t *testing.T) {
	got := Filter(widgets(), "zzz")
	require.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestFilterCaseInsensitive(t *testing.T) {
	for _, q := range []string{"go", "css", "react", "and friends", "ünï"} {
		lower := Filter(sample(), q)
		upper := Filter(sample(), stringsToUpper(q))
		assert.Equal(t, ids(lower), ids(upper), "query %q", q)
	}
	assert.Equal(t, ids(Filter(sample(), "ABC")), ids(Filter(sample(), "abc")))
}

func stringsToUpper(s string) string {
	out := []rune(s)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z':
			out[i] = r - 'a' + 'A'
		case r == 'ü':
			out[i] = 'Ü'
		case r == 'ï':
			out[i] = 'Ï'
		}
	}
	return string(out)
}

func TestFilterMatchesEachField(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title", "grid", []string{"b"}},
		{"lead", "toolchain", []string{"a"}},
		{"tag", "javascript", []string{"d"}},
		{"title and tag", "go", []string{"a", "c"}},
		{"lead across records", "friends", []string{"d", "e"}},
		{"unicode lead", "ίσυ", []string{"e"}},
		{"whitespace is literal", " ", []string{"a", "b", "c", "d", "e"}},
		{"punctuation only", "!!", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(sample(), tt.query)))
		})
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	c := sample()
	for _, q := range []string{"go", "s", "e", "and"} {
		got := Filter(c, q)
		last := -1
		for _, r := range got {
			idx := indexOf(c, r.id)
			require.Greater(t, idx, last, "query %q out of order", q)
			last = idx
		}
	}
}

func indexOf(c []rec, id string) int {
	for i, r := range c {
		if r.id == id {
			return i
		}
	}
	return -1
}

func TestFilterResultIsSubset(t *testing.T) {
	c := sample()
	for _, q := range []string{"o", "go", "x", "hooks"} {
		for _, r := range Filter(c, q) {
			assert.NotEqual(t, -1, indexOf(c, r.id))
		}
	}
}

func TestFilterMonotonicNarrowing(t *testing.T) {
	c := sample()
	for _, pair := range [][2]string{{"g", "go"}, {"c", "cs"}, {"cs", "css"}, {"a", "and f"}} {
		wide := ids(Filter(c, pair[0]))
		narrow := ids(Filter(c, pair[1]))
		assert.Subset(t, wide, narrow, "%q should narrow %q", pair[1], pair[0])
	}
}

func TestFilterJoinedTagBoundary(t *testing.T) {
	c := []rec{{id: "x", title: "x", lead: "y", tags: []string{"foo", "bar"}}}

	got := Filter(c, "oob")
	assert.Equal(t, []string{"x"}, ids(got))

	got = Filter(c, "oob", WithTagMode(JoinedTags))
	assert.Equal(t, []string{"x"}, ids(got))
}

func TestFilterEachTagNoBoundaryMatch(t *testing.T) {
	c := []rec{{id: "x", title: "x", lead: "y", tags: []string{"foo", "bar"}}}

	assert.Empty(t, Filter(c, "oob", WithTagMode(EachTag)))
	assert.Equal(t, []string{"x"}, ids(Filter(c, "BAR", WithTagMode(EachTag))))
}

func TestMatches(t *testing.T) {
	r := rec{title: "Go", lead: "lead", tags: []string{"ab", "cd"}}
	assert.True(t, Matches(r, ""))
	assert.True(t, Matches(r, "LEAD"))
	assert.True(t, Matches(r, "bc"))
	assert.False(t, Matches(r, "bc", WithTagMode(EachTag)))
}

func TestParseTagMode(t *testing.T) {
	assert.Equal(t, EachTag, ParseTagMode("each"))
	assert.Equal(t, EachTag, ParseTagMode(" Per-Tag "))
	assert.Equal(t, JoinedTags, ParseTagMode("joined"))
	assert.Equal(t, JoinedTags, ParseTagMode(""))
	assert.Equal(t, "each", EachTag.String())
	assert.Equal(t, "joined", JoinedTags.String())
}
