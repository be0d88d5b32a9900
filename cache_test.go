package tutorials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/tutorials/search"
)

func TestCacheSearch(t *testing.T) {
	s := setupTestStore(t)
	seedTutorials(t, s, widgetTutorials()...)
	c := NewTutorialCache(s, time.Minute)

	listing, err := c.Search("widget", 0)
	require.NoError(t, err)
	assert.Equal(t, "widget", listing.Query)
	assert.Equal(t, search.Filtering, listing.Phase())
	require.Equal(t, 2, listing.Count())
	assert.Equal(t, "widget-internals", listing.Results[0].Slug)
	assert.Equal(t, "intro-to-widgets", listing.Results[1].Slug)

	listing, err = c.Search("", 0)
	require.NoError(t, err)
	assert.Equal(t, search.Idle, listing.Phase())
	assert.Equal(t, 3, listing.Count())

	listing, err = c.Search("zzz", 0)
	require.NoError(t, err)
	assert.NotNil(t, listing.Results)
	assert.Zero(t, listing.Count())
}

func TestCacheSearchLimitAppliesBeforeFilter(t *testing.T) {
	s := setupTestStore(t)
	seedTutorials(t, s, widgetTutorials()...)
	c := NewTutorialCache(s, time.Minute)

	// the two newest are widget-internals and advanced-gadgets
	listing, err := c.Search("widget", 2)
	require.NoError(t, err)
	require.Equal(t, 1, listing.Count())
	assert.Equal(t, "widget-internals", listing.Results[0].Slug)
}

func TestCacheSearchTagMode(t *testing.T) {
	s := setupTestStore(t)
	seedTutorials(t, s, Tutorial{Slug: "t", Title: "T", Tags: []string{"foo", "bar"}, Published: true})
	c := NewTutorialCache(s, time.Minute)

	joined, err := c.Search("oob", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, joined.Count())

	each, err := c.Search("oob", 0, search.WithTagMode(search.EachTag))
	require.NoError(t, err)
	assert.Zero(t, each.Count())
}

func TestCacheInvalidate(t *testing.T) {
	s := setupTestStore(t)
	c := NewTutorialCache(s, time.Hour)

	list, err := c.ListTutorials("")
	require.NoError(t, err)
	assert.Empty(t, list)

	seedTutorials(t, s, widgetTutorials()...)
	list, err = c.ListTutorials("")
	require.NoError(t, err)
	assert.Empty(t, list, "empty result is cached until invalidated")

	c.Invalidate()
	list, err = c.ListTutorials("")
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestCacheExpires(t *testing.T) {
	s := setupTestStore(t)
	c := NewTutorialCache(s, 10*time.Millisecond)

	_, err := c.ListTutorials("")
	require.NoError(t, err)
	seedTutorials(t, s, widgetTutorials()[0])
	time.Sleep(20 * time.Millisecond)

	list, err := c.ListTutorials("")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCacheGetAndTags(t *testing.T) {
	s := setupTestStore(t)
	seedTutorials(t, s, widgetTutorials()...)
	c := NewTutorialCache(s, time.Minute)

	got, err := c.GetTutorial("advanced-gadgets")
	require.NoError(t, err)
	assert.Equal(t, "Advanced Gadgets", got.Title)

	_, err = c.GetTutorial("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	byTag, err := c.ListTutorials(" Widgets ")
	require.NoError(t, err)
	assert.Len(t, byTag, 2)

	tags, err := c.ListTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"basics", "gadgets", "internals", "widgets"}, tags)
}

func TestCacheListTagged(t *testing.T) {
	s := setupTestStore(t)
	seedTutorials(t, s, widgetTutorials()...)
	seedTutorials(t, s,
		Tutorial{ID: "4", TutorialID: 4, Slug: "sharp", Title: "Sharp", Tags: []string{"C#"}, SourceHash: "d", Published: true},
		Tutorial{ID: "5", TutorialID: 5, Slug: "plain-c", Title: "Plain C", Tags: []string{"c"}, SourceHash: "e", Published: true},
		Tutorial{ID: "6", TutorialID: 6, Slug: "web-stack", Title: "Web Stack", Tags: []string{"Web Dev"}, SourceHash: "f", Published: true},
	)
	c := NewTutorialCache(s, time.Minute)

	tag, list, err := c.ListTagged("Widgets")
	require.NoError(t, err)
	assert.Equal(t, "widgets", tag)
	assert.Len(t, list, 2)

	tag, list, err = c.ListTagged("web-dev")
	require.NoError(t, err)
	assert.Equal(t, "web dev", tag)
	require.Len(t, list, 1)
	assert.Equal(t, "web-stack", list[0].Slug)

	// both tags share the /tags/c/ page
	tag, list, err = c.ListTagged("c")
	require.NoError(t, err)
	assert.Equal(t, "c", tag)
	assert.Len(t, list, 2)

	tag, list, err = c.ListTagged("web dev")
	require.NoError(t, err)
	assert.Empty(t, tag)
	assert.Empty(t, list)
}

func TestLimitListing(t *testing.T) {
	list := widgetTutorials()
	assert.Len(t, LimitListing(list, 2), 2)
	assert.Len(t, LimitListing(list, 5), 3)
	assert.Len(t, LimitListing(list, 0), 3)
	assert.Len(t, LimitListing(list, -1), 3)
}
