package views

import (
	"bytes"
	"context"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/tutorials"
	"github.com/eringen/tutorials/search"
	"github.com/eringen/tutorials/theme"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sample() []tutorials.Tutorial {
	return []tutorials.Tutorial{
		{Title: "Intro to Widgets", Slug: "intro-to-widgets", Link: "/tutorials/intro-to-widgets/", Lead: "Build <one>", Tags: []string{"Basics"}},
		{Title: "Advanced Gadgets", Slug: "advanced-gadgets", Link: "/tutorials/advanced-gadgets/", Tags: []string{"gadgets"}},
	}
}

func testPage() tutorials.Page {
	return tutorials.Page{
		Site:  tutorials.SiteConfig{Name: "Tutorials", Author: "Ada"},
		Meta:  tutorials.PageMeta{Title: "All Tutorials", URL: "http://localhost:3000/tutorials/", OGType: "website"},
		Theme: theme.Dark,
		CSRF:  "tok&en",
	}
}

func TestDefaultIsComplete(t *testing.T) {
	v := Default()
	assert.NotNil(t, v.Home)
	assert.NotNil(t, v.Tutorials)
	assert.NotNil(t, v.SearchResults)
	assert.NotNil(t, v.Tutorial)
	assert.NotNil(t, v.Tag)
	assert.NotNil(t, v.NotFound)
	assert.NotNil(t, v.ServerError)
}

func TestSearchResults(t *testing.T) {
	listing := search.NewState(sample(), "widget")
	out := render(t, SearchResults(listing))

	assert.Contains(t, out, "1 tutorial<")
	assert.Contains(t, out, `data-phase="filtering"`)
	assert.Contains(t, out, "Intro to Widgets")
	assert.NotContains(t, out, "Advanced Gadgets")
	assert.Contains(t, out, "Build &lt;one&gt;")
}

func TestSearchResultsEmpty(t *testing.T) {
	out := render(t, SearchResults(search.NewState(sample(), "zzz")))
	assert.Contains(t, out, "0 tutorials")
	assert.Contains(t, out, `<ul class="cards"></ul>`)
}

func TestTutorialsPageLayout(t *testing.T) {
	p := testPage()
	out := render(t, TutorialsPage(p, search.NewState(sample(), "")))

	assert.Contains(t, out, `<html lang="en" class="dark">`)
	assert.Contains(t, out, "<title>All Tutorials | Tutorials</title>")
	assert.Contains(t, out, `name="_csrf" value="tok&amp;en"`)
	assert.Contains(t, out, "Light mode")
	assert.Contains(t, out, `data-live-search="/tutorials/?partial=results"`)
	assert.Contains(t, out, `data-live-target="#results"`)
	assert.Contains(t, out, `<script src="/public/search.js" defer></script>`)
	assert.Contains(t, out, "2 tutorials")
	assert.Contains(t, out, `data-phase="idle"`)
}

func TestTutorialPage(t *testing.T) {
	tut := sample()[0]
	tut.HTML = "<p>rendered <em>body</em></p>"
	tut.Date = "2020-01-02"
	out := render(t, TutorialPage(testPage(), tut, sample()[1:]))

	assert.Contains(t, out, "<p>rendered <em>body</em></p>")
	assert.Contains(t, out, "January 2, 2020")
	assert.Contains(t, out, "Related tutorials")
	assert.Contains(t, out, `<script type="application/ld+json">`)
	assert.Contains(t, out, `"@type":"TechArticle"`)
}

func TestTagPageMarksActiveTag(t *testing.T) {
	out := render(t, TagPage(testPage(), "basics", sample()[:1]))
	assert.Contains(t, out, `href="/tags/basics/" class="tag tag-active"`)
	assert.Contains(t, out, "Tutorials tagged as basics")
}

func TestTagPageMatchesKebabTag(t *testing.T) {
	list := []tutorials.Tutorial{{Title: "Neural Nets", Link: "/tutorials/neural-nets/", Tags: []string{"Machine Learning", "python"}}}
	out := render(t, TagPage(testPage(), "machine learning", list))
	assert.Contains(t, out, `href="/tags/machine-learning/" class="tag tag-active"`)
	assert.Contains(t, out, `href="/tags/python/" class="tag"`)
}

func TestHomeFeaturesNewest(t *testing.T) {
	list := sample()
	list[0].Icon = "/public/icons/intro-to-widgets.jpg"
	list[0].Rotate = true
	p := testPage()
	p.Site.Description = "Short lessons"

	out := render(t, Home(p, &list[0], list, []string{"Basics", "gadgets"}))
	assert.Contains(t, out, `<section class="hero">`)
	assert.Contains(t, out, `<a href="/tags/basics/" aria-label="Tutorial icon">`)
	assert.Contains(t, out, `<img class="icon rotate" src="/public/icons/intro-to-widgets.jpg"`)
	assert.Contains(t, out, `<a class="button" href="/tutorials/intro-to-widgets/">Read New Tutorials</a>`)
	assert.Contains(t, out, `<p class="lead">Short lessons</p>`)
	assert.Contains(t, out, `<a class="button" href="/tutorials/">View All</a>`)
	assert.Contains(t, out, `"@type":"WebSite"`)
}

func TestHomeWithoutFeatured(t *testing.T) {
	list := sample()
	list[1].Icon = "/public/icons/advanced-gadgets.jpg"

	out := render(t, Home(testPage(), &list[1], nil, nil))
	assert.Contains(t, out, `<img class="icon" src="/public/icons/advanced-gadgets.jpg"`)
	assert.NotContains(t, out, "<h2>Tags</h2>")

	out = render(t, Home(testPage(), nil, nil, nil))
	assert.NotContains(t, out, `class="hero"`)
	assert.Contains(t, out, "<h1>Tutorials</h1>")
	assert.Contains(t, out, `<ul class="cards"></ul>`)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, "light", ThemeClass(theme.Light))
	assert.Equal(t, "Dark mode", ThemeLabel(theme.Light))
	assert.Equal(t, "Tutorials", PageTitle(tutorials.Page{Site: tutorials.SiteConfig{Name: "Tutorials"}, Meta: tutorials.PageMeta{Title: "Tutorials"}}))
	assert.Equal(t, "soon", FormatDate("soon"))
	assert.True(t, isActiveTag("C#", "c"))
	assert.False(t, isActiveTag("go", ""))
	assert.Equal(t, "/tags/basics/", heroIconLink(sample()[0]))
	assert.Equal(t, "/tutorials/x/", heroIconLink(tutorials.Tutorial{Link: "/tutorials/x/"}))
	assert.Equal(t, "1 tutorial", ResultCount(1))
	assert.Equal(t, "0 tutorials", ResultCount(0))
}
