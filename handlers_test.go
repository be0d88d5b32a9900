package tutorials

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/tutorials/theme"
)

func text(format string, args ...any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, format, args...)
		return err
	})
}

func stubViews() ViewFuncs {
	return ViewFuncs{
		Home: func(p Page, featured *Tutorial, latest []Tutorial, tags []string) templ.Component {
			slug := "-"
			if featured != nil {
				slug = featured.Slug
			}
			return text("home:%s:%d:%s", slug, len(latest), strings.Join(tags, ","))
		},
		Tutorials: func(p Page, listing Listing) templ.Component {
			return text("tutorials:%q:%d:%s", listing.Query, listing.Count(), p.Theme)
		},
		SearchResults: func(listing Listing) templ.Component {
			return text("results:%q:%d", listing.Query, listing.Count())
		},
		Tutorial: func(p Page, t Tutorial, related []Tutorial) templ.Component {
			return text("tutorial:%s:%d:%s", t.Slug, len(related), p.Meta.URL)
		},
		Tag: func(p Page, tag string, list []Tutorial) templ.Component {
			return text("tag:%s:%d", tag, len(list))
		},
		NotFound: func(p Page) templ.Component {
			return text("not found")
		},
		ServerError: func(p Page) templ.Component {
			return text("server error")
		},
	}
}

func newTestApp(t *testing.T, cfg SiteConfig) *App {
	t.Helper()
	s := setupTestStore(t)
	seedTutorials(t, s, widgetTutorials()...)

	a := New(cfg, stubViews(), WithStore(s))
	require.NoError(t, a.Init())
	t.Cleanup(func() { a.Close() })
	return a
}

func do(a *App, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func get(a *App, target string) *httptest.ResponseRecorder {
	return do(a, httptest.NewRequest(http.MethodGet, target, nil))
}

func TestHomeAndListing(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home:widget-internals:3:basics,gadgets,internals,widgets", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	rec = get(a, "/tutorials/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `tutorials:"":3:light`, rec.Body.String())

	rec = get(a, "/tutorials/?q=Widget")
	assert.Equal(t, `tutorials:"Widget":2:light`, rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestListingPartial(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	req := httptest.NewRequest(http.MethodGet, "/tutorials/?partial=results&q=zzz", nil)
	req.Header.Set("HX-Request", "true")
	rec := do(a, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `results:"zzz":0`, rec.Body.String())

	// without HX-Request the full page is served
	rec = get(a, "/tutorials/?partial=results&q=zzz")
	assert.Equal(t, `tutorials:"zzz":0:light`, rec.Body.String())
}

func TestListingRedirects(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/tutorials")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/tutorials/", rec.Header().Get("Location"))

	rec = get(a, "/blog/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/tutorials/", rec.Header().Get("Location"))
}

func TestTutorialAndTagPages(t *testing.T) {
	a := newTestApp(t, SiteConfig{URL: "https://example.com/"})

	rec := get(a, "/tutorials/intro-to-widgets/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tutorial:intro-to-widgets:1:https://example.com/tutorials/intro-to-widgets/", rec.Body.String())

	rec = get(a, "/tutorials/missing/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", rec.Body.String())

	rec = get(a, "/tags/Widgets/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tag:widgets:2", rec.Body.String())

	rec = get(a, "/tags/nothing/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHomeLatestIsCapped(t *testing.T) {
	s := setupTestStore(t)
	seedTutorials(t, s, widgetTutorials()...)
	seedTutorials(t, s, Tutorial{ID: "4", TutorialID: 4, Slug: "gizmo-basics", Title: "Gizmo Basics", Tags: []string{"gizmos"}, SourceHash: "d", Published: true})
	a := New(SiteConfig{}, stubViews(), WithStore(s))
	require.NoError(t, a.Init())
	t.Cleanup(func() { a.Close() })

	rec := get(a, "/")
	assert.Equal(t, "home:gizmo-basics:3:basics,gadgets,gizmos,internals,widgets", rec.Body.String())
}

func TestHomeWithoutTutorials(t *testing.T) {
	a := New(SiteConfig{}, stubViews(), WithStore(setupTestStore(t)))
	require.NoError(t, a.Init())
	t.Cleanup(func() { a.Close() })

	rec := get(a, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home:-:0:", rec.Body.String())
}

func TestKebabTagPages(t *testing.T) {
	s := setupTestStore(t)
	seedTutorials(t, s,
		Tutorial{ID: "1", TutorialID: 1, Slug: "neural-nets", Title: "Neural Nets", Tags: []string{"Machine Learning"}, SourceHash: "a", Published: true},
		Tutorial{ID: "2", TutorialID: 2, Slug: "regression", Title: "Regression", Tags: []string{"machine learning", "stats"}, SourceHash: "b", Published: true},
	)
	a := New(SiteConfig{URL: "https://example.com"}, stubViews(), WithStore(s))
	require.NoError(t, a.Init())
	t.Cleanup(func() { a.Close() })

	rec := get(a, "/tags/machine-learning/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tag:machine learning:2", rec.Body.String())

	rec = get(a, "/tags/Machine-Learning/")
	assert.Equal(t, "tag:machine learning:2", rec.Body.String())

	rec = get(a, "/tags/machine%20learning/")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(a, "/sitemap.xml")
	assert.Contains(t, rec.Body.String(), "<loc>https://example.com/tags/machine-learning/</loc>")
	assert.Equal(t, 1, strings.Count(rec.Body.String(), "/tags/machine-learning/"))
}

func TestSearchAPI(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/api/search?q=widget")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var resp struct {
		Query   string     `json:"query"`
		Count   int        `json:"count"`
		Results []Tutorial `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "widget", resp.Query)
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Widget Internals", resp.Results[0].Title)
	assert.Equal(t, "/tutorials/widget-internals/", resp.Results[0].Link)
	assert.NotContains(t, rec.Body.String(), "<p>three</p>")

	rec = get(a, "/api/search?q=zzz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"results":[]`)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestSearchAPIRateLimit(t *testing.T) {
	a := newTestApp(t, SiteConfig{SearchRateLimit: 2})

	assert.Equal(t, http.StatusOK, get(a, "/api/search?q=a").Code)
	assert.Equal(t, http.StatusOK, get(a, "/api/search?q=ab").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(a, "/api/search?q=abc").Code)
}

func TestAPINotFoundIsNotHTML(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	rec := get(a, "/api/nothing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEqual(t, "not found", rec.Body.String())
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestAPISkipsCSRFAndSlashes(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	rec := get(a, "/api/search?q=gadget")
	assert.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.NotEqual(t, "_csrf", c.Name)
	}

	rec = get(a, "/api/search/?q=gadget")
	assert.NotEqual(t, http.StatusMovedPermanently, rec.Code)
}

func TestCSRFCookieFollowsSiteScheme(t *testing.T) {
	for url, secure := range map[string]bool{
		"http://localhost:3000": false,
		"https://example.com":   true,
	} {
		a := newTestApp(t, SiteConfig{URL: url})
		rec := get(a, "/tutorials/")
		var token *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == "_csrf" {
				token = c
			}
		}
		require.NotNil(t, token, url)
		assert.Equal(t, secure, token.Secure, url)
		assert.Equal(t, http.SameSiteLaxMode, token.SameSite, url)
	}
}

func TestPageCacheHeaders(t *testing.T) {
	a := newTestApp(t, SiteConfig{StaticDir: t.TempDir()})

	assert.Equal(t, "public, max-age=60", get(a, "/tutorials/").Header().Get("Cache-Control"))
	assert.Equal(t, "public, max-age=86400", get(a, "/sitemap.xml").Header().Get("Cache-Control"))
	assert.Equal(t, "public, max-age=31536000, immutable", get(a, "/public/search.js").Header().Get("Cache-Control"))
}

func TestThemeToggleRequiresCSRF(t *testing.T) {
	a := newTestApp(t, SiteConfig{})
	rec := do(a, httptest.NewRequest(http.MethodPost, "/theme/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, theme.Light, a.Theme.Get())
}

func TestThemeToggle(t *testing.T) {
	a := newTestApp(t, SiteConfig{})

	// pick up a CSRF cookie from any page
	rec := get(a, "/tutorials/")
	var token *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			token = c
		}
	}
	require.NotNil(t, token)

	req := httptest.NewRequest(http.MethodPost, "/theme/", nil)
	req.AddCookie(token)
	req.Header.Set("X-CSRF-Token", token.Value)
	req.Header.Set("Referer", "http://localhost:3000/tutorials/?q=go")
	rec = do(a, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/tutorials/?q=go", rec.Header().Get("Location"))
	assert.Equal(t, "dark", rec.Header().Get("X-Theme"))
	assert.Equal(t, theme.Dark, a.Theme.Get())

	// every page now renders with the new mode
	assert.Equal(t, `tutorials:"":3:dark`, get(a, "/tutorials/").Body.String())

	req = httptest.NewRequest(http.MethodPost, "/theme/", nil)
	req.AddCookie(token)
	req.Header.Set("X-CSRF-Token", token.Value)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("Referer", "//evil.example.com/")
	rec = do(a, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "true", rec.Header().Get("HX-Refresh"))
	assert.Equal(t, theme.Light, a.Theme.Get())
}

func TestThemeToggleIgnoresForeignReferer(t *testing.T) {
	a := newTestApp(t, SiteConfig{DarkMode: true})
	assert.Equal(t, theme.Dark, a.Theme.Get())

	rec := get(a, "/")
	var token *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			token = c
		}
	}
	require.NotNil(t, token)

	req := httptest.NewRequest(http.MethodPost, "/theme/", nil)
	req.AddCookie(token)
	req.Header.Set("X-CSRF-Token", token.Value)
	req.Header.Set("Referer", "https://evil.example.com//phish")
	rec = do(a, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestFeeds(t *testing.T) {
	a := newTestApp(t, SiteConfig{URL: "https://example.com"})

	rec := get(a, "/robots.txt")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml\n")

	rec = get(a, "/sitemap.xml")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<loc>https://example.com/tutorials/widget-internals/</loc>")
	assert.Contains(t, rec.Body.String(), "<loc>https://example.com/tags/gadgets/</loc>")

	rec = get(a, "/feed.xml")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<title>Advanced Gadgets</title>")
	assert.Contains(t, rec.Body.String(), "<category>widgets</category>")
}

func TestEmbeddedStylesheet(t *testing.T) {
	a := newTestApp(t, SiteConfig{StaticDir: t.TempDir()})
	rec := get(a, "/public/styles.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "html.dark")
}

func TestEmbeddedSearchScript(t *testing.T) {
	a := newTestApp(t, SiteConfig{StaticDir: t.TempDir()})
	rec := get(a, "/public/search.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "javascript")
	body := rec.Body.String()
	assert.Contains(t, body, "data-live-search")
	assert.Contains(t, body, `"HX-Request": "true"`)
	assert.Contains(t, body, "AbortController")
}

func TestStaticDirOverridesEmbeddedAssets(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "styles.css"), []byte("body{color:red}"), 0o644))
	a := newTestApp(t, SiteConfig{StaticDir: dir})

	rec := get(a, "/public/styles.css")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{color:red}", rec.Body.String())

	// files the site does not override still come from the binary
	rec = get(a, "/public/search.js")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "data-live-search")
}
