package tutorials

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// homeLatest is the number of tutorials in the home page's latest list.
const homeLatest = 3

func (a *App) page(c echo.Context, meta PageMeta) Page {
	if meta.URL == "" {
		meta.URL = a.Config.URL + c.Request().URL.Path
	}
	if meta.OGType == "" {
		meta.OGType = "website"
	}
	if meta.Description == "" {
		meta.Description = a.Config.Description
	}
	return Page{
		Site:  a.Config,
		Meta:  meta,
		Theme: a.currentMode(),
		CSRF:  CsrfToken(c),
	}
}

func (a *App) handleHome(c echo.Context) error {
	tutorials, err := a.Cache.ListTutorials("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	// the newest tutorial is featured in the hero and leads the latest list
	var featured *Tutorial
	if len(tutorials) > 0 {
		t := tutorials[0]
		featured = &t
	}
	latest := tutorials[:min(len(tutorials), homeLatest)]
	return Render(c, a.Views.Home(a.page(c, PageMeta{Title: a.Config.Name}), featured, latest, tags))
}

// handleTutorials serves the listing page. Each keystroke in the search box
// sends the full current value as ?q=, and the search script swaps in only
// the results.
func (a *App) handleTutorials(c echo.Context) error {
	listing, err := a.Cache.Search(c.QueryParam("q"), a.Config.ListingLimit, a.searchOpts...)
	if err != nil {
		return err
	}
	if isPartial(c, "results") {
		return Render(c, a.Views.SearchResults(listing))
	}
	return Render(c, a.Views.Tutorials(a.page(c, PageMeta{Title: "All Tutorials"}), listing))
}

func (a *App) handleTutorial(c echo.Context) error {
	slug := c.Param("slug")
	t, err := a.Cache.GetTutorial(slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.ErrNotFound
		}
		return err
	}
	tutorials, err := a.Cache.ListTutorials("")
	if err != nil {
		return err
	}
	meta := PageMeta{
		Title:       t.Title,
		Description: t.Lead,
		URL:         BuildURL(a.Config.URL, "tutorials", t.Slug),
		OGType:      "article",
	}
	return Render(c, a.Views.Tutorial(a.page(c, meta), t, FilterRelated(t, tutorials)))
}

// handleTag serves /tags/:tag/, where :tag is the kebab-case slug of a tag.
func (a *App) handleTag(c echo.Context) error {
	slug, err := url.PathUnescape(c.Param("tag"))
	if err != nil {
		return echo.ErrNotFound
	}
	tag, tutorials, err := a.Cache.ListTagged(slug)
	if err != nil {
		return err
	}
	if len(tutorials) == 0 {
		return echo.ErrNotFound
	}
	meta := PageMeta{
		Title: "Tutorials tagged as " + tag,
		URL:   a.Config.URL + TagPath(tag),
	}
	return Render(c, a.Views.Tag(a.page(c, meta), tag, tutorials))
}

type searchResponse struct {
	Query   string     `json:"query"`
	Count   int        `json:"count"`
	Results []Tutorial `json:"results"`
}

func (a *App) handleSearchAPI(c echo.Context) error {
	listing, err := a.Cache.Search(c.QueryParam("q"), a.Config.ListingLimit, a.searchOpts...)
	if err != nil {
		return err
	}
	results := listing.Results
	if results == nil {
		results = []Tutorial{}
	}
	return c.JSON(http.StatusOK, searchResponse{
		Query:   listing.Query,
		Count:   listing.Count(),
		Results: results,
	})
}

func (a *App) handleThemeToggle(c echo.Context) error {
	m := a.Theme.Toggle()
	if c.Request().Header.Get("HX-Request") == "true" {
		c.Response().Header().Set("HX-Refresh", "true")
		return c.NoContent(http.StatusNoContent)
	}
	back := "/"
	if ref, err := url.Parse(c.Request().Referer()); err == nil && strings.HasPrefix(ref.Path, "/") && !strings.HasPrefix(ref.Path, "//") {
		back = ref.RequestURI()
	}
	c.Response().Header().Set("X-Theme", string(m))
	return c.Redirect(http.StatusSeeOther, back)
}

func (a *App) handleSitemap(c echo.Context) error {
	tutorials, err := a.Cache.ListTutorials("")
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, tutorials, tags)
}

func (a *App) handleFeed(c echo.Context) error {
	tutorials, err := a.Cache.ListTutorials("")
	if err != nil {
		return err
	}
	return a.renderRSS(c, tutorials)
}

func handleListingRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/tutorials/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: " + a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound && !isAPI(c) {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound(a.page(c, PageMeta{Title: "Not found"})))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError(a.page(c, PageMeta{Title: "Server error"})))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
