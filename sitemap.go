package tutorials

import (
	"encoding/xml"
	"net/http"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) renderSitemap(c echo.Context, tutorials []Tutorial, tags []string) error {
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: BuildURL(base)},
		{Loc: BuildURL(base, "tutorials")},
	}
	for _, t := range tutorials {
		urls = append(urls, sitemapURL{
			Loc:     BuildURL(base, "tutorials", t.Slug),
			LastMod: t.Date,
		})
	}
	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		// distinct tags can share a page ("C#" and "c")
		loc := base + TagPath(tag)
		if !seen[loc] {
			seen[loc] = true
			urls = append(urls, sitemapURL{Loc: loc})
		}
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
