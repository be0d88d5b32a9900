package tutorials

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// feedSize is the number of most recent tutorials in feed.xml.
const feedSize = 20

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	Categories  []string `xml:"category"`
	PubDate     string   `xml:"pubDate,omitempty"`
	GUID        string   `xml:"guid"`
}

func (a *App) renderRSS(c echo.Context, tutorials []Tutorial) error {
	base := a.Config.URL
	n := min(len(tutorials), feedSize)
	items := make([]rssItem, 0, n)
	for _, t := range tutorials[:n] {
		pubDate := ""
		if d, err := time.Parse("2006-01-02", t.Date); err == nil {
			pubDate = d.Format(time.RFC1123Z)
		}
		pageURL := BuildURL(base, "tutorials", t.Slug)
		items = append(items, rssItem{
			Title:       t.Title,
			Link:        pageURL,
			Description: t.Lead,
			Categories:  t.Tags,
			PubDate:     pubDate,
			GUID:        pageURL,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
