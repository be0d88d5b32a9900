package tutorials

import (
	"github.com/eringen/tutorials/search"
	"github.com/eringen/tutorials/theme"
)

// Tutorial is the core content type stored in SQLite and rendered by templates.
type Tutorial struct {
	ID         string   `json:"id"`
	TutorialID int      `json:"tutorial_id"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Date       string   `json:"date,omitempty"`
	Tags       []string `json:"tags"`
	Lead       string   `json:"lead"`
	Icon       string   `json:"icon,omitempty"`
	Rotate     bool     `json:"rotate,omitempty"` // spin the icon in the home page hero
	Link       string   `json:"url"`
	HTML       string   `json:"-"`
	SourceHash string   `json:"-"`
	Published  bool     `json:"-"`
}

// SearchFields exposes the texts the tutorial filter matches against.
func (t Tutorial) SearchFields() search.Fields {
	return search.Fields{Title: t.Title, Lead: t.Lead, Tags: t.Tags}
}

// Listing is the filtered tutorial list shown on the tutorials page.
type Listing = search.State[Tutorial]

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Page is the per-request context every view receives.
type Page struct {
	Site  SiteConfig
	Meta  PageMeta
	Theme theme.Mode
	CSRF  string
}
