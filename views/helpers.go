package views

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/tutorials"
	"github.com/eringen/tutorials/theme"
)

// ThemeClass returns the class set on <html> for the current theme.
func ThemeClass(m theme.Mode) string {
	if m.IsDark() {
		return "dark"
	}
	return "light"
}

// ThemeLabel is the text of the toggle button, naming the mode it switches to.
func ThemeLabel(m theme.Mode) string {
	if m.IsDark() {
		return "Light mode"
	}
	return "Dark mode"
}

// PageTitle builds the <title> text, avoiding "Site | Site" on the home page.
func PageTitle(p tutorials.Page) string {
	if p.Meta.Title == "" || p.Meta.Title == p.Site.Name {
		return p.Site.Name
	}
	return p.Meta.Title + " | " + p.Site.Name
}

// FormatDate renders a YYYY-MM-DD date as "January 2, 2006". Anything else is
// returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

// ResultCount formats the numeric total shown above the listing.
func ResultCount(n int) string {
	if n == 1 {
		return "1 tutorial"
	}
	return strconv.Itoa(n) + " tutorials"
}

// structuredData wraps a JSON-LD document in a script tag.
func structuredData(ld string) templ.Component {
	return templ.JSONScript("", json.RawMessage(ld)).WithType("application/ld+json")
}

// heroIconLink points the featured icon at its first tag, or at the tutorial
// itself when it has none.
func heroIconLink(t tutorials.Tutorial) string {
	if len(t.Tags) > 0 {
		return tutorials.TagPath(t.Tags[0])
	}
	return t.Link
}

func isActiveTag(tag, active string) bool {
	return active != "" && tutorials.TagSlug(tag) == tutorials.TagSlug(active)
}
