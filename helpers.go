package tutorials

import (
	"encoding/json"
	"net/url"
	"path"
	"strings"
)

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// TutorialPath returns the site-relative path of a tutorial page.
func TutorialPath(slug string) string {
	return "/tutorials/" + url.PathEscape(slug) + "/"
}

// TagSlug returns the kebab-case URL segment of a tag ("Machine Learning"
// becomes "machine-learning"). Tags without ASCII letters or digits fall
// back to their lowercased form.
func TagSlug(tag string) string {
	if s := Slugify(tag); s != "" {
		return s
	}
	return normalizeTag(tag)
}

// TagPath returns the site-relative path of a tag page.
func TagPath(tag string) string {
	return "/tags/" + url.PathEscape(TagSlug(tag)) + "/"
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// FilterRelated finds tutorials that share at least one tag with current.
func FilterRelated(current Tutorial, tutorials []Tutorial) []Tutorial {
	tagSet := make(map[string]struct{})
	for _, t := range current.Tags {
		if tag := normalizeTag(t); tag != "" {
			tagSet[tag] = struct{}{}
		}
	}
	var related []Tutorial
	for _, t := range tutorials {
		if t.Slug == current.Slug {
			continue
		}
		for _, tt := range t.Tags {
			if _, ok := tagSet[normalizeTag(tt)]; ok {
				related = append(related, t)
				break
			}
		}
	}
	return related
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     cfg.Name,
		"url":      BuildURL(cfg.URL),
		"potentialAction": map[string]string{
			"@type":       "SearchAction",
			"target":      BuildURL(cfg.URL, "tutorials") + "?q={search_term_string}",
			"query-input": "required name=search_term_string",
		},
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// TechArticleJsonLD returns a JSON-LD string for a TechArticle schema.
func TechArticleJsonLD(t Tutorial, cfg SiteConfig) string {
	pageURL := BuildURL(cfg.URL, "tutorials", t.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "TechArticle",
		"headline":    t.Title,
		"description": t.Lead,
		"url":         pageURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   pageURL,
		},
	}
	if t.Date != "" {
		data["datePublished"] = t.Date
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if len(t.Tags) > 0 {
		data["keywords"] = JoinTags(t.Tags)
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
