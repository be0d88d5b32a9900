package tutorials

import (
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/eringen/tutorials/search"
)

// ErrNotFound is returned when a requested tutorial does not exist.
var ErrNotFound = sql.ErrNoRows

// TutorialCache is an in-memory cache of published tutorials and tags with TTL.
type TutorialCache struct {
	mu        sync.RWMutex
	tutorials []Tutorial
	tags      []string
	fetched   time.Time
	ttl       time.Duration
	store     *Store
}

// NewTutorialCache creates a TutorialCache backed by the given Store.
func NewTutorialCache(s *Store, ttl time.Duration) *TutorialCache {
	return &TutorialCache{store: s, ttl: ttl}
}

func (c *TutorialCache) valid() bool {
	return c.tutorials != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *TutorialCache) Invalidate() {
	c.mu.Lock()
	c.tutorials = nil
	c.tags = nil
	c.mu.Unlock()
}

func (c *TutorialCache) load() error {
	if c.valid() {
		return nil
	}
	tutorials, err := c.store.ListTutorials("")
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	if tutorials == nil {
		// non-nil marks an empty but loaded cache
		tutorials = []Tutorial{}
	}
	c.tutorials = tutorials
	c.tags = tags
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns cached tutorials and tags after ensuring the cache is
// fresh. It tries a read lock first; only takes a write lock if a reload is
// needed. The returned slices are shared and must not be modified.
func (c *TutorialCache) ensureLoaded() ([]Tutorial, []string, error) {
	c.mu.RLock()
	if c.valid() {
		tutorials, tags := c.tutorials, c.tags
		c.mu.RUnlock()
		return tutorials, tags, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, err
	}
	return c.tutorials, c.tags, nil
}

// ListTutorials returns published tutorials, optionally filtered by tag.
func (c *TutorialCache) ListTutorials(tag string) ([]Tutorial, error) {
	tutorials, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if tag == "" {
		return tutorials, nil
	}
	return filterByTag(tutorials, tag), nil
}

// ListTagged resolves a tag page slug. It returns the tag as displayed and
// the tutorials carrying any tag with that slug; tag is empty when nothing
// matches.
func (c *TutorialCache) ListTagged(slug string) (tag string, list []Tutorial, err error) {
	tutorials, tags, err := c.ensureLoaded()
	if err != nil {
		return "", nil, err
	}
	slug = strings.ToLower(slug)
	matching := make(map[string]struct{})
	for _, t := range tags {
		if TagSlug(t) == slug {
			if tag == "" {
				tag = t
			}
			matching[t] = struct{}{}
		}
	}
	if tag == "" {
		return "", nil, nil
	}
	for _, t := range tutorials {
		for _, tt := range t.Tags {
			if _, ok := matching[normalizeTag(tt)]; ok {
				list = append(list, t)
				break
			}
		}
	}
	return tag, list, nil
}

// ListTags returns all unique tags from published tutorials.
func (c *TutorialCache) ListTags() ([]string, error) {
	_, tags, err := c.ensureLoaded()
	return tags, err
}

// GetTutorial returns a single published tutorial by slug from the cache.
func (c *TutorialCache) GetTutorial(slug string) (Tutorial, error) {
	tutorials, _, err := c.ensureLoaded()
	if err != nil {
		return Tutorial{}, err
	}
	for _, t := range tutorials {
		if t.Slug == slug {
			return t, nil
		}
	}
	return Tutorial{}, ErrNotFound
}

// Search filters the first limit published tutorials (all of them when limit
// is not positive) by query.
func (c *TutorialCache) Search(query string, limit int, opts ...search.Option) (Listing, error) {
	tutorials, _, err := c.ensureLoaded()
	if err != nil {
		return Listing{}, err
	}
	return search.NewState(LimitListing(tutorials, limit), query, opts...), nil
}

// LimitListing keeps the first limit tutorials, or all of them when limit
// is not positive. The listing filters only what it would show unfiltered.
func LimitListing(tutorials []Tutorial, limit int) []Tutorial {
	if limit > 0 && len(tutorials) > limit {
		return tutorials[:limit]
	}
	return tutorials
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func filterByTag(tutorials []Tutorial, tag string) []Tutorial {
	normalized := normalizeTag(tag)
	var filtered []Tutorial
	for _, t := range tutorials {
		for _, tt := range t.Tags {
			if normalizeTag(tt) == normalized {
				filtered = append(filtered, t)
				break
			}
		}
	}
	return filtered
}
