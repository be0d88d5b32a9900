package tutorials

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// SiteConfig holds all configuration for a tutorials site.
type SiteConfig struct {
	Name        string // Site name (default "Tutorials")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags
	Author      string // Author name for JSON-LD

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/tutorials.db")
	ContentDir   string // Markdown/MDX source directory (default "content/tutorials")
	StaticDir    string // User static assets, served under /public (default "public")

	CacheTTL time.Duration // Tutorial cache TTL (default 5min)

	ListingLimit    int    // Max tutorials on the listing page (default 100)
	SearchTagMode   string // "joined" (default) or "each"
	SearchRateLimit int    // /api/search requests per IP per minute (default 120)
	DarkMode        bool   // Initial colour scheme
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Tutorials"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/tutorials.db"
	}
	if c.ContentDir == "" {
		c.ContentDir = "content/tutorials"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.ListingLimit == 0 {
		c.ListingLimit = 100
	}
	if c.SearchTagMode == "" {
		c.SearchTagMode = "joined"
	}
	if c.SearchRateLimit == 0 {
		c.SearchRateLimit = 120
	}
}

// fileConfig mirrors the TOML layout of config.toml.
type fileConfig struct {
	Name        string `toml:"name"`
	URL         string `toml:"url"`
	Description string `toml:"description"`
	Author      string `toml:"author"`

	Addr         string `toml:"addr"`
	DatabasePath string `toml:"database"`
	ContentDir   string `toml:"content"`
	StaticDir    string `toml:"static"`
	CacheTTL     string `toml:"cache_ttl"`

	Search struct {
		Limit     int    `toml:"limit"`
		TagMode   string `toml:"tag_mode"`
		RateLimit int    `toml:"rate_limit"`
	} `toml:"search"`

	Theme struct {
		Dark bool `toml:"dark"`
	} `toml:"theme"`
}

// LoadConfig reads a TOML config file. A missing file is not an error; the
// returned config then only carries defaults.
func LoadConfig(path string) (SiteConfig, error) {
	var cfg SiteConfig
	if path != "" {
		var fc fileConfig
		_, err := toml.DecodeFile(path, &fc)
		switch {
		case err == nil:
			c, err := fc.siteConfig()
			if err != nil {
				return SiteConfig{}, fmt.Errorf("%s: %w", path, err)
			}
			cfg = c
		case os.IsNotExist(err):
		default:
			return SiteConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.setDefaults()
	return cfg, nil
}

func (fc fileConfig) siteConfig() (SiteConfig, error) {
	cfg := SiteConfig{
		Name:            fc.Name,
		URL:             fc.URL,
		Description:     fc.Description,
		Author:          fc.Author,
		Addr:            fc.Addr,
		DatabasePath:    fc.DatabasePath,
		ContentDir:      fc.ContentDir,
		StaticDir:       fc.StaticDir,
		ListingLimit:    fc.Search.Limit,
		SearchTagMode:   fc.Search.TagMode,
		SearchRateLimit: fc.Search.RateLimit,
		DarkMode:        fc.Theme.Dark,
	}
	if fc.CacheTTL != "" {
		d, err := time.ParseDuration(fc.CacheTTL)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("cache_ttl: %w", err)
		}
		cfg.CacheTTL = d
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables when they are set.
func (c *SiteConfig) ApplyEnv() {
	envString(&c.Name, "SITE_NAME")
	envString(&c.URL, "SITE_URL")
	envString(&c.Description, "SITE_DESCRIPTION")
	envString(&c.Author, "SITE_AUTHOR")
	envString(&c.Addr, "ADDR")
	envString(&c.DatabasePath, "DATABASE_PATH")
	envString(&c.ContentDir, "CONTENT_DIR")
	envString(&c.StaticDir, "STATIC_DIR")
	envString(&c.SearchTagMode, "SEARCH_TAG_MODE")
	if v := os.Getenv("DARK_MODE"); v != "" {
		c.DarkMode = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.CacheTTL = d
		}
	}
	if v := os.Getenv("LISTING_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ListingLimit = n
		}
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
}

func envString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStore uses an already opened store instead of opening DatabasePath.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
