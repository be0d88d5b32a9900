// Package tutorials serves a tutorial site: Markdown tutorials imported into
// SQLite, rendered through templ views, and listed with a live text filter.
//
// Users provide their own templ templates via the ViewFuncs struct (or take
// views.Default()), and tutorials handles the routing, middleware, caching
// and search.
package tutorials

import (
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/tutorials/search"
	"github.com/eringen/tutorials/theme"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages.
type ViewFuncs struct {
	Home          func(p Page, featured *Tutorial, latest []Tutorial, tags []string) templ.Component
	Tutorials     func(p Page, listing Listing) templ.Component
	SearchResults func(listing Listing) templ.Component
	Tutorial      func(p Page, t Tutorial, related []Tutorial) templ.Component
	Tag           func(p Page, tag string, tutorials []Tutorial) templ.Component
	NotFound      func(p Page) templ.Component
	ServerError   func(p Page) templ.Component
}

// App is the central application. It wires together the store, cache,
// handlers, middleware, theme, and user-provided templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *TutorialCache
	Views  ViewFuncs
	Theme  *theme.Switch

	searchOpts    []search.Option
	searchLimiter *RateLimiter
	mode          atomic.Value // theme.Mode, kept current by a Theme subscription
	unsubscribe   func()
	customRoutes  []func(*App)
	ownStore      bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	initial := theme.Light
	if cfg.DarkMode {
		initial = theme.Dark
	}

	a := &App{
		Config:     cfg,
		Echo:       echo.New(),
		Views:      views,
		Theme:      theme.NewSwitch(initial),
		searchOpts: []search.Option{search.WithTagMode(search.ParseTagMode(cfg.SearchTagMode))},
	}
	a.Echo.HideBanner = true

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store (unless one was supplied), builds the cache, and
// registers middleware and routes. Start calls it; tests call it directly
// and drive a.Echo through httptest.
func (a *App) Init() error {
	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("tutorials: init store: %w", err)
		}
		a.Store = store
		a.ownStore = true
	}

	a.Cache = NewTutorialCache(a.Store, a.Config.CacheTTL)
	a.searchLimiter = NewRateLimiter(a.Config.SearchRateLimit, time.Minute)

	a.Theme.SetLogger(a.Echo.Logger)
	a.unsubscribe = a.Theme.Subscribe(func(m theme.Mode) {
		a.mode.Store(m)
		a.Echo.Logger.Infof("theme: %s", m)
	})

	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	return nil
}

// Start initializes the app and starts the server.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	if err := a.Echo.Start(a.Config.Addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	a.serveEmbeddedAssets()

	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleHome)
	e.GET("/blog/", handleListingRedirect)
	e.GET("/writing/", handleListingRedirect)
	e.GET("/tutorials/", a.handleTutorials)
	e.GET("/tutorials/:slug/", a.handleTutorial)
	e.GET("/tags/:tag/", a.handleTag)
	e.POST("/theme/", a.handleThemeToggle)

	api := e.Group(apiPrefix, noStore, a.rateLimit)
	api.GET("/search", a.handleSearchAPI)
}

// serveEmbeddedAssets serves the bundled stylesheet and search script under
// /public, except where the site's static directory ships its own copy.
func (a *App) serveEmbeddedAssets() {
	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	handler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(assets))))
	entries, _ := fs.ReadDir(assets, ".")
	for _, entry := range entries {
		if _, err := os.Stat(filepath.Join(a.Config.StaticDir, entry.Name())); err == nil {
			continue
		}
		a.Echo.GET("/public/"+entry.Name(), handler)
	}
}

// currentMode returns the theme as last delivered to the App's subscription.
func (a *App) currentMode() theme.Mode {
	if m, ok := a.mode.Load().(theme.Mode); ok {
		return m
	}
	return theme.Light
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.searchLimiter != nil {
		a.searchLimiter.Stop()
	}
	if a.Store != nil && a.ownStore {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
