// Package poetbook is a small poetry publishing engine built with Go, Echo
// and templ. It serves a public collection of poems, an admin view gated by a
// shared secret, RSS, a sitemap and share-card images.
//
// Pages are rendered through the ViewFuncs struct so a site can replace any
// template; DefaultViews provides a complete set.
package poetbook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/eringen/poetbook/collection"
	"github.com/eringen/poetbook/storage"
	"github.com/eringen/poetbook/views"
)

// ViewFuncs holds the templ components the handlers render. Any nil field
// falls back to DefaultViews.
type ViewFuncs struct {
	Home           func(poems []collection.Poem, activeTag string, tags []string) templ.Component
	Poem           func(poem collection.Poem, related []collection.Poem) templ.Component
	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(d views.Dashboard) templ.Component
	AdminForm      func(f views.PoemForm) templ.Component
	NotFound       func() templ.Component
	ServerError    func() templ.Component
}

// DefaultViews returns the built-in templates bound to cfg.
func DefaultViews(cfg SiteConfig) ViewFuncs {
	vc := cfg.viewConfig()
	return ViewFuncs{
		Home: func(poems []collection.Poem, activeTag string, tags []string) templ.Component {
			return views.Home(vc, poems, activeTag, tags)
		},
		Poem: func(poem collection.Poem, related []collection.Poem) templ.Component {
			return views.Poem(vc, poem, related)
		},
		AdminLogin: func(showError bool, csrfToken string) templ.Component {
			return views.AdminLogin(vc, showError, csrfToken)
		},
		AdminDashboard: func(d views.Dashboard) templ.Component {
			return views.AdminDashboard(vc, d)
		},
		AdminForm: func(f views.PoemForm) templ.Component {
			return views.AdminForm(vc, f)
		},
		NotFound:    func() templ.Component { return views.NotFound(vc) },
		ServerError: func() templ.Component { return views.ServerError(vc) },
	}
}

func (v *ViewFuncs) fill(def ViewFuncs) {
	if v.Home == nil {
		v.Home = def.Home
	}
	if v.Poem == nil {
		v.Poem = def.Poem
	}
	if v.AdminLogin == nil {
		v.AdminLogin = def.AdminLogin
	}
	if v.AdminDashboard == nil {
		v.AdminDashboard = def.AdminDashboard
	}
	if v.AdminForm == nil {
		v.AdminForm = def.AdminForm
	}
	if v.NotFound == nil {
		v.NotFound = def.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = def.ServerError
	}
}

func (c SiteConfig) viewConfig() views.SiteConfig {
	return views.SiteConfig{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
	}
}

// App is the central poetbook application. It wires together storage, the
// collection, handlers, middleware and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *collection.Store
	Views  ViewFuncs

	kv           storage.Storage
	ownsKV       bool
	log          logrus.FieldLogger
	now          func() time.Time
	registry     *prometheus.Registry
	metrics      *metrics
	loginLimiter *LoginLimiter
	cards        *CardCache
	customRoutes []func(*App)
	ready        bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, v ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	v.fill(DefaultViews(cfg))

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  v,
		now:    time.Now,
		cards:  NewCardCache(time.Hour),
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		a.log = l
	}
	return a
}

// Open connects storage and loads the collection without starting any HTTP
// machinery. Offline commands such as export and deploy only need this.
func (a *App) Open(ctx context.Context) error {
	if a.Store != nil {
		return nil
	}
	if a.kv == nil {
		kv, err := storage.Open(ctx, a.Config.StorageConfig())
		if err != nil {
			return fmt.Errorf("poetbook: open storage: %w", err)
		}
		a.kv = kv
		a.ownsKV = true
	}

	store, err := collection.Open(ctx, a.kv,
		collection.WithClock(a.now),
		collection.WithLogger(a.log.WithField("component", "collection")),
	)
	if err != nil {
		return fmt.Errorf("poetbook: open collection: %w", err)
	}
	a.Store = store
	return nil
}

// Setup validates the config, opens storage and the collection, and
// registers middleware and routes. Start calls it when needed; tests call it
// directly and drive a.Echo with httptest.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if err := a.Open(ctx); err != nil {
		return err
	}

	if n := a.Config.LoginAttemptsPerMinute; n > 0 {
		a.loginLimiter = NewLoginLimiter(n, time.Minute)
	}

	a.registry = prometheus.NewRegistry()
	a.metrics = newMetrics(a.registry, a.Store)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the App up and serves until the server stops.
func (a *App) Start() error {
	if err := a.Setup(context.Background()); err != nil {
		return err
	}
	a.log.WithField("addr", a.Config.Addr).Info("poetbook listening")
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Run is Start with graceful shutdown when ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	errc := make(chan error, 1)
	go func() {
		errc <- a.Start()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.log.Info("shutting down")
	if err := a.Echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	assetHandler := http.StripPrefix("/public/", http.FileServer(http.FS(assets)))
	e.GET("/public/poetbook.css", echo.WrapHandler(assetHandler))
	e.GET("/public/poetbook.js", echo.WrapHandler(assetHandler))
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/metrics", a.metricsHandler())

	// Public routes
	e.GET("/", a.handleHome)
	e.GET("/poems/:id/", a.handlePoem)
	e.GET("/poems/:id/card.png", a.handleCard)
	e.GET("/feed.xml", a.handleFeed)
	e.GET("/sitemap.xml", a.handleSitemap)

	// Admin routes
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)
	e.GET("/admin/status/", a.handleAdminStatus)
	e.GET("/admin/new/", a.handleAdminNew)
	e.GET("/admin/poem/:id/", a.handleAdminPoem)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/poem/:id/", a.handleAdminDelete)
	e.GET("/admin/export/", a.handleAdminExport)
	e.POST("/admin/import/", a.handleAdminImport, importBodyLimit())
}

// Close stops background work and closes storage the App opened itself.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.ownsKV && a.kv != nil {
		return a.kv.Close()
	}
	return nil
}
