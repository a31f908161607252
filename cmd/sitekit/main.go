// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/involv/sitekit/internal/cache"
	"github.com/involv/sitekit/internal/config"
	"github.com/involv/sitekit/internal/contact"
	"github.com/involv/sitekit/internal/content"
	"github.com/involv/sitekit/internal/content/sanity"
	"github.com/involv/sitekit/internal/handler"
	"github.com/involv/sitekit/internal/imaging"
	"github.com/involv/sitekit/internal/logging"
	"github.com/involv/sitekit/internal/middleware"
	"github.com/involv/sitekit/internal/render"
	"github.com/involv/sitekit/internal/scheduler"
	"github.com/involv/sitekit/internal/seo"
	"github.com/involv/sitekit/internal/session"
	"github.com/involv/sitekit/internal/site"
	"github.com/involv/sitekit/internal/store"
	"github.com/involv/sitekit/internal/version"
	"github.com/involv/sitekit/web"
)

const sanityImageHost = "https://cdn.sanity.io"

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "sitekit - Involv marketing site server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_SITE               Site profile: %v (default: safeplay)\n", site.Known())
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_SESSION_SECRET     Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_CONTENT_BACKEND    sanity|sqlite (default: sanity)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_SANITY_PROJECT_ID  Sanity project (required for sanity)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_DB_PATH            SQLite database path (default: ./data/sitekit.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_SERVER_PORT        Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_REDIS_URL          Redis URL for shared caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SITEKIT_ACCESS_GATE        Require the access cookie on every page (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		v := version.Get()
		_, _ = fmt.Printf("sitekit %s (commit: %s, built: %s)\n", v.Version, v.GitCommit, v.BuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})
	slog.SetDefault(slog.New(textHandler).With("site", cfg.Site))

	profile, err := site.Load(cfg.Site, cfg.SiteProfile)
	if err != nil {
		return fmt.Errorf("loading site profile: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Warnings and errors also land in the events table.
	logger := slog.New(logging.NewEventLogHandler(textHandler, db)).With("site", cfg.Site)
	slog.SetDefault(logger)

	ctx := context.Background()

	c := cache.New(cache.Config{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: cfg.RevalidateInterval(),
		MaxSize:    cfg.CacheMaxSize,
	}, logger)
	defer func() { _ = c.Close() }()
	logger.Info("cache initialized", "backend", cache.Backend(c))

	source, err := contentSource(ctx, cfg, db)
	if err != nil {
		return err
	}
	resolver := content.NewResolver(source, c, content.ResolverOptions{
		Site:       cfg.Site,
		Revalidate: cfg.RevalidateInterval(),
		Logger:     logger,
	})
	defer resolver.Close()
	if err := resolver.Warm(ctx); err != nil {
		// Pages degrade to empty states until the next refresh succeeds.
		logger.Warn("initial content warm failed", "backend", cfg.ContentBackend, "error", err)
	}

	contactService := contact.NewService(contact.ServiceConfig{
		Site:    cfg.Site,
		Contact: profile.Contact,
		CC:      cfg.FormCC,
		Relay:   contact.NewRelay(cfg.FormEndpoint, cfg.FormRelayTimeout()),
		Guard:   contact.NewGuard(c, contact.DefaultGuardWindow),
		DB:      db,
		Logger:  logger,
	})

	sessionManager := session.New(db, cfg.IsDevelopment())

	sched, err := scheduler.New(scheduler.Options{
		Warmer:     resolver,
		Revalidate: cfg.RevalidateInterval(),
		DB:         db,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		Profile:     profile,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	siteURL := cfg.SiteURL
	if siteURL == "" {
		siteURL = profile.BaseURL()
	}
	pages := handler.NewPages(handler.PagesConfig{
		Renderer: renderer,
		Profile:  profile,
		SEO: &seo.SiteConfig{
			SiteName:        profile.Name,
			SiteURL:         siteURL,
			SiteDescription: profile.Description,
			DefaultOGImage:  profile.OGImage,
			Logo:            profile.Logo,
			NoIndex:         cfg.AccessGate,
		},
		Logger: logger,
	})

	frontendHandler := handler.NewFrontendHandler(pages, resolver)
	contactHandler := handler.NewContactHandler(pages, contactService, sessionManager)
	seoHandler := handler.NewSEOHandler(handler.SEOConfig{
		Content:     resolver,
		Profile:     profile,
		SiteURL:     siteURL,
		DisallowAll: cfg.AccessGate,
		Logger:      logger,
	})
	imageHandler := handler.NewImageHandler(imaging.NewProcessor(cfg.UploadsDir), logger)
	healthHandler := handler.NewHealthHandler(handler.HealthConfig{
		DB:             db,
		Cache:          c,
		Site:           cfg.Site,
		ContentBackend: cfg.ContentBackend,
		Jobs:           sched,
		UploadsDir:     cfg.UploadsDir,
		Detailed:       cfg.IsDevelopment(),
	})

	var imageHosts []string
	if cfg.ContentBackend == config.BackendSanity {
		imageHosts = append(imageHosts, sanityImageHost)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Compress(1024))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.StripTrailingSlash)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment(), imageHosts...)))

	if cfg.AccessGate {
		r.Use(middleware.AccessGate(middleware.AccessGateConfig{
			CookieName:     cfg.AccessCookie,
			LoginURL:       cfg.LoginURL,
			PublicPrefixes: middleware.DefaultPublicPrefixes,
			Logger:         logger,
		}))
		logger.Info("access gate enabled", "cookie", cfg.AccessCookie, "login", cfg.LoginURL)
	}

	staticFS, err := fs.Sub(web.Static, "static/dist")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.With(middleware.StaticCache(24 * time.Hour)).
		Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/img/{size}/{quality}/*", imageHandler.Serve)

	r.Get("/health", healthHandler.Health)
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	r.Get("/sitemap.xml", seoHandler.Sitemap)
	r.Get("/robots.txt", seoHandler.Robots)

	// Pages carry the session for the contact flash.
	r.Group(func(r chi.Router) {
		r.Use(sessionManager.LoadAndSave)
		r.Use(middleware.RateLimit(1, 5, http.MethodPost))
		r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.ServerAddr())))

		r.Get("/", frontendHandler.Home)
		r.Get("/features", frontendHandler.Features)
		r.Get("/pricing", frontendHandler.Pricing)
		r.Get("/about", frontendHandler.About)
		r.Get("/contact", contactHandler.Show)
		r.Post("/contact", contactHandler.Submit)
		r.Get("/case-studies", frontendHandler.CaseStudies)
		r.Get("/case-studies/{slug}", frontendHandler.CaseStudy)
		r.Get("/insights", frontendHandler.Insights)
		r.Get("/insights/{slug}", frontendHandler.Insight)
		for _, lp := range profile.Legal {
			r.Get("/"+lp.Slug, frontendHandler.Legal(lp.Slug))
		}
	})

	r.NotFound(frontendHandler.NotFound)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "content", cfg.ContentBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// contentSource builds the configured backend. The sqlite mirror is seeded
// with sample records when it is empty or SITEKIT_DO_SEED is set.
func contentSource(ctx context.Context, cfg *config.Config, db *sql.DB) (content.Source, error) {
	switch cfg.ContentBackend {
	case config.BackendSQLite:
		if err := store.SeedContent(ctx, db, cfg.DoSeed); err != nil {
			return nil, fmt.Errorf("seeding content: %w", err)
		}
		return store.NewContentSource(db), nil
	default:
		client, err := sanity.New(sanity.Config{
			ProjectID:  cfg.SanityProjectID,
			Dataset:    cfg.SanityDataset,
			APIVersion: cfg.SanityAPIVersion,
			Token:      cfg.SanityToken,
			UseCDN:     cfg.SanityUseCDN,
		})
		if err != nil {
			return nil, fmt.Errorf("creating sanity client: %w", err)
		}
		return client, nil
	}
}
