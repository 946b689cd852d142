package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/devilmonastery/coderstoolbox/internal/catalog"
	"github.com/devilmonastery/coderstoolbox/internal/identity"
	"github.com/devilmonastery/coderstoolbox/internal/pkg/idgen"
	"github.com/devilmonastery/coderstoolbox/internal/pkg/logger"
	"github.com/devilmonastery/coderstoolbox/internal/pkg/metrics"
	"github.com/devilmonastery/coderstoolbox/web/internal/config"
	"github.com/devilmonastery/coderstoolbox/web/internal/handlers"
	"github.com/devilmonastery/coderstoolbox/web/internal/middleware"
	"github.com/devilmonastery/coderstoolbox/web/internal/render"
)

const shutdownTimeout = 10 * time.Second

// setupWebLogging configures the global logger for the web service
func setupWebLogging(logLevel, logFormat string) error {
	cfg := logger.Config{
		Level:       logger.ParseLevel(logLevel),
		LogToStderr: true, // Web service always logs to stderr
		Format:      logFormat,
	}

	globalLogger, err := logger.SetupLogger(cfg)
	if err != nil {
		return err
	}

	// Set as default logger so all slog.Info/Warn/Error calls use our configured logger
	slog.SetDefault(globalLogger)

	return nil
}

func main() {
	configPath := flag.String("config", "", "path to config file")
	nodeID := flag.Int64("node", 1, "snowflake node ID for request IDs (0-1023)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Must be done before any logging calls
	if err = setupWebLogging(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to setup logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *nodeID); err != nil {
		slog.Error("web service failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.WebServerConfig, nodeID int64) error {
	log := slog.Default().With("component", "web")
	log.Info("starting coders toolbox web service", slog.String("version", render.Version))

	if err := idgen.Initialize(nodeID); err != nil {
		return fmt.Errorf("failed to initialize request IDs: %w", err)
	}

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	if cfg.Site.BaseURL != "" {
		cat.Site.BaseURL = cfg.Site.BaseURL
	}
	metrics.SetCatalogTools(cat.CountByStatus())
	log.Info("catalog loaded",
		slog.Int("tools", len(cat.Tools())),
		slog.String("source", catalogSource(cfg.Catalog.Path)))

	templates, err := render.LoadTemplates(cfg.Templates.Path)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	render.LogTemplateNames(templates, log)

	// Build the identity service once, at startup; later lookups share it
	accounts := identity.Default()
	if accounts.SignInEnabled() {
		log.Info("accounts enabled")
	}

	h := handlers.New(cat, templates, identity.DefaultGuard(log), accounts, log)
	authMw := middleware.NewAuthMiddleware(accounts, log)
	router := createRouter(h, authMw, cfg.Static.Path, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{
		newServer(cfg.Server.Addr(), router),
		newServer(cfg.Server.MetricsAddr(), metricsRouter()),
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.Info("listening", slog.String("address", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case err = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if serr := srv.Shutdown(shutdownCtx); serr != nil {
			log.Error("error during shutdown", slog.String("address", srv.Addr), slog.Any("error", serr))
		}
	}
	return err
}

func catalogSource(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}

// newServer builds an HTTP server with the project's timeouts
func newServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

func metricsRouter() http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return router
}

// createRouter sets up the HTTP router with all routes and middleware
func createRouter(h *handlers.Handler, authMw *middleware.AuthMiddleware, staticPath string, log *slog.Logger) http.Handler {
	router := mux.NewRouter()
	logRequests := middleware.LogRequest(log)

	// Static files with version path: /static/{version}/...
	// Strip /static/{version}/ prefix and serve from the static directory
	staticDir := http.Dir(staticPath)
	router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.SplitN(r.URL.Path, "/", 2)
		if len(parts) == 2 {
			r.URL.Path = "/" + parts[1]
		}
		// Versioned assets never change
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		http.FileServer(staticDir).ServeHTTP(w, r)
	})))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	router.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":%q}`, render.Version)
	}).Methods("GET")

	// Public pages
	router.HandleFunc("/", h.Home).Methods("GET")
	router.HandleFunc("/tools", h.ToolsIndex).Methods("GET")
	router.HandleFunc("/tools/{slug}", h.Tool).Methods("GET")
	router.HandleFunc("/robots.txt", h.Robots).Methods("GET")
	router.HandleFunc("/sitemap.xml", h.Sitemap).Methods("GET")

	// Sign-in flow
	router.HandleFunc("/handler/sign-in", h.SignIn).Methods("GET")
	router.HandleFunc("/handler/oauth-callback", h.OAuthCallback).Methods("GET")
	router.HandleFunc("/handler/sign-out", h.SignOut).Methods("POST")

	// Pages that need a verified session
	router.Handle("/account", authMw.RequireUser(http.HandlerFunc(h.Account))).Methods("GET")

	router.Use(logRequests)
	router.NotFoundHandler = logRequests(http.HandlerFunc(h.NotFound))

	return router
}
