package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/huma-shared-libs/internal/http/health"
	v1routes "github.com/janisto/huma-shared-libs/internal/http/v1/routes"
	"github.com/janisto/huma-shared-libs/internal/platform/config"
	"github.com/janisto/huma-shared-libs/internal/platform/headers"
	applog "github.com/janisto/huma-shared-libs/internal/platform/logging"
	appmiddleware "github.com/janisto/huma-shared-libs/internal/platform/middleware"
	"github.com/janisto/huma-shared-libs/internal/platform/respond"
	"github.com/janisto/huma-shared-libs/internal/service/httpclient"
	itemsvc "github.com/janisto/huma-shared-libs/internal/service/items"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const docsPath = "/api-docs"

func main() {
	ctx := context.Background()
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(ctx, "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(ctx, "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogFatal(ctx, "invalid configuration", err)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogWarn(ctx, "ignoring log level", zap.String("level", cfg.LogLevel), zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, newCatalog(cfg)),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(ctx, "server listening",
			zap.String("addr", srv.Addr),
			zap.String("version", Version),
			zap.Bool("remote_catalog", cfg.UpstreamBaseURL != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogFatal(ctx, "listen failed", err, zap.String("addr", srv.Addr))
	case <-stop:
		applog.LogInfo(ctx, "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(ctx, "server exited")
}

// newCatalog returns the remote catalog when an upstream is configured and
// the seeded in-memory catalog otherwise.
func newCatalog(cfg *config.Config) itemsvc.Service {
	if cfg.UpstreamBaseURL == "" {
		return itemsvc.NewMemory(itemsvc.SeedItems())
	}

	hs := headers.New(nil).
		With(headers.JSON()).
		With(headers.UserAgent("huma-shared-libs/" + Version))
	if cfg.UpstreamToken != "" {
		hs = hs.With(headers.Bearer(cfg.UpstreamToken))
	}

	client := httpclient.NewClient(
		&http.Client{Timeout: cfg.HTTPClientTimeout},
		httpclient.WithBaseURL(cfg.UpstreamBaseURL),
		httpclient.WithHeaders(hs),
		httpclient.WithRetry(cfg.HTTPClientMaxRetries, 0),
		httpclient.WithResponseValidation(cfg.ValidateUpstream),
	)
	return itemsvc.NewRemote(client)
}

func newRouter(cfg *config.Config, catalog itemsvc.Service) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(cfg.APIPrefix+docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.CORSOrigins...),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP and X-Forwarded-For. Only run behind a
		// trusted reverse proxy such as Cloud Run.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(cfg.ProjectID),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(Version))
	router.Head("/health", health.Handler(Version))

	apiRouter := chi.Router(router)
	if cfg.APIPrefix != "" {
		apiRouter = chi.NewRouter()
		router.Mount(cfg.APIPrefix, apiRouter)
	}

	humaCfg := huma.DefaultConfig("Huma Shared Libs API", Version)
	humaCfg.DocsPath = docsPath
	if cfg.APIPrefix != "" {
		humaCfg.Servers = []*huma.Server{{URL: cfg.APIPrefix}}
	}
	api := humachi.New(apiRouter, humaCfg)
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, addCBORContent)

	v1routes.Register(api, catalog)
	return router
}

// addCBORContent advertises application/cbor wherever JSON is accepted or returned.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
	}
}
