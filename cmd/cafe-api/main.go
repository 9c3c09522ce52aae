package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/cozy-cafe/internal/config"
	"github.com/jcmexdev/cozy-cafe/internal/menu"
	"github.com/jcmexdev/cozy-cafe/internal/ordering/app"
	"github.com/jcmexdev/cozy-cafe/internal/ordering/journal/sqlite"
	"github.com/jcmexdev/cozy-cafe/internal/pkg/cache"
	"github.com/jcmexdev/cozy-cafe/internal/pkg/telemetry"
	"github.com/jcmexdev/cozy-cafe/internal/storefront/infra/httpx"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(cfg.Telemetry.LogLevel)

	if err := run(cfg); err != nil {
		slog.Error("cafe api stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.SetupTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	catalog, err := menu.Load(cfg.Cafe.MenuFile)
	if err != nil {
		return err
	}

	opts := []app.Option{app.WithLocation(cfg.Cafe.Location)}
	if cfg.Journal.Path != "" {
		repo, err := sqlite.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer repo.Close()
		opts = append(opts, app.WithJournal(repo))
		slog.Info("order journal enabled", "path", cfg.Journal.Path)
	}
	svc := app.NewService(catalog, opts...)

	var idem cache.Cache
	if cfg.Redis.Addr != "" {
		rc := cache.NewRedisCache(cfg.Redis.Addr, "cafe")
		defer rc.Close()
		if err := rc.Ping(ctx); err != nil {
			slog.Warn("redis unreachable, idempotency keys may be ignored", "addr", cfg.Redis.Addr, "error", err)
		}
		idem = rc
	}

	handler := httpx.NewHandler(svc, idem, cfg.Redis.IdempotencyTTL, cfg.Cafe.LowStockThreshold)
	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           otelhttp.NewHandler(httpx.NewRouter(handler), cfg.Telemetry.ServiceName),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("cafe api running", "addr", cfg.HTTP.Addr, "menu_items", len(catalog.Items()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
