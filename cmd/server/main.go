// file: cmd/server/main.go

package main

import (
	"GestionBC/internal/adapter/datasource/sqlite"
	"GestionBC/internal/adapter/mail"
	"GestionBC/internal/fetcher"
	"GestionBC/internal/observe"
	"GestionBC/internal/service"
	"GestionBC/internal/service/view"
	"GestionBC/internal/service/view_config"
	"GestionBC/internal/transport/grpcserver"
	"GestionBC/internal/transport/http/middleware"
	"GestionBC/internal/transport/http/router"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

const (
	version         = "v1.0.0"
	shutdownTimeout = 10 * time.Second
	healthInterval  = 30 * time.Second
)

func main() {
	configPath := flag.String("config", filepath.Join("configs", "config.yaml"), "path to the configuration file")
	flag.Parse()

	// Until the logger is configured, boot messages go through the standard log.
	log.Printf("GestionBC %s starting...", version)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}

	logCloser := observe.InitLogger(cfg.Server.LogLevel, cfg.Server.LogFile)
	defer logCloser.Close()
	observe.Register()
	observe.EnablePprof(cfg.Server.PprofAddr)
	slog.Info("GestionBC starting up", "version", version, "config", *configPath)

	if err := run(cfg); err != nil {
		slog.Error("GestionBC stopped with an error", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
	slog.Info("GestionBC stopped")
}

func run(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() {
		slog.Info("closing database")
		if err := db.Close(); err != nil {
			slog.Error("close database", "error", err)
		}
	}()
	if err := service.InitDomainTables(db); err != nil {
		return fmt.Errorf("init tables: %w", err)
	}
	repo, err := sqlite.NewRepository(db)
	if err != nil {
		return err
	}

	// Tabular views: screen registry, row source and the per-screen stores.
	registry, err := view_config.NewRegistry(cfg.Views.Directory)
	if err != nil {
		return fmt.Errorf("load screens: %w", err)
	}
	source := view.NewSource(view.Repositories{Catalog: repo, Bcs: repo, Reports: repo, Suivi: repo, Ots: repo},
		fetcher.NewRemote(cfg.Remote.Timeout, cfg.Remote.Token))
	views, err := view.NewService(registry, source, view.Options{
		CacheSize:       cfg.Views.CacheSize,
		CacheTTL:        cfg.Views.CacheTTL,
		DefaultPageSize: cfg.Views.DefaultPageSize,
	})
	if err != nil {
		return err
	}
	registry.OnChange(views.InvalidateScreens)
	if err := registry.StartWatcher(ctx); err != nil {
		slog.Warn("screen hot reload disabled", "error", err)
	}

	catalog, err := service.NewCatalogService(repo, views)
	if err != nil {
		return err
	}
	bcs, err := service.NewBonDeCommandeService(repo, repo, repo, views)
	if err != nil {
		return err
	}
	suivi, err := service.NewSuiviService(repo, views)
	if err != nil {
		return err
	}
	ots, err := service.NewOtService(repo, repo, repo, views)
	if err != nil {
		return err
	}
	notifications, err := service.NewNotificationService(repo, repo, mail.New(cfg.Mail), cfg.Scheduler.DelayThreshold)
	if err != nil {
		return err
	}
	dashboard, err := service.NewDashboardService(repo, repo, repo)
	if err != nil {
		return err
	}

	if cfg.Scheduler.Enabled {
		scheduler, err := service.NewScheduler(notifications, dashboard, cfg.Scheduler.DelayCheckCron, cfg.Scheduler.MetricsCron)
		if err != nil {
			return err
		}
		scheduler.Start()
		slog.Info("background jobs scheduled", "jobs", scheduler.Entries())
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			scheduler.Stop(sctx)
		}()
	}

	if cfg.Server.GrpcPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GrpcPort))
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		health := grpcserver.NewHealthServer()
		go func() {
			if err := health.Serve(lis); err != nil {
				slog.Error("grpc health server", "error", err)
			}
		}()
		go health.Monitor(ctx, db, healthInterval)
		defer health.Stop()
	}

	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router.New(router.Dependencies{
			Catalog:        catalog,
			BonsDeCommande: bcs,
			Suivi:          suivi,
			Ots:            ots,
			Notifications:  notifications,
			Dashboard:      dashboard,
			Views:          views,
			Limiter:        middleware.NewRateLimiter(cfg.RateLimit),
			DB:             db,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	slog.Info("HTTP server stopped")
	return nil
}

// openDatabase creates the parent directory when needed and checks the connection.
func openDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %q: %w", dir, err)
		}
	}
	db, err := sql.Open(sqlite.DriverName, sqlite.DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database %q: %w", path, err)
	}
	return db, nil
}
