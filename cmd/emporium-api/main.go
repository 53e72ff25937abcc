package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-clan/unicorn-emporium/internal/academy"
	"github.com/terra-clan/unicorn-emporium/internal/api"
	"github.com/terra-clan/unicorn-emporium/internal/catalog"
	"github.com/terra-clan/unicorn-emporium/internal/config"
	"github.com/terra-clan/unicorn-emporium/internal/models"
	"github.com/terra-clan/unicorn-emporium/internal/storage"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting emporium-api",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
	)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	repo, err := openRepository(initCtx, cfg)
	if err != nil {
		slog.Error("failed to open repository", "error", err)
		os.Exit(1)
	}

	if cfg.Catalog.Seed {
		products := catalog.SampleProducts()
		if cfg.Catalog.SeedFile != "" {
			products, err = catalog.LoadSeedFile(cfg.Catalog.SeedFile)
			if err != nil {
				slog.Error("failed to load catalog seed file", "file", cfg.Catalog.SeedFile, "error", err)
				os.Exit(1)
			}
		}
		if _, err := catalog.Seed(initCtx, repo, products); err != nil {
			slog.Error("failed to seed catalog", "error", err)
			os.Exit(1)
		}
	}

	loader := academy.NewLoader()
	if err := loader.LoadFromDir(cfg.Academy.ContentDir); err != nil {
		slog.Error("failed to load academy content", "error", err)
		os.Exit(1)
	}

	server := api.NewServer(cfg.Server, repo, loader, api.NewOrderFeed())
	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("emporium-api stopped")
}

// openRepository connects the configured storage driver, running migrations
// for PostgreSQL
func openRepository(ctx context.Context, cfg *config.Config) (storage.Repository, error) {
	if cfg.Storage.Driver == config.StorageMemory {
		var clients []*models.ApiClient
		if cfg.Server.BootstrapKey != "" {
			clients = append(clients, &models.ApiClient{
				Name:        "bootstrap",
				ApiKey:      cfg.Server.BootstrapKey,
				IsActive:    true,
				CreatedAt:   time.Now().UTC(),
				Permissions: []string{"*"},
			})
			slog.Info("bootstrap api client registered", "key_prefix", models.MaskKey(cfg.Server.BootstrapKey))
		}
		slog.Warn("using in-memory storage, data is lost on restart")
		return storage.NewMemoryRepository(clients...), nil
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
		MaxLifetime:  cfg.Database.MaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	slog.Info("database connected successfully")

	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.RunMigrations(ctx, repo.Pool(), cfg.Database.MigrationsDir); err != nil {
		repo.Close()
		return nil, err
	}

	return repo, nil
}
