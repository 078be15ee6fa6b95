package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"jobboard/internal/authz"
	"jobboard/internal/cache"
	"jobboard/internal/database"
	"jobboard/internal/filter"
	"jobboard/internal/handlers"
	"jobboard/internal/middleware"
	"jobboard/internal/ranking"
	"jobboard/internal/router"
	"jobboard/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"store", cfg.StoreBackend,
	)

	be, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	// Seed development data (no-op if categories already exist).
	if cfg.IsDev() {
		if err := database.Seed(cmd.Context(), be.tree, be.jobs); err != nil {
			return err
		}
	}

	// Category views are cached in Valkey when a host is configured.
	var categoryCache *cache.CategoryCache
	if cfg.CacheEnabled() {
		client, err := cache.ConnectValkey(cmd.Context(), cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			return err
		}
		defer client.Close()
		categoryCache = cache.NewCategoryCache(client, cfg.CategoryCacheTTL)
	} else {
		slog.Warn("valkey not configured, category cache disabled")
	}

	az, err := adminAuthZ()
	if err != nil {
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
	defer limiter.Stop()

	fe := filter.New(be.tree, be.index, ranking.New(search.New()))
	r := router.New(
		handlers.NewCategories(be.tree, be.agg, fe, categoryCache),
		handlers.NewJobs(fe, be.index),
		az,
		limiter,
	)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	slog.Info("server stopped gracefully")
	return nil
}

// adminAuthZ checks category mutations against ADMIN_TOKEN_HASH. Without a
// hash, development allows everyone and other environments allow no one.
func adminAuthZ() (authz.AuthZ, error) {
	if cfg.AdminTokenHash == "" && cfg.IsDev() {
		slog.Warn("ADMIN_TOKEN_HASH not set, category mutations are open")
		return authz.AllowAll{}, nil
	}
	return authz.NewTokenAuthZ(cfg.AdminTokenHash)
}
