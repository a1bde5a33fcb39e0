package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/erazemk/zbirka/internal/api"
	"github.com/erazemk/zbirka/internal/metrics"
	"github.com/erazemk/zbirka/internal/ratelimit"
	"github.com/erazemk/zbirka/internal/store"
	"github.com/erazemk/zbirka/internal/web"
)

const tokenPurgeInterval = time.Hour

func (c *cli) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API, web UI and metrics",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.serve(cmd)
		},
	}
	cmd.Flags().StringP("addr", "a", ":8080", "listen address")
	return cmd
}

func (c *cli) serve(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if err := c.cfg.BindPFlag(cfgKeyAddr, cmd.Flags().Lookup("addr")); err != nil {
		return fmt.Errorf("binding flag addr: %w", err)
	}

	level := slog.LevelInfo
	if c.flagVerbose {
		level = slog.LevelDebug
	}
	closeLog, err := setupLogger(c.out, c.errOut, level, c.cfg.GetString(cfgKeyLog))
	if err != nil {
		return err
	}
	c.closeLog = closeLog

	database, err := c.openOrInitDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		return fmt.Errorf("loading signing secret: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewCollector(reg)

	apiLimiter := ratelimit.New(ratelimit.DefaultConfig())
	defer apiLimiter.Stop()
	webLimiter := ratelimit.New(ratelimit.DefaultConfig())
	defer webLimiter.Stop()

	apiRouter := api.NewRouter(api.Deps{DB: database, JWTSecret: jwtSecret, Metrics: m, Limiter: apiLimiter})
	webRouter, err := web.NewRouter(web.Deps{DB: database, JWTSecret: jwtSecret, Metrics: m, Limiter: webLimiter})
	if err != nil {
		return fmt.Errorf("setting up web router: %w", err)
	}

	// API routes take priority, web routes handle the rest.
	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)
	mux.Handle("GET /metrics", metrics.Handler(reg))
	mux.Handle("/", webRouter)

	addr := c.cfg.GetString(cfgKeyAddr)
	server := &http.Server{
		Addr:              addr,
		Handler:           api.LoggingMiddleware(m)(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go purgeTokens(ctx, database)

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped, closing database")
	return nil
}

// openOrInitDB opens the database, creating it on first run.
func (c *cli) openOrInitDB(ctx context.Context) (*sql.DB, error) {
	path, err := c.dbPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		database, key, err := initDatabase(ctx, path)
		if err != nil {
			return nil, err
		}
		database.Close()
		printInitResult(c.out, path, key)
		fmt.Fprintln(c.out)
	}

	database, err := c.openDB()
	if err != nil {
		return nil, err
	}
	slog.Info("database ready", "path", path)
	return database, nil
}

// purgeTokens drops expired revocations until ctx ends.
func purgeTokens(ctx context.Context, database *sql.DB) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := store.PurgeExpiredTokens(ctx, database, now)
			if err != nil {
				slog.Error("failed to purge revoked tokens", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("purged revoked tokens", "count", n)
			}
		}
	}
}
