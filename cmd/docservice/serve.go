package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vl4dimr/tesis-system-unap/internal/cache"
	"github.com/vl4dimr/tesis-system-unap/internal/config"
	"github.com/vl4dimr/tesis-system-unap/internal/db"
	"github.com/vl4dimr/tesis-system-unap/internal/engine"
	"github.com/vl4dimr/tesis-system-unap/internal/logging"
	"github.com/vl4dimr/tesis-system-unap/internal/metrics"
	"github.com/vl4dimr/tesis-system-unap/internal/rules"
	"github.com/vl4dimr/tesis-system-unap/internal/server"
)

const (
	serviceName       = "docservice"
	connectTimeout    = 10 * time.Second
	defaultTokenHours = 24
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long:  "Start an HTTP server that exposes /validar and /formatear along with health, configuration and metrics endpoints.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cat, err := root.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			log := logging.New(serviceName, logging.Config{Environment: cfg.Environment, Level: cfg.LogLevel})
			return runServe(cmd.Context(), cfg, cat, log)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8000, "Port to listen on (overrides PORT)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, cat *rules.Catalog, log *logrus.Entry) error {
	m := metrics.New(serviceName, version)
	var closers []func()
	handedOff := false
	defer func() {
		// the server runs the closers once it owns them
		if !handedOff {
			for _, c := range closers {
				c()
			}
		}
	}()

	reportCache, closeCache := openCache(ctx, cfg, log)
	if closeCache != nil {
		closers = append(closers, closeCache)
	}

	var audit server.AuditStore
	if cfg.DatabaseURL != "" {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		database, err := db.Connect(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, database.Close)
		if err := database.EnsureSchema(connectCtx); err != nil {
			return fmt.Errorf("failed to prepare audit schema: %w", err)
		}
		audit = database
	}

	var tokens *server.JWTService
	if cfg.ServiceJWTSecret != "" {
		jwtConfig, err := config.NewJWTConfigFrom(cfg.ServiceJWTSecret, defaultTokenHours)
		if err != nil {
			return fmt.Errorf("failed to create JWT config: %w", err)
		}
		tokens = server.NewJWTService(jwtConfig)
	}

	eng := engine.New(cat, engine.Options{
		Workers:      cfg.Workers,
		QueueSize:    cfg.QueueSize,
		QueueTimeout: cfg.QueueTimeout,
		MaxPartBytes: cfg.MaxPartBytes,
		Cache:        reportCache,
		Metrics:      m,
		Logger:       log,
	})

	opts := server.Options{
		Config:  cfg,
		Engine:  eng,
		Audit:   audit,
		Metrics: m,
		Logger:  log,
		Closers: closers,
	}
	if tokens != nil {
		opts.Tokens = tokens.AsTokenValidator()
	}

	log.WithFields(logrus.Fields{
		"audit":     audit != nil,
		"auth":      tokens != nil,
		"cache":     fmt.Sprintf("%T", reportCache),
		"version":   version,
		"reglas":    cat.Version(),
		"max_bytes": cfg.MaxUploadBytes,
	}).Info("configuration loaded")

	srv, err := server.New(opts)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	handedOff = true
	return srv.Start()
}

// openCache connects to Redis when configured and falls back to an
// in-process cache when it is not or cannot be reached.
func openCache(ctx context.Context, cfg *config.Config, log *logrus.Entry) (cache.ReportCache, func()) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(cfg.ReportCacheTTL, cfg.ReportCacheMaxEntries), nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	rc, err := cache.ConnectRedis(connectCtx, cfg.RedisURL, cfg.ReportCacheTTL)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, using in-memory report cache")
		return cache.NewMemory(cfg.ReportCacheTTL, cfg.ReportCacheMaxEntries), nil
	}
	return rc, func() {
		if err := rc.Close(); err != nil {
			log.WithError(err).Warn("failed to close redis client")
		}
	}
}
