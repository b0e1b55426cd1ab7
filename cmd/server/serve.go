package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aethra/catalog-admin/internal/api"
	"github.com/aethra/catalog-admin/internal/auth"
	"github.com/aethra/catalog-admin/internal/catalog"
	"github.com/aethra/catalog-admin/internal/config"
	"github.com/aethra/catalog-admin/internal/database"
	"github.com/aethra/catalog-admin/internal/panel"
	"github.com/aethra/catalog-admin/internal/store"
	"github.com/aethra/catalog-admin/internal/ui"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 10 * time.Second
	limiterSweep    = time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin panel server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger.Info("starting catalog admin",
		zap.String("version", Version),
		zap.String("mode", cfg.Server.Mode),
		zap.String("catalog", cfg.Catalog.BaseURL))

	gin.SetMode(cfg.Server.Mode)

	db, err := database.Open(cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer closeDatabase(db)

	if _, err := database.RunMigrations(db, logger); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	renderer, err := ui.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}

	client := catalog.NewClient(catalog.Options{
		BaseURL:            cfg.Catalog.BaseURL,
		Token:              cfg.Catalog.Token,
		Username:           cfg.Catalog.Username,
		Password:           cfg.Catalog.Password,
		Timeout:            cfg.Catalog.Timeout,
		InsecureSkipVerify: cfg.Catalog.InsecureSkipVerify,
	}, logger.Named("catalog"))

	sessions := panel.NewSessions(logger)
	limiter := api.NewLoginRateLimiter()

	handler := api.NewHandler(api.Deps{
		Catalog:   client,
		Operators: store.NewOperatorStore(db),
		Audit:     store.NewAuditStore(db),
		JWT:       auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, logger),
		Sessions:  sessions,
		Renderer:  renderer,
		Limiter:   limiter,
		Cookie:    api.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure},
		Log:       logger,
		Version:   Version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.SetupRouter(handler, cfg.CORS),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		sessions.Run(gctx, cfg.Server.SweepInterval)
		return nil
	})

	g.Go(func() error {
		limiter.Run(gctx, limiterSweep)
		return nil
	})

	return g.Wait()
}
