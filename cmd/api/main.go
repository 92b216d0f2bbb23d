//	@title			Asset Store API
//	@version		1.0
//	@description	Image storage with resized derivatives on S3-compatible object stores, with local fallback.
//
//	@host		localhost:8080
//	@BasePath	/api/v1

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/radif/assetstore/internal/app"
	"github.com/radif/assetstore/internal/asset"
	"github.com/radif/assetstore/internal/config"
	"github.com/radif/assetstore/internal/db"
	"github.com/radif/assetstore/internal/logging"
	appMiddleware "github.com/radif/assetstore/internal/middleware"

	_ "github.com/radif/assetstore/docs/swagger"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, !cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}

	// The asset ledger is optional; without a database uploads are not recorded.
	var ledger asset.Ledger
	if cfg.DatabaseURL != "" {
		var pool *pgxpool.Pool
		pool, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("database connection failed")
		}
		defer pool.Close()

		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
		ledger = asset.NewRepository(pool)
	} else {
		log.Warn().Msg("DATABASE_URL not set, uploads will not be recorded")
	}

	go func() {
		if err := a.Themes.Watch(ctx); err != nil {
			log.Warn().Err(err).Msg("theme watcher stopped")
		}
	}()

	// Wire dependencies: storage → service → handler
	assetSvc := asset.NewService(a.Storage, ledger)
	assetHandler := asset.NewHandler(assetSvc, cfg.MaxUploadBytes)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "HEAD", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Images: bucket first, local files second, 404 last.
	content := http.StripPrefix(cfg.LocalURLPrefix, a.Storage.Serve()(http.NotFoundHandler()))
	r.Get(cfg.LocalURLPrefix+"/*", content.ServeHTTP)
	r.Head(cfg.LocalURLPrefix+"/*", content.ServeHTTP)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.Get("/", assetHandler.List)
			r.Post("/", assetHandler.Upload)
			r.Delete("/", assetHandler.Delete)
			r.Get("/exists", assetHandler.Exists)
			r.Get("/read", assetHandler.Read)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.AppEnv).Msg("server listening")
		log.Info().Msgf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	log.Info().Msg("server stopped")
}
