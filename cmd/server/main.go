package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/fusion-resource-service/internal/config"
	"github.com/maxviazov/fusion-resource-service/internal/handler"
	"github.com/maxviazov/fusion-resource-service/internal/logger"
	"github.com/maxviazov/fusion-resource-service/internal/repository"
	"github.com/maxviazov/fusion-resource-service/internal/repository/memory"
	"github.com/maxviazov/fusion-resource-service/internal/repository/postgres"
	"github.com/maxviazov/fusion-resource-service/internal/service"
	"github.com/maxviazov/fusion-resource-service/migrations"
)

// storage bundles whatever backend the config selected.
type storage struct {
	resources repository.ResourceRepository
	groups    repository.GroupRepository
	tx        repository.TxManager
	pinger    repository.Pinger
	close     func()
}

func main() {
	// .env is optional; real environments inject variables directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️ .env not loaded: %v", err)
	}

	configPath := os.Getenv("APP_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	// Load application config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}
	// handlers log through the global logger
	zlog.Logger = appLogger
	appLogger.Info().Str("config", configPath).Msg("✅ Config and logger initialized")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("❌ Service stopped with error")
	}
	appLogger.Info().Msg("👋 Service stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	st, err := openStorage(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer st.close()

	resourceSvc := service.NewResourceService(st.resources, st.tx, appLogger)
	groupSvc := service.NewGroupService(st.groups, appLogger)

	if cfg.App.Env == "prod" || cfg.App.Env == "staging" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), handler.AccessLog(appLogger))
	handler.RegisterMetrics(engine, handler.NewMetrics("fusion", "api"))
	handler.Register(engine, st.pinger, resourceSvc, groupSvc)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(engine)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      corsHandler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info().Str("addr", srv.Addr).Str("storage", cfg.Storage.Driver).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownTimeout)*time.Second)
		defer cancel()
		appLogger.Info().Msg("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStorage(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		s := memory.NewStore()
		appLogger.Warn().Msg("using in-memory storage, data is lost on restart")
		return &storage{
			resources: s.Resources(),
			groups:    s.Groups(),
			tx:        s.TxManager(),
			pinger:    s,
			close:     func() {},
		}, nil
	}

	repo, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}
	if cfg.Storage.AutoMigrate {
		if err := migrations.UpFromPool(ctx, repo.Pool()); err != nil {
			repo.Close()
			return nil, err
		}
		appLogger.Info().Msg("✅ Migrations applied")
	}
	pool := repo.Pool()
	return &storage{
		resources: postgres.NewResourceRepository(pool),
		groups:    postgres.NewGroupRepository(pool),
		tx:        postgres.NewTxManager(pool),
		pinger:    postgres.NewPinger(pool),
		close:     repo.Close,
	}, nil
}
