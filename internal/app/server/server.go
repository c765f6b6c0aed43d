package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hradmin/internal/domain/audit"
	"hradmin/internal/domain/core"
	"hradmin/internal/platform/config"
	"hradmin/internal/platform/db"
	"hradmin/internal/platform/events"
	"hradmin/internal/platform/logging"
	"hradmin/internal/platform/metrics"
	audithandler "hradmin/internal/transport/http/handlers/audit"
	corehandler "hradmin/internal/transport/http/handlers/core"
	"hradmin/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	Service *core.Service
	Router  http.Handler
	logger  *zap.Logger
	closers []func(context.Context) error
}

type stores struct {
	core  core.Store
	audit audit.Store
}

// New connects the configured store, seeds reference data when asked to and
// builds the router. Callers must Close the returned App.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app := &App{Config: cfg, logger: logger}

	st, err := app.openStores(ctx)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	var publisher core.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		app.closers = append(app.closers, func(context.Context) error {
			producer.Close()
			return nil
		})
		publisher = producer
	}

	auditService := audit.New(st.audit)
	app.Service = core.NewService(st.core, auditService, publisher, logger)

	if cfg.RunSeed {
		if err := db.Seed(ctx, app.Service, logger); err != nil {
			_ = app.Close(ctx)
			return nil, fmt.Errorf("seed failed: %w", err)
		}
	}

	app.Router = app.routes(auditService)
	return app, nil
}

func (a *App) openStores(ctx context.Context) (stores, error) {
	switch a.Config.StoreDriver {
	case config.StoreMongo:
		client, err := db.ConnectMongo(ctx, a.Config.MongoURI)
		if err != nil {
			return stores{}, err
		}
		a.closers = append(a.closers, client.Disconnect)
		database := client.Database(a.Config.MongoDatabase)
		if err := db.EnsureIndexes(ctx, database, core.MongoIndexes); err != nil {
			return stores{}, err
		}
		if err := db.EnsureIndexes(ctx, database, audit.MongoIndexes); err != nil {
			return stores{}, err
		}
		return stores{core: core.NewMongoStore(database), audit: audit.NewMongoStore(database)}, nil
	default:
		var (
			gdb *gorm.DB
			err error
		)
		if a.Config.StoreDriver == config.StorePostgres {
			gdb, err = db.OpenPostgres(a.Config.DatabaseURL)
		} else {
			gdb, err = db.OpenSQLite(a.Config.SQLitePath)
		}
		if err != nil {
			return stores{}, err
		}
		coreStore, auditStore := core.NewSQLStore(gdb), audit.NewSQLStore(gdb)
		a.closers = append(a.closers, func(context.Context) error { return coreStore.Close() })
		if err := coreStore.Migrate(); err != nil {
			return stores{}, fmt.Errorf("migrate failed: %w", err)
		}
		if err := auditStore.Migrate(); err != nil {
			return stores{}, fmt.Errorf("migrate audit failed: %w", err)
		}
		return stores{core: coreStore, audit: auditStore}, nil
	}
}

func (a *App) routes(auditService *audit.Service) http.Handler {
	cfg := a.Config
	router := chi.NewRouter()

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(a.logger, collector))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.Service.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if collector != nil {
		router.Method(http.MethodGet, "/metrics", collector.Handler())
	}

	router.Route(cfg.APIBasePath, func(r chi.Router) {
		r.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RequireAuth(cfg.JWTSecret != ""))
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		corehandler.NewHandler(a.Service, a.logger).RegisterRoutes(r)
		audithandler.NewHandler(auditService, a.logger).RegisterRoutes(r)
	})

	return router
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func Run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger init failed: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			logger.Warn("shutdown cleanup failed", zap.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("hradmin server listening",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.StoreDriver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
