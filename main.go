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

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/tawkr/tawkr-backend/internal/alert"
	"github.com/tawkr/tawkr-backend/internal/analytics"
	"github.com/tawkr/tawkr-backend/internal/auth"
	"github.com/tawkr/tawkr-backend/internal/campaign"
	"github.com/tawkr/tawkr-backend/internal/config"
	"github.com/tawkr/tawkr-backend/internal/db"
	"github.com/tawkr/tawkr-backend/internal/export"
	"github.com/tawkr/tawkr-backend/internal/franchise"
	"github.com/tawkr/tawkr-backend/internal/jobs"
	"github.com/tawkr/tawkr-backend/internal/logging"
	"github.com/tawkr/tawkr-backend/internal/metrics"
	"github.com/tawkr/tawkr-backend/internal/middleware"
	"github.com/tawkr/tawkr-backend/internal/seeds"
	"github.com/tawkr/tawkr-backend/internal/selection"
	"github.com/tawkr/tawkr-backend/internal/sessions"
	"github.com/tawkr/tawkr-backend/internal/store"
	"github.com/tawkr/tawkr-backend/internal/territory"
	"go.uber.org/zap"
)

// Repository is everything the handlers read and write.
type Repository interface {
	territory.Repository
	campaign.Repository
	franchise.Repository
	alert.Repository
	selection.Repository
	auth.Repository
	export.Repository
}

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	repo     Repository
	sessions sessions.Store
	metrics  *metrics.Metrics
	notifier *alert.Notifier
}

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func newApp(cfg config.Config, logger *zap.Logger, repo Repository, sess sessions.Store) *app {
	m := metrics.New()
	return &app{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		sessions: sess,
		metrics:  m,
		notifier: &alert.Notifier{Repo: repo, Metrics: m},
	}
}

func (a *app) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RealIP(a.cfg.TrustedProxies))
	r.Use(middleware.RequestLogger(a.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(a.metrics.Middleware)
	r.Use(middleware.CORSMiddleware(a.cfg.CORSAllowedOrigins))

	r.Get("/", RootHandler)
	r.Method(http.MethodGet, "/metrics", a.metrics.Handler())

	authHandler := &auth.Handler{
		Users:         a.repo,
		Sessions:      a.sessions,
		Metrics:       a.metrics,
		LoginDelay:    a.cfg.LoginDelay,
		SessionTTL:    a.cfg.SessionTTL,
		SecureCookies: a.cfg.Production(),
	}
	limiter := middleware.NewRateLimiter(a.cfg.LoginRatePerMinute, a.cfg.LoginBurst)

	selectionService := &selection.Service{
		Repo:        a.repo,
		Territories: a.repo,
		Campaigns:   a.repo,
		Notifier:    a.notifier,
		Metrics:     a.metrics,
		Logger:      a.logger,
	}
	analyticsService := &analytics.Service{
		Territories: a.repo,
		Campaigns:   a.repo,
		Franchises:  a.repo,
		Alerts:      a.repo,
		Selections:  a.repo,
	}
	exportService := &export.Service{
		Repo:        a.repo,
		Territories: a.repo,
		Campaigns:   a.repo,
		Franchises:  a.repo,
		Alerts:      a.repo,
		Metrics:     a.metrics,
	}

	r.Mount("/auth", auth.SetupRoutes(authHandler, a.sessions, limiter))
	r.Mount("/territories", territory.SetupRoutes(territory.NewHandler(a.repo, a.notifier, a.logger), a.sessions))
	r.Mount("/campaigns", campaign.SetupRoutes(&campaign.Handler{Repo: a.repo}, a.sessions))
	r.Mount("/franchises", franchise.SetupRoutes(&franchise.Handler{Repo: a.repo}, a.sessions))
	r.Mount("/alerts", alert.SetupRoutes(&alert.Handler{Repo: a.repo, Territories: a.repo}, a.sessions))
	r.Mount("/selections", selection.SetupRoutes(selection.NewHandler(selectionService), a.sessions))
	r.Mount("/analytics", analytics.SetupRoutes(&analytics.Handler{Service: analyticsService}, a.sessions))
	r.Mount("/exports", export.SetupRoutes(export.NewHandler(exportService), a.sessions))

	return r
}

func (a *app) cron() (*jobs.CronManager, error) {
	cm := jobs.NewCronManager(&jobs.QuotaSweep{
		Campaigns:   a.repo,
		Selections:  a.repo,
		Territories: a.repo,
		Alerts:      a.repo,
		Notifier:    a.notifier,
	}, a.logger)
	if err := cm.SetupJobs(a.cfg.QuotaSweepCron); err != nil {
		return nil, fmt.Errorf("schedule quota sweep: %w", err)
	}
	return cm, nil
}

// open picks the storage backends from the configuration.
func open(ctx context.Context, cfg config.Config, logger *zap.Logger) (Repository, sessions.Store, func(), error) {
	var (
		repo      Repository
		sessStore sessions.Store
		closers   []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DatabaseURL != "" {
		gdb, err := db.Connect(cfg.DatabaseURL, logger, cfg.LogLevel == "debug")
		if err != nil {
			return nil, nil, nil, err
		}
		if sqlDB, err := gdb.DB(); err == nil {
			closers = append(closers, func() { sqlDB.Close() })
		}
		if err := store.Migrate(gdb); err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		repo = store.NewGorm(gdb)
		sessStore = sessions.NewGormStore(gdb)
		logger.Info("using postgres store")
	} else {
		ds, err := seeds.Load()
		if err != nil {
			return nil, nil, nil, err
		}
		mem, err := store.NewMemory(ds)
		if err != nil {
			return nil, nil, nil, err
		}
		repo = mem
		sessStore = sessions.NewMemoryStore()
		logger.Info("using in-memory store seeded with the reference dataset",
			zap.Int("territories", len(ds.Territories)),
			zap.Int("users", len(ds.Users)),
		)
	}

	if cfg.RedisURL != "" {
		client, err := sessions.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			closeAll()
			return nil, nil, nil, err
		}
		closers = append(closers, func() { client.Close() })
		sessStore = sessions.NewRedisStore(client)
		logger.Info("using redis session store")
	}

	return repo, sessStore, closeAll, nil
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Production())
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, sessStore, closeStores, err := open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open stores", zap.Error(err))
	}
	defer closeStores()

	a := newApp(cfg, logger, repo, sessStore)

	cm, err := a.cron()
	if err != nil {
		logger.Fatal("failed to set up jobs", zap.Error(err))
	}
	cm.Start()

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           a.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	cm.Stop(shutdownCtx)
}
