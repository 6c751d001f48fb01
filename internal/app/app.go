// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openduty/console/internal/config"
	"github.com/openduty/console/internal/incidents"
	incidentspostgres "github.com/openduty/console/internal/incidents/postgres"
	"github.com/openduty/console/internal/jobs"
	jobspostgres "github.com/openduty/console/internal/jobs/postgres"
	"github.com/openduty/console/internal/notifications"
	"github.com/openduty/console/internal/notifications/email"
	"github.com/openduty/console/internal/notifications/matrix"
	"github.com/openduty/console/internal/notifications/mattermost"
	notificationspostgres "github.com/openduty/console/internal/notifications/postgres"
	"github.com/openduty/console/internal/notifications/webhook"
	"github.com/openduty/console/internal/pkg/ctxlog"
	"github.com/openduty/console/internal/pkg/httputil"
	"github.com/openduty/console/internal/pkg/metrics"
	"github.com/openduty/console/internal/pkg/postgres"
	"github.com/openduty/console/internal/runbooks"
	runbookspostgres "github.com/openduty/console/internal/runbooks/postgres"
	"github.com/openduty/console/internal/timeline"
	timelinepostgres "github.com/openduty/console/internal/timeline/postgres"
	"github.com/openduty/console/internal/version"
	"github.com/openduty/console/migrations"
)

// App represents the application instance.
type App struct {
	config        *config.Config
	logger        *slog.Logger
	db            *pgxpool.Pool
	server        *http.Server
	metricsServer *http.Server
	metricsCancel context.CancelFunc
	worker        *jobs.Worker
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)
	slog.SetDefault(logger)

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(migrations.FS, cfg.Database.URL); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		metricsCancel: metricsCancel,
	}

	go app.collectDBMetrics(metricsCtx)

	router, worker := app.setup(metricsCtx)
	app.worker = worker

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	// Start main server
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Stop the automation worker first so the in-flight job can finish its
	// ledger and status writes before the pool closes.
	if a.worker != nil {
		a.worker.Stop()
	}

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	a.db.Close()

	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) collectQueueMetrics(ctx context.Context, repo jobs.Repository) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := repo.QueueStats(ctx)
			if err != nil {
				slog.Error("failed to get queue stats", "error", err)
				continue
			}
			jobs.RecordQueueStats(stats)
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// Worker returns the automation worker instance. Used in tests to access
// worker state. Returns nil when the worker is disabled.
func (a *App) Worker() *jobs.Worker {
	return a.worker
}

func (a *App) setup(ctx context.Context) (*chi.Mux, *jobs.Worker) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	incidentRepo := incidentspostgres.NewRepository(a.db)
	timelineRepo := timelinepostgres.NewRepository(a.db)
	jobRepo := jobspostgres.NewRepository(a.db)
	channelRepo := notificationspostgres.NewRepository(a.db)
	runbookRepo := runbookspostgres.NewRepository(a.db)

	incidentService := incidents.NewService(incidentRepo)
	jobService := jobs.NewService(jobRepo)
	channelService := notifications.NewService(channelRepo)
	runbookService := runbooks.NewService(runbookRepo, jobService, timelineRepo)

	dispatcher := notifications.NewDispatcher(
		email.NewSender(),
		matrix.NewSender(matrix.Config{Timeout: a.config.Worker.HTTPTimeout}),
		mattermost.NewSender(mattermost.Config{Timeout: a.config.Worker.HTTPTimeout}),
		webhook.NewSender(webhook.Config{Timeout: a.config.Worker.HTTPTimeout}),
	)

	executor := jobs.NewExecutor(jobRepo, incidentRepo, channelRepo, timelineRepo, dispatcher, a.config.Worker.HTTPTimeout)

	var worker *jobs.Worker
	if a.config.Worker.Enabled {
		worker = jobs.NewWorker(jobs.WorkerConfig{
			PollInterval:  a.config.Worker.PollInterval,
			ErrorBackoff:  a.config.Worker.ErrorBackoff,
			LeaseDuration: a.config.Worker.LeaseDuration,
		}, jobRepo, executor)
		worker.Start(ctx)

		go a.collectQueueMetrics(ctx, jobRepo)
	} else {
		slog.Warn("automation worker is disabled: queued jobs will not be processed")
	}

	incidentHandler := incidents.NewHandler(incidentService)
	timelineHandler := timeline.NewHandler(timelineRepo)
	jobHandler := jobs.NewHandler(jobService)
	channelHandler := notifications.NewHandler(channelService)
	runbookHandler := runbooks.NewHandler(runbookService)

	r.Route("/api/v1", func(r chi.Router) {
		incidentHandler.RegisterRoutes(r)
		timelineHandler.RegisterRoutes(r)
		jobHandler.RegisterRoutes(r)
		channelHandler.RegisterRoutes(r)
		runbookHandler.RegisterRoutes(r)
	})

	return r, worker
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
