package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/live-tracker/external/thesportsdb"
	"github.com/riskibarqy/live-tracker/internal/config"
	"github.com/riskibarqy/live-tracker/internal/domain/jobscheduler"
	"github.com/riskibarqy/live-tracker/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/live-tracker/internal/interfaces/httpapi"
	idgen "github.com/riskibarqy/live-tracker/internal/platform/id"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
	"github.com/riskibarqy/live-tracker/internal/platform/resilience"
	"github.com/riskibarqy/live-tracker/internal/platform/scheduler"
	"github.com/riskibarqy/live-tracker/internal/usecase"
)

const refreshRunHistory = 50

// App owns the HTTP server and the optional background refresher.
type App struct {
	Server    *http.Server
	refresher *scheduler.Scheduler
	logger    *logging.Logger
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	transport, err := thesportsdb.TransportFactoryFor(cfg.SportsDBTransport)
	if err != nil {
		return nil, err
	}
	provider := thesportsdb.NewClient(thesportsdb.ClientConfig{
		BaseURL:     cfg.SportsDBBaseURL,
		APIKey:      cfg.SportsDBAPIKey,
		Timeout:     cfg.SportsDBTimeout,
		MaxAttempts: cfg.SportsDBMaxAttempts,
		RetryDelay:  cfg.SportsDBRetryDelay,
		Transport:   transport,
		Logger:      logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportsDBCircuitEnabled,
			FailureThreshold: cfg.SportsDBCircuitFailureCount,
			OpenTimeout:      cfg.SportsDBCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportsDBCircuitHalfOpenMaxReq,
		},
	})

	leagueRepo := memory.NewLeagueRepository(memory.SeedLeagues())
	runRepo := memory.NewJobRunRepository(refreshRunHistory)

	trackerSvc := usecase.NewTrackerService(provider, leagueRepo, usecase.TrackerConfig{
		Seasons:    cfg.Seasons(),
		TopN:       cfg.TrackerTopN,
		MaxWorkers: cfg.TrackerMaxWorkers,
		Logger:     logger,
	})
	leagueSvc := usecase.NewLeagueService(leagueRepo, cfg.Seasons())
	dashboardSvc := usecase.NewDashboardService(trackerSvc, usecase.DashboardConfig{
		DefaultLeagues: cfg.TrackerDefaultLeagues,
		CacheEnabled:   cfg.CacheEnabled,
		CacheTTL:       cfg.CacheTTL,
		Logger:         logger,
	})
	refreshJob := usecase.NewRefreshJobService(dashboardSvc, runRepo, idgen.NewTimeOrderedGenerator("run_"), usecase.RefreshJobConfig{
		Timeout: cfg.WriteTimeout,
		Logger:  logger,
	})

	handler := httpapi.NewHandler(leagueSvc, dashboardSvc, refreshJob, logger)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins)

	app := &App{
		Server: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		logger: logger,
	}

	if cfg.RefreshEnabled {
		app.refresher, err = newRefresher(cfg, refreshJob, logger)
		if err != nil {
			return nil, err
		}
	}

	return app, nil
}

func newRefresher(cfg config.Config, job *usecase.RefreshJobService, logger *logging.Logger) (*scheduler.Scheduler, error) {
	return scheduler.New(scheduler.Config{
		Name:       "board-refresh",
		Schedule:   cfg.RefreshSchedule,
		RunOnStart: true,
		Logger:     logger,
	}, func(ctx context.Context, startup bool) error {
		trigger := jobscheduler.TriggerSchedule
		if startup {
			trigger = jobscheduler.TriggerStartup
		}
		_, err := job.Run(ctx, trigger)
		return err
	})
}

// Start serves HTTP in the background. Listener failures are sent on the returned channel.
func (a *App) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if a.refresher != nil {
		a.refresher.Start()
	}
	return errCh
}

func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.refresher != nil {
		if err := a.refresher.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.Server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	a.logger.Info("http server stopped")
	return errors.Join(errs...)
}
