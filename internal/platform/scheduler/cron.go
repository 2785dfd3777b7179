package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/live-tracker/internal/platform/logging"
)

// Job is one scheduled unit of work. startup is true only for the RunOnStart call.
// Errors are logged, never retried.
type Job func(ctx context.Context, startup bool) error

type Config struct {
	Name     string
	Schedule string
	// RunOnStart fires the job once in the background when Start is called.
	RunOnStart bool
	Location   *time.Location
	Logger     *logging.Logger
}

// Scheduler runs a single job on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	name       string
	cron       *cron.Cron
	job        Job
	runOnStart bool
	logger     *logging.Logger
	ctx        context.Context
	cancel     context.CancelFunc
	startup    conc.WaitGroup
}

func New(cfg Config, job Job) (*Scheduler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "job"
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	logger = logger.Named("scheduler").With("job", name)

	cronLogger := cronLogAdapter{logger: logger}
	c := cron.New(
		cron.WithLocation(location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		name:       name,
		cron:       c,
		job:        job,
		runOnStart: cfg.RunOnStart,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	if _, err := c.AddFunc(cfg.Schedule, func() { s.runOnce(false) }); err != nil {
		cancel()
		return nil, fmt.Errorf("schedule %s %q: %w", name, cfg.Schedule, err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "entries", len(s.cron.Entries()))
	if s.runOnStart {
		s.startup.Go(func() { s.runOnce(true) })
	}
}

// Stop cancels any in-flight run, including the startup run, and waits for it until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	cronDone := s.cron.Stop().Done()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-cronDone
		if recovered := s.startup.WaitAndRecover(); recovered != nil {
			s.logger.Error("startup run panicked", "panic", recovered.Value)
		}
	}()

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler %s: %w", s.name, ctx.Err())
	}
}

func (s *Scheduler) runOnce(startup bool) {
	if s.ctx.Err() != nil {
		return
	}
	if err := s.job(s.ctx, startup); err != nil {
		s.logger.WarnContext(s.ctx, "scheduled job failed", "startup", startup, "error", err)
	}
}

type cronLogAdapter struct {
	logger *logging.Logger
}

func (a cronLogAdapter) Info(msg string, keysAndValues ...any) {
	a.logger.Debug(msg, keysAndValues...)
}

func (a cronLogAdapter) Error(err error, msg string, keysAndValues ...any) {
	a.logger.Error(msg, append(keysAndValues, "error", err)...)
}
