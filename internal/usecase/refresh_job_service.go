package usecase

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/live-tracker/internal/domain/jobscheduler"
	"github.com/riskibarqy/live-tracker/internal/platform/id"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
)

const refreshJobName = "board-refresh"

type boardWarmer interface {
	Warm(ctx context.Context) (Board, error)
}

type RefreshJobConfig struct {
	// Timeout bounds one run. Zero means no extra deadline.
	Timeout time.Duration
	Logger  *logging.Logger
}

// RefreshJobService rebuilds the default board in the background and keeps a run history.
type RefreshJobService struct {
	warmer  boardWarmer
	runRepo jobscheduler.Repository
	ids     id.Generator
	timeout time.Duration
	logger  *logging.Logger
	now     func() time.Time
}

func NewRefreshJobService(warmer boardWarmer, runRepo jobscheduler.Repository, ids id.Generator, cfg RefreshJobConfig) *RefreshJobService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewTimeOrderedGenerator("run_")
	}

	return &RefreshJobService{
		warmer:  warmer,
		runRepo: runRepo,
		ids:     ids,
		timeout: cfg.Timeout,
		logger:  logger.Named("refresh-job"),
		now:     time.Now,
	}
}

// Run warms the default board once. The returned event is also persisted.
func (s *RefreshJobService) Run(ctx context.Context, trigger jobscheduler.Trigger) (jobscheduler.RunEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshJobService.Run")
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	runID, err := s.ids.NewID()
	if err != nil {
		return jobscheduler.RunEvent{}, errors.Wrap(err, "generate run id")
	}

	event := jobscheduler.RunEvent{
		RunID:     runID,
		JobName:   refreshJobName,
		Trigger:   trigger,
		Status:    jobscheduler.StatusRunning,
		StartedAt: s.now(),
	}
	s.record(ctx, event)

	board, err := s.warmer.Warm(ctx)
	event.FinishedAt = s.now()
	if err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		s.record(ctx, event)
		s.logger.WarnContext(ctx, "board refresh failed",
			"run_id", runID,
			"trigger", trigger,
			"error", err,
		)
		return event, errors.Wrapf(err, "refresh run %s", runID)
	}

	event.Status = jobscheduler.StatusCompleted
	event.Leagues = board.Leagues
	event.Snapshots = len(board.Snapshots)
	event.Failures = board.Failures
	s.record(ctx, event)
	s.logger.InfoContext(ctx, "board refreshed",
		"run_id", runID,
		"trigger", trigger,
		"snapshots", event.Snapshots,
		"failures", event.Failures,
		"duration_ms", event.Duration().Milliseconds(),
	)

	return event, nil
}

func (s *RefreshJobService) ListRuns(ctx context.Context, limit int) ([]jobscheduler.RunEvent, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RefreshJobService.ListRuns")
	defer span.End()

	if limit < 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "limit must be >= 0, got %d", limit)
	}
	runs, err := s.runRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list refresh runs")
	}
	return runs, nil
}

func (s *RefreshJobService) record(ctx context.Context, event jobscheduler.RunEvent) {
	if s.runRepo == nil {
		return
	}
	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	if err := s.runRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record refresh run failed",
			"run_id", event.RunID,
			"status", event.Status,
			"error", err,
		)
	}
}
