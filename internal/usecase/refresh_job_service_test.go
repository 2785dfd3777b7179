package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/live-tracker/internal/domain/jobscheduler"
	"github.com/riskibarqy/live-tracker/internal/domain/snapshot"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
	jobschedulermock "github.com/riskibarqy/live-tracker/internal/mocks/domain/jobscheduler"
)

type stubWarmer struct {
	board Board
	err   error
}

func (w stubWarmer) Warm(context.Context) (Board, error) {
	return w.board, w.err
}

type fixedIDs struct{}

func (fixedIDs) NewID() (string, error) { return "run_fixed", nil }

func newTestRefreshJob(warmer boardWarmer, repo jobscheduler.Repository) *RefreshJobService {
	svc := NewRefreshJobService(warmer, repo, fixedIDs{}, RefreshJobConfig{Timeout: time.Second, Logger: logging.NewNop()})
	start := time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		return start.Add(time.Duration(calls-1) * 2 * time.Second)
	}
	return svc
}

func TestRefreshJobService_Run_RecordsCompletedRun(t *testing.T) {
	t.Parallel()

	repo := jobschedulermock.NewRepository(t)
	repo.On("UpsertEvent", mock.Anything, mock.MatchedBy(func(e jobscheduler.RunEvent) bool {
		return e.Status == jobscheduler.StatusRunning && e.RunID == "run_fixed"
	})).Return(nil).Once()
	repo.On("UpsertEvent", mock.Anything, mock.MatchedBy(func(e jobscheduler.RunEvent) bool {
		return e.Status == jobscheduler.StatusCompleted && e.Snapshots == 2 && e.Failures == 1
	})).Return(nil).Once()

	svc := newTestRefreshJob(stubWarmer{board: Board{
		Leagues:   []string{"EPL (ENG)"},
		Snapshots: []snapshot.TeamSnapshot{{TeamName: "Arsenal"}, {TeamName: "Liverpool"}},
		Failures:  1,
	}}, repo)

	event, err := svc.Run(context.Background(), jobscheduler.TriggerSchedule)
	require.NoError(t, err)
	assert.Equal(t, refreshJobName, event.JobName)
	assert.Equal(t, jobscheduler.TriggerSchedule, event.Trigger)
	assert.Equal(t, []string{"EPL (ENG)"}, event.Leagues)
	assert.Equal(t, 2*time.Second, event.Duration())
}

func TestRefreshJobService_Run_RecordsFailure(t *testing.T) {
	t.Parallel()

	repo := jobschedulermock.NewRepository(t)
	repo.On("UpsertEvent", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("UpsertEvent", mock.Anything, mock.MatchedBy(func(e jobscheduler.RunEvent) bool {
		return e.Status == jobscheduler.StatusFailed && e.ErrorMessage == "unknown league"
	})).Return(nil).Once()

	svc := newTestRefreshJob(stubWarmer{err: errors.New("unknown league")}, repo)

	event, err := svc.Run(context.Background(), jobscheduler.TriggerStartup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run_fixed")
	assert.Equal(t, jobscheduler.StatusFailed, event.Status)
}

func TestRefreshJobService_Run_RepositoryErrorIsNotFatal(t *testing.T) {
	t.Parallel()

	repo := jobschedulermock.NewRepository(t)
	repo.On("UpsertEvent", mock.Anything, mock.Anything).Return(errors.New("full")).Twice()

	svc := newTestRefreshJob(stubWarmer{}, repo)
	event, err := svc.Run(context.Background(), jobscheduler.TriggerSchedule)
	require.NoError(t, err)
	assert.Equal(t, jobscheduler.StatusCompleted, event.Status)
}

func TestRefreshJobService_ListRuns(t *testing.T) {
	t.Parallel()

	repo := jobschedulermock.NewRepository(t)
	repo.On("ListRecent", mock.Anything, 5).Return([]jobscheduler.RunEvent{{RunID: "run_2"}, {RunID: "run_1"}}, nil).Once()

	svc := newTestRefreshJob(stubWarmer{}, repo)
	runs, err := svc.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run_2", runs[0].RunID)

	_, err = svc.ListRuns(context.Background(), -1)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
