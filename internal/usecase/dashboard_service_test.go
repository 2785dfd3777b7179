package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/live-tracker/internal/domain/snapshot"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
)

type countingBuilder struct {
	calls atomic.Int32
	last  atomic.Pointer[BuildInput]
	err   error
}

func (b *countingBuilder) BuildBoard(_ context.Context, input BuildInput) (Board, error) {
	b.calls.Add(1)
	b.last.Store(&input)
	if b.err != nil {
		return Board{}, b.err
	}
	return Board{
		Leagues:   input.Leagues,
		Snapshots: []snapshot.TeamSnapshot{{TeamName: "Arsenal"}},
	}, nil
}

func newTestDashboard(builder boardBuilder, cacheEnabled bool) *DashboardService {
	return NewDashboardService(builder, DashboardConfig{
		DefaultLeagues: []string{"EPL (ENG)", "La Liga (ESP)"},
		CacheEnabled:   cacheEnabled,
		CacheTTL:       time.Minute,
		Logger:         logging.NewNop(),
	})
}

func TestDashboardService_Get(t *testing.T) {
	t.Parallel()

	t.Run("nil selection uses defaults", func(t *testing.T) {
		builder := &countingBuilder{}
		svc := newTestDashboard(builder, true)

		board, err := svc.Get(context.Background(), BuildInput{})
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if len(board.Leagues) != 2 || board.Leagues[0] != "EPL (ENG)" {
			t.Fatalf("unexpected leagues: %v", board.Leagues)
		}
	})

	t.Run("explicit empty selection is kept", func(t *testing.T) {
		builder := &countingBuilder{}
		svc := newTestDashboard(builder, true)

		if _, err := svc.Get(context.Background(), BuildInput{Leagues: []string{}}); err != nil {
			t.Fatalf("get: %v", err)
		}
		if got := builder.last.Load(); got == nil || len(got.Leagues) != 0 {
			t.Fatalf("expected empty selection to reach the tracker, got %+v", got)
		}
	})

	t.Run("caches per selection regardless of order", func(t *testing.T) {
		builder := &countingBuilder{}
		svc := newTestDashboard(builder, true)
		ctx := context.Background()

		_, _ = svc.Get(ctx, BuildInput{Leagues: []string{"EPL (ENG)", "La Liga (ESP)"}})
		_, _ = svc.Get(ctx, BuildInput{Leagues: []string{"La Liga (ESP)", "EPL (ENG)"}})
		if builder.calls.Load() != 1 {
			t.Fatalf("expected one build, got %d", builder.calls.Load())
		}

		_, _ = svc.Get(ctx, BuildInput{Leagues: []string{"EPL (ENG)"}, CapturePayloads: true})
		if builder.calls.Load() != 2 {
			t.Fatalf("payload capture must bypass cache, got %d builds", builder.calls.Load())
		}
	})

	t.Run("disabled cache always rebuilds", func(t *testing.T) {
		builder := &countingBuilder{}
		svc := newTestDashboard(builder, false)

		_, _ = svc.Get(context.Background(), BuildInput{})
		_, _ = svc.Get(context.Background(), BuildInput{})
		if builder.calls.Load() != 2 {
			t.Fatalf("expected two builds, got %d", builder.calls.Load())
		}
	})

	t.Run("errors are wrapped and not cached", func(t *testing.T) {
		builder := &countingBuilder{err: ErrInvalidInput}
		svc := newTestDashboard(builder, true)

		_, err := svc.Get(context.Background(), BuildInput{})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected invalid input, got %v", err)
		}
		_, _ = svc.Get(context.Background(), BuildInput{})
		if builder.calls.Load() != 2 {
			t.Fatalf("errors must not be cached, got %d builds", builder.calls.Load())
		}
	})
}

func TestDashboardService_RefreshClearsCache(t *testing.T) {
	t.Parallel()

	builder := &countingBuilder{}
	svc := newTestDashboard(builder, true)
	ctx := context.Background()

	_, _ = svc.Get(ctx, BuildInput{})
	_, _ = svc.Refresh(ctx, BuildInput{})
	_, _ = svc.Get(ctx, BuildInput{})

	if builder.calls.Load() != 2 {
		t.Fatalf("expected refresh to rebuild once, got %d builds", builder.calls.Load())
	}
}

func TestDashboardService_WarmPopulatesDefaultBoard(t *testing.T) {
	t.Parallel()

	builder := &countingBuilder{}
	svc := newTestDashboard(builder, true)
	ctx := context.Background()

	if _, err := svc.Warm(ctx); err != nil {
		t.Fatalf("warm: %v", err)
	}
	_, _ = svc.Get(ctx, BuildInput{})
	if builder.calls.Load() != 1 {
		t.Fatalf("expected warmed board to be served from cache, got %d builds", builder.calls.Load())
	}
}

type scriptedBuilder struct {
	calls  atomic.Int32
	boards []Board
}

func (b *scriptedBuilder) BuildBoard(_ context.Context, input BuildInput) (Board, error) {
	idx := int(b.calls.Add(1)) - 1
	if idx >= len(b.boards) {
		idx = len(b.boards) - 1
	}
	board := b.boards[idx]
	board.Leagues = input.Leagues
	return board, nil
}

var (
	healthyBoard = Board{Snapshots: []snapshot.TeamSnapshot{{TeamName: "Arsenal"}}}
	outageBoard  = Board{Snapshots: []snapshot.TeamSnapshot{}, Failures: 2}
)

func TestDashboardService_Get_SkipsCacheForCancelledBuild(t *testing.T) {
	t.Parallel()

	builder := &scriptedBuilder{boards: []Board{outageBoard, healthyBoard}}
	svc := newTestDashboard(builder, true)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Get(cancelled, BuildInput{}); err != nil {
		t.Fatalf("get: %v", err)
	}

	board, err := svc.Get(context.Background(), BuildInput{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(board.Snapshots) != 1 || builder.calls.Load() != 2 {
		t.Fatalf("expected rebuild after cancelled load, got snapshots=%d builds=%d", len(board.Snapshots), builder.calls.Load())
	}

	_, _ = svc.Get(context.Background(), BuildInput{})
	if builder.calls.Load() != 2 {
		t.Fatalf("healthy board must be cached, got %d builds", builder.calls.Load())
	}
}

func TestDashboardService_Get_SkipsCacheWhenEveryFetchFailed(t *testing.T) {
	t.Parallel()

	builder := &scriptedBuilder{boards: []Board{outageBoard, healthyBoard}}
	svc := newTestDashboard(builder, true)
	ctx := context.Background()

	first, _ := svc.Get(ctx, BuildInput{})
	if first.Failures != 2 || len(first.Snapshots) != 0 {
		t.Fatalf("expected the outage board to be returned, got %+v", first)
	}
	second, _ := svc.Get(ctx, BuildInput{})
	if len(second.Snapshots) != 1 || builder.calls.Load() != 2 {
		t.Fatalf("outage board must not be cached, got snapshots=%d builds=%d", len(second.Snapshots), builder.calls.Load())
	}
}

func TestDashboardService_Get_CachesEmptySelection(t *testing.T) {
	t.Parallel()

	builder := &scriptedBuilder{boards: []Board{{Snapshots: []snapshot.TeamSnapshot{}}}}
	svc := newTestDashboard(builder, true)
	ctx := context.Background()

	_, _ = svc.Get(ctx, BuildInput{Leagues: []string{}})
	_, _ = svc.Get(ctx, BuildInput{Leagues: []string{}})
	if builder.calls.Load() != 1 {
		t.Fatalf("empty board without failures is cacheable, got %d builds", builder.calls.Load())
	}
}

func TestDashboardService_WarmKeepsGoodBoardDuringOutage(t *testing.T) {
	t.Parallel()

	builder := &scriptedBuilder{boards: []Board{healthyBoard, outageBoard}}
	svc := newTestDashboard(builder, true)
	ctx := context.Background()

	if _, err := svc.Warm(ctx); err != nil {
		t.Fatalf("warm: %v", err)
	}
	warmed, err := svc.Warm(ctx)
	if err != nil {
		t.Fatalf("warm: %v", err)
	}
	if warmed.Failures != 2 {
		t.Fatalf("expected the outage board from warm, got %+v", warmed)
	}

	board, _ := svc.Get(ctx, BuildInput{})
	if len(board.Snapshots) != 1 || builder.calls.Load() != 2 {
		t.Fatalf("expected the earlier board to stay cached, got snapshots=%d builds=%d", len(board.Snapshots), builder.calls.Load())
	}
}
