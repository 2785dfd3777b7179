package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/iter"

	"github.com/riskibarqy/live-tracker/internal/domain/league"
	"github.com/riskibarqy/live-tracker/internal/domain/leaguestanding"
	"github.com/riskibarqy/live-tracker/internal/domain/rawdata"
	"github.com/riskibarqy/live-tracker/internal/domain/snapshot"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
)

const (
	defaultTrackerTopN       = 2
	defaultTrackerMaxWorkers = 8
)

type TrackerConfig struct {
	Seasons    league.Seasons
	TopN       int
	MaxWorkers int
	Logger     *logging.Logger
}

// BuildInput selects leagues by catalog name. Order and duplicates are ignored.
type BuildInput struct {
	Leagues []string
	// CapturePayloads keeps raw provider bodies on the board for diagnostics.
	CapturePayloads bool
}

// Board is one orchestration run, ordered by catalog position then rank.
type Board struct {
	Leagues     []string
	Snapshots   []snapshot.TeamSnapshot
	GeneratedAt time.Time
	Failures    int
	Payloads    []rawdata.Payload
}

type TrackerService struct {
	provider   SportsDataProvider
	leagueRepo league.Repository
	seasons    league.Seasons
	topN       int
	maxWorkers int
	logger     *logging.Logger
	now        func() time.Time
}

func NewTrackerService(provider SportsDataProvider, leagueRepo league.Repository, cfg TrackerConfig) *TrackerService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	seasons := cfg.Seasons
	if strings.TrimSpace(seasons.Split) == "" || strings.TrimSpace(seasons.Calendar) == "" {
		defaults := league.DefaultSeasons()
		if strings.TrimSpace(seasons.Split) == "" {
			seasons.Split = defaults.Split
		}
		if strings.TrimSpace(seasons.Calendar) == "" {
			seasons.Calendar = defaults.Calendar
		}
	}
	topN := cfg.TopN
	if topN < 1 {
		topN = defaultTrackerTopN
	}
	maxWorkers := cfg.MaxWorkers
	if maxWorkers < 1 {
		maxWorkers = defaultTrackerMaxWorkers
	}

	return &TrackerService{
		provider:   provider,
		leagueRepo: leagueRepo,
		seasons:    seasons,
		topN:       topN,
		maxWorkers: maxWorkers,
		logger:     logger.Named("tracker"),
		now:        time.Now,
	}
}

// BuildSnapshot fetches a team's recent results and upcoming fixtures concurrently.
// Exhausted fetches degrade to empty data.
func (s *TrackerService) BuildSnapshot(ctx context.Context, session SportsDataSession, l league.League, row leaguestanding.Standing) snapshot.TeamSnapshot {
	return s.buildSnapshot(ctx, session, l, row, newRunRecorder(false))
}

// BuildAllSnapshots runs one full orchestration for the selected league names.
func (s *TrackerService) BuildAllSnapshots(ctx context.Context, selected []string) (Board, error) {
	return s.BuildBoard(ctx, BuildInput{Leagues: selected})
}

func (s *TrackerService) BuildBoard(ctx context.Context, input BuildInput) (Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackerService.BuildBoard")
	defer span.End()

	targets, err := s.resolveLeagues(ctx, input.Leagues)
	if err != nil {
		return Board{}, err
	}

	board := Board{
		Leagues:     league.Names(targets),
		Snapshots:   []snapshot.TeamSnapshot{},
		GeneratedAt: s.now().UTC(),
	}
	if len(targets) == 0 {
		return board, nil
	}

	session := s.provider.OpenSession()
	defer session.Close()

	recorder := newRunRecorder(input.CapturePayloads)
	perLeague := make([][]snapshot.TeamSnapshot, len(targets))

	workerCount := s.maxWorkers
	if workerCount > len(targets) {
		workerCount = len(targets)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return Board{}, errors.Mark(errors.Wrap(err, "create worker pool"), ErrDependencyUnavailable)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for idx, target := range targets {
		idx, target := idx, target
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			perLeague[idx] = s.buildLeague(ctx, session, target, recorder)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return Board{}, errors.Mark(errors.Wrap(err, "submit league task to worker pool"), ErrDependencyUnavailable)
		}
	}
	workers.Wait()

	for _, snaps := range perLeague {
		sort.SliceStable(snaps, func(i, j int) bool {
			return snaps[i].Rank < snaps[j].Rank
		})
		board.Snapshots = append(board.Snapshots, snaps...)
	}

	board.Failures = int(recorder.failures.Load())
	board.Payloads = recorder.sortedPayloads()

	s.logger.InfoContext(ctx, "tracker board built",
		"leagues", len(targets),
		"snapshots", len(board.Snapshots),
		"failures", board.Failures,
	)
	return board, nil
}

// buildLeague fetches one table and fans out over its top teams.
// Snapshots come back in table order.
func (s *TrackerService) buildLeague(ctx context.Context, session SportsDataSession, l league.League, recorder *runRecorder) []snapshot.TeamSnapshot {
	season := s.seasons.SeasonFor(l)
	table := session.LookupTable(ctx, l.ProviderID, season)
	s.observe(ctx, recorder, table.FetchStatus, "league", l.Name)
	if table.Exhausted() || !table.HasTable {
		return nil
	}

	top := leaguestanding.TopRanked(table.Rows, s.topN)
	if len(top) == 0 {
		return nil
	}

	mapper := iter.Mapper[leaguestanding.Standing, snapshot.TeamSnapshot]{MaxGoroutines: len(top)}
	return mapper.Map(top, func(row *leaguestanding.Standing) snapshot.TeamSnapshot {
		return s.buildSnapshot(ctx, session, l, *row, recorder)
	})
}

func (s *TrackerService) buildSnapshot(ctx context.Context, session SportsDataSession, l league.League, row leaguestanding.Standing, recorder *runRecorder) snapshot.TeamSnapshot {
	var (
		recent   MatchesFetch
		upcoming MatchesFetch
		wg       conc.WaitGroup
	)
	wg.Go(func() {
		recent = session.LastEvents(ctx, row.TeamID)
	})
	wg.Go(func() {
		upcoming = session.NextEvents(ctx, row.TeamID)
	})
	wg.Wait()

	s.observe(ctx, recorder, recent.FetchStatus, "team", row.TeamName)
	s.observe(ctx, recorder, upcoming.FetchStatus, "team", row.TeamName)

	return snapshot.Build(l.Name, row.Rank, row.TeamID, row.TeamName, recent.Matches, upcoming.Matches)
}

func (s *TrackerService) observe(ctx context.Context, recorder *runRecorder, status FetchStatus, key, value string) {
	recorder.record(status)
	if !status.Exhausted() {
		return
	}
	s.logger.WarnContext(ctx, "provider fetch exhausted",
		key, value,
		"endpoint", status.Endpoint,
		"attempts", status.Attempts,
		"error", status.Err,
	)
}

// resolveLeagues returns the selected leagues in catalog order.
func (s *TrackerService) resolveLeagues(ctx context.Context, selected []string) ([]league.League, error) {
	if len(selected) == 0 {
		return nil, nil
	}

	catalog, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list leagues")
	}

	wanted := make(map[string]struct{}, len(selected))
	for _, name := range selected {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		wanted[name] = struct{}{}
	}

	out := make([]league.League, 0, len(wanted))
	for _, l := range catalog {
		if _, ok := wanted[l.Name]; ok {
			out = append(out, l)
			delete(wanted, l.Name)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for name := range wanted {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, errors.Wrapf(ErrInvalidInput, "unknown league %s", strings.Join(unknown, ", "))
	}
	return out, nil
}

// runRecorder is the only state shared across tasks of one run.
type runRecorder struct {
	capture  bool
	failures atomic.Int32

	mu       sync.Mutex
	payloads []rawdata.Payload
}

func newRunRecorder(capture bool) *runRecorder {
	return &runRecorder{capture: capture}
}

func (r *runRecorder) record(status FetchStatus) {
	if status.Exhausted() {
		r.failures.Add(1)
	}
	if !r.capture {
		return
	}
	r.mu.Lock()
	r.payloads = append(r.payloads, status.Payload)
	r.mu.Unlock()
}

func (r *runRecorder) sortedPayloads() []rawdata.Payload {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.payloads) == 0 {
		return nil
	}
	out := append([]rawdata.Payload(nil), r.payloads...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Endpoint < out[j].Endpoint
	})
	return out
}
