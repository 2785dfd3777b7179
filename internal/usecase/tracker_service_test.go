package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/live-tracker/internal/domain/fixture"
	"github.com/riskibarqy/live-tracker/internal/domain/league"
	"github.com/riskibarqy/live-tracker/internal/domain/leaguestanding"
	"github.com/riskibarqy/live-tracker/internal/domain/rawdata"
	"github.com/riskibarqy/live-tracker/internal/domain/snapshot"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
	leaguemock "github.com/riskibarqy/live-tracker/internal/mocks/domain/league"
)

var testCatalog = []league.League{
	{Name: "EPL (ENG)", ProviderID: "4328", SeasonKind: league.SeasonSplit},
	{Name: "J1 League (JPN)", ProviderID: "4633", SeasonKind: league.SeasonCalendar},
	{Name: "Serie A (ITA)", ProviderID: "4332", SeasonKind: league.SeasonSplit},
}

var errUpstream = errors.New("provider status=500")

func intPtr(v int) *int { return &v }

type fakeProvider struct {
	tables map[string]StandingsFetch
	last   map[string]MatchesFetch
	next   map[string]MatchesFetch
	opened atomic.Int32
	closed atomic.Int32
	calls  atomic.Int32

	mu      sync.Mutex
	seasons map[string]string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		tables:  map[string]StandingsFetch{},
		last:    map[string]MatchesFetch{},
		next:    map[string]MatchesFetch{},
		seasons: map[string]string{},
	}
}

func (p *fakeProvider) OpenSession() SportsDataSession {
	p.opened.Add(1)
	return fakeSession{p: p}
}

type fakeSession struct {
	p *fakeProvider
}

func (s fakeSession) LookupTable(_ context.Context, leagueID, season string) StandingsFetch {
	s.p.calls.Add(1)
	s.p.mu.Lock()
	s.p.seasons[leagueID] = season
	s.p.mu.Unlock()
	if res, ok := s.p.tables[leagueID]; ok {
		return res
	}
	return StandingsFetch{FetchStatus: exhaustedStatus("lookuptable.php?l=" + leagueID)}
}

func (s fakeSession) LastEvents(_ context.Context, teamID string) MatchesFetch {
	s.p.calls.Add(1)
	if res, ok := s.p.last[teamID]; ok {
		return res
	}
	return MatchesFetch{FetchStatus: exhaustedStatus("eventslast.php?id=" + teamID)}
}

func (s fakeSession) NextEvents(_ context.Context, teamID string) MatchesFetch {
	s.p.calls.Add(1)
	if res, ok := s.p.next[teamID]; ok {
		return res
	}
	return MatchesFetch{FetchStatus: exhaustedStatus("eventsnext.php?id=" + teamID)}
}

func (s fakeSession) Close() {
	s.p.closed.Add(1)
}

func okStatus(endpoint string) FetchStatus {
	return FetchStatus{Endpoint: endpoint, Attempts: 1, Payload: rawdata.Payload{Endpoint: endpoint, Body: "{}"}}
}

func exhaustedStatus(endpoint string) FetchStatus {
	return FetchStatus{Endpoint: endpoint, Attempts: 3, Err: errUpstream, Payload: rawdata.Payload{Endpoint: endpoint, Error: errUpstream.Error()}}
}

func tableFetch(rows ...leaguestanding.Standing) StandingsFetch {
	return StandingsFetch{FetchStatus: okStatus("lookuptable.php"), Rows: rows, HasTable: true}
}

func matchesFetch(items ...fixture.Match) MatchesFetch {
	return MatchesFetch{FetchStatus: okStatus("events"), Matches: items}
}

func newTestTracker(t *testing.T, provider SportsDataProvider) *TrackerService {
	t.Helper()
	repo := leaguemock.NewRepository(t)
	repo.On("List", mock.Anything).Return(testCatalog, nil).Maybe()
	return NewTrackerService(provider, repo, TrackerConfig{
		Seasons:    league.Seasons{Split: "2025-2026", Calendar: "2025"},
		TopN:       2,
		MaxWorkers: 4,
		Logger:     logging.NewNop(),
	})
}

func TestTrackerService_BuildAllSnapshots_EmptySelectionMakesNoCalls(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	svc := newTestTracker(t, provider)

	board, err := svc.BuildAllSnapshots(context.Background(), nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(board.Snapshots) != 0 {
		t.Fatalf("expected empty board, got %d snapshots", len(board.Snapshots))
	}
	if provider.opened.Load() != 0 || provider.calls.Load() != 0 {
		t.Fatalf("expected zero network activity, opened=%d calls=%d", provider.opened.Load(), provider.calls.Load())
	}
}

func TestTrackerService_BuildAllSnapshots_UnknownLeagueIsInvalidInput(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	svc := newTestTracker(t, provider)

	_, err := svc.BuildAllSnapshots(context.Background(), []string{"EPL (ENG)", "Made Up League"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if provider.opened.Load() != 0 {
		t.Fatalf("session must not open on invalid input")
	}
}

func TestTrackerService_BuildAllSnapshots_OrdersByCatalogThenRank(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.tables["4328"] = tableFetch(
		leaguestanding.Standing{TeamID: "ars", TeamName: "Arsenal", Rank: 2},
		leaguestanding.Standing{TeamID: "liv", TeamName: "Liverpool", Rank: 1},
		leaguestanding.Standing{TeamID: "che", TeamName: "Chelsea", Rank: 3},
		leaguestanding.Standing{TeamID: "mci", TeamName: "Man City", Rank: 4},
	)
	provider.tables["4633"] = tableFetch(
		leaguestanding.Standing{TeamID: "kas", TeamName: "Kashima", Rank: 1},
	)
	provider.last["liv"] = matchesFetch(fixture.Match{
		EventDate: "2025-10-18", HomeTeamID: "liv", AwayTeamID: "mun",
		HomeTeamName: "Liverpool", AwayTeamName: "Man United",
		HomeScore: intPtr(1), AwayScore: intPtr(2),
	})
	provider.next["liv"] = matchesFetch(fixture.Match{
		EventDate: "2025-10-25", HomeTeamID: "bre", AwayTeamID: "liv",
		HomeTeamName: "Brentford", AwayTeamName: "Liverpool",
	})

	svc := newTestTracker(t, provider)

	// Selection order differs from catalog order on purpose.
	board, err := svc.BuildAllSnapshots(context.Background(), []string{"J1 League (JPN)", "EPL (ENG)"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	gotNames := make([]string, 0, len(board.Snapshots))
	for _, snap := range board.Snapshots {
		gotNames = append(gotNames, snap.TeamName)
	}
	want := []string{"Liverpool", "Arsenal", "Kashima"}
	if len(gotNames) != len(want) {
		t.Fatalf("unexpected snapshots: %v", gotNames)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("unexpected order: got=%v want=%v", gotNames, want)
		}
	}

	liv := board.Snapshots[0]
	if liv.StatusTier != snapshot.StatusWarn || liv.NextFixtureText != "10/25 vs Brentford" {
		t.Fatalf("unexpected liverpool snapshot: %+v", liv)
	}
	ars := board.Snapshots[1]
	if len(ars.RecentOutcomes) != 0 || ars.NextFixtureText != snapshot.SeasonEndedText {
		t.Fatalf("exhausted fetches must degrade to empty data: %+v", ars)
	}

	if board.Leagues[0] != "EPL (ENG)" || board.Leagues[1] != "J1 League (JPN)" {
		t.Fatalf("leagues must follow catalog order: %v", board.Leagues)
	}
	if provider.seasons["4633"] != "2025" || provider.seasons["4328"] != "2025-2026" {
		t.Fatalf("unexpected seasons: %v", provider.seasons)
	}
	if provider.opened.Load() != 1 || provider.closed.Load() != 1 {
		t.Fatalf("expected one session opened and closed, opened=%d closed=%d", provider.opened.Load(), provider.closed.Load())
	}
	// arsenal x2 and kashima x2 were never stubbed.
	if board.Failures != 4 {
		t.Fatalf("unexpected failure count: %d", board.Failures)
	}
	if board.Payloads != nil {
		t.Fatalf("payloads must only be captured on request")
	}
}

func TestTrackerService_BuildBoard_LeagueWithoutTableYieldsNothing(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.tables["4332"] = StandingsFetch{FetchStatus: okStatus("lookuptable.php")}

	svc := newTestTracker(t, provider)
	board, err := svc.BuildBoard(context.Background(), BuildInput{
		Leagues:         []string{"Serie A (ITA)", "EPL (ENG)"},
		CapturePayloads: true,
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(board.Snapshots) != 0 {
		t.Fatalf("expected no snapshots, got %+v", board.Snapshots)
	}
	if board.Failures != 1 {
		t.Fatalf("expected the EPL standings failure only, got %d", board.Failures)
	}
	if len(board.Payloads) != 2 {
		t.Fatalf("expected both standings payloads captured, got %d", len(board.Payloads))
	}
	if provider.closed.Load() != 1 {
		t.Fatalf("session must be closed")
	}
}

func TestTrackerService_BuildSnapshot_CriticalForm(t *testing.T) {
	t.Parallel()

	provider := newFakeProvider()
	provider.last["ars"] = matchesFetch(
		fixture.Match{EventDate: "2025-09-20", HomeTeamID: "ars", HomeTeamName: "Arsenal", AwayTeamName: "Spurs", HomeScore: intPtr(1), AwayScore: intPtr(1)},
		fixture.Match{EventDate: "2025-09-27", HomeTeamID: "new", AwayTeamID: "ars", HomeTeamName: "Newcastle", AwayTeamName: "Arsenal", HomeScore: intPtr(2), AwayScore: intPtr(0)},
	)
	provider.next["ars"] = matchesFetch()

	svc := newTestTracker(t, provider)
	session := provider.OpenSession()
	defer session.Close()

	snap := svc.BuildSnapshot(context.Background(), session, testCatalog[0], leaguestanding.Standing{TeamID: "ars", TeamName: "Arsenal", Rank: 1})
	if snap.StatusTier != snapshot.StatusCritical {
		t.Fatalf("expected critical, got %s", snap.StatusTier)
	}
	if snap.LeagueName != "EPL (ENG)" || snap.Rank != 1 {
		t.Fatalf("unexpected snapshot header: %+v", snap)
	}
	if !snap.RecentOutcomes[1].IsMostRecent || snap.RecentOutcomes[1].OpponentName != "Newcastle" {
		t.Fatalf("unexpected outcomes: %+v", snap.RecentOutcomes)
	}
	if snap.NextFixtureText != snapshot.SeasonEndedText {
		t.Fatalf("expected season ended, got %q", snap.NextFixtureText)
	}
}

// rendezvous releases callers only once need of them are waiting at the same time.
type rendezvous struct {
	need    int
	arrived atomic.Int32
	all     chan struct{}
	missed  atomic.Int32
}

func newRendezvous(need int) *rendezvous {
	return &rendezvous{need: need, all: make(chan struct{})}
}

func (r *rendezvous) wait() {
	if int(r.arrived.Add(1)) == r.need {
		close(r.all)
	}
	select {
	case <-r.all:
	case <-time.After(2 * time.Second):
		r.missed.Add(1)
	}
}

type concurrentProvider struct {
	tables *rendezvous
	events *rendezvous
}

func (p *concurrentProvider) OpenSession() SportsDataSession {
	return concurrentSession{p: p}
}

type concurrentSession struct {
	p *concurrentProvider
}

func (s concurrentSession) LookupTable(_ context.Context, leagueID, _ string) StandingsFetch {
	if s.p.tables != nil {
		s.p.tables.wait()
	}
	return tableFetch(
		leaguestanding.Standing{TeamID: leagueID + "-1", TeamName: leagueID + " first", Rank: 1},
		leaguestanding.Standing{TeamID: leagueID + "-2", TeamName: leagueID + " second", Rank: 2},
	)
}

func (s concurrentSession) LastEvents(_ context.Context, _ string) MatchesFetch {
	s.p.events.wait()
	return matchesFetch()
}

func (s concurrentSession) NextEvents(_ context.Context, _ string) MatchesFetch {
	s.p.events.wait()
	return matchesFetch()
}

func (s concurrentSession) Close() {}

func TestTrackerService_BuildSnapshot_FetchesRecentAndNextConcurrently(t *testing.T) {
	t.Parallel()

	provider := &concurrentProvider{events: newRendezvous(2)}
	svc := newTestTracker(t, provider)
	session := provider.OpenSession()
	defer session.Close()

	snap := svc.BuildSnapshot(context.Background(), session, testCatalog[0], leaguestanding.Standing{TeamID: "ars", TeamName: "Arsenal", Rank: 1})
	if snap.TeamName != "Arsenal" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if missed := provider.events.missed.Load(); missed != 0 {
		t.Fatalf("recent and next fetches ran one after the other (%d timed out)", missed)
	}
}

func TestTrackerService_BuildBoard_FansOutLeaguesAndTeamsConcurrently(t *testing.T) {
	t.Parallel()

	// Two leagues, two teams each, two fetches per team.
	provider := &concurrentProvider{
		tables: newRendezvous(2),
		events: newRendezvous(8),
	}
	svc := newTestTracker(t, provider)

	board, err := svc.BuildAllSnapshots(context.Background(), []string{"EPL (ENG)", "Serie A (ITA)"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(board.Snapshots) != 4 {
		t.Fatalf("expected 4 snapshots, got %d", len(board.Snapshots))
	}
	if missed := provider.tables.missed.Load(); missed != 0 {
		t.Fatalf("standings fetches were not concurrent (%d timed out)", missed)
	}
	if missed := provider.events.missed.Load(); missed != 0 {
		t.Fatalf("team fetches were not concurrent (%d timed out)", missed)
	}
	if board.Snapshots[0].TeamID != "4328-1" || board.Snapshots[3].TeamID != "4332-2" {
		t.Fatalf("unexpected order: %s .. %s", board.Snapshots[0].TeamID, board.Snapshots[3].TeamID)
	}
}
