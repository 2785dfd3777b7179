package usecase

import (
	"context"

	"github.com/riskibarqy/live-tracker/internal/domain/fixture"
	"github.com/riskibarqy/live-tracker/internal/domain/leaguestanding"
	"github.com/riskibarqy/live-tracker/internal/domain/rawdata"
)

// SportsDataProvider opens one pooled session per orchestration run.
type SportsDataProvider interface {
	OpenSession() SportsDataSession
}

// SportsDataSession is safe for concurrent use until Close is called.
type SportsDataSession interface {
	LookupTable(ctx context.Context, leagueID, season string) StandingsFetch
	LastEvents(ctx context.Context, teamID string) MatchesFetch
	NextEvents(ctx context.Context, teamID string) MatchesFetch
	Close()
}

// FetchStatus describes how one upstream call ended.
// A non-nil Err means retries were exhausted and the data is absent.
type FetchStatus struct {
	Endpoint string
	Attempts int
	Err      error
	Payload  rawdata.Payload
}

func (s FetchStatus) Exhausted() bool {
	return s.Err != nil
}

type StandingsFetch struct {
	FetchStatus
	Rows     []leaguestanding.Standing
	HasTable bool
}

type MatchesFetch struct {
	FetchStatus
	Matches []fixture.Match
}
