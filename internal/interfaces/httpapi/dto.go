package httpapi

import (
	"time"

	"github.com/riskibarqy/live-tracker/internal/domain/jobscheduler"
	"github.com/riskibarqy/live-tracker/internal/domain/rawdata"
	"github.com/riskibarqy/live-tracker/internal/domain/snapshot"
	"github.com/riskibarqy/live-tracker/internal/usecase"
)

type leagueDTO struct {
	Name       string `json:"name"`
	ProviderID string `json:"providerId"`
	SeasonKind string `json:"seasonKind"`
	Season     string `json:"season"`
}

type boardDTO struct {
	Leagues     []string          `json:"leagues"`
	GeneratedAt string            `json:"generatedAt"`
	Failures    int               `json:"failures"`
	Snapshots   []teamSnapshotDTO `json:"snapshots"`
	Payloads    []payloadDTO      `json:"payloads,omitempty"`
}

type teamSnapshotDTO struct {
	LeagueName      string            `json:"leagueName"`
	Rank            int               `json:"rank"`
	TeamID          string            `json:"teamId"`
	TeamName        string            `json:"teamName"`
	RecentOutcomes  []matchOutcomeDTO `json:"recentOutcomes"`
	NextFixtureText string            `json:"nextFixtureText"`
	HasNextFixture  bool              `json:"hasNextFixture"`
	StatusTier      string            `json:"statusTier"`
	SearchURL       string            `json:"searchUrl"`
}

type matchOutcomeDTO struct {
	Result       string `json:"result"`
	DateShort    string `json:"dateShort"`
	OpponentName string `json:"opponentName"`
	ScoreText    string `json:"scoreText"`
	IsMostRecent bool   `json:"isMostRecent"`
}

type payloadDTO struct {
	Source    string `json:"source"`
	Endpoint  string `json:"endpoint"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
	Body      string `json:"body,omitempty"`
	FetchedAt string `json:"fetchedAt"`
}

type refreshRunDTO struct {
	RunID        string   `json:"runId"`
	JobName      string   `json:"jobName"`
	Trigger      string   `json:"trigger"`
	Status       string   `json:"status"`
	Leagues      []string `json:"leagues"`
	Snapshots    int      `json:"snapshots"`
	Failures     int      `json:"failures"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	StartedAt    string   `json:"startedAt"`
	FinishedAt   string   `json:"finishedAt,omitempty"`
	DurationMS   int64    `json:"durationMs"`
	TraceID      string   `json:"traceId,omitempty"`
}

func leagueToDTO(v usecase.LeagueSeason) leagueDTO {
	return leagueDTO{
		Name:       v.League.Name,
		ProviderID: v.League.ProviderID,
		SeasonKind: string(v.League.SeasonKind),
		Season:     v.Season,
	}
}

func boardToDTO(v usecase.Board) boardDTO {
	out := boardDTO{
		Leagues:     v.Leagues,
		GeneratedAt: v.GeneratedAt.Format(time.RFC3339),
		Failures:    v.Failures,
		Snapshots:   make([]teamSnapshotDTO, 0, len(v.Snapshots)),
	}
	if out.Leagues == nil {
		out.Leagues = []string{}
	}
	for _, snap := range v.Snapshots {
		out.Snapshots = append(out.Snapshots, snapshotToDTO(snap))
	}
	for _, p := range v.Payloads {
		out.Payloads = append(out.Payloads, payloadToDTO(p))
	}
	return out
}

func snapshotToDTO(v snapshot.TeamSnapshot) teamSnapshotDTO {
	outcomes := make([]matchOutcomeDTO, 0, len(v.RecentOutcomes))
	for _, o := range v.RecentOutcomes {
		outcomes = append(outcomes, matchOutcomeDTO{
			Result:       string(o.Result),
			DateShort:    o.DateShort,
			OpponentName: o.OpponentName,
			ScoreText:    o.ScoreText,
			IsMostRecent: o.IsMostRecent,
		})
	}
	return teamSnapshotDTO{
		LeagueName:      v.LeagueName,
		Rank:            v.Rank,
		TeamID:          v.TeamID,
		TeamName:        v.TeamName,
		RecentOutcomes:  outcomes,
		NextFixtureText: v.NextFixtureText,
		HasNextFixture:  v.HasNextFixture,
		StatusTier:      string(v.StatusTier),
		SearchURL:       v.SearchURL,
	}
}

func payloadToDTO(v rawdata.Payload) payloadDTO {
	return payloadDTO{
		Source:    v.Source,
		Endpoint:  v.Endpoint,
		Attempts:  v.Attempts,
		Error:     v.Error,
		Body:      v.Body,
		FetchedAt: v.FetchedAt.Format(time.RFC3339),
	}
}

func refreshRunToDTO(v jobscheduler.RunEvent) refreshRunDTO {
	out := refreshRunDTO{
		RunID:        v.RunID,
		JobName:      v.JobName,
		Trigger:      string(v.Trigger),
		Status:       string(v.Status),
		Leagues:      v.Leagues,
		Snapshots:    v.Snapshots,
		Failures:     v.Failures,
		ErrorMessage: v.ErrorMessage,
		StartedAt:    v.StartedAt.Format(time.RFC3339),
		DurationMS:   v.Duration().Milliseconds(),
		TraceID:      v.TraceID,
	}
	if out.Leagues == nil {
		out.Leagues = []string{}
	}
	if !v.FinishedAt.IsZero() {
		out.FinishedAt = v.FinishedAt.Format(time.RFC3339)
	}
	return out
}
