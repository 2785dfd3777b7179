package thesportsdb

import (
	"bytes"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/live-tracker/internal/domain/fixture"
	"github.com/riskibarqy/live-tracker/internal/domain/leaguestanding"
)

// flexString accepts a JSON string, number or null.
type flexString string

func (s *flexString) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*s = ""
		return nil
	}
	if raw[0] == '"' {
		var v string
		if err := sonic.Unmarshal(raw, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	*s = flexString(string(raw))
	return nil
}

// flexInt accepts "3", 3 or null. Unparseable text decodes as absent.
type flexInt struct {
	Value int
	Valid bool
}

func (n *flexInt) UnmarshalJSON(raw []byte) error {
	var s flexString
	if err := s.UnmarshalJSON(raw); err != nil {
		return err
	}
	*n = flexInt{}
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(string(s))
	if err != nil {
		f, ferr := strconv.ParseFloat(string(s), 64)
		if ferr != nil {
			return nil
		}
		v = int(f)
	}
	*n = flexInt{Value: v, Valid: true}
	return nil
}

func (n flexInt) ptr() *int {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

type tableRow struct {
	TeamID   flexString `json:"idTeam"`
	TeamName flexString `json:"strTeam"`
	Rank     flexInt    `json:"intRank"`
}

type tableEnvelope struct {
	Table *[]tableRow `json:"table"`
}

type eventItem struct {
	EventDate    flexString `json:"dateEvent"`
	HomeTeamID   flexString `json:"idHomeTeam"`
	AwayTeamID   flexString `json:"idAwayTeam"`
	HomeTeamName flexString `json:"strHomeTeam"`
	AwayTeamName flexString `json:"strAwayTeam"`
	HomeScore    flexInt    `json:"intHomeScore"`
	AwayScore    flexInt    `json:"intAwayScore"`
}

// lastEventsEnvelope and nextEventsEnvelope differ only in the list key.
type lastEventsEnvelope struct {
	Results []eventItem `json:"results"`
}

type nextEventsEnvelope struct {
	Events []eventItem `json:"events"`
}

func (r tableRow) toStanding() leaguestanding.Standing {
	return leaguestanding.Standing{
		TeamID:   string(r.TeamID),
		TeamName: string(r.TeamName),
		Rank:     r.Rank.Value,
	}
}

func (e eventItem) toMatch() fixture.Match {
	return fixture.Match{
		EventDate:    string(e.EventDate),
		HomeTeamID:   string(e.HomeTeamID),
		AwayTeamID:   string(e.AwayTeamID),
		HomeTeamName: string(e.HomeTeamName),
		AwayTeamName: string(e.AwayTeamName),
		HomeScore:    e.HomeScore.ptr(),
		AwayScore:    e.AwayScore.ptr(),
	}
}

func toMatches(items []eventItem) []fixture.Match {
	out := make([]fixture.Match, 0, len(items))
	for _, item := range items {
		out = append(out, item.toMatch())
	}
	return out
}
