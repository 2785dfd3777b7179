package snapshot

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/riskibarqy/live-tracker/internal/domain/fixture"
)

// RecentOutcomes keeps the last RecentWindow dated matches and scores them for teamID.
func RecentOutcomes(teamID string, matches []fixture.Match) []MatchOutcome {
	dated := make([]fixture.Match, 0, len(matches))
	for _, m := range matches {
		if strings.TrimSpace(m.EventDate) == "" {
			continue
		}
		dated = append(dated, m)
	}
	sort.SliceStable(dated, func(i, j int) bool { return dated[i].EventDate < dated[j].EventDate })
	if len(dated) > RecentWindow {
		dated = dated[len(dated)-RecentWindow:]
	}

	out := make([]MatchOutcome, 0, len(dated))
	for i, m := range dated {
		view := m.From(teamID)
		out = append(out, MatchOutcome{
			Result:       Classify(view.OwnScore, view.OpponentScore),
			DateShort:    ShortDate(m.EventDate),
			OpponentName: view.OpponentName,
			ScoreText:    fmt.Sprintf("%d-%d", view.OwnScore, view.OpponentScore),
			IsMostRecent: i == len(dated)-1,
		})
	}
	return out
}

// Classify scores one match for the side owning ownScore.
func Classify(ownScore, opponentScore int) Result {
	switch {
	case ownScore > opponentScore:
		return ResultWin
	case ownScore == opponentScore:
		return ResultDraw
	default:
		return ResultLoss
	}
}

// ClassifyStatus looks only at the two most recent outcomes.
// A win resets to normal; two non-wins in a row escalate to critical.
func ClassifyStatus(outcomes []MatchOutcome) StatusTier {
	if len(outcomes) == 0 {
		return StatusNormal
	}
	last := outcomes[len(outcomes)-1]
	if last.Result == ResultWin {
		return StatusNormal
	}
	if len(outcomes) >= 2 && outcomes[len(outcomes)-2].Result != ResultWin {
		return StatusCritical
	}
	return StatusWarn
}

// NextFixture formats the first upcoming event, reporting false when there is none.
func NextFixture(teamID string, upcoming []fixture.Match) (string, bool) {
	if len(upcoming) == 0 {
		return SeasonEndedText, false
	}
	ev := upcoming[0]
	return fmt.Sprintf("%s vs %s", ShortDate(ev.EventDate), ev.OpponentOf(teamID)), true
}

// ShortDate turns YYYY-MM-DD into MM/DD; shorter inputs yield what is left after the year.
func ShortDate(eventDate string) string {
	eventDate = strings.TrimSpace(eventDate)
	if len(eventDate) <= 5 {
		return ""
	}
	rest := eventDate[5:]
	if len(rest) > 5 {
		rest = rest[:5]
	}
	return strings.ReplaceAll(rest, "-", "/")
}

// Build assembles a snapshot from already-fetched provider data.
func Build(leagueName string, rank int, teamID, teamName string, recent, upcoming []fixture.Match) TeamSnapshot {
	outcomes := RecentOutcomes(teamID, recent)
	next, hasNext := NextFixture(teamID, upcoming)
	return TeamSnapshot{
		LeagueName:      leagueName,
		Rank:            rank,
		TeamID:          teamID,
		TeamName:        teamName,
		RecentOutcomes:  outcomes,
		NextFixtureText: next,
		HasNextFixture:  hasNext,
		StatusTier:      ClassifyStatus(outcomes),
		SearchURL:       SearchURL(teamName),
	}
}

// SearchURL links a team name to a SofaScore search.
func SearchURL(teamName string) string {
	return "https://www.google.com/search?q=" + url.QueryEscape(strings.TrimSpace(teamName)+" SofaScore")
}
