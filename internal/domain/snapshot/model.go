package snapshot

// Result is a match result from one team's perspective.
type Result string

const (
	ResultWin  Result = "W"
	ResultDraw Result = "D"
	ResultLoss Result = "L"
)

// StatusTier is the coarse form indicator driving card emphasis.
type StatusTier string

const (
	StatusNormal   StatusTier = "NORMAL"
	StatusWarn     StatusTier = "WARN"
	StatusCritical StatusTier = "CRITICAL"
)

const (
	// RecentWindow is how many finished matches a snapshot keeps.
	RecentWindow = 3
	// SeasonEndedText replaces the next fixture when the provider lists none.
	SeasonEndedText = "Season Ended"
)

type MatchOutcome struct {
	Result       Result
	DateShort    string
	OpponentName string
	ScoreText    string
	IsMostRecent bool
}

// TeamSnapshot is the per-team record rendered as one card.
// RecentOutcomes runs oldest to newest.
type TeamSnapshot struct {
	LeagueName      string
	Rank            int
	TeamID          string
	TeamName        string
	RecentOutcomes  []MatchOutcome
	NextFixtureText string
	HasNextFixture  bool
	StatusTier      StatusTier
	SearchURL       string
}

// NewestFirst returns the outcomes in display order.
func (s TeamSnapshot) NewestFirst() []MatchOutcome {
	out := make([]MatchOutcome, 0, len(s.RecentOutcomes))
	for i := len(s.RecentOutcomes) - 1; i >= 0; i-- {
		out = append(out, s.RecentOutcomes[i])
	}
	return out
}
