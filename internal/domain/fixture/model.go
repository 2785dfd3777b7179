package fixture

// Match is a provider event as seen by the snapshot rules.
// Scores are nil when the provider omits them.
type Match struct {
	EventDate    string
	HomeTeamID   string
	AwayTeamID   string
	HomeTeamName string
	AwayTeamName string
	HomeScore    *int
	AwayScore    *int
}

// Perspective is a match seen from one participant.
type Perspective struct {
	OwnScore      int
	OpponentScore int
	OpponentName  string
}

// From resolves the team's side by comparing against the home team id.
// Anything that is not the home team is treated as the away side.
func (m Match) From(teamID string) Perspective {
	home, away := scoreOrZero(m.HomeScore), scoreOrZero(m.AwayScore)
	if m.HomeTeamID == teamID {
		return Perspective{OwnScore: home, OpponentScore: away, OpponentName: m.AwayTeamName}
	}
	return Perspective{OwnScore: away, OpponentScore: home, OpponentName: m.HomeTeamName}
}

// OpponentOf names the side that is not teamID.
func (m Match) OpponentOf(teamID string) string {
	if m.HomeTeamID == teamID {
		return m.AwayTeamName
	}
	return m.HomeTeamName
}

func scoreOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
