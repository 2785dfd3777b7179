package leaguestanding

// Standing is one row of a provider league table.
type Standing struct {
	TeamID   string
	TeamName string
	Rank     int
}

// TopRanked keeps rows ranked 1..maxRank, preserving input order.
func TopRanked(rows []Standing, maxRank int) []Standing {
	out := make([]Standing, 0, maxRank)
	for _, row := range rows {
		if row.Rank < 1 || row.Rank > maxRank {
			continue
		}
		if row.TeamID == "" {
			continue
		}
		out = append(out, row)
	}
	return out
}
