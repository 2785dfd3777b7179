package memory

import "github.com/riskibarqy/live-tracker/internal/domain/league"

// SeedLeagues returns the built-in league catalog.
func SeedLeagues() []league.League {
	return league.Catalog()
}
