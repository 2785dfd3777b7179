package usecase

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/live-tracker/internal/domain/league"
)

// LeagueSeason is a catalog entry with the season it will be queried for.
type LeagueSeason struct {
	League league.League
	Season string
}

type LeagueService struct {
	leagueRepo league.Repository
	seasons    league.Seasons
}

func NewLeagueService(leagueRepo league.Repository, seasons league.Seasons) *LeagueService {
	return &LeagueService{
		leagueRepo: leagueRepo,
		seasons:    seasons,
	}
}

func (s *LeagueService) ListLeagues(ctx context.Context) ([]LeagueSeason, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.ListLeagues")
	defer span.End()

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list leagues")
	}

	out := make([]LeagueSeason, 0, len(leagues))
	for _, l := range leagues {
		out = append(out, LeagueSeason{League: l, Season: s.seasons.SeasonFor(l)})
	}
	return out, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, name string) (LeagueSeason, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return LeagueSeason{}, errors.Wrap(ErrInvalidInput, "league name is required")
	}

	l, exists, err := s.leagueRepo.GetByName(ctx, name)
	if err != nil {
		return LeagueSeason{}, errors.Wrap(err, "get league")
	}
	if !exists {
		return LeagueSeason{}, errors.Wrapf(ErrNotFound, "league=%s", name)
	}
	return LeagueSeason{League: l, Season: s.seasons.SeasonFor(l)}, nil
}
