package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/live-tracker/internal/domain/league"
)

// LeagueRepository serves the static catalog in declaration order.
type LeagueRepository struct {
	mu     sync.RWMutex
	items  map[string]league.League
	orders []string
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	items := make(map[string]league.League, len(leagues))
	orders := make([]string, 0, len(leagues))

	for _, l := range leagues {
		if _, dup := items[l.Name]; dup {
			continue
		}
		items[l.Name] = l
		orders = append(orders, l.Name)
	}

	return &LeagueRepository{
		items:  items,
		orders: orders,
	}
}

func (r *LeagueRepository) List(_ context.Context) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.orders))
	for _, name := range r.orders {
		out = append(out, r.items[name])
	}

	return out, nil
}

func (r *LeagueRepository) GetByName(_ context.Context, name string) (league.League, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.items[name]
	if !ok {
		return league.League{}, false, nil
	}

	return l, true, nil
}
