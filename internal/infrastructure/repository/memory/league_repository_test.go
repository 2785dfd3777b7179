package memory

import (
	"context"
	"testing"

	"github.com/riskibarqy/live-tracker/internal/domain/league"
)

func TestLeagueRepository_ListKeepsCatalogOrder(t *testing.T) {
	t.Parallel()

	repo := NewLeagueRepository(SeedLeagues())
	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list leagues: %v", err)
	}

	want := league.Catalog()
	if len(got) != len(want) {
		t.Fatalf("unexpected league count: got=%d want=%d", len(got), len(want))
	}
	for i := range want {
		if got[i].Name != want[i].Name {
			t.Fatalf("order mismatch at %d: got=%s want=%s", i, got[i].Name, want[i].Name)
		}
	}
}

func TestLeagueRepository_GetByName(t *testing.T) {
	t.Parallel()

	repo := NewLeagueRepository([]league.League{
		{Name: "J1 League (JPN)", ProviderID: "4633", SeasonKind: league.SeasonCalendar},
		{Name: "J1 League (JPN)", ProviderID: "9999", SeasonKind: league.SeasonCalendar},
	})

	got, ok, err := repo.GetByName(context.Background(), "J1 League (JPN)")
	if err != nil || !ok {
		t.Fatalf("expected league, ok=%v err=%v", ok, err)
	}
	if got.ProviderID != "4633" {
		t.Fatalf("first declaration must win, got %s", got.ProviderID)
	}

	if _, ok, _ := repo.GetByName(context.Background(), "Unknown"); ok {
		t.Fatalf("expected missing league")
	}
}
