package league

import "testing"

func TestCatalog_EntriesAreValidAndUnique(t *testing.T) {
	t.Parallel()

	leagues := Catalog()
	if len(leagues) != 31 {
		t.Fatalf("expected 31 leagues, got %d", len(leagues))
	}

	names := make(map[string]struct{}, len(leagues))
	ids := make(map[string]struct{}, len(leagues))
	calendar := 0
	for _, l := range leagues {
		if err := l.Validate(); err != nil {
			t.Fatalf("invalid catalog entry: %v", err)
		}
		if _, dup := names[l.Name]; dup {
			t.Fatalf("duplicate league name %q", l.Name)
		}
		if _, dup := ids[l.ProviderID]; dup {
			t.Fatalf("duplicate provider id %q", l.ProviderID)
		}
		names[l.Name] = struct{}{}
		ids[l.ProviderID] = struct{}{}
		if l.SeasonKind == SeasonCalendar {
			calendar++
		}
	}
	if calendar != len(calendarSeasonLeagues) {
		t.Fatalf("expected %d calendar leagues, got %d", len(calendarSeasonLeagues), calendar)
	}
}

func TestSeasons_SeasonFor(t *testing.T) {
	t.Parallel()

	seasons := DefaultSeasons()
	tests := []struct {
		league League
		want   string
	}{
		{League{Name: "EPL (ENG)", ProviderID: "4328", SeasonKind: SeasonSplit}, "2025-2026"},
		{League{Name: "MLS (USA)", ProviderID: "4346", SeasonKind: SeasonCalendar}, "2025"},
		{League{Name: "odd", ProviderID: "1"}, "2025-2026"},
	}
	for _, tt := range tests {
		if got := seasons.SeasonFor(tt.league); got != tt.want {
			t.Fatalf("SeasonFor(%s): got %q want %q", tt.league.Name, got, tt.want)
		}
	}
}

func TestLeague_ValidateRejectsUnknownSeasonKind(t *testing.T) {
	t.Parallel()

	if err := (League{Name: "x", ProviderID: "1", SeasonKind: "WEEKLY"}).Validate(); err == nil {
		t.Fatalf("expected error for unknown season kind")
	}
}
