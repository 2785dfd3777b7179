package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/live-tracker/internal/domain/snapshot"
	"github.com/riskibarqy/live-tracker/internal/usecase"
)

func TestStatusClass(t *testing.T) {
	t.Parallel()

	tests := map[snapshot.StatusTier]string{
		snapshot.StatusNormal:   "card-normal",
		snapshot.StatusWarn:     "card-orange",
		snapshot.StatusCritical: "card-red",
		"":                      "card-normal",
	}
	for tier, want := range tests {
		if got := statusClass(tier); got != want {
			t.Fatalf("statusClass(%q): got %s want %s", tier, got, want)
		}
	}
}

func TestBuildDashboardView(t *testing.T) {
	t.Parallel()

	generated := time.Date(2025, 10, 19, 12, 30, 45, 0, time.Local)
	page := dashboardPage{
		Board: usecase.Board{
			GeneratedAt: generated,
			Failures:    2,
			Snapshots: []snapshot.TeamSnapshot{{
				LeagueName: "EPL (ENG)",
				Rank:       1,
				TeamName:   "Arsenal",
				StatusTier: snapshot.StatusWarn,
				RecentOutcomes: []snapshot.MatchOutcome{
					{Result: snapshot.ResultWin, DateShort: "10/04"},
					{Result: snapshot.ResultLoss, DateShort: "10/18", IsMostRecent: true},
				},
				NextFixtureText: snapshot.SeasonEndedText,
			}},
		},
		AllLeagues: []string{"EPL (ENG)", "Serie A (ITA)"},
		Selected:   []string{"Serie A (ITA)"},
	}

	view := buildDashboardView(page)
	if view.LastUpdated != "12:30:45" {
		t.Fatalf("unexpected last updated: %s", view.LastUpdated)
	}
	if view.Message != "" {
		t.Fatalf("expected no message when cards exist, got %q", view.Message)
	}
	if view.Options[0].Selected || !view.Options[1].Selected {
		t.Fatalf("unexpected option selection: %+v", view.Options)
	}

	card := view.Cards[0]
	if card.StatusClass != "card-orange" {
		t.Fatalf("unexpected status class: %s", card.StatusClass)
	}
	if card.Rows[0].Date != "10/18" || !card.Rows[0].Latest || card.Rows[0].ResultClass != "res-l" {
		t.Fatalf("expected newest row first, got %+v", card.Rows)
	}
}

func TestBuildDashboardView_EmptyBoardFallsBack(t *testing.T) {
	t.Parallel()

	rendered := time.Date(2025, 10, 19, 8, 0, 0, 0, time.Local)
	view := buildDashboardView(dashboardPage{RenderedAt: rendered})
	if view.Message != noDataMessage {
		t.Fatalf("unexpected message: %q", view.Message)
	}
	if view.LastUpdated != "08:00:00" {
		t.Fatalf("expected render time when board is empty, got %s", view.LastUpdated)
	}

	view = buildDashboardView(dashboardPage{Message: "boom"})
	if view.Message != "boom" {
		t.Fatalf("explicit message must win, got %q", view.Message)
	}
}

func TestDashboardRenderer_WritesStatusAndEscapes(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := newDashboardRenderer().Render(context.Background(), rec, http.StatusBadRequest, dashboardPage{
		Message:    "<script>",
		RenderedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<script>") {
		t.Fatalf("message must be escaped")
	}
}
