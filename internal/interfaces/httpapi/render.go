package httpapi

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/live-tracker/internal/domain/snapshot"
	"github.com/riskibarqy/live-tracker/internal/usecase"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

const noDataMessage = "Could not load data. Try a forced refresh in a moment."

type dashboardPage struct {
	Board      usecase.Board
	AllLeagues []string
	Selected   []string
	Message    string
	RenderedAt time.Time
}

type dashboardView struct {
	Title       string
	LastUpdated string
	Message     string
	Failures    int
	Options     []leagueOptionView
	Selected    []string
	Cards       []cardView
}

type leagueOptionView struct {
	Name     string
	Selected bool
}

type cardView struct {
	StatusClass string
	LeagueName  string
	Rank        int
	TeamName    string
	SearchURL   string
	Rows        []matchRowView
	NextText    string
}

type matchRowView struct {
	Result      string
	ResultClass string
	Date        string
	Opponent    string
	Score       string
	Latest      bool
}

type dashboardRenderer struct {
	tmpl *template.Template
}

func newDashboardRenderer() *dashboardRenderer {
	return &dashboardRenderer{
		tmpl: template.Must(template.ParseFS(templateFS, "templates/dashboard.html")),
	}
}

// Render executes into a pooled buffer before any header is written.
func (r *dashboardRenderer) Render(ctx context.Context, w http.ResponseWriter, status int, page dashboardPage) error {
	_, span := startSpan(ctx, "httpapi.dashboardRenderer.Render")
	defer span.End()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := r.tmpl.ExecuteTemplate(buf, "dashboard.html", buildDashboardView(page)); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func buildDashboardView(page dashboardPage) dashboardView {
	updated := page.Board.GeneratedAt
	if updated.IsZero() {
		updated = page.RenderedAt
	}

	selected := make(map[string]struct{}, len(page.Selected))
	for _, name := range page.Selected {
		selected[name] = struct{}{}
	}
	options := make([]leagueOptionView, 0, len(page.AllLeagues))
	for _, name := range page.AllLeagues {
		_, ok := selected[name]
		options = append(options, leagueOptionView{Name: name, Selected: ok})
	}

	cards := make([]cardView, 0, len(page.Board.Snapshots))
	for _, snap := range page.Board.Snapshots {
		cards = append(cards, snapshotToCard(snap))
	}

	message := page.Message
	if message == "" && len(cards) == 0 {
		message = noDataMessage
	}

	return dashboardView{
		Title:       "Live Tracker",
		LastUpdated: updated.Local().Format("15:04:05"),
		Message:     message,
		Failures:    page.Board.Failures,
		Options:     options,
		Selected:    page.Selected,
		Cards:       cards,
	}
}

func snapshotToCard(snap snapshot.TeamSnapshot) cardView {
	rows := make([]matchRowView, 0, len(snap.RecentOutcomes))
	for _, o := range snap.NewestFirst() {
		rows = append(rows, matchRowView{
			Result:      string(o.Result),
			ResultClass: "res-" + strings.ToLower(string(o.Result)),
			Date:        o.DateShort,
			Opponent:    o.OpponentName,
			Score:       o.ScoreText,
			Latest:      o.IsMostRecent,
		})
	}
	return cardView{
		StatusClass: statusClass(snap.StatusTier),
		LeagueName:  snap.LeagueName,
		Rank:        snap.Rank,
		TeamName:    snap.TeamName,
		SearchURL:   snap.SearchURL,
		Rows:        rows,
		NextText:    snap.NextFixtureText,
	}
}

func statusClass(tier snapshot.StatusTier) string {
	switch tier {
	case snapshot.StatusCritical:
		return "card-red"
	case snapshot.StatusWarn:
		return "card-orange"
	default:
		return "card-normal"
	}
}
