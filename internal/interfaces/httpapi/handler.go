package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/live-tracker/internal/platform/logging"
	"github.com/riskibarqy/live-tracker/internal/usecase"
)

type Handler struct {
	leagueService    *usecase.LeagueService
	dashboardService *usecase.DashboardService
	refreshJob       *usecase.RefreshJobService
	renderer         *dashboardRenderer
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	leagueService *usecase.LeagueService,
	dashboardService *usecase.DashboardService,
	refreshJob *usecase.RefreshJobService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leagueService:    leagueService,
		dashboardService: dashboardService,
		refreshJob:       refreshJob,
		renderer:         newDashboardRenderer(),
		logger:           logger.Named("httpapi"),
		validator:        validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagues")
	defer span.End()

	leagues, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]leagueDTO, 0, len(leagues))
	for _, l := range leagues {
		items = append(items, leagueToDTO(l))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSnapshots")
	defer span.End()

	query, err := h.parseSnapshotQuery(ctx, r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.dashboardService.Get(ctx, query.buildInput())
	if err != nil {
		h.logger.WarnContext(ctx, "get snapshots failed", "leagues", query.Leagues, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boardToDTO(board))
}

func (h *Handler) RefreshSnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshSnapshots")
	defer span.End()

	query, err := h.parseSnapshotQuery(ctx, r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	board, err := h.dashboardService.Refresh(ctx, query.buildInput())
	if err != nil {
		h.logger.WarnContext(ctx, "refresh snapshots failed", "leagues", query.Leagues, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, boardToDTO(board))
}

func (h *Handler) ListRefreshRuns(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRefreshRuns")
	defer span.End()

	query, err := h.parseRunsQuery(ctx, r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	runs, err := h.refreshJob.ListRuns(ctx, query.Limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list refresh runs failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]refreshRunDTO, 0, len(runs))
	for _, run := range runs {
		items = append(items, refreshRunToDTO(run))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Dashboard")
	defer span.End()

	page := dashboardPage{AllLeagues: h.allLeagueNames(ctx)}

	query, err := h.parseSnapshotQuery(ctx, r.URL.Query())
	if err != nil {
		page.Message = err.Error()
		h.writePage(ctx, w, mapError(ctx, err).HTTPStatus, page)
		return
	}

	board, err := h.dashboardService.Get(ctx, query.buildInput())
	if err != nil {
		h.logger.WarnContext(ctx, "render dashboard failed", "leagues", query.Leagues, "error", err)
		page.Message = err.Error()
		h.writePage(ctx, w, mapError(ctx, err).HTTPStatus, page)
		return
	}

	page.Board = board
	page.Selected = board.Leagues
	if query.Leagues == nil {
		page.Selected = h.dashboardService.DefaultLeagues()
	}
	h.writePage(ctx, w, http.StatusOK, page)
}

// RefreshDashboard handles the force-refresh form and redirects back to the board.
func (h *Handler) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshDashboard")
	defer span.End()

	if err := r.ParseForm(); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: parse form: %v", usecase.ErrInvalidInput, err))
		return
	}

	query, err := h.parseSnapshotQuery(ctx, r.PostForm)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, err := h.dashboardService.Refresh(ctx, query.buildInput()); err != nil {
		h.logger.WarnContext(ctx, "force refresh failed", "leagues", query.Leagues, "error", err)
	}

	target := url.URL{Path: "/"}
	if query.Leagues != nil {
		values := url.Values{}
		for _, name := range query.Leagues {
			values.Add(leagueParam, name)
		}
		if len(query.Leagues) == 0 {
			// keeps an explicit empty selection from falling back to the defaults
			values.Set(leagueParam, "")
		}
		target.RawQuery = values.Encode()
	}
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

func (h *Handler) allLeagueNames(ctx context.Context) []string {
	leagues, err := h.leagueService.ListLeagues(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list leagues for dashboard failed", "error", err)
		return nil
	}
	names := make([]string, 0, len(leagues))
	for _, l := range leagues {
		names = append(names, l.League.Name)
	}
	return names
}

func (h *Handler) writePage(ctx context.Context, w http.ResponseWriter, status int, page dashboardPage) {
	page.RenderedAt = time.Now()
	if err := h.renderer.Render(ctx, w, status, page); err != nil {
		h.logger.ErrorContext(ctx, "render dashboard page failed", "error", err)
		writeInternalError(ctx, w)
	}
}
