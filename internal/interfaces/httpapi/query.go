package httpapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/riskibarqy/live-tracker/internal/usecase"
)

const (
	leagueParam = "league"
	debugParam  = "debug"
	limitParam  = "limit"

	defaultRunsLimit = 20
)

// snapshotQuery is the board selection shared by the JSON and HTML routes.
// Leagues is nil when the caller sent no league parameter at all.
type snapshotQuery struct {
	Leagues []string `validate:"omitempty,max=64,dive,required,max=64"`
	Debug   bool
}

func (q snapshotQuery) buildInput() usecase.BuildInput {
	return usecase.BuildInput{
		Leagues:         q.Leagues,
		CapturePayloads: q.Debug,
	}
}

func (h *Handler) parseSnapshotQuery(ctx context.Context, values url.Values) (snapshotQuery, error) {
	ctx, span := startSpan(ctx, "httpapi.parseSnapshotQuery")
	defer span.End()

	var query snapshotQuery
	if raw, ok := values[leagueParam]; ok {
		query.Leagues = make([]string, 0, len(raw))
		for _, name := range raw {
			if name = strings.TrimSpace(name); name != "" {
				query.Leagues = append(query.Leagues, name)
			}
		}
	}

	if raw := strings.TrimSpace(values.Get(debugParam)); raw != "" {
		debug, err := strconv.ParseBool(raw)
		if err != nil {
			return snapshotQuery{}, fmt.Errorf("%w: invalid %s value %q", usecase.ErrInvalidInput, debugParam, raw)
		}
		query.Debug = debug
	}

	if err := h.validateRequest(ctx, query); err != nil {
		return snapshotQuery{}, err
	}
	return query, nil
}

type runsQuery struct {
	Limit int `validate:"min=1,max=50"`
}

func (h *Handler) parseRunsQuery(ctx context.Context, values url.Values) (runsQuery, error) {
	ctx, span := startSpan(ctx, "httpapi.parseRunsQuery")
	defer span.End()

	query := runsQuery{Limit: defaultRunsLimit}
	if raw := strings.TrimSpace(values.Get(limitParam)); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return runsQuery{}, fmt.Errorf("%w: invalid %s value %q", usecase.ErrInvalidInput, limitParam, raw)
		}
		query.Limit = limit
	}

	if err := h.validateRequest(ctx, query); err != nil {
		return runsQuery{}, err
	}
	return query, nil
}
