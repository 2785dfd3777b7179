package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/live-tracker/internal/platform/cache"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
)

const boardCachePrefix = "board:"

type boardBuilder interface {
	BuildBoard(ctx context.Context, input BuildInput) (Board, error)
}

type DashboardConfig struct {
	// DefaultLeagues is used when the caller does not choose any.
	DefaultLeagues []string
	CacheEnabled   bool
	CacheTTL       time.Duration
	Logger         *logging.Logger
}

// DashboardService caches boards per league selection.
type DashboardService struct {
	tracker        boardBuilder
	cache          *cache.Store[Board]
	cacheEnabled   bool
	defaultLeagues []string
	logger         *logging.Logger
}

func NewDashboardService(tracker boardBuilder, cfg DashboardConfig) *DashboardService {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &DashboardService{
		tracker:        tracker,
		cache:          cache.NewStore[Board](cfg.CacheTTL),
		cacheEnabled:   cfg.CacheEnabled && cfg.CacheTTL > 0,
		defaultLeagues: append([]string(nil), cfg.DefaultLeagues...),
		logger:         logger.Named("dashboard"),
	}
}

func (s *DashboardService) DefaultLeagues() []string {
	return append([]string(nil), s.defaultLeagues...)
}

// Get returns a cached board when one is fresh. A nil selection means the defaults.
// Payload capture always bypasses the cache.
func (s *DashboardService) Get(ctx context.Context, input BuildInput) (Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Get")
	defer span.End()

	if input.Leagues == nil {
		input.Leagues = s.DefaultLeagues()
	}
	if !s.cacheEnabled || input.CapturePayloads {
		return s.build(ctx, input)
	}

	return s.cache.GetOrLoadIf(ctx, boardCacheKey(input.Leagues), func(ctx context.Context) (Board, error) {
		return s.build(ctx, input)
	}, s.cacheable)
}

// Refresh drops every cached board and rebuilds the requested one.
func (s *DashboardService) Refresh(ctx context.Context, input BuildInput) (Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Refresh")
	defer span.End()

	s.cache.DeletePrefix(ctx, boardCachePrefix)
	s.logger.InfoContext(ctx, "board cache cleared")
	return s.Get(ctx, input)
}

// Warm rebuilds the default board and stores it, replacing any cached copy.
func (s *DashboardService) Warm(ctx context.Context) (Board, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DashboardService.Warm")
	defer span.End()

	leagues := s.DefaultLeagues()
	board, err := s.build(ctx, BuildInput{Leagues: leagues})
	if err != nil {
		return Board{}, errors.Wrap(err, "warm default board")
	}
	if s.cacheEnabled && s.cacheable(ctx, board) {
		s.cache.Set(ctx, boardCacheKey(leagues), board)
	}
	return board, nil
}

// cacheable rejects boards built under a dead context and boards where every fetch came back empty.
func (s *DashboardService) cacheable(ctx context.Context, board Board) bool {
	if err := ctx.Err(); err != nil {
		s.logger.WarnContext(ctx, "board not cached, build context ended",
			"leagues", len(board.Leagues),
			"error", err,
		)
		return false
	}
	if board.Failures > 0 && len(board.Snapshots) == 0 {
		s.logger.WarnContext(ctx, "board not cached, provider returned nothing",
			"leagues", len(board.Leagues),
			"failures", board.Failures,
		)
		return false
	}
	return true
}

func (s *DashboardService) build(ctx context.Context, input BuildInput) (Board, error) {
	board, err := s.tracker.BuildBoard(ctx, input)
	if err != nil {
		return Board{}, errors.Wrap(err, "build board")
	}
	return board, nil
}

func boardCacheKey(leagues []string) string {
	names := make([]string, 0, len(leagues))
	for _, name := range leagues {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return boardCachePrefix + strings.Join(names, "|")
}
