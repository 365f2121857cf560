package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/application/analytics"
	"github.com/bimakw/position-analytics/internal/config"
	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
)

// Aggregation stop reasons
const (
	StopShortPage  = "short_page"
	StopNoProgress = "no_progress"
	StopPageLimit  = "page_limit"
)

// Two non-productive pages in a row end the aggregation
const maxNonProductivePages = 2

// AggregatorService walks a wallet's paginated positions until the data runs out
type AggregatorService struct {
	source  repositories.PositionsRepository
	config  config.AggregatorConfig
	metrics *AnalyticsMetrics
	logger  *zap.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewAggregatorService creates a new aggregator service
func NewAggregatorService(
	source repositories.PositionsRepository,
	cfg config.AggregatorConfig,
	metrics *AnalyticsMetrics,
	logger *zap.Logger,
) *AggregatorService {
	return &AggregatorService{
		source:  source,
		config:  cfg,
		metrics: metrics,
		logger:  logger,
		sleep:   sleepContext,
	}
}

// AggregationStats describes how an aggregation ended
type AggregationStats struct {
	Pages      int    `json:"pages"`
	StopReason string `json:"stop_reason"`
}

// AggregationResult is the deduplicated position set of a wallet
type AggregationResult struct {
	Positions []entities.Position
	Stats     AggregationStats
}

// PositionsDTO is the API representation of an aggregated wallet
type PositionsDTO struct {
	WalletAddress string                  `json:"wallet_address"`
	Positions     []entities.Position     `json:"positions"`
	Stats         entities.PortfolioStats `json:"stats"`
	Aggregation   AggregationStats        `json:"aggregation"`
}

// PositionsResponse is the API response for a wallet's positions
type PositionsResponse struct {
	Data PositionsDTO `json:"data"`
}

// Aggregate fetches every page of a wallet's positions.
// Any classified upstream failure aborts the walk and discards partial results.
// Hitting the page ceiling is not a failure: the positions collected so far are returned.
func (s *AggregatorService) Aggregate(ctx context.Context, wallet string) (*AggregationResult, error) {
	if strings.TrimSpace(wallet) == "" {
		return nil, fmt.Errorf("wallet address is required: %w", repositories.ErrInvalidRequest)
	}

	start := time.Now()
	limit := s.config.PageLimit

	seen := make(map[string]struct{})

	var (
		positions     []entities.Position
		offset        int
		nonProductive int
		stats         AggregationStats
	)

	for page := 1; ; page++ {
		if page > s.config.MaxPages {
			s.logger.Warn("Page ceiling reached, returning partial positions",
				zap.String("wallet", wallet),
				zap.Int("max_pages", s.config.MaxPages),
				zap.Int("positions", len(positions)),
			)
			stats.StopReason = StopPageLimit
			break
		}

		if page > 1 {
			if err := s.sleep(ctx, s.config.PageDelay); err != nil {
				err = &repositories.UpstreamError{Kind: repositories.ErrNetworkFailure, Err: err}
				s.metrics.aggregationFailed(repositories.ErrorKind(err))
				return nil, err
			}
		}

		resp, err := s.source.FetchPositionsPage(ctx, wallet, limit, offset)
		if err != nil {
			s.metrics.aggregationFailed(repositories.ErrorKind(err))
			s.logger.Warn("Aggregation aborted",
				zap.String("wallet", wallet),
				zap.Int("page", page),
				zap.Int("offset", offset),
				zap.Error(err),
			)
			return nil, err
		}
		stats.Pages++
		s.metrics.pageFetched()

		before := len(positions)
		for _, pos := range resp.Data {
			if _, ok := seen[pos.TokenAddress]; ok {
				continue
			}
			seen[pos.TokenAddress] = struct{}{}
			positions = append(positions, pos)
		}

		if len(positions) > before {
			nonProductive = 0
		} else {
			nonProductive++
		}

		s.logger.Debug("Fetched positions page",
			zap.String("wallet", wallet),
			zap.Int("page", page),
			zap.Int("received", len(resp.Data)),
			zap.Int("new", len(positions)-before),
			zap.Int("total", len(positions)),
		)

		if nonProductive >= maxNonProductivePages {
			stats.StopReason = StopNoProgress
			break
		}
		if len(resp.Data) < limit {
			stats.StopReason = StopShortPage
			break
		}

		offset += limit
	}

	s.metrics.aggregationDone(stats.StopReason, time.Since(start).Seconds())
	s.logger.Info("Aggregated positions",
		zap.String("wallet", wallet),
		zap.Int("positions", len(positions)),
		zap.Int("pages", stats.Pages),
		zap.String("stop_reason", stats.StopReason),
	)

	if positions == nil {
		positions = []entities.Position{}
	}

	return &AggregationResult{Positions: positions, Stats: stats}, nil
}

// GetPositions aggregates a wallet and summarises the result for the API
func (s *AggregatorService) GetPositions(ctx context.Context, wallet string) (*PositionsResponse, error) {
	result, err := s.Aggregate(ctx, wallet)
	if err != nil {
		return nil, err
	}

	return &PositionsResponse{
		Data: PositionsDTO{
			WalletAddress: wallet,
			Positions:     result.Positions,
			Stats:         analytics.PortfolioStats(result.Positions),
			Aggregation:   result.Stats,
		},
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
