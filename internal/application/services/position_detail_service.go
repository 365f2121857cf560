package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/position-analytics/internal/application/analytics"
	"github.com/bimakw/position-analytics/internal/domain/entities"
	"github.com/bimakw/position-analytics/internal/domain/repositories"
	"github.com/bimakw/position-analytics/internal/infrastructure/cache"
)

// PositionDetailService serves the expanded view of a single position.
// Live data is cached per wallet and token; any failure falls back to demo data.
type PositionDetailService struct {
	source   repositories.PositionsRepository
	cache    cache.Store
	cacheTTL time.Duration
	metrics  *AnalyticsMetrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewPositionDetailService creates a new position detail service.
// store may be nil, in which case nothing is cached.
func NewPositionDetailService(
	source repositories.PositionsRepository,
	store cache.Store,
	cacheTTL time.Duration,
	metrics *AnalyticsMetrics,
	logger *zap.Logger,
) *PositionDetailService {
	return &PositionDetailService{
		source:   source,
		cache:    store,
		cacheTTL: cacheTTL,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// PositionDetailsResponse wraps position details for API response
type PositionDetailsResponse struct {
	Data entities.PositionDetails `json:"data"`
}

func detailsCacheKey(wallet, tokenAddress string) string {
	return fmt.Sprintf("details:%s:%s", wallet, tokenAddress)
}

// GetDetails returns the details of one position. It never fails: when the
// upstream detail cannot be fetched or validated the demo dataset is returned
// with its fallback reason.
func (s *PositionDetailService) GetDetails(ctx context.Context, wallet, tokenAddress string) *PositionDetailsResponse {
	cacheKey := detailsCacheKey(wallet, tokenAddress)

	if s.cache != nil {
		var cached entities.PositionDetails
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit for position details", zap.String("key", cacheKey))
			s.metrics.detailServed("cache")
			return &PositionDetailsResponse{Data: cached}
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Failed to read details cache", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	now := s.now()

	detail, err := s.source.FetchPositionDetail(ctx, wallet, tokenAddress)
	if err != nil {
		s.logger.Warn("Position detail unavailable, serving demo data",
			zap.String("wallet", wallet),
			zap.String("token", tokenAddress),
			zap.String("kind", repositories.ErrorKind(err)),
			zap.Error(err),
		)
		s.metrics.detailServed(entities.SourceDemo)
		return &PositionDetailsResponse{Data: analytics.DemoDetails(tokenAddress, err.Error(), now)}
	}

	if detail.TokenAddress == "" {
		detail.TokenAddress = tokenAddress
	}
	details := analytics.BuildDetails(detail, now)

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, details, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache position details", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	s.metrics.detailServed(entities.SourceLive)
	return &PositionDetailsResponse{Data: details}
}

// Invalidate drops every cached detail of a wallet
func (s *PositionDetailService) Invalidate(ctx context.Context, wallet string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.DeletePattern(ctx, detailsCacheKey(wallet, "*")); err != nil {
		return fmt.Errorf("failed to invalidate details of %s: %w", wallet, err)
	}
	return nil
}
