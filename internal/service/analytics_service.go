package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-retention-api/internal/models"
)

// AnalyticsRepository describes the persistence layer required by AnalyticsService.
type AnalyticsRepository interface {
	RiskDistribution(ctx context.Context) ([]models.RiskDistribution, error)
	DepartmentSummaries(ctx context.Context) ([]models.DepartmentRiskSummary, error)
}

// AnalyticsService provides read-optimised access to retention analytics with cache integration.
type AnalyticsService struct {
	repo    AnalyticsRepository
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AnalyticsService {
	return &AnalyticsService{repo: repo, cache: cache, metrics: metrics, logger: logger}
}

// RiskDistribution returns student counts per risk level. The boolean indicates whether data originated from cache.
func (s *AnalyticsService) RiskDistribution(ctx context.Context) ([]models.RiskDistribution, bool, error) {
	cacheKey := makeAnalyticsCacheKey("risk-distribution")
	var cached []models.RiskDistribution
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get risk distribution cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	distribution, err := s.repo.RiskDistribution(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_risk_distribution", time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, distribution, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache risk distribution", zap.Error(err))
		}
	}
	return distribution, false, nil
}

// DepartmentSummaries returns per-department risk aggregates.
func (s *AnalyticsService) DepartmentSummaries(ctx context.Context) ([]models.DepartmentRiskSummary, bool, error) {
	cacheKey := makeAnalyticsCacheKey("departments")
	var cached []models.DepartmentRiskSummary
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			return nil, false, fmt.Errorf("get department summary cache: %w", err)
		} else if hit {
			return cached, true, nil
		}
	}

	start := time.Now()
	summaries, err := s.repo.DepartmentSummaries(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("analytics_departments", time.Since(start))
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summaries, 0); err != nil && s.logger != nil {
			s.logger.Warn("cache department summaries", zap.Error(err))
		}
	}
	return summaries, false, nil
}

// InvalidateCache drops cached analytics after risk recalculations.
func (s *AnalyticsService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "analytics:*"); err != nil && s.logger != nil {
		s.logger.Warn("invalidate analytics cache", zap.Error(err))
	}
}

// SystemMetrics returns system instrumentation snapshot.
func (s *AnalyticsService) SystemMetrics() models.AnalyticsSystemMetrics {
	if s.metrics == nil {
		return models.AnalyticsSystemMetrics{}
	}
	return s.metrics.Snapshot()
}

func makeAnalyticsCacheKey(parts ...string) string {
	var builder strings.Builder
	builder.Grow(len(parts) * 16)
	builder.WriteString("analytics")
	for _, part := range parts {
		if part == "" {
			continue
		}
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}
