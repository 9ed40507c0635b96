package services

import (
	"context"

	"github.com/google/uuid"

	"comfort-platform/internal/cache"
	"comfort-platform/internal/models"
	"comfort-platform/internal/repository"
	"comfort-platform/pkg/logging"
	"comfort-platform/pkg/metrics"
)

// ResultsService serves stored analysis runs to the API layer.
type ResultsService struct {
	repo    repository.ComfortRepository
	cache   *cache.SummaryCache
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewResultsService creates a new results service. cache may be nil when
// Redis is not configured.
func NewResultsService(repo repository.ComfortRepository, summaryCache *cache.SummaryCache, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ResultsService {
	return &ResultsService{
		repo:    repo,
		cache:   summaryCache,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ListRuns retrieves stored runs with pagination
func (s *ResultsService) ListRuns(ctx context.Context, limit, offset int) ([]*models.AnalysisRun, int, error) {
	return s.repo.ListRuns(ctx, limit, offset)
}

// GetRun retrieves a single run by ID
func (s *ResultsService) GetRun(ctx context.Context, runID uuid.UUID) (*models.AnalysisRun, error) {
	return s.repo.GetRun(ctx, runID)
}

// GetHourlyResults retrieves classified hours with filtering
func (s *ResultsService) GetHourlyResults(ctx context.Context, filter repository.HourlyFilter) ([]*models.ClassifiedHour, int, error) {
	return s.repo.GetHourlyResults(ctx, filter)
}

// GetMonthlySummaries retrieves the monthly KPI rows of a run, reading
// through the cache when one is configured. Stored summaries never change,
// so staleness is not a concern.
func (s *ResultsService) GetMonthlySummaries(ctx context.Context, runID uuid.UUID) ([]*models.MonthlySummary, error) {
	if s.cache != nil {
		if months, ok := s.cache.GetMonthly(ctx, runID); ok {
			return months, nil
		}
	}

	months, err := s.repo.GetMonthlySummaries(ctx, runID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(months) > 0 {
		s.cache.SetMonthly(ctx, runID, months)
	}

	return months, nil
}

// HealthCheck checks the backing repository
func (s *ResultsService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}
