package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"comfort-platform/internal/comfort"
	"comfort-platform/internal/export"
	"comfort-platform/internal/ingest"
	"comfort-platform/internal/models"
	"comfort-platform/internal/repository"
	"comfort-platform/pkg/logging"
	"comfort-platform/pkg/metrics"
)

// AnalysisService runs the full comfort pipeline: ingest the CSV, compute
// the running mean and classification, aggregate monthly KPIs, write the
// output files, and optionally persist the run.
type AnalysisService struct {
	loader  *ingest.Loader
	repo    repository.ComfortRepository
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// AnalysisRequest describes one analysis run.
type AnalysisRequest struct {
	CSVPath   string
	Columns   ingest.Options
	Params    models.Params
	OutputDir string

	// Store persists the run via the repository; requires a repository to
	// have been supplied.
	Store bool
}

// AnalysisResult contains run statistics and output locations.
type AnalysisResult struct {
	RunID             uuid.UUID
	TotalRows         int
	DroppedRows       int
	DuplicateRows     int
	TotalHours        int
	ComfortHours      int
	ComfortPct        float64
	UnclassifiedHours int
	Months            int
	HourlyPath        string
	MonthlyPath       string
	Duration          time.Duration
}

// NewAnalysisService creates a new analysis service. repo may be nil when
// persistence is not configured.
func NewAnalysisService(loader *ingest.Loader, repo repository.ComfortRepository, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AnalysisService {
	return &AnalysisService{
		loader:  loader,
		repo:    repo,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// Run executes one comfort analysis end to end.
func (s *AnalysisService) Run(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	startTime := time.Now()
	runID := uuid.New()

	s.logger.Info(ctx, "[ANALYSIS_START] Starting comfort analysis", logging.Fields{
		"run_id":     runID.String(),
		"csv_path":   req.CSVPath,
		"alpha":      req.Params.Alpha,
		"slope":      req.Params.Slope,
		"intercept":  req.Params.Intercept,
		"deadband":   req.Params.Deadband,
		"output_dir": req.OutputDir,
		"store":      req.Store,
	})

	loaded, err := s.loader.LoadFile(ctx, req.CSVPath, req.Columns)
	if err != nil {
		return nil, fmt.Errorf("ingestion failed: %w", err)
	}

	hours := comfort.Classify(loaded.Records, req.Params)
	months := comfort.MonthlySummaries(hours)

	result := &AnalysisResult{
		RunID:         runID,
		TotalRows:     loaded.TotalRows,
		DroppedRows:   loaded.DroppedRows,
		DuplicateRows: loaded.DuplicateRows,
		Months:        len(months),
	}

	for _, h := range hours {
		if h.Classified() {
			result.TotalHours++
			result.ComfortHours += h.ComfortHour
		} else {
			result.UnclassifiedHours++
		}
	}
	if result.TotalHours > 0 {
		result.ComfortPct = 100 * float64(result.ComfortHours) / float64(result.TotalHours)
	}

	s.metrics.HoursClassifiedTotal.Add(float64(result.TotalHours))
	s.metrics.HoursUnclassifiedTotal.Add(float64(result.UnclassifiedHours))

	if req.OutputDir != "" {
		hourlyPath, monthlyPath, err := export.WriteResults(req.OutputDir, hours, months)
		if err != nil {
			return nil, fmt.Errorf("failed to write results: %w", err)
		}
		result.HourlyPath = hourlyPath
		result.MonthlyPath = monthlyPath
	}

	if req.Store {
		if s.repo == nil {
			return nil, fmt.Errorf("persistence requested but no repository configured")
		}
		if err := s.persist(ctx, req, result, hours, months); err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(startTime)
	s.metrics.AnalysisRunsTotal.Inc()
	s.metrics.AnalysisDuration.Observe(result.Duration.Seconds())

	s.logger.Info(ctx, "[ANALYSIS_COMPLETE] Comfort analysis completed", logging.Fields{
		"run_id":             runID.String(),
		"total_hours":        result.TotalHours,
		"comfort_hours":      result.ComfortHours,
		"comfort_pct":        result.ComfortPct,
		"unclassified_hours": result.UnclassifiedHours,
		"months":             result.Months,
		"duration_seconds":   result.Duration.Seconds(),
	})

	return result, nil
}

// persist stores the run header, the hourly table, and the monthly table.
func (s *AnalysisService) persist(ctx context.Context, req AnalysisRequest, result *AnalysisResult, hours []models.ClassifiedHour, months []models.MonthlySummary) error {
	run := &models.AnalysisRun{
		RunID:             result.RunID,
		SourceFile:        req.CSVPath,
		Alpha:             req.Params.Alpha,
		ComfortSlope:      req.Params.Slope,
		ComfortIntercept:  req.Params.Intercept,
		Deadband:          req.Params.Deadband,
		TotalHours:        result.TotalHours,
		ComfortHours:      result.ComfortHours,
		ComfortPct:        result.ComfortPct,
		UnclassifiedHours: result.UnclassifiedHours,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.repo.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to store run: %w", err)
	}
	if err := s.repo.InsertHourlyBatch(ctx, run.RunID, hours); err != nil {
		return fmt.Errorf("failed to store hourly results: %w", err)
	}
	if err := s.repo.InsertMonthlySummaries(ctx, run.RunID, months); err != nil {
		return fmt.Errorf("failed to store monthly summaries: %w", err)
	}

	s.logger.Info(ctx, "[ANALYSIS_STORED] Run persisted", logging.Fields{
		"run_id":       run.RunID.String(),
		"hourly_rows":  len(hours),
		"monthly_rows": len(months),
	})

	return nil
}
