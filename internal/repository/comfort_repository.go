package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"comfort-platform/internal/models"
	"comfort-platform/pkg/database"
	"comfort-platform/pkg/logging"
	"comfort-platform/pkg/metrics"
)

// ComfortRepository provides data access for persisted analysis runs
type ComfortRepository interface {
	// Run operations
	CreateRun(ctx context.Context, run *models.AnalysisRun) error
	GetRun(ctx context.Context, runID uuid.UUID) (*models.AnalysisRun, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*models.AnalysisRun, int, error)

	// Result operations
	InsertHourlyBatch(ctx context.Context, runID uuid.UUID, hours []models.ClassifiedHour) error
	InsertMonthlySummaries(ctx context.Context, runID uuid.UUID, months []models.MonthlySummary) error
	GetHourlyResults(ctx context.Context, filter HourlyFilter) ([]*models.ClassifiedHour, int, error)
	GetMonthlySummaries(ctx context.Context, runID uuid.UUID) ([]*models.MonthlySummary, error)

	// Utility operations
	HealthCheck(ctx context.Context) error
}

// HourlyFilter defines filters for querying hourly results
type HourlyFilter struct {
	RunID     uuid.UUID
	StartTime *time.Time
	EndTime   *time.Time
	Limit     int
	Offset    int
}

// comfortRepository implements ComfortRepository
type comfortRepository struct {
	db      *database.PostgresDB
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewComfortRepository creates a new comfort repository
func NewComfortRepository(db *database.PostgresDB, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) ComfortRepository {
	return &comfortRepository{
		db:      db,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// CreateRun stores a completed analysis run header
func (r *comfortRepository) CreateRun(ctx context.Context, run *models.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (
			run_id, source_file,
			alpha, comfort_slope, comfort_intercept, deadband,
			total_hours, comfort_hours, comfort_pct, unclassified_hours,
			created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, "insert_run", query,
		run.RunID,
		run.SourceFile,
		run.Alpha,
		run.ComfortSlope,
		run.ComfortIntercept,
		run.Deadband,
		run.TotalHours,
		run.ComfortHours,
		run.ComfortPct,
		run.UnclassifiedHours,
		run.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create analysis run: %w", err)
	}

	r.logger.Debug(ctx, "[REPO_CREATE_RUN] Analysis run stored", logging.Fields{
		"run_id":      run.RunID.String(),
		"source_file": run.SourceFile,
	})

	return nil
}

// GetRun retrieves an analysis run by ID
func (r *comfortRepository) GetRun(ctx context.Context, runID uuid.UUID) (*models.AnalysisRun, error) {
	query := `
		SELECT run_id, source_file,
		       alpha, comfort_slope, comfort_intercept, deadband,
		       total_hours, comfort_hours, comfort_pct, unclassified_hours,
		       created_at
		FROM analysis_runs
		WHERE run_id = $1
	`

	var run models.AnalysisRun
	err := r.db.GetContext(ctx, "get_run", &run, query, runID)

	if err == sql.ErrNoRows {
		return nil, &NotFoundError{
			Resource: "analysis_run",
			ID:       runID.String(),
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}

	return &run, nil
}

// ListRuns retrieves analysis runs with pagination, newest first
func (r *comfortRepository) ListRuns(ctx context.Context, limit, offset int) ([]*models.AnalysisRun, int, error) {
	var totalCount int
	err := r.db.GetContext(ctx, "count_runs", &totalCount, "SELECT COUNT(*) FROM analysis_runs")
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count analysis runs: %w", err)
	}

	query := `
		SELECT run_id, source_file,
		       alpha, comfort_slope, comfort_intercept, deadband,
		       total_hours, comfort_hours, comfort_pct, unclassified_hours,
		       created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	var runs []*models.AnalysisRun
	err = r.db.SelectContext(ctx, "list_runs", &runs, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list analysis runs: %w", err)
	}

	return runs, totalCount, nil
}

// InsertHourlyBatch stores all classified hours of a run in one transaction
func (r *comfortRepository) InsertHourlyBatch(ctx context.Context, runID uuid.UUID, hours []models.ClassifiedHour) error {
	if len(hours) == 0 {
		return nil
	}

	timer := time.Now()
	defer func() {
		r.metrics.DBBatchSize.Observe(float64(len(hours)))
		r.logger.Debug(ctx, "[REPO_BATCH_INSERT] Hourly batch insert completed", logging.Fields{
			"run_id":      runID.String(),
			"count":       len(hours),
			"duration_ms": time.Since(timer).Milliseconds(),
		})
	}()

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO hourly_results (
			run_id, ts, t_op, t_out,
			trm, t_comfort, limit_low, limit_high,
			state, comfort_hour, discomfort_hour
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, h := range hours {
		_, err := stmt.ExecContext(ctx,
			runID,
			h.Timestamp,
			h.Operative,
			h.Outdoor,
			h.RunningMean,
			h.ComfortTemp,
			h.LimitLow,
			h.LimitHigh,
			h.State,
			h.ComfortHour,
			h.DiscomfortHour,
		)
		if err != nil {
			return fmt.Errorf("failed to insert hourly result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// InsertMonthlySummaries stores the monthly KPI rows of a run
func (r *comfortRepository) InsertMonthlySummaries(ctx context.Context, runID uuid.UUID, months []models.MonthlySummary) error {
	if len(months) == 0 {
		return nil
	}

	query := `
		INSERT INTO monthly_summaries (
			run_id, month,
			total_hours, comfort_hours, discomfort_hours,
			too_warm_hours, too_cold_hours,
			mean_t_op, comfort_pct
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, m := range months {
		_, err := r.db.ExecContext(ctx, "insert_monthly", query,
			runID,
			m.Month,
			m.TotalHours,
			m.ComfortHours,
			m.DiscomfortHours,
			m.TooWarmHours,
			m.TooColdHours,
			m.MeanOperative,
			m.ComfortPct,
		)
		if err != nil {
			return fmt.Errorf("failed to insert monthly summary: %w", err)
		}
	}

	return nil
}

// GetHourlyResults retrieves classified hours with filtering and pagination
func (r *comfortRepository) GetHourlyResults(ctx context.Context, filter HourlyFilter) ([]*models.ClassifiedHour, int, error) {
	query := `
		SELECT ts, t_op, t_out,
		       trm, t_comfort, limit_low, limit_high,
		       state, comfort_hour, discomfort_hour
		FROM hourly_results
		WHERE run_id = $1
	`
	args := []interface{}{filter.RunID}
	argNum := 2

	if filter.StartTime != nil {
		query += fmt.Sprintf(" AND ts >= $%d", argNum)
		args = append(args, *filter.StartTime)
		argNum++
	}

	if filter.EndTime != nil {
		query += fmt.Sprintf(" AND ts <= $%d", argNum)
		args = append(args, *filter.EndTime)
		argNum++
	}

	countQuery := "SELECT COUNT(*) FROM (" + query + ") AS count_query"
	var totalCount int
	err := r.db.GetContext(ctx, "count_hourly", &totalCount, countQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count hourly results: %w", err)
	}

	query += " ORDER BY ts"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, filter.Limit, filter.Offset)

	var hours []*models.ClassifiedHour
	err = r.db.SelectContext(ctx, "get_hourly", &hours, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get hourly results: %w", err)
	}

	return hours, totalCount, nil
}

// GetMonthlySummaries retrieves the monthly KPI rows of a run in month order
func (r *comfortRepository) GetMonthlySummaries(ctx context.Context, runID uuid.UUID) ([]*models.MonthlySummary, error) {
	query := `
		SELECT month,
		       total_hours, comfort_hours, discomfort_hours,
		       too_warm_hours, too_cold_hours,
		       mean_t_op, comfort_pct
		FROM monthly_summaries
		WHERE run_id = $1
		ORDER BY month
	`

	var months []*models.MonthlySummary
	err := r.db.SelectContext(ctx, "get_monthly", &months, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly summaries: %w", err)
	}

	return months, nil
}

// HealthCheck performs a repository health check
func (r *comfortRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}
