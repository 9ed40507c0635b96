package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"comfort-platform/internal/repository"
	"comfort-platform/internal/services"
	"comfort-platform/pkg/logging"
	"comfort-platform/pkg/metrics"
)

// ComfortHandler handles the analysis results API endpoints
type ComfortHandler struct {
	results *services.ResultsService
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewComfortHandler creates a new comfort handler
func NewComfortHandler(results *services.ResultsService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *ComfortHandler {
	return &ComfortHandler{
		results: results,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// ListRuns handles GET /api/runs
func (h *ComfortHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/runs").Observe(time.Since(startTime).Seconds())
	}()

	page, limit := pagination(r)
	offset := (page - 1) * limit

	runs, total, err := h.results.ListRuns(ctx, limit, offset)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_RUNS_ERROR] Failed to list runs", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/runs")
		h.sendError(w, r, "failed to retrieve analysis runs", http.StatusInternalServerError)
		return
	}

	response := PaginatedResponse{
		Data:       runs,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}

	h.metrics.RecordAPIRequest("/api/runs", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetRun handles GET /api/runs/{id}
func (h *ComfortHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/runs/{id}").Observe(time.Since(startTime).Seconds())
	}()

	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	run, err := h.results.GetRun(ctx, runID)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			h.sendError(w, r, "analysis run not found", http.StatusNotFound)
			return
		}
		h.logger.Error(ctx, "[API_GET_RUN_ERROR] Failed to get run", logging.Fields{
			"run_id": runID.String(),
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/runs/{id}")
		h.sendError(w, r, "failed to retrieve analysis run", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/runs/{id}", "GET", "200")
	h.sendJSON(w, run, http.StatusOK)
}

// GetHourlyResults handles GET /api/runs/{id}/hourly
func (h *ComfortHandler) GetHourlyResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/runs/{id}/hourly").Observe(time.Since(startTime).Seconds())
	}()

	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	page, limit := pagination(r)
	filter := repository.HourlyFilter{
		RunID:  runID,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if v := r.URL.Query().Get("start"); v != "" {
		start, err := parseTimeParam(v)
		if err != nil {
			h.sendError(w, r, "invalid start, expected RFC 3339 or YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.StartTime = &start
	}

	if v := r.URL.Query().Get("end"); v != "" {
		end, err := parseTimeParam(v)
		if err != nil {
			h.sendError(w, r, "invalid end, expected RFC 3339 or YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		filter.EndTime = &end
	}

	hours, total, err := h.results.GetHourlyResults(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_HOURLY_ERROR] Failed to get hourly results", logging.Fields{
			"run_id": runID.String(),
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/runs/{id}/hourly")
		h.sendError(w, r, "failed to retrieve hourly results", http.StatusInternalServerError)
		return
	}

	response := PaginatedResponse{
		Data:       hours,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}

	h.metrics.RecordAPIRequest("/api/runs/{id}/hourly", "GET", "200")
	h.sendJSON(w, response, http.StatusOK)
}

// GetMonthlySummaries handles GET /api/runs/{id}/monthly
func (h *ComfortHandler) GetMonthlySummaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/runs/{id}/monthly").Observe(time.Since(startTime).Seconds())
	}()

	runID, ok := h.runID(w, r)
	if !ok {
		return
	}

	months, err := h.results.GetMonthlySummaries(ctx, runID)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_MONTHLY_ERROR] Failed to get monthly summaries", logging.Fields{
			"run_id": runID.String(),
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/runs/{id}/monthly")
		h.sendError(w, r, "failed to retrieve monthly summaries", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/runs/{id}/monthly", "GET", "200")
	h.sendJSON(w, months, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *ComfortHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := h.results.HealthCheck(ctx); err != nil {
		status["status"] = "degraded"
		h.sendJSON(w, status, http.StatusServiceUnavailable)
		return
	}

	h.sendJSON(w, status, http.StatusOK)
}

// runID extracts and validates the {id} path variable.
func (h *ComfortHandler) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		h.sendError(w, r, "invalid run id, expected a UUID", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

// pagination parses page/limit query parameters with defaults.
func pagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 100

	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	return page, limit
}

func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

// sendJSON sends a JSON response
func (h *ComfortHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *ComfortHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RequestIDMiddleware tags every request context with a fresh request ID so
// log entries from one request can be correlated.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), requestID)))
	})
}

// RegisterRoutes registers all comfort API routes
func (h *ComfortHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/runs", h.ListRuns).Methods("GET")
	router.HandleFunc("/api/runs/{id}", h.GetRun).Methods("GET")
	router.HandleFunc("/api/runs/{id}/hourly", h.GetHourlyResults).Methods("GET")
	router.HandleFunc("/api/runs/{id}/monthly", h.GetMonthlySummaries).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
	router.HandleFunc("/api/docs/openapi.json", OpenAPISpec).Methods("GET")
	router.HandleFunc("/api/docs", SwaggerUI).Methods("GET")
}
