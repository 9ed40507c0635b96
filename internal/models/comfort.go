package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ComfortState is the per-hour classification outcome.
type ComfortState string

const (
	StateComfortable ComfortState = "comfortable"
	StateTooCold     ComfortState = "too_cold"
	StateTooWarm     ComfortState = "too_warm"

	// StateUnknown marks hours whose running mean is not yet defined
	// (typically the first calendar day of a series). Such hours carry no
	// comfort band and are excluded from KPI aggregation.
	StateUnknown ComfortState = "unknown"
)

// Params holds the adaptive comfort model constants. Values are externally
// supplied and never mutated; alpha is expected in (0,1) and deadband >= 0,
// but the caller owns that validation.
type Params struct {
	Alpha     float64 `json:"alpha" db:"alpha"`
	Slope     float64 `json:"comfort_slope" db:"comfort_slope"`
	Intercept float64 `json:"comfort_intercept" db:"comfort_intercept"`
	Deadband  float64 `json:"deadband" db:"deadband"`
}

// HourlyRecord is one normalized row of the input series: a timestamp with
// the indoor (operative) and outdoor temperature in degrees Celsius.
type HourlyRecord struct {
	Timestamp time.Time `json:"timestamp" db:"ts"`
	Operative float64   `json:"t_op" db:"t_op"`
	Outdoor   float64   `json:"t_out" db:"t_out"`
}

// ClassifiedHour is an HourlyRecord extended with the derived comfort band
// and classification. Derived fields are pointers: nil means the running
// mean was undefined for that hour and no classification exists.
type ClassifiedHour struct {
	Timestamp      time.Time    `json:"timestamp" db:"ts"`
	Operative      float64      `json:"t_op" db:"t_op"`
	Outdoor        float64      `json:"t_out" db:"t_out"`
	RunningMean    *float64     `json:"trm,omitempty" db:"trm"`
	ComfortTemp    *float64     `json:"t_comfort,omitempty" db:"t_comfort"`
	LimitLow       *float64     `json:"limit_low,omitempty" db:"limit_low"`
	LimitHigh      *float64     `json:"limit_high,omitempty" db:"limit_high"`
	State          ComfortState `json:"state" db:"state"`
	ComfortHour    int          `json:"comfort_hour" db:"comfort_hour"`
	DiscomfortHour int          `json:"discomfort_hour" db:"discomfort_hour"`
}

// Classified reports whether the hour carries a defined comfort band.
func (c *ClassifiedHour) Classified() bool {
	return c.State != StateUnknown
}

// MonthlySummary is one KPI row per calendar month. Counts cover classified
// hours only; months without a single classified hour are omitted upstream.
type MonthlySummary struct {
	Month           time.Time `json:"month" db:"month"`
	TotalHours      int       `json:"total_hours" db:"total_hours"`
	ComfortHours    int       `json:"comfort_hours" db:"comfort_hours"`
	DiscomfortHours int       `json:"discomfort_hours" db:"discomfort_hours"`
	TooWarmHours    int       `json:"too_warm_hours" db:"too_warm_hours"`
	TooColdHours    int       `json:"too_cold_hours" db:"too_cold_hours"`
	MeanOperative   float64   `json:"mean_t_op" db:"mean_t_op"`
	ComfortPct      float64   `json:"comfort_pct" db:"comfort_pct"`
}

// AnalysisRun records one completed comfort analysis for persistence.
type AnalysisRun struct {
	RunID             uuid.UUID `json:"run_id" db:"run_id"`
	SourceFile        string    `json:"source_file" db:"source_file"`
	Alpha             float64   `json:"alpha" db:"alpha"`
	ComfortSlope      float64   `json:"comfort_slope" db:"comfort_slope"`
	ComfortIntercept  float64   `json:"comfort_intercept" db:"comfort_intercept"`
	Deadband          float64   `json:"deadband" db:"deadband"`
	TotalHours        int       `json:"total_hours" db:"total_hours"`
	ComfortHours      int       `json:"comfort_hours" db:"comfort_hours"`
	ComfortPct        float64   `json:"comfort_pct" db:"comfort_pct"`
	UnclassifiedHours int       `json:"unclassified_hours" db:"unclassified_hours"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// timestampLayouts are the formats accepted for the input timestamp column,
// tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// RawComfortRow is a single CSV row before normalization. All fields are the
// raw cell text; conversion decides validity.
type RawComfortRow struct {
	Timestamp string
	Operative string
	Outdoor   string
}

// ToHourlyRecord converts a raw CSV row into an HourlyRecord. Rows with an
// unparseable timestamp or a missing/invalid temperature yield a
// ValidationError and are dropped by the ingestion layer.
func (r *RawComfortRow) ToHourlyRecord() (*HourlyRecord, error) {
	ts, err := parseTimestamp(strings.TrimSpace(r.Timestamp))
	if err != nil {
		return nil, &ValidationError{
			Field:   "timestamp",
			Value:   r.Timestamp,
			Message: "unparseable timestamp",
		}
	}

	tOp, err := parseTemperature(r.Operative)
	if err != nil {
		return nil, &ValidationError{
			Field:   "t_op",
			Value:   r.Operative,
			Message: "missing or invalid operative temperature",
		}
	}

	tOut, err := parseTemperature(r.Outdoor)
	if err != nil {
		return nil, &ValidationError{
			Field:   "t_out",
			Value:   r.Outdoor,
			Message: "missing or invalid outdoor temperature",
		}
	}

	return &HourlyRecord{
		Timestamp: ts,
		Operative: tOp,
		Outdoor:   tOut,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		ts, err := time.Parse(layout, s)
		if err == nil {
			return ts, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseTemperature(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// ValidationError represents a data validation failure on a single row.
type ValidationError struct {
	Field   string
	Value   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}
