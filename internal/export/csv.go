// Package export writes the classified hourly table and the monthly summary
// table as CSV files for downstream reporting and plotting tools.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"comfort-platform/internal/models"
)

const (
	// HourlyFileName and MonthlyFileName are the fixed output file names
	// inside the chosen output directory.
	HourlyFileName  = "comfort_hourly_results.csv"
	MonthlyFileName = "comfort_monthly_summary.csv"

	timestampLayout = "2006-01-02 15:04:05"
	monthLayout     = "2006-01"
)

// WriteResults writes both output files into outputDir, creating it if
// needed, and returns the two paths.
func WriteResults(outputDir string, hours []models.ClassifiedHour, months []models.MonthlySummary) (hourlyPath, monthlyPath string, err error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}

	hourlyPath = filepath.Join(outputDir, HourlyFileName)
	if err := writeFile(hourlyPath, func(w *csv.Writer) error {
		return WriteHourly(w, hours)
	}); err != nil {
		return "", "", err
	}

	monthlyPath = filepath.Join(outputDir, MonthlyFileName)
	if err := writeFile(monthlyPath, func(w *csv.Writer) error {
		return WriteMonthly(w, months)
	}); err != nil {
		return "", "", err
	}

	return hourlyPath, monthlyPath, nil
}

func writeFile(path string, write func(*csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := write(w); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// WriteHourly writes the classified hourly table. Undefined derived values
// are emitted as empty cells, never as zeros.
func WriteHourly(w *csv.Writer, hours []models.ClassifiedHour) error {
	header := []string{
		"timestamp", "t_op", "t_out", "trm", "t_comfort",
		"limit_low", "limit_high", "state", "comfort_hour", "discomfort_hour",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, h := range hours {
		row := []string{
			h.Timestamp.Format(timestampLayout),
			formatTemp(h.Operative),
			formatTemp(h.Outdoor),
			formatOptional(h.RunningMean),
			formatOptional(h.ComfortTemp),
			formatOptional(h.LimitLow),
			formatOptional(h.LimitHigh),
			string(h.State),
			strconv.Itoa(h.ComfortHour),
			strconv.Itoa(h.DiscomfortHour),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteMonthly writes the monthly KPI table.
func WriteMonthly(w *csv.Writer, months []models.MonthlySummary) error {
	header := []string{
		"month", "total_hours", "comfort_hours", "discomfort_hours",
		"too_warm_hours", "too_cold_hours", "mean_t_op", "comfort_pct",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, m := range months {
		row := []string{
			m.Month.Format(monthLayout),
			strconv.Itoa(m.TotalHours),
			strconv.Itoa(m.ComfortHours),
			strconv.Itoa(m.DiscomfortHours),
			strconv.Itoa(m.TooWarmHours),
			strconv.Itoa(m.TooColdHours),
			formatTemp(m.MeanOperative),
			strconv.FormatFloat(m.ComfortPct, 'f', 1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func formatTemp(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return formatTemp(*v)
}
