package comfort

import (
	"time"

	"comfort-platform/internal/models"
)

// MonthlySummaries reduces the classified hourly series into one KPI row per
// calendar month, in chronological order. Month boundaries are naive
// first-of-month, taken from each timestamp's own date components.
//
// Only classified hours contribute: StateUnknown rows are excluded from
// every figure, and a month without a single classified hour is omitted
// rather than zero-filled. For every emitted row
// comfort_hours + discomfort_hours == total_hours and
// too_warm_hours + too_cold_hours == discomfort_hours.
func MonthlySummaries(hours []models.ClassifiedHour) []models.MonthlySummary {
	var (
		summaries []models.MonthlySummary
		opSums    []float64
	)
	index := make(map[time.Time]int)

	for _, h := range hours {
		if !h.Classified() {
			continue
		}

		month := monthStart(h.Timestamp)
		i, ok := index[month]
		if !ok {
			// Input is sorted by timestamp, so appending preserves
			// chronological month order.
			i = len(summaries)
			index[month] = i
			summaries = append(summaries, models.MonthlySummary{Month: month})
			opSums = append(opSums, 0)
		}

		s := &summaries[i]
		s.TotalHours++
		s.ComfortHours += h.ComfortHour
		s.DiscomfortHours += h.DiscomfortHour
		switch h.State {
		case models.StateTooWarm:
			s.TooWarmHours++
		case models.StateTooCold:
			s.TooColdHours++
		}
		opSums[i] += h.Operative
	}

	for i := range summaries {
		s := &summaries[i]
		// TotalHours is never 0 here since months are created on first
		// classified hour, but keep the division guarded.
		if s.TotalHours > 0 {
			s.MeanOperative = opSums[i] / float64(s.TotalHours)
			s.ComfortPct = 100 * float64(s.ComfortHours) / float64(s.TotalHours)
		}
	}

	return summaries
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
