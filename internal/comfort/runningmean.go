// Package comfort implements the adaptive thermal comfort core: the
// exponentially weighted outdoor running mean, the per-hour comfort band
// classification, and the monthly KPI aggregation. All functions are pure
// transforms over in-memory series; callers own input ordering and
// parameter validation.
package comfort

import (
	"time"

	"comfort-platform/internal/models"
)

// RunningMean computes the exponentially weighted running-mean outdoor
// temperature for every hour of the input series:
//
//	Trm_today = (T_d-1 + alpha*T_d-2 + alpha^2*T_d-3 + ...) / (1 + alpha + alpha^2 + ...)
//
// The outdoor series is resampled to daily means, shifted forward one day so
// a day's value depends only on fully elapsed days, smoothed with a
// bias-corrected exponential weighting, and broadcast back onto each hour by
// forward fill. The result is aligned 1:1 with the input; nil entries mark
// hours before the first defined daily value (at minimum the whole first
// calendar day).
//
// Records must be sorted ascending by timestamp.
func RunningMean(records []models.HourlyRecord, alpha float64) []*float64 {
	trm := make([]*float64, len(records))
	if len(records) == 0 {
		return trm
	}

	firstDay := dayNumber(records[0].Timestamp)
	lastDay := dayNumber(records[len(records)-1].Timestamp)
	numDays := lastDay - firstDay + 1

	// Daily resample: arithmetic mean of all hours in each calendar day.
	// Days without observations stay at count 0 and contribute nothing.
	sums := make([]float64, numDays)
	counts := make([]int, numDays)
	for _, r := range records {
		d := dayNumber(r.Timestamp) - firstDay
		sums[d] += r.Outdoor
		counts[d]++
	}

	// Shift one day forward and apply the adjusted weighted mean. The
	// recurrence keeps a decayed numerator and weight sum; weights decay per
	// calendar day whether or not that day had observations, and the
	// normalization uses only the weights of days actually present, so the
	// first known day is not damped.
	daily := make([]*float64, numDays)
	var num, den float64
	for d := 0; d < numDays; d++ {
		num *= alpha
		den *= alpha
		if d > 0 && counts[d-1] > 0 {
			num += sums[d-1] / float64(counts[d-1])
			den++
		}
		if den > 0 {
			v := num / den
			daily[d] = &v
		}
	}

	// Broadcast back to hourly resolution. The daily slice covers every
	// calendar day in range, so indexing by day is the forward fill.
	for i, r := range records {
		d := dayNumber(r.Timestamp) - firstDay
		if daily[d] != nil {
			v := *daily[d]
			trm[i] = &v
		}
	}

	return trm
}

// dayNumber maps a timestamp to a calendar-day ordinal using its own date
// components, so day boundaries follow the timestamp's naive local time and
// DST transitions cannot skew day arithmetic.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
