package comfort

import (
	"comfort-platform/internal/models"
)

// Classify derives the comfort band and classification state for every hour
// of the input series. The function is stateless and row-independent: each
// output row depends only on its input row, its running-mean value, and the
// supplied parameters.
//
// Hours with an undefined running mean get StateUnknown with nil band fields
// and zero comfort/discomfort indicators; they never count as too_cold or
// too_warm. For every other row comfort_hour + discomfort_hour == 1, and a
// t_op exactly on a band limit classifies as comfortable.
func Classify(records []models.HourlyRecord, params models.Params) []models.ClassifiedHour {
	trm := RunningMean(records, params.Alpha)

	out := make([]models.ClassifiedHour, len(records))
	for i, r := range records {
		row := models.ClassifiedHour{
			Timestamp:   r.Timestamp,
			Operative:   r.Operative,
			Outdoor:     r.Outdoor,
			RunningMean: trm[i],
		}

		if trm[i] == nil {
			row.State = models.StateUnknown
			out[i] = row
			continue
		}

		tComfort := params.Slope**trm[i] + params.Intercept
		limitLow := tComfort - params.Deadband
		limitHigh := tComfort + params.Deadband

		row.ComfortTemp = &tComfort
		row.LimitLow = &limitLow
		row.LimitHigh = &limitHigh

		switch {
		case r.Operative < limitLow:
			row.State = models.StateTooCold
		case r.Operative > limitHigh:
			row.State = models.StateTooWarm
		default:
			row.State = models.StateComfortable
		}

		if row.State == models.StateComfortable {
			row.ComfortHour = 1
		}
		row.DiscomfortHour = 1 - row.ComfortHour

		out[i] = row
	}

	return out
}
