package comfort

import (
	"reflect"
	"testing"
	"time"

	"comfort-platform/internal/models"
)

var testParams = models.Params{
	Alpha:     0.8,
	Slope:     0.33,
	Intercept: 18.8,
	Deadband:  3.0,
}

// tieParams produce an exactly representable band for a 10°C running mean:
// t_comfort = 0.4*10 + 18.0 = 22.0, limits [19.0, 25.0]. Used for boundary
// cases where equality must be exact.
var tieParams = models.Params{
	Alpha:     0.8,
	Slope:     0.4,
	Intercept: 18.0,
	Deadband:  3.0,
}

// twoDaySeries returns 25 hourly records: 24 hours at 10°C outdoor on day 1
// (undefined trm) and a single hour on day 2 with the given operative
// temperature, so day 2's running mean is exactly 10.0.
func twoDaySeries(dayTwoOperative float64) []models.HourlyRecord {
	day1 := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	records := hourlySeries(day1, 24, constant(10.0))
	records = append(records, models.HourlyRecord{
		Timestamp: day1.AddDate(0, 0, 1),
		Operative: dayTwoOperative,
		Outdoor:   10.0,
	})
	return records
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		operative   float64
		wantState   models.ComfortState
		wantComfort int
	}{
		{
			name:        "inside the band is comfortable",
			operative:   22.0,
			wantState:   models.StateComfortable,
			wantComfort: 1,
		},
		{
			name:        "strictly below the lower limit is too cold",
			operative:   18.9,
			wantState:   models.StateTooCold,
			wantComfort: 0,
		},
		{
			name:        "strictly above the upper limit is too warm",
			operative:   25.5,
			wantState:   models.StateTooWarm,
			wantComfort: 0,
		},
		{
			name:        "exactly on the lower limit is comfortable",
			operative:   19.0,
			wantState:   models.StateComfortable,
			wantComfort: 1,
		},
		{
			name:        "exactly on the upper limit is comfortable",
			operative:   25.0,
			wantState:   models.StateComfortable,
			wantComfort: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Classify(twoDaySeries(tt.operative), tieParams)
			row := out[len(out)-1]

			if row.State != tt.wantState {
				t.Errorf("State = %v, want %v", row.State, tt.wantState)
			}
			if row.ComfortHour != tt.wantComfort {
				t.Errorf("ComfortHour = %d, want %d", row.ComfortHour, tt.wantComfort)
			}
			if row.ComfortHour+row.DiscomfortHour != 1 {
				t.Errorf("ComfortHour + DiscomfortHour = %d, want 1",
					row.ComfortHour+row.DiscomfortHour)
			}
		})
	}
}

// TestClassify_DefaultConstants checks the adaptive band derived from the
// default ISSO 72-style constants: trm 10.0 gives t_comfort 22.1 and limits
// [19.1, 25.1].
func TestClassify_DefaultConstants(t *testing.T) {
	out := Classify(twoDaySeries(22.0), testParams)
	row := out[len(out)-1]

	if row.State != models.StateComfortable {
		t.Errorf("State = %v, want %v", row.State, models.StateComfortable)
	}
	if row.RunningMean == nil || !almostEqual(*row.RunningMean, 10.0) {
		t.Errorf("RunningMean = %v, want 10.0", row.RunningMean)
	}
	if row.ComfortTemp == nil || !almostEqual(*row.ComfortTemp, 22.1) {
		t.Errorf("ComfortTemp = %v, want 22.1", row.ComfortTemp)
	}
	if row.LimitLow == nil || !almostEqual(*row.LimitLow, 19.1) {
		t.Errorf("LimitLow = %v, want 19.1", row.LimitLow)
	}
	if row.LimitHigh == nil || !almostEqual(*row.LimitHigh, 25.1) {
		t.Errorf("LimitHigh = %v, want 25.1", row.LimitHigh)
	}
}

func TestClassify_UndefinedRunningMean(t *testing.T) {
	out := Classify(twoDaySeries(22.0), testParams)

	for i := 0; i < 24; i++ {
		row := out[i]
		if row.State != models.StateUnknown {
			t.Errorf("row %d State = %v, want %v", i, row.State, models.StateUnknown)
		}
		if row.RunningMean != nil || row.ComfortTemp != nil || row.LimitLow != nil || row.LimitHigh != nil {
			t.Errorf("row %d has derived values, want all nil for undefined trm", i)
		}
		if row.ComfortHour != 0 || row.DiscomfortHour != 0 {
			t.Errorf("row %d indicators = (%d, %d), want (0, 0)",
				i, row.ComfortHour, row.DiscomfortHour)
		}
	}
}

// TestClassify_BandOrdering checks limit_low <= t_comfort <= limit_high,
// with equality only at zero deadband.
func TestClassify_BandOrdering(t *testing.T) {
	for _, deadband := range []float64{0.0, 1.5, 3.0} {
		params := testParams
		params.Deadband = deadband

		out := Classify(twoDaySeries(22.0), params)
		for _, row := range out {
			if !row.Classified() {
				continue
			}
			if *row.LimitLow > *row.ComfortTemp || *row.ComfortTemp > *row.LimitHigh {
				t.Errorf("deadband %v: band [%v, %v] does not bracket %v",
					deadband, *row.LimitLow, *row.LimitHigh, *row.ComfortTemp)
			}
			if deadband == 0 && (*row.LimitLow != *row.ComfortTemp || *row.LimitHigh != *row.ComfortTemp) {
				t.Errorf("zero deadband: band [%v, %v] should collapse onto %v",
					*row.LimitLow, *row.LimitHigh, *row.ComfortTemp)
			}
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	records := twoDaySeries(23.5)

	first := Classify(records, testParams)
	second := Classify(records, testParams)

	if !reflect.DeepEqual(first, second) {
		t.Error("classifying the same series twice produced different output")
	}
}

func TestClassify_EmptyInput(t *testing.T) {
	out := Classify(nil, testParams)
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0", len(out))
	}
}
