package comfort

import (
	"math"
	"testing"
	"time"

	"comfort-platform/internal/models"
)

// hourlySeries builds one record per hour starting at start, with outdoor
// temperatures taken from temps (cycled per hour) and a fixed operative
// temperature.
func hourlySeries(start time.Time, hours int, outdoor func(i int) float64) []models.HourlyRecord {
	records := make([]models.HourlyRecord, hours)
	for i := 0; i < hours; i++ {
		records[i] = models.HourlyRecord{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Operative: 21.0,
			Outdoor:   outdoor(i),
		}
	}
	return records
}

func constant(v float64) func(int) float64 {
	return func(int) float64 { return v }
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestRunningMean(t *testing.T) {
	day1 := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		records     []models.HourlyRecord
		alpha       float64
		checkValues func(*testing.T, []models.HourlyRecord, []*float64)
	}{
		{
			name:    "empty input yields empty output",
			records: nil,
			alpha:   0.8,
			checkValues: func(t *testing.T, _ []models.HourlyRecord, trm []*float64) {
				if len(trm) != 0 {
					t.Errorf("len(trm) = %d, want 0", len(trm))
				}
			},
		},
		{
			name:    "two constant days: first day undefined, second day equals the constant",
			records: hourlySeries(day1, 48, constant(10.0)),
			alpha:   0.8,
			checkValues: func(t *testing.T, records []models.HourlyRecord, trm []*float64) {
				for i := 0; i < 24; i++ {
					if trm[i] != nil {
						t.Errorf("trm[%d] = %v, want nil on the first calendar day", i, *trm[i])
					}
				}
				for i := 24; i < 48; i++ {
					if trm[i] == nil {
						t.Fatalf("trm[%d] = nil, want defined on the second day", i)
					}
					if !almostEqual(*trm[i], 10.0) {
						t.Errorf("trm[%d] = %v, want 10.0", i, *trm[i])
					}
				}
			},
		},
		{
			name: "causality: a day's value ignores that day's own observations",
			records: hourlySeries(day1, 48, func(i int) float64 {
				if i < 24 {
					return 10.0
				}
				return 35.0 // heat burst on day 2 must not leak into day 2's own trm
			}),
			alpha: 0.8,
			checkValues: func(t *testing.T, records []models.HourlyRecord, trm []*float64) {
				for i := 24; i < 48; i++ {
					if trm[i] == nil {
						t.Fatalf("trm[%d] = nil, want defined", i)
					}
					if !almostEqual(*trm[i], 10.0) {
						t.Errorf("trm[%d] = %v, want 10.0 (day 1 mean only)", i, *trm[i])
					}
				}
			},
		},
		{
			name: "third day blends two prior days with geometric weights",
			records: hourlySeries(day1, 72, func(i int) float64 {
				if i < 24 {
					return 10.0
				}
				return 20.0
			}),
			alpha: 0.8,
			checkValues: func(t *testing.T, records []models.HourlyRecord, trm []*float64) {
				// Trm_day3 = (20 + 0.8*10) / (1 + 0.8)
				want := 28.0 / 1.8
				for i := 48; i < 72; i++ {
					if trm[i] == nil {
						t.Fatalf("trm[%d] = nil, want defined", i)
					}
					if !almostEqual(*trm[i], want) {
						t.Errorf("trm[%d] = %v, want %v", i, *trm[i], want)
					}
				}
			},
		},
		{
			name:    "daily mean averages all hours in the day",
			records: hourlySeries(day1, 48, func(i int) float64 { return float64(i % 24) }),
			alpha:   0.8,
			checkValues: func(t *testing.T, records []models.HourlyRecord, trm []*float64) {
				// mean(0..23) = 11.5
				for i := 24; i < 48; i++ {
					if trm[i] == nil {
						t.Fatalf("trm[%d] = nil, want defined", i)
					}
					if !almostEqual(*trm[i], 11.5) {
						t.Errorf("trm[%d] = %v, want 11.5", i, *trm[i])
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trm := RunningMean(tt.records, tt.alpha)
			if len(trm) != len(tt.records) {
				t.Fatalf("len(trm) = %d, want %d", len(trm), len(tt.records))
			}
			tt.checkValues(t, tt.records, trm)
		})
	}
}

// TestRunningMean_GapDay checks that a calendar day without observations
// still decays the weights of older days (positional decay over the complete
// day range) and that its value is carried forward.
func TestRunningMean_GapDay(t *testing.T) {
	day1 := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	day3 := time.Date(2023, 6, 3, 0, 0, 0, 0, time.UTC)
	day4 := time.Date(2023, 6, 4, 0, 0, 0, 0, time.UTC)

	var records []models.HourlyRecord
	records = append(records, hourlySeries(day1, 24, constant(10.0))...)
	// June 2nd entirely absent.
	records = append(records, hourlySeries(day3, 24, constant(20.0))...)
	records = append(records, hourlySeries(day4, 24, constant(20.0))...)

	trm := RunningMean(records, 0.8)

	// Day 3 hours: shifted series has day 1's mean two positions back and
	// nothing for the gap day, so trm = (0.8*10) / 0.8 = 10.
	for i := 24; i < 48; i++ {
		if trm[i] == nil {
			t.Fatalf("trm[%d] = nil, want defined after gap day", i)
		}
		if !almostEqual(*trm[i], 10.0) {
			t.Errorf("trm[%d] = %v, want 10.0", i, *trm[i])
		}
	}

	// Day 4 hours: trm = (20 + 0.8^2*10) / (1 + 0.8^2) = 26.4 / 1.64.
	want := 26.4 / 1.64
	for i := 48; i < 72; i++ {
		if trm[i] == nil {
			t.Fatalf("trm[%d] = nil, want defined", i)
		}
		if !almostEqual(*trm[i], want) {
			t.Errorf("trm[%d] = %v, want %v", i, *trm[i], want)
		}
	}
}
