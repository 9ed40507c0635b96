package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"comfort-platform/pkg/logging"
	"comfort-platform/pkg/metrics"
)

// One collector per test binary: the prometheus default registry rejects
// duplicate registration.
var testMetrics = metrics.NewCollector("comfort_ingest_test")

func testLoader() *Loader {
	logger := logging.NewStructuredLogger("ingest-test", "test", logging.ErrorLevel)
	return NewLoader(logger, testMetrics)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		csv         string
		opts        Options
		wantErr     bool
		checkValues func(*testing.T, *Result)
	}{
		{
			name: "valid rows parsed and ordered",
			csv: "timestamp,t_op,t_out\n" +
				"2023-06-01 02:00:00,21.5,12.0\n" +
				"2023-06-01 00:00:00,21.0,11.0\n" +
				"2023-06-01 01:00:00,21.2,11.5\n",
			opts:    DefaultOptions(),
			wantErr: false,
			checkValues: func(t *testing.T, r *Result) {
				if len(r.Records) != 3 {
					t.Fatalf("len(Records) = %d, want 3", len(r.Records))
				}
				for i := 1; i < len(r.Records); i++ {
					if !r.Records[i-1].Timestamp.Before(r.Records[i].Timestamp) {
						t.Errorf("records not strictly ascending at %d", i)
					}
				}
				if r.Records[0].Operative != 21.0 || r.Records[0].Outdoor != 11.0 {
					t.Errorf("first record = %+v, want t_op 21.0 t_out 11.0", r.Records[0])
				}
			},
		},
		{
			name: "configured columns absent from header is an error",
			csv:  "Datetime;ignored\n",
			opts: Options{
				TimestampColumn: "Datetime",
				OperativeColumn: "Top [C]",
				OutdoorColumn:   "Tout [C]",
			},
			wantErr: true,
		},
		{
			name: "custom column names resolved",
			csv: "Datetime,Top [C],Tout [C]\n" +
				"2023-06-01T00:00:00Z,20.5,9.0\n",
			opts: Options{
				TimestampColumn: "Datetime",
				OperativeColumn: "Top [C]",
				OutdoorColumn:   "Tout [C]",
			},
			wantErr: false,
			checkValues: func(t *testing.T, r *Result) {
				if len(r.Records) != 1 {
					t.Fatalf("len(Records) = %d, want 1", len(r.Records))
				}
				want := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
				if !r.Records[0].Timestamp.Equal(want) {
					t.Errorf("Timestamp = %v, want %v", r.Records[0].Timestamp, want)
				}
			},
		},
		{
			name: "rows with bad values are dropped silently",
			csv: "timestamp,t_op,t_out\n" +
				"2023-06-01 00:00:00,21.0,11.0\n" +
				"not-a-date,21.0,11.0\n" +
				"2023-06-01 01:00:00,,11.0\n" +
				"2023-06-01 02:00:00,21.0,n/a\n" +
				"2023-06-01 03:00:00,21.3,11.2\n",
			opts:    DefaultOptions(),
			wantErr: false,
			checkValues: func(t *testing.T, r *Result) {
				if len(r.Records) != 2 {
					t.Fatalf("len(Records) = %d, want 2", len(r.Records))
				}
				if r.TotalRows != 5 || r.DroppedRows != 3 {
					t.Errorf("TotalRows = %d, DroppedRows = %d, want 5 and 3",
						r.TotalRows, r.DroppedRows)
				}
			},
		},
		{
			name: "duplicate timestamps keep the first occurrence",
			csv: "timestamp,t_op,t_out\n" +
				"2023-06-01 00:00:00,21.0,11.0\n" +
				"2023-06-01 00:00:00,25.0,15.0\n" +
				"2023-06-01 01:00:00,21.2,11.5\n",
			opts:    DefaultOptions(),
			wantErr: false,
			checkValues: func(t *testing.T, r *Result) {
				if len(r.Records) != 2 {
					t.Fatalf("len(Records) = %d, want 2", len(r.Records))
				}
				if r.DuplicateRows != 1 {
					t.Errorf("DuplicateRows = %d, want 1", r.DuplicateRows)
				}
				if r.Records[0].Operative != 21.0 {
					t.Errorf("kept Operative = %v, want 21.0 (first occurrence)",
						r.Records[0].Operative)
				}
			},
		},
		{
			name:    "header only yields empty series",
			csv:     "timestamp,t_op,t_out\n",
			opts:    DefaultOptions(),
			wantErr: false,
			checkValues: func(t *testing.T, r *Result) {
				if len(r.Records) != 0 {
					t.Errorf("len(Records) = %d, want 0", len(r.Records))
				}
			},
		},
		{
			name:    "empty input is an error",
			csv:     "",
			opts:    DefaultOptions(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := testLoader().Load(context.Background(), strings.NewReader(tt.csv), tt.opts)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.checkValues != nil {
				tt.checkValues(t, result)
			}
		})
	}
}

func TestLoad_MissingColumnsNamed(t *testing.T) {
	csv := "timestamp,indoor\n2023-06-01 00:00:00,21.0\n"

	_, err := testLoader().Load(context.Background(), strings.NewReader(csv), DefaultOptions())
	if err == nil {
		t.Fatal("Load() error = nil, want missing-columns error")
	}

	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("error type = %T, want *MissingColumnsError", err)
	}
	if len(missing.Columns) != 2 {
		t.Fatalf("missing columns = %v, want t_op and t_out", missing.Columns)
	}
	for _, want := range []string{"t_op", "t_out"} {
		found := false
		for _, c := range missing.Columns {
			if c == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing columns %v do not name %q", missing.Columns, want)
		}
	}
}
