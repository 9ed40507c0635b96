package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"comfort-platform/internal/config"
	"comfort-platform/internal/ingest"
	"comfort-platform/internal/models"
	"comfort-platform/internal/repository"
	"comfort-platform/internal/services"
	"comfort-platform/pkg/database"
	"comfort-platform/pkg/logging"
	"comfort-platform/pkg/metrics"
)

func main() {
	// Parse command-line flags
	timestampCol := flag.String("timestamp-col", "timestamp", "CSV column holding the hourly timestamp")
	operativeCol := flag.String("operative-col", "t_op", "CSV column holding the indoor operative temperature")
	outdoorCol := flag.String("outdoor-col", "t_out", "CSV column holding the outdoor temperature")
	alpha := flag.Float64("alpha", 0.8, "Smoothing constant for the outdoor running mean")
	slope := flag.Float64("comfort-slope", 0.33, "Slope of the adaptive comfort temperature line")
	intercept := flag.Float64("comfort-intercept", 18.8, "Intercept of the adaptive comfort temperature line")
	deadband := flag.Float64("deadband", 3.0, "Half-width of the comfort band in degrees C")
	outputDir := flag.String("output-dir", "results", "Directory for the hourly and monthly CSV output")
	store := flag.Bool("store", false, "Persist the run to the database")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <input.csv>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	csvPath := flag.Arg(0)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := logging.NewStructuredLogger("comfort-analyzer", "1.0.0", logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	logger.Info(ctx, "[ANALYZER_START] Starting comfort analysis", logging.Fields{
		"version":    "1.0.0",
		"csv_path":   csvPath,
		"output_dir": *outputDir,
		"store":      *store,
	})

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector("comfort_analyzer")

	// Database is only needed when persisting the run
	var comfortRepo repository.ComfortRepository
	if *store {
		dbConfig := &database.Config{
			Host:            cfg.Database.Host,
			Port:            cfg.Database.Port,
			User:            cfg.Database.User,
			Password:        cfg.Database.Password,
			Database:        cfg.Database.Database,
			SSLMode:         cfg.Database.SSLMode,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		}

		db, err := database.NewPostgresDB(dbConfig, logger, metricsCollector)
		if err != nil {
			logger.Fatal(ctx, "[ANALYZER_ERROR] Failed to connect to database", logging.Fields{}, err)
		}
		defer db.Close()

		comfortRepo = repository.NewComfortRepository(db, logger, metricsCollector)
	}

	// Initialize services
	loader := ingest.NewLoader(logger, metricsCollector)
	analysisService := services.NewAnalysisService(loader, comfortRepo, logger, metricsCollector)

	// Run the analysis
	result, err := analysisService.Run(ctx, services.AnalysisRequest{
		CSVPath: csvPath,
		Columns: ingest.Options{
			TimestampColumn: *timestampCol,
			OperativeColumn: *operativeCol,
			OutdoorColumn:   *outdoorCol,
		},
		Params: models.Params{
			Alpha:     *alpha,
			Slope:     *slope,
			Intercept: *intercept,
			Deadband:  *deadband,
		},
		OutputDir: *outputDir,
		Store:     *store,
	})
	if err != nil {
		logger.Fatal(ctx, "[ANALYZER_ERROR] Analysis failed", logging.Fields{
			"csv_path": csvPath,
		}, err)
	}

	// Print results
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("COMFORT ANALYSIS COMPLETE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Run ID:             %s\n", result.RunID)
	fmt.Printf("Input Rows:         %d\n", result.TotalRows)
	fmt.Printf("Dropped Rows:       %d\n", result.DroppedRows)
	fmt.Printf("Duplicate Rows:     %d\n", result.DuplicateRows)
	fmt.Printf("Classified Hours:   %d\n", result.TotalHours)
	fmt.Printf("Comfort Hours:      %d\n", result.ComfortHours)
	fmt.Printf("Comfort Percentage: %.1f%%\n", result.ComfortPct)
	fmt.Printf("Unclassified Hours: %d\n", result.UnclassifiedHours)
	fmt.Printf("Months Summarized:  %d\n", result.Months)
	fmt.Printf("Duration:           %v\n", result.Duration)

	if result.HourlyPath != "" {
		fmt.Printf("\nHourly Results:     %s\n", result.HourlyPath)
		fmt.Printf("Monthly Summary:    %s\n", result.MonthlyPath)
	}

	logger.Info(ctx, "[ANALYZER_COMPLETE] Analysis completed successfully", logging.Fields{
		"run_id":             result.RunID.String(),
		"total_hours":        result.TotalHours,
		"comfort_hours":      result.ComfortHours,
		"unclassified_hours": result.UnclassifiedHours,
		"duration_seconds":   result.Duration.Seconds(),
	})
}
