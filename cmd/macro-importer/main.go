package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/moneta-site/go-calculators-api/internal/clients/http/macrodata"
	calcmemory "github.com/moneta-site/go-calculators-api/internal/domains/calculators/adapters/memory"
	calcpostgres "github.com/moneta-site/go-calculators-api/internal/domains/calculators/adapters/persistence/postgres"
	platformmigrations "github.com/moneta-site/go-calculators-api/internal/platform/migrations"
	platformpostgres "github.com/moneta-site/go-calculators-api/internal/platform/postgres"
)

// macro-importer refreshes the macro_data table from the configured source
// API, or seeds it from the compiled-in series when no source is configured.
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot import macro data")
	}
	if err := platformmigrations.Run(db); err != nil {
		log.Fatalf("failed to apply schema migrations: %v", err)
	}

	country := countryFromEnv()
	points, err := loadPoints(ctx, logger, country)
	if err != nil {
		log.Fatalf("failed to load macro data: %v", err)
	}

	repo := calcpostgres.NewMacroRepository(db)
	if err := repo.UpsertPoints(ctx, points); err != nil {
		log.Fatalf("failed to upsert macro data: %v", err)
	}
	log.Printf("macro import completed: %d rows for %s", len(points), country)
}

func loadPoints(ctx context.Context, logger *slog.Logger, country string) ([]calcpostgres.MacroDataPoint, error) {
	sourceURL := strings.TrimSpace(os.Getenv("MACRO_SOURCE_URL"))
	if sourceURL == "" {
		logger.Warn("MACRO_SOURCE_URL not set, seeding from the compiled-in series")
		return staticPoints(ctx, country)
	}
	client, err := macrodata.NewClient(sourceURL, nil)
	if err != nil {
		return nil, err
	}
	observations, err := client.AnnualInflation(ctx, country)
	if err != nil {
		return nil, err
	}
	points := make([]calcpostgres.MacroDataPoint, 0, len(observations))
	for _, obs := range observations {
		points = append(points, calcpostgres.MacroDataPoint{
			Country:       country,
			Year:          obs.Year,
			InflationRate: obs.InflationRate,
			InterestRate:  obs.InterestRate,
			M2Growth:      obs.M2Growth,
			Source:        sourceURL,
		})
	}
	return points, nil
}

func staticPoints(ctx context.Context, country string) ([]calcpostgres.MacroDataPoint, error) {
	series, err := calcmemory.NewSeriesProvider().SeriesForCountry(ctx, country)
	if err != nil {
		return nil, err
	}
	points := make([]calcpostgres.MacroDataPoint, 0, series.Len())
	for _, p := range series.Points() {
		points = append(points, calcpostgres.MacroDataPoint{
			Country:       country,
			Year:          p.Year,
			InflationRate: p.Rate,
			Source:        "static",
		})
	}
	return points, nil
}

func countryFromEnv() string {
	if country := strings.ToUpper(strings.TrimSpace(os.Getenv("MACRO_COUNTRY"))); country != "" {
		return country
	}
	return calcmemory.DefaultCountry
}
