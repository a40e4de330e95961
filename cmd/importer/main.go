package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mapcandy-api/internal/config"
	"mapcandy-api/internal/database"
	"mapcandy-api/internal/geo"
	"mapcandy-api/internal/logger"
	"mapcandy-api/internal/sanitize"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// csvColumns is the expected header of an import file.
var csvColumns = []string{"latitude", "longitude", "address1", "address2", "city", "state", "zip", "note"}

type PinRecord struct {
	Lat      float64
	Lon      float64
	Address1 string
	Address2 string
	City     string
	State    string
	Zip      string
	Note     string
}

func main() {
	file := flag.String("file", "", "Path to the CSV file to import")
	flag.Parse()

	if *file == "" {
		fmt.Println("Error: --file flag is required")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.LogLevel, !cfg.IsProduction())

	log.Info().Str("file", *file).Msg("starting import")

	records, err := parseCSV(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse csv")
	}
	log.Info().Int("records", len(records)).Msg("parsed records")

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DBSource, cfg.DBPingTimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer pool.Close()

	// Ensure table exists
	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("cannot migrate db")
	}

	before, err := countPins(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot count pins")
	}

	inserted, err := insertRecords(ctx, pool, records)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot insert records")
	}

	// Verify data
	after, err := countPins(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot count pins")
	}
	if after-before != inserted {
		log.Fatal().Int64("expected", inserted).Int64("actual", after-before).Msg("record count mismatch")
	}

	log.Info().Int64("records", inserted).Msg("import finished")
}

func parseCSV(filePath string) ([]PinRecord, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return readRecords(file)
}

// checkHeader requires the header to be a prefix of csvColumns with at least
// the coordinate columns present.
func checkHeader(header []string) error {
	if len(header) < 2 || len(header) > len(csvColumns) {
		return fmt.Errorf("invalid header %v: expected columns %v", header, csvColumns)
	}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if name != csvColumns[i] {
			return fmt.Errorf("invalid header: column %d is %q, expected %q", i+1, name, csvColumns[i])
		}
	}
	return nil
}

func readRecords(r io.Reader) ([]PinRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	var records []PinRecord
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		if len(record) < 2 {
			return nil, fmt.Errorf("line %d: invalid record length: %d, expected at least 2 columns", line, len(record))
		}
		// Pad short rows so optional trailing columns can be omitted.
		for len(record) < len(csvColumns) {
			record = append(record, "")
		}

		lat, err := strconv.ParseFloat(sanitize.String(record[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid latitude: %s", line, record[0])
		}

		lon, err := strconv.ParseFloat(sanitize.String(record[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid longitude: %s", line, record[1])
		}

		if !(geo.Point{Latitude: lat, Longitude: lon}).Valid() {
			return nil, fmt.Errorf("line %d: coordinates out of range: %f, %f", line, lat, lon)
		}

		records = append(records, PinRecord{
			Lat:      lat,
			Lon:      lon,
			Address1: sanitize.String(record[2]),
			Address2: sanitize.String(record[3]),
			City:     sanitize.String(record[4]),
			State:    sanitize.String(record[5]),
			Zip:      sanitize.String(record[6]),
			Note:     sanitize.String(record[7]),
		})
	}

	return records, nil
}

func insertRecords(ctx context.Context, pool *pgxpool.Pool, records []PinRecord) (int64, error) {
	// Use CopyFrom for bulk insert
	return pool.CopyFrom(
		ctx,
		pgx.Identifier{"pins"},
		csvColumns,
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			return []any{r.Lat, r.Lon, r.Address1, r.Address2, r.City, r.State, r.Zip, r.Note}, nil
		}),
	)
}

func countPins(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	var count int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM pins").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}
