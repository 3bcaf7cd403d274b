package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"place-lookup/internal/config"
	"place-lookup/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	districtsFile := flag.String("districts", "", "Path to the districts CSV file")
	streetsFile := flag.String("streets", "", "Path to the streets CSV file")
	locationsFile := flag.String("locations", "", "Path to the locations CSV file (optional)")
	houseNumbersFile := flag.String("housenumbers", "", "Path to the house numbers CSV file (optional)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *districtsFile == "" || *streetsFile == "" {
		log.Fatal().Msg("--districts and --streets are required")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, cfg.DBSource)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to db")
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, repository.Schema); err != nil {
		log.Fatal().Err(err).Msg("cannot create schema")
	}

	var firstID int64
	if err := conn.QueryRow(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM places").Scan(&firstID); err != nil {
		log.Fatal().Err(err).Msg("cannot read next place id")
	}

	in, closeAll, err := openReaders(*districtsFile, *streetsFile, *locationsFile, *houseNumbersFile)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot open input")
	}
	defer closeAll()

	ds, err := buildDataset(firstID, in)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot parse input")
	}
	log.Info().
		Int("streets", ds.streets).
		Int("locations", ds.locations).
		Int("houseNumbers", ds.houseNumbers).
		Msg("parsed input")

	if err := insertRows(ctx, conn, ds.rows); err != nil {
		log.Fatal().Err(err).Msg("cannot insert places")
	}

	if err := verifyImport(ctx, conn, firstID, len(ds.rows)); err != nil {
		log.Fatal().Err(err).Msg("import verification failed")
	}

	log.Info().Int("places", len(ds.rows)).Msg("import done")
}

func openReaders(districts, streets, locations, houseNumbers string) (readers, func(), error) {
	var files []*os.File
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	open := func(path string) (io.Reader, error) {
		if path == "" {
			return nil, nil
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open file: %w", err)
		}
		files = append(files, f)
		return f, nil
	}

	var in readers
	var err error
	if in.districts, err = open(districts); err != nil {
		closeAll()
		return readers{}, nil, err
	}
	if in.streets, err = open(streets); err != nil {
		closeAll()
		return readers{}, nil, err
	}
	if in.locations, err = open(locations); err != nil {
		closeAll()
		return readers{}, nil, err
	}
	if in.houseNumbers, err = open(houseNumbers); err != nil {
		closeAll()
		return readers{}, nil, err
	}
	return in, closeAll, nil
}

func insertRows(ctx context.Context, conn *pgx.Conn, rows []placeRow) error {
	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Use CopyFrom for bulk insert
	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"places"},
		placeColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]interface{}, error) {
			return rows[i].values(), nil
		}),
	)
	if err != nil {
		return err
	}

	// ids were assigned explicitly, so move the sequence past them
	if _, err := tx.Exec(ctx, "SELECT setval('places_id_seq', (SELECT MAX(id) FROM places))"); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func verifyImport(ctx context.Context, conn *pgx.Conn, firstID int64, expectedCount int) error {
	var count int
	err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM places WHERE id >= $1", firstID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	if count != expectedCount {
		return fmt.Errorf("record count mismatch: expected %d, got %d", expectedCount, count)
	}
	return nil
}
