package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/Jomoregie1/greetingapi/internal/config"
	"github.com/Jomoregie1/greetingapi/internal/seed"
	"github.com/Jomoregie1/greetingapi/internal/store"
)

func main() {
	file := flag.String("file", "", "JSON file of greetings: [{\"message\": ..., \"category\": ...}]")
	flag.Parse()

	cfg := config.Load()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	if *file == "" {
		logger.Fatal().Msg("usage: seed -file <greetings.json>")
	}

	f, err := os.Open(*file)
	if err != nil {
		logger.Fatal().Err(err).Msg("open seed file")
	}
	defer f.Close()

	entries, err := seed.Decode(f)
	if err != nil {
		logger.Fatal().Err(err).Msg("read seed file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if cfg.DatabaseURL != "" {
		if err := store.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	db, err := store.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	res, err := seed.Load(ctx, db, entries)
	if err != nil {
		logger.Fatal().Err(err).Int("inserted", res.Inserted).Msg("seed failed")
	}

	logger.Info().
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Msg("seed completed")
}
