// The notify binary performs one notification run and exits with the
// run's status: 0 when the digest was delivered, 1 otherwise.
package main

import (
	"os"
	"time"

	"news-notifier/internal/server"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("Error loading .env file")
	}

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	logger := log.With().Str("component", "notify").Logger()

	srv, err := server.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize")
	}

	run := srv.RunOnce()
	if run.Status != server.StatusCompleted {
		logger.Error().
			Str("run_id", run.ID).
			Str("error", run.Error).
			Msg("Run failed")
		os.Exit(1)
	}

	logger.Info().
		Str("run_id", run.ID).
		Int("item_count", run.ItemCount).
		Msg("Run completed")
}
