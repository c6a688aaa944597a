package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courtpay/apportionment-api/internal/apportionment"
	"github.com/courtpay/apportionment-api/internal/config"
	"github.com/courtpay/apportionment-api/internal/database"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// init configures the logger for the replay job with pretty printing and timestamp
func init() {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main runs one historical apportionment pass over every case in the staging
// store. The job is one-shot: it exits when the pass completes or on SIGINT.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if !cfg.Apportionment.Enabled {
		log.Warn().Msg("apportionment is disabled, nothing to do")
		return
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	service := apportionment.NewService(db, cfg.Apportionment.GoLiveDate)
	processor := apportionment.NewProcessor(service)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel the pass between cases on interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Info().Msg("interrupt received, stopping after current case")
		cancel()
	}()

	started := time.Now()
	summary, err := processor.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("replay did not complete")
	}

	log.Info().
		Dur("elapsed", time.Since(started)).
		Int("cases_processed", summary.CasesProcessed).
		Int("cases_failed", summary.CasesFailed).
		Int("entries_created", summary.EntriesCreated).
		Int("surplus_cases", summary.SurplusCases).
		Int("shortfall_cases", summary.ShortfallCases).
		Msg("replay finished")
}
