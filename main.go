package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lexiguess/guessd/internal/config"
	"github.com/lexiguess/guessd/internal/httpserver"
	"github.com/lexiguess/guessd/internal/persist"
	"github.com/lexiguess/guessd/internal/stats"
	"github.com/lexiguess/guessd/internal/store"
	"github.com/lexiguess/guessd/internal/words"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	vocab, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load vocabulary")
	}
	log.Info().Int("words", vocab.Len()).Msg("vocabulary loaded")

	// Durable store is optional; the service runs memory-only without it.
	var durable persist.Store
	if cfg.SQLiteDSN != "" {
		db, err := persist.Open(cfg.SQLiteDSN)
		if err != nil {
			log.Fatal().Err(err).Str("dsn", cfg.SQLiteDSN).Msg("failed to open sqlite store")
		}
		defer db.Close()
		if err := db.Migrate(cfg.MigrationsDir); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
		durable = db
	} else {
		log.Warn().Msg("no sqlite dsn configured, sessions will not survive restarts")
	}

	agg := stats.New(durable, cfg.MaxAttempts)
	sessions := store.New(vocab, durable, agg, cfg.Retention)

	srv := httpserver.New(sessions, agg, vocab, httpserver.Options{
		WordLength:  cfg.WordLength,
		MaxAttempts: cfg.MaxAttempts,
		CORSOrigin:  cfg.CORSOrigin,
		DailySalt:   cfg.DailySalt,
		StrictWords: cfg.StrictWords,
	})

	log.Info().Str("addr", cfg.Addr).Msg("starting guessd")
	if err := srv.Start(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
