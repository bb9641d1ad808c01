package main

import (
	"log"
	"os"

	"github.com/hollis/gaffer/internal/api"
	"github.com/hollis/gaffer/internal/auth"
	"github.com/hollis/gaffer/internal/config"
	"github.com/hollis/gaffer/internal/engine"
	"github.com/hollis/gaffer/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	logger.Info("gaffer: starting",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"environment", cfg.Environment,
	)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	tokens := auth.NewTokenService([]byte(cfg.SecretKey), cfg.TokenTTL)
	authn := auth.NewAuthenticator(db, tokens)
	eng := engine.NewEngine(db, engine.SimulatedRunner{Delay: cfg.ExecutionDelay}, logger)

	srv := api.NewServer(cfg, db, eng, authn, logger)

	if err := srv.Run(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
