// Command gaffer-init prepares a gaffer database: it runs the schema
// migrations and seeds the admin login user. Safe to run repeatedly.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"github.com/hollis/gaffer/internal/auth"
	"github.com/hollis/gaffer/internal/config"
	"github.com/hollis/gaffer/internal/model"
	"github.com/hollis/gaffer/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)

	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = db.CreateUser(context.Background(), user)
	switch {
	case errors.Is(err, store.ErrUserExists):
		logger.Info("admin user already exists", "username", cfg.AdminUsername)
	case err != nil:
		log.Fatalf("failed to create admin user: %v", err)
	default:
		logger.Info("admin user created", "username", cfg.AdminUsername, "id", user.ID)
	}
}
