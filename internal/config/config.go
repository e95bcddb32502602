package config

import (
	"fmt"
	"os"

	"donation-import-backend/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DSN builds the Postgres connection string from the environment.
// DATABASE_URL wins; otherwise the individual DB_* variables are used.
func DSN() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		envOr("DB_HOST", "localhost"),
		envOr("DB_USER", "postgres"),
		os.Getenv("DB_PASSWORD"),
		envOr("DB_NAME", "donations"),
		envOr("DB_PORT", "5432"),
		envOr("DB_SSLMODE", "disable"),
	)
}

// InitDB opens the database connection or exits: nothing works without it.
func InitDB() *gorm.DB {
	log := logger.WithComponent("config")
	db, err := gorm.Open(postgres.Open(DSN()), &gorm.Config{})
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
