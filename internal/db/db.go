package db

import (
	"fmt"
	"time"

	"github.com/windoze95/dapur-api/internal/config"
	"github.com/windoze95/dapur-api/internal/logger"
	"github.com/windoze95/dapur-api/internal/models"
	"go.uber.org/zap"

	// lib/pq serves as the database/sql driver so constraint errors surface
	// as *pq.Error.
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// New creates a new database connection.
func New(cfg *config.Config) (*gorm.DB, error) {
	return connectToDatabaseWithRetry(cfg.EnvVars.DatabaseUrl)
}

// connectToDatabaseWithRetry connects to the database and retries if necessary.
func connectToDatabaseWithRetry(databaseURL string) (*gorm.DB, error) {
	logger.Get().Info("connecting to database")
	var database *gorm.DB
	var err error

	start := time.Now()
	for {
		database, err = gorm.Open(postgres.New(postgres.Config{
			DriverName: "postgres",
			DSN:        databaseURL,
		}), &gorm.Config{})
		if err == nil {
			break
		}
		if time.Since(start) > 1*time.Minute {
			return nil, fmt.Errorf("could not connect to database after 1 minute: %w", err)
		}
		logger.Get().Warn("could not connect to database, retrying...", zap.Error(err))
		time.Sleep(5 * time.Second)
	}

	// Only credentials live in Postgres; conversations, bookmarks and view
	// history are file-backed.
	if err := database.AutoMigrate(&models.User{}, &models.UserAuth{}); err != nil {
		return nil, fmt.Errorf("failed to migrate user tables: %w", err)
	}

	return database, nil
}
