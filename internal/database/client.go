// Package database opens the connections used to read the observation
// dataset.
package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/climateapi/internal/log"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

// SQLiteDSN builds a modernc.org/sqlite data source name for path. Read-only
// handles refuse writes at the SQLite level.
func SQLiteDSN(path string, readOnly bool) string {
	if !readOnly {
		return path
	}
	u := url.URL{Scheme: "file", Opaque: path, RawQuery: "mode=ro"}
	return u.String()
}

// OpenSQLite opens and pings the SQLite database at path
func OpenSQLite(path string, readOnly bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite", SQLiteDSN(path, readOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %s: %w", path, err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database %s: %w", path, err)
	}

	return db, nil
}

// CreateConnection is a helper function to create a PostgreSQL/TimescaleDB
// connection with standard GORM configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	// Create a logger for gorm
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to TimescaleDB...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		log.Warn("warning: unable to create a TimescaleDB connection:", err)
		return nil, err
	}
	log.Info("TimescaleDB connection successful")

	return db, nil
}
