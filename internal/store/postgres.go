package store

import (
	"context"
	"fmt"

	"github.com/chrissnell/climateapi/internal/types"
	"gorm.io/gorm"
)

// PostgresLoader reads the measurement and station tables from a
// PostgreSQL or TimescaleDB database
type PostgresLoader struct {
	db *gorm.DB
}

// NewPostgresLoader creates a loader reading through db
func NewPostgresLoader(db *gorm.DB) *PostgresLoader {
	return &PostgresLoader{db: db}
}

// Load implements Loader
func (l *PostgresLoader) Load(ctx context.Context) ([]types.Observation, []types.Station, error) {
	db := l.db.WithContext(ctx)

	var observations []types.Observation
	if err := findInLoadOrder(db, &observations).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to query measurements: %w", err)
	}

	var stations []types.Station
	if err := findInLoadOrder(db, &stations).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to query stations: %w", err)
	}

	return observations, stations, nil
}

// findInLoadOrder reads the whole table behind dest in row id order, the
// same order the SQLite loader uses
func findInLoadOrder(tx *gorm.DB, dest any) *gorm.DB {
	return tx.Order("id").Find(dest)
}
