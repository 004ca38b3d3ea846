package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chrissnell/climateapi/internal/types"
)

const (
	selectObservationsSQL = `SELECT station, date, prcp, tobs FROM measurement ORDER BY id`
	selectStationsSQL     = `SELECT station, name, latitude, longitude, elevation FROM station ORDER BY id`
)

// SQLiteLoader reads the measurement and station tables of a SQLite dataset
type SQLiteLoader struct {
	db *sql.DB
}

// NewSQLiteLoader creates a loader reading from db
func NewSQLiteLoader(db *sql.DB) *SQLiteLoader {
	return &SQLiteLoader{db: db}
}

// Load implements Loader
func (l *SQLiteLoader) Load(ctx context.Context) ([]types.Observation, []types.Station, error) {
	observations, err := l.loadObservations(ctx)
	if err != nil {
		return nil, nil, err
	}

	stations, err := l.loadStations(ctx)
	if err != nil {
		return nil, nil, err
	}

	return observations, stations, nil
}

func (l *SQLiteLoader) loadObservations(ctx context.Context) ([]types.Observation, error) {
	rows, err := l.db.QueryContext(ctx, selectObservationsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var observations []types.Observation
	for rows.Next() {
		var (
			o    types.Observation
			prcp sql.NullFloat64
			tobs sql.NullFloat64
		)
		if err := rows.Scan(&o.StationID, &o.Date, &prcp, &tobs); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		o.Precipitation = nullableFloat(prcp)
		o.Temperature = nullableFloat(tobs)
		observations = append(observations, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurements: %w", err)
	}

	return observations, nil
}

func (l *SQLiteLoader) loadStations(ctx context.Context) ([]types.Station, error) {
	rows, err := l.db.QueryContext(ctx, selectStationsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	var stations []types.Station
	for rows.Next() {
		var s types.Station
		var name sql.NullString
		var latitude, longitude, elevation sql.NullFloat64
		if err := rows.Scan(&s.StationID, &name, &latitude, &longitude, &elevation); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		s.Name = name.String
		s.Latitude = latitude.Float64
		s.Longitude = longitude.Float64
		s.Elevation = elevation.Float64
		stations = append(stations, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stations: %w", err)
	}

	return stations, nil
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
