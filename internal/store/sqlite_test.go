package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/chrissnell/climateapi/internal/database"
	"github.com/chrissnell/climateapi/pkg/migrate"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")

	db, err := database.OpenSQLite(path, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	if _, err := migrate.NewMigrator(db, migrate.NewDatasetProvider()).Apply(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSQLiteLoaderEmpty(t *testing.T) {
	db := setupTestDB(t)

	observations, stations, err := NewSQLiteLoader(db).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(observations) != 0 || len(stations) != 0 {
		t.Errorf("got %d observations and %d stations; want none", len(observations), len(stations))
	}
}

func TestSQLiteLoaderReadsRowsInInsertOrder(t *testing.T) {
	db := setupTestDB(t)

	mustExec := func(query string, args ...any) {
		t.Helper()
		if _, err := db.Exec(query, args...); err != nil {
			t.Fatalf("exec %q: %v", query, err)
		}
	}

	mustExec(`INSERT INTO station (station, name, latitude, longitude, elevation) VALUES (?, ?, ?, ?, ?)`,
		"USC00519397", "WAIKIKI 717.2, HI US", 21.2716, -157.8168, 3.0)
	mustExec(`INSERT INTO station (station, name, latitude, longitude, elevation) VALUES (?, NULL, NULL, NULL, NULL)`,
		"USC00513117")
	mustExec(`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)`,
		"USC00519397", "2017-08-23", 0.0, 81.0)
	mustExec(`INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, NULL, ?)`,
		"USC00513117", "2010-01-01", 67.0)

	observations, stations, err := NewSQLiteLoader(db).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if len(stations) != 2 {
		t.Fatalf("got %d stations; want 2", len(stations))
	}
	if stations[0].StationID != "USC00519397" || stations[0].Name != "WAIKIKI 717.2, HI US" || stations[0].Elevation != 3.0 {
		t.Errorf("stations[0] = %+v", stations[0])
	}
	if stations[1].StationID != "USC00513117" || stations[1].Name != "" {
		t.Errorf("stations[1] = %+v; want NULL columns as zero values", stations[1])
	}

	if len(observations) != 2 {
		t.Fatalf("got %d observations; want 2", len(observations))
	}
	first := observations[0]
	if first.Date != "2017-08-23" || first.Precipitation == nil || *first.Precipitation != 0.0 {
		t.Errorf("observations[0] = %+v", first)
	}
	second := observations[1]
	if second.Precipitation != nil {
		t.Errorf("observations[1].Precipitation = %v; want nil", *second.Precipitation)
	}
	if second.Temperature == nil || *second.Temperature != 67.0 {
		t.Errorf("observations[1].Temperature = %v; want 67", second.Temperature)
	}
}

func TestSQLiteLoaderMissingTables(t *testing.T) {
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "empty.sqlite"), false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if _, _, err := NewSQLiteLoader(db).Load(context.Background()); err == nil {
		t.Error("Load without tables succeeded; want error")
	}
}
