package main

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrissnell/climateapi/internal/database"
	"github.com/chrissnell/climateapi/pkg/migrate"
)

func setupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	db, err := database.OpenSQLite(path, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := migrate.NewMigrator(db, migrate.NewDatasetProvider()).Apply(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db, path
}

func TestInsertSQL(t *testing.T) {
	want := "INSERT INTO measurement (station, date, prcp, tobs) VALUES (?, ?, ?, ?)"
	if got := measurementTable.insertSQL(); got != want {
		t.Errorf("insertSQL() = %q; want %q", got, want)
	}
}

func TestImportMeasurements(t *testing.T) {
	db, _ := setupTestDB(t)

	// Column order differs from the table and prcp is blank on one row
	input := "date,station,tobs,prcp\n" +
		"2010-01-01,USC00519397,65,0.08\n" +
		"2010-01-02,USC00519397,63,\n"

	n, err := importCSV(db, strings.NewReader(input), measurementTable)
	if err != nil {
		t.Fatalf("importCSV: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d rows; want 2", n)
	}

	var station, date string
	var prcp sql.NullFloat64
	var tobs float64
	err = db.QueryRow("SELECT station, date, prcp, tobs FROM measurement ORDER BY id DESC LIMIT 1").Scan(&station, &date, &prcp, &tobs)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if station != "USC00519397" || date != "2010-01-02" || tobs != 63 {
		t.Errorf("row = %s %s %v; want USC00519397 2010-01-02 63", station, date, tobs)
	}
	if prcp.Valid {
		t.Errorf("prcp = %v; want NULL", prcp.Float64)
	}
}

func TestImportStationsOptionalColumns(t *testing.T) {
	db, _ := setupTestDB(t)

	input := "station,name\nUSC00519397,\"WAIKIKI 717.2, HI US\"\n"
	n, err := importCSV(db, strings.NewReader(input), stationTable)
	if err != nil {
		t.Fatalf("importCSV: %v", err)
	}
	if n != 1 {
		t.Errorf("imported %d rows; want 1", n)
	}

	var name string
	var elevation sql.NullFloat64
	if err := db.QueryRow("SELECT name, elevation FROM station").Scan(&name, &elevation); err != nil {
		t.Fatalf("query: %v", err)
	}
	if name != "WAIKIKI 717.2, HI US" {
		t.Errorf("name = %q", name)
	}
	if elevation.Valid {
		t.Errorf("elevation = %v; want NULL", elevation.Float64)
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"missing required column", "station,prcp\nUSC00519397,0.1\n", `missing required column "date"`},
		{"malformed date", "station,date\nUSC00519397,01/01/2010\n", "not a YYYY-MM-DD date"},
		{"malformed number", "station,date,tobs\nUSC00519397,2010-01-01,warm\n", `column "tobs"`},
		{"empty station", "station,date\n,2010-01-01\n", `column "station" is empty`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := setupTestDB(t)

			_, err := importCSV(db, strings.NewReader(tt.input), measurementTable)
			if err == nil {
				t.Fatal("importCSV succeeded; want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q; want it to contain %q", err, tt.wantErr)
			}

			var count int
			if err := db.QueryRow("SELECT COUNT(*) FROM measurement").Scan(&count); err != nil {
				t.Fatalf("count: %v", err)
			}
			if count != 0 {
				t.Errorf("%d rows committed after a failed import; want 0", count)
			}
		})
	}
}

func TestRunImportsFiles(t *testing.T) {
	dir := t.TempDir()
	stations := filepath.Join(dir, "stations.csv")
	measurements := filepath.Join(dir, "measurements.csv")
	if err := os.WriteFile(stations, []byte("station,name,latitude,longitude,elevation\nUSC00519281,\"WAIHEE 837.5, HI US\",21.45167,-157.84889,32.9\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(measurements, []byte("station,date,prcp,tobs\nUSC00519281,2017-08-23,0.45,76\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	dbPath := filepath.Join(dir, "hawaii.sqlite")
	if err := run(dbPath, stations, measurements, false); err != nil {
		t.Fatalf("run: %v", err)
	}

	db, err := database.OpenSQLite(dbPath, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM measurement").Scan(&n); err != nil || n != 1 {
		t.Errorf("measurement rows = %d (err %v); want 1", n, err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM station").Scan(&n); err != nil || n != 1 {
		t.Errorf("station rows = %d (err %v); want 1", n, err)
	}
}

func TestRunResetReplacesDataset(t *testing.T) {
	dir := t.TempDir()
	measurements := filepath.Join(dir, "measurements.csv")
	if err := os.WriteFile(measurements, []byte("station,date,prcp,tobs\nUSC00519281,2017-08-23,0.45,76\nUSC00519281,2017-08-22,0.5,77\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "hawaii.sqlite")

	tests := []struct {
		name  string
		reset bool
		want  int
	}{
		{name: "first import", reset: false, want: 2},
		{name: "import again appends", reset: false, want: 4},
		{name: "reset then import", reset: true, want: 2},
	}

	for _, tt := range tests {
		if err := run(dbPath, "", measurements, tt.reset); err != nil {
			t.Fatalf("%s: run: %v", tt.name, err)
		}

		db, err := database.OpenSQLite(dbPath, true)
		if err != nil {
			t.Fatalf("%s: open: %v", tt.name, err)
		}
		var n int
		err = db.QueryRow("SELECT COUNT(*) FROM measurement").Scan(&n)
		db.Close()
		if err != nil {
			t.Fatalf("%s: count: %v", tt.name, err)
		}
		if n != tt.want {
			t.Errorf("%s: measurement rows = %d; want %d", tt.name, n, tt.want)
		}
	}
}

func TestRunResetOnly(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "hawaii.sqlite")
	if err := run(dbPath, "", "", true); err != nil {
		t.Fatalf("run: %v", err)
	}

	db, err := database.OpenSQLite(dbPath, true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var version int
	if err := db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version); err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != 2 {
		t.Errorf("schema version = %d; want 2", version)
	}
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM station").Scan(&n); err != nil || n != 0 {
		t.Errorf("station rows = %d (err %v); want an empty table", n, err)
	}
}
