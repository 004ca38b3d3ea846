package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chrissnell/climateapi/internal/database"
	"github.com/chrissnell/climateapi/pkg/config"
	"github.com/chrissnell/climateapi/pkg/migrate"
	"go.uber.org/zap"
)

func createDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hawaii.sqlite")

	db, err := database.OpenSQLite(path, false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if _, err := migrate.NewMigrator(db, migrate.NewDatasetProvider()).Apply(); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	statements := []string{
		`INSERT INTO station (station, name) VALUES ('USC00519397', 'WAIKIKI 717.2, HI US')`,
		`INSERT INTO station (station, name) VALUES ('USC00519281', 'WAIHEE 837.5, HI US')`,
		`INSERT INTO measurement (station, date, prcp, tobs) VALUES ('USC00519281', '2016-08-23', 1.79, 77)`,
		`INSERT INTO measurement (station, date, prcp, tobs) VALUES ('USC00519281', '2017-08-23', 0.45, 76)`,
		`INSERT INTO measurement (station, date, prcp, tobs) VALUES ('USC00519397', '2017-08-23', 0.0, 81)`,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return path
}

func testConfig(path string) *config.ConfigData {
	cfg := &config.ConfigData{
		Dataset: config.DatasetData{Backend: config.BackendSQLite, SQLitePath: path},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestLoadEngineFromSQLite(t *testing.T) {
	a := New(testConfig(createDataset(t)), zap.NewNop().Sugar())

	engine, err := a.LoadEngine(context.Background())
	if err != nil {
		t.Fatalf("LoadEngine: %v", err)
	}

	if got := engine.Anchor().OneYearAgo; got != "2016-08-23" {
		t.Errorf("OneYearAgo = %q; want 2016-08-23", got)
	}
	if got := engine.ListStations(); len(got) != 2 || got[0] != "USC00519397" {
		t.Errorf("ListStations = %v", got)
	}
	if got := engine.TemperatureObservationsMostActiveStation(); len(got) != 2 {
		t.Errorf("got %d tobs rows; want 2", len(got))
	}
}

func TestLoadEngineMissingDataset(t *testing.T) {
	a := New(testConfig(filepath.Join(t.TempDir(), "missing.sqlite")), zap.NewNop().Sugar())

	if _, err := a.LoadEngine(context.Background()); err == nil {
		t.Error("LoadEngine succeeded without a dataset; want error")
	}
}

func TestLoadEngineUnknownBackend(t *testing.T) {
	a := New(&config.ConfigData{Dataset: config.DatasetData{Backend: "influxdb"}}, zap.NewNop().Sugar())

	if _, err := a.LoadEngine(context.Background()); err == nil {
		t.Error("LoadEngine succeeded with an unknown backend; want error")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := testConfig(createDataset(t))
	cfg.Server.ListenAddr = "127.0.0.1"
	cfg.Server.Port = freePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(cfg, zap.NewNop().Sugar()).Run(ctx)
	}()

	url := fmt.Sprintf("http://%s/api/v1.0/stations", cfg.Server.Addr())
	var body []byte
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			body, err = io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if want := `["USC00519397","USC00519281"]` + "\n"; string(body) != want {
		t.Errorf("body = %q; want %q", body, want)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunFailsWhenPortIsTaken(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()

	cfg := testConfig(createDataset(t))
	cfg.Server.ListenAddr = "127.0.0.1"
	cfg.Server.Port = l.Addr().(*net.TCPAddr).Port

	done := make(chan error, 1)
	go func() {
		done <- New(cfg, zap.NewNop().Sugar()).Run(context.Background())
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("Run returned nil with the port already bound; want error")
		}
		if !strings.Contains(err.Error(), "REST server failed") {
			t.Errorf("error = %q; want it to mention the REST server", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run kept waiting after the listener failed to bind")
	}
}
