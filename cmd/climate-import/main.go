// climate-import builds a dataset SQLite file for climateapi from station
// and measurement CSV exports.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/climateapi/internal/database"
	"github.com/chrissnell/climateapi/internal/log"
	"github.com/chrissnell/climateapi/pkg/migrate"
)

func main() {
	dbPath := flag.String("db", "Resources/hawaii.sqlite", "Path of the SQLite dataset to create or extend")
	stationsCSV := flag.String("stations", "", "CSV file with columns station,name,latitude,longitude,elevation")
	measurementsCSV := flag.String("measurements", "", "CSV file with columns station,date,prcp,tobs")
	reset := flag.Bool("reset", false, "Drop and recreate the dataset tables before importing")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *stationsCSV == "" && *measurementsCSV == "" && !*reset {
		log.Error("nothing to do: pass -stations and/or -measurements, or -reset")
		os.Exit(1)
	}

	if err := run(*dbPath, *stationsCSV, *measurementsCSV, *reset); err != nil {
		log.Errorf("import failed: %v", err)
		os.Exit(1)
	}
}

func run(dbPath, stationsCSV, measurementsCSV string, reset bool) error {
	db, err := database.OpenSQLite(dbPath, false)
	if err != nil {
		return err
	}
	defer db.Close()

	migrator := migrate.NewMigrator(db, migrate.NewDatasetProvider())
	if reset {
		n, err := migrator.Reset()
		if err != nil {
			return fmt.Errorf("schema reset failed: %w", err)
		}
		log.Infow("dropped dataset schema", "db", dbPath, "reverted", n)
	}

	applied, err := migrator.Apply()
	for _, m := range applied {
		log.Infow("applied schema migration", "db", dbPath, "version", m.Version, "name", m.Name)
	}
	if err != nil {
		return fmt.Errorf("schema migration failed: %w", err)
	}

	if stationsCSV != "" {
		n, err := importFile(db, stationsCSV, stationTable)
		if err != nil {
			return err
		}
		log.Infow("imported stations", "file", stationsCSV, "rows", n)
	}

	if measurementsCSV != "" {
		n, err := importFile(db, measurementsCSV, measurementTable)
		if err != nil {
			return err
		}
		log.Infow("imported measurements", "file", measurementsCSV, "rows", n)
	}

	return nil
}
