package main

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/climateapi/internal/constants"
)

type columnKind int

const (
	textColumn columnKind = iota
	dateColumn
	floatColumn
)

type column struct {
	name     string
	kind     columnKind
	required bool
}

// table describes a CSV layout and the dataset table it is loaded into
type table struct {
	name    string
	columns []column
}

var stationTable = table{
	name: "station",
	columns: []column{
		{name: "station", kind: textColumn, required: true},
		{name: "name", kind: textColumn},
		{name: "latitude", kind: floatColumn},
		{name: "longitude", kind: floatColumn},
		{name: "elevation", kind: floatColumn},
	},
}

var measurementTable = table{
	name: "measurement",
	columns: []column{
		{name: "station", kind: textColumn, required: true},
		{name: "date", kind: dateColumn, required: true},
		{name: "prcp", kind: floatColumn},
		{name: "tobs", kind: floatColumn},
	},
}

func (t table) insertSQL() string {
	names := make([]string, len(t.columns))
	marks := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.name
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(names, ", "), strings.Join(marks, ", "))
}

func importFile(db *sql.DB, path string, t table) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return importCSV(db, f, t)
}

// importCSV inserts every record of r into t inside a single transaction.
// Columns are matched by header name so their order in the file does not
// matter. Empty numeric cells are stored as NULL.
func importCSV(db *sql.DB, r io.Reader, t table) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("error reading %s header: %w", t.name, err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	positions := make([]int, len(t.columns))
	for i, c := range t.columns {
		pos, ok := index[c.name]
		if !ok && c.required {
			return 0, fmt.Errorf("%s CSV is missing required column %q", t.name, c.name)
		}
		if !ok {
			pos = -1
		}
		positions[i] = pos
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(t.insertSQL())
	if err != nil {
		return 0, fmt.Errorf("failed to prepare %s insert: %w", t.name, err)
	}
	defer stmt.Close()

	count := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("error reading %s CSV: %w", t.name, err)
		}
		line, _ := reader.FieldPos(0)

		args := make([]any, len(t.columns))
		for i, c := range t.columns {
			var cell string
			if positions[i] >= 0 {
				cell = strings.TrimSpace(record[positions[i]])
			}
			v, err := c.parse(cell)
			if err != nil {
				return 0, fmt.Errorf("%s CSV line %d: %w", t.name, line, err)
			}
			args[i] = v
		}

		if _, err := stmt.Exec(args...); err != nil {
			return 0, fmt.Errorf("failed to insert %s line %d: %w", t.name, line, err)
		}
		count++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit %s import: %w", t.name, err)
	}

	return count, nil
}

func (c column) parse(cell string) (any, error) {
	if cell == "" {
		if c.required {
			return nil, fmt.Errorf("column %q is empty", c.name)
		}
		return nil, nil
	}

	switch c.kind {
	case dateColumn:
		if _, err := time.Parse(constants.DateLayout, cell); err != nil {
			return nil, fmt.Errorf("column %q: %q is not a YYYY-MM-DD date", c.name, cell)
		}
		return cell, nil
	case floatColumn:
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.name, err)
		}
		return v, nil
	default:
		return cell, nil
	}
}
