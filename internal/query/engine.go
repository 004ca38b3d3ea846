// Package query answers the climate API's questions about the observation
// dataset. Every operation is a pure function of the immutable store and
// its arguments, so an Engine is safe for concurrent use.
package query

import (
	"sort"

	"github.com/chrissnell/climateapi/internal/constants"
	"github.com/chrissnell/climateapi/internal/log"
	"github.com/chrissnell/climateapi/internal/store"
	"github.com/chrissnell/climateapi/internal/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AutoMostActiveStation selects the station with the most observations
// instead of a fixed station id.
const AutoMostActiveStation = "auto"

// Options configures an Engine
type Options struct {
	// MostActiveStation is the station id served by
	// TemperatureObservationsMostActiveStation. Empty means
	// constants.DefaultMostActiveStation.
	MostActiveStation string
}

// Engine runs queries against a Store
type Engine struct {
	store      *store.Store
	anchor     Anchor
	mostActive string
}

// NewEngine computes the anchor dates and resolves the most active station
func NewEngine(s *store.Store, opts Options) (*Engine, error) {
	anchor, err := ComputeAnchor(s.Observations())
	if err != nil {
		return nil, err
	}

	e := &Engine{
		store:  s,
		anchor: anchor,
	}

	ranking := e.StationActivity()

	switch opts.MostActiveStation {
	case AutoMostActiveStation:
		if len(ranking) > 0 {
			e.mostActive = ranking[0].StationID
		}
	case "":
		e.mostActive = constants.DefaultMostActiveStation
	default:
		e.mostActive = opts.MostActiveStation
	}

	if len(ranking) > 0 && ranking[0].StationID != e.mostActive {
		log.Warnw("configured most active station is not the busiest station in the dataset",
			"configured", e.mostActive,
			"busiest", ranking[0].StationID,
			"observations", ranking[0].Count)
	}

	log.Infow("query engine ready",
		"most_recent_date", anchor.MostRecentDate,
		"one_year_ago", anchor.OneYearAgo,
		"most_active_station", e.mostActive)

	return e, nil
}

// Anchor returns the anchor dates computed at construction
func (e *Engine) Anchor() Anchor {
	return e.anchor
}

// MostActiveStation returns the station id used for temperature observations
func (e *Engine) MostActiveStation() string {
	return e.mostActive
}

// PrecipitationLastYear maps each date on or after the one-year anchor to a
// precipitation reading. Observations are visited in ascending date order
// and, when several stations report the same date, the last one visited
// wins.
func (e *Engine) PrecipitationLastYear() map[string]*float64 {
	rows := e.sortedByDate(func(o *types.Observation) bool {
		return o.Date >= e.anchor.OneYearAgo
	})

	precipitation := make(map[string]*float64, len(rows))
	for _, o := range rows {
		precipitation[o.Date] = o.Precipitation
	}
	return precipitation
}

// ListStations returns every station id in load order
func (e *Engine) ListStations() []string {
	stations := e.store.Stations()
	ids := make([]string, 0, len(stations))
	for _, s := range stations {
		ids = append(ids, s.StationID)
	}
	return ids
}

// TemperatureObservationsMostActiveStation returns the most active station's
// temperature readings since the one-year anchor, oldest first.
func (e *Engine) TemperatureObservationsMostActiveStation() []types.TemperatureObservation {
	rows := e.sortedByDate(func(o *types.Observation) bool {
		return o.StationID == e.mostActive && o.Date >= e.anchor.OneYearAgo
	})

	tobs := make([]types.TemperatureObservation, 0, len(rows))
	for _, o := range rows {
		tobs = append(tobs, types.TemperatureObservation{Date: o.Date, Temperature: o.Temperature})
	}
	return tobs
}

// TemperatureStats aggregates temperatures observed on or after start
func (e *Engine) TemperatureStats(start string) (agg types.TemperatureAggregate, err error) {
	defer recoverQueryError("TemperatureStats", &err)

	return e.aggregate(func(o *types.Observation) bool {
		return o.Date >= start
	}), nil
}

// TemperatureStatsRange aggregates temperatures observed between start and
// end inclusive. An inverted range matches nothing.
func (e *Engine) TemperatureStatsRange(start, end string) (agg types.TemperatureAggregate, err error) {
	defer recoverQueryError("TemperatureStatsRange", &err)

	return e.aggregate(func(o *types.Observation) bool {
		return o.Date >= start && o.Date <= end
	}), nil
}

// StationActivity ranks stations by observation count, busiest first. Ties
// are ordered by station id.
func (e *Engine) StationActivity() []types.StationActivity {
	counts := make(map[string]int)
	for _, o := range e.store.Observations() {
		counts[o.StationID]++
	}

	ranking := make([]types.StationActivity, 0, len(counts))
	for id, n := range counts {
		ranking = append(ranking, types.StationActivity{StationID: id, Count: n})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].StationID < ranking[j].StationID
	})

	return ranking
}

// sortedByDate returns the matching observations ordered by date. The sort
// is stable so observations sharing a date keep their load order.
func (e *Engine) sortedByDate(match func(*types.Observation) bool) []types.Observation {
	observations := e.store.Observations()

	var rows []types.Observation
	for i := range observations {
		if match(&observations[i]) {
			rows = append(rows, observations[i])
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Date < rows[j].Date
	})
	return rows
}

// aggregate computes min, mean and max over the non-null temperatures of
// the matching observations.
func (e *Engine) aggregate(match func(*types.Observation) bool) types.TemperatureAggregate {
	observations := e.store.Observations()

	var temps []float64
	for i := range observations {
		o := &observations[i]
		if o.Temperature != nil && match(o) {
			temps = append(temps, *o.Temperature)
		}
	}

	if len(temps) == 0 {
		return types.TemperatureAggregate{}
	}

	minTemp := floats.Min(temps)
	avgTemp := stat.Mean(temps, nil)
	maxTemp := floats.Max(temps)

	return types.TemperatureAggregate{
		Min: &minTemp,
		Avg: &avgTemp,
		Max: &maxTemp,
	}
}
