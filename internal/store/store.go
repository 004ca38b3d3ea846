// Package store holds the observation dataset in memory. A Store is built
// once at startup and never modified, so it can be shared by any number of
// concurrent readers without locking.
package store

import (
	"context"
	"fmt"

	"github.com/chrissnell/climateapi/internal/log"
	"github.com/chrissnell/climateapi/internal/types"
)

// Loader reads the full dataset from a persistent source
type Loader interface {
	Load(ctx context.Context) ([]types.Observation, []types.Station, error)
}

// Store is an immutable, in-memory copy of the dataset
type Store struct {
	observations []types.Observation
	stations     []types.Station
}

// New builds a store from in-memory records. The slices are copied so later
// changes by the caller are not visible through the store.
func New(observations []types.Observation, stations []types.Station) *Store {
	s := &Store{
		observations: make([]types.Observation, len(observations)),
		stations:     make([]types.Station, len(stations)),
	}
	copy(s.observations, observations)
	copy(s.stations, stations)
	return s
}

// Load runs loader once and freezes the result
func Load(ctx context.Context, loader Loader) (*Store, error) {
	observations, stations, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("error loading dataset: %w", err)
	}

	log.Infow("dataset loaded", "observations", len(observations), "stations", len(stations))
	return New(observations, stations), nil
}

// Observations returns every observation in load order. The returned slice
// is shared and must not be modified.
func (s *Store) Observations() []types.Observation {
	return s.observations
}

// Stations returns every station in load order. The returned slice is
// shared and must not be modified.
func (s *Store) Stations() []types.Station {
	return s.stations
}

// Len returns the number of observations
func (s *Store) Len() int {
	return len(s.observations)
}
