package catalog

import (
	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/travel"
)

// Provider supplies the flight dataset the store is built from.
// Implementations must return a fully formed dataset in one call; the
// store never asks twice.
type Provider interface {
	Provide() ([]travel.Flight, error)
}

// Store is the process-lifetime flight catalog. It is immutable after
// NewStore returns and therefore safe for unsynchronized concurrent
// reads.
type Store struct {
	flights []travel.Flight
	byID    map[string]int
}

// NewStore builds a store from the provider's dataset. The dataset is
// copied, so later mutation of the provider's slice cannot leak into
// the store.
func NewStore(provider Provider) (*Store, error) {
	if provider == nil {
		return nil, errors.WrapUnavailable(
			errors.ErrCatalogUnavailable, "Store", "NewStore", "nil provider")
	}

	flights, err := provider.Provide()
	if err != nil {
		return nil, errors.WrapUnavailable(err, "Store", "NewStore", "provide dataset")
	}

	owned := make([]travel.Flight, len(flights))
	copy(owned, flights)

	byID := make(map[string]int, len(owned))
	for i, f := range owned {
		byID[f.ID] = i
	}

	return &Store{flights: owned, byID: byID}, nil
}

// Len returns the number of flights in the catalog
func (s *Store) Len() int {
	return len(s.flights)
}

// All returns the full dataset in catalog order. Callers must treat the
// returned slice as read-only; filtering copies, it never mutates.
func (s *Store) All() []travel.Flight {
	return s.flights
}

// ByID looks up a flight by record identifier
func (s *Store) ByID(id string) (travel.Flight, bool) {
	i, ok := s.byID[id]
	if !ok {
		return travel.Flight{}, false
	}
	return s.flights[i], true
}

// Fixture is a Provider wrapping a literal dataset, for tests and
// deterministic deployments.
type Fixture []travel.Flight

// Provide returns the fixture dataset
func (f Fixture) Provide() ([]travel.Flight, error) {
	return f, nil
}
