package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/travel"
)

func testFlights() []travel.Flight {
	return []travel.Flight{
		{ID: "V0001", Origin: "Sao Paulo", Destination: "Recife", Price: 300, Status: travel.StatusActive, SeatsAvailable: 12},
		{ID: "V0002", Origin: "Recife", Destination: "Manaus", Price: 450, Status: travel.StatusCancelled, SeatsAvailable: 0},
	}
}

func TestNewStore(t *testing.T) {
	store, err := NewStore(Fixture(testFlights()))
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
	assert.Len(t, store.All(), 2)
}

func TestNewStoreNilProvider(t *testing.T) {
	store, err := NewStore(nil)
	require.Error(t, err)
	assert.Nil(t, store)
	assert.True(t, errors.IsUnavailable(err))
}

func TestNewStoreProviderError(t *testing.T) {
	store, err := NewStore(failingProvider{})
	require.Error(t, err)
	assert.Nil(t, store)
	assert.True(t, errors.IsUnavailable(err))
}

type failingProvider struct{}

func (failingProvider) Provide() ([]travel.Flight, error) {
	return nil, fmt.Errorf("dataset source offline")
}

func TestStoreCopiesProviderData(t *testing.T) {
	flights := testFlights()
	store, err := NewStore(Fixture(flights))
	require.NoError(t, err)

	// Mutating the provider's slice must not affect the store
	flights[0].Price = 1

	got, ok := store.ByID("V0001")
	require.True(t, ok)
	assert.Equal(t, 300.0, got.Price)
}

func TestStoreByID(t *testing.T) {
	store, err := NewStore(Fixture(testFlights()))
	require.NoError(t, err)

	flight, ok := store.ByID("V0002")
	require.True(t, ok)
	assert.Equal(t, "Manaus", flight.Destination)

	_, ok = store.ByID("V9999")
	assert.False(t, ok)
}
