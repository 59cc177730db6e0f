package engine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/travelstreams/catalog"
	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/pkg/delay"
	"github.com/c360/travelstreams/travel"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFlights() []travel.Flight {
	return []travel.Flight{
		{
			ID: "V0001", Origin: "Sao Paulo", Destination: "Rio de Janeiro",
			Date: "2026-09-10", Departure: "07:30", Arrival: "08:30",
			Price: 350.00, Carrier: "LATAM", Number: "LA1001",
			SeatsAvailable: 12, Status: travel.StatusActive,
			Cabin: travel.CabinEconomy, DurationMinutes: 60,
		},
		{
			ID: "V0002", Origin: "Sao Paulo", Destination: "Rio de Janeiro",
			Date: "2026-09-10", Departure: "14:00", Arrival: "15:05",
			Price: 250.00, Carrier: "GOL", Number: "G32002",
			SeatsAvailable: 4, Status: travel.StatusActive,
			Cabin: travel.CabinEconomy, DurationMinutes: 65,
		},
		{
			ID: "V0003", Origin: "Sao Paulo", Destination: "Salvador",
			Date: "2026-09-10", Departure: "19:45", Arrival: "22:00",
			Price: 250.00, Carrier: "Azul", Number: "AD3003",
			SeatsAvailable: 30, Status: travel.StatusActive,
			Cabin: travel.CabinBusiness, DurationMinutes: 135,
		},
		{
			// Cancelled, never eligible.
			ID: "V0004", Origin: "Sao Paulo", Destination: "Rio de Janeiro",
			Date: "2026-09-10", Departure: "09:00", Arrival: "10:00",
			Price: 120.00, Carrier: "LATAM", Number: "LA1004",
			SeatsAvailable: 50, Status: travel.StatusCancelled,
			Cabin: travel.CabinEconomy, DurationMinutes: 60,
		},
		{
			// Sold out, never eligible.
			ID: "V0005", Origin: "Sao Paulo", Destination: "Rio de Janeiro",
			Date: "2026-09-10", Departure: "10:30", Arrival: "11:30",
			Price: 130.00, Carrier: "GOL", Number: "G32005",
			SeatsAvailable: 0, Status: travel.StatusActive,
			Cabin: travel.CabinEconomy, DurationMinutes: 60,
		},
		{
			ID: "V0006", Origin: "Brasilia", Destination: "Recife",
			Date: "2026-09-11", Departure: "23:50", Arrival: "02:30",
			Price: 780.00, Carrier: "Avianca", Number: "AV4006",
			SeatsAvailable: 8, Status: travel.StatusActive,
			Cabin: travel.CabinFirst, DurationMinutes: 160,
		},
	}
}

func newTestEngine(t *testing.T, flights []travel.Flight) *Engine {
	t.Helper()
	store, err := catalog.NewStore(catalog.Fixture(flights))
	require.NoError(t, err)

	return NewEngine(store, testLogger(), nil,
		WithQueryDelay(delay.None()),
		WithMonitorDelay(delay.None()),
		WithCheckoutDelay(delay.None()),
		WithChatDelay(delay.None()),
		WithClock(func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }),
	)
}

func flightIDs(flights []travel.Flight) []string {
	ids := make([]string, len(flights))
	for i, f := range flights {
		ids[i] = f.ID
	}
	return ids
}

func TestQueryFilters(t *testing.T) {
	e := newTestEngine(t, testFlights())

	tests := []struct {
		name     string
		criteria travel.QueryCriteria
		wantIDs  []string
	}{
		{
			name:     "no criteria returns all eligible sorted by price",
			criteria: travel.QueryCriteria{},
			wantIDs:  []string{"V0002", "V0003", "V0001", "V0006"},
		},
		{
			name:     "origin and destination are case-insensitive",
			criteria: travel.QueryCriteria{Origin: "SAO PAULO", Destination: "rio de janeiro"},
			wantIDs:  []string{"V0002", "V0001"},
		},
		{
			name:     "max price is inclusive",
			criteria: travel.QueryCriteria{MaxPrice: 250.00},
			wantIDs:  []string{"V0002", "V0003"},
		},
		{
			name:     "zero max price means no constraint",
			criteria: travel.QueryCriteria{MaxPrice: 0},
			wantIDs:  []string{"V0002", "V0003", "V0001", "V0006"},
		},
		{
			name:     "carrier filter",
			criteria: travel.QueryCriteria{Carrier: "latam"},
			wantIDs:  []string{"V0001"},
		},
		{
			name:     "morning window excludes afternoon and evening departures",
			criteria: travel.QueryCriteria{Window: travel.WindowMorning},
			wantIDs:  []string{"V0001"},
		},
		{
			name:     "evening window includes departures up to 23:59",
			criteria: travel.QueryCriteria{Window: travel.WindowEvening},
			wantIDs:  []string{"V0003", "V0006"},
		},
		{
			name:     "cased window value matches like the text predicates",
			criteria: travel.QueryCriteria{Window: travel.TimeWindow("Morning")},
			wantIDs:  []string{"V0001"},
		},
		{
			name:     "unknown window value imposes no constraint",
			criteria: travel.QueryCriteria{Window: travel.TimeWindow("brunch")},
			wantIDs:  []string{"V0002", "V0003", "V0001", "V0006"},
		},
		{
			name:     "date is exact match",
			criteria: travel.QueryCriteria{Date: "2026-09-11"},
			wantIDs:  []string{"V0006"},
		},
		{
			name: "conjunction of all criteria",
			criteria: travel.QueryCriteria{
				Origin:      "Sao Paulo",
				Destination: "Rio de Janeiro",
				Date:        "2026-09-10",
				MaxPrice:    300,
				Carrier:     "GOL",
				Window:      travel.WindowAfternoon,
			},
			wantIDs: []string{"V0002"},
		},
		{
			name:     "no matches yields empty result",
			criteria: travel.QueryCriteria{Origin: "Manaus"},
			wantIDs:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.Query(context.Background(), tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, flightIDs(result.Flights))
			assert.Equal(t, len(result.Flights), result.TotalMatched)
		})
	}
}

func TestQuerySortKeys(t *testing.T) {
	e := newTestEngine(t, testFlights())

	tests := []struct {
		name    string
		key     travel.SortKey
		wantIDs []string
	}{
		{
			// V0002 and V0003 share a price; the identifier breaks the tie.
			name:    "price ascending with identifier tie-break",
			key:     travel.SortByPrice,
			wantIDs: []string{"V0002", "V0003", "V0001", "V0006"},
		},
		{
			name:    "departure ascending",
			key:     travel.SortByDeparture,
			wantIDs: []string{"V0001", "V0002", "V0003", "V0006"},
		},
		{
			name:    "duration ascending",
			key:     travel.SortByDuration,
			wantIDs: []string{"V0001", "V0002", "V0003", "V0006"},
		},
		{
			name:    "cased key selects its ordering",
			key:     travel.SortKey("DEPARTURE"),
			wantIDs: []string{"V0001", "V0002", "V0003", "V0006"},
		},
		{
			name:    "unknown key falls back to price",
			key:     travel.SortKey("altitude"),
			wantIDs: []string{"V0002", "V0003", "V0001", "V0006"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := e.Query(context.Background(), travel.QueryCriteria{SortBy: tt.key})
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, flightIDs(result.Flights))
		})
	}
}

func TestQueryIneligibleRecordsNeverReturned(t *testing.T) {
	e := newTestEngine(t, testFlights())

	// V0004 (cancelled) and V0005 (sold out) are the two cheapest
	// records; a price-capped query must still skip them.
	result, err := e.Query(context.Background(), travel.QueryCriteria{MaxPrice: 140})
	require.NoError(t, err)
	assert.Empty(t, result.Flights)
	assert.Zero(t, result.TotalMatched)
}

func TestQueryInvalidDate(t *testing.T) {
	e := newTestEngine(t, testFlights())

	_, err := e.Query(context.Background(), travel.QueryCriteria{Date: "10/09/2026"})
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.ErrorIs(t, err, errors.ErrInvalidCriteria)
}

func TestQueryCancelledDuringDelay(t *testing.T) {
	store, err := catalog.NewStore(catalog.Fixture(testFlights()))
	require.NoError(t, err)

	e := NewEngine(store, testLogger(), nil,
		WithQueryDelay(delay.Fixed(time.Minute)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Query(ctx, travel.QueryCriteria{})
	require.Error(t, err)
	assert.True(t, errors.IsAborted(err))
}

func TestQueryReleasesCallState(t *testing.T) {
	e := newTestEngine(t, testFlights())

	_, err := e.Query(context.Background(), travel.QueryCriteria{})
	require.NoError(t, err)
	assert.Zero(t, e.ActiveCalls())

	_, err = e.Query(context.Background(), travel.QueryCriteria{Date: "bogus"})
	require.Error(t, err)
	assert.Zero(t, e.ActiveCalls(), "failed calls must release state too")
}

func TestFlightLookup(t *testing.T) {
	e := newTestEngine(t, testFlights())

	flight, err := e.Flight("V0003")
	require.NoError(t, err)
	assert.Equal(t, "AD3003", flight.Number)

	_, err = e.Flight("V9999")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFlightNotFound)
	assert.True(t, errors.IsInvalid(err))
}
