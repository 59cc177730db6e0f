package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/travel"
)

// Query runs the unary search: validate criteria, wait out the
// simulated backend latency, then filter and sort the catalog. The
// call is stateless and idempotent; retry policy belongs to callers.
func (e *Engine) Query(ctx context.Context, criteria travel.QueryCriteria) (travel.QueryResult, error) {
	callID, release := e.beginCall(ShapeUnary)
	var callErr error
	defer func() { release(callErr) }()

	start := e.now()

	// Reject malformed criteria before any catalog access.
	if err := validateCriteria(criteria); err != nil {
		callErr = err
		return travel.QueryResult{}, err
	}

	// Enum fields arrive as free-form wire strings; fold them onto the
	// closed sets so cased variants match like the text predicates do.
	criteria.Window = travel.ParseTimeWindow(string(criteria.Window))
	criteria.SortBy = travel.ParseSortKey(string(criteria.SortBy))

	if e.store == nil {
		callErr = errors.WrapUnavailable(
			errors.ErrCatalogUnavailable, "engine", "Query", "catalog access")
		return travel.QueryResult{}, callErr
	}

	if err := e.queryDelay.Wait(ctx); err != nil {
		callErr = errors.WrapAborted(err, "engine", "Query", "simulated latency")
		return travel.QueryResult{}, callErr
	}

	matched := filterFlights(e.store.All(), criteria)
	sortFlights(matched, criteria.SortBy)

	result := travel.QueryResult{
		Flights:        matched,
		TotalMatched:   len(matched),
		ProcessingTime: e.now().Sub(start),
	}

	e.logger.Debug("query completed",
		"call_id", callID,
		"matched", result.TotalMatched,
		"duration", result.ProcessingTime)
	e.metrics.recordQuery(result.TotalMatched, result.ProcessingTime)

	return result, nil
}

// validateCriteria checks the only field with a structural format; the
// remaining criteria fields have no invalid values, zero means unset.
func validateCriteria(criteria travel.QueryCriteria) error {
	if criteria.Date != "" {
		if _, err := time.Parse("2006-01-02", criteria.Date); err != nil {
			return errors.WrapInvalid(
				fmt.Errorf("%w: date %q is not YYYY-MM-DD", errors.ErrInvalidCriteria, criteria.Date),
				"engine", "Query", "validate criteria")
		}
	}
	return nil
}

// filterFlights applies every supplied predicate as a conjunction.
// Empty fields impose no constraint. Eligibility (active status with
// seats available) is always applied last and cannot be disabled.
func filterFlights(flights []travel.Flight, criteria travel.QueryCriteria) []travel.Flight {
	matched := make([]travel.Flight, 0, len(flights))

	for _, f := range flights {
		if criteria.Origin != "" && !strings.EqualFold(f.Origin, criteria.Origin) {
			continue
		}
		if criteria.Destination != "" && !strings.EqualFold(f.Destination, criteria.Destination) {
			continue
		}
		if criteria.Date != "" && f.Date != criteria.Date {
			continue
		}
		if criteria.MaxPrice > 0 && f.Price > criteria.MaxPrice {
			continue
		}
		if criteria.Carrier != "" && !strings.EqualFold(f.Carrier, criteria.Carrier) {
			continue
		}
		if !criteria.Window.Contains(f.Departure) {
			continue
		}
		if !f.Eligible() {
			continue
		}
		matched = append(matched, f)
	}

	return matched
}

// sortFlights orders the subset in place. Ties break by identifier so
// repeated queries over an unchanged catalog are deterministic.
func sortFlights(flights []travel.Flight, key travel.SortKey) {
	sort.SliceStable(flights, func(i, j int) bool {
		a, b := flights[i], flights[j]
		switch key {
		case travel.SortByDeparture:
			if a.Departure != b.Departure {
				return a.Departure < b.Departure
			}
		case travel.SortByDuration:
			if a.DurationMinutes != b.DurationMinutes {
				return a.DurationMinutes < b.DurationMinutes
			}
		default:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		}
		return a.ID < b.ID
	})
}
