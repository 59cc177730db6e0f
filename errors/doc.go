// Package errors provides standardized error handling for travelstreams
// call engines and transports.
//
// # Error Classification
//
// The package implements a three-class error taxonomy matching the call
// semantics of the interaction engine:
//
//   - Unavailable: the catalog or a required collaborator is not
//     initialized. Fatal to the call; the engine never retries, callers
//     may retry externally.
//   - Aborted: a streaming call was terminated by the client or the
//     transport before reaching a meaningful terminal state. Partial
//     call state is discarded and no result is produced.
//   - Invalid: criteria or items were malformed at the engine boundary.
//     Rejected before any catalog access; do not retry.
//
// Classification integrates with Go's standard error handling patterns,
// supporting errors.Is(), errors.As(), and error wrapping chains.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapUnavailable(err, "QueryEngine", "Query", "load catalog")
//	errors.WrapAborted(err, "CartCollector", "Collect", "receive item")
//	errors.WrapInvalid(err, "QueryEngine", "Query", "validate criteria")
//
// The generic Wrap() adds context without assigning a class; the
// original error's classification is preserved through the chain.
//
// # Checking Classification
//
//	if err := engine.Query(ctx, criteria); err != nil {
//	    switch {
//	    case errors.IsInvalid(err):
//	        // reject at the boundary, surface to the caller unchanged
//	    case errors.IsAborted(err):
//	        // client went away: release state, no result
//	    case errors.IsUnavailable(err):
//	        // service-level failure, surface as a service error
//	    }
//	}
package errors
