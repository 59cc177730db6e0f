// Package catalog holds the shared flight dataset for the lifetime of
// the process. The store is populated exactly once from a Provider at
// startup and is read-only thereafter, so concurrent call handlers can
// read it without locking.
//
// Two providers are included: Generator produces a seedable synthetic
// dataset sized for demo and load work, and Fixture wraps a literal
// slice for deterministic tests. Both are injected; nothing in this
// package reaches for ambient global state.
package catalog
