// Package health provides three-state health tracking for the services
// in a travelstreams process.
//
// Each service reports a Status of healthy, degraded, or unhealthy into
// a shared Monitor; the gateway exposes the aggregate over its health
// endpoint. Aggregation is pessimistic: any unhealthy sub-status makes
// the system unhealthy, any degraded sub-status (with none unhealthy)
// makes it degraded.
//
// Error text that ends up in a Status message is sanitized first so
// connection URLs and credentials never leak through a health endpoint.
package health
