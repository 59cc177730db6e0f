// Package metric provides the Prometheus metrics registry shared by
// every service in the process, plus the HTTP server that exposes it.
//
// Core platform metrics (call lifecycle, stream traffic, NATS health)
// live on Metrics and are registered once at startup. Services register
// their own collectors through the MetricsRegistrar interface using a
// "service.metric" key so duplicate registrations fail early with a
// classified error.
package metric
