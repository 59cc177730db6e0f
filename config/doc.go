// Package config loads and validates the process configuration.
//
// Configuration is a single JSON file with sections for platform
// identity, NATS connectivity, catalog generation, engine pacing, the
// gateway, and the metrics server. Every field has a working default;
// an empty file yields a runnable local configuration. A small set of
// environment variables override the file for containerized
// deployments (TRAVELSTREAMS_NATS_URL, TRAVELSTREAMS_NATS_TOKEN,
// TRAVELSTREAMS_ENV).
//
// File reads are bounded and path-checked, and JSON nesting depth is
// capped before parsing.
package config
