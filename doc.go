// Package travelstreams is a travel-catalog query and interaction
// service built around four call shapes over a shared immutable flight
// catalog:
//
//   - Query: unary filtered search with stable ordering
//   - Monitor: server-streamed flight lifecycle timeline
//   - Checkout: client-streamed cart accumulation into one summary
//   - Chat: bidirectional topic-routed support conversation
//
// # Architecture
//
// The call semantics live in the engine package, expressed against the
// stream package's transport-agnostic pipe contracts. The gateway
// package adapts the shapes onto NATS subjects and runs a WebSocket
// bridge for browser chat. The catalog package provides the seedable
// synthetic dataset; config, metric, health, natsclient, and service
// supply the operational plumbing.
//
//	travel (domain types)
//	   |
//	catalog -- engine -- stream
//	              |
//	           gateway -- natsclient
//	              |
//	        cmd/travelstreams
//
// Backpressure is structural: every stream pipe holds at most one
// in-flight element, so producers advance only as consumers take
// delivery. Cancellation is a normal outcome for streaming shapes, not
// an error.
package travelstreams
