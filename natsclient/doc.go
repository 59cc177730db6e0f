// Package natsclient manages the NATS connection for the gateway with
// a circuit breaker around connection attempts.
//
// The client wraps a single core NATS connection: Subscribe and
// Publish are the only messaging operations the gateway needs, and
// both refuse to run while disconnected rather than queueing. Repeated
// connection failures open the circuit with exponential backoff so a
// dead broker is not hammered; reconnects are otherwise delegated to
// the nats.go client's own retry loop.
//
// Connection health feeds the shared metrics registry when one is
// provided (connected gauge, RTT, reconnect counter) and is observable
// through callbacks for the health monitor.
package natsclient
