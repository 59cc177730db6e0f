// Package engine implements the four call engines that operate over
// the shared flight catalog, one per interaction shape:
//
//   - Query: unary criteria-to-result search with simulated latency
//   - Monitor: server-streaming flight lifecycle timeline
//   - Checkout: client-streaming cart aggregation into one summary
//   - Chat: bidirectional topic-routed support session
//
// All four run concurrently over the same immutable catalog.Store, so
// no engine takes locks on catalog data. Per-call state is allocated by
// the call supervisor when a call starts and released on every exit
// path, including cancellation and handler failure.
//
// Cancellation semantics differ by shape and are deliberate: a unary
// query cancelled mid-delay returns the context error; a monitoring
// stream cancelled between updates ends as a normal partial delivery;
// an aborted checkout stream discards partial state and produces no
// summary; a chat session ends silently when its client goes away.
//
// Latency is never hard-coded. Both simulated query latency and
// timeline pacing are delay.Policy collaborators injected through
// options, so production wiring uses bounded random intervals while
// tests run with delay.None().
package engine
