// Package stream defines the streaming contracts between the call
// engines and their transport collaborators, plus in-process pipe
// implementations used by the gateway and tests.
//
// # Contracts
//
// Each streaming call shape has a narrow interface on the engine side:
//
//   - StatusSender: server-streaming output (flight monitoring)
//   - ItemReceiver: client-streaming input (cart checkout)
//   - ChatSession: bidirectional inbound/outbound (support chat)
//
// # Backpressure
//
// Pipes are unbuffered: a producer's Send blocks until the consumer is
// ready, so an engine never holds more than the update it is currently
// trying to emit. This is the natural backpressure contract the engines
// are written against; transports that buffer do so on their own side.
//
// # Termination
//
// Normal end-of-stream is io.EOF, matching the Recv convention of RPC
// streaming codegen. Abnormal termination (client or transport went
// away) surfaces as errors.ErrStreamAborted. Both directions also honor
// context cancellation at every suspension point.
package stream
