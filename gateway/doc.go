// Package gateway exposes the engine's four interaction shapes over
// NATS, plus a browser-facing WebSocket bridge for support chat.
//
// Subject layout under the configured prefix (default "travel"):
//
//	travel.query              request/reply flight search
//	travel.monitor            request; updates stream to the reply subject
//	travel.cart.<call-id>     client-streamed cart items, done frame ends
//	travel.chat.<session>.in  inbound chat messages
//	travel.chat.<session>.out outbound chat replies
//
// Every reply envelope carries a status string: "ok" on success, or the
// error class ("unavailable", "aborted", "invalid") on failure. A
// monitoring stream ends with a terminal frame marked done; a cart
// stream answers its done frame with the checkout summary on the reply
// subject.
package gateway
