// Package travel defines the immutable data model shared by the
// travelstreams call engines and transports: catalog flight records,
// query criteria and results, flight status updates, cart items and
// checkout summaries, and chat messages.
//
// All string-driven branching from the wire (time windows, sort keys,
// item kinds, chat topics) is modeled as closed enumerations with
// explicit unknown-value fallbacks; callers never compare raw strings.
//
// Values of these types are created per call and discarded when the
// call completes. Only catalog flights have process lifetime, and those
// are never mutated after the store is built.
package travel
