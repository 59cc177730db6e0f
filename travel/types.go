package travel

import (
	"strings"
	"time"
)

// FlightStatus is the catalog status of a flight record
type FlightStatus string

// Possible flight statuses
const (
	StatusActive    FlightStatus = "active"
	StatusCancelled FlightStatus = "cancelled"
	StatusFull      FlightStatus = "full"
)

// CabinClass is the fare class of a flight record
type CabinClass string

// Possible cabin classes
const (
	CabinEconomy  CabinClass = "economy"
	CabinBusiness CabinClass = "business"
	CabinFirst    CabinClass = "first"
)

// Flight is a single catalog record. Flights are immutable after
// creation; seat counts are descriptive, never decremented.
type Flight struct {
	ID              string       `json:"id"`
	Origin          string       `json:"origin"`
	Destination     string       `json:"destination"`
	Date            string       `json:"date"`      // "2006-01-02"
	Departure       string       `json:"departure"` // "HH:MM"
	Arrival         string       `json:"arrival"`   // "HH:MM"
	Price           float64      `json:"price"`
	Carrier         string       `json:"carrier"`
	Number          string       `json:"number"`
	SeatsAvailable  int          `json:"seats_available"`
	Status          FlightStatus `json:"status"`
	Cabin           CabinClass   `json:"cabin"`
	Aircraft        string       `json:"aircraft"`
	DurationMinutes int          `json:"duration_minutes"`
}

// Eligible reports whether the flight qualifies for query results:
// active status with at least one seat available.
func (f Flight) Eligible() bool {
	return f.Status == StatusActive && f.SeatsAvailable > 0
}

// TimeWindow buckets flights by departure time
type TimeWindow string

// Possible time windows
const (
	WindowAny       TimeWindow = ""
	WindowMorning   TimeWindow = "morning"
	WindowAfternoon TimeWindow = "afternoon"
	WindowEvening   TimeWindow = "evening"
)

// ParseTimeWindow maps a wire value to a TimeWindow; unknown values
// fall back to WindowAny (no constraint).
func ParseTimeWindow(s string) TimeWindow {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "morning":
		return WindowMorning
	case "afternoon":
		return WindowAfternoon
	case "evening":
		return WindowEvening
	default:
		return WindowAny
	}
}

// Contains reports whether a departure time ("HH:MM") falls inside the
// window. Morning and afternoon are half-open; evening is closed at
// 23:59. Lexicographic comparison is correct for zero-padded "HH:MM".
func (w TimeWindow) Contains(departure string) bool {
	switch w {
	case WindowMorning:
		return departure >= "06:00" && departure < "12:00"
	case WindowAfternoon:
		return departure >= "12:00" && departure < "18:00"
	case WindowEvening:
		return departure >= "18:00" && departure <= "23:59"
	default:
		return true
	}
}

// SortKey selects the ordering of query results
type SortKey string

// Possible sort keys
const (
	SortByPrice     SortKey = "price"
	SortByDeparture SortKey = "departure"
	SortByDuration  SortKey = "duration"
)

// ParseSortKey maps a wire value to a SortKey; unknown or empty values
// fall back to SortByPrice.
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "departure":
		return SortByDeparture
	case "duration":
		return SortByDuration
	default:
		return SortByPrice
	}
}

// QueryCriteria carries the optional predicates of a unary query.
// Zero values mean "no constraint": empty strings for the text fields
// and zero (or negative) for MaxPrice.
type QueryCriteria struct {
	Origin      string     `json:"origin,omitempty"`
	Destination string     `json:"destination,omitempty"`
	Date        string     `json:"date,omitempty"`
	MaxPrice    float64    `json:"max_price,omitempty"`
	Carrier     string     `json:"carrier,omitempty"`
	Window      TimeWindow `json:"window,omitempty"`
	SortBy      SortKey    `json:"sort_by,omitempty"`
}

// QueryResult is the ordered answer to a unary query.
// TotalMatched always equals len(Flights).
type QueryResult struct {
	Flights        []Flight      `json:"flights"`
	TotalMatched   int           `json:"total_matched"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// FlightPhase is one step of the fixed flight lifecycle timeline
type FlightPhase string

// Timeline phases in lifecycle order
const (
	PhaseAwaitingDeparture FlightPhase = "awaiting_departure"
	PhaseBoarding          FlightPhase = "boarding"
	PhaseReadyForDeparture FlightPhase = "ready_for_departure"
	PhaseDeparted          FlightPhase = "departed"
	PhaseEnRoute           FlightPhase = "en_route"
	PhaseArrived           FlightPhase = "arrived"
	PhaseCompleted         FlightPhase = "completed"
)

// StatusUpdate is one emission of a flight monitoring stream. Progress
// is non-decreasing across a stream; the terminal update carries
// Progress == 100 and Phase == PhaseCompleted.
type StatusUpdate struct {
	FlightNumber string      `json:"flight_number"`
	Phase        FlightPhase `json:"phase"`
	Message      string      `json:"message"`
	Timestamp    time.Time   `json:"timestamp"`
	Progress     int         `json:"progress"`
}

// ItemKind classifies a cart item
type ItemKind string

// Possible item kinds
const (
	ItemFlight  ItemKind = "flight"
	ItemLodging ItemKind = "lodging"
	ItemBundle  ItemKind = "bundle"
)

// ParseItemKind maps a wire value to an ItemKind; unknown values return
// false so the collector can reject them at the boundary.
func ParseItemKind(s string) (ItemKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flight":
		return ItemFlight, true
	case "lodging":
		return ItemLodging, true
	case "bundle":
		return ItemBundle, true
	default:
		return "", false
	}
}

// CartItem is one client-streamed element of a checkout call
type CartItem struct {
	Kind        ItemKind `json:"kind"`
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
}

// CheckoutSummary is the single response of a checkout call. ItemCount
// equals the number of items received before the client closed its
// stream; Preview samples at most the first few item descriptions.
type CheckoutSummary struct {
	ItemCount    int       `json:"item_count"`
	Preview      []string  `json:"preview"`
	Total        float64   `json:"total"`
	Confirmation string    `json:"confirmation"`
	Completed    bool      `json:"completed"`
	Timestamp    time.Time `json:"timestamp"`
}

// Topic is a chat routing domain. Routers own exactly one topic and
// may share an inbound stream with routers for other topics.
type Topic string

// Known topics
const (
	TopicFlights Topic = "flights"
	TopicLodging Topic = "lodging"
	TopicGeneral Topic = "general"
)

// ChatMessage is one inbound message of a support chat session
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	TopicHint string    `json:"topic_hint,omitempty"`
}

// ChatReply is one outbound message of a support chat session
type ChatReply struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	Topic     Topic     `json:"topic"`
}
