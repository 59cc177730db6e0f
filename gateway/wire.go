package gateway

import (
	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/travel"
)

// StatusOK marks a successful reply envelope
const StatusOK = "ok"

// statusFromError maps an engine error to a wire status string
func statusFromError(err error) string {
	if err == nil {
		return StatusOK
	}
	return errors.Classify(err).String()
}

// QueryRequest is the payload of a travel.query request
type QueryRequest struct {
	Criteria travel.QueryCriteria `json:"criteria"`
}

// QueryResponse is the single reply of a travel.query request
type QueryResponse struct {
	Status string              `json:"status"`
	Error  string              `json:"error,omitempty"`
	Result *travel.QueryResult `json:"result,omitempty"`
}

// MonitorRequest is the payload of a travel.monitor request. Updates
// stream to the request's reply subject.
type MonitorRequest struct {
	FlightNumber string `json:"flight_number"`
}

// MonitorFrame is one message of a monitoring stream. Non-terminal
// frames carry an update; the terminal frame carries Done plus the
// final status.
type MonitorFrame struct {
	Update *travel.StatusUpdate `json:"update,omitempty"`
	Done   bool                 `json:"done,omitempty"`
	Status string               `json:"status,omitempty"`
	Error  string               `json:"error,omitempty"`
}

// CartFrame is one message on a travel.cart.<call-id> subject. Exactly
// one of Item, Done, or Abort is meaningful per frame. The Done frame
// must carry a reply subject for the summary.
type CartFrame struct {
	Item  *travel.CartItem `json:"item,omitempty"`
	Done  bool             `json:"done,omitempty"`
	Abort bool             `json:"abort,omitempty"`
}

// CartResponse answers a cart stream's done frame
type CartResponse struct {
	Status  string                  `json:"status"`
	Error   string                  `json:"error,omitempty"`
	Summary *travel.CheckoutSummary `json:"summary,omitempty"`
}

// ChatFrame is one message on a travel.chat.<session>.in subject
type ChatFrame struct {
	Message *travel.ChatMessage `json:"message,omitempty"`
	Done    bool                `json:"done,omitempty"`
	Abort   bool                `json:"abort,omitempty"`
}

// ChatReplyFrame is one message on a travel.chat.<session>.out subject.
// The terminal frame is marked Done with no reply.
type ChatReplyFrame struct {
	Reply *travel.ChatReply `json:"reply,omitempty"`
	Done  bool              `json:"done,omitempty"`
}
