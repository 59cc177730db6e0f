package engine

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/stream"
	"github.com/c360/travelstreams/travel"
)

// chatSender is the sender identity on every outbound reply.
const chatSender = "support"

// chatRule matches one keyword category to its canned reply. Rules are
// evaluated in priority order; the first match wins.
type chatRule struct {
	category string
	keywords []string
	reply    string
}

// Keyword sets for topic classification. A message mentioning flights
// or bundles belongs to this router; lodging vocabulary belongs to a
// sibling router that may share the same inbound stream.
var (
	flightKeywords  = []string{"flight", "flights", "fly", "air", "airplane", "plane", "ticket", "tickets"}
	bundleKeywords  = []string{"bundle", "bundles", "package", "packages", "combo", "deal"}
	lodgingKeywords = []string{"hotel", "hotels", "room", "rooms", "lodging", "accommodation", "suite", "hostel"}
)

// chatRules is the priority-ordered reply table for owned messages.
var chatRules = []chatRule{
	{
		category: "bundle",
		keywords: bundleKeywords,
		reply:    "Our travel bundles include flights with LATAM, GOL, Azul and more, starting at $150.",
	},
	{
		category: "price",
		keywords: []string{"price", "prices", "cost", "cheap", "cheapest", "fare", "fares"},
		reply:    "Flights start at $150. Use the price filter to find the best fares.",
	},
	{
		category: "schedule",
		keywords: []string{"schedule", "time", "times", "departure", "arrival", "when"},
		reply:    "We have departures all day: morning (06:00-12:00), afternoon (12:00-18:00) and evening (18:00-00:00).",
	},
	{
		category: "carrier",
		keywords: []string{"carrier", "airline", "airlines", "company"},
		reply:    "We work with LATAM, GOL, Azul, TAM and Avianca. Any preference?",
	},
	{
		category: "cabin",
		keywords: []string{"cabin", "class", "economy", "business", "first"},
		reply:    "Three cabin classes are available: economy, business and first.",
	},
	{
		category: "tracking",
		keywords: []string{"monitor", "track", "tracking", "status"},
		reply:    "Use the flight monitor to follow your flight in real time.",
	},
}

// genericReply answers owned messages with no category match and
// topic-agnostic messages.
const genericReply = "Hello! How can I help with flight information?"

// Chat runs one bidirectional support session. Each owned inbound
// message produces exactly one reply, in input order. Messages that
// unambiguously belong to another topic domain are silently passed so
// a sibling router sharing the stream can answer them. The session
// ends when the client closes its half of the stream.
func (e *Engine) Chat(ctx context.Context, session stream.ChatSession) error {
	callID, release := e.beginCall(ShapeBidi)
	var callErr error
	defer func() { release(callErr) }()

	e.logger.Info("chat session started", "call_id", callID)

	for {
		msg, err := session.Recv(ctx)
		if err == io.EOF {
			e.logger.Info("chat session closed by client", "call_id", callID)
			return nil
		}
		if err != nil {
			// Client or transport went away; end the session silently.
			e.logger.Debug("chat session ended", "call_id", callID, "reason", err)
			return nil
		}

		if msg.Text == "" {
			callErr = errors.WrapInvalid(
				fmt.Errorf("%w: empty text", errors.ErrInvalidMessage),
				"engine", "Chat", "validate message")
			return callErr
		}

		topic := classifyMessage(msg)
		if topic == travel.TopicLodging {
			e.metrics.recordChatMessage(string(topic), false)
			continue
		}

		if err := e.chatDelay.Wait(ctx); err != nil {
			return nil
		}

		reply := travel.ChatReply{
			Sender:    chatSender,
			Text:      selectReply(msg.Text, topic),
			Timestamp: e.now(),
			Topic:     topic,
		}

		if err := session.Send(ctx, reply); err != nil {
			e.logger.Debug("chat reply undeliverable, ending session",
				"call_id", callID, "reason", err)
			return nil
		}
		e.metrics.recordChatMessage(string(topic), true)
	}
}

// classifyMessage resolves the topic of one inbound message. Keyword
// evidence for an owned topic wins over the hint; otherwise the hint
// decides; otherwise the message is topic-agnostic.
func classifyMessage(msg travel.ChatMessage) travel.Topic {
	text := strings.ToLower(msg.Text)

	if containsAny(text, flightKeywords) || containsAny(text, bundleKeywords) {
		return travel.TopicFlights
	}
	if containsAny(text, lodgingKeywords) {
		return travel.TopicLodging
	}

	switch strings.ToLower(strings.TrimSpace(msg.TopicHint)) {
	case string(travel.TopicFlights):
		return travel.TopicFlights
	case string(travel.TopicLodging):
		return travel.TopicLodging
	}

	return travel.TopicGeneral
}

// selectReply picks the first matching rule for an owned message.
// Topic-agnostic messages always get the generic greeting.
func selectReply(text string, topic travel.Topic) string {
	if topic != travel.TopicFlights {
		return genericReply
	}

	lower := strings.ToLower(text)
	for _, rule := range chatRules {
		if containsAny(lower, rule.keywords) {
			return rule.reply
		}
	}
	return genericReply
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
