package gateway

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/travelstreams/catalog"
	"github.com/c360/travelstreams/config"
	"github.com/c360/travelstreams/engine"
	"github.com/c360/travelstreams/pkg/delay"
	"github.com/c360/travelstreams/travel"
)

func newTestBridge(t *testing.T) *ChatBridge {
	t.Helper()

	store, err := catalog.NewStore(catalog.Fixture(gatewayTestFlights()))
	require.NoError(t, err)

	eng := engine.NewEngine(store, slog.New(slog.NewTextHandler(io.Discard, nil)), nil,
		engine.WithChatDelay(delay.None()),
	)

	bridge, err := NewChatBridge(config.Default(), eng,
		slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)

	// Session context normally comes from Start; the handler is served
	// through httptest here instead of the bridge's own listener.
	bridge.baseCtx, bridge.cancel = context.WithCancel(context.Background())
	t.Cleanup(bridge.cancel)

	return bridge
}

func dialBridge(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestChatBridge_ReplyRoundTrip(t *testing.T) {
	bridge := newTestBridge(t)
	server := httptest.NewServer(bridge.Handler())
	defer server.Close()

	conn := dialBridge(t, server)

	require.NoError(t, conn.WriteJSON(wsInbound{Text: "what is the cheapest flight fare?"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var reply travel.ChatReply
	require.NoError(t, conn.ReadJSON(&reply))

	assert.Equal(t, "support", reply.Sender)
	assert.Equal(t, travel.TopicFlights, reply.Topic)
	assert.Contains(t, reply.Text, "$150")
}

func TestChatBridge_ForeignTopicGetsNoReply(t *testing.T) {
	bridge := newTestBridge(t)
	server := httptest.NewServer(bridge.Handler())
	defer server.Close()

	conn := dialBridge(t, server)

	require.NoError(t, conn.WriteJSON(wsInbound{Text: "I need a hotel room"}))
	require.NoError(t, conn.WriteJSON(wsInbound{Text: "and a plane ticket"}))

	// The lodging message is passed silently; the first reply answers
	// the flight message.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var reply travel.ChatReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, travel.TopicFlights, reply.Topic)
}

func TestChatBridge_HintDecidesWithoutKeywords(t *testing.T) {
	bridge := newTestBridge(t)
	server := httptest.NewServer(bridge.Handler())
	defer server.Close()

	conn := dialBridge(t, server)

	require.NoError(t, conn.WriteJSON(wsInbound{Text: "hello there", TopicHint: "flights"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var reply travel.ChatReply
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, travel.TopicFlights, reply.Topic)
}

func TestChatBridge_ClientCloseEndsSession(t *testing.T) {
	bridge := newTestBridge(t)
	server := httptest.NewServer(bridge.Handler())
	defer server.Close()

	conn := dialBridge(t, server)
	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	_ = conn.Close()

	// All three session goroutines unwind once the client is gone
	finished := make(chan struct{})
	go func() {
		bridge.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("session goroutines did not exit after client close")
	}
}
