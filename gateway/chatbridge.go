package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/travelstreams/config"
	"github.com/c360/travelstreams/engine"
	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/metric"
	"github.com/c360/travelstreams/service"
	"github.com/c360/travelstreams/stream"
	"github.com/c360/travelstreams/travel"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

// wsInbound is one browser-sent chat frame
type wsInbound struct {
	Text      string `json:"text"`
	TopicHint string `json:"topic_hint,omitempty"`
	Sender    string `json:"sender,omitempty"`
}

// bridgeMetrics holds Prometheus metrics for the WebSocket bridge.
type bridgeMetrics struct {
	connections prometheus.Gauge
	messagesIn  prometheus.Counter
	messagesOut prometheus.Counter
}

func newBridgeMetrics(registry *metric.MetricsRegistry) (*bridgeMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &bridgeMetrics{
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "travelstreams",
			Subsystem: "chat_bridge",
			Name:      "connections",
			Help:      "Current number of WebSocket chat connections",
		}),
		messagesIn: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "chat_bridge",
			Name:      "messages_in_total",
			Help:      "Total number of chat messages received over WebSocket",
		}),
		messagesOut: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "travelstreams",
			Subsystem: "chat_bridge",
			Name:      "messages_out_total",
			Help:      "Total number of chat replies delivered over WebSocket",
		}),
	}

	if err := registry.RegisterGauge("chat_bridge", "connections", m.connections); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter("chat_bridge", "messages_in", m.messagesIn); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounter("chat_bridge", "messages_out", m.messagesOut); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *bridgeMetrics) connected() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *bridgeMetrics) disconnected() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *bridgeMetrics) messageIn() {
	if m == nil {
		return
	}
	m.messagesIn.Inc()
}

func (m *bridgeMetrics) messageOut() {
	if m == nil {
		return
	}
	m.messagesOut.Inc()
}

// ChatBridge runs a browser-facing WebSocket endpoint that feeds each
// connection into its own bidirectional chat session.
type ChatBridge struct {
	*service.BaseService

	engine   *engine.Engine
	addr     string
	logger   *slog.Logger
	metrics  *bridgeMetrics
	upgrader websocket.Upgrader

	httpServer *http.Server
	baseCtx    context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

// NewChatBridge creates the WebSocket chat service listening on the
// configured chat address.
func NewChatBridge(
	cfg *config.Config,
	eng *engine.Engine,
	logger *slog.Logger,
	registry *metric.MetricsRegistry,
) (*ChatBridge, error) {
	if eng == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "ChatBridge", "NewChatBridge", "engine is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := newBridgeMetrics(registry)
	if err != nil {
		return nil, errors.Wrap(err, "ChatBridge", "NewChatBridge", "register metrics")
	}

	addr := ":8085"
	if cfg != nil && cfg.Gateway.ChatAddr != "" {
		addr = cfg.Gateway.ChatAddr
	}

	b := &ChatBridge{
		engine:  eng,
		addr:    addr,
		logger:  logger.With("service", "chat-bridge"),
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true // Browser clients connect from any origin
			},
		},
	}
	b.BaseService = service.NewBaseService("chat-bridge", cfg,
		service.WithLogger(b.logger),
		service.WithMetrics(registry),
	)

	return b, nil
}

// Handler returns the HTTP handler serving the chat endpoint
func (b *ChatBridge) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/chat", b.handleChat)
	return mux
}

// Start begins listening for WebSocket connections
func (b *ChatBridge) Start(ctx context.Context) error {
	b.baseCtx, b.cancel = context.WithCancel(context.Background())

	b.httpServer = &http.Server{
		Addr:              b.addr,
		Handler:           b.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		b.logger.Info("chat bridge listening", "addr", b.addr)
		if err := b.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			b.logger.Error("chat bridge server failed", "error", err)
		}
	}()

	return b.BaseService.Start(ctx)
}

// Stop closes the listener and waits for open sessions to end
func (b *ChatBridge) Stop(timeout time.Duration) error {
	if b.cancel != nil {
		b.cancel()
	}

	if b.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := b.httpServer.Shutdown(ctx); err != nil {
			b.logger.Warn("chat bridge shutdown incomplete", "error", err)
		}
	}

	finished := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(timeout):
		b.logger.Warn("chat sessions still open after timeout")
	}

	return b.BaseService.Stop(timeout)
}

// handleChat upgrades one connection and runs its session to completion
func (b *ChatBridge) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	b.metrics.connected()
	b.logger.Info("chat connection opened", "remote", r.RemoteAddr)

	pipe := stream.NewChatPipe()

	b.wg.Add(3)
	go b.runSession(pipe, conn)
	go b.readPump(pipe, conn)
	go b.writePump(pipe, conn, r.RemoteAddr)
}

func (b *ChatBridge) runSession(pipe *stream.ChatPipe, _ *websocket.Conn) {
	defer b.wg.Done()

	err := b.engine.Chat(b.baseCtx, pipe)
	pipe.CloseReplies()
	b.RecordCall()
	if err != nil {
		b.logger.Debug("chat session ended with error", "error", err)
	}
}

// readPump forwards browser frames into the session until the client
// disconnects.
func (b *ChatBridge) readPump(pipe *stream.ChatPipe, conn *websocket.Conn) {
	defer b.wg.Done()
	defer pipe.CloseSend()

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		b.metrics.messageIn()

		sender := inbound.Sender
		if sender == "" {
			sender = "visitor"
		}
		msg := travel.ChatMessage{
			Sender:    sender,
			Text:      inbound.Text,
			Timestamp: time.Now(),
			TopicHint: inbound.TopicHint,
		}
		if err := pipe.SendMessage(b.baseCtx, msg); err != nil {
			return
		}
	}
}

// writePump delivers session replies and keepalive pings to the browser.
func (b *ChatBridge) writePump(pipe *stream.ChatPipe, conn *websocket.Conn, remote string) {
	defer b.wg.Done()
	defer func() {
		_ = conn.Close()
		b.metrics.disconnected()
		b.logger.Info("chat connection closed", "remote", remote)
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	replies := make(chan travel.ChatReply)
	recvDone := make(chan struct{})
	go func() {
		defer close(recvDone)
		for {
			reply, err := pipe.RecvReply(b.baseCtx)
			if err != nil {
				return
			}
			select {
			case replies <- reply:
			case <-b.baseCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case reply := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(reply); err != nil {
				pipe.Abort()
				return
			}
			b.metrics.messageOut()
		case <-recvDone:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				pipe.Abort()
				return
			}
		}
	}
}
