package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/c360/travelstreams/config"
	"github.com/c360/travelstreams/engine"
	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/metric"
	"github.com/c360/travelstreams/natsclient"
	"github.com/c360/travelstreams/service"
	"github.com/c360/travelstreams/stream"
)

// Bus is the slice of the NATS client the gateway needs. Satisfied by
// *natsclient.Client; tests substitute an in-memory implementation.
type Bus interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(ctx context.Context, subject string, handler func(context.Context, *natsclient.Msg)) error
}

// cartSession is one in-flight client-streamed checkout call. After
// the engine ends the call without a reply subject the session stays
// registered as a terminal marker until the client's trailing frame
// collects the outcome.
type cartSession struct {
	pipe *stream.ItemPipe

	mu       sync.Mutex
	replyTo  string
	abortReq bool
	ended    bool
	endErr   error
}

// setReply records the done frame's reply subject. When the call
// already ended it returns the terminal error instead, with ended
// true, and leaves the subject unset.
func (s *cartSession) setReply(subject string) (error, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return s.endErr, true
	}
	s.replyTo = subject
	return nil, false
}

// requestAbort records the client's abort and reports whether the
// call already ended, in which case the caller owns the cleanup.
func (s *cartSession) requestAbort() (ended bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abortReq = true
	return s.ended
}

// conclude resolves the call once the engine returns: the reply
// subject when the done frame already arrived, or hold=true when the
// terminal status must wait for the client's trailing frame. abortReq
// tells the caller the client already gave up on the call.
func (s *cartSession) conclude(err error) (replyTo string, abortReq, hold bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.replyTo != "" {
		return s.replyTo, false, false
	}
	s.ended = true
	s.endErr = err
	return "", s.abortReq, true
}

func (s *cartSession) terminal() (error, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endErr, s.ended
}

// chatSession is one in-flight bidirectional support conversation
type chatSession struct {
	pipe *stream.ChatPipe
}

// NATSGateway bridges the four engine call shapes onto NATS subjects.
type NATSGateway struct {
	*service.BaseService

	engine  *engine.Engine
	bus     Bus
	prefix  string
	logger  *slog.Logger
	metrics *gatewayMetrics

	mu    sync.Mutex
	carts map[string]*cartSession
	chats map[string]*chatSession

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewNATSGateway creates the gateway service. The bus must be connected
// before Start is called.
func NewNATSGateway(
	cfg *config.Config,
	eng *engine.Engine,
	bus Bus,
	logger *slog.Logger,
	registry *metric.MetricsRegistry,
) (*NATSGateway, error) {
	if eng == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "NATSGateway", "NewNATSGateway", "engine is required")
	}
	if bus == nil {
		return nil, errors.WrapInvalid(errors.ErrMissingConfig, "NATSGateway", "NewNATSGateway", "bus is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	metrics, err := newGatewayMetrics(registry)
	if err != nil {
		return nil, errors.Wrap(err, "NATSGateway", "NewNATSGateway", "register metrics")
	}

	prefix := "travel"
	if cfg != nil && cfg.Gateway.SubjectPrefix != "" {
		prefix = cfg.Gateway.SubjectPrefix
	}

	g := &NATSGateway{
		engine:  eng,
		bus:     bus,
		prefix:  prefix,
		logger:  logger.With("service", "nats-gateway"),
		metrics: metrics,
		carts:   make(map[string]*cartSession),
		chats:   make(map[string]*chatSession),
	}
	g.BaseService = service.NewBaseService("nats-gateway", cfg,
		service.WithLogger(g.logger),
		service.WithMetrics(registry),
	)

	return g, nil
}

// Start subscribes the gateway's subjects and begins serving calls
func (g *NATSGateway) Start(ctx context.Context) error {
	g.baseCtx, g.cancel = context.WithCancel(context.Background())

	subscriptions := map[string]func(context.Context, *natsclient.Msg){
		g.prefix + ".query":     g.handleQuery,
		g.prefix + ".monitor":   g.handleMonitor,
		g.prefix + ".cart.*":    g.handleCart,
		g.prefix + ".chat.*.in": g.handleChat,
	}
	for subject, handler := range subscriptions {
		if err := g.bus.Subscribe(ctx, subject, handler); err != nil {
			g.cancel()
			return errors.Wrap(err, "NATSGateway", "Start", "subscribe "+subject)
		}
	}

	g.logger.Info("gateway subscribed", "prefix", g.prefix)
	return g.BaseService.Start(ctx)
}

// Stop aborts open sessions and shuts the gateway down
func (g *NATSGateway) Stop(timeout time.Duration) error {
	if g.cancel != nil {
		g.cancel()
	}

	g.mu.Lock()
	for _, sess := range g.carts {
		sess.pipe.Abort()
	}
	for _, sess := range g.chats {
		sess.pipe.Abort()
	}
	g.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(timeout):
		g.logger.Warn("gateway shutdown timed out with sessions open")
	}

	return g.BaseService.Stop(timeout)
}

// handleQuery serves the unary request/reply shape
func (g *NATSGateway) handleQuery(ctx context.Context, msg *natsclient.Msg) {
	if msg.Reply == "" {
		g.logger.Warn("query request without reply subject dropped")
		g.metrics.recordDecodeFailure(engine.ShapeUnary)
		return
	}

	var req QueryRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		g.metrics.recordDecodeFailure(engine.ShapeUnary)
		g.respond(ctx, msg.Reply, QueryResponse{
			Status: errors.ErrorInvalid.String(),
			Error:  "malformed query request",
		})
		return
	}

	result, err := g.engine.Query(ctx, req.Criteria)
	g.RecordCall()

	resp := QueryResponse{Status: statusFromError(err)}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Result = &result
	}
	g.metrics.recordRequest(engine.ShapeUnary, resp.Status)
	g.respond(ctx, msg.Reply, resp)
}

// handleMonitor serves the server-streaming shape: updates flow to the
// request's reply subject, ending with a done frame.
func (g *NATSGateway) handleMonitor(_ context.Context, msg *natsclient.Msg) {
	if msg.Reply == "" {
		g.logger.Warn("monitor request without reply subject dropped")
		g.metrics.recordDecodeFailure(engine.ShapeServerStream)
		return
	}

	var req MonitorRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		g.metrics.recordDecodeFailure(engine.ShapeServerStream)
		g.respond(g.baseCtx, msg.Reply, MonitorFrame{
			Done:   true,
			Status: errors.ErrorInvalid.String(),
			Error:  "malformed monitor request",
		})
		return
	}

	g.wg.Add(1)
	go g.runMonitor(req.FlightNumber, msg.Reply)
}

func (g *NATSGateway) runMonitor(flightNumber, replyTo string) {
	defer g.wg.Done()

	g.metrics.sessionOpened(engine.ShapeServerStream)
	defer g.metrics.sessionClosed(engine.ShapeServerStream)

	pipe := stream.NewStatusPipe()
	errCh := make(chan error, 1)
	go func() {
		errCh <- g.engine.Monitor(g.baseCtx, flightNumber, pipe)
		pipe.Close()
	}()

	for {
		update, err := pipe.Recv(g.baseCtx)
		if err != nil {
			break
		}
		g.metrics.recordFrameOut(engine.ShapeServerStream)
		g.respond(g.baseCtx, replyTo, MonitorFrame{Update: &update})
	}

	callErr := <-errCh
	g.RecordCall()

	terminal := MonitorFrame{Done: true, Status: statusFromError(callErr)}
	if callErr != nil {
		terminal.Error = callErr.Error()
	}
	g.metrics.recordRequest(engine.ShapeServerStream, terminal.Status)
	g.respond(g.baseCtx, replyTo, terminal)
}

// handleCart serves the client-streaming shape. The call id is the last
// subject token; the done frame's reply subject receives the summary.
func (g *NATSGateway) handleCart(ctx context.Context, msg *natsclient.Msg) {
	callID := lastToken(msg.Subject)
	if callID == "" || callID == "*" {
		g.metrics.recordDecodeFailure(engine.ShapeClientStream)
		return
	}

	var frame CartFrame
	if err := json.Unmarshal(msg.Data, &frame); err != nil {
		g.metrics.recordDecodeFailure(engine.ShapeClientStream)
		return
	}

	sess := g.cartFor(callID)
	g.metrics.recordFrameIn(engine.ShapeClientStream)

	if err, ended := sess.terminal(); ended {
		g.finishCart(ctx, callID, msg.Reply, frame, err)
		return
	}

	switch {
	case frame.Abort:
		if sess.requestAbort() {
			g.removeCart(callID)
		}
		sess.pipe.Abort()
	case frame.Done:
		if err, ended := sess.setReply(msg.Reply); ended {
			g.finishCart(ctx, callID, msg.Reply, frame, err)
			return
		}
		sess.pipe.CloseSend()
	case frame.Item != nil:
		if err := sess.pipe.Send(ctx, *frame.Item); err != nil {
			g.logger.Debug("cart item dropped, session ended", "call_id", callID, "reason", err)
		}
	default:
		g.metrics.recordDecodeFailure(engine.ShapeClientStream)
	}
}

// finishCart answers the trailing frame of a call whose checkout
// already ended, typically an item the engine rejected mid-stream. The
// done frame collects the terminal status; a fresh call must never be
// opened in its place.
func (g *NATSGateway) finishCart(ctx context.Context, callID, replyTo string, frame CartFrame, callErr error) {
	switch {
	case frame.Done:
		g.removeCart(callID)
		if replyTo == "" {
			return
		}
		resp := CartResponse{Status: statusFromError(callErr)}
		if callErr != nil {
			resp.Error = callErr.Error()
		}
		g.respond(ctx, replyTo, resp)
	case frame.Abort:
		g.removeCart(callID)
	default:
		g.logger.Debug("cart frame after call ended", "call_id", callID)
	}
}

func (g *NATSGateway) removeCart(callID string) {
	g.mu.Lock()
	_, open := g.carts[callID]
	delete(g.carts, callID)
	g.mu.Unlock()
	if open {
		g.metrics.sessionClosed(engine.ShapeClientStream)
	}
}

// cartFor returns the session for a call id, starting its checkout on
// first sight.
func (g *NATSGateway) cartFor(callID string) *cartSession {
	g.mu.Lock()
	defer g.mu.Unlock()

	if sess, ok := g.carts[callID]; ok {
		return sess
	}

	sess := &cartSession{pipe: stream.NewItemPipe()}
	g.carts[callID] = sess
	g.metrics.sessionOpened(engine.ShapeClientStream)

	g.wg.Add(1)
	go g.runCheckout(callID, sess)

	return sess
}

func (g *NATSGateway) runCheckout(callID string, sess *cartSession) {
	defer g.wg.Done()

	summary, err := g.engine.Checkout(g.baseCtx, sess.pipe)
	g.RecordCall()

	status := statusFromError(err)
	g.metrics.recordRequest(engine.ShapeClientStream, status)

	replyTo, abortReq, hold := sess.conclude(err)
	if hold {
		if abortReq || errors.IsAborted(err) {
			// Client abort or shutdown; nobody is waiting for a summary.
			g.removeCart(callID)
			return
		}
		// Rejected mid-stream. The session stays registered holding
		// the terminal status until the trailing done or abort frame;
		// aborting the pipe fails any further item sends fast.
		sess.pipe.Abort()
		return
	}

	g.removeCart(callID)
	resp := CartResponse{Status: status}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Summary = &summary
	}
	g.respond(g.baseCtx, replyTo, resp)
}

// handleChat serves the bidirectional shape. The session id is the
// middle subject token; replies flow to the matching .out subject.
func (g *NATSGateway) handleChat(ctx context.Context, msg *natsclient.Msg) {
	sessionID := chatSessionID(msg.Subject)
	if sessionID == "" || sessionID == "*" {
		g.metrics.recordDecodeFailure(engine.ShapeBidi)
		return
	}

	var frame ChatFrame
	if err := json.Unmarshal(msg.Data, &frame); err != nil {
		g.metrics.recordDecodeFailure(engine.ShapeBidi)
		return
	}

	sess := g.chatFor(sessionID)
	g.metrics.recordFrameIn(engine.ShapeBidi)

	switch {
	case frame.Abort:
		sess.pipe.Abort()
	case frame.Done:
		sess.pipe.CloseSend()
	case frame.Message != nil:
		if err := sess.pipe.SendMessage(ctx, *frame.Message); err != nil {
			g.logger.Debug("chat message dropped, session ended", "session", sessionID, "reason", err)
		}
	default:
		g.metrics.recordDecodeFailure(engine.ShapeBidi)
	}
}

func (g *NATSGateway) chatFor(sessionID string) *chatSession {
	g.mu.Lock()
	defer g.mu.Unlock()

	if sess, ok := g.chats[sessionID]; ok {
		return sess
	}

	sess := &chatSession{pipe: stream.NewChatPipe()}
	g.chats[sessionID] = sess
	g.metrics.sessionOpened(engine.ShapeBidi)

	g.wg.Add(2)
	go g.runChat(sessionID, sess)
	go g.forwardReplies(sessionID, sess)

	return sess
}

func (g *NATSGateway) runChat(sessionID string, sess *chatSession) {
	defer g.wg.Done()

	err := g.engine.Chat(g.baseCtx, sess.pipe)
	sess.pipe.CloseReplies()
	g.RecordCall()

	g.mu.Lock()
	delete(g.chats, sessionID)
	g.mu.Unlock()
	g.metrics.sessionClosed(engine.ShapeBidi)
	g.metrics.recordRequest(engine.ShapeBidi, statusFromError(err))
}

func (g *NATSGateway) forwardReplies(sessionID string, sess *chatSession) {
	defer g.wg.Done()

	outSubject := g.prefix + ".chat." + sessionID + ".out"
	for {
		reply, err := sess.pipe.RecvReply(g.baseCtx)
		if err == io.EOF {
			g.respond(g.baseCtx, outSubject, ChatReplyFrame{Done: true})
			return
		}
		if err != nil {
			return
		}
		g.metrics.recordFrameOut(engine.ShapeBidi)
		g.respond(g.baseCtx, outSubject, ChatReplyFrame{Reply: &reply})
	}
}

// respond marshals and publishes an envelope, logging delivery failures
func (g *NATSGateway) respond(ctx context.Context, subject string, envelope any) {
	data, err := json.Marshal(envelope)
	if err != nil {
		g.logger.Error("envelope marshal failed", "subject", subject, "error", err)
		return
	}
	if err := g.bus.Publish(ctx, subject, data); err != nil {
		g.logger.Warn("reply publish failed", "subject", subject, "error", err)
	}
}

func lastToken(subject string) string {
	idx := strings.LastIndex(subject, ".")
	if idx < 0 || idx == len(subject)-1 {
		return ""
	}
	return subject[idx+1:]
}

// chatSessionID extracts <session> from "<prefix>.chat.<session>.in"
func chatSessionID(subject string) string {
	parts := strings.Split(subject, ".")
	if len(parts) < 2 {
		return ""
	}
	return parts[len(parts)-2]
}
