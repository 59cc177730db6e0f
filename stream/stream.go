package stream

import (
	"context"
	"io"
	"sync"

	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/travel"
)

// StatusSender is the output side of a server-streaming call. The
// engine sends each status update and blocks until the consumer has
// taken it.
type StatusSender interface {
	Send(ctx context.Context, update travel.StatusUpdate) error
}

// ItemReceiver is the input side of a client-streaming call. Recv
// returns io.EOF when the client closed the stream normally and
// errors.ErrStreamAborted when the stream terminated without closing.
type ItemReceiver interface {
	Recv(ctx context.Context) (travel.CartItem, error)
}

// ChatSession is the engine's view of a bidirectional chat call:
// inbound messages via Recv, outbound replies via Send. Recv follows
// the same io.EOF / ErrStreamAborted convention as ItemReceiver.
type ChatSession interface {
	Recv(ctx context.Context) (travel.ChatMessage, error)
	Send(ctx context.Context, reply travel.ChatReply) error
}

// pipe is an unbuffered single-producer, single-consumer channel with
// explicit normal-close and abort transitions.
type pipe[T any] struct {
	ch        chan T
	aborted   chan struct{}
	closeOnce sync.Once
	abortOnce sync.Once
}

func newPipe[T any]() *pipe[T] {
	return &pipe[T]{
		ch:      make(chan T),
		aborted: make(chan struct{}),
	}
}

// send delivers one value to the consumer. The caller must not send
// after close; close is owned by the sending side.
func (p *pipe[T]) send(ctx context.Context, v T) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.aborted:
		return errors.ErrStreamAborted
	case p.ch <- v:
		return nil
	}
}

func (p *pipe[T]) recv(ctx context.Context) (T, error) {
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-p.aborted:
		return zero, errors.ErrStreamAborted
	case v, ok := <-p.ch:
		if !ok {
			return zero, io.EOF
		}
		return v, nil
	}
}

func (p *pipe[T]) close() {
	p.closeOnce.Do(func() { close(p.ch) })
}

func (p *pipe[T]) abort() {
	p.abortOnce.Do(func() { close(p.aborted) })
}

// StatusPipe connects a monitoring engine to a transport consumer.
// The engine side calls Send and Close; the consumer side calls Recv,
// and Abort if the downstream client disappears.
type StatusPipe struct {
	p *pipe[travel.StatusUpdate]
}

func NewStatusPipe() *StatusPipe {
	return &StatusPipe{p: newPipe[travel.StatusUpdate]()}
}

func (s *StatusPipe) Send(ctx context.Context, update travel.StatusUpdate) error {
	return s.p.send(ctx, update)
}

// Close marks the timeline as delivered in full.
func (s *StatusPipe) Close() { s.p.close() }

// Abort tears the stream down from the consumer side.
func (s *StatusPipe) Abort() { s.p.abort() }

func (s *StatusPipe) Recv(ctx context.Context) (travel.StatusUpdate, error) {
	return s.p.recv(ctx)
}

// ItemPipe connects a transport producer to a checkout engine. The
// producer side calls Send, then CloseSend after the last item, or
// Abort if the client stream broke mid-flight.
type ItemPipe struct {
	p *pipe[travel.CartItem]
}

func NewItemPipe() *ItemPipe {
	return &ItemPipe{p: newPipe[travel.CartItem]()}
}

func (s *ItemPipe) Send(ctx context.Context, item travel.CartItem) error {
	return s.p.send(ctx, item)
}

// CloseSend signals that every item has been delivered.
func (s *ItemPipe) CloseSend() { s.p.close() }

// Abort signals that the client went away before closing the stream.
func (s *ItemPipe) Abort() { s.p.abort() }

func (s *ItemPipe) Recv(ctx context.Context) (travel.CartItem, error) {
	return s.p.recv(ctx)
}

// ChatPipe is a full-duplex pair of pipes for a chat call. The client
// side drives SendMessage / CloseSend / RecvReply; the engine side sees
// the ChatSession half via Recv / Send. Either side may Abort.
type ChatPipe struct {
	in  *pipe[travel.ChatMessage]
	out *pipe[travel.ChatReply]
}

func NewChatPipe() *ChatPipe {
	return &ChatPipe{
		in:  newPipe[travel.ChatMessage](),
		out: newPipe[travel.ChatReply](),
	}
}

// Recv returns the next inbound message on the engine side.
func (s *ChatPipe) Recv(ctx context.Context) (travel.ChatMessage, error) {
	return s.in.recv(ctx)
}

// Send emits one reply toward the client.
func (s *ChatPipe) Send(ctx context.Context, reply travel.ChatReply) error {
	return s.out.send(ctx, reply)
}

// CloseReplies ends the outbound direction after the engine drains.
func (s *ChatPipe) CloseReplies() { s.out.close() }

// SendMessage delivers one client message to the engine.
func (s *ChatPipe) SendMessage(ctx context.Context, msg travel.ChatMessage) error {
	return s.in.send(ctx, msg)
}

// RecvReply returns the next reply on the client side.
func (s *ChatPipe) RecvReply(ctx context.Context) (travel.ChatReply, error) {
	return s.out.recv(ctx)
}

// CloseSend ends the inbound direction normally.
func (s *ChatPipe) CloseSend() { s.in.close() }

// Abort tears down both directions.
func (s *ChatPipe) Abort() {
	s.in.abort()
	s.out.abort()
}
