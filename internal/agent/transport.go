package agent

import (
	"context"
	"sync"
)

// Transport is a bidirectional channel to one remote party. Send and Receive
// block until done or ctx ends; a Transport is owned by a single Agent.
//
// A reply belongs to the request sent just before it. Once Receive returns,
// whether answered or not, a reply arriving later must not be handed to the
// next request.
type Transport interface {
	Send(ctx context.Context, msg ServerMessage) error
	Receive(ctx context.Context) (ClientMessage, error)
}

// ReplySlot holds the reply to the one outstanding request of a Transport
// whose reader runs on its own goroutine. Replies offered while no request is
// outstanding are dropped.
type ReplySlot struct {
	mu      sync.Mutex
	pending bool
	ch      chan ClientMessage
}

func NewReplySlot() *ReplySlot {
	return &ReplySlot{ch: make(chan ClientMessage, 1)}
}

// Expect opens the slot for a new request, discarding anything left over.
func (s *ReplySlot) Expect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drain()
	s.pending = true
}

// Offer hands m to the outstanding request without blocking. It reports
// whether m was kept.
func (s *ReplySlot) Offer(m ClientMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.pending {
		return false
	}
	select {
	case s.ch <- m:
		return true
	default:
		return false
	}
}

// Replies yields the reply kept by Offer.
func (s *ReplySlot) Replies() <-chan ClientMessage {
	return s.ch
}

// Settle closes the slot once its request is answered or abandoned.
func (s *ReplySlot) Settle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	s.drain()
}

func (s *ReplySlot) drain() {
	for {
		select {
		case <-s.ch:
		default:
			return
		}
	}
}

// ChanTransport is an in-process Transport. The host side uses it as a
// Transport; the player side reads Requests and writes Replies.
type ChanTransport struct {
	Requests chan ServerMessage
	Replies  chan ClientMessage

	closeOnce sync.Once
	done      chan struct{}
}

func NewChanTransport() *ChanTransport {
	return &ChanTransport{
		Requests: make(chan ServerMessage, 1),
		Replies:  make(chan ClientMessage, 1),
		done:     make(chan struct{}),
	}
}

// Send drops any request the player never picked up and any reply that came
// too late for its request, then queues msg.
func (t *ChanTransport) Send(ctx context.Context, msg ServerMessage) error {
	select {
	case <-t.done:
		return ErrTransportClosed
	default:
	}
	for stale := true; stale; {
		select {
		case <-t.Requests:
		case <-t.Replies:
		default:
			stale = false
		}
	}
	select {
	case t.Requests <- msg:
		return nil
	case <-t.done:
		return ErrTransportClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *ChanTransport) Receive(ctx context.Context) (ClientMessage, error) {
	select {
	case m := <-t.Replies:
		return m, nil
	case <-t.done:
		return ClientMessage{}, ErrTransportClosed
	case <-ctx.Done():
		return ClientMessage{}, ctx.Err()
	}
}

// Close unblocks pending and future calls.
func (t *ChanTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}
