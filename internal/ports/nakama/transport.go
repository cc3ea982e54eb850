package nakama

import (
	"context"
	"sync"

	"github.com/prasantadh/callbreak-np/internal/agent"
)

// outbound is a message waiting for MatchLoop to dispatch it. An empty
// userID means broadcast.
type outbound struct {
	opCode int64
	userID string
	data   any
}

// matchTransport connects a Human agent running on the host goroutine to the
// match loop. Requests are queued to the match outbox; replies are delivered
// by MatchLoop when the seat's presence sends OpDecision.
type matchTransport struct {
	userID  string
	outbox  chan<- outbound
	replies *agent.ReplySlot

	closeOnce sync.Once
	done      chan struct{}
}

var _ agent.Transport = (*matchTransport)(nil)

func newMatchTransport(userID string, outbox chan<- outbound) *matchTransport {
	return &matchTransport{
		userID:  userID,
		outbox:  outbox,
		replies: agent.NewReplySlot(),
		done:    make(chan struct{}),
	}
}

func (t *matchTransport) Send(ctx context.Context, msg agent.ServerMessage) error {
	select {
	case <-t.done:
		return agent.ErrTransportClosed
	default:
	}
	t.replies.Expect()
	select {
	case t.outbox <- outbound{opCode: OpRequest, userID: t.userID, data: msg}:
		return nil
	case <-t.done:
		t.replies.Settle()
		return agent.ErrTransportClosed
	case <-ctx.Done():
		t.replies.Settle()
		return ctx.Err()
	}
}

func (t *matchTransport) Receive(ctx context.Context) (agent.ClientMessage, error) {
	defer t.replies.Settle()
	select {
	case m := <-t.replies.Replies():
		return m, nil
	case <-t.done:
		return agent.ClientMessage{}, agent.ErrTransportClosed
	case <-ctx.Done():
		return agent.ClientMessage{}, ctx.Err()
	}
}

// deliver hands a reply to a waiting Receive. It never blocks the match
// loop; a reply nobody asked for is dropped.
func (t *matchTransport) deliver(m agent.ClientMessage) bool {
	return t.replies.Offer(m)
}

func (t *matchTransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}
