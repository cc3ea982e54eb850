package agent

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prasantadh/callbreak-np/internal/bot"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// Human asks a remote party for each decision over its Transport. Any send
// or receive failure, timeout, wrong reply kind or illegal card is replaced by
// the bot fallback for that request only.
type Human struct {
	ID        string
	transport Transport
	timeout   time.Duration
	logger    logrus.FieldLogger
}

// NewHuman binds id to transport. A zero timeout waits as long as ctx allows.
func NewHuman(id string, transport Transport, timeout time.Duration, logger logrus.FieldLogger) *Human {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Human{
		ID:        id,
		transport: transport,
		timeout:   timeout,
		logger:    logger.WithField("player", id),
	}
}

func (h *Human) Call(ctx context.Context, view domain.PlayerView) domain.Call {
	reply, err := h.exchange(ctx, ActionCall, view)
	if err == nil {
		_, err = domain.NewCall(reply.Call.Int())
	}
	if err != nil {
		h.logger.WithError(err).WithField("action", ActionCall).Warn("human call failed, bot substitutes")
		return bot.FallbackCall(view)
	}
	return *reply.Call
}

func (h *Human) Play(ctx context.Context, view domain.PlayerView) domain.Card {
	reply, err := h.exchange(ctx, ActionBreak, view)
	if err == nil && !slices.Contains(view.LegalMoves(), *reply.Break) {
		err = fmt.Errorf("%w: %s", domain.ErrInvalidPlay, reply.Break)
	}
	if err != nil {
		h.logger.WithError(err).WithField("action", ActionBreak).Warn("human play failed, bot substitutes")
		return bot.FallbackMove(view)
	}
	return *reply.Break
}

func (h *Human) exchange(ctx context.Context, action Action, view domain.PlayerView) (ClientMessage, error) {
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if err := h.transport.Send(ctx, ServerMessage{Action: action, View: view}); err != nil {
		return ClientMessage{}, fmt.Errorf("send: %w", err)
	}
	reply, err := h.transport.Receive(ctx)
	if err != nil {
		return ClientMessage{}, fmt.Errorf("receive: %w", err)
	}
	kind, err := reply.Kind()
	if err != nil {
		return ClientMessage{}, err
	}
	if kind != action {
		return ClientMessage{}, fmt.Errorf("%w: expected %s, got %s", ErrProtocolViolation, action, kind)
	}
	return reply, nil
}

// Close closes the transport if it supports closing.
func (h *Human) Close() error {
	if c, ok := h.transport.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
