package bot

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/prasantadh/callbreak-np/internal/domain"
)

// Agent represents an autonomous bot player. A strategy that errors or
// proposes something the view does not allow is replaced by SimpleBot for
// that one decision.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
	Logger   logrus.FieldLogger
}

// AgentOptions configures NewBotAgent.
type AgentOptions struct {
	// Script is a Lua file; when set it replaces the level's strategy.
	Script string
	Logger logrus.FieldLogger
}

// NewAgent wraps strategy for seat id. A nil logger means the standard logger.
func NewAgent(id, name string, strategy Brain, logger logrus.FieldLogger) *Agent {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Agent{
		ID:       id,
		Name:     name,
		Strategy: strategy,
		Logger:   logger.WithField("player", id),
	}
}

// Call asks the agent for its bid on the latest round in view.
func (a *Agent) Call(ctx context.Context, view domain.PlayerView) domain.Call {
	call, err := a.Strategy.CalculateCall(view)
	if err == nil {
		_, err = domain.NewCall(call.Int())
	}
	if err != nil {
		a.Logger.WithError(err).Warn("bot call rejected, using fallback")
		return FallbackCall(view)
	}
	return call
}

// Play asks the agent to calculate its move based on the current view.
func (a *Agent) Play(ctx context.Context, view domain.PlayerView) domain.Card {
	card, err := a.Strategy.CalculateMove(view)
	if err == nil && !slices.Contains(view.LegalMoves(), card) {
		err = domain.ErrInvalidPlay
	}
	if err != nil {
		a.Logger.WithError(err).WithField("card", card.String()).Warn("bot move rejected, using fallback")
		return FallbackMove(view)
	}
	return card
}

// Close releases strategy resources, such as a script interpreter.
func (a *Agent) Close() error {
	if c, ok := a.Strategy.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// FallbackCall is the bid SimpleBot makes; it never fails.
func FallbackCall(view domain.PlayerView) domain.Call {
	call, _ := (&SimpleBot{}).CalculateCall(view)
	return call
}

// FallbackMove is the first legal card in view, or the zero Card when the
// view has no trick awaiting cards.
func FallbackMove(view domain.PlayerView) domain.Card {
	card, _ := (&SimpleBot{}).CalculateMove(view)
	return card
}
