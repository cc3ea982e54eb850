package app

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/prasantadh/callbreak-np/internal/agent"
	"github.com/prasantadh/callbreak-np/internal/bot"
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// HostOptions configures NewHost. The zero value is usable.
type HostOptions struct {
	ShuffleSeats bool
	Logger       logrus.FieldLogger
	Observer     Observer
}

// Host drives one Game: five rounds of four calls and thirteen tricks, asking
// each seat's Agent in turn and applying the answer.
type Host struct {
	game     *domain.Game
	agents   map[string]agent.Agent
	joined   []string
	observer Observer
	logger   logrus.FieldLogger
}

// NewHost constructs a Host with provided rng or a time-seeded default.
func NewHost(rng *rand.Rand, opts HostOptions) *Host {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Host{
		game:     domain.NewGame(rng, opts.ShuffleSeats),
		agents:   make(map[string]agent.Agent, domain.NumSeats),
		observer: opts.Observer,
		logger:   logger,
	}
}

// AddAgent seats a for player id. Seats are fixed once the fourth agent joins.
func (h *Host) AddAgent(id string, a agent.Agent) error {
	if err := h.game.AddPlayer(id); err != nil {
		return err
	}
	h.agents[id] = a
	h.joined = append(h.joined, id)
	h.logger.WithField("player", id).Debug("agent joined")
	h.emit(Event{Kind: EventPlayerJoined, Round: -1, Payload: PlayerJoinedPayload{UserID: id, Joined: len(h.joined)}})
	return nil
}

func (h *Host) IsReady() bool { return h.game.IsReady() }

func (h *Host) IsOver() bool { return h.game.IsOver() }

// Players returns the roster in seat order once the game is ready, join
// order before that.
func (h *Host) Players() []string {
	return h.game.Players()
}

// Summary reports calls and tricks won for every round dealt so far.
func (h *Host) Summary() []domain.RoundSummary {
	return h.game.Summary()
}

// Run plays the whole game. The context is checked between rounds; within a
// round it only reaches the agents. Agents implementing io.Closer are closed
// when Run returns.
func (h *Host) Run(ctx context.Context) error {
	if !h.game.IsReady() {
		return ErrNotEnoughPlayers
	}
	if h.game.IsOver() {
		return ErrGameOver
	}
	defer h.closeAgents()

	players := h.game.Players()
	h.logger.WithField("players", players).Info("game started")
	h.emit(Event{Kind: EventGameStarted, Round: -1, Payload: GameStartedPayload{Players: players}})

	for round := h.game.CurrentRound() + 1; round < domain.RoundsPerGame; round++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.playRound(ctx, round); err != nil {
			return err
		}
	}

	summary := h.game.Summary()
	h.logger.Info("game over")
	h.emit(Event{Kind: EventGameOver, Round: domain.RoundsPerGame - 1, Payload: GameOverPayload{Summary: summary}})
	return nil
}

func (h *Host) playRound(ctx context.Context, round int) error {
	log := h.logger.WithField("round", round)
	if err := h.game.Deal(); err != nil {
		return fmt.Errorf("%w: deal round %d: %w", ErrEngineFault, round, err)
	}
	h.emit(Event{Kind: EventRoundDealt, Round: round})

	for range domain.NumSeats {
		if err := h.requestCall(ctx, round, log); err != nil {
			return err
		}
	}
	for trick := range domain.TricksPerRound {
		var last string
		for range domain.NumSeats {
			id, err := h.requestPlay(ctx, round, log.WithField("trick", trick))
			if err != nil {
				return err
			}
			last = id
		}
		if err := h.announceTrick(round, trick, last); err != nil {
			return err
		}
	}

	summary := h.game.Summary()[round]
	log.WithFields(logrus.Fields{
		"calls":      summary.Calls,
		"tricks_won": summary.TricksWon,
	}).Info("round over")
	h.emit(Event{Kind: EventRoundOver, Round: round, Payload: RoundOverPayload{Summary: summary}})
	return nil
}

// turn resolves who acts next along with that player's agent and view.
func (h *Host) turn() (string, agent.Agent, domain.PlayerView, error) {
	id, err := h.game.TurnToAct()
	if err != nil {
		return "", nil, domain.PlayerView{}, fmt.Errorf("%w: turn to act: %w", ErrEngineFault, err)
	}
	a, ok := h.agents[id]
	if !ok {
		return "", nil, domain.PlayerView{}, fmt.Errorf("%w: no agent for %s", ErrEngineFault, id)
	}
	view, err := h.game.ViewFor(id)
	if err != nil {
		return "", nil, domain.PlayerView{}, fmt.Errorf("%w: view for %s: %w", ErrEngineFault, id, err)
	}
	return id, a, view, nil
}

func (h *Host) requestCall(ctx context.Context, round int, log logrus.FieldLogger) error {
	id, a, view, err := h.turn()
	if err != nil {
		return err
	}
	log = log.WithFields(logrus.Fields{"player": id, "action": agent.ActionCall})
	log.Debug("requesting call")

	call := a.Call(ctx, view)
	fallback := false
	if err := h.game.Call(id, call); err != nil {
		log.WithError(err).WithField("call", call.Int()).Warn("call rejected, using fallback")
		call, fallback = bot.FallbackCall(view), true
		if err := h.game.Call(id, call); err != nil {
			return fmt.Errorf("%w: fallback call %d by %s: %w", ErrEngineFault, call.Int(), id, err)
		}
	}
	h.emit(Event{Kind: EventCallMade, Round: round, Payload: CallMadePayload{UserID: id, Call: call, Fallback: fallback}})
	return nil
}

func (h *Host) requestPlay(ctx context.Context, round int, log logrus.FieldLogger) (string, error) {
	id, a, view, err := h.turn()
	if err != nil {
		return "", err
	}
	log = log.WithFields(logrus.Fields{"player": id, "action": agent.ActionBreak})
	log.Debug("requesting break")

	legal, err := h.game.LegalMoves(id)
	if err != nil {
		return "", fmt.Errorf("%w: legal moves for %s: %w", ErrEngineFault, id, err)
	}
	card := a.Play(ctx, view)
	fallback := false
	if !slices.Contains(legal, card) {
		log.WithField("card", card.String()).Warn("illegal break, using fallback")
		card, fallback = bot.FallbackMove(view), true
	}
	if err := h.game.Play(id, card); err != nil {
		return "", fmt.Errorf("%w: break %s by %s: %w", ErrEngineFault, card, id, err)
	}
	h.emit(Event{Kind: EventCardPlayed, Round: round, Payload: CardPlayedPayload{UserID: id, Card: card, Fallback: fallback}})
	return id, nil
}

// announceTrick reports the winner of a completed trick, read back from the
// view of the player who closed it.
func (h *Host) announceTrick(round, trick int, last string) error {
	view, err := h.game.ViewFor(last)
	if err != nil {
		return fmt.Errorf("%w: view for %s: %w", ErrEngineFault, last, err)
	}
	tricks := view.Rounds[round].Tricks
	if trick >= len(tricks) {
		return fmt.Errorf("%w: trick %d missing from round %d", ErrEngineFault, trick, round)
	}
	seat, card, ok := tricks[trick].Winner()
	if !ok {
		return fmt.Errorf("%w: trick %d of round %d has no winner", ErrEngineFault, trick, round)
	}
	winner := view.Players[seat.Index()]
	h.logger.WithFields(logrus.Fields{"round": round, "trick": trick, "player": winner}).Debug("trick won")
	h.emit(Event{Kind: EventTrickWon, Round: round, Payload: TrickWonPayload{UserID: winner, Trick: trick, Card: card}})
	return nil
}

func (h *Host) emit(ev Event) {
	if h.observer != nil {
		h.observer(ev)
	}
}

func (h *Host) closeAgents() {
	for _, id := range h.joined {
		c, ok := h.agents[id].(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			h.logger.WithError(err).WithField("player", id).Warn("closing agent")
		}
	}
}
