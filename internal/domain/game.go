package domain

import (
	"fmt"
	"math/rand"
	"slices"
	"time"
)

// RoundsPerGame is the number of rounds in a full game.
const RoundsPerGame = 5

// GameState is the lifecycle phase of a Game.
type GameState int

const (
	Lobby GameState = iota
	RoundInProgress
	GameOver
)

func (s GameState) String() string {
	switch s {
	case Lobby:
		return "lobby"
	case RoundInProgress:
		return "round_in_progress"
	case GameOver:
		return "over"
	}
	return fmt.Sprintf("GameState(%d)", int(s))
}

// Game holds the seat roster and up to five rounds. Round i is led by seat
// i mod 4 and is created only when the previous round is over.
type Game struct {
	rng          *rand.Rand
	shuffleSeats bool
	players      []string
	rounds       []*Round
}

// NewGame constructs a Game with provided rng or a time-seeded default.
// When shuffleSeats is set the roster is permuted once the fourth player joins.
func NewGame(rng *rand.Rand, shuffleSeats bool) *Game {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Game{
		rng:          rng,
		shuffleSeats: shuffleSeats,
		players:      make([]string, 0, NumSeats),
		rounds:       make([]*Round, 0, RoundsPerGame),
	}
}

func (g *Game) State() GameState {
	if len(g.players) < NumSeats {
		return Lobby
	}
	if len(g.rounds) == RoundsPerGame && g.rounds[RoundsPerGame-1].IsOver() {
		return GameOver
	}
	return RoundInProgress
}

func (g *Game) IsReady() bool {
	return len(g.players) == NumSeats
}

func (g *Game) IsOver() bool {
	return g.State() == GameOver
}

// Players returns the roster in seat order.
func (g *Game) Players() []string {
	return slices.Clone(g.players)
}

// AddPlayer seats id. The roster is fixed once the fourth player joins.
func (g *Game) AddPlayer(id string) error {
	if g.State() != Lobby {
		return ErrNotAcceptingNewPlayers
	}
	if slices.Contains(g.players, id) {
		return ErrPlayerAlreadyInGame
	}
	g.players = append(g.players, id)
	if g.IsReady() && g.shuffleSeats {
		g.rng.Shuffle(len(g.players), func(i, j int) {
			g.players[i], g.players[j] = g.players[j], g.players[i]
		})
	}
	return nil
}

// SeatOf resolves a player id to its seat.
func (g *Game) SeatOf(id string) (Turn, error) {
	i := slices.Index(g.players, id)
	if i < 0 {
		return Turn{}, ErrPlayerNotInGame
	}
	return NewTurn(i), nil
}

// current returns the latest round, or nil before the first call.
func (g *Game) current() *Round {
	if len(g.rounds) == 0 {
		return nil
	}
	return g.rounds[len(g.rounds)-1]
}

// CurrentRound returns the index of the latest round, or -1 before the first call.
func (g *Game) CurrentRound() int {
	return len(g.rounds) - 1
}

// Deal opens the next round if the latest one is over. It is a no-op while a
// round is still in progress. Call opens rounds on its own; Deal lets a caller
// show the new hands before the first call is requested.
func (g *Game) Deal() error {
	switch g.State() {
	case Lobby:
		return ErrNotYourTurn
	case GameOver:
		return ErrNotAcceptingCalls
	}
	if r := g.current(); r == nil || r.IsOver() {
		g.rounds = append(g.rounds, NewRound(NewTurn(len(g.rounds)), g.rng))
	}
	return nil
}

// TurnToAct returns the id of the player expected to act next.
func (g *Game) TurnToAct() (string, error) {
	if g.State() != RoundInProgress {
		return "", ErrNotYourTurn
	}
	r := g.current()
	if r == nil || r.IsOver() {
		return g.players[NewTurn(len(g.rounds)).Index()], nil
	}
	turn, err := r.TurnToAct()
	if err != nil {
		return "", err
	}
	return g.players[turn.Index()], nil
}

// Call records the bid of player id, opening the next round if needed.
func (g *Game) Call(id string, call Call) error {
	switch g.State() {
	case Lobby:
		return ErrNotYourTurn
	case GameOver:
		return ErrNotAcceptingCalls
	}
	turn, err := g.SeatOf(id)
	if err != nil {
		return err
	}
	if err := g.Deal(); err != nil {
		return err
	}
	return g.current().Call(call, turn)
}

// Play places card for player id in the latest round. A finished round is not
// followed by a new one until the next Call or Deal.
func (g *Game) Play(id string, card Card) error {
	switch g.State() {
	case Lobby:
		return ErrNotYourTurn
	case GameOver:
		return ErrNotAcceptingPlay
	}
	turn, err := g.SeatOf(id)
	if err != nil {
		return err
	}
	r := g.current()
	if r == nil {
		return ErrNotAcceptingPlay
	}
	return r.Play(card, turn)
}

// LegalMoves returns the cards player id may play right now.
func (g *Game) LegalMoves(id string) ([]Card, error) {
	if g.State() != RoundInProgress {
		return nil, ErrNotAcceptingPlay
	}
	turn, err := g.SeatOf(id)
	if err != nil {
		return nil, err
	}
	r := g.current()
	if r == nil {
		return nil, ErrNotAcceptingPlay
	}
	return r.LegalMoves(turn)
}

// ViewFor builds what player id may observe: the roster, every round's calls
// and tricks, and only its own hand.
func (g *Game) ViewFor(id string) (PlayerView, error) {
	turn, err := g.SeatOf(id)
	if err != nil {
		return PlayerView{}, err
	}
	view := PlayerView{
		Players: g.Players(),
		Seat:    turn,
		Rounds:  make([]RoundView, 0, len(g.rounds)),
	}
	for _, r := range g.rounds {
		view.Rounds = append(view.Rounds, RoundView{
			Calls:  r.Calls(),
			Hand:   r.Hand(turn),
			Tricks: r.Tricks(),
		})
	}
	return view, nil
}

// RoundSummary holds the bids and trick counts of one round.
type RoundSummary struct {
	Calls     [NumSeats]int `json:"calls"`
	TricksWon [NumSeats]int `json:"tricks_won"`
	Over      bool          `json:"over"`
}

// Summary reports per-round calls and tricks won, in seat order.
func (g *Game) Summary() []RoundSummary {
	out := make([]RoundSummary, 0, len(g.rounds))
	for _, r := range g.rounds {
		s := RoundSummary{Over: r.IsOver()}
		calls, won := r.Calls(), r.TricksWon()
		for _, seat := range Turns {
			s.Calls[seat.Index()] = calls.At(seat).Int()
			s.TricksWon[seat.Index()] = won.At(seat)
		}
		out = append(out, s)
	}
	return out
}
