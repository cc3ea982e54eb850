package domain

import (
	"fmt"
	"math/rand"
	"slices"
)

const (
	// TricksPerRound is the number of tricks played in a round.
	TricksPerRound = 13
	// MaxDealAttempts bounds the re-deal loop. A fair shuffle produces a
	// valid deal far more often than not, so reaching it means the rng is rigged.
	MaxDealAttempts = 10000
)

// RoundState is the lifecycle phase of a Round.
type RoundState int

const (
	Calling RoundState = iota
	TrickInProgress
	RoundOver
)

func (s RoundState) String() string {
	switch s {
	case Calling:
		return "calling"
	case TrickInProgress:
		return "trick_in_progress"
	case RoundOver:
		return "over"
	}
	return fmt.Sprintf("RoundState(%d)", int(s))
}

// Round is one deal: four calls followed by 13 tricks.
type Round struct {
	starter Turn
	hands   BySeat[Hand]
	calls   BySeat[Call]
	tricks  []Trick
}

// NewRound deals four valid hands from rng. It panics if no valid deal is
// found within MaxDealAttempts shuffles.
func NewRound(starter Turn, rng *rand.Rand) *Round {
	hands, err := Deal(rng)
	if err != nil {
		panic(err)
	}
	return NewRoundWithHands(starter, hands)
}

// NewRoundWithHands starts a round from an existing deal.
func NewRoundWithHands(starter Turn, hands [NumSeats]Hand) *Round {
	r := &Round{starter: starter, tricks: make([]Trick, 0, TricksPerRound)}
	for _, s := range Turns {
		r.hands.Set(s, HeldHand(hands[s.Index()].cards))
	}
	return r
}

// Deal shuffles and splits the deck until every hand validates.
func Deal(rng *rand.Rand) ([NumSeats]Hand, error) {
	var hands [NumSeats]Hand
attempts:
	for range MaxDealAttempts {
		deck := ShuffledDeck(rng)
		for i := range hands {
			h, err := NewHand(deck[i*HandSize : (i+1)*HandSize])
			if err != nil {
				continue attempts
			}
			hands[i] = h
		}
		return hands, nil
	}
	return hands, fmt.Errorf("no valid deal after %d attempts", MaxDealAttempts)
}

// State derives the phase from the calls and tricks recorded so far.
func (r *Round) State() RoundState {
	for _, c := range r.calls {
		if !c.IsSet() {
			return Calling
		}
	}
	if len(r.tricks) == TricksPerRound && r.tricks[TricksPerRound-1].IsOver() {
		return RoundOver
	}
	return TrickInProgress
}

func (r *Round) IsOver() bool {
	return r.State() == RoundOver
}

func (r *Round) Starter() Turn {
	return r.starter
}

// Call records the bid of seat turn. Seats call in order from the starter.
func (r *Round) Call(call Call, turn Turn) error {
	if r.State() != Calling {
		return ErrNotAcceptingCalls
	}
	if _, err := NewCall(call.Int()); err != nil {
		return err
	}
	if r.calls.At(turn).IsSet() {
		return ErrPlayerAlreadyCalled
	}
	next, err := r.TurnToAct()
	if err != nil {
		return err
	}
	if next != turn {
		return ErrNotYourTurn
	}
	r.calls.Set(turn, call)
	if turn.Next() == r.starter {
		r.tricks = append(r.tricks, NewTrick(r.starter))
	}
	return nil
}

// Play takes card from the hand of seat turn and places it into the active trick.
// A completed trick immediately opens the next one, led by its winner.
func (r *Round) Play(card Card, turn Turn) error {
	moves, err := r.LegalMoves(turn)
	if err != nil {
		return err
	}
	if !slices.Contains(moves, card) {
		return ErrInvalidPlay
	}

	trick := r.activeTrick()
	hand := r.hands.At(turn)
	if err := hand.Play(card); err != nil {
		panic(fmt.Sprintf("round: legal card %s missing from hand: %v", card, err))
	}
	if err := trick.Play(card); err != nil {
		panic(fmt.Sprintf("round: active trick rejected %s: %v", card, err))
	}
	r.hands.Set(turn, hand)

	if trick.IsOver() && len(r.tricks) < TricksPerRound {
		winner, _, _ := trick.Winner()
		r.tricks = append(r.tricks, NewTrick(winner))
	}
	return nil
}

// TurnToAct returns the seat expected to call or play next.
func (r *Round) TurnToAct() (Turn, error) {
	switch r.State() {
	case Calling:
		turn := r.starter
		for r.calls.At(turn).IsSet() {
			turn = turn.Next()
		}
		return turn, nil
	case TrickInProgress:
		return r.activeTrick().TurnToAct()
	default:
		return Turn{}, ErrRoundIsOver
	}
}

// LegalMoves returns the cards seat turn may play. It is only defined for the
// seat to act while tricks are in progress.
func (r *Round) LegalMoves(turn Turn) ([]Card, error) {
	if r.State() != TrickInProgress {
		return nil, ErrNotAcceptingPlay
	}
	next, err := r.TurnToAct()
	if err != nil {
		return nil, err
	}
	if next != turn {
		return nil, ErrNotYourTurn
	}
	return r.activeTrick().LegalMoves(r.hands.At(turn)), nil
}

func (r *Round) activeTrick() *Trick {
	if n := len(r.tricks); n > 0 && !r.tricks[n-1].IsOver() {
		return &r.tricks[n-1]
	}
	panic("round: no active trick while tricks are in progress")
}

// Hand returns a copy of the cards held by seat turn.
func (r *Round) Hand(turn Turn) Hand {
	return HeldHand(r.hands.At(turn).cards)
}

// Calls returns the bids made so far; unset entries are zero.
func (r *Round) Calls() BySeat[Call] {
	return r.calls
}

// Tricks returns a copy of the tricks opened so far, including the active one.
func (r *Round) Tricks() []Trick {
	return slices.Clone(r.tricks)
}

// TricksWon counts completed tricks per winning seat.
func (r *Round) TricksWon() BySeat[int] {
	var won BySeat[int]
	for i := range r.tricks {
		if !r.tricks[i].IsOver() {
			continue
		}
		seat, _, _ := r.tricks[i].Winner()
		won.Set(seat, won.At(seat)+1)
	}
	return won
}
