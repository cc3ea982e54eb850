package brain

import (
	"github.com/prasantadh/callbreak-np/internal/domain"
)

// OpponentProfile tracks what a seat has revealed during the current round.
type OpponentProfile struct {
	Seat domain.Turn
	Call int
	Won  int
	// Voids marks suits the seat has shown it no longer holds, indexed by suit.
	Voids [len(domain.Suits) + 1]bool
}

// NewOpponentProfile initializes a profile for a specific seat.
func NewOpponentProfile(seat domain.Turn) OpponentProfile {
	return OpponentProfile{Seat: seat}
}

// RecordVoid notes that the seat failed to follow suit s.
func (p *OpponentProfile) RecordVoid(s domain.Suit) {
	p.Voids[s] = true
}

// IsVoid returns true if the seat has shown it holds no card of suit s.
func (p OpponentProfile) IsVoid(s domain.Suit) bool {
	return p.Voids[s]
}

// Needed is the number of tricks still required to make the call. It is
// zero or negative once the call is made.
func (p OpponentProfile) Needed() int {
	return p.Call - p.Won
}
